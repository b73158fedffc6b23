package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-playground/validator/v10"

	"github.com/jonathan/nh-rep-finder/internal/districts"
	"github.com/jonathan/nh-rep-finder/internal/openstates"
	"github.com/jonathan/nh-rep-finder/internal/refdata"
	"github.com/jonathan/nh-rep-finder/internal/server/middleware"
	"github.com/jonathan/nh-rep-finder/internal/types"
)

const maxBodyBytes = 64 << 10

// addressBody is the POST body of /api/lookup-legislators.
type addressBody struct {
	Address string `json:"address"`
	Addr    string `json:"addr"`
}

// addressFromRequest reads the address from the query string, a JSON body, or a form.
func addressFromRequest(r *http.Request) (string, error) {
	q := r.URL.Query()
	if addr := firstNonEmpty(q.Get("address"), q.Get("addr")); addr != "" {
		return addr, nil
	}
	if r.Method != http.MethodPost || r.Body == nil {
		return "", nil
	}

	contentType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch contentType {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		if err := r.ParseForm(); err != nil {
			return "", &ErrValidation{Field: "body", Message: "invalid form body"}
		}
		return firstNonEmpty(r.PostForm.Get("address"), r.PostForm.Get("addr")), nil
	default:
		var body addressBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return "", &ErrValidation{Field: "body", Message: "invalid JSON body"}
		}
		return firstNonEmpty(body.Address, body.Addr), nil
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// validationError converts validator failures into an ErrValidation.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		msg := "failed " + fe.Tag()
		switch fe.Tag() {
		case "required":
			msg = "is required"
		case "min":
			msg = "must be at least " + fe.Param() + " characters"
		case "max":
			msg = "must be at most " + fe.Param() + " characters"
		}
		return &ErrValidation{Field: strings.ToLower(fe.Field()), Message: msg}
	}
	return &ErrValidation{Field: "request", Message: err.Error()}
}

// handleLookup serves GET /api/lookup and GET|POST /api/lookup-legislators.
func (s *Server) handleLookup(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	addr, err := addressFromRequest(r)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	req := types.LookupRequest{Address: addr}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, r, validationError(err))
		return
	}

	result, err := s.lookup.Lookup(r.Context(), req.Address)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	if result.Diagnostics != nil {
		result.Diagnostics.RequestID = middleware.GetRequestID(r.Context())
	}
	s.jsonResponse(w, http.StatusOK, result)
}

// handleVoteMap returns every roster member's votes over the tracked bills.
func (s *Server) handleVoteMap(w http.ResponseWriter, r *http.Request) {
	table, err := s.lookup.VoteTable()
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, table)
}

// handleVotesCSV renders the vote table as a wide CSV.
func (s *Server) handleVotesCSV(w http.ResponseWriter, r *http.Request) {
	table, err := s.lookup.VoteTable()
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `inline; filename="house_key_votes.csv"`)
	if err := table.WriteCSV(w); err != nil {
		slog.Error("failed to write vote table", "error", err)
	}
}

// handleBillLink resolves ?bill= (or ?label=) and ?year= to a bill page URL.
func (s *Server) handleBillLink(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	bill := firstNonEmpty(q.Get("bill"), q.Get("label"))
	if bill == "" {
		s.errorResponse(w, r, &ErrValidation{Field: "bill", Message: "is required"})
		return
	}
	if s.bills == nil {
		s.errorResponse(w, r, openstates.ErrNoAPIKey)
		return
	}

	link, err := s.bills.BillLink(r.Context(), bill, strings.TrimSpace(q.Get("year")))
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, link)
}

// HealthResponse is the body of /health.
type HealthResponse struct {
	Status        string         `json:"status"`
	Commit        string         `json:"commit"`
	SnapshotID    string         `json:"snapshotId,omitempty"`
	LoadedAt      *time.Time     `json:"loadedAt,omitempty"`
	LoadedAgo     string         `json:"loadedAgo,omitempty"`
	Uptime        string         `json:"uptime"`
	Counts        *refdata.Stats `json:"counts,omitempty"`
	ReloadsOK     int64          `json:"reloadsOk"`
	ReloadsFailed int64          `json:"reloadsFailed"`
}

// handleHealth reports readiness and the current snapshot.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	ok, failed := s.store.ReloadCounts()
	resp := HealthResponse{
		Status:        "ok",
		Commit:        s.gitCommit,
		Uptime:        strings.TrimSuffix(humanize.Time(s.startedAt), " ago"),
		ReloadsOK:     ok,
		ReloadsFailed: failed,
	}

	snap := s.store.Snapshot()
	if snap == nil {
		resp.Status = "not_ready"
		s.jsonResponse(w, http.StatusServiceUnavailable, resp)
		return
	}
	loadedAt := snap.LoadedAt()
	stats := snap.Stats()
	resp.SnapshotID = snap.ID()
	resp.LoadedAt = &loadedAt
	resp.LoadedAgo = humanize.Time(loadedAt)
	resp.Counts = &stats
	s.jsonResponse(w, http.StatusOK, resp)
}

// handleVersion returns the deployed commit.
func (s *Server) handleVersion(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"commit": s.gitCommit})
}

func (s *Server) snapshot() (*refdata.Snapshot, error) {
	snap := s.store.Snapshot()
	if snap == nil {
		return nil, refdata.ErrNotReady
	}
	return snap, nil
}

// handleDebugFloterials lists every floterial district with its member towns.
func (s *Server) handleDebugFloterials(w http.ResponseWriter, r *http.Request) {
	snap, err := s.snapshot()
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}

	floterials := []types.District{}
	townLinks := 0
	for _, d := range snap.Districts() {
		if d.Kind == types.DistrictFloterial {
			floterials = append(floterials, d)
			townLinks += len(d.MemberTowns)
		}
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"snapshotId":           snap.ID(),
		"floterialCount":       len(floterials),
		"townToFloterialCount": townLinks,
		"floterials":           floterials,
	})
}

// handleDebugBaseMap shows the overlay floterials of ?label=.
func (s *Server) handleDebugBaseMap(w http.ResponseWriter, r *http.Request) {
	snap, err := s.snapshot()
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	label := types.DistrictLabel(r.URL.Query().Get("label"))
	if label == "" {
		s.errorResponse(w, r, &ErrValidation{Field: "label", Message: "is required"})
		return
	}

	floterials, ok := snap.OverlayFloterials(label)
	if floterials == nil {
		floterials = []string{}
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"label":      label,
		"hasLabel":   ok,
		"count":      len(floterials),
		"floterials": floterials,
	})
}

// handleDebugDistrict shows the district ?label= and its representatives.
func (s *Server) handleDebugDistrict(w http.ResponseWriter, r *http.Request) {
	snap, err := s.snapshot()
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	label := types.DistrictLabel(r.URL.Query().Get("label"))
	if label == "" {
		s.errorResponse(w, r, &ErrValidation{Field: "label", Message: "is required"})
		return
	}

	reps := snap.RepresentativesOf(label)
	if reps == nil {
		reps = []types.Representative{}
	}
	resp := map[string]any{
		"label": label,
		"count": len(reps),
		"reps":  reps,
	}
	if d, ok := snap.District(label); ok {
		resp["district"] = d
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

// handleDebugTown resolves ?town= without normalization.
func (s *Server) handleDebugTown(w http.ResponseWriter, r *http.Request) {
	snap, err := s.snapshot()
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	town := strings.TrimSpace(r.URL.Query().Get("town"))
	if town == "" {
		s.errorResponse(w, r, &ErrValidation{Field: "town", Message: "is required"})
		return
	}

	res, err := districts.Resolve(snap, town)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"townKey":            res.TownKey,
		"town":               res.Town,
		"county":             res.County,
		"baseDistrict":       res.Base,
		"floterialDistricts": res.Floterials,
		"districts":          res.Districts(),
	})
}
