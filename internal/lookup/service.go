// Package lookup resolves an address to its NH House representatives and their votes.
package lookup

import (
	"context"
	"strings"
	"time"

	"github.com/jonathan/nh-rep-finder/internal/assembly"
	"github.com/jonathan/nh-rep-finder/internal/districts"
	"github.com/jonathan/nh-rep-finder/internal/normalize"
	"github.com/jonathan/nh-rep-finder/internal/refdata"
	"github.com/jonathan/nh-rep-finder/internal/types"
	"github.com/jonathan/nh-rep-finder/internal/votes"
)

// SnapshotSource supplies the current reference data.
type SnapshotSource interface {
	Snapshot() *refdata.Snapshot
}

// Service composes normalization, district resolution, assembly and vote merging.
type Service struct {
	store      SnapshotSource
	normalizer normalize.Normalizer
	merger     *votes.Merger
	now        func() time.Time
}

// NewService creates a lookup service. An empty trackedBills list tracks every bill in the vote table.
func NewService(store SnapshotSource, normalizer normalize.Normalizer, trackedBills []string) *Service {
	return &Service{
		store:      store,
		normalizer: normalizer,
		merger:     votes.NewMerger(trackedBills),
		now:        time.Now,
	}
}

// Lookup resolves rawAddress. It fails with *normalize.UnknownAddressError when the
// address cannot be normalized and *districts.UnknownTownError when the town has no base district.
// One snapshot is read for the whole call.
func (s *Service) Lookup(ctx context.Context, rawAddress string) (*types.LookupResult, error) {
	start := s.now()

	raw := strings.TrimSpace(rawAddress)
	if raw == "" {
		return nil, &normalize.UnknownAddressError{Address: rawAddress, Reason: "address is empty"}
	}

	snap := s.store.Snapshot()
	if snap == nil {
		return nil, refdata.ErrNotReady
	}

	addr, err := s.normalize(ctx, snap, raw)
	if err != nil {
		return nil, err
	}

	res, err := districts.Resolve(snap, addr.Town)
	if err != nil {
		return nil, err
	}

	members := assembly.Assemble(snap, res)
	reps := make([]types.RepresentativeView, 0, len(members))
	qualifying := make(map[string][]string, len(members))
	for _, m := range members {
		r := m.Representative
		reps = append(reps, types.RepresentativeView{
			ID:       r.ID,
			Name:     r.Name,
			District: r.District,
			Party:    r.Party,
			Email:    r.Email,
			Phone:    r.Phone,
			VoteMap:  s.merger.Merge(snap, r.ID),
		})
		qualifying[r.ID] = m.Qualifying
	}

	county := res.County
	if county == "" {
		county = addr.County
	}
	tracked := s.merger.TrackedBills(snap)
	if tracked == nil {
		tracked = []string{}
	}

	diag := &types.Diagnostics{
		SchemaVersion:       types.DiagnosticsSchemaVersion,
		Normalizer:          addr.Source,
		TownKey:             res.TownKey,
		Town:                res.Town,
		County:              county,
		BaseDistrict:        res.Base,
		FloterialDistricts:  res.Floterials,
		DistrictsQueried:    res.Districts(),
		QualifyingDistricts: qualifying,
		TrackedBills:        tracked,
		SnapshotID:          snap.ID(),
		SnapshotLoadedAt:    snap.LoadedAt(),
	}
	if addr.Locality != "" && types.TownKey(addr.Locality) != res.TownKey {
		diag.Extra = map[string]any{"aliasedFrom": addr.Locality}
	}
	diag.ElapsedMicros = s.now().Sub(start).Microseconds()

	return &types.LookupResult{
		FormattedAddress:     addr.FormattedAddress,
		StateRepresentatives: reps,
		Diagnostics:          diag,
	}, nil
}

// normalize prefers a result whose town is in snap when the normalizer can fall through.
func (s *Service) normalize(ctx context.Context, snap *refdata.Snapshot, raw string) (*types.NormalizedAddress, error) {
	kn, ok := s.normalizer.(normalize.KnownTownNormalizer)
	if !ok {
		return s.normalizer.Normalize(ctx, raw)
	}
	return kn.NormalizeKnown(ctx, raw, func(town string) bool {
		_, found := snap.BaseDistrictOf(types.TownKey(town))
		return found
	})
}
