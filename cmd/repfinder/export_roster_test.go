package main

import (
	"encoding/csv"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/nh-rep-finder/internal/openstates"
)

func newRosterServer(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.Header.Get("X-API-KEY") != "export-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		w.Header().Set("Content-Type", "application/json")
		switch page {
		case 1:
			_, _ = w.Write([]byte(`{"results": [
				{"id": "ocd-person/b", "name": "Blake Hughes", "party": "Republican", "current_role": {"district": "Sullivan 8"}},
				{"id": "ocd-person/a", "name": "Avery Carter", "party": "Democratic", "current_role": {"district": "Sullivan 2"}}
			], "pagination": {"page": 1, "max_page": 2}}`))
		case 2:
			_, _ = w.Write([]byte(`{"results": [
				{"id": "ocd-person/c", "name": "Casey Dunn", "current_role": {"district": "Grafton 12"}}
			], "pagination": {"page": 2, "max_page": 2}}`))
		default:
			_, _ = w.Write([]byte(`{"results": []}`))
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func setExportFlags(t *testing.T, out, cacheDir string) {
	t.Helper()
	exportOut = out
	exportCacheDir = cacheDir
	exportDatabaseURL = ""
	exportThrottle = 0
	t.Cleanup(func() {
		exportOut = ""
		exportCacheDir = ""
	})
}

func TestRunExportRoster_WritesSortedRoster(t *testing.T) {
	useTestdata(t)
	srv, hits := newRosterServer(t)
	t.Setenv("OPENSTATES_API_KEY", "export-key")
	t.Setenv("OPENSTATES_URL", srv.URL)

	dir := t.TempDir()
	outPath := filepath.Join(dir, "roster.csv")
	setExportFlags(t, outPath, filepath.Join(dir, "cache"))

	cmd, out := newTestCommand()
	require.NoError(t, runExportRoster(cmd, nil))
	assert.Contains(t, out.String(), "Wrote 3 representatives")
	assert.Equal(t, int32(2), hits.Load())

	f, err := os.Open(outPath)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	require.Len(t, records, 4)
	assert.Equal(t, []string{"openstates_person_id", "name", "district", "party", "email", "phone"}, records[0])
	assert.Equal(t, "Grafton 12", records[1][2])
	assert.Equal(t, "Sullivan 2", records[2][2])
	assert.Equal(t, "Sullivan 8", records[3][2])

	_, err = os.Stat(outPath + ".part")
	assert.True(t, os.IsNotExist(err), "partial file should be renamed away")

	// Second run is served from the page cache.
	cmd, _ = newTestCommand()
	require.NoError(t, runExportRoster(cmd, nil))
	assert.Equal(t, int32(2), hits.Load())
}

func TestRunExportRoster_RequiresAPIKey(t *testing.T) {
	useTestdata(t)
	setExportFlags(t, filepath.Join(t.TempDir(), "roster.csv"), "")

	cmd, _ := newTestCommand()
	err := runExportRoster(cmd, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, openstates.ErrNoAPIKey))
}

func TestRunExportRoster_UpstreamFailureKeepsExistingRoster(t *testing.T) {
	useTestdata(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	t.Cleanup(srv.Close)
	t.Setenv("OPENSTATES_API_KEY", "wrong-key")
	t.Setenv("OPENSTATES_URL", srv.URL)

	outPath := filepath.Join(t.TempDir(), "roster.csv")
	require.NoError(t, os.WriteFile(outPath, []byte("existing"), 0644))
	setExportFlags(t, outPath, "")

	cmd, _ := newTestCommand()
	err := runExportRoster(cmd, nil)
	require.Error(t, err)

	var upstream *openstates.UpstreamError
	assert.True(t, errors.As(err, &upstream), "expected UpstreamError, got %v", err)
	data, readErr := os.ReadFile(outPath)
	require.NoError(t, readErr)
	assert.Equal(t, "existing", string(data))
}
