package refdata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/nh-rep-finder/internal/fetch"
)

func TestLoad_FromFilesAndURL(t *testing.T) {
	votes := readTestdata(t, "house_key_votes.csv")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write(votes)
	}))
	defer server.Close()

	townsAbs, err := filepath.Abs(testdataPath("floterial_by_town.csv"))
	require.NoError(t, err)

	snap, err := Load(context.Background(), Sources{
		Towns:  "file://" + townsAbs,
		Bases:  testdataPath("floterial_by_base.csv"),
		Roster: testdataPath("nh_house_ids.csv"),
		Votes:  server.URL + "/house_key_votes.csv",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, 8, snap.Stats().Towns)
	assert.Equal(t, []string{"HB1", "SB96", "HB2"}, snap.Bills())
}

func TestLoad_UnreadableSourceIsLoadError(t *testing.T) {
	_, err := Load(context.Background(), Sources{
		Towns:  testdataPath("floterial_by_town.csv"),
		Roster: filepath.Join(t.TempDir(), "missing.csv"),
	}, nil)
	loadErr := requireLoadError(t, err)
	assert.Equal(t, SourceRoster, loadErr.Source)

	var fetchErr *fetch.Error
	assert.ErrorAs(t, err, &fetchErr)
}

func TestLoad_OptionalSourcesOmitted(t *testing.T) {
	snap, err := Load(context.Background(), Sources{
		Towns:  testdataPath("floterial_by_town.csv"),
		Roster: testdataPath("nh_house_ids.csv"),
	}, nil)
	require.NoError(t, err)
	// Without the overlay Grantham has no floterials.
	assert.Empty(t, snap.FloterialDistrictsOf("grantham"))
	assert.Empty(t, snap.Bills())
}
