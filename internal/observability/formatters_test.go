package observability

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonathan/nh-rep-finder/internal/refdata"
	"github.com/jonathan/nh-rep-finder/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintLookup(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	result := &types.LookupResult{
		FormattedAddress: "667 NH RT 120, Cornish, NH",
		StateRepresentatives: []types.RepresentativeView{
			{
				ID:       "ocd-person/1",
				Name:     "Avery Carter",
				District: "Sullivan 2",
				Party:    "Democratic",
				Email:    "avery@example.org",
				VoteMap:  map[string]types.VoteLabel{"HB1": types.VoteAgainst, "SB96": types.VoteFor},
			},
			{
				ID:       "ocd-person/2",
				Name:     "Blake Hughes",
				District: "Sullivan 8",
				VoteMap:  map[string]types.VoteLabel{"HB1": types.VoteFor},
			},
		},
		Diagnostics: &types.Diagnostics{
			Normalizer:         "table",
			Town:               "Cornish",
			County:             "Sullivan",
			BaseDistrict:       "Sullivan 2",
			FloterialDistricts: []string{"Sullivan 8"},
			TrackedBills:       []string{"HB1", "SB96"},
		},
	}

	p.PrintLookup(result)
	output := buf.String()

	assert.Contains(t, output, "ADDRESS LOOKUP")
	assert.Contains(t, output, "Cornish")
	assert.Contains(t, output, "Sullivan 2")
	assert.Contains(t, output, "Floterial: Sullivan 8")
	assert.Contains(t, output, "2 representative(s)")
	assert.Contains(t, output, "Avery Carter")
	assert.Contains(t, output, "avery@example.org")
	assert.Contains(t, output, "Blake Hughes")
	assert.Contains(t, output, "Against")
	// SB96 is tracked but absent from Blake's map.
	assert.Contains(t, output, "No Vote")
}

func TestPrintLookup_Nil(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintLookup(nil)

	assert.Empty(t, buf.String())
}

func TestPrintLookup_NoDiagnostics(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintLookup(&types.LookupResult{
		FormattedAddress: "Lyme, NH",
		StateRepresentatives: []types.RepresentativeView{
			{Name: "Casey Dunn", District: "Grafton 12", VoteMap: map[string]types.VoteLabel{"HB2": types.VoteFor}},
		},
	})
	output := buf.String()

	assert.Contains(t, output, "Lyme, NH")
	assert.Contains(t, output, "Casey Dunn")
	assert.Contains(t, output, "HB2")
	assert.NotContains(t, output, "Floterial:")
}

func TestPrintSnapshotSummary(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	read := func(name string) []byte {
		data, err := os.ReadFile(filepath.Join("..", "..", "testdata", "nh", name))
		require.NoError(t, err)
		return data
	}
	snap, err := refdata.Build(refdata.Inputs{
		Towns:  read("floterial_by_town.csv"),
		Bases:  read("floterial_by_base.csv"),
		Roster: read("nh_house_ids.csv"),
		Votes:  read("house_key_votes.csv"),
	})
	require.NoError(t, err)

	p.now = func() time.Time { return snap.LoadedAt().Add(3 * time.Minute) }
	p.PrintSnapshotSummary(snap)
	output := buf.String()

	assert.Contains(t, output, "REFERENCE DATA")
	assert.Contains(t, output, snap.ID())
	assert.Contains(t, output, "3 minutes ago")
	assert.Contains(t, output, fmt.Sprintf("Representatives: %d", snap.Stats().Representatives))
}

func TestPrintSnapshotSummary_Nil(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintSnapshotSummary(nil)

	assert.Empty(t, buf.String())
}

func TestPrintLoadError(t *testing.T) {
	rows := make([]refdata.RowError, 0, 8)
	for i := 1; i <= 8; i++ {
		rows = append(rows, refdata.RowError{Line: i + 1, Message: "missing town"})
	}

	tests := []struct {
		name     string
		err      error
		contains []string
	}{
		{
			name: "load error with rows",
			err: &refdata.LoadError{
				Source:  refdata.SourceTowns,
				Message: "malformed rows",
				Rows:    rows,
				Total:   12,
			},
			contains: []string{"REFERENCE DATA ERROR", "floterial_by_town.csv", "Malformed rows (12)", "line 2: missing town", "... and 7 more"},
		},
		{
			name: "load error with cause",
			err: &refdata.LoadError{
				Source:  refdata.SourceRoster,
				Message: "failed to read data/nh_house_ids.csv",
				Cause:   errors.New("no such file"),
			},
			contains: []string{"nh_house_ids.csv", "Cause: no such file"},
		},
		{
			name: "wrapped integrity error",
			err: fmt.Errorf("reload: %w", &refdata.DataIntegrityError{
				Source:  refdata.SourceVotes,
				Line:    4,
				Message: "unknown vote label \"maybe\"",
			}),
			contains: []string{"votes.csv", "Line:    4", "unknown vote label"},
		},
		{
			name:     "plain error",
			err:      errors.New("boom"),
			contains: []string{"REFERENCE DATA ERROR", "boom"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			NewPrinter(&buf).PrintLoadError(tt.err)
			output := buf.String()
			for _, want := range tt.contains {
				assert.Contains(t, output, want)
			}
		})
	}
}

func TestPrintLoadError_Nil(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintLoadError(nil)
	assert.Empty(t, buf.String())
}

func TestPrintBox_TruncatesLongLines(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.printBox("TITLE", "short\n"+string(bytes.Repeat([]byte("x"), 100)))
	output := buf.String()

	assert.Contains(t, output, "TITLE")
	assert.Contains(t, output, "short")
	assert.Contains(t, output, "...")
	assert.NotContains(t, output, string(bytes.Repeat([]byte("x"), 60)))
}
