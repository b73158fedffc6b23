package lookup

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/nh-rep-finder/internal/normalize"
	"github.com/jonathan/nh-rep-finder/internal/refdata"
	"github.com/jonathan/nh-rep-finder/internal/types"
)

func TestVoteTable(t *testing.T) {
	svc, store := newTestService(t, nil)

	table, err := svc.VoteTable()
	require.NoError(t, err)

	assert.Equal(t, []string{"HB1", "SB96", "HB2"}, table.Columns)
	assert.Equal(t, 12, table.Rows)
	assert.Len(t, table.Votes, 12)
	assert.Equal(t, store.Snapshot().ID(), table.SnapshotID)

	avery := table.Votes["ocd-person/6f0c5e1e-0001-4c1a-9a7e-1b2c3d4e5f01"]
	assert.Equal(t, types.VoteAgainst, avery["HB1"])
	assert.Equal(t, types.VoteFor, avery["SB96"])

	logan := table.Votes["ocd-person/6f0c5e1e-0012-4c1a-9a7e-1b2c3d4e5f12"]
	assert.Equal(t, map[string]types.VoteLabel{"HB1": types.VoteNone, "SB96": types.VoteNone, "HB2": types.VoteNone}, logan)
}

func TestVoteTable_WriteCSV(t *testing.T) {
	svc, _ := newTestService(t, []string{"HB2"})

	table, err := svc.VoteTable()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, table.WriteCSV(&buf))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 13)
	assert.Equal(t, []string{"openstates_person_id", "name", "district", "party", "HB2"}, records[0])
	for _, rec := range records[1:] {
		assert.Contains(t, []string{"For", "Against", "No Vote"}, rec[4])
	}
}

func TestVoteTable_NotReady(t *testing.T) {
	svc := NewService(&refdata.Store{}, normalize.NewTableNormalizer(nil), nil)
	_, err := svc.VoteTable()
	assert.ErrorIs(t, err, refdata.ErrNotReady)
}
