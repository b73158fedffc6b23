package refdata

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func testdataPath(name string) string {
	return filepath.Join("..", "..", "testdata", "nh", name)
}

func readTestdata(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(testdataPath(name))
	require.NoError(t, err)
	return data
}

func sampleInputs(t *testing.T) Inputs {
	t.Helper()
	return Inputs{
		Towns:  readTestdata(t, "floterial_by_town.csv"),
		Bases:  readTestdata(t, "floterial_by_base.csv"),
		Roster: readTestdata(t, "nh_house_ids.csv"),
		Votes:  readTestdata(t, "house_key_votes.csv"),
	}
}

func sampleSnapshot(t *testing.T) *Snapshot {
	t.Helper()
	snap, err := Build(sampleInputs(t))
	require.NoError(t, err)
	return snap
}
