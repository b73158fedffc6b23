package main

import (
	"encoding/json"
	"errors"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/nh-rep-finder/internal/districts"
	"github.com/jonathan/nh-rep-finder/internal/normalize"
	"github.com/jonathan/nh-rep-finder/internal/types"
)

func TestRunLookup_Pretty(t *testing.T) {
	useTestdata(t)
	lookupJSON = false

	cmd, out := newTestCommand()
	err := runLookup(cmd, []string{"667 NH RT 120,", "Cornish,", "NH"})
	require.NoError(t, err)

	output := out.String()
	assert.Contains(t, output, "ADDRESS LOOKUP")
	assert.Contains(t, output, "Avery Carter")
	assert.Contains(t, output, "Sullivan 2")
	assert.Contains(t, output, "Blake Hughes")
	assert.Contains(t, output, "Sullivan 8")
}

func TestRunLookup_JSON(t *testing.T) {
	useTestdata(t)
	lookupJSON = true
	t.Cleanup(func() { lookupJSON = false })

	cmd, out := newTestCommand()
	require.NoError(t, runLookup(cmd, []string{"667 NH RT 120, Cornish, NH"}))

	var result types.LookupResult
	require.NoError(t, json.Unmarshal(out.Bytes(), &result))
	require.Len(t, result.StateRepresentatives, 2)
	assert.Equal(t, "Sullivan 2", result.StateRepresentatives[0].District)
	require.NotNil(t, result.Diagnostics)
	assert.Equal(t, []string{"HB1", "SB96", "HB2"}, result.Diagnostics.TrackedBills)
	assert.Equal(t, types.VoteAgainst, result.StateRepresentatives[0].VoteMap["HB1"])
}

func TestRunLookup_Alias(t *testing.T) {
	useTestdata(t)
	lookupJSON = true
	t.Cleanup(func() { lookupJSON = false })

	cmd, out := newTestCommand()
	require.NoError(t, runLookup(cmd, []string{"12 Main St, Cornish Flat, NH 03746"}))

	var result types.LookupResult
	require.NoError(t, json.Unmarshal(out.Bytes(), &result))
	assert.Equal(t, "Cornish", result.Diagnostics.Town)
}

func TestRunLookup_Errors(t *testing.T) {
	useTestdata(t)
	lookupJSON = false

	t.Run("too short", func(t *testing.T) {
		cmd, _ := newTestCommand()
		err := runLookup(cmd, []string{" "})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid address")
	})

	t.Run("unknown town", func(t *testing.T) {
		cmd, _ := newTestCommand()
		err := runLookup(cmd, []string{"1 Main St, Atlantis, NH"})
		var unknown *districts.UnknownTownError
		assert.True(t, errors.As(err, &unknown), "expected UnknownTownError, got %v", err)
	})

	t.Run("out of state", func(t *testing.T) {
		cmd, _ := newTestCommand()
		err := runLookup(cmd, []string{"1 Beacon St, Boston, MA 02108"})
		var unknown *normalize.UnknownAddressError
		assert.True(t, errors.As(err, &unknown), "expected UnknownAddressError, got %v", err)
	})
}

func TestLookupCommand_Binary(t *testing.T) {
	binaryPath := getBinaryPath(t)

	cmd := exec.Command(binaryPath, "lookup", "--json", "667 NH RT 120, Cornish, NH")
	cmd.Env = append(cmd.Environ(),
		"FLOTERIAL_TOWN_CSV_URL="+testdataPath("floterial_by_town.csv"),
		"FLOTERIAL_BASE_CSV_URL="+testdataPath("floterial_by_base.csv"),
		"ROSTER_CSV_URL="+testdataPath("nh_house_ids.csv"),
		"VOTES_CSV_URL="+testdataPath("house_key_votes.csv"),
		"NOMINATIM_FALLBACK=0",
	)
	output, err := cmd.CombinedOutput()

	assert.NoError(t, err, "command should succeed")
	assert.Contains(t, string(output), "Sullivan 2")
}

func TestLookupCommand_MissingAddress(t *testing.T) {
	binaryPath := getBinaryPath(t)

	cmd := exec.Command(binaryPath, "lookup")
	output, err := cmd.CombinedOutput()

	assert.Error(t, err, "command should fail")
	assert.Contains(t, string(output), "requires at least 1 arg")
}
