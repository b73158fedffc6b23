package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
)

// getBinaryPath returns the path to the repfinder binary for CLI tests
func getBinaryPath(t *testing.T) string {
	binaryName := "repfinder"
	if testing.Short() {
		t.Skip("Skipping CLI tests in short mode")
	}

	binaryPath := filepath.Join("..", "..", "bin", binaryName)
	if _, err := os.Stat(binaryPath); os.IsNotExist(err) {
		t.Skipf("Binary not found at %s, build it first with 'go build -o bin/repfinder ./cmd/repfinder'", binaryPath)
	}

	return binaryPath
}

func testdataPath(name string) string {
	return filepath.Join("..", "..", "testdata", "nh", name)
}

// useTestdata points every reference source at the sample CSVs and disables
// the network fallback.
func useTestdata(t *testing.T) {
	t.Helper()
	configPath = ""
	verbose = false
	t.Setenv("FLOTERIAL_TOWN_CSV_URL", testdataPath("floterial_by_town.csv"))
	t.Setenv("FLOTERIAL_BASE_CSV_URL", testdataPath("floterial_by_base.csv"))
	t.Setenv("ROSTER_CSV_URL", testdataPath("nh_house_ids.csv"))
	t.Setenv("VOTES_CSV_URL", testdataPath("house_key_votes.csv"))
	t.Setenv("TOWN_ALIASES_CSV_URL", testdataPath("town_aliases.csv"))
	t.Setenv("NOMINATIM_FALLBACK", "0")
	t.Setenv("TRACKED_BILLS", "")
	t.Setenv("OPENSTATES_API_KEY", "")
	t.Setenv("DATABASE_URL", "")
}

// newTestCommand returns a command whose output is captured in the returned buffer.
func newTestCommand() (*cobra.Command, *bytes.Buffer) {
	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)
	cmd.SetContext(context.Background())
	return cmd, &buf
}
