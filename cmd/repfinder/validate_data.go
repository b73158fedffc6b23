package main

import (
	"fmt"
	"os"

	"github.com/jonathan/nh-rep-finder/internal/fetch"
	"github.com/jonathan/nh-rep-finder/internal/observability"
	"github.com/jonathan/nh-rep-finder/internal/refdata"
	"github.com/spf13/cobra"
)

var validateDataCmd = &cobra.Command{
	Use:   "validate-data",
	Short: "Validate the reference CSVs",
	Long: `Load every configured reference source exactly as the server would and
report either a summary of the data or every malformed row.`,
	RunE: runValidateData,
}

func init() {
	rootCmd.AddCommand(validateDataCmd)
}

func runValidateData(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	p := observability.NewPrinter(cmd.OutOrStdout())

	snap, err := refdata.Load(ctx, sourcesFrom(cfg), fetch.DefaultOptions())
	if err != nil {
		p.PrintLoadError(err)
		return fmt.Errorf("validation failed: %w", err)
	}
	if _, err := buildNormalizer(ctx, cfg); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	p.PrintSnapshotSummary(snap)

	known := make(map[string]bool)
	for _, b := range snap.Bills() {
		known[b] = true
	}
	for _, b := range cfg.NormalizedTrackedBills() {
		if !known[b] {
			fmt.Fprintf(os.Stderr, "Warning: tracked bill %s has no votes recorded; every representative will show No Vote\n", b)
		}
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Validation passed")
	return nil
}
