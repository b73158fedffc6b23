package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jonathan/nh-rep-finder/internal/lookup"
	"github.com/jonathan/nh-rep-finder/internal/observability"
	"github.com/jonathan/nh-rep-finder/internal/refdata"
	"github.com/jonathan/nh-rep-finder/internal/types"
	"github.com/spf13/cobra"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup <address>",
	Short: "Look up the representatives for an address",
	Long: `Resolve an address to its base and floterial districts and print every
representative for them with their tracked votes.`,
	Example: `  repfinder lookup "667 NH RT 120, Cornish, NH"
  repfinder lookup --json 12 Main St, Lyme, NH 03768`,
	Args: cobra.MinimumNArgs(1),
	RunE: runLookup,
}

var (
	lookupJSON bool
)

func init() {
	lookupCmd.Flags().BoolVar(&lookupJSON, "json", false, "Print the raw lookup response as JSON")
	rootCmd.AddCommand(lookupCmd)
}

func runLookup(cmd *cobra.Command, args []string) error {
	req := types.LookupRequest{Address: strings.TrimSpace(strings.Join(args, " "))}
	if err := req.Validate(); err != nil {
		return fmt.Errorf("invalid address: %w", err)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	store, err := refdata.NewStore(ctx, snapshotLoader(cfg))
	if err != nil {
		return fmt.Errorf("failed to load reference data: %w", err)
	}
	normalizer, err := buildNormalizer(ctx, cfg)
	if err != nil {
		return err
	}

	svc := lookup.NewService(store, normalizer, cfg.NormalizedTrackedBills())
	result, err := svc.Lookup(ctx, req.Address)
	if err != nil {
		return fmt.Errorf("lookup failed: %w", err)
	}

	if lookupJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return fmt.Errorf("failed to write JSON: %w", err)
		}
		return nil
	}
	observability.NewPrinter(cmd.OutOrStdout()).PrintLookup(result)
	return nil
}
