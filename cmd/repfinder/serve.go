package main

import (
	"fmt"
	"os"
	"time"

	"github.com/jonathan/nh-rep-finder/internal/lookup"
	"github.com/jonathan/nh-rep-finder/internal/observability"
	"github.com/jonathan/nh-rep-finder/internal/openstates"
	"github.com/jonathan/nh-rep-finder/internal/refdata"
	"github.com/jonathan/nh-rep-finder/internal/server"
	"github.com/spf13/cobra"
)

var (
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the lookup API server",
	Long: `Load the reference data and start an HTTP server exposing address lookup,
the vote map and bill links. Reference data reloads on SIGHUP and on the
configured reload interval.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides PORT and the config file)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if servePort > 0 {
		cfg.Port = servePort
	}
	ctx := cmd.Context()

	store, err := refdata.NewStore(ctx, snapshotLoader(cfg))
	if err != nil {
		observability.NewPrinter(os.Stderr).PrintLoadError(err)
		return fmt.Errorf("failed to load reference data: %w", err)
	}
	if cfg.Verbose {
		observability.NewPrinter(os.Stderr).PrintSnapshotSummary(store.Snapshot())
	}

	normalizer, err := buildNormalizer(ctx, cfg)
	if err != nil {
		return err
	}
	svc := lookup.NewService(store, normalizer, cfg.NormalizedTrackedBills())

	// A nil linker makes /api/bill-link answer not_configured.
	var bills server.BillLinker
	if cfg.OpenStatesAPIKey != "" {
		bills = newOpenStatesClient(cfg, nil, openstates.DefaultThrottle)
	}

	srv := server.New(server.Config{
		Port:            cfg.Port,
		AllowedOrigins:  cfg.AllowedOrigins,
		RateLimitPerMin: cfg.RateLimitPerMin,
		DebugRoutes:     cfg.DebugRoutes,
		GitCommit:       cfg.GitCommit,
		ReloadInterval:  time.Duration(cfg.ReloadInterval),
	}, store, svc, bills)

	return srv.Start(ctx)
}
