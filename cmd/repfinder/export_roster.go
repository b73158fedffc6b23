package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jonathan/nh-rep-finder/internal/config"
	"github.com/jonathan/nh-rep-finder/internal/db"
	"github.com/jonathan/nh-rep-finder/internal/openstates"
	"github.com/spf13/cobra"
)

var exportRosterCmd = &cobra.Command{
	Use:   "export-roster",
	Short: "Export the NH House roster from OpenStates",
	Long: `Page through the OpenStates people API for the New Hampshire House and write
the roster CSV (openstates_person_id,name,district,party,email,phone).
Pages are cached in --cache-dir or, when a database URL is set, in Postgres.`,
	RunE: runExportRoster,
}

var (
	exportOut         string
	exportCacheDir    string
	exportDatabaseURL string
	exportThrottle    time.Duration
)

func init() {
	exportRosterCmd.Flags().StringVarP(&exportOut, "out", "o", config.DefaultRosterSource, "Path to output roster CSV")
	exportRosterCmd.Flags().StringVar(&exportCacheDir, "cache-dir", "", "Directory for cached API pages")
	exportRosterCmd.Flags().StringVar(&exportDatabaseURL, "database-url", "", "PostgreSQL URL for cached API pages (defaults to DATABASE_URL)")
	exportRosterCmd.Flags().DurationVar(&exportThrottle, "throttle", openstates.DefaultThrottle, "Pause between uncached pages")
	rootCmd.AddCommand(exportRosterCmd)
}

func runExportRoster(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.OpenStatesAPIKey == "" {
		return fmt.Errorf("OPENSTATES_API_KEY is required: %w", openstates.ErrNoAPIKey)
	}
	ctx := cmd.Context()

	databaseURL := exportDatabaseURL
	if databaseURL == "" {
		databaseURL = cfg.DatabaseURL
	}
	cacheDir := exportCacheDir
	if cacheDir == "" {
		cacheDir = cfg.CacheDir
	}
	cache, closeCache, err := openPageCache(ctx, cacheDir, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open page cache: %w", err)
	}
	defer closeCache()

	client := newOpenStatesClient(cfg, cache, exportThrottle)
	progress := func(page, count int, fromCache bool) {
		source := "api"
		if fromCache {
			source = "cache"
		}
		fmt.Fprintf(os.Stderr, "page %d: %d people (%s)\n", page, count, source)
	}

	n, err := openstates.ExportRoster(ctx, client, exportOut, progress)
	if err != nil {
		return fmt.Errorf("roster export failed: %w", err)
	}

	if database, ok := cache.(*db.DB); ok {
		pruned, err := database.DeleteStalePages(ctx, time.Duration(cfg.CacheTTL))
		if err != nil {
			slog.Warn("failed to prune cached pages", "error", err)
		} else if pruned > 0 {
			slog.Info("pruned stale cached pages", "count", pruned)
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d representatives to %s\n", n, exportOut)
	return nil
}
