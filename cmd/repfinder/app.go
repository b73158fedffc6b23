package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jonathan/nh-rep-finder/internal/config"
	"github.com/jonathan/nh-rep-finder/internal/db"
	"github.com/jonathan/nh-rep-finder/internal/fetch"
	"github.com/jonathan/nh-rep-finder/internal/normalize"
	"github.com/jonathan/nh-rep-finder/internal/openstates"
	"github.com/jonathan/nh-rep-finder/internal/refdata"
)

// loadConfig resolves the config file, environment and defaults for a command.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Resolve(configPath, os.Getenv)
	if err != nil {
		return nil, err
	}
	if verbose {
		cfg.Verbose = true
	}
	return cfg, nil
}

func sourcesFrom(cfg *config.Config) refdata.Sources {
	return refdata.Sources{
		Towns:  cfg.TownsSource,
		Bases:  cfg.BasesSource,
		Roster: cfg.RosterSource,
		Votes:  cfg.VotesSource,
	}
}

// snapshotLoader returns the loader used for the initial load and every reload.
func snapshotLoader(cfg *config.Config) refdata.LoaderFunc {
	src := sourcesFrom(cfg)
	return func(ctx context.Context) (*refdata.Snapshot, error) {
		return refdata.Load(ctx, src, fetch.DefaultOptions())
	}
}

// buildNormalizer returns the alias table normalizer, chained to Nominatim
// unless the fallback is disabled.
func buildNormalizer(ctx context.Context, cfg *config.Config) (normalize.Normalizer, error) {
	var aliases map[string]string
	if cfg.AliasesSource != "" {
		data, err := fetch.ReadSource(ctx, cfg.AliasesSource, fetch.DefaultOptions())
		if err != nil {
			return nil, fmt.Errorf("failed to read town aliases: %w", err)
		}
		aliases, err = normalize.LoadAliases(data)
		if err != nil {
			return nil, err
		}
	}

	table := normalize.NewTableNormalizer(aliases)
	if !cfg.UseNominatim() {
		return table, nil
	}
	return normalize.Chain{
		table,
		normalize.NewNominatimNormalizer(cfg.NominatimURL, cfg.NominatimEmail, nil),
	}, nil
}

// openPageCache picks the export page cache: Postgres when a database URL is
// given, else a directory, else none. The returned func releases it.
func openPageCache(ctx context.Context, cacheDir, databaseURL string) (fetch.Cache, func(), error) {
	if databaseURL != "" {
		database, err := db.Connect(ctx, databaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := database.EnsureSchema(ctx); err != nil {
			database.Close()
			return nil, nil, err
		}
		return database, database.Close, nil
	}
	if cacheDir != "" {
		dc, err := fetch.NewDirCache(cacheDir)
		if err != nil {
			return nil, nil, err
		}
		return dc, func() {}, nil
	}
	return nil, func() {}, nil
}

func newOpenStatesClient(cfg *config.Config, cache fetch.Cache, throttle time.Duration) *openstates.Client {
	return openstates.NewClient(openstates.Config{
		BaseURL:  cfg.OpenStatesURL,
		APIKey:   cfg.OpenStatesAPIKey,
		Cache:    cache,
		CacheTTL: time.Duration(cfg.CacheTTL),
		Throttle: throttle,
	})
}
