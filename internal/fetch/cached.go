package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// DefaultCacheTTL is how long a cached page is served before it is fetched again.
const DefaultCacheTTL = 24 * time.Hour

// Cache stores fetched page bodies keyed by URL.
type Cache interface {
	// GetPage returns the cached body if one exists that is younger than maxAge.
	GetPage(ctx context.Context, pageURL string, maxAge time.Duration) ([]byte, bool, error)
	// PutPage stores a successfully fetched body.
	PutPage(ctx context.Context, pageURL string, body []byte) error
}

// CachedFetcher wraps URL fetching with a page cache.
type CachedFetcher struct {
	cache     Cache
	options   *Options
	cacheTTL  time.Duration
	skipCache bool // For testing or forcing fresh fetches
}

// CachedFetcherConfig holds configuration for the cached fetcher.
type CachedFetcherConfig struct {
	CacheTTL  time.Duration
	SkipCache bool
	Options   *Options
}

// DefaultCachedFetcherConfig returns sensible defaults.
func DefaultCachedFetcherConfig() *CachedFetcherConfig {
	return &CachedFetcherConfig{
		CacheTTL:  DefaultCacheTTL,
		SkipCache: false,
		Options:   DefaultOptions(),
	}
}

// NewCachedFetcher creates a new cached fetcher. A nil cache fetches every time.
func NewCachedFetcher(cache Cache, config *CachedFetcherConfig) *CachedFetcher {
	if config == nil {
		config = DefaultCachedFetcherConfig()
	}
	if config.Options == nil {
		config.Options = DefaultOptions()
	}
	if config.CacheTTL == 0 {
		config.CacheTTL = DefaultCacheTTL
	}
	return &CachedFetcher{
		cache:     cache,
		options:   config.Options,
		cacheTTL:  config.CacheTTL,
		skipCache: config.SkipCache,
	}
}

// CachedResult extends Result with cache metadata.
type CachedResult struct {
	*Result
	FromCache bool
}

// Fetch retrieves a URL, serving a fresh cached copy when one exists.
func (f *CachedFetcher) Fetch(ctx context.Context, urlStr string) (*CachedResult, error) {
	if !f.skipCache && f.cache != nil {
		body, ok, err := f.cache.GetPage(ctx, urlStr, f.cacheTTL)
		if err != nil {
			return nil, fmt.Errorf("failed to check cache: %w", err)
		}
		if ok {
			return &CachedResult{
				Result:    &Result{URL: urlStr, Body: body, StatusCode: 200},
				FromCache: true,
			}, nil
		}
	}

	result, err := URL(ctx, urlStr, f.options)
	if err != nil {
		return nil, err
	}

	if f.cache != nil {
		if err := f.cache.PutPage(ctx, urlStr, result.Body); err != nil {
			// The fetch itself succeeded.
			slog.Warn("failed to cache page", "url", urlStr, "error", err)
		}
	}

	return &CachedResult{Result: result}, nil
}
