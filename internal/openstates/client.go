// Package openstates talks to the OpenStates v3 API: paginated NH House
// people for the roster export and bill page lookups.
package openstates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jonathan/nh-rep-finder/internal/fetch"
	"github.com/jonathan/nh-rep-finder/internal/types"
)

// Defaults for the OpenStates client.
const (
	DefaultBaseURL  = "https://v3.openstates.org"
	DefaultPerPage  = 50
	DefaultThrottle = 900 * time.Millisecond
	Jurisdiction    = "New Hampshire"
	LowerChamber    = "lower"
	apiKeyHeader    = "X-API-KEY"
)

// ErrNoAPIKey is returned when a call needs an API key and none is configured.
var ErrNoAPIKey = errors.New("OPENSTATES_API_KEY is not set")

// UpstreamError reports a failed or unreadable OpenStates response.
type UpstreamError struct {
	Op    string
	Cause error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("openstates %s failed: %v", e.Op, e.Cause)
}

func (e *UpstreamError) Unwrap() error {
	return e.Cause
}

// Config configures a Client.
type Config struct {
	BaseURL string
	APIKey  string
	// Cache stores people pages between runs. Nil disables caching.
	Cache    fetch.Cache
	CacheTTL time.Duration
	PerPage  int
	// Throttle is the pause between people pages.
	Throttle time.Duration
	Options  *fetch.Options
}

// Client is an OpenStates API client.
type Client struct {
	baseURL  string
	apiKey   string
	perPage  int
	throttle time.Duration
	options  *fetch.Options
	pages    *fetch.CachedFetcher
	sleep    func(context.Context, time.Duration) error

	links sync.Map // "code:year" -> BillLink
}

// NewClient creates a client from cfg, filling defaults.
func NewClient(cfg Config) *Client {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	perPage := cfg.PerPage
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	throttle := cfg.Throttle
	if throttle < 0 {
		throttle = 0
	}

	opts := fetch.DefaultOptions()
	if cfg.Options != nil {
		copied := *cfg.Options
		opts = &copied
	}
	headers := map[string]string{"Accept": "application/json"}
	for k, v := range opts.Headers {
		headers[k] = v
	}
	if cfg.APIKey != "" {
		headers[apiKeyHeader] = cfg.APIKey
	}
	opts.Headers = headers

	return &Client{
		baseURL:  base,
		apiKey:   cfg.APIKey,
		perPage:  perPage,
		throttle: throttle,
		options:  opts,
		pages: fetch.NewCachedFetcher(cfg.Cache, &fetch.CachedFetcherConfig{
			CacheTTL: cfg.CacheTTL,
			Options:  opts,
		}),
		sleep: sleepCtx,
	}
}

// HasAPIKey reports whether the client is configured with an API key.
func (c *Client) HasAPIKey() bool {
	return c.apiKey != ""
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

type pagination struct {
	PerPage    int `json:"per_page"`
	Page       int `json:"page"`
	MaxPage    int `json:"max_page"`
	TotalItems int `json:"total_items"`
}

type peoplePage struct {
	Results    []personResult `json:"results"`
	Pagination pagination     `json:"pagination"`
}

// PageProgress is called after each people page with the page number and its row count.
type PageProgress func(page, count int, fromCache bool)

// HouseMembers lists every NH House member, one page at a time.
func (c *Client) HouseMembers(ctx context.Context, progress PageProgress) ([]types.Representative, error) {
	if c.apiKey == "" {
		return nil, ErrNoAPIKey
	}

	var reps []types.Representative
	for page := 1; ; page++ {
		res, err := c.pages.Fetch(ctx, c.peopleURL(page))
		if err != nil {
			return nil, &UpstreamError{Op: fmt.Sprintf("people page %d", page), Cause: err}
		}

		var body peoplePage
		if err := json.Unmarshal(res.Body, &body); err != nil {
			return nil, &UpstreamError{Op: fmt.Sprintf("people page %d", page), Cause: fmt.Errorf("failed to decode response: %w", err)}
		}

		for _, r := range body.Results {
			rep, ok := r.representative()
			if !ok {
				slog.Warn("skipping openstates person without id", "page", page, "name", r.Name)
				continue
			}
			reps = append(reps, rep)
		}
		if progress != nil {
			progress(page, len(body.Results), res.FromCache)
		}

		if len(body.Results) == 0 {
			break
		}
		if body.Pagination.MaxPage > 0 {
			if page >= body.Pagination.MaxPage {
				break
			}
		} else if len(body.Results) < c.perPage {
			break
		}
		if !res.FromCache {
			if err := c.sleep(ctx, c.throttle); err != nil {
				return nil, err
			}
		}
	}
	return reps, nil
}

func (c *Client) peopleURL(page int) string {
	q := url.Values{}
	q.Set("jurisdiction", Jurisdiction)
	q.Set("org_classification", LowerChamber)
	q.Set("per_page", strconv.Itoa(c.perPage))
	q.Set("page", strconv.Itoa(page))
	return c.baseURL + "/people?" + q.Encode()
}
