// Package fetch provides URL and file retrieval for reference data sources and upstream APIs.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// DefaultUserAgent is the user agent string for HTTP requests.
const DefaultUserAgent = "nh-rep-finder/1.0"

// Rate limit retry defaults. Retries wait a fixed delay; there is no backoff growth.
const (
	DefaultRateLimitDelay    = 8 * time.Second
	DefaultMaxRateLimitDelay = 60 * time.Second
	DefaultRateLimitRetries  = 5
)

// Result holds the body and metadata of a fetch.
type Result struct {
	URL         string
	Body        []byte
	ContentType string
	StatusCode  int
}

// Error represents an error during URL fetching.
type Error struct {
	URL        string
	Message    string
	StatusCode int
	Cause      error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch error for %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Options configures the fetch behavior.
type Options struct {
	Timeout   time.Duration
	UserAgent string
	Headers   map[string]string

	// RateLimitRetries is how many times a 429 response is retried. Zero disables retry.
	RateLimitRetries int
	// RateLimitDelay is the wait used when the server sends no usable Retry-After.
	RateLimitDelay time.Duration
	// MaxRateLimitDelay caps any Retry-After the server asks for.
	MaxRateLimitDelay time.Duration

	Client *http.Client
}

// DefaultOptions returns sensible defaults for fetching.
func DefaultOptions() *Options {
	return &Options{
		Timeout:           DefaultTimeout,
		UserAgent:         DefaultUserAgent,
		RateLimitRetries:  DefaultRateLimitRetries,
		RateLimitDelay:    DefaultRateLimitDelay,
		MaxRateLimitDelay: DefaultMaxRateLimitDelay,
	}
}

// sleep is replaced in tests.
var sleep = func(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// URL retrieves the body of an http(s) URL, retrying rate-limited responses after a fixed delay.
func URL(ctx context.Context, urlStr string, opts *Options) (*Result, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	parsedURL, err := url.Parse(urlStr)
	if err != nil || parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, &Error{
			URL:     urlStr,
			Message: "invalid URL",
			Cause:   err,
		}
	}

	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}

	for attempt := 0; ; attempt++ {
		result, retryAfter, err := do(ctx, client, urlStr, opts)
		if err == nil || result == nil || result.StatusCode != http.StatusTooManyRequests || attempt >= opts.RateLimitRetries {
			return result, err
		}
		if err := sleep(ctx, rateLimitDelay(retryAfter, opts)); err != nil {
			return result, &Error{URL: urlStr, Message: "cancelled while rate limited", StatusCode: result.StatusCode, Cause: err}
		}
	}
}

func do(ctx context.Context, client *http.Client, urlStr string, opts *Options) (*Result, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, "", &Error{
			URL:     urlStr,
			Message: "failed to create request",
			Cause:   err,
		}
	}

	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	req.Header.Set("User-Agent", userAgent)
	for key, value := range opts.Headers {
		req.Header.Set(key, value)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, "", &Error{
			URL:     urlStr,
			Message: "HTTP request failed",
			Cause:   err,
		}
	}
	defer func() { _ = resp.Body.Close() }()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", &Error{
			URL:     urlStr,
			Message: "failed to read response body",
			Cause:   err,
		}
	}

	result := &Result{
		URL:         urlStr,
		Body:        bodyBytes,
		ContentType: resp.Header.Get("Content-Type"),
		StatusCode:  resp.StatusCode,
	}

	if resp.StatusCode != http.StatusOK {
		return result, resp.Header.Get("Retry-After"), &Error{
			URL:        urlStr,
			Message:    fmt.Sprintf("HTTP status %d", resp.StatusCode),
			StatusCode: resp.StatusCode,
		}
	}

	return result, "", nil
}

// rateLimitDelay turns a Retry-After header (seconds form) into a bounded wait.
func rateLimitDelay(retryAfter string, opts *Options) time.Duration {
	delay := opts.RateLimitDelay
	if delay <= 0 {
		delay = DefaultRateLimitDelay
	}
	if secs, err := strconv.Atoi(retryAfter); err == nil && secs > 0 {
		delay = time.Duration(secs) * time.Second
	}
	maxDelay := opts.MaxRateLimitDelay
	if maxDelay <= 0 {
		maxDelay = DefaultMaxRateLimitDelay
	}
	if delay > maxDelay {
		delay = maxDelay
	}
	return delay
}
