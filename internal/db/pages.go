package db

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// FetchedPage is a cached upstream response body.
type FetchedPage struct {
	URL         string
	Body        []byte
	ContentHash string
	FetchedAt   time.Time
	HitCount    int
}

// IsFresh reports whether the page was fetched within maxAge.
func (p *FetchedPage) IsFresh(maxAge time.Duration, now time.Time) bool {
	return now.Sub(p.FetchedAt) <= maxAge
}

// HashContent returns the SHA-256 hex digest of body.
func HashContent(body []byte) string {
	hash := sha256.Sum256(body)
	return hex.EncodeToString(hash[:])
}

// GetFetchedPage returns the cached page for pageURL, or nil if none exists.
func (db *DB) GetFetchedPage(ctx context.Context, pageURL string) (*FetchedPage, error) {
	var page FetchedPage
	err := db.pool.QueryRow(ctx,
		`SELECT url, body, content_hash, fetched_at, hit_count
		 FROM fetched_pages WHERE url = $1`,
		pageURL,
	).Scan(&page.URL, &page.Body, &page.ContentHash, &page.FetchedAt, &page.HitCount)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get fetched page: %w", err)
	}
	return &page, nil
}

// GetPage returns the cached body when it is younger than maxAge.
func (db *DB) GetPage(ctx context.Context, pageURL string, maxAge time.Duration) ([]byte, bool, error) {
	page, err := db.GetFetchedPage(ctx, pageURL)
	if err != nil {
		return nil, false, err
	}
	if page == nil || !page.IsFresh(maxAge, time.Now()) {
		return nil, false, nil
	}

	// Hit counting is best effort
	_, _ = db.pool.Exec(ctx, `UPDATE fetched_pages SET hit_count = hit_count + 1 WHERE url = $1`, pageURL)

	return page.Body, true, nil
}

// PutPage inserts or replaces the cached body for pageURL.
func (db *DB) PutPage(ctx context.Context, pageURL string, body []byte) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO fetched_pages (url, body, content_hash, fetched_at)
		 VALUES ($1, $2, $3, NOW())
		 ON CONFLICT (url) DO UPDATE SET body = $2, content_hash = $3, fetched_at = NOW()`,
		pageURL, body, HashContent(body),
	)
	if err != nil {
		return fmt.Errorf("failed to store fetched page: %w", err)
	}
	return nil
}

// DeleteStalePages removes pages fetched more than maxAge ago and returns how many were removed.
func (db *DB) DeleteStalePages(ctx context.Context, maxAge time.Duration) (int64, error) {
	tag, err := db.pool.Exec(ctx,
		`DELETE FROM fetched_pages WHERE fetched_at < $1`,
		time.Now().Add(-maxAge),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete stale pages: %w", err)
	}
	return tag.RowsAffected(), nil
}
