package fetch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DirCache is a Cache that keeps one file per URL in a directory.
type DirCache struct {
	dir string
	now func() time.Time
}

// NewDirCache creates the directory if needed and returns a cache rooted there.
func NewDirCache(dir string) (*DirCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &DirCache{dir: dir, now: time.Now}, nil
}

func (c *DirCache) path(pageURL string) string {
	sum := sha256.Sum256([]byte(pageURL))
	return filepath.Join(c.dir, hex.EncodeToString(sum[:])+".page")
}

// GetPage implements Cache. Freshness is judged by file modification time.
func (c *DirCache) GetPage(_ context.Context, pageURL string, maxAge time.Duration) ([]byte, bool, error) {
	p := c.path(pageURL)
	info, err := os.Stat(p)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to stat cached page: %w", err)
	}
	if c.now().Sub(info.ModTime()) > maxAge {
		return nil, false, nil
	}
	body, err := os.ReadFile(p)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cached page: %w", err)
	}
	return body, true, nil
}

// PutPage implements Cache.
func (c *DirCache) PutPage(_ context.Context, pageURL string, body []byte) error {
	p := c.path(pageURL)
	tmp := p + ".tmp"
	if err := os.WriteFile(tmp, body, 0o644); err != nil {
		return fmt.Errorf("failed to write cached page: %w", err)
	}
	if err := os.Rename(tmp, p); err != nil {
		return fmt.Errorf("failed to finalize cached page: %w", err)
	}
	return nil
}
