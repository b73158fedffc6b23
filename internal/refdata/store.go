package refdata

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
)

// ErrNotReady is returned when no snapshot has been loaded.
var ErrNotReady = errors.New("reference data not loaded")

// LoaderFunc produces a fresh snapshot.
type LoaderFunc func(ctx context.Context) (*Snapshot, error)

// Store holds the current snapshot behind a single atomic reference.
// Readers take one snapshot per request and never observe a partial reload.
type Store struct {
	current atomic.Pointer[Snapshot]
	load    LoaderFunc
	group   singleflight.Group

	reloads  atomic.Int64
	failures atomic.Int64
}

// NewStore performs the initial load. No Store is returned unless it succeeds,
// so every reader of a Store sees a fully loaded snapshot.
func NewStore(ctx context.Context, load LoaderFunc) (*Store, error) {
	snap, err := load(ctx)
	if err != nil {
		return nil, err
	}
	s := &Store{load: load}
	s.current.Store(snap)
	return s, nil
}

// NewStaticStore wraps an already built snapshot. Reload on a static store is a no-op.
func NewStaticStore(snap *Snapshot) *Store {
	s := &Store{}
	s.current.Store(snap)
	return s
}

// Snapshot returns the current snapshot.
func (s *Store) Snapshot() *Snapshot {
	return s.current.Load()
}

// Reload builds a new snapshot and swaps it in. Concurrent callers share one load.
// On failure the previous snapshot stays in place.
func (s *Store) Reload(ctx context.Context) (*Snapshot, error) {
	if s.load == nil {
		return s.Snapshot(), nil
	}
	v, err, _ := s.group.Do("reload", func() (any, error) {
		snap, err := s.load(ctx)
		if err != nil {
			s.failures.Add(1)
			return nil, err
		}
		s.current.Store(snap)
		s.reloads.Add(1)
		return snap, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Snapshot), nil
}

// ReloadCounts reports successful and failed reloads since start.
func (s *Store) ReloadCounts() (ok, failed int64) {
	return s.reloads.Load(), s.failures.Load()
}

// Watch reloads every interval until ctx is done. Failures are logged and the old snapshot kept.
func (s *Store) Watch(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Reload(ctx); err != nil {
				slog.Error("reference data reload failed", "error", err)
			}
		}
	}
}
