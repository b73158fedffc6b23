// Package normalize turns free-text addresses into a New Hampshire town name.
package normalize

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jonathan/nh-rep-finder/internal/types"
)

// Normalizer extracts the municipality from a raw address.
type Normalizer interface {
	Name() string
	Normalize(ctx context.Context, raw string) (*types.NormalizedAddress, error)
}

// UnknownAddressError means the input could not be resolved to a New Hampshire town.
type UnknownAddressError struct {
	Address string
	Reason  string
}

func (e *UnknownAddressError) Error() string {
	return fmt.Sprintf("unknown address %q: %s", e.Address, e.Reason)
}

// Chain tries each normalizer in order and returns the first success.
type Chain []Normalizer

// Name implements Normalizer.
func (c Chain) Name() string { return "chain" }

// KnownTownNormalizer is implemented by normalizers that can skip results naming
// a town the caller has no data for.
type KnownTownNormalizer interface {
	Normalizer
	NormalizeKnown(ctx context.Context, raw string, known func(town string) bool) (*types.NormalizedAddress, error)
}

// Normalize implements Normalizer. An UnknownAddressError from any member wins over
// transport failures so that bad input is never reported as an internal error.
func (c Chain) Normalize(ctx context.Context, raw string) (*types.NormalizedAddress, error) {
	return c.NormalizeKnown(ctx, raw, nil)
}

// NormalizeKnown is Normalize, except that a success whose town fails known moves on
// to the next member. When no member yields a known town, the first success is returned
// so the caller can still report the unknown town.
func (c Chain) NormalizeKnown(ctx context.Context, raw string, known func(town string) bool) (*types.NormalizedAddress, error) {
	var unknown *UnknownAddressError
	var lastErr error
	var unmatched *types.NormalizedAddress
	for _, n := range c {
		addr, err := n.Normalize(ctx, raw)
		if err == nil {
			if known == nil || known(addr.Town) {
				return addr, nil
			}
			slog.Debug("normalized town has no districts, trying next normalizer", "normalizer", n.Name(), "town", addr.Town)
			if unmatched == nil {
				unmatched = addr
			}
			continue
		}
		var ua *UnknownAddressError
		if errors.As(err, &ua) {
			unknown = ua
			continue
		}
		slog.Warn("address normalizer failed", "normalizer", n.Name(), "error", err)
		lastErr = err
	}
	if unmatched != nil {
		return unmatched, nil
	}
	if unknown != nil {
		return nil, unknown
	}
	if lastErr != nil {
		return nil, fmt.Errorf("failed to normalize address: %w", lastErr)
	}
	return nil, &UnknownAddressError{Address: raw, Reason: "no normalizer configured"}
}
