package normalize

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/nh-rep-finder/internal/types"
)

type stubNormalizer struct {
	name  string
	addr  *types.NormalizedAddress
	err   error
	calls int
}

func (s *stubNormalizer) Name() string { return s.name }

func (s *stubNormalizer) Normalize(context.Context, string) (*types.NormalizedAddress, error) {
	s.calls++
	return s.addr, s.err
}

func TestChain_FirstSuccessWins(t *testing.T) {
	first := &stubNormalizer{name: "a", err: &UnknownAddressError{Reason: "nope"}}
	second := &stubNormalizer{name: "b", addr: &types.NormalizedAddress{Town: "Cornish", Source: "b"}}
	third := &stubNormalizer{name: "c"}

	addr, err := Chain{first, second, third}.Normalize(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, "b", addr.Source)
	assert.Equal(t, 0, third.calls)
}

func TestChain_UnknownAddressPreferredOverTransportError(t *testing.T) {
	unknown := &stubNormalizer{name: "table", err: &UnknownAddressError{Reason: "no town"}}
	down := &stubNormalizer{name: "nominatim", err: errors.New("connection refused")}

	_, err := Chain{unknown, down}.Normalize(context.Background(), "x")
	var ua *UnknownAddressError
	require.ErrorAs(t, err, &ua)
	assert.Equal(t, "no town", ua.Reason)
}

func TestChain_TransportErrorOnly(t *testing.T) {
	down := &stubNormalizer{name: "nominatim", err: errors.New("connection refused")}

	_, err := Chain{down}.Normalize(context.Background(), "x")
	require.Error(t, err)
	var ua *UnknownAddressError
	assert.False(t, errors.As(err, &ua))
	assert.Contains(t, err.Error(), "connection refused")
}

func TestChain_Empty(t *testing.T) {
	_, err := Chain{}.Normalize(context.Background(), "x")
	var ua *UnknownAddressError
	assert.ErrorAs(t, err, &ua)
}

func TestChain_UnknownTownFallsThrough(t *testing.T) {
	table := &stubNormalizer{name: "table", addr: &types.NormalizedAddress{Town: "Cornish Flat", Source: "table"}}
	geo := &stubNormalizer{name: "nominatim", addr: &types.NormalizedAddress{Town: "Cornish", Source: "nominatim"}}
	known := func(town string) bool { return town == "Cornish" }

	addr, err := Chain{table, geo}.NormalizeKnown(context.Background(), "x", known)
	require.NoError(t, err)
	assert.Equal(t, "Cornish", addr.Town)
	assert.Equal(t, 1, geo.calls)
}

func TestChain_NoKnownTownReturnsFirstSuccess(t *testing.T) {
	table := &stubNormalizer{name: "table", addr: &types.NormalizedAddress{Town: "Atlantis", Source: "table"}}
	down := &stubNormalizer{name: "nominatim", err: errors.New("connection refused")}

	addr, err := Chain{table, down}.NormalizeKnown(context.Background(), "x", func(string) bool { return false })
	require.NoError(t, err)
	assert.Equal(t, "Atlantis", addr.Town)
	assert.Equal(t, 1, down.calls)
}
