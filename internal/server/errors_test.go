package server

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/nh-rep-finder/internal/districts"
	"github.com/jonathan/nh-rep-finder/internal/normalize"
	"github.com/jonathan/nh-rep-finder/internal/openstates"
	"github.com/jonathan/nh-rep-finder/internal/refdata"
)

func TestErrValidation(t *testing.T) {
	err := &ErrValidation{Field: "address", Message: "is required"}
	assert.Equal(t, "validation error: address - is required", err.Error())
	status, kind := classify(err)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, KindInvalidRequest, kind)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
		kind     string
	}{
		{
			name:     "validation",
			err:      &ErrValidation{Field: "address", Message: "too short"},
			expected: http.StatusBadRequest,
			kind:     KindInvalidRequest,
		},
		{
			name:     "unknown address",
			err:      &normalize.UnknownAddressError{Address: "x", Reason: "outside New Hampshire"},
			expected: http.StatusUnprocessableEntity,
			kind:     KindUnknownAddress,
		},
		{
			name:     "unknown town",
			err:      &districts.UnknownTownError{Town: "Atlantis", TownKey: "atlantis"},
			expected: http.StatusNotFound,
			kind:     KindUnknownTown,
		},
		{
			name:     "wrapped unknown town",
			err:      fmt.Errorf("lookup: %w", &districts.UnknownTownError{Town: "Atlantis", TownKey: "atlantis"}),
			expected: http.StatusNotFound,
			kind:     KindUnknownTown,
		},
		{
			name:     "not ready",
			err:      refdata.ErrNotReady,
			expected: http.StatusServiceUnavailable,
			kind:     KindNotReady,
		},
		{
			name:     "no api key",
			err:      openstates.ErrNoAPIKey,
			expected: http.StatusServiceUnavailable,
			kind:     KindNotConfigured,
		},
		{
			name:     "upstream",
			err:      &openstates.UpstreamError{Op: "bill search", Cause: errors.New("HTTP status 502")},
			expected: http.StatusBadGateway,
			kind:     KindUpstream,
		},
		{
			name:     "load error is internal",
			err:      &refdata.LoadError{Source: refdata.SourceRoster, Message: "source is empty"},
			expected: http.StatusInternalServerError,
			kind:     KindInternal,
		},
		{
			name:     "data integrity error is internal",
			err:      &refdata.DataIntegrityError{Source: refdata.SourceTowns, Message: "conflict"},
			expected: http.StatusInternalServerError,
			kind:     KindInternal,
		},
		{
			name:     "Unknown error",
			err:      assert.AnError,
			expected: http.StatusInternalServerError,
			kind:     KindInternal,
		},
		{
			name:     "Nil error",
			err:      nil,
			expected: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, kind := classify(tt.err)
			assert.Equal(t, tt.expected, status)
			assert.Equal(t, tt.kind, kind)
		})
	}
}
