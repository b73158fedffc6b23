package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/nh-rep-finder/internal/districts"
	"github.com/jonathan/nh-rep-finder/internal/normalize"
	"github.com/jonathan/nh-rep-finder/internal/openstates"
	"github.com/jonathan/nh-rep-finder/internal/refdata"
)

// Error kinds carried in the "type" field of error bodies.
const (
	KindInvalidRequest = "invalid_request"
	KindUnknownAddress = "unknown_address"
	KindUnknownTown    = "unknown_town"
	KindNotReady       = "not_ready"
	KindNotConfigured  = "not_configured"
	KindUpstream       = "upstream_error"
	KindRateLimited    = "rate_limited"
	KindInternal       = "internal_error"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error     string `json:"error"`
	Type      string `json:"type"`
	RequestID string `json:"requestId,omitempty"`
}

// classify maps an error to its HTTP status and kind.
func classify(err error) (int, string) {
	var (
		validation     *ErrValidation
		unknownAddress *normalize.UnknownAddressError
		unknownTown    *districts.UnknownTownError
		upstream       *openstates.UpstreamError
	)
	switch {
	case err == nil:
		return http.StatusOK, ""
	case errors.As(err, &validation):
		return http.StatusBadRequest, KindInvalidRequest
	case errors.As(err, &unknownAddress):
		return http.StatusUnprocessableEntity, KindUnknownAddress
	case errors.As(err, &unknownTown):
		return http.StatusNotFound, KindUnknownTown
	case errors.Is(err, refdata.ErrNotReady):
		return http.StatusServiceUnavailable, KindNotReady
	case errors.Is(err, openstates.ErrNoAPIKey):
		return http.StatusServiceUnavailable, KindNotConfigured
	case errors.As(err, &upstream):
		return http.StatusBadGateway, KindUpstream
	default:
		return http.StatusInternalServerError, KindInternal
	}
}
