package types

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// DiagnosticsSchemaVersion is bumped only when fields are added to Diagnostics.
const DiagnosticsSchemaVersion = 1

// LookupRequest is the address lookup input accepted over HTTP and the CLI.
type LookupRequest struct {
	Address string `json:"address" validate:"required,min=3,max=300"`
}

// Validate validates the LookupRequest using the validator.
func (r *LookupRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// NormalizedAddress is what an address normalizer extracts from free text.
type NormalizedAddress struct {
	FormattedAddress string `json:"formattedAddress"`
	// Locality is the place name as found in the address, before alias mapping.
	Locality string `json:"locality,omitempty"`
	Town     string `json:"town"`
	County   string `json:"county,omitempty"`
	Source   string `json:"source"`
}

// RepresentativeView is one entry of a lookup response.
type RepresentativeView struct {
	ID       string               `json:"id"`
	Name     string               `json:"name"`
	District string               `json:"district"`
	Party    string               `json:"party,omitempty"`
	Email    string               `json:"email,omitempty"`
	Phone    string               `json:"phone,omitempty"`
	VoteMap  map[string]VoteLabel `json:"voteMap"`
}

// Diagnostics describes how a lookup was resolved. Fields are only ever added;
// values without a dedicated field go into Extra.
type Diagnostics struct {
	SchemaVersion       int                 `json:"schemaVersion"`
	RequestID           string              `json:"requestId,omitempty"`
	Normalizer          string              `json:"normalizer"`
	TownKey             string              `json:"townKey"`
	Town                string              `json:"town"`
	County              string              `json:"county,omitempty"`
	BaseDistrict        string              `json:"baseDistrict"`
	FloterialDistricts  []string            `json:"floterialDistricts"`
	DistrictsQueried    []string            `json:"districtsQueried"`
	QualifyingDistricts map[string][]string `json:"qualifyingDistricts"`
	TrackedBills        []string            `json:"trackedBills"`
	SnapshotID          string              `json:"snapshotId"`
	SnapshotLoadedAt    time.Time           `json:"snapshotLoadedAt"`
	ElapsedMicros       int64               `json:"elapsedMicros"`
	Extra               map[string]any      `json:"extra,omitempty"`
}

// LookupResult is the response body of an address lookup.
type LookupResult struct {
	FormattedAddress     string               `json:"formattedAddress"`
	StateRepresentatives []RepresentativeView `json:"stateRepresentatives"`
	Diagnostics          *Diagnostics         `json:"diagnostics,omitempty"`
}
