// Package refdata loads the NH House reference tables into immutable snapshots
// and serves them behind an atomically swappable handle.
package refdata

import (
	"maps"
	"slices"
	"time"

	"github.com/jonathan/nh-rep-finder/internal/types"
)

// Stats summarizes the contents of a snapshot.
type Stats struct {
	Towns              int `json:"towns"`
	BaseDistricts      int `json:"baseDistricts"`
	FloterialDistricts int `json:"floterialDistricts"`
	Representatives    int `json:"representatives"`
	Bills              int `json:"bills"`
	VoteRecords        int `json:"voteRecords"`
	OrphanVoteRows     int `json:"orphanVoteRows"`
}

// Snapshot is one fully validated, read-only copy of the reference data.
// Nothing mutates a Snapshot after Build returns it.
type Snapshot struct {
	id       string
	loadedAt time.Time

	towns          map[string]types.Town
	townFloterials map[string][]string
	baseOverlay    map[string][]string
	districts      map[string]types.District
	reps           map[string]types.Representative
	repsByDistrict map[string][]types.Representative
	votes          map[string]map[string]types.VoteLabel
	bills          []string
	stats          Stats
}

// ID uniquely identifies this snapshot.
func (s *Snapshot) ID() string { return s.id }

// LoadedAt is when the snapshot was built.
func (s *Snapshot) LoadedAt() time.Time { return s.loadedAt }

// Stats returns row counts for the snapshot.
func (s *Snapshot) Stats() Stats { return s.stats }

// BaseDistrictOf returns the base district for an exact town key.
func (s *Snapshot) BaseDistrictOf(townKey string) (string, bool) {
	t, ok := s.towns[townKey]
	if !ok {
		return "", false
	}
	return t.Base, true
}

// FloterialDistrictsOf returns the floterial districts covering a town, sorted by id.
// A town with no floterials yields an empty slice.
func (s *Snapshot) FloterialDistrictsOf(townKey string) []string {
	return append([]string{}, s.townFloterials[townKey]...)
}

// Town returns the town row for an exact town key.
func (s *Snapshot) Town(townKey string) (types.Town, bool) {
	t, ok := s.towns[townKey]
	return t, ok
}

// Towns returns every town sorted by key.
func (s *Snapshot) Towns() []types.Town {
	out := make([]types.Town, 0, len(s.towns))
	for _, k := range slices.Sorted(maps.Keys(s.towns)) {
		out = append(out, s.towns[k])
	}
	return out
}

// OverlayFloterials returns the floterials the base overlay table lists for a base district.
func (s *Snapshot) OverlayFloterials(baseDistrict string) ([]string, bool) {
	f, ok := s.baseOverlay[baseDistrict]
	return slices.Clone(f), ok
}

// District returns the district record for a canonical district id.
func (s *Snapshot) District(id string) (types.District, bool) {
	d, ok := s.districts[id]
	if !ok {
		return types.District{}, false
	}
	d.MemberTowns = slices.Clone(d.MemberTowns)
	return d, true
}

// Districts returns every district sorted by id.
func (s *Snapshot) Districts() []types.District {
	out := make([]types.District, 0, len(s.districts))
	for _, k := range slices.Sorted(maps.Keys(s.districts)) {
		d, _ := s.District(k)
		out = append(out, d)
	}
	return out
}

// RepresentativesOf returns the roster entries for a district, ordered by name.
func (s *Snapshot) RepresentativesOf(districtID string) []types.Representative {
	return slices.Clone(s.repsByDistrict[districtID])
}

// Representative returns a roster entry by id.
func (s *Snapshot) Representative(id string) (types.Representative, bool) {
	r, ok := s.reps[id]
	return r, ok
}

// Representatives returns the full roster ordered by district, then name.
func (s *Snapshot) Representatives() []types.Representative {
	out := make([]types.Representative, 0, len(s.reps))
	for _, d := range slices.Sorted(maps.Keys(s.repsByDistrict)) {
		out = append(out, s.repsByDistrict[d]...)
	}
	return out
}

// VotesOf returns the recorded votes of a representative keyed by bill code.
// Bills without a record are absent from the map.
func (s *Snapshot) VotesOf(representativeID string) map[string]types.VoteLabel {
	return maps.Clone(s.votes[representativeID])
}

// Bills returns every bill code present in the vote table, in first-seen order.
func (s *Snapshot) Bills() []string {
	return slices.Clone(s.bills)
}
