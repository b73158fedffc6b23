// Package votes builds per-representative vote maps over the tracked bills.
package votes

import (
	"github.com/jonathan/nh-rep-finder/internal/types"
)

// Source is the subset of the reference data the merger reads.
type Source interface {
	VotesOf(representativeID string) map[string]types.VoteLabel
	Bills() []string
}

// Merger fills a vote map for a fixed list of tracked bills.
type Merger struct {
	tracked []string
}

// NewMerger creates a merger for the given bill codes. Codes are canonicalized and
// de-duplicated; an empty list tracks every bill present in the source.
func NewMerger(tracked []string) *Merger {
	seen := make(map[string]bool)
	var bills []string
	for _, b := range tracked {
		code := types.BillCode(b)
		if code == "" || seen[code] {
			continue
		}
		seen[code] = true
		bills = append(bills, code)
	}
	return &Merger{tracked: bills}
}

// TrackedBills returns the bills merged for src.
func (m *Merger) TrackedBills(src Source) []string {
	if len(m.tracked) > 0 {
		return append([]string(nil), m.tracked...)
	}
	return src.Bills()
}

// Merge returns a label for every tracked bill; bills without a record are "No Vote".
func (m *Merger) Merge(src Source, representativeID string) map[string]types.VoteLabel {
	recorded := src.VotesOf(representativeID)
	bills := m.TrackedBills(src)
	out := make(map[string]types.VoteLabel, len(bills))
	for _, b := range bills {
		label, ok := recorded[b]
		if !ok || !label.Valid() {
			label = types.VoteNone
		}
		out[b] = label
	}
	return out
}
