package types

import "strings"

// VoteLabel is the recorded position of a representative on a tracked bill.
type VoteLabel string

const (
	VoteFor     VoteLabel = "For"
	VoteAgainst VoteLabel = "Against"
	VoteNone    VoteLabel = "No Vote"
)

var voteAliases = map[string]VoteLabel{
	"":           VoteNone,
	"for":        VoteFor,
	"yea":        VoteFor,
	"yes":        VoteFor,
	"y":          VoteFor,
	"against":    VoteAgainst,
	"nay":        VoteAgainst,
	"no":         VoteAgainst,
	"n":          VoteAgainst,
	"no vote":    VoteNone,
	"novote":     VoteNone,
	"nv":         VoteNone,
	"excused":    VoteNone,
	"absent":     VoteNone,
	"not voting": VoteNone,
}

// ParseVoteLabel maps a raw CSV cell onto one of the three vote labels.
// The second return value is false when the cell is not a recognized vote.
func ParseVoteLabel(raw string) (VoteLabel, bool) {
	label, ok := voteAliases[strings.ToLower(collapse(raw))]
	return label, ok
}

// Valid reports whether v is one of the three permitted labels.
func (v VoteLabel) Valid() bool {
	return v == VoteFor || v == VoteAgainst || v == VoteNone
}
