//nolint:revive // types is a standard Go package name pattern
package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseVoteLabel(t *testing.T) {
	tests := []struct {
		raw    string
		want   VoteLabel
		wantOK bool
	}{
		{"For", VoteFor, true},
		{" yea ", VoteFor, true},
		{"Y", VoteFor, true},
		{"Against", VoteAgainst, true},
		{"NAY", VoteAgainst, true},
		{"no", VoteAgainst, true},
		{"No Vote", VoteNone, true},
		{"no  vote", VoteNone, true},
		{"Excused", VoteNone, true},
		{"", VoteNone, true},
		{"Maybe", "", false},
		{"Present", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := ParseVoteLabel(tt.raw)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestVoteLabel_Valid(t *testing.T) {
	assert.True(t, VoteFor.Valid())
	assert.True(t, VoteAgainst.Valid())
	assert.True(t, VoteNone.Valid())
	assert.False(t, VoteLabel("Yea").Valid())
	assert.False(t, VoteLabel("").Valid())
}
