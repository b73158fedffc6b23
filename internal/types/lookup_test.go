//nolint:revive // types is a standard Go package name pattern
package types

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		address string
		wantErr bool
	}{
		{"valid address", "667 NH RT 120, Cornish, NH", false},
		{"empty address", "", true},
		{"too short", "ab", true},
		{"too long", strings.Repeat("a", 301), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := LookupRequest{Address: tt.address}
			err := req.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLookupResult_JSONShape(t *testing.T) {
	result := LookupResult{
		FormattedAddress: "667 NH RT 120, Cornish, NH",
		StateRepresentatives: []RepresentativeView{
			{
				ID:       "ocd-person/1",
				Name:     "Jane Doe",
				District: "Sullivan 2",
				VoteMap:  map[string]VoteLabel{"HB1": VoteFor, "HB2": VoteNone},
			},
		},
	}

	data, err := json.Marshal(result)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "667 NH RT 120, Cornish, NH", decoded["formattedAddress"])
	assert.NotContains(t, decoded, "diagnostics")

	reps := decoded["stateRepresentatives"].([]any)
	require.Len(t, reps, 1)
	rep := reps[0].(map[string]any)
	assert.Equal(t, "Sullivan 2", rep["district"])
	assert.NotContains(t, rep, "party")
	voteMap := rep["voteMap"].(map[string]any)
	assert.Equal(t, "For", voteMap["HB1"])
	assert.Equal(t, "No Vote", voteMap["HB2"])
}
