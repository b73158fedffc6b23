// Package assembly gathers the representatives serving a resolved set of districts.
package assembly

import (
	"github.com/jonathan/nh-rep-finder/internal/districts"
	"github.com/jonathan/nh-rep-finder/internal/types"
)

// Roster is the subset of the reference data the assembler reads.
type Roster interface {
	RepresentativesOf(districtID string) []types.Representative
}

// Member is a representative together with every applicable district that includes them.
type Member struct {
	Representative types.Representative
	Qualifying     []string
}

// Assemble returns every representative of the base district and of each floterial,
// once per id. Base representatives come first, then floterials in resolution order,
// each district's members ordered by name as the roster supplies them.
func Assemble(roster Roster, res *districts.Resolution) []Member {
	var members []Member
	index := make(map[string]int)

	for _, d := range res.Districts() {
		for _, rep := range roster.RepresentativesOf(d) {
			if i, seen := index[rep.ID]; seen {
				members[i].Qualifying = append(members[i].Qualifying, d)
				continue
			}
			index[rep.ID] = len(members)
			members = append(members, Member{Representative: rep, Qualifying: []string{d}})
		}
	}
	return members
}
