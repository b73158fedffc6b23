// Package districts resolves a town to the House districts that cover it.
package districts

import (
	"fmt"

	"github.com/jonathan/nh-rep-finder/internal/types"
)

// Tables is the subset of the reference data the resolver reads.
type Tables interface {
	BaseDistrictOf(townKey string) (string, bool)
	FloterialDistrictsOf(townKey string) []string
	Town(townKey string) (types.Town, bool)
}

// UnknownTownError means the town key has no base district in the reference data.
type UnknownTownError struct {
	Town    string
	TownKey string
}

func (e *UnknownTownError) Error() string {
	return fmt.Sprintf("unknown town %q: no base district on record", e.Town)
}

// Resolution is the set of districts applicable to one town.
type Resolution struct {
	TownKey    string
	Town       string
	County     string
	Base       string
	Floterials []string
}

// Districts returns the base district followed by the floterials, in resolution order.
func (r *Resolution) Districts() []string {
	out := make([]string, 0, 1+len(r.Floterials))
	out = append(out, r.Base)
	return append(out, r.Floterials...)
}

// Resolve looks up a town by exact key match. There is no fuzzy fallback.
// Floterials are ordered by district id; an empty list is a valid result.
func Resolve(tables Tables, town string) (*Resolution, error) {
	key := types.TownKey(town)
	base, ok := tables.BaseDistrictOf(key)
	if !ok {
		return nil, &UnknownTownError{Town: town, TownKey: key}
	}

	res := &Resolution{
		TownKey:    key,
		Town:       town,
		Base:       base,
		Floterials: tables.FloterialDistrictsOf(key),
	}
	if res.Floterials == nil {
		res.Floterials = []string{}
	}
	if t, ok := tables.Town(key); ok {
		res.Town = t.Name
		res.County = t.County
	}
	return res, nil
}
