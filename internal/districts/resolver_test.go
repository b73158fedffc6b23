package districts

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/nh-rep-finder/internal/types"
)

type fakeTables struct {
	towns      map[string]types.Town
	floterials map[string][]string
}

func (f *fakeTables) BaseDistrictOf(key string) (string, bool) {
	t, ok := f.towns[key]
	return t.Base, ok
}

func (f *fakeTables) FloterialDistrictsOf(key string) []string {
	return f.floterials[key]
}

func (f *fakeTables) Town(key string) (types.Town, bool) {
	t, ok := f.towns[key]
	return t, ok
}

func newFakeTables() *fakeTables {
	return &fakeTables{
		towns: map[string]types.Town{
			"cornish":   {Key: "cornish", Name: "Cornish", County: "Sullivan", Base: "Sullivan 2"},
			"claremont": {Key: "claremont", Name: "Claremont", County: "Sullivan", Base: "Sullivan 5"},
		},
		floterials: map[string][]string{
			"cornish": {"Sullivan 8"},
		},
	}
}

func TestResolve_BaseAndFloterials(t *testing.T) {
	res, err := Resolve(newFakeTables(), "Cornish")
	require.NoError(t, err)

	assert.Equal(t, "cornish", res.TownKey)
	assert.Equal(t, "Cornish", res.Town)
	assert.Equal(t, "Sullivan", res.County)
	assert.Equal(t, "Sullivan 2", res.Base)
	assert.Equal(t, []string{"Sullivan 8"}, res.Floterials)
	assert.Equal(t, []string{"Sullivan 2", "Sullivan 8"}, res.Districts())
}

func TestResolve_CaseAndWhitespaceInsensitive(t *testing.T) {
	for _, town := range []string{"cornish", "  CORNISH ", "Cornish\t"} {
		res, err := Resolve(newFakeTables(), town)
		require.NoError(t, err, town)
		assert.Equal(t, "Sullivan 2", res.Base)
	}
}

func TestResolve_NoFloterialsIsEmptyNotError(t *testing.T) {
	res, err := Resolve(newFakeTables(), "Claremont")
	require.NoError(t, err)
	assert.NotNil(t, res.Floterials)
	assert.Empty(t, res.Floterials)
	assert.Equal(t, []string{"Sullivan 5"}, res.Districts())
}

func TestResolve_UnknownTown(t *testing.T) {
	res, err := Resolve(newFakeTables(), "Atlantis")
	assert.Nil(t, res)

	var unknown *UnknownTownError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "atlantis", unknown.TownKey)
	assert.Contains(t, err.Error(), "Atlantis")
}

func TestResolve_NoFuzzyFallback(t *testing.T) {
	_, err := Resolve(newFakeTables(), "Cornish Flat")
	var unknown *UnknownTownError
	assert.ErrorAs(t, err, &unknown)
}
