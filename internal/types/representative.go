package types

// Representative is one roster entry for a member of the NH House.
type Representative struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	District string `json:"district"`
	Party    string `json:"party,omitempty"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
}

// DistrictKind distinguishes a town's own district from an overlay spanning several towns.
type DistrictKind string

const (
	DistrictBase      DistrictKind = "base"
	DistrictFloterial DistrictKind = "floterial"
)

// District is a House district and the towns it covers.
type District struct {
	ID          string       `json:"districtId"`
	Kind        DistrictKind `json:"kind"`
	MemberTowns []string     `json:"memberTowns"`
}

// Town is a municipality row from the town table.
type Town struct {
	Key    string `json:"key"`
	Name   string `json:"name"`
	County string `json:"county,omitempty"`
	Base   string `json:"baseDistrict"`
}
