package openstates

import (
	"encoding/json"
	"strings"

	"github.com/jonathan/nh-rep-finder/internal/types"
)

// flexString decodes a JSON string or number.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*f = flexString(n.String())
		return nil
	}
	*f = ""
	return nil
}

type person struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Party       json.RawMessage `json:"party"`
	Email       string          `json:"email"`
	CurrentRole *struct {
		District flexString `json:"district"`
	} `json:"current_role"`
	EmailAddresses []struct {
		Address string `json:"address"`
	} `json:"email_addresses"`
	Emails  []json.RawMessage `json:"emails"`
	Offices []struct {
		Voice string `json:"voice"`
	} `json:"offices"`
}

// personResult is one people result. Older payloads nest the person and
// carry the district beside it.
type personResult struct {
	person
	Person   *person    `json:"person"`
	District flexString `json:"district"`
}

func (r personResult) representative() (types.Representative, bool) {
	p := r.person
	if r.Person != nil {
		p = *r.Person
	}
	if strings.TrimSpace(p.ID) == "" {
		return types.Representative{}, false
	}

	district := string(r.District)
	if district == "" && p.CurrentRole != nil {
		district = string(p.CurrentRole.District)
	}

	return types.Representative{
		ID:       strings.TrimSpace(p.ID),
		Name:     strings.TrimSpace(p.Name),
		District: types.DistrictLabel(district),
		Party:    partyName(p.Party),
		Email:    p.firstEmail(),
		Phone:    p.firstPhone(),
	}, true
}

// partyName accepts "Democratic" or [{"name": "Democratic"}].
func partyName(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var list []struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 {
		return strings.TrimSpace(list[0].Name)
	}
	return ""
}

func (p person) firstEmail() string {
	if p.Email != "" {
		return p.Email
	}
	for _, e := range p.EmailAddresses {
		if e.Address != "" {
			return e.Address
		}
	}
	for _, raw := range p.Emails {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil && s != "" {
			return s
		}
		var obj struct {
			Address string `json:"address"`
		}
		if err := json.Unmarshal(raw, &obj); err == nil && obj.Address != "" {
			return obj.Address
		}
	}
	return ""
}

func (p person) firstPhone() string {
	for _, off := range p.Offices {
		if off.Voice != "" {
			return off.Voice
		}
	}
	return ""
}
