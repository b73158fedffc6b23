package normalize

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/jonathan/nh-rep-finder/internal/types"
)

var zipPattern = regexp.MustCompile(`^\d{5}(-\d{4})?$`)

var stateCodes = map[string]bool{
	"AL": true, "AK": true, "AZ": true, "AR": true, "CA": true, "CO": true, "CT": true, "DE": true,
	"DC": true, "FL": true, "GA": true, "HI": true, "ID": true, "IL": true, "IN": true, "IA": true,
	"KS": true, "KY": true, "LA": true, "ME": true, "MD": true, "MA": true, "MI": true, "MN": true,
	"MS": true, "MO": true, "MT": true, "NE": true, "NV": true, "NJ": true, "NM": true,
	"NY": true, "NC": true, "ND": true, "OH": true, "OK": true, "OR": true, "PA": true, "RI": true,
	"SC": true, "SD": true, "TN": true, "TX": true, "UT": true, "VT": true, "VA": true, "WA": true,
	"WV": true, "WI": true, "WY": true,
}

// TableNormalizer parses "street, town, NH zip" style addresses and maps
// village names to their towns through an alias table.
type TableNormalizer struct {
	aliases map[string]string
}

// NewTableNormalizer creates a normalizer. Alias keys are matched by NameKey.
func NewTableNormalizer(aliases map[string]string) *TableNormalizer {
	m := make(map[string]string, len(aliases))
	for alias, town := range aliases {
		m[types.NameKey(alias)] = strings.TrimSpace(town)
	}
	return &TableNormalizer{aliases: m}
}

// LoadAliases parses an "alias,town" CSV.
func LoadAliases(data []byte) (map[string]string, error) {
	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse alias table: %w", err)
	}

	aliases := make(map[string]string)
	for i, row := range rows {
		if i == 0 && len(row) > 0 && strings.EqualFold(strings.TrimSpace(row[0]), "alias") {
			continue
		}
		if len(row) < 2 || strings.TrimSpace(row[0]) == "" || strings.TrimSpace(row[1]) == "" {
			return nil, fmt.Errorf("alias table line %d: expected alias,town", i+1)
		}
		aliases[strings.TrimSpace(row[0])] = strings.TrimSpace(row[1])
	}
	return aliases, nil
}

// Name implements Normalizer.
func (n *TableNormalizer) Name() string { return "table" }

// Normalize implements Normalizer.
func (n *TableNormalizer) Normalize(_ context.Context, raw string) (*types.NormalizedAddress, error) {
	unknown := func(reason string) error {
		return &UnknownAddressError{Address: raw, Reason: reason}
	}

	var parts []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.Join(strings.Fields(p), " "); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return nil, unknown("address is empty")
	}

	// Country suffix
	if last := strings.ToUpper(strings.ReplaceAll(parts[len(parts)-1], ".", "")); last == "US" || last == "USA" || last == "UNITED STATES" {
		parts = parts[:len(parts)-1]
	}
	if len(parts) == 0 {
		return nil, unknown("no town in address")
	}

	// State and ZIP trail the last component, either alone or after the town.
	tokens := strings.Fields(parts[len(parts)-1])
	var zip string
	if len(tokens) > 0 && zipPattern.MatchString(tokens[len(tokens)-1]) {
		zip = tokens[len(tokens)-1]
		tokens = tokens[:len(tokens)-1]
	}
	if len(tokens) >= 2 && strings.EqualFold(tokens[len(tokens)-2]+" "+tokens[len(tokens)-1], "new hampshire") {
		tokens = tokens[:len(tokens)-2]
	} else if len(tokens) >= 1 {
		state := strings.ToUpper(strings.ReplaceAll(tokens[len(tokens)-1], ".", ""))
		switch {
		case state == "NH":
			tokens = tokens[:len(tokens)-1]
		case stateCodes[state] && len(tokens) <= 2:
			return nil, unknown("address is outside New Hampshire")
		}
	}
	if len(tokens) == 0 {
		parts = parts[:len(parts)-1]
	} else {
		parts[len(parts)-1] = strings.Join(tokens, " ")
	}
	if len(parts) == 0 {
		return nil, unknown("no town in address")
	}

	locality := parts[len(parts)-1]
	if len(parts) == 1 && strings.IndexFunc(locality, unicode.IsDigit) >= 0 {
		return nil, unknown("cannot separate street from town; use \"street, town, NH\"")
	}
	if strings.IndexFunc(locality, unicode.IsLetter) < 0 {
		return nil, unknown("no town in address")
	}

	town := types.TitleCase(locality)
	if target, ok := n.aliases[types.NameKey(locality)]; ok {
		town = target
	}

	formatted := append(parts[:len(parts)-1:len(parts)-1], types.TitleCase(locality), "NH")
	out := strings.Join(formatted, ", ")
	if zip != "" {
		out += " " + zip
	}

	return &types.NormalizedAddress{
		FormattedAddress: out,
		Locality:         locality,
		Town:             town,
		Source:           n.Name(),
	}, nil
}
