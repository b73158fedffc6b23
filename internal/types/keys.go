// Package types provides the value types and canonical key functions shared across nh-rep-finder.
package types

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	districtLabelPattern = regexp.MustCompile(`^([A-Za-z]+(?:[ .'-]+[A-Za-z]+)*)\s*0*([0-9]+)$`)
	billCodePattern      = regexp.MustCompile(`(?i)(HB|SB|HR|HCR|SCR)\s*[-_ ]?\s*(\d{1,4})`)
)

// collapse trims s and folds every run of whitespace into a single space.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// TownKey returns the canonical join key for a municipality name.
// Two spellings that differ only in case or surrounding whitespace produce the same key.
func TownKey(name string) string {
	return strings.ToLower(collapse(name))
}

// NameKey returns the comparison key for a person or alias name.
func NameKey(name string) string {
	return strings.ToLower(collapse(name))
}

// DistrictLabel canonicalizes a House district label to "County N" form,
// e.g. "sullivan 02" becomes "Sullivan 2". Labels that are not county+number are only collapsed.
func DistrictLabel(label string) string {
	s := collapse(label)
	m := districtLabelPattern.FindStringSubmatch(s)
	if m == nil {
		return s
	}
	n, err := strconv.Atoi(m[2])
	if err != nil {
		return s
	}
	return TitleCase(m[1]) + " " + strconv.Itoa(n)
}

// BillCode canonicalizes a bill reference such as "hb 1234 (2025)" to "HB1234".
// Unrecognized labels are returned trimmed.
func BillCode(label string) string {
	m := billCodePattern.FindStringSubmatch(label)
	if m == nil {
		return collapse(label)
	}
	n, err := strconv.Atoi(m[2])
	if err != nil {
		return collapse(label)
	}
	return strings.ToUpper(m[1]) + strconv.Itoa(n)
}

// TitleCase upper-cases the first letter of every space-separated word and lower-cases the rest.
func TitleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + strings.ToLower(w[size:])
	}
	return strings.Join(words, " ")
}
