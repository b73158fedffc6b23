package refdata

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"strings"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// table is a parsed CSV file with normalized headers.
type table struct {
	source    string
	rawHeader []string
	header    []string
	index     map[string]int
	records   []record
}

type record struct {
	line  int
	cells []string
}

// normalizeHeader lower-cases a header and joins its words with underscores.
func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.NewReplacer("-", " ", ".", " ").Replace(h)
	return strings.Join(strings.Fields(h), "_")
}

// readTable parses data as CSV. An empty file or missing header is a LoadError.
func readTable(source string, data []byte) (*table, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, &LoadError{Source: source, Message: "file is empty"}
	}
	if err != nil {
		return nil, &LoadError{Source: source, Message: "failed to read header", Cause: err}
	}

	t := &table{
		source:    source,
		rawHeader: make([]string, len(header)),
		header:    make([]string, len(header)),
		index:     make(map[string]int, len(header)),
	}
	for i, h := range header {
		t.rawHeader[i] = strings.TrimSpace(h)
		t.header[i] = normalizeHeader(h)
		if _, dup := t.index[t.header[i]]; !dup && t.header[i] != "" {
			t.index[t.header[i]] = i
		}
	}

	for {
		cells, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &LoadError{Source: source, Message: "failed to parse CSV", Cause: err}
		}
		line, _ := r.FieldPos(0)
		if blank(cells) {
			continue
		}
		t.records = append(t.records, record{line: line, cells: cells})
	}

	return t, nil
}

func blank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// column returns the index of the first header matching any alias, or -1.
func (t *table) column(aliases ...string) int {
	for _, a := range aliases {
		if i, ok := t.index[a]; ok {
			return i
		}
	}
	return -1
}

// requireColumn is column with a LoadError when nothing matches.
func (t *table) requireColumn(aliases ...string) (int, error) {
	i := t.column(aliases...)
	if i < 0 {
		return -1, &LoadError{
			Source:  t.source,
			Message: "missing column " + strings.Join(aliases, " | "),
		}
	}
	return i, nil
}

func (r record) get(i int) string {
	if i < 0 || i >= len(r.cells) {
		return ""
	}
	return strings.TrimSpace(r.cells[i])
}

// splitList splits a multi-valued cell on ';' or '|'.
func splitList(cell string) []string {
	parts := strings.FieldsFunc(cell, func(r rune) bool { return r == ';' || r == '|' })
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
