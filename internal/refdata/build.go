package refdata

import (
	"cmp"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/nh-rep-finder/internal/types"
)

// Source names used in errors.
const (
	SourceTowns  = "floterial_by_town.csv"
	SourceBases  = "floterial_by_base.csv"
	SourceRoster = "nh_house_ids.csv"
	SourceVotes  = "votes.csv"
)

// Column aliases accepted for each logical field.
var (
	colTown      = []string{"town", "municipality"}
	colCounty    = []string{"county"}
	colBase      = []string{"base_district", "base", "base_label"}
	colFloterial = []string{"floterial_district", "floterial", "floterials", "floterial_label", "district"}
	colRepID     = []string{"openstates_person_id", "openstates_id", "person_id", "id"}
	colRepName   = []string{"name", "rep_name"}
	colDistrict  = []string{"district", "district_label"}
	colParty     = []string{"party"}
	colEmail     = []string{"email"}
	colPhone     = []string{"phone"}
	colBill      = []string{"bill"}
	colVote      = []string{"vote"}
)

// colOverlayBase also accepts a plain district header, which the overlay file
// uses for its base column.
var colOverlayBase = []string{"base_district", "base", "base_label", "district"}

// voteMetaColumns are wide-format columns that never name a bill.
var voteMetaColumns = map[string]bool{
	"openstates_person_id": true, "openstates_id": true, "person_id": true, "id": true,
	"name": true, "rep_name": true, "district": true, "district_label": true,
	"party": true, "email": true, "phone": true, "county": true, "town": true,
}

// Inputs holds the raw bytes of each reference source. Bases and Votes may be empty.
type Inputs struct {
	Towns  []byte
	Bases  []byte
	Roster []byte
	Votes  []byte
}

// builder accumulates state while parsing the sources into a snapshot.
type builder struct {
	snap       *Snapshot
	floterials map[string]map[string]bool
	townLines  map[string]int
	baseIDs    map[string]bool
	flotIDs    map[string]bool
}

// Build parses and cross-validates the inputs into a new Snapshot.
func Build(in Inputs) (*Snapshot, error) {
	b := &builder{
		snap: &Snapshot{
			id:             uuid.NewString(),
			loadedAt:       time.Now().UTC(),
			towns:          make(map[string]types.Town),
			townFloterials: make(map[string][]string),
			baseOverlay:    make(map[string][]string),
			districts:      make(map[string]types.District),
			reps:           make(map[string]types.Representative),
			repsByDistrict: make(map[string][]types.Representative),
			votes:          make(map[string]map[string]types.VoteLabel),
		},
		floterials: make(map[string]map[string]bool),
		townLines:  make(map[string]int),
		baseIDs:    make(map[string]bool),
		flotIDs:    make(map[string]bool),
	}

	if err := b.parseTowns(in.Towns); err != nil {
		return nil, err
	}
	if len(in.Bases) > 0 {
		if err := b.parseBases(in.Bases); err != nil {
			return nil, err
		}
	}
	if err := b.parseRoster(in.Roster); err != nil {
		return nil, err
	}
	b.finishDistricts()
	if err := b.checkDistricts(); err != nil {
		return nil, err
	}
	if len(in.Votes) > 0 {
		if err := b.parseVotes(in.Votes); err != nil {
			return nil, err
		}
	}

	s := b.snap
	s.stats.Towns = len(s.towns)
	s.stats.Representatives = len(s.reps)
	s.stats.Bills = len(s.bills)
	for _, d := range s.districts {
		if d.Kind == types.DistrictBase {
			s.stats.BaseDistricts++
		} else {
			s.stats.FloterialDistricts++
		}
	}
	return s, nil
}

func (b *builder) parseTowns(data []byte) error {
	if len(data) == 0 {
		return &LoadError{Source: SourceTowns, Message: "source is empty"}
	}
	t, err := readTable(SourceTowns, data)
	if err != nil {
		return err
	}
	townCol, err := t.requireColumn(colTown...)
	if err != nil {
		return err
	}
	baseCol, err := t.requireColumn(colBase...)
	if err != nil {
		return err
	}
	countyCol := t.column(colCounty...)
	flotCol := t.column(colFloterial...)

	bad := &rowErrors{source: SourceTowns}
	for _, rec := range t.records {
		name, base := rec.get(townCol), rec.get(baseCol)
		if name == "" {
			bad.add(rec.line, "empty town")
			continue
		}
		if base == "" {
			bad.add(rec.line, "empty base district for town %q", name)
			continue
		}

		key := types.TownKey(name)
		base = types.DistrictLabel(base)
		town, seen := b.snap.towns[key]
		if seen && town.Base != base {
			return &DataIntegrityError{
				Source:  SourceTowns,
				Line:    rec.line,
				Message: fmt.Sprintf("town %q mapped to base districts %q (line %d) and %q", town.Name, town.Base, b.townLines[key], base),
			}
		}
		if !seen {
			town = types.Town{Key: key, Name: types.TitleCase(name), Base: base}
			b.townLines[key] = rec.line
			b.floterials[key] = make(map[string]bool)
		}
		if town.County == "" {
			town.County = types.TitleCase(rec.get(countyCol))
		}
		b.snap.towns[key] = town
		b.baseIDs[base] = true

		for _, f := range splitList(rec.get(flotCol)) {
			f = types.DistrictLabel(f)
			b.floterials[key][f] = true
			b.flotIDs[f] = true
		}
	}
	if err := bad.err(); err != nil {
		return err
	}
	if len(b.snap.towns) == 0 {
		return &LoadError{Source: SourceTowns, Message: "no town rows"}
	}
	return nil
}

func (b *builder) parseBases(data []byte) error {
	t, err := readTable(SourceBases, data)
	if err != nil {
		return err
	}
	baseCol, err := t.requireColumn(colOverlayBase...)
	if err != nil {
		return err
	}
	flotCol, err := t.requireColumn(colFloterial...)
	if err != nil {
		return err
	}
	if flotCol == baseCol {
		return &LoadError{Source: SourceBases, Message: "missing column floterial_district | floterial | floterials"}
	}

	overlay := make(map[string]map[string]bool)
	bad := &rowErrors{source: SourceBases}
	for _, rec := range t.records {
		base := rec.get(baseCol)
		flots := splitList(rec.get(flotCol))
		if base == "" {
			bad.add(rec.line, "empty base district")
			continue
		}
		if len(flots) == 0 {
			bad.add(rec.line, "empty floterial district for base %q", base)
			continue
		}
		base = types.DistrictLabel(base)
		if overlay[base] == nil {
			overlay[base] = make(map[string]bool)
		}
		for _, f := range flots {
			f = types.DistrictLabel(f)
			overlay[base][f] = true
			b.flotIDs[f] = true
		}
	}
	if err := bad.err(); err != nil {
		return err
	}

	for base, set := range overlay {
		b.snap.baseOverlay[base] = slices.Sorted(maps.Keys(set))
	}
	// A town inherits every floterial laid over its base district.
	for key, town := range b.snap.towns {
		for f := range overlay[town.Base] {
			b.floterials[key][f] = true
		}
	}
	return nil
}

func (b *builder) parseRoster(data []byte) error {
	if len(data) == 0 {
		return &LoadError{Source: SourceRoster, Message: "source is empty"}
	}
	t, err := readTable(SourceRoster, data)
	if err != nil {
		return err
	}
	idCol, err := t.requireColumn(colRepID...)
	if err != nil {
		return err
	}
	nameCol, err := t.requireColumn(colRepName...)
	if err != nil {
		return err
	}
	districtCol, err := t.requireColumn(colDistrict...)
	if err != nil {
		return err
	}
	partyCol, emailCol, phoneCol := t.column(colParty...), t.column(colEmail...), t.column(colPhone...)

	lines := make(map[string]int)
	bad := &rowErrors{source: SourceRoster}
	for _, rec := range t.records {
		rep := types.Representative{
			ID:       rec.get(idCol),
			Name:     rec.get(nameCol),
			District: types.DistrictLabel(rec.get(districtCol)),
			Party:    rec.get(partyCol),
			Email:    rec.get(emailCol),
			Phone:    rec.get(phoneCol),
		}
		switch {
		case rep.ID == "":
			bad.add(rec.line, "empty representative id")
			continue
		case rep.Name == "":
			bad.add(rec.line, "empty name for %s", rep.ID)
			continue
		case rep.District == "":
			bad.add(rec.line, "empty district for %s", rep.ID)
			continue
		}
		if prev, dup := lines[rep.ID]; dup {
			return &DataIntegrityError{
				Source:  SourceRoster,
				Line:    rec.line,
				Message: fmt.Sprintf("representative id %q already listed on line %d", rep.ID, prev),
			}
		}
		lines[rep.ID] = rec.line
		b.snap.reps[rep.ID] = rep
		b.snap.repsByDistrict[rep.District] = append(b.snap.repsByDistrict[rep.District], rep)
	}
	if err := bad.err(); err != nil {
		return err
	}

	for _, reps := range b.snap.repsByDistrict {
		slices.SortFunc(reps, compareByName)
	}
	return nil
}

// compareByName orders representatives by case-folded name, then id.
func compareByName(a, b types.Representative) int {
	if c := cmp.Compare(types.NameKey(a.Name), types.NameKey(b.Name)); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

// finishDistricts freezes town floterial sets and builds district records.
func (b *builder) finishDistricts() {
	members := make(map[string][]string)
	for key, town := range b.snap.towns {
		members[town.Base] = append(members[town.Base], key)
		flots := sortedCopy(slices.Collect(maps.Keys(b.floterials[key])))
		b.snap.townFloterials[key] = flots
		for _, f := range flots {
			members[f] = append(members[f], key)
		}
	}
	for id := range b.baseIDs {
		b.snap.districts[id] = types.District{ID: id, Kind: types.DistrictBase, MemberTowns: sortedCopy(members[id])}
	}
	for id := range b.flotIDs {
		if b.baseIDs[id] {
			continue
		}
		b.snap.districts[id] = types.District{ID: id, Kind: types.DistrictFloterial, MemberTowns: sortedCopy(members[id])}
	}
}

func sortedCopy(s []string) []string {
	out := slices.Clone(s)
	if out == nil {
		out = []string{}
	}
	slices.Sort(out)
	return out
}

// checkDistricts enforces the cross-table invariants.
func (b *builder) checkDistricts() error {
	for _, id := range slices.Sorted(maps.Keys(b.baseIDs)) {
		if b.flotIDs[id] {
			return &DataIntegrityError{
				Source:  SourceTowns,
				Message: fmt.Sprintf("district %q is listed as both a base and a floterial district", id),
			}
		}
		if len(b.snap.repsByDistrict[id]) == 0 {
			return &DataIntegrityError{
				Source:  SourceRoster,
				Message: fmt.Sprintf("base district %q has no representatives", id),
			}
		}
	}
	return nil
}
