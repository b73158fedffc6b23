package refdata

import (
	"fmt"
	"log/slog"

	"github.com/jonathan/nh-rep-finder/internal/types"
)

// voteIndex resolves vote rows to roster entries by name when the id is missing or stale.
type voteIndex struct {
	byName         map[string][]string
	byNameDistrict map[string]string
}

func (b *builder) newVoteIndex() *voteIndex {
	idx := &voteIndex{
		byName:         make(map[string][]string),
		byNameDistrict: make(map[string]string),
	}
	for _, rep := range b.snap.Representatives() {
		nk := types.NameKey(rep.Name)
		idx.byName[nk] = append(idx.byName[nk], rep.ID)
		idx.byNameDistrict[nk+"|"+rep.District] = rep.ID
	}
	return idx
}

// resolve returns the roster id for a vote row, "" when the row names nobody on the roster.
func (idx *voteIndex) resolve(name, district string) (string, error) {
	nk := types.NameKey(name)
	if district != "" {
		if id, ok := idx.byNameDistrict[nk+"|"+types.DistrictLabel(district)]; ok {
			return id, nil
		}
	}
	ids := idx.byName[nk]
	switch len(ids) {
	case 0:
		return "", nil
	case 1:
		return ids[0], nil
	default:
		return "", fmt.Errorf("name %q matches %d representatives; add an id or district column", name, len(ids))
	}
}

func (b *builder) parseVotes(data []byte) error {
	t, err := readTable(SourceVotes, data)
	if err != nil {
		return err
	}
	idCol := t.column(colRepID...)
	nameCol := t.column(colRepName...)
	districtCol := t.column(colDistrict...)
	if idCol < 0 && nameCol < 0 {
		return &LoadError{Source: SourceVotes, Message: "missing column " + "openstates_person_id | name"}
	}

	billCol, voteCol := t.column(colBill...), t.column(colVote...)
	long := billCol >= 0 && voteCol >= 0

	var wideCols []int
	var wideBills []string
	if !long {
		for i, h := range t.header {
			if h == "" || voteMetaColumns[h] {
				continue
			}
			wideCols = append(wideCols, i)
			wideBills = append(wideBills, types.BillCode(t.rawHeader[i]))
		}
		if len(wideCols) == 0 {
			return &LoadError{Source: SourceVotes, Message: "no bill columns and no bill/vote columns"}
		}
	}

	idx := b.newVoteIndex()
	seenBill := make(map[string]bool)
	addBill := func(code string) {
		if !seenBill[code] {
			seenBill[code] = true
			b.snap.bills = append(b.snap.bills, code)
		}
	}
	if !long {
		for _, code := range wideBills {
			addBill(code)
		}
	}

	record := func(line int, repID, bill, raw string) error {
		label, ok := types.ParseVoteLabel(raw)
		if !ok {
			return &DataIntegrityError{
				Source:  SourceVotes,
				Line:    line,
				Message: fmt.Sprintf("vote %q for %s on %s is not For, Against or No Vote", raw, repID, bill),
			}
		}
		votes := b.snap.votes[repID]
		if votes == nil {
			votes = make(map[string]types.VoteLabel)
			b.snap.votes[repID] = votes
		}
		if prev, dup := votes[bill]; dup && prev != label {
			return &DataIntegrityError{
				Source:  SourceVotes,
				Line:    line,
				Message: fmt.Sprintf("conflicting votes %q and %q for %s on %s", prev, label, repID, bill),
			}
		}
		if _, dup := votes[bill]; !dup {
			b.snap.stats.VoteRecords++
		}
		votes[bill] = label
		return nil
	}

	bad := &rowErrors{source: SourceVotes}
	for _, rec := range t.records {
		repID := rec.get(idCol)
		name := rec.get(nameCol)
		if repID == "" && name == "" {
			bad.add(rec.line, "row has neither a representative id nor a name")
			continue
		}
		if repID == "" {
			repID, err = idx.resolve(name, rec.get(districtCol))
			if err != nil {
				return &DataIntegrityError{Source: SourceVotes, Line: rec.line, Message: err.Error()}
			}
		} else if _, onRoster := b.snap.reps[repID]; !onRoster && name != "" {
			// Ids change when OpenStates re-merges a person; the name still matches.
			if byName, err := idx.resolve(name, rec.get(districtCol)); err == nil && byName != "" {
				slog.Debug("vote row id not on roster, matched by name", "line", rec.line, "id", repID, "roster_id", byName)
				repID = byName
			}
		}
		if _, onRoster := b.snap.reps[repID]; !onRoster {
			b.snap.stats.OrphanVoteRows++
			continue
		}

		if long {
			bill := rec.get(billCol)
			if bill == "" {
				bad.add(rec.line, "empty bill")
				continue
			}
			code := types.BillCode(bill)
			addBill(code)
			if err := record(rec.line, repID, code, rec.get(voteCol)); err != nil {
				return err
			}
			continue
		}
		for i, col := range wideCols {
			if err := record(rec.line, repID, wideBills[i], rec.get(col)); err != nil {
				return err
			}
		}
	}
	if err := bad.err(); err != nil {
		return err
	}

	if n := b.snap.stats.OrphanVoteRows; n > 0 {
		slog.Warn("vote rows reference representatives not on the roster", "rows", n)
	}
	return nil
}
