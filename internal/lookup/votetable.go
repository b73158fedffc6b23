package lookup

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/jonathan/nh-rep-finder/internal/refdata"
	"github.com/jonathan/nh-rep-finder/internal/types"
)

// VoteTable is every roster member's vote map over the tracked bills, from one snapshot.
type VoteTable struct {
	Columns    []string                              `json:"columns"`
	Votes      map[string]map[string]types.VoteLabel `json:"votes"`
	Rows       int                                   `json:"rows"`
	SnapshotID string                                `json:"snapshotId"`

	representatives []types.Representative
}

// VoteTable builds the vote table for the current snapshot.
func (s *Service) VoteTable() (*VoteTable, error) {
	snap := s.store.Snapshot()
	if snap == nil {
		return nil, refdata.ErrNotReady
	}

	reps := snap.Representatives()
	columns := s.merger.TrackedBills(snap)
	if columns == nil {
		columns = []string{}
	}
	table := &VoteTable{
		Columns:         columns,
		Votes:           make(map[string]map[string]types.VoteLabel, len(reps)),
		Rows:            len(reps),
		SnapshotID:      snap.ID(),
		representatives: reps,
	}
	for _, r := range reps {
		table.Votes[r.ID] = s.merger.Merge(snap, r.ID)
	}
	return table, nil
}

// WriteCSV renders the table in wide form: one row per representative, one column per bill.
func (t *VoteTable) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	header := append([]string{"openstates_person_id", "name", "district", "party"}, t.Columns...)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write vote table header: %w", err)
	}
	for _, r := range t.representatives {
		row := []string{r.ID, r.Name, r.District, r.Party}
		for _, bill := range t.Columns {
			row = append(row, string(t.Votes[r.ID][bill]))
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write vote table row for %s: %w", r.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
