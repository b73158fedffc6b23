package openstates

import (
	"cmp"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"regexp"
	"slices"
	"strconv"

	"github.com/jonathan/nh-rep-finder/internal/types"
)

// RosterHeader is the column order of an exported roster.
var RosterHeader = []string{"openstates_person_id", "name", "district", "party", "email", "phone"}

var districtParts = regexp.MustCompile(`^(.*?)\s*([0-9]+)$`)

// compareDistricts orders "Sullivan 2" before "Sullivan 10".
func compareDistricts(a, b string) int {
	ma, mb := districtParts.FindStringSubmatch(a), districtParts.FindStringSubmatch(b)
	if ma == nil || mb == nil {
		return cmp.Compare(a, b)
	}
	if c := cmp.Compare(ma[1], mb[1]); c != 0 {
		return c
	}
	na, _ := strconv.Atoi(ma[2])
	nb, _ := strconv.Atoi(mb[2])
	return cmp.Compare(na, nb)
}

// SortRoster orders representatives by district, then name, then id.
func SortRoster(reps []types.Representative) {
	slices.SortFunc(reps, func(a, b types.Representative) int {
		if c := compareDistricts(a.District, b.District); c != 0 {
			return c
		}
		if c := cmp.Compare(types.NameKey(a.Name), types.NameKey(b.Name)); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

// WriteRosterCSV writes reps as a roster CSV in the order given.
func WriteRosterCSV(w io.Writer, reps []types.Representative) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(RosterHeader); err != nil {
		return fmt.Errorf("failed to write roster header: %w", err)
	}
	for _, r := range reps {
		if err := cw.Write([]string{r.ID, r.Name, r.District, r.Party, r.Email, r.Phone}); err != nil {
			return fmt.Errorf("failed to write roster row for %s: %w", r.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportRoster fetches every House member and writes the sorted roster to outPath.
// The file is written to outPath+".part" first and renamed into place, so a
// failed run never leaves a truncated roster behind.
func ExportRoster(ctx context.Context, client *Client, outPath string, progress PageProgress) (int, error) {
	reps, err := client.HouseMembers(ctx, progress)
	if err != nil {
		return 0, err
	}
	if len(reps) == 0 {
		return 0, &UpstreamError{Op: "people export", Cause: fmt.Errorf("no representatives returned")}
	}
	SortRoster(reps)

	partPath := outPath + ".part"
	f, err := os.Create(partPath)
	if err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", partPath, err)
	}
	if err := WriteRosterCSV(f, reps); err != nil {
		_ = f.Close()
		_ = os.Remove(partPath)
		return 0, err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(partPath)
		return 0, fmt.Errorf("failed to close %s: %w", partPath, err)
	}
	if err := os.Rename(partPath, outPath); err != nil {
		return 0, fmt.Errorf("failed to move roster into place: %w", err)
	}
	return len(reps), nil
}
