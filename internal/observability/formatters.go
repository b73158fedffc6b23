// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jonathan/nh-rep-finder/internal/refdata"
	"github.com/jonathan/nh-rep-finder/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
	now func() time.Time
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out, now: time.Now}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(strings.TrimRight(content, "\n"), "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintLookup outputs the representatives found for an address, one box per
// representative, preceded by a summary of how the address resolved.
func (p *Printer) PrintLookup(result *types.LookupResult) {
	if result == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Address:   %s\n", result.FormattedAddress))

	var bills []string
	if d := result.Diagnostics; d != nil {
		sb.WriteString(fmt.Sprintf("Town:      %s\n", d.Town))
		if d.County != "" {
			sb.WriteString(fmt.Sprintf("County:    %s\n", d.County))
		}
		sb.WriteString(fmt.Sprintf("Base:      %s\n", d.BaseDistrict))
		if len(d.FloterialDistricts) > 0 {
			sb.WriteString(fmt.Sprintf("Floterial: %s\n", strings.Join(d.FloterialDistricts, ", ")))
		}
		sb.WriteString(fmt.Sprintf("Resolved:  %s\n", d.Normalizer))
		bills = d.TrackedBills
	}
	sb.WriteString(fmt.Sprintf("\n%d representative(s)", len(result.StateRepresentatives)))
	p.printBox("ADDRESS LOOKUP", sb.String())

	for _, rep := range result.StateRepresentatives {
		p.printRepresentative(rep, bills)
	}
}

func (p *Printer) printRepresentative(rep types.RepresentativeView, bills []string) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("District: %s\n", rep.District))
	if rep.Party != "" {
		sb.WriteString(fmt.Sprintf("Party:    %s\n", rep.Party))
	}
	if rep.Email != "" {
		sb.WriteString(fmt.Sprintf("Email:    %s\n", rep.Email))
	}
	if rep.Phone != "" {
		sb.WriteString(fmt.Sprintf("Phone:    %s\n", rep.Phone))
	}

	if len(bills) == 0 {
		bills = slices.Sorted(maps.Keys(rep.VoteMap))
	}
	if len(bills) > 0 {
		sb.WriteString("\nVotes:\n")
		for _, bill := range bills {
			label, ok := rep.VoteMap[bill]
			if !ok {
				label = types.VoteNone
			}
			sb.WriteString(fmt.Sprintf("  %-8s %s\n", bill, label))
		}
	}
	p.printBox(rep.Name, sb.String())
}

// PrintSnapshotSummary outputs the row counts of a freshly loaded snapshot.
func (p *Printer) PrintSnapshotSummary(snap *refdata.Snapshot) {
	if snap == nil {
		return
	}

	st := snap.Stats()
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Snapshot:        %s\n", snap.ID()))
	sb.WriteString(fmt.Sprintf("Loaded:          %s\n", humanize.RelTime(snap.LoadedAt(), p.now(), "ago", "from now")))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Towns:           %s\n", humanize.Comma(int64(st.Towns))))
	sb.WriteString(fmt.Sprintf("Base districts:  %s\n", humanize.Comma(int64(st.BaseDistricts))))
	sb.WriteString(fmt.Sprintf("Floterials:      %s\n", humanize.Comma(int64(st.FloterialDistricts))))
	sb.WriteString(fmt.Sprintf("Representatives: %s\n", humanize.Comma(int64(st.Representatives))))
	sb.WriteString(fmt.Sprintf("Tracked bills:   %s\n", humanize.Comma(int64(st.Bills))))
	sb.WriteString(fmt.Sprintf("Vote records:    %s\n", humanize.Comma(int64(st.VoteRecords))))
	if st.OrphanVoteRows > 0 {
		sb.WriteString(fmt.Sprintf("Orphan votes:    %s (skipped)\n", humanize.Comma(int64(st.OrphanVoteRows))))
	}

	p.printBox("REFERENCE DATA", sb.String())
}

// PrintLoadError outputs a reference data failure. Malformed rows are listed
// up to maxItemsToShow.
func (p *Printer) PrintLoadError(err error) {
	if err == nil {
		return
	}

	var sb strings.Builder
	var loadErr *refdata.LoadError
	var integrityErr *refdata.DataIntegrityError
	switch {
	case errors.As(err, &loadErr):
		sb.WriteString(fmt.Sprintf("Source:  %s\n", loadErr.Source))
		sb.WriteString(fmt.Sprintf("Problem: %s\n", loadErr.Message))
		if len(loadErr.Rows) > 0 {
			sb.WriteString(fmt.Sprintf("\nMalformed rows (%d):\n", loadErr.Total))
			count := min(len(loadErr.Rows), maxItemsToShow)
			for i := 0; i < count; i++ {
				sb.WriteString(fmt.Sprintf("  • %s\n", loadErr.Rows[i]))
			}
			if loadErr.Total > count {
				sb.WriteString(fmt.Sprintf("  ... and %d more\n", loadErr.Total-count))
			}
		}
		if loadErr.Cause != nil {
			sb.WriteString(fmt.Sprintf("\nCause: %v\n", loadErr.Cause))
		}
	case errors.As(err, &integrityErr):
		sb.WriteString(fmt.Sprintf("Source:  %s\n", integrityErr.Source))
		if integrityErr.Line > 0 {
			sb.WriteString(fmt.Sprintf("Line:    %d\n", integrityErr.Line))
		}
		sb.WriteString(fmt.Sprintf("Problem: %s\n", integrityErr.Message))
	default:
		sb.WriteString(err.Error())
	}

	p.printBox("REFERENCE DATA ERROR", sb.String())
}
