package refdata

import (
	"context"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/nh-rep-finder/internal/fetch"
)

// Sources are the locations of the reference CSVs. Each is a path, file:// URL or http(s) URL.
// Bases and Votes are optional.
type Sources struct {
	Towns  string `json:"towns"`
	Bases  string `json:"bases,omitempty"`
	Roster string `json:"roster"`
	Votes  string `json:"votes,omitempty"`
}

// Load reads every configured source in parallel and builds a snapshot from them.
func Load(ctx context.Context, src Sources, opts *fetch.Options) (*Snapshot, error) {
	start := time.Now()
	var in Inputs

	g, gctx := errgroup.WithContext(ctx)
	read := func(name, location string, dst *[]byte) {
		if location == "" {
			return
		}
		g.Go(func() error {
			data, err := fetch.ReadSource(gctx, location, opts)
			if err != nil {
				return &LoadError{Source: name, Message: "failed to read " + location, Cause: err}
			}
			*dst = data
			return nil
		})
	}
	read(SourceTowns, src.Towns, &in.Towns)
	read(SourceBases, src.Bases, &in.Bases)
	read(SourceRoster, src.Roster, &in.Roster)
	read(SourceVotes, src.Votes, &in.Votes)
	if err := g.Wait(); err != nil {
		return nil, err
	}

	snap, err := Build(in)
	if err != nil {
		return nil, err
	}

	st := snap.Stats()
	slog.Info("reference data loaded",
		"snapshot", snap.ID(),
		"bytes", humanize.Bytes(uint64(len(in.Towns)+len(in.Bases)+len(in.Roster)+len(in.Votes))),
		"towns", humanize.Comma(int64(st.Towns)),
		"base_districts", st.BaseDistricts,
		"floterial_districts", st.FloterialDistricts,
		"representatives", humanize.Comma(int64(st.Representatives)),
		"vote_records", humanize.Comma(int64(st.VoteRecords)),
		"duration", time.Since(start),
	)
	return snap, nil
}
