package playlist

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
)

// Source fetches every entry of the playlist, fully paginated. Partial
// results must never be returned: the cap and ordering decisions need the
// whole collection.
type Source interface {
	FetchAll(ctx context.Context) ([]Entry, error)
}

// Sink applies mutations to the external playlist. Both calls are assumed
// idempotent by the external service.
type Sink interface {
	SetPosition(ctx context.Context, e Entry, index int64) error
	Delete(ctx context.Context, e Entry) error
}

// Collection is the abstract playlist handle: list its items, compute the
// canonical order, decide removals, and render a report.
type Collection interface {
	Items(ctx context.Context) ([]Entry, error)
	Sort(entries []Entry) []Entry
	Prune(entries []Entry) []Decision
	Print(w io.Writer, report *Report) error
}

// Curator is the concrete Collection. It holds the external collaborators
// plus run configuration and drives the full pipeline: fetch, classify,
// sort, prune, reconcile, apply.
type Curator struct {
	source      Source
	sink        Sink
	log         *zap.Logger
	loc         *time.Location
	maxRetained int
	dryRun      bool
}

var _ Collection = (*Curator)(nil)

// Options configures a Curator.
type Options struct {
	// MaxRetained caps how many viewable entries are kept.
	MaxRetained int
	// DryRun computes and reports intents without dispatching them.
	DryRun bool
	// Location renders report timestamps; nil means UTC.
	Location *time.Location
	// Logger receives structured run logs; nil disables logging.
	Logger *zap.Logger
}

// NewCurator creates a Curator over the given source and sink.
func NewCurator(source Source, sink Sink, opts Options) *Curator {
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Curator{
		source:      source,
		sink:        sink,
		log:         log,
		loc:         loc,
		maxRetained: opts.MaxRetained,
		dryRun:      opts.DryRun,
	}
}

// Items fetches the full entry list from the source.
func (c *Curator) Items(ctx context.Context) ([]Entry, error) {
	entries, err := c.source.FetchAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch entries: %w", err)
	}
	return entries, nil
}

// Sort returns the canonical order of entries without mutating the input.
func (c *Curator) Sort(entries []Entry) []Entry {
	return Sorted(entries)
}

// Prune runs the retention rules over a canonically ordered sequence.
func (c *Curator) Prune(entries []Entry) []Decision {
	return Prune(entries, c.maxRetained)
}

// Run executes one full curation pass and returns the report. Unless the
// curator is in dry-run mode, the report's intents are applied to the sink
// strictly sequentially; the first failure aborts the remaining batch and
// is returned alongside the (fully computed) report.
func (c *Curator) Run(ctx context.Context) (*Report, error) {
	observed, err := c.Items(ctx)
	if err != nil {
		return nil, err
	}
	c.log.Info("fetched playlist entries", zap.Int("count", len(observed)))

	canonical := c.Sort(observed)
	decisions := c.Prune(canonical)
	report := Reconcile(observed, decisions)

	kept, reordered, removed := report.Counts()
	c.log.Info("reconciliation computed",
		zap.String("run_id", report.RunID),
		zap.Bool("changed", report.Changed),
		zap.Bool("dry_run", c.dryRun),
		zap.Int("kept", kept),
		zap.Int("reordered", reordered),
		zap.Int("removed", removed),
	)

	if !report.Changed {
		c.log.Info("playlist already in order", zap.String("run_id", report.RunID))
		return report, nil
	}

	if c.dryRun {
		for _, a := range report.Intents() {
			c.log.Info("dry run: skipping mutation",
				zap.String("op", a.Op.String()),
				zap.String("entry_id", a.Entry.EntryID),
				zap.Int64("index", a.NewIndex),
			)
		}
		return report, nil
	}

	if err := c.apply(ctx, report); err != nil {
		return report, err
	}
	return report, nil
}

// apply dispatches intents one at a time, in emission order. Positions are
// a globally contiguous index, so mutations must not be concurrent.
func (c *Curator) apply(ctx context.Context, report *Report) error {
	for _, a := range report.Intents() {
		var err error
		switch a.Op {
		case OpDelete:
			err = c.sink.Delete(ctx, a.Entry)
		case OpReorder:
			err = c.sink.SetPosition(ctx, a.Entry, a.NewIndex)
		}
		if err != nil {
			// Remaining intents are re-derivable on the next run.
			return fmt.Errorf("apply %s for entry %s: %w", a.Op, a.Entry.EntryID, err)
		}
		c.log.Debug("applied mutation",
			zap.String("op", a.Op.String()),
			zap.String("entry_id", a.Entry.EntryID),
			zap.Int64("index", a.NewIndex),
		)
	}
	return nil
}

// Print renders the report as an aligned table, timestamps in the
// curator's location.
func (c *Curator) Print(w io.Writer, report *Report) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ENTRY ID\tVIDEO ID\tTITLE\tCATEGORY\tWHEN\tACTION\tREASON")

	for _, a := range report.Actions {
		e := a.Entry
		when := ""
		if t := e.AvailableTime(); !t.IsZero() {
			when = t.In(c.loc).Format(time.RFC3339)
		} else if !e.ScheduledStartTime.IsZero() {
			when = e.ScheduledStartTime.In(c.loc).Format(time.RFC3339)
		}

		action := a.Op.String()
		if a.Op == OpReorder {
			action = fmt.Sprintf("reorder -> %d", a.NewIndex)
		}

		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			e.EntryID,
			e.VideoID,
			truncate(e.Title, 50),
			e.Category(),
			when,
			action,
			a.Reason,
		)
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("flush report: %w", err)
	}

	if report.Changed {
		fmt.Fprintf(w, "\nRun %s: playlist needs changes\n", report.RunID)
	} else {
		fmt.Fprintf(w, "\nRun %s: already in order\n", report.RunID)
	}
	return nil
}

// truncate shortens s to at most maxLen runes, never splitting a
// multi-byte character.
func truncate(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	return string([]rune(s)[:maxLen-3]) + "..."
}
