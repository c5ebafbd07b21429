package playlist

import (
	"github.com/google/uuid"
)

// Op is the action the reconciler decided for an entry.
type Op int

const (
	// OpKeep leaves the entry where it is.
	OpKeep Op = iota
	// OpReorder moves the entry to NewIndex.
	OpReorder
	// OpDelete removes the entry from the playlist.
	OpDelete
)

// String returns a short lower-case name for the op.
func (o Op) String() string {
	switch o {
	case OpKeep:
		return "keep"
	case OpReorder:
		return "reorder"
	case OpDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// Action is the reconciler's per-entry outcome, in canonical order.
type Action struct {
	Entry Entry
	Op    Op
	// NewIndex is the zero-based target position; meaningful for OpReorder.
	NewIndex int64
	// Reason explains an OpDelete, using the pruner's reason strings.
	Reason string
}

// Report is the sole output contract of the engine: one action per entry
// plus whether the playlist needs to change at all.
type Report struct {
	// RunID identifies this reconciliation run in logs and output.
	RunID string
	// Changed is false when the playlist is already canonical and pruned.
	Changed bool
	// Actions lists the per-entry outcomes in canonical order, deletions
	// first so that applying top to bottom leaves positions contiguous.
	Actions []Action
}

// Intents returns the mutations to dispatch, in apply order. Keeps carry
// no mutation and are excluded.
func (r *Report) Intents() []Action {
	var intents []Action
	for _, a := range r.Actions {
		if a.Op != OpKeep {
			intents = append(intents, a)
		}
	}
	return intents
}

// Counts returns how many entries are kept, reordered and removed.
func (r *Report) Counts() (kept, reordered, removed int) {
	for _, a := range r.Actions {
		switch a.Op {
		case OpKeep:
			kept++
		case OpReorder:
			reordered++
		case OpDelete:
			removed++
		}
	}
	return
}

// Reconcile diffs the pruner's canonically ordered decisions against the
// observed sequence and emits the minimal mutation set.
//
// When nothing is removed and the observed order already matches the
// canonical order, the report carries Changed=false and only OpKeep
// actions: reapplying positions unconditionally would risk needless
// external writes. Otherwise every removal becomes an OpDelete (in
// canonical order) and every kept entry an OpReorder with its contiguous
// zero-based position in the post-prune sequence.
func Reconcile(observed []Entry, decisions []Decision) *Report {
	report := &Report{RunID: uuid.NewString()}

	removals := 0
	for _, d := range decisions {
		if !d.Keep {
			removals++
		}
	}

	if removals == 0 && inObservedOrder(observed, decisions) {
		for _, d := range decisions {
			report.Actions = append(report.Actions, Action{Entry: d.Entry, Op: OpKeep})
		}
		return report
	}

	report.Changed = true
	for _, d := range decisions {
		if !d.Keep {
			report.Actions = append(report.Actions, Action{Entry: d.Entry, Op: OpDelete, Reason: d.Reason})
		}
	}
	var index int64
	for _, d := range decisions {
		if d.Keep {
			report.Actions = append(report.Actions, Action{Entry: d.Entry, Op: OpReorder, NewIndex: index})
			index++
		}
	}
	return report
}

// inObservedOrder reports whether the canonical decision sequence matches
// the observed sequence entry for entry.
func inObservedOrder(observed []Entry, decisions []Decision) bool {
	if len(observed) != len(decisions) {
		return false
	}
	for i, d := range decisions {
		if observed[i].EntryID != d.Entry.EntryID {
			return false
		}
	}
	return true
}
