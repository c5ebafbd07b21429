package playlist

import "sort"

// Less reports whether v sorts before w in the canonical order.
//
// Precedence, most-preferred first: viewable entries by viewable time
// descending, then scheduled-only entries by scheduled start descending,
// then entries with no time information (kept in their observed relative
// order), then blocked-but-available entries by availability descending.
// Blocked-but-available entries deliberately sort after no-time entries;
// report order depends on it, so the grouping must not be "fixed".
func Less(v, w Entry) bool {
	switch {
	case v.Viewable():
		if w.Viewable() {
			return v.ViewableTime().After(w.ViewableTime())
		}
		return true
	case w.Viewable():
		return false
	case !v.ScheduledStartTime.IsZero():
		if !w.ScheduledStartTime.IsZero() {
			return v.ScheduledStartTime.After(w.ScheduledStartTime)
		}
		return true
	case !w.ScheduledStartTime.IsZero():
		return false
	case v.Available():
		if w.Available() {
			return v.AvailableTime().After(w.AvailableTime())
		}
		return false
	case w.Available():
		return true
	default:
		// No distinguishing signal; the stable sort preserves input order.
		return false
	}
}

// SortCanonical sorts entries in place into the canonical order. The sort
// is stable, so ties keep their observed relative order.
func SortCanonical(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return Less(entries[i], entries[j])
	})
}

// Sorted returns a canonically ordered copy, leaving the input untouched.
// The reconciler needs both the observed and the canonical sequence.
func Sorted(entries []Entry) []Entry {
	out := make([]Entry, len(entries))
	copy(out, entries)
	SortCanonical(out)
	return out
}
