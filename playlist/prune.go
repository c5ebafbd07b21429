package playlist

// Removal reasons reported by Prune.
const (
	// ReasonBlocked marks entries removed because a restriction makes the
	// video unviewable.
	ReasonBlocked = "blocked"
	// ReasonInvalid marks entries with neither a scheduled start nor a
	// publication time.
	ReasonInvalid = "unscheduled and unpublished"
	// ReasonSurplus marks viewable entries beyond the retention cap.
	ReasonSurplus = "surplus"
)

// Decision is the pruner's verdict for a single entry.
type Decision struct {
	Entry Entry
	Keep  bool
	// Reason explains a removal; empty when Keep is true.
	Reason string
}

// Prune decides keep/remove for every entry. The input must already be in
// canonical order: the retention cap counts viewable entries most-recent
// first, so the surplus rule drops the oldest viewable entries once more
// than maxRetained are present. Scheduled-only entries never consume a
// viewable slot and are kept unconditionally.
func Prune(entries []Entry, maxRetained int) []Decision {
	decisions := make([]Decision, 0, len(entries))
	viewable := 0

	for _, e := range entries {
		switch {
		case e.Blocked:
			decisions = append(decisions, Decision{Entry: e, Reason: ReasonBlocked})
		case e.ScheduledStartTime.IsZero() && e.PublishedAt.IsZero():
			decisions = append(decisions, Decision{Entry: e, Reason: ReasonInvalid})
		case e.Viewable():
			viewable++
			if viewable > maxRetained {
				decisions = append(decisions, Decision{Entry: e, Reason: ReasonSurplus})
			} else {
				decisions = append(decisions, Decision{Entry: e, Keep: true})
			}
		default:
			// Scheduled but not yet streamed.
			decisions = append(decisions, Decision{Entry: e, Keep: true})
		}
	}

	return decisions
}
