// Package playlist implements the playlist curation engine: it classifies
// entries by availability, computes the canonical display order, decides
// which entries to remove under a retention cap, and reconciles the result
// against the order observed on the remote playlist.
package playlist

import "time"

// Entry is one membership record of a playlist. It links a video to a
// position in the playlist; the same video could in principle appear via
// more than one membership, so EntryID and VideoID are distinct identities.
//
// Time fields use the zero time.Time to mean "absent". Entries are
// immutable value records within a single run.
type Entry struct {
	// EntryID is the playlist item ID, required for update/delete calls.
	EntryID string

	// VideoID is the referenced video's ID.
	VideoID string

	// Title is the video's display title.
	Title string

	// ScheduledStartTime is the announced live-stream start, if any.
	ScheduledStartTime time.Time

	// ActualStartTime is when a live stream actually began. Set only for
	// content that streamed.
	ActualStartTime time.Time

	// PublishedAt is the upload publication time for non-streamed content.
	PublishedAt time.Time

	// Blocked is true when a regional or content restriction makes the
	// video unviewable regardless of its time state.
	Blocked bool
}

// AvailableTime returns when the content became available to watch:
// the actual stream start if the entry streamed, else the publication
// time for plain uploads. Zero when neither applies.
func (e Entry) AvailableTime() time.Time {
	if !e.ActualStartTime.IsZero() {
		return e.ActualStartTime
	}
	if !e.PublishedAt.IsZero() && e.ScheduledStartTime.IsZero() {
		return e.PublishedAt
	}
	return time.Time{}
}

// ViewableTime returns the availability time for entries a viewer can
// actually watch. Blocked entries are never viewable.
func (e Entry) ViewableTime() time.Time {
	if e.Blocked {
		return time.Time{}
	}
	return e.AvailableTime()
}

// Available reports whether the entry has a known availability time,
// regardless of block status.
func (e Entry) Available() bool {
	return !e.AvailableTime().IsZero()
}

// Viewable reports whether the entry is watchable: available and not blocked.
func (e Entry) Viewable() bool {
	return !e.ViewableTime().IsZero()
}

// Category is the status class an entry falls into for ordering and
// reporting purposes.
type Category int

const (
	// CategoryViewable entries are watchable now.
	CategoryViewable Category = iota
	// CategoryScheduled entries have an announced start but have not streamed.
	CategoryScheduled
	// CategoryInvalid entries carry no usable time information.
	CategoryInvalid
	// CategoryBlockedAvailable entries streamed or were published but are
	// blocked by a restriction.
	CategoryBlockedAvailable
)

// Category classifies the entry. The classes mirror the comparator's
// precedence groups.
func (e Entry) Category() Category {
	switch {
	case e.Viewable():
		return CategoryViewable
	case !e.ScheduledStartTime.IsZero():
		return CategoryScheduled
	case e.Available():
		return CategoryBlockedAvailable
	default:
		return CategoryInvalid
	}
}

// String returns a short lower-case name for the category.
func (c Category) String() string {
	switch c {
	case CategoryViewable:
		return "viewable"
	case CategoryScheduled:
		return "scheduled"
	case CategoryBlockedAvailable:
		return "blocked"
	case CategoryInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}
