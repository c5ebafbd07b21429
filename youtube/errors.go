package youtube

import (
	"errors"
	"fmt"
)

// Sentinel errors for playlist operations.
var (
	ErrPlaylistNotFound = errors.New("youtube: playlist not found")
	ErrRateLimited      = errors.New("youtube: rate limited")
	ErrNetworkTimeout   = errors.New("youtube: network timeout")
)

// MalformedEntryError reports a playlist item missing a field the engine
// cannot classify or mutate without. It aborts the whole fetch: an entry
// that cannot be identified must never reach the reconciler.
//
// Use errors.As() to extract the missing field:
//
//	var malformed *youtube.MalformedEntryError
//	if errors.As(err, &malformed) {
//		fmt.Printf("entry %s missing %s\n", malformed.EntryID, malformed.Missing)
//	}
type MalformedEntryError struct {
	// EntryID is the playlist item ID, if present.
	EntryID string
	// VideoID is the referenced video ID, if present.
	VideoID string
	// Missing names the absent required field.
	Missing string
}

// Error returns a string representation of the malformed entry error.
func (e *MalformedEntryError) Error() string {
	return fmt.Sprintf("youtube: malformed playlist item (entry %q, video %q): missing %s",
		e.EntryID, e.VideoID, e.Missing)
}

// APIError wraps Data API call failures with operation context.
type APIError struct {
	// Op is the API operation that failed ("list", "update", "delete").
	Op string
	// PlaylistID is the playlist the operation targeted.
	PlaylistID string
	// Err is the underlying error.
	Err error
}

// Error returns a string representation of the API error.
func (e *APIError) Error() string {
	return "youtube: " + e.Op + " on playlist " + e.PlaylistID + ": " + e.Err.Error()
}

// Unwrap returns the underlying error for use with errors.Is() and errors.As().
func (e *APIError) Unwrap() error { return e.Err }
