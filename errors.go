package ytcurator

import (
	"ytcurator/config"
	"ytcurator/retry"
	"ytcurator/youtube"
)

// Error handling types exported for library users.
//
// All error types support the standard error handling patterns:
//
// Using errors.Is() for sentinel errors:
//
//	if errors.Is(err, youtube.ErrPlaylistNotFound) {
//		fmt.Println("Playlist not found")
//	}
//
// Using errors.As() for wrapped errors:
//
//	var apiErr *youtube.APIError
//	if errors.As(err, &apiErr) {
//		fmt.Printf("%s failed on %s: %v\n", apiErr.Op, apiErr.PlaylistID, apiErr.Err)
//	}

// Type aliases for convenient error handling.
type (
	// MalformedEntryError reports a playlist item missing a required field.
	MalformedEntryError = youtube.MalformedEntryError
	// APIError wraps Data API call failures.
	APIError = youtube.APIError
	// RetryableError wraps errors that occurred after retries were exhausted.
	RetryableError = retry.RetryableError
	// ValidationError reports invalid configuration.
	ValidationError = config.ValidationError
)

// Sentinel errors exported from sub-packages.
var (
	// ErrPlaylistNotFound indicates the playlist does not exist.
	ErrPlaylistNotFound = youtube.ErrPlaylistNotFound
	// ErrRateLimited indicates the operation was rate limited.
	ErrRateLimited = youtube.ErrRateLimited
	// ErrNetworkTimeout indicates a network timeout occurred.
	ErrNetworkTimeout = youtube.ErrNetworkTimeout
)

// IsRetryable determines if an error should be retried.
func IsRetryable(err error) bool {
	return retry.IsRetryable(err)
}
