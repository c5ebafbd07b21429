package youtube

import (
	"context"

	"go.uber.org/zap"
	"google.golang.org/api/youtube/v3"

	"ytcurator/playlist"
)

// PlaylistSink applies position updates and deletions to one playlist via
// the Data API. Callers must apply mutations strictly sequentially:
// playlist positions are a contiguous index and concurrent writes could
// interleave.
type PlaylistSink struct {
	client     *Client
	playlistID string
}

// NewPlaylistSink creates a sink for the given playlist.
func NewPlaylistSink(client *Client, playlistID string) *PlaylistSink {
	return &PlaylistSink{client: client, playlistID: playlistID}
}

// SetPosition moves the entry to the zero-based index. The call is
// idempotent on the API side.
func (s *PlaylistSink) SetPosition(ctx context.Context, e playlist.Entry, index int64) error {
	item := &youtube.PlaylistItem{
		Id: e.EntryID,
		Snippet: &youtube.PlaylistItemSnippet{
			PlaylistId: s.playlistID,
			Position:   index,
			ResourceId: &youtube.ResourceId{
				Kind:    "youtube#video",
				VideoId: e.VideoID,
			},
			// Position 0 must still go on the wire.
			ForceSendFields: []string{"Position"},
		},
	}

	err := s.client.call(ctx, func(ctx context.Context) error {
		_, err := s.client.service.PlaylistItems.Update([]string{"snippet"}, item).Context(ctx).Do()
		return err
	})
	if err != nil {
		return &APIError{Op: "update", PlaylistID: s.playlistID, Err: err}
	}

	s.client.log.Debug("position updated",
		zap.String("entry_id", e.EntryID),
		zap.Int64("position", index),
	)
	return nil
}

// Delete removes the entry from the playlist. Deleting an already absent
// entry is treated as success by the API.
func (s *PlaylistSink) Delete(ctx context.Context, e playlist.Entry) error {
	err := s.client.call(ctx, func(ctx context.Context) error {
		return s.client.service.PlaylistItems.Delete(e.EntryID).Context(ctx).Do()
	})
	if err != nil {
		return &APIError{Op: "delete", PlaylistID: s.playlistID, Err: err}
	}

	s.client.log.Debug("entry deleted", zap.String("entry_id", e.EntryID))
	return nil
}
