package youtube

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/youtube/v3"

	"ytcurator/playlist"
)

// pageSize is the Data API maximum for playlistItems.list and the batch
// size for videos.list ID joins.
const pageSize = 50

// PlaylistSource fetches every membership record of one playlist. Listing
// is fully paginated before any entry is returned, and each entry is
// joined with the video's live-streaming details: playlist items carry
// the publication time but not stream times.
type PlaylistSource struct {
	client     *Client
	playlistID string
	region     string
}

// NewPlaylistSource creates a source for the given playlist. region is the
// ISO 3166-1 alpha-2 code used to evaluate regional restrictions.
func NewPlaylistSource(client *Client, playlistID, region string) *PlaylistSource {
	return &PlaylistSource{client: client, playlistID: playlistID, region: region}
}

// FetchAll returns the complete entry list in playlist order.
func (s *PlaylistSource) FetchAll(ctx context.Context) ([]playlist.Entry, error) {
	items, err := s.listItems(ctx)
	if err != nil {
		return nil, &APIError{Op: "list", PlaylistID: s.playlistID, Err: err}
	}

	entries := make([]playlist.Entry, 0, len(items))
	ids := make([]string, 0, len(items))
	for _, item := range items {
		entry, err := convertItem(item)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
		ids = append(ids, entry.VideoID)
	}

	details, err := s.fetchVideoDetails(ctx, ids)
	if err != nil {
		return nil, &APIError{Op: "videos.list", PlaylistID: s.playlistID, Err: err}
	}

	for i := range entries {
		d, ok := details[entries[i].VideoID]
		if !ok {
			// Deleted or private video: no time data, classified as invalid.
			continue
		}
		if d.Live != nil {
			entries[i].ActualStartTime = parseTimestamp(d.Live.ActualStartTime)
			entries[i].ScheduledStartTime = parseTimestamp(d.Live.ScheduledStartTime)
		}
		entries[i].Blocked = regionBlocked(d.Content, s.region)
	}

	s.client.log.Debug("playlist fetched",
		zap.String("playlist_id", s.playlistID),
		zap.Int("entries", len(entries)),
	)
	return entries, nil
}

// listItems pages through playlistItems.list until the token runs out.
func (s *PlaylistSource) listItems(ctx context.Context) ([]*youtube.PlaylistItem, error) {
	var items []*youtube.PlaylistItem

	pageToken := ""
	for {
		err := s.client.call(ctx, func(ctx context.Context) error {
			call := s.client.service.PlaylistItems.List([]string{"id", "snippet", "contentDetails"}).
				PlaylistId(s.playlistID).
				MaxResults(pageSize).
				PageToken(pageToken).
				Context(ctx)

			resp, err := call.Do()
			if err != nil {
				if ctx.Err() != nil {
					return ErrNetworkTimeout
				}
				return err
			}

			items = append(items, resp.Items...)
			pageToken = resp.NextPageToken
			return nil
		})
		if err != nil {
			var gerr *googleapi.Error
			if errors.As(err, &gerr) && gerr.Code == http.StatusNotFound {
				return nil, ErrPlaylistNotFound
			}
			return nil, err
		}

		if pageToken == "" {
			break
		}
	}

	return items, nil
}

// videoDetail holds the per-video parts joined onto an entry.
type videoDetail struct {
	Live    *youtube.VideoLiveStreamingDetails
	Content *youtube.VideoContentDetails
}

// fetchVideoDetails retrieves live-streaming details and content
// restrictions for the given video IDs, batched at the API maximum.
func (s *PlaylistSource) fetchVideoDetails(ctx context.Context, ids []string) (map[string]videoDetail, error) {
	details := make(map[string]videoDetail, len(ids))

	for start := 0; start < len(ids); start += pageSize {
		end := start + pageSize
		if end > len(ids) {
			end = len(ids)
		}
		batch := ids[start:end]

		err := s.client.call(ctx, func(ctx context.Context) error {
			call := s.client.service.Videos.List([]string{"liveStreamingDetails", "contentDetails"}).
				Id(batch...).
				Context(ctx)

			resp, err := call.Do()
			if err != nil {
				if ctx.Err() != nil {
					return ErrNetworkTimeout
				}
				return err
			}

			for _, v := range resp.Items {
				details[v.Id] = videoDetail{
					Live:    v.LiveStreamingDetails,
					Content: v.ContentDetails,
				}
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	return details, nil
}

// convertItem maps a playlist item to an Entry, rejecting items missing a
// required identity field.
func convertItem(item *youtube.PlaylistItem) (playlist.Entry, error) {
	entry := playlist.Entry{EntryID: item.Id}

	if item.ContentDetails != nil {
		entry.VideoID = item.ContentDetails.VideoId
		entry.PublishedAt = parseTimestamp(item.ContentDetails.VideoPublishedAt)
	}
	if item.Snippet != nil {
		entry.Title = item.Snippet.Title
	}

	switch {
	case entry.EntryID == "":
		return playlist.Entry{}, &MalformedEntryError{VideoID: entry.VideoID, Missing: "entry id"}
	case entry.VideoID == "":
		return playlist.Entry{}, &MalformedEntryError{EntryID: entry.EntryID, Missing: "video id"}
	case entry.Title == "":
		return playlist.Entry{}, &MalformedEntryError{EntryID: entry.EntryID, VideoID: entry.VideoID, Missing: "title"}
	}

	return entry, nil
}

// regionBlocked reports whether the video is restricted in the given
// region. An allow list excludes everything not on it; a block list
// excludes only what it names.
func regionBlocked(cd *youtube.VideoContentDetails, region string) bool {
	if cd == nil || cd.RegionRestriction == nil || region == "" {
		return false
	}
	rr := cd.RegionRestriction
	if len(rr.Allowed) > 0 {
		return !containsRegion(rr.Allowed, region)
	}
	return containsRegion(rr.Blocked, region)
}

func containsRegion(regions []string, region string) bool {
	for _, r := range regions {
		if r == region {
			return true
		}
	}
	return false
}

// parseTimestamp parses an RFC3339 API timestamp, returning the zero time
// for absent or unparseable values.
func parseTimestamp(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
