package scrape

import (
	"context"
	"errors"
	"regexp"
)

// PlaylistInfo carries the parent-playlist metadata attached to each item.
type PlaylistInfo struct {
	PlaylistID     string `json:"playlist_id"`
	PlaylistTitle  string `json:"playlist_title"`
	PlaylistVideos int    `json:"playlist_videos"`
}

// PlaylistItem is one video descriptor returned by the playlist scraper.
type PlaylistItem struct {
	VideoLink    string        `json:"video_link"`
	VideoTitle   string        `json:"video_title"`
	Thumbnail    string        `json:"thumbnail"`
	Duration     string        `json:"duration"`
	PlaylistInfo *PlaylistInfo `json:"playlist_info"`
}

type playlistPayload struct {
	StartURLs []string `json:"start_urls"`
}

// ScrapePlaylist fetches all video descriptors for a playlist URL.
func (c *Client) ScrapePlaylist(ctx context.Context, token, playlistURL string) ([]PlaylistItem, error) {
	var items []PlaylistItem
	if err := c.runSync(ctx, token, playlistActor, playlistPayload{StartURLs: []string{playlistURL}}, &items); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, errors.New("scrape: no videos found in playlist")
	}
	return items, nil
}

var videoIDPattern = regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/|youtube\.com/embed/)([^&\n?#]+)`)

// ExtractVideoID pulls the source video identifier out of a watch, short or
// embed URL. Unrecognized URLs are returned as-is so the caller still gets a
// stable (if ugly) unique key.
func ExtractVideoID(videoURL string) string {
	if m := videoIDPattern.FindStringSubmatch(videoURL); len(m) == 2 {
		return m[1]
	}
	return videoURL
}
