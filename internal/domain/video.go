package domain

import "time"

// Video belongs to exactly one playlist. SourceID is the externally-assigned
// video identifier (unique); re-extraction may move a video to another
// playlist. Transcript is fetched lazily, persisted once and never
// overwritten afterwards.
type Video struct {
	ID         string
	SourceID   string
	PlaylistID string
	Title      string
	Thumbnail  string
	Duration   string
	URL        string
	Transcript *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// HasTranscript reports whether a cached transcript is available.
func (v Video) HasTranscript() bool {
	return v.Transcript != nil && *v.Transcript != ""
}
