package domain

import "time"

// Playlist is one extracted YouTube playlist. The canonical source URL is
// unique; re-extracting the same URL updates title and video count in place.
type Playlist struct {
	ID         string
	UserID     string
	URL        string
	Title      string
	VideoCount int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
