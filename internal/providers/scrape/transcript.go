package scrape

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"server/internal/domain"
)

type transcriptPayload struct {
	VideoURL string `json:"videoUrl"`
}

// transcriptItem is one dataset item from the transcript scraper. The data
// field arrives in one of several shapes depending on the source video, so
// it is decoded into an explicit tagged union.
type transcriptItem struct {
	Data transcriptData `json:"data"`
}

type transcriptKind int

const (
	transcriptKindNone transcriptKind = iota
	transcriptKindText
	transcriptKindSegments
)

// Timing fields are ignored: the actor returns them as quoted numbers in
// some versions and bare numbers in others, and only the text is needed.
type transcriptSegment struct {
	Text string `json:"text"`
}

// transcriptData holds exactly one of: a plain text transcript, or a list of
// timed segments.
type transcriptData struct {
	kind     transcriptKind
	text     string
	segments []transcriptSegment
}

func (d *transcriptData) UnmarshalJSON(raw []byte) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		d.kind = transcriptKindNone
		return nil
	}
	switch trimmed[0] {
	case '"':
		var text string
		if err := json.Unmarshal(trimmed, &text); err != nil {
			return err
		}
		d.kind = transcriptKindText
		d.text = text
		return nil
	case '[':
		var segments []transcriptSegment
		if err := json.Unmarshal(trimmed, &segments); err != nil {
			return err
		}
		d.kind = transcriptKindSegments
		d.segments = segments
		return nil
	case '{':
		var wrapped struct {
			Text string `json:"text"`
		}
		if err := json.Unmarshal(trimmed, &wrapped); err != nil {
			return err
		}
		d.kind = transcriptKindText
		d.text = wrapped.Text
		return nil
	default:
		return fmt.Errorf("scrape: unsupported transcript payload %q", string(trimmed[:min(len(trimmed), 16)]))
	}
}

// flatten produces a single transcript string. Segment texts are trimmed and
// joined with single spaces.
func (d transcriptData) flatten() string {
	switch d.kind {
	case transcriptKindText:
		return strings.TrimSpace(d.text)
	case transcriptKindSegments:
		parts := make([]string, 0, len(d.segments))
		for _, seg := range d.segments {
			text := strings.TrimSpace(seg.Text)
			if text != "" {
				parts = append(parts, text)
			}
		}
		return strings.Join(parts, " ")
	default:
		return ""
	}
}

// ScrapeTranscript fetches the flat transcript text for a single video URL.
func (c *Client) ScrapeTranscript(ctx context.Context, token, videoURL string) (string, error) {
	var items []transcriptItem
	if err := c.runSync(ctx, token, transcriptActor, transcriptPayload{VideoURL: videoURL}, &items); err != nil {
		return "", err
	}
	if len(items) == 0 {
		return "", domain.ErrEmptyTranscript
	}
	text := items[0].Data.flatten()
	if text == "" {
		return "", domain.ErrEmptyTranscript
	}
	return text, nil
}

// NormalizeVideoURL strips extraneous query parameters (playlist index,
// share trackers and so on) that confuse the transcript scraper. Watch URLs
// keep only the video id; other recognized forms are rebuilt canonically.
func NormalizeVideoURL(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	host := strings.TrimPrefix(parsed.Hostname(), "www.")
	switch {
	case host == "youtu.be":
		id := strings.Trim(parsed.Path, "/")
		if id != "" {
			return "https://www.youtube.com/watch?v=" + id
		}
	case strings.HasSuffix(host, "youtube.com") && parsed.Path == "/watch":
		if id := parsed.Query().Get("v"); id != "" {
			return "https://www.youtube.com/watch?v=" + id
		}
	case strings.HasSuffix(host, "youtube.com") && strings.HasPrefix(parsed.Path, "/embed/"):
		if id := strings.TrimPrefix(parsed.Path, "/embed/"); id != "" {
			return "https://www.youtube.com/watch?v=" + id
		}
	}
	return raw
}
