package scrape

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://api.apify.com/v2"

	playlistActor   = "grandmaster~youtube-playlist-scraper---lightning-fast-low-cost"
	transcriptActor = "pintostudio~youtube-transcript-scraper"

	// Scrape runs are synchronous on the provider side and can take a
	// while on long playlists; anything beyond this is treated as a
	// timeout failure.
	scrapeTimeout = 2 * time.Minute
)

// Options controls how the scrape client is configured.
type Options struct {
	BaseURL    string
	HTTPClient *http.Client
}

// Client calls the Apify run-sync actor endpoints used for playlist and
// transcript scraping. Tokens are supplied per request because free-plan
// users run with their own credentials.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a scrape client.
func NewClient(opts Options) *Client {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: scrapeTimeout}
	}
	return &Client{baseURL: baseURL, client: client}
}

func (c *Client) runSync(ctx context.Context, token, actor string, payload any, out any) error {
	if strings.TrimSpace(token) == "" {
		return errors.New("scrape: api token is required")
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("scrape: encode payload: %w", err)
	}
	endpoint := fmt.Sprintf("%s/acts/%s/run-sync-get-dataset-items?token=%s",
		c.baseURL, actor, url.QueryEscape(token))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("scrape: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("scrape: call %s: %w", actor, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("scrape: %s returned status %d: %s", actor, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("scrape: decode %s response: %w", actor, err)
	}
	return nil
}
