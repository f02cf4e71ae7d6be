package image

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://api.atlascloud.ai/api/v1"
	defaultModel   = "google/nano-banana-pro/edit"

	// Image synthesis is slow; the API runs in synchronous mode so the
	// whole render happens inside this request.
	generateTimeout = 3 * time.Minute
	downloadTimeout = 60 * time.Second
)

// GenerateRequest carries one image-generation call. The bearer key is per
// request because generation keys are resolved per job.
type GenerateRequest struct {
	APIKey string
	Prompt string
}

// Generator is the contract for image synthesis providers.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (string, error)
	Download(ctx context.Context, imageURL string) ([]byte, error)
}

// AtlasOptions controls how the AtlasCloud client is configured.
type AtlasOptions struct {
	BaseURL        string
	Model          string
	HTTPClient     *http.Client
	DownloadClient *http.Client
}

// Atlas calls the AtlasCloud image-generation API.
type Atlas struct {
	baseURL  string
	model    string
	client   *http.Client
	download *http.Client
}

type atlasGeneratePayload struct {
	Model              string `json:"model"`
	Prompt             string `json:"prompt"`
	OutputFormat       string `json:"output_format"`
	Resolution         string `json:"resolution"`
	EnableBase64Output bool   `json:"enable_base64_output"`
	EnableSyncMode     bool   `json:"enable_sync_mode"`
}

type atlasGenerateResponse struct {
	Data struct {
		Outputs []string `json:"outputs"`
	} `json:"data"`
}

// NewAtlas creates an AtlasCloud image generator.
func NewAtlas(opts AtlasOptions) *Atlas {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = defaultModel
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: generateTimeout}
	}
	download := opts.DownloadClient
	if download == nil {
		download = &http.Client{Timeout: downloadTimeout}
	}
	return &Atlas{baseURL: baseURL, model: model, client: client, download: download}
}

// Generate submits the prompt and returns the first hosted output URL.
func (a *Atlas) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	apiKey := strings.TrimSpace(req.APIKey)
	if apiKey == "" {
		return "", errors.New("image: api key is required")
	}

	payload := atlasGeneratePayload{
		Model:              a.model,
		Prompt:             req.Prompt,
		OutputFormat:       "png",
		Resolution:         "1k",
		EnableBase64Output: false,
		EnableSyncMode:     true,
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return "", fmt.Errorf("image: encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/model/generateImage", &buf)
	if err != nil {
		return "", fmt.Errorf("image: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("image: request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("image: status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var out atlasGenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("image: decode response: %w", err)
	}
	if len(out.Data.Outputs) == 0 || strings.TrimSpace(out.Data.Outputs[0]) == "" {
		return "", errors.New("image: no image URL returned")
	}
	return out.Data.Outputs[0], nil
}

// Download fetches the raw image bytes from a hosted output URL.
func (a *Atlas) Download(ctx context.Context, imageURL string) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("image: build download request: %w", err)
	}
	resp, err := a.download.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("image: download failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("image: download status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("image: read download body: %w", err)
	}
	return data, nil
}

var _ Generator = (*Atlas)(nil)
