// Package muxvideo is a minimal client for the media processing provider:
// upload slot creation plus the playback-derived image URLs. Transcoding
// itself happens on the provider side; state comes back through webhooks.
package muxvideo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const DefaultBaseURL = "https://api.mux.com"

// DirectUpload is an upload slot created with the provider. ID is the
// correlation id that joins every later webhook event back to the local
// video row; URL is where the browser PUTs the file.
type DirectUpload struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type Client struct {
	baseURL     string
	tokenID     string
	tokenSecret string
	httpClient  *http.Client
}

func NewClient(baseURL, tokenID, tokenSecret string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		tokenID:     tokenID,
		tokenSecret: tokenSecret,
		httpClient:  &http.Client{Timeout: 15 * time.Second},
	}
}

// CreateDirectUpload requests a one-time upload URL. passthrough travels
// with the asset and comes back on webhook events, so the owner id goes
// there.
func (c *Client) CreateDirectUpload(ctx context.Context, passthrough string) (DirectUpload, error) {
	payload := map[string]any{
		"cors_origin": "*",
		"new_asset_settings": map[string]any{
			"passthrough":     passthrough,
			"playback_policy": []string{"public"},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return DirectUpload{}, fmt.Errorf("marshal upload request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/video/v1/uploads", bytes.NewReader(body))
	if err != nil {
		return DirectUpload{}, fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.tokenID, c.tokenSecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return DirectUpload{}, fmt.Errorf("create direct upload: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return DirectUpload{}, fmt.Errorf("create direct upload: status %d: %s", resp.StatusCode, msg)
	}

	var out struct {
		Data DirectUpload `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return DirectUpload{}, fmt.Errorf("decode upload response: %w", err)
	}
	if out.Data.ID == "" || out.Data.URL == "" {
		return DirectUpload{}, fmt.Errorf("upload response missing id or url")
	}
	return out.Data, nil
}
