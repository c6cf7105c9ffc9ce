// Package filestore talks to the file storage provider that keeps durable
// copies of images (thumbnails, banners). The provider ingests by URL, so
// nothing large ever streams through this service.
package filestore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// StoredFile identifies a durably stored file. Key is what Delete takes;
// URL is public and safe to persist on the video row.
type StoredFile struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// UploadFromURL asks the provider to fetch srcURL and store a copy.
func (c *Client) UploadFromURL(ctx context.Context, srcURL string) (StoredFile, error) {
	body, err := json.Marshal(map[string]string{"url": srcURL})
	if err != nil {
		return StoredFile{}, fmt.Errorf("marshal import request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/files/import", bytes.NewReader(body))
	if err != nil {
		return StoredFile{}, fmt.Errorf("build import request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return StoredFile{}, fmt.Errorf("import file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return StoredFile{}, fmt.Errorf("import file: status %d: %s", resp.StatusCode, msg)
	}

	var out struct {
		Data StoredFile `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return StoredFile{}, fmt.Errorf("decode import response: %w", err)
	}
	if out.Data.Key == "" {
		return StoredFile{}, fmt.Errorf("import response missing file key")
	}
	return out.Data, nil
}

// Delete removes a stored file by key. A 404 counts as success: the file is
// already gone, which is the state the caller wanted.
func (c *Client) Delete(ctx context.Context, key string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/v1/files/"+url.PathEscape(key), nil)
	if err != nil {
		return fmt.Errorf("build delete request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("delete file: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 512))

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent, http.StatusNotFound:
		return nil
	default:
		return fmt.Errorf("delete file: status %d", resp.StatusCode)
	}
}
