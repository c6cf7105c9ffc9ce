package muxvideo

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCreateDirectUpload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/video/v1/uploads", r.URL.Path)

		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		require.Equal(t, "token-id", user)
		require.Equal(t, "token-secret", pass)

		var req struct {
			CorsOrigin       string `json:"cors_origin"`
			NewAssetSettings struct {
				Passthrough    string   `json:"passthrough"`
				PlaybackPolicy []string `json:"playback_policy"`
			} `json:"new_asset_settings"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "owner-123", req.NewAssetSettings.Passthrough)
		require.Equal(t, []string{"public"}, req.NewAssetSettings.PlaybackPolicy)

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"id":"up_1","url":"https://upload.example/put"}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "token-id", "token-secret")
	du, err := c.CreateDirectUpload(context.Background(), "owner-123")
	require.NoError(t, err)
	require.Equal(t, DirectUpload{ID: "up_1", URL: "https://upload.example/put"}, du)
}

func TestCreateDirectUpload_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "bad", "creds")
	_, err := c.CreateDirectUpload(context.Background(), "owner-123")
	require.Error(t, err)
	require.Contains(t, err.Error(), "status 401")
}

func TestCreateDirectUpload_MissingFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"id":"","url":""}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "id", "secret")
	_, err := c.CreateDirectUpload(context.Background(), "owner-123")
	require.Error(t, err)
}

func TestImageURLs(t *testing.T) {
	require.Equal(t, "https://image.mux.com/pb_abc/thumbnail.jpg", ThumbnailURL("pb_abc"))
	require.Equal(t, "https://image.mux.com/pb_abc/animated.gif", PreviewURL("pb_abc"))
}
