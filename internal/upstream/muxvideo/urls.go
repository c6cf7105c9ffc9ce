package muxvideo

import "fmt"

// Image host serving playback-derived stills and previews. These URLs are
// derived, never stored by the provider, so they are reconstructed locally
// whenever a playback id lands.
const imageBaseURL = "https://image.mux.com"

func ThumbnailURL(playbackID string) string {
	return fmt.Sprintf("%s/%s/thumbnail.jpg", imageBaseURL, playbackID)
}

func PreviewURL(playbackID string) string {
	return fmt.Sprintf("%s/%s/animated.gif", imageBaseURL, playbackID)
}
