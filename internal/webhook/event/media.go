package event

import (
	"encoding/json"
	"fmt"
)

// Event type discriminators sent by the media processing provider.
const (
	TypeAssetCreated = "video.asset.created"
	TypeAssetReady   = "video.asset.ready"
	TypeAssetErrored = "video.asset.errored"
	TypeAssetDeleted = "video.asset.deleted"
	TypeTrackReady   = "video.asset.track.ready"
)

// Media is the closed union of media provider events.
type Media interface {
	mediaEvent()
}

// AssetCreated announces that the uploaded file became a provider asset.
// Status carries the provider's own wording ("preparing"); the reconciler
// maps it onto the local lifecycle.
type AssetCreated struct {
	UploadID string
	AssetID  string
	Status   string
}

// AssetReady carries the final playback metadata. Events join on the upload
// id; the first playback id becomes the canonical one.
type AssetReady struct {
	UploadID        string
	AssetID         string
	Status          string
	PlaybackIDs     []string
	DurationSeconds float64
}

type AssetErrored struct {
	UploadID string
	Status   string
}

type AssetDeleted struct {
	UploadID string
}

// TrackReady joins on the provider asset id, not the upload id: by the time
// subtitles finish the provider no longer echoes the upload correlation.
type TrackReady struct {
	AssetID string
	TrackID string
	Status  string
}

func (AssetCreated) mediaEvent() {}
func (AssetReady) mediaEvent()   {}
func (AssetErrored) mediaEvent() {}
func (AssetDeleted) mediaEvent() {}
func (TrackReady) mediaEvent()   {}

type envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// DecodeMedia parses a raw media provider payload into one of the union's
// variants.
func DecodeMedia(body []byte) (Media, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode media payload: %w", err)
	}

	switch env.Type {
	case TypeAssetCreated:
		var d struct {
			ID       string `json:"id"`
			UploadID string `json:"upload_id"`
			Status   string `json:"status"`
		}
		if err := json.Unmarshal(env.Data, &d); err != nil {
			return nil, fmt.Errorf("decode %s data: %w", env.Type, err)
		}
		if d.UploadID == "" {
			return nil, &MalformedError{Type: env.Type, Field: "upload_id"}
		}
		return AssetCreated{UploadID: d.UploadID, AssetID: d.ID, Status: d.Status}, nil

	case TypeAssetReady:
		var d struct {
			ID          string  `json:"id"`
			UploadID    string  `json:"upload_id"`
			Status      string  `json:"status"`
			Duration    float64 `json:"duration"`
			PlaybackIDs []struct {
				ID string `json:"id"`
			} `json:"playback_ids"`
		}
		if err := json.Unmarshal(env.Data, &d); err != nil {
			return nil, fmt.Errorf("decode %s data: %w", env.Type, err)
		}
		if d.UploadID == "" {
			return nil, &MalformedError{Type: env.Type, Field: "upload_id"}
		}
		ids := make([]string, 0, len(d.PlaybackIDs))
		for _, p := range d.PlaybackIDs {
			if p.ID != "" {
				ids = append(ids, p.ID)
			}
		}
		if len(ids) == 0 {
			return nil, &MalformedError{Type: env.Type, Field: "playback_ids"}
		}
		return AssetReady{
			UploadID:        d.UploadID,
			AssetID:         d.ID,
			Status:          d.Status,
			PlaybackIDs:     ids,
			DurationSeconds: d.Duration,
		}, nil

	case TypeAssetErrored:
		var d struct {
			UploadID string `json:"upload_id"`
			Status   string `json:"status"`
		}
		if err := json.Unmarshal(env.Data, &d); err != nil {
			return nil, fmt.Errorf("decode %s data: %w", env.Type, err)
		}
		if d.UploadID == "" {
			return nil, &MalformedError{Type: env.Type, Field: "upload_id"}
		}
		return AssetErrored{UploadID: d.UploadID, Status: d.Status}, nil

	case TypeAssetDeleted:
		var d struct {
			UploadID string `json:"upload_id"`
		}
		if err := json.Unmarshal(env.Data, &d); err != nil {
			return nil, fmt.Errorf("decode %s data: %w", env.Type, err)
		}
		if d.UploadID == "" {
			return nil, &MalformedError{Type: env.Type, Field: "upload_id"}
		}
		return AssetDeleted{UploadID: d.UploadID}, nil

	case TypeTrackReady:
		var d struct {
			ID      string `json:"id"`
			AssetID string `json:"asset_id"`
			Status  string `json:"status"`
		}
		if err := json.Unmarshal(env.Data, &d); err != nil {
			return nil, fmt.Errorf("decode %s data: %w", env.Type, err)
		}
		if d.AssetID == "" {
			return nil, &MalformedError{Type: env.Type, Field: "asset_id"}
		}
		return TrackReady{AssetID: d.AssetID, TrackID: d.ID, Status: d.Status}, nil

	default:
		return Ignored{Type: env.Type}, nil
	}
}
