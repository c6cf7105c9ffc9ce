package event

import (
	"encoding/json"
	"fmt"
)

// Event type discriminators sent by the identity provider.
const (
	TypeIdentityCreated = "user.created"
	TypeIdentityUpdated = "user.updated"
	TypeIdentityDeleted = "user.deleted"
)

// Identity is the closed union of identity provider events.
type Identity interface {
	identityEvent()
}

type IdentityCreated struct {
	ExternalID string
	FirstName  string
	LastName   string
	ImageURL   string
}

type IdentityUpdated struct {
	ExternalID string
	FirstName  string
	LastName   string
	ImageURL   string
}

type IdentityDeleted struct {
	ExternalID string
}

func (IdentityCreated) identityEvent() {}
func (IdentityUpdated) identityEvent() {}
func (IdentityDeleted) identityEvent() {}

// DecodeIdentity parses a raw identity provider payload. A deletion without
// an external id is malformed: the provider sends tombstones for accounts it
// has already purged and an empty id would delete nothing deterministically.
func DecodeIdentity(body []byte) (Identity, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode identity payload: %w", err)
	}

	switch env.Type {
	case TypeIdentityCreated, TypeIdentityUpdated:
		var d struct {
			ID        string `json:"id"`
			FirstName string `json:"first_name"`
			LastName  string `json:"last_name"`
			ImageURL  string `json:"image_url"`
		}
		if err := json.Unmarshal(env.Data, &d); err != nil {
			return nil, fmt.Errorf("decode %s data: %w", env.Type, err)
		}
		if d.ID == "" {
			return nil, &MalformedError{Type: env.Type, Field: "id"}
		}
		if env.Type == TypeIdentityCreated {
			return IdentityCreated{ExternalID: d.ID, FirstName: d.FirstName, LastName: d.LastName, ImageURL: d.ImageURL}, nil
		}
		return IdentityUpdated{ExternalID: d.ID, FirstName: d.FirstName, LastName: d.LastName, ImageURL: d.ImageURL}, nil

	case TypeIdentityDeleted:
		var d struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(env.Data, &d); err != nil {
			return nil, fmt.Errorf("decode %s data: %w", env.Type, err)
		}
		if d.ID == "" {
			return nil, &MalformedError{Type: env.Type, Field: "id"}
		}
		return IdentityDeleted{ExternalID: d.ID}, nil

	default:
		return Ignored{Type: env.Type}, nil
	}
}
