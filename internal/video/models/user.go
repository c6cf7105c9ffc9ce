package models

import (
	"time"

	"github.com/google/uuid"
)

// User is the local projection of an identity provider account. Rows are
// created, updated and deleted strictly in response to identity webhook
// events; application code never inserts users on its own.
type User struct {
	ID         uuid.UUID `db:"id"`
	ExternalID string    `db:"external_id"`
	Name       string    `db:"name"`
	ImageURL   string    `db:"image_url"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}
