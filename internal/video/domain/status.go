package domain

import (
	"fmt"

	"github.com/romariotrain/video-platform/internal/video/models"
)

// IsTerminal reports whether a status must not be downgraded by a stale
// processing-class event. The provider delivers webhooks at-least-once with
// no ordering guarantee, so an asset.created may well arrive after the
// asset.ready it logically precedes.
func IsTerminal(s models.Status) bool {
	return s == models.ReadyStatus || s == models.ErroredStatus
}

func CanTransition(from, to models.Status) bool {
	switch from {
	case models.AwaitingUploadStatus:
		// ready/errored straight from awaiting_upload covers deliveries that
		// overtake the asset.created event.
		return to == models.ProcessingStatus || IsTerminal(to)
	case models.ProcessingStatus:
		return IsTerminal(to)
	case models.ReadyStatus, models.ErroredStatus:
		// Terminal writes are authoritative provider state and may replace
		// each other, but never regress to a processing-class status.
		return IsTerminal(to)
	default:
		return false
	}
}

func ValidateTransition(from, to models.Status) error {
	if from == to {
		return nil
	}
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}
