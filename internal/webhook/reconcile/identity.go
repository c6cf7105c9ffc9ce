package reconcile

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/romariotrain/video-platform/internal/video/repository"
	"github.com/romariotrain/video-platform/internal/webhook/event"
)

type IdentityReconciler struct {
	repo   repository.IdentityRepository
	logger zerolog.Logger
}

func NewIdentity(repo repository.IdentityRepository, logger zerolog.Logger) *IdentityReconciler {
	return &IdentityReconciler{
		repo:   repo,
		logger: logger.With().Str("component", "identity_reconciler").Logger(),
	}
}

// Apply routes a decoded identity event. deliveryID is the provider's
// delivery id header, stable across retries; when absent the key is derived
// from the event itself.
func (r *IdentityReconciler) Apply(ctx context.Context, deliveryID string, ev event.Identity) (repository.Outcome, error) {
	switch ev := ev.(type) {
	case event.IdentityCreated:
		out, err := r.repo.ApplyIdentityCreated(ctx, r.key(deliveryID, ev), ev.ExternalID, displayName(ev.FirstName, ev.LastName), ev.ImageURL)
		return r.report("identity created", ev.ExternalID, out, err)

	case event.IdentityUpdated:
		out, err := r.repo.ApplyIdentityUpdated(ctx, r.key(deliveryID, ev), ev.ExternalID, displayName(ev.FirstName, ev.LastName), ev.ImageURL)
		return r.report("identity updated", ev.ExternalID, out, err)

	case event.IdentityDeleted:
		if ev.ExternalID == "" {
			return 0, &event.MalformedError{Type: event.TypeIdentityDeleted, Field: "id"}
		}
		out, err := r.repo.ApplyIdentityDeleted(ctx, r.key(deliveryID, ev), ev.ExternalID)
		return r.report("identity deleted", ev.ExternalID, out, err)

	case event.Ignored:
		r.logger.Debug().Str("type", ev.Type).Msg("ignoring unrecognized identity event")
		return repository.OutcomeNoop, nil

	default:
		return 0, fmt.Errorf("unhandled identity event %T", ev)
	}
}

func (r *IdentityReconciler) key(deliveryID string, ev event.Identity) string {
	if deliveryID != "" {
		return deliveryID
	}
	return derivedKey(ev)
}

func (r *IdentityReconciler) report(action, ref string, out repository.Outcome, err error) (repository.Outcome, error) {
	if err != nil {
		r.logger.Warn().Err(err).Str("ref", ref).Msgf("%s failed", action)
		return out, err
	}
	r.logger.Info().Str("ref", ref).Str("outcome", out.String()).Msg(action)
	return out, nil
}

// displayName mirrors how the identity provider splits names: local storage
// keeps the joined form only.
func displayName(first, last string) string {
	return strings.TrimSpace(first + " " + last)
}
