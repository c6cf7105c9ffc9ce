// Package reconcile turns decoded webhook events into persisted state
// transitions. Deliveries are at-least-once and unordered; safety comes from
// the repository's processed-event ledger and status-guarded writes, not
// from any in-process coordination.
package reconcile

import (
	"context"
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/romariotrain/video-platform/internal/upstream/muxvideo"
	"github.com/romariotrain/video-platform/internal/video/repository"
	"github.com/romariotrain/video-platform/internal/webhook/event"
)

type MediaReconciler struct {
	repo   repository.LifecycleRepository
	logger zerolog.Logger
}

func NewMedia(repo repository.LifecycleRepository, logger zerolog.Logger) *MediaReconciler {
	return &MediaReconciler{
		repo:   repo,
		logger: logger.With().Str("component", "media_reconciler").Logger(),
	}
}

// Apply routes a decoded media event to its conditional write.
func (r *MediaReconciler) Apply(ctx context.Context, ev event.Media) (repository.Outcome, error) {
	switch ev := ev.(type) {
	case event.AssetCreated:
		out, err := r.repo.ApplyAssetCreated(ctx, derivedKey(ev), ev.UploadID, ev.AssetID)
		return r.report("asset created", ev.UploadID, out, err)

	case event.AssetReady:
		playbackID := ev.PlaybackIDs[0]
		fields := repository.AssetReadyFields{
			AssetID:      ev.AssetID,
			PlaybackID:   playbackID,
			ThumbnailURL: muxvideo.ThumbnailURL(playbackID),
			PreviewURL:   muxvideo.PreviewURL(playbackID),
			DurationMS:   int64(math.Round(ev.DurationSeconds * 1000)),
		}
		out, err := r.repo.ApplyAssetReady(ctx, derivedKey(ev), ev.UploadID, fields)
		return r.report("asset ready", ev.UploadID, out, err)

	case event.AssetErrored:
		out, err := r.repo.ApplyAssetErrored(ctx, derivedKey(ev), ev.UploadID)
		return r.report("asset errored", ev.UploadID, out, err)

	case event.AssetDeleted:
		out, err := r.repo.ApplyAssetDeleted(ctx, derivedKey(ev), ev.UploadID)
		return r.report("asset deleted", ev.UploadID, out, err)

	case event.TrackReady:
		out, err := r.repo.ApplyTrackReady(ctx, derivedKey(ev), ev.AssetID, ev.TrackID, ev.Status)
		return r.report("track ready", ev.AssetID, out, err)

	case event.Ignored:
		r.logger.Debug().Str("type", ev.Type).Msg("ignoring unrecognized media event")
		return repository.OutcomeNoop, nil

	default:
		return 0, fmt.Errorf("unhandled media event %T", ev)
	}
}

func (r *MediaReconciler) report(action, ref string, out repository.Outcome, err error) (repository.Outcome, error) {
	if err != nil {
		r.logger.Warn().Err(err).Str("ref", ref).Msgf("%s failed", action)
		return out, err
	}
	r.logger.Info().Str("ref", ref).Str("outcome", out.String()).Msg(action)
	return out, nil
}
