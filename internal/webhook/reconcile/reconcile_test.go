package reconcile

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/romariotrain/video-platform/internal/video/models"
	"github.com/romariotrain/video-platform/internal/video/repository"
	"github.com/romariotrain/video-platform/internal/webhook/event"
)

func seedVideo(t *testing.T, repo *repository.Memory, uploadID string) *models.Video {
	t.Helper()
	v := &models.Video{
		ID:         uuid.New(),
		OwnerID:    uuid.New(),
		Title:      "Untitled",
		Visibility: models.PrivateVisibility,
		Status:     models.AwaitingUploadStatus,
		UploadID:   uploadID,
	}
	require.NoError(t, repo.Create(context.Background(), v))
	return v
}

func readyEvent(uploadID string) event.AssetReady {
	return event.AssetReady{
		UploadID:        uploadID,
		AssetID:         "asset_1",
		Status:          "ready",
		PlaybackIDs:     []string{"abc"},
		DurationSeconds: 12.5,
	}
}

func TestMediaApply_CreatedThenReady(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemory()
	rec := NewMedia(repo, zerolog.Nop())
	seedVideo(t, repo, "up_1")

	out, err := rec.Apply(ctx, event.AssetCreated{UploadID: "up_1", AssetID: "asset_1", Status: "preparing"})
	require.NoError(t, err)
	require.Equal(t, repository.OutcomeApplied, out)

	out, err = rec.Apply(ctx, readyEvent("up_1"))
	require.NoError(t, err)
	require.Equal(t, repository.OutcomeApplied, out)

	v, ok := repo.VideoByUploadID("up_1")
	require.True(t, ok)
	require.Equal(t, models.ReadyStatus, v.Status)
	require.Equal(t, "abc", *v.PlaybackID)
	require.Equal(t, int64(12500), v.DurationMS)
	require.Contains(t, *v.ThumbnailURL, "abc")
	require.Contains(t, *v.PreviewURL, "abc")
}

func TestMediaApply_ReadyRedeliveryIsDuplicate(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemory()
	rec := NewMedia(repo, zerolog.Nop())
	seedVideo(t, repo, "up_1")

	ev := readyEvent("up_1")
	out, err := rec.Apply(ctx, ev)
	require.NoError(t, err)
	require.Equal(t, repository.OutcomeApplied, out)

	// Identical payload derives the same event key.
	out, err = rec.Apply(ctx, ev)
	require.NoError(t, err)
	require.Equal(t, repository.OutcomeDuplicate, out)

	// Only one status-changed event was recorded.
	require.Len(t, repo.Events(), 1)
}

func TestMediaApply_StaleCreatedAfterReady(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemory()
	rec := NewMedia(repo, zerolog.Nop())
	seedVideo(t, repo, "up_1")

	_, err := rec.Apply(ctx, readyEvent("up_1"))
	require.NoError(t, err)

	out, err := rec.Apply(ctx, event.AssetCreated{UploadID: "up_1", AssetID: "asset_1", Status: "preparing"})
	require.NoError(t, err)
	require.Equal(t, repository.OutcomeStale, out)

	v, _ := repo.VideoByUploadID("up_1")
	require.Equal(t, models.ReadyStatus, v.Status)
}

func TestMediaApply_ErroredUnknownUpload(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemory()
	rec := NewMedia(repo, zerolog.Nop())

	_, err := rec.Apply(ctx, event.AssetErrored{UploadID: "up_missing", Status: "errored"})
	require.ErrorIs(t, err, models.ErrNotFound)
}

func TestMediaApply_TrackJoinsByAssetID(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemory()
	rec := NewMedia(repo, zerolog.Nop())
	seedVideo(t, repo, "up_1")

	_, err := rec.Apply(ctx, event.AssetCreated{UploadID: "up_1", AssetID: "asset_1", Status: "preparing"})
	require.NoError(t, err)

	out, err := rec.Apply(ctx, event.TrackReady{AssetID: "asset_1", TrackID: "trk_1", Status: "ready"})
	require.NoError(t, err)
	require.Equal(t, repository.OutcomeApplied, out)

	v, _ := repo.VideoByUploadID("up_1")
	require.Equal(t, "trk_1", *v.TrackID)
	require.Equal(t, "ready", *v.TrackStatus)
}

func TestMediaApply_DeletedRemovesRow(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemory()
	rec := NewMedia(repo, zerolog.Nop())
	seedVideo(t, repo, "up_1")

	out, err := rec.Apply(ctx, event.AssetDeleted{UploadID: "up_1"})
	require.NoError(t, err)
	require.Equal(t, repository.OutcomeApplied, out)

	_, ok := repo.VideoByUploadID("up_1")
	require.False(t, ok)
}

func TestMediaApply_IgnoredIsNoop(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemory()
	rec := NewMedia(repo, zerolog.Nop())

	out, err := rec.Apply(ctx, event.Ignored{Type: "video.asset.live_stream_completed"})
	require.NoError(t, err)
	require.Equal(t, repository.OutcomeNoop, out)
}

func TestIdentityApply_CreatedUpdatedDeleted(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemory()
	rec := NewIdentity(repo, zerolog.Nop())

	out, err := rec.Apply(ctx, "msg_1", event.IdentityCreated{ExternalID: "ext_1", FirstName: "Ada", LastName: "Lovelace"})
	require.NoError(t, err)
	require.Equal(t, repository.OutcomeApplied, out)

	u, ok := repo.UserByExternalID("ext_1")
	require.True(t, ok)
	require.Equal(t, "Ada Lovelace", u.Name)

	out, err = rec.Apply(ctx, "msg_2", event.IdentityUpdated{ExternalID: "ext_1", FirstName: "Ada", LastName: "King", ImageURL: "https://img.example/a.png"})
	require.NoError(t, err)
	require.Equal(t, repository.OutcomeApplied, out)

	u, _ = repo.UserByExternalID("ext_1")
	require.Equal(t, "Ada King", u.Name)
	require.Equal(t, "https://img.example/a.png", u.ImageURL)

	out, err = rec.Apply(ctx, "msg_3", event.IdentityDeleted{ExternalID: "ext_1"})
	require.NoError(t, err)
	require.Equal(t, repository.OutcomeApplied, out)

	_, ok = repo.UserByExternalID("ext_1")
	require.False(t, ok)
}

func TestIdentityApply_DuplicateDeliveryID(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemory()
	rec := NewIdentity(repo, zerolog.Nop())

	ev := event.IdentityCreated{ExternalID: "ext_1", FirstName: "Ada"}
	out, err := rec.Apply(ctx, "msg_1", ev)
	require.NoError(t, err)
	require.Equal(t, repository.OutcomeApplied, out)

	out, err = rec.Apply(ctx, "msg_1", ev)
	require.NoError(t, err)
	require.Equal(t, repository.OutcomeDuplicate, out)
}

func TestIdentityApply_RetriedCreateUnderNewDeliveryID(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemory()
	rec := NewIdentity(repo, zerolog.Nop())

	ev := event.IdentityCreated{ExternalID: "ext_1", FirstName: "Ada"}
	_, err := rec.Apply(ctx, "msg_1", ev)
	require.NoError(t, err)

	out, err := rec.Apply(ctx, "msg_2", ev)
	require.NoError(t, err)
	require.Equal(t, repository.OutcomeNoop, out)
}

func TestIdentityApply_DeleteWithoutExternalID(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemory()
	rec := NewIdentity(repo, zerolog.Nop())

	_, err := rec.Apply(ctx, "msg_1", event.IdentityDeleted{})
	require.ErrorIs(t, err, models.ErrMalformedEvent)
}

func TestIdentityApply_MissingDeliveryIDFallsBackToDerivedKey(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemory()
	rec := NewIdentity(repo, zerolog.Nop())

	ev := event.IdentityCreated{ExternalID: "ext_1", FirstName: "Ada"}
	out, err := rec.Apply(ctx, "", ev)
	require.NoError(t, err)
	require.Equal(t, repository.OutcomeApplied, out)

	out, err = rec.Apply(ctx, "", ev)
	require.NoError(t, err)
	require.Equal(t, repository.OutcomeDuplicate, out)
}
