package domain

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/romariotrain/video-platform/internal/video/models"
)

func TestIsTerminal(t *testing.T) {
	require.False(t, IsTerminal(models.AwaitingUploadStatus))
	require.False(t, IsTerminal(models.ProcessingStatus))
	require.True(t, IsTerminal(models.ReadyStatus))
	require.True(t, IsTerminal(models.ErroredStatus))
}

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to models.Status
		want     bool
	}{
		{models.AwaitingUploadStatus, models.ProcessingStatus, true},
		{models.AwaitingUploadStatus, models.ReadyStatus, true},
		{models.AwaitingUploadStatus, models.ErroredStatus, true},
		{models.ProcessingStatus, models.ReadyStatus, true},
		{models.ProcessingStatus, models.ErroredStatus, true},
		{models.ProcessingStatus, models.AwaitingUploadStatus, false},
		{models.ReadyStatus, models.ProcessingStatus, false},
		{models.ReadyStatus, models.AwaitingUploadStatus, false},
		// A later terminal delivery is authoritative over an earlier one.
		{models.ReadyStatus, models.ErroredStatus, true},
		{models.ErroredStatus, models.ReadyStatus, true},
		{models.ErroredStatus, models.ProcessingStatus, false},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestValidateTransition(t *testing.T) {
	require.NoError(t, ValidateTransition(models.ProcessingStatus, models.ReadyStatus))
	require.NoError(t, ValidateTransition(models.ReadyStatus, models.ReadyStatus))

	err := ValidateTransition(models.ReadyStatus, models.ProcessingStatus)
	require.ErrorIs(t, err, ErrInvalidTransition)
}
