package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"giveaway-offers-backend/internal/features/participation/models"
	"giveaway-offers-backend/internal/features/participation/repository"
	"giveaway-offers-backend/internal/features/participation/repository/repotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "participations.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteRepository(t *testing.T) {
	repotest.Run(t, func(t *testing.T) repository.ParticipationRepository {
		return openTestStore(t)
	})
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open("  ")
	assert.Error(t, err)
}

func TestNullableTimestampsRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	verified := time.Date(2026, 10, 19, 11, 30, 0, 0, time.UTC)
	p := &models.Participation{
		Token:         "tok-1",
		ParticipantID: "ext-1",
		PrizeID:       "prize_1",
		Status:        models.StatusVerified,
		SubmittedAt:   verified.Add(-time.Hour),
		VerifiedAt:    &verified,
	}
	require.NoError(t, store.Put(ctx, p.Token, p))

	got, err := store.Get(ctx, "tok-1")
	require.NoError(t, err)
	require.NotNil(t, got.VerifiedAt)
	assert.True(t, verified.Equal(*got.VerifiedAt))
	assert.Nil(t, got.DeliveredAt)
	assert.Nil(t, got.RetryTime)
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.sqlite")
	ctx := context.Background()

	store, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, store.Put(ctx, "tok-1", &models.Participation{
		Token: "tok-1", ParticipantID: "a@example.com", PrizeID: "prize_1",
		Status: models.StatusPending, SubmittedAt: time.Now(),
	}))
	require.NoError(t, store.Close())

	store, err = Open(path)
	require.NoError(t, err)
	defer store.Close()

	_, err = store.Get(ctx, "tok-1")
	assert.NoError(t, err)
}

func TestNilStore(t *testing.T) {
	var store *Store
	assert.Error(t, store.Ping(context.Background()))
	assert.NoError(t, store.Close())
}
