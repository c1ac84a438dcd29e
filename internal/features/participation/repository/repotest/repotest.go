// Package repotest holds the behaviour every ParticipationRepository backend
// must share. Backend tests call Run with a constructor.
package repotest

import (
	"context"
	"testing"
	"time"

	"giveaway-offers-backend/internal/features/participation/models"
	"giveaway-offers-backend/internal/features/participation/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(token, participant, prize string, at time.Time) *models.Participation {
	return &models.Participation{
		Token:         token,
		ParticipantID: participant,
		PrizeID:       prize,
		Status:        models.StatusPending,
		SubmittedAt:   at,
	}
}

// Run exercises a fresh repository returned by newRepo.
func Run(t *testing.T, newRepo func(t *testing.T) repository.ParticipationRepository) {
	base := time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)

	t.Run("get missing", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.Get(context.Background(), "nope")
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("put then get", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		in := record("tok-1", "user@example.com", "prize_42", base)
		require.NoError(t, repo.Put(ctx, in.Token, in))

		got, err := repo.Get(ctx, "tok-1")
		require.NoError(t, err)
		assert.Equal(t, "user@example.com", got.ParticipantID)
		assert.Equal(t, "prize_42", got.PrizeID)
		assert.Equal(t, models.StatusPending, got.Status)
		assert.True(t, base.Equal(got.SubmittedAt))
		assert.False(t, got.Retried)
		assert.Nil(t, got.RetryTime)
	})

	t.Run("put replaces", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		in := record("tok-1", "user@example.com", "prize_42", base)
		require.NoError(t, repo.Put(ctx, in.Token, in))

		retryAt := base.Add(time.Second)
		in.Retried = true
		in.RetryTime = &retryAt
		in.Status = models.StatusVerified
		in.OfferID = "offer-9"
		require.NoError(t, repo.Put(ctx, in.Token, in))

		got, err := repo.Get(ctx, "tok-1")
		require.NoError(t, err)
		assert.True(t, got.Retried)
		require.NotNil(t, got.RetryTime)
		assert.True(t, retryAt.Equal(*got.RetryTime))
		assert.Equal(t, models.StatusVerified, got.Status)
		assert.Equal(t, "offer-9", got.OfferID)

		list, err := repo.ListByPrize(ctx, "prize_42")
		require.NoError(t, err)
		assert.Len(t, list, 1)
	})

	t.Run("list by prize", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		require.NoError(t, repo.Put(ctx, "tok-b", record("tok-b", "b@example.com", "prize_1", base.Add(2*time.Minute))))
		require.NoError(t, repo.Put(ctx, "tok-a", record("tok-a", "a@example.com", "prize_1", base.Add(time.Minute))))
		require.NoError(t, repo.Put(ctx, "tok-c", record("tok-c", "c@example.com", "prize_2", base)))

		list, err := repo.ListByPrize(ctx, "prize_1")
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "tok-a", list[0].Token)
		assert.Equal(t, "tok-b", list[1].Token)

		empty, err := repo.ListByPrize(ctx, "prize_none")
		require.NoError(t, err)
		assert.Empty(t, empty)
	})

	t.Run("list ties ordered by token", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		for _, tok := range []string{"tok-z", "tok-m", "tok-a"} {
			require.NoError(t, repo.Put(ctx, tok, record(tok, "same@example.com", "prize_1", base)))
		}

		for i := 0; i < 3; i++ {
			list, err := repo.ListByPrize(ctx, "prize_1")
			require.NoError(t, err)
			require.Len(t, list, 3)
			assert.Equal(t, []string{"tok-a", "tok-m", "tok-z"},
				[]string{list[0].Token, list[1].Token, list[2].Token})
		}
	})

	t.Run("ping", func(t *testing.T) {
		repo := newRepo(t)
		assert.NoError(t, repo.Ping(context.Background()))
	})
}
