package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"giveaway-offers-backend/internal/common/logger"
	"giveaway-offers-backend/internal/features/participation/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

func newTestPersister(repo *fakeRepo, timeout time.Duration) *Persister {
	p := NewPersister(repo, timeout, logger.Nop())
	p.now = func() time.Time { return fixedNow }
	return p
}

func pendingRecord(token string) *models.Participation {
	return &models.Participation{
		Token:         token,
		ParticipantID: "user@example.com",
		PrizeID:       "prize_1",
		Status:        models.StatusPending,
		SubmittedAt:   fixedNow.Add(-time.Second),
	}
}

func TestPersistFirstWriteVisible(t *testing.T) {
	repo := newFakeRepo()
	ok := newTestPersister(repo, time.Second).Persist(context.Background(), "tok-1", pendingRecord("tok-1"))

	require.True(t, ok)
	assert.Len(t, repo.puts, 1)
	assert.Equal(t, 1, repo.gets)

	stored, found := repo.stored("tok-1")
	require.True(t, found)
	assert.False(t, stored.Retried)
	assert.Nil(t, stored.RetryTime)
}

func TestPersistRetriesOnceWhenReadBackMisses(t *testing.T) {
	repo := newFakeRepo()
	repo.dropWrites = 1

	record := pendingRecord("tok-1")
	ok := newTestPersister(repo, time.Second).Persist(context.Background(), "tok-1", record)

	require.True(t, ok)
	require.Len(t, repo.puts, 2)
	assert.Equal(t, 2, repo.gets)

	assert.False(t, repo.puts[0].Retried)
	assert.True(t, repo.puts[1].Retried)
	require.NotNil(t, repo.puts[1].RetryTime)
	assert.True(t, fixedNow.Equal(*repo.puts[1].RetryTime))

	assert.False(t, record.Retried, "caller's record is not mutated")
}

func TestPersistGivesUpAfterOneRetry(t *testing.T) {
	repo := newFakeRepo()
	repo.dropWrites = 5

	ok := newTestPersister(repo, time.Second).Persist(context.Background(), "tok-1", pendingRecord("tok-1"))

	assert.False(t, ok)
	assert.Len(t, repo.puts, 2)
	assert.Equal(t, 2, repo.gets)
}

func TestPersistFirstWriteErrorStillRetries(t *testing.T) {
	repo := newFakeRepo()
	repo.putErrs = []error{errors.New("connection reset")}

	ok := newTestPersister(repo, time.Second).Persist(context.Background(), "tok-1", pendingRecord("tok-1"))

	require.True(t, ok)
	assert.Len(t, repo.puts, 2)
	assert.Equal(t, 2, repo.gets, "the read after a failed write still happens")
}

func TestPersistFirstReadErrorStillRetries(t *testing.T) {
	repo := newFakeRepo()
	repo.getErrs = []error{errors.New("replica timeout")}

	ok := newTestPersister(repo, time.Second).Persist(context.Background(), "tok-1", pendingRecord("tok-1"))

	require.True(t, ok)
	assert.Len(t, repo.puts, 2)
	assert.True(t, repo.puts[1].Retried)
}

func TestPersistRetryWriteErrorFails(t *testing.T) {
	repo := newFakeRepo()
	repo.dropWrites = 1
	repo.putErrs = []error{nil, errors.New("write refused")}

	ok := newTestPersister(repo, time.Second).Persist(context.Background(), "tok-1", pendingRecord("tok-1"))

	assert.False(t, ok)
	assert.Len(t, repo.puts, 2)
	assert.Equal(t, 1, repo.gets, "no read after a failed retry write")
}

func TestPersistRetryReadErrorFails(t *testing.T) {
	repo := newFakeRepo()
	repo.getErrs = []error{errors.New("down"), errors.New("still down")}

	ok := newTestPersister(repo, time.Second).Persist(context.Background(), "tok-1", pendingRecord("tok-1"))

	assert.False(t, ok)
}

func TestPersistBoundedByStoreTimeout(t *testing.T) {
	repo := newFakeRepo()
	repo.putHook = func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}

	start := time.Now()
	ok := newTestPersister(repo, 20*time.Millisecond).Persist(context.Background(), "tok-1", pendingRecord("tok-1"))

	assert.False(t, ok)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestNewPersisterDefaultsTimeout(t *testing.T) {
	p := NewPersister(newFakeRepo(), 0, logger.Nop())
	assert.Equal(t, DefaultStoreTimeout, p.timeout)
}
