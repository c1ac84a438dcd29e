package service

import (
	"context"
	"errors"
	"time"

	"giveaway-offers-backend/internal/features/participation/models"
	"giveaway-offers-backend/internal/features/participation/repository"

	"github.com/rs/zerolog"
)

// Persister writes a participation and reads it back to confirm the write
// is visible. The store may be eventually consistent (read replicas), so a
// missing read-back triggers exactly one more write flagged as retried.
//
// Store errors never escape: the result is a plain success flag.
type Persister struct {
	repo    repository.ParticipationRepository
	timeout time.Duration
	now     func() time.Time
	logger  zerolog.Logger
}

func NewPersister(repo repository.ParticipationRepository, timeout time.Duration, logger zerolog.Logger) *Persister {
	if timeout <= 0 {
		timeout = DefaultStoreTimeout
	}
	return &Persister{
		repo:    repo,
		timeout: timeout,
		now:     time.Now,
		logger:  logger,
	}
}

// Persist returns true once the record has been observed in the store.
func (p *Persister) Persist(ctx context.Context, token string, record *models.Participation) bool {
	log := p.logger.With().Str("token", token).Str("prize_id", record.PrizeID).Logger()

	// First attempt. A write error does not stop the read: the write may
	// have landed even though the call failed.
	if err := p.write(ctx, token, record); err != nil {
		log.Warn().Err(err).Msg("Initial participation write failed")
	}
	found, err := p.exists(ctx, token)
	if err != nil {
		log.Warn().Err(err).Msg("Initial participation verification failed")
	}
	if found {
		return true
	}

	retryTime := p.now().UTC()
	retry := *record
	retry.Retried = true
	retry.RetryTime = &retryTime

	log.Info().Msg("Participation not visible after write, retrying once")

	if err := p.write(ctx, token, &retry); err != nil {
		log.Error().Err(err).Msg("Retry participation write failed")
		return false
	}
	found, err = p.exists(ctx, token)
	if err != nil {
		log.Error().Err(err).Msg("Retry participation verification failed")
		return false
	}
	if !found {
		log.Error().Msg("Participation still missing after retry")
	}
	return found
}

func (p *Persister) write(ctx context.Context, token string, record *models.Participation) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	return p.repo.Put(ctx, token, record)
}

func (p *Persister) exists(ctx context.Context, token string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	_, err := p.repo.Get(ctx, token)
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
