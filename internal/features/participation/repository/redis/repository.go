package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"giveaway-offers-backend/internal/features/participation/models"
	"giveaway-offers-backend/internal/features/participation/repository"
	platformredis "giveaway-offers-backend/internal/platform/redis"
)

const (
	keyPrefixParticipation = "participation:"
	keyPrefixPrize         = "prize:"
)

type redisRepository struct {
	client platformredis.RedisClient
}

func NewRedisParticipationRepository(client platformredis.RedisClient) repository.ParticipationRepository {
	return &redisRepository{client: client}
}

func makeParticipationKey(token string) string {
	return keyPrefixParticipation + token
}

func makePrizeParticipationsKey(prizeID string) string {
	return keyPrefixPrize + prizeID + ":participations"
}

func (r *redisRepository) Put(ctx context.Context, token string, p *models.Participation) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal participation: %w", err)
	}

	if err := r.client.Set(ctx, makeParticipationKey(token), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to write participation: %w", err)
	}
	// The index may point at a token whose document is missing; ListByPrize
	// skips those.
	if err := r.client.SAdd(ctx, makePrizeParticipationsKey(p.PrizeID), token).Err(); err != nil {
		return fmt.Errorf("failed to index participation: %w", err)
	}
	return nil
}

func (r *redisRepository) Get(ctx context.Context, token string) (*models.Participation, error) {
	data, err := r.client.Get(ctx, makeParticipationKey(token)).Bytes()
	if errors.Is(err, platformredis.Nil) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var p models.Participation
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal participation: %w", err)
	}
	return &p, nil
}

func (r *redisRepository) ListByPrize(ctx context.Context, prizeID string) ([]*models.Participation, error) {
	tokens, err := r.client.SMembers(ctx, makePrizeParticipationsKey(prizeID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list prize participations: %w", err)
	}

	items := make([]*models.Participation, 0, len(tokens))
	for _, token := range tokens {
		p, err := r.Get(ctx, token)
		if errors.Is(err, repository.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}

	repository.SortBySubmission(items)
	return items, nil
}

func (r *redisRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close is a no-op: the client is owned by main.
func (r *redisRepository) Close() error {
	return nil
}
