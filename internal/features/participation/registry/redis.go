package registry

import (
	"context"
	"fmt"
	"time"

	"giveaway-offers-backend/internal/features/participation/models"
	platformredis "giveaway-offers-backend/internal/platform/redis"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const keyPrefixInFlight = "participation:inflight:"

// releaseScript deletes the mark only when it still carries our handle, so a
// late release never clears a mark taken after ours expired.
const releaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`

// Redis keeps in-flight marks in Redis so that several backend processes
// share them. Marks expire after ttl in case a process dies mid-submission.
type Redis struct {
	client platformredis.RedisClient
	ttl    time.Duration
	logger zerolog.Logger
}

func NewRedis(client platformredis.RedisClient, ttl time.Duration, logger zerolog.Logger) *Redis {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &Redis{client: client, ttl: ttl, logger: logger}
}

func makeInFlightKey(participantID, prizeID string) string {
	return keyPrefixInFlight + models.SubmissionKey(participantID, prizeID)
}

// CanSubmit answers true when Redis cannot be reached. It is advisory; Start
// reports the failure.
func (r *Redis) CanSubmit(ctx context.Context, participantID, prizeID string) bool {
	n, err := r.client.Exists(ctx, makeInFlightKey(participantID, prizeID)).Result()
	if err != nil {
		r.logger.Warn().Err(err).Str("participant_id", participantID).Str("prize_id", prizeID).
			Msg("Failed to check in-flight mark")
		return true
	}
	return n == 0
}

func (r *Redis) Start(ctx context.Context, participantID, prizeID string) (Handle, bool, error) {
	key := makeInFlightKey(participantID, prizeID)
	id := uuid.NewString()

	ok, err := r.client.SetNX(ctx, key, id, r.ttl).Result()
	if err != nil {
		return Handle{}, false, fmt.Errorf("acquire in-flight mark %s: %w", key, err)
	}
	if !ok {
		return Handle{}, false, nil
	}
	return Handle{key: key, id: id}, true, nil
}

// End uses its own short deadline so that a cancelled request context still
// releases the mark.
func (r *Redis) End(ctx context.Context, h Handle) {
	if h.IsZero() {
		return
	}

	releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if err := r.client.Eval(releaseCtx, releaseScript, []string{h.key}, h.id).Err(); err != nil {
		r.logger.Error().Err(err).Str("key", h.key).Msg("Failed to release in-flight mark")
	}
}
