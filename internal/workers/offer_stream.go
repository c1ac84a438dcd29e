package workers

import (
	"context"
	"errors"
	"strings"
	"time"

	apperrors "giveaway-offers-backend/internal/common/errors"
	"giveaway-offers-backend/internal/features/participation/models"
	platformredis "giveaway-offers-backend/internal/platform/redis"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	DefaultStreamKey     = "offers:completions"
	DefaultConsumerGroup = "giveaway_backend_consumers"
	DefaultConsumerName  = "giveaway_worker_1"

	defaultBlock        = 5 * time.Second
	defaultRetryPending = 30 * time.Second
)

// Verifier marks a participation as verified.
type Verifier interface {
	Verify(ctx context.Context, token, offerID string) (*models.Participation, error)
}

type OfferStreamConfig struct {
	StreamKey     string
	ConsumerGroup string
	ConsumerName  string
	// Message field holding the participation token.
	TokenField string
	Block      time.Duration
	// How often entries left unacknowledged by this consumer are read again.
	RetryPending time.Duration
}

// OfferStreamWorker consumes offer completion events published by the
// offer network bridge and verifies the matching participations.
//
// Each entry carries the participation token (under TokenField, "sub1" by
// default) and optionally an offer_id.
type OfferStreamWorker struct {
	rdb      platformredis.RedisClient
	verifier Verifier
	cfg      OfferStreamConfig
	logger   zerolog.Logger
}

func NewOfferStreamWorker(rdb platformredis.RedisClient, verifier Verifier, cfg OfferStreamConfig, logger zerolog.Logger) *OfferStreamWorker {
	if cfg.StreamKey == "" {
		cfg.StreamKey = DefaultStreamKey
	}
	if cfg.ConsumerGroup == "" {
		cfg.ConsumerGroup = DefaultConsumerGroup
	}
	if cfg.ConsumerName == "" {
		cfg.ConsumerName = DefaultConsumerName
	}
	if cfg.TokenField == "" {
		cfg.TokenField = "sub1"
	}
	if cfg.Block <= 0 {
		cfg.Block = defaultBlock
	}
	if cfg.RetryPending <= 0 {
		cfg.RetryPending = defaultRetryPending
	}
	return &OfferStreamWorker{
		rdb:      rdb,
		verifier: verifier,
		cfg:      cfg,
		logger:   logger.With().Str("stream", cfg.StreamKey).Logger(),
	}
}

// Start blocks until ctx is cancelled. Entries whose verification failed
// stay in this consumer's pending list and are read again on start and every
// RetryPending.
func (w *OfferStreamWorker) Start(ctx context.Context) {
	// "0" so completions published before the first start are not lost.
	err := w.rdb.XGroupCreateMkStream(ctx, w.cfg.StreamKey, w.cfg.ConsumerGroup, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		w.logger.Error().Err(err).Msg("Error creating consumer group")
	}

	w.logger.Info().Msg("Starting offer stream worker")

	// cursor walks the pending list; empty means reading new entries.
	cursor := "0"
	lastRetry := time.Now()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("Stopping offer stream worker")
			return
		default:
		}

		if cursor == "" && time.Since(lastRetry) >= w.cfg.RetryPending {
			cursor = "0"
		}

		start, block := ">", w.cfg.Block
		if cursor != "" {
			// history reads return immediately
			start, block = cursor, -1
		}

		entries, err := w.rdb.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    w.cfg.ConsumerGroup,
			Consumer: w.cfg.ConsumerName,
			Streams:  []string{w.cfg.StreamKey, start},
			Count:    10,
			Block:    block,
		}).Result()
		if err != nil {
			if errors.Is(err, platformredis.Nil) || ctx.Err() != nil {
				if cursor != "" {
					cursor, lastRetry = "", time.Now()
				}
				continue
			}
			w.logger.Error().Err(err).Msg("Error reading from stream")
			select {
			case <-ctx.Done():
			case <-time.After(time.Second):
			}
			continue
		}

		read := 0
		for _, stream := range entries {
			for _, msg := range stream.Messages {
				read++
				if cursor != "" {
					cursor = msg.ID
				}
				w.handle(ctx, msg)
			}
		}
		if cursor != "" && read == 0 {
			cursor, lastRetry = "", time.Now()
		}
	}
}

func (w *OfferStreamWorker) handle(ctx context.Context, msg redis.XMessage) {
	if !w.processMessage(ctx, msg.ID, msg.Values) {
		return
	}
	if err := w.rdb.XAck(ctx, w.cfg.StreamKey, w.cfg.ConsumerGroup, msg.ID).Err(); err != nil {
		w.logger.Warn().Err(err).Str("message_id", msg.ID).Msg("Failed to ack message")
	}
}

// processMessage reports whether the message should be acknowledged. Store
// failures leave the message pending until the next pending pass.
func (w *OfferStreamWorker) processMessage(ctx context.Context, id string, values map[string]interface{}) bool {
	log := w.logger.With().Str("message_id", id).Logger()

	token, _ := values[w.cfg.TokenField].(string)
	if strings.TrimSpace(token) == "" {
		log.Warn().Interface("values", values).Msg("Completion event without token")
		return true
	}
	offerID, _ := values["offer_id"].(string)

	p, err := w.verifier.Verify(ctx, token, offerID)
	switch {
	case err == nil:
		log.Info().Str("token", p.Token).Str("status", string(p.Status)).Msg("Completion processed")
		return true
	case apperrors.HasCode(err, apperrors.ErrCodeNotFound), apperrors.HasCode(err, apperrors.ErrCodeValidation):
		log.Warn().Err(err).Str("token", token).Msg("Completion for unknown participation")
		return true
	default:
		log.Error().Err(err).Str("token", token).Msg("Failed to verify participation")
		return false
	}
}
