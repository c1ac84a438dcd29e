package service

import (
	"context"
	"crypto/rand"
	"errors"
	"io"
	"strings"
	"time"

	apperrors "giveaway-offers-backend/internal/common/errors"
	"giveaway-offers-backend/internal/common/validation"
	"giveaway-offers-backend/internal/features/participation/models"
	"giveaway-offers-backend/internal/features/participation/repository"
	"giveaway-offers-backend/internal/utils/random"

	"github.com/rs/zerolog"
	"github.com/xssnick/tonutils-go/address"
)

// ParticipationService moves stored participations through their
// lifecycle and runs prize draws.
type ParticipationService struct {
	repo    repository.ParticipationRepository
	timeout time.Duration
	entropy io.Reader
	now     func() time.Time
	logger  zerolog.Logger
}

func NewParticipationService(repo repository.ParticipationRepository, timeout time.Duration, logger zerolog.Logger) *ParticipationService {
	if timeout <= 0 {
		timeout = DefaultStoreTimeout
	}
	return &ParticipationService{
		repo:    repo,
		timeout: timeout,
		entropy: rand.Reader,
		now:     time.Now,
		logger:  logger,
	}
}

func (s *ParticipationService) Get(ctx context.Context, token string) (*models.Participation, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, apperrors.NewValidationError("token", "token is required")
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	p, err := s.repo.Get(ctx, token)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NewNotFoundError("participation", token)
	}
	if err != nil {
		return nil, apperrors.NewStoreError("get participation", err)
	}
	return p, nil
}

// Verify marks a participation as verified after the offer network reported
// completion. Replays for records that are already verified or delivered
// return the stored record unchanged.
func (s *ParticipationService) Verify(ctx context.Context, token, offerID string) (*models.Participation, error) {
	p, err := s.Get(ctx, token)
	if err != nil {
		return nil, err
	}
	if p.Status != models.StatusPending {
		s.logger.Debug().Str("token", p.Token).Str("status", string(p.Status)).Msg("Verification replay ignored")
		return p, nil
	}

	now := s.now().UTC()
	p.Status = models.StatusVerified
	p.VerifiedAt = &now
	p.OfferID = strings.TrimSpace(offerID)

	if err := s.put(ctx, p); err != nil {
		return nil, err
	}
	s.logger.Info().Str("token", p.Token).Str("prize_id", p.PrizeID).Str("offer_id", p.OfferID).Msg("Participation verified")
	return p, nil
}

// Deliver records that the prize for a verified participation was handed
// out. A TON payout address is optional; when present it must parse.
func (s *ParticipationService) Deliver(ctx context.Context, token, payoutAddress string) (*models.Participation, error) {
	var normalized string
	if raw := strings.TrimSpace(payoutAddress); raw != "" {
		addr, err := address.ParseAddr(raw)
		if err != nil {
			return nil, apperrors.NewValidationError("payout_address", "payout address is not a valid TON address")
		}
		normalized = addr.String()
	}

	p, err := s.Get(ctx, token)
	if err != nil {
		return nil, err
	}
	switch p.Status {
	case models.StatusDelivered:
		return p, nil
	case models.StatusPending:
		return nil, apperrors.New(apperrors.ErrCodeInvalidTransition, "participation is not verified yet").
			WithDetail("token", p.Token).
			WithDetail("status", p.Status)
	}
	if !models.CanTransition(p.Status, models.StatusDelivered) {
		return nil, apperrors.Wrap(models.ErrInvalidTransition, apperrors.ErrCodeInvalidTransition, "participation cannot be delivered")
	}

	now := s.now().UTC()
	p.Status = models.StatusDelivered
	p.DeliveredAt = &now
	if normalized != "" {
		p.PayoutAddress = normalized
	}

	if err := s.put(ctx, p); err != nil {
		return nil, err
	}
	s.logger.Info().Str("token", p.Token).Str("prize_id", p.PrizeID).Msg("Participation delivered")
	return p, nil
}

// ListByPrize returns the prize's participations, oldest first. A nil status
// returns every record.
func (s *ParticipationService) ListByPrize(ctx context.Context, prizeID string, status *models.Status) ([]*models.Participation, error) {
	prizeID = strings.TrimSpace(prizeID)
	if prizeID == "" {
		return nil, apperrors.NewValidationError("prize_id", "prize ID is required")
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	items, err := s.repo.ListByPrize(ctx, prizeID)
	if err != nil {
		return nil, apperrors.NewStoreError("list participations", err)
	}
	if status == nil {
		return items, nil
	}

	filtered := make([]*models.Participation, 0, len(items))
	for _, p := range items {
		if p.Status == *status {
			filtered = append(filtered, p)
		}
	}
	return filtered, nil
}

// DrawWinners picks up to count winners among the verified participations of
// a prize. A participant wins at most once however many entries they have.
func (s *ParticipationService) DrawWinners(ctx context.Context, prizeID string, count int) ([]models.Winner, error) {
	if err := validation.ValidatePositiveInt(int64(count), "count"); err != nil {
		return nil, apperrors.NewValidationError("count", err.Error())
	}

	verified := models.StatusVerified
	entries, err := s.ListByPrize(ctx, prizeID, &verified)
	if err != nil {
		return nil, err
	}

	// Keep the earliest entry per participant.
	seen := make(map[string]struct{}, len(entries))
	eligible := make([]*models.Participation, 0, len(entries))
	for _, p := range entries {
		if _, ok := seen[p.ParticipantID]; ok {
			continue
		}
		seen[p.ParticipantID] = struct{}{}
		eligible = append(eligible, p)
	}
	if len(eligible) == 0 {
		return nil, apperrors.New(apperrors.ErrCodeNotEnoughEntries, "no verified participations for this prize").
			WithDetail("prize_id", prizeID)
	}

	picked, err := random.Pick(s.entropy, eligible, count)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to draw winners")
	}

	winners := make([]models.Winner, 0, len(picked))
	for i, p := range picked {
		winners = append(winners, models.Winner{
			Place:         i + 1,
			Token:         p.Token,
			ParticipantID: p.ParticipantID,
		})
	}

	s.logger.Info().
		Str("prize_id", prizeID).
		Int("requested", count).
		Int("eligible", len(eligible)).
		Int("winners", len(winners)).
		Msg("Winners drawn")
	return winners, nil
}

func (s *ParticipationService) put(ctx context.Context, p *models.Participation) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.repo.Put(ctx, p.Token, p); err != nil {
		return apperrors.NewStoreError("put participation", err)
	}
	return nil
}
