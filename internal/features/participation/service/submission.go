package service

import (
	"context"
	"strings"
	"time"

	"giveaway-offers-backend/internal/common/validation"
	"giveaway-offers-backend/internal/features/participation/models"
	"giveaway-offers-backend/internal/features/participation/registry"
	"giveaway-offers-backend/internal/features/participation/repository"
	"giveaway-offers-backend/internal/features/participation/token"

	"github.com/rs/zerolog"
)

const (
	messageInvalidEmail = "Please enter a valid email address"
	messageInvalidID    = "Please enter a valid ID"
	messageInvalidPrize = "Please choose a valid prize"
)

// TokenGenerator produces participation tokens.
type TokenGenerator interface {
	Generate() string
}

type SubmissionOptions struct {
	Mode         models.Mode
	OfferParam   string
	StoreTimeout time.Duration
}

// SubmissionService runs one participation submission end to end.
type SubmissionService struct {
	registry   registry.Registry
	tokens     TokenGenerator
	persister  *Persister
	navigator  Navigator
	mode       models.Mode
	offerParam string
	now        func() time.Time
	logger     zerolog.Logger
}

func NewSubmissionService(
	reg registry.Registry,
	repo repository.ParticipationRepository,
	tokens TokenGenerator,
	navigator Navigator,
	opts SubmissionOptions,
	logger zerolog.Logger,
) *SubmissionService {
	if tokens == nil {
		tokens = token.NewGenerator()
	}
	if navigator == nil {
		navigator = LoggingNavigator{Logger: logger}
	}
	if opts.Mode == "" {
		opts.Mode = models.ModeEmail
	}
	if opts.OfferParam == "" {
		opts.OfferParam = DefaultOfferParam
	}
	return &SubmissionService{
		registry:   reg,
		tokens:     tokens,
		persister:  NewPersister(repo, opts.StoreTimeout, logger),
		navigator:  navigator,
		mode:       opts.Mode,
		offerParam: opts.OfferParam,
		now:        time.Now,
		logger:     logger,
	}
}

func (s *SubmissionService) Mode() models.Mode {
	return s.mode
}

// CanSubmit is advisory only. Submit re-checks atomically.
func (s *SubmissionService) CanSubmit(ctx context.Context, participantID, prizeID string) bool {
	return s.registry.CanSubmit(ctx, strings.TrimSpace(participantID), strings.TrimSpace(prizeID))
}

// Submit validates the input, claims the in-flight mark for the
// participant/prize pair, stores a pending participation and, once the
// store confirms it, hands the tagged offer URL to the navigator.
func (s *SubmissionService) Submit(ctx context.Context, req models.SubmitRequest) (result models.SubmitResult) {
	participantID := strings.TrimSpace(req.ParticipantID)
	prizeID := strings.TrimSpace(req.PrizeID)

	if msg, ok := s.validate(participantID, prizeID); !ok {
		return models.SubmitResult{Outcome: models.OutcomeInvalid, Message: msg}
	}

	log := s.logger.With().
		Str("participant_id", participantID).
		Str("prize_id", prizeID).
		Logger()

	if !s.registry.CanSubmit(ctx, participantID, prizeID) {
		return inProgress()
	}
	handle, ok, err := s.registry.Start(ctx, participantID, prizeID)
	if err != nil {
		log.Error().Err(err).Msg("In-flight registry unavailable")
		return failed()
	}
	if !ok {
		return inProgress()
	}
	defer s.registry.End(ctx, handle)
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("Submission panicked")
			result = failed()
		}
	}()

	tok := s.tokens.Generate()
	record := &models.Participation{
		Token:         tok,
		ParticipantID: participantID,
		PrizeID:       prizeID,
		Status:        models.StatusPending,
		SubmittedAt:   s.now().UTC(),
	}

	if !s.persister.Persist(ctx, tok, record) {
		log.Error().Str("token", tok).Msg("Participation could not be persisted")
		return failed()
	}

	result = models.SubmitResult{
		OK:      true,
		Outcome: models.OutcomeAccepted,
		Message: models.MessageAccepted,
		Token:   tok,
	}

	if strings.TrimSpace(req.OfferURL) != "" {
		offerURL, err := BuildOfferURL(req.OfferURL, s.offerParam, tok)
		if err != nil {
			log.Warn().Err(err).Str("token", tok).Msg("Offer URL could not be built")
			return result
		}
		result.RedirectURL = offerURL
		s.openOffer(ctx, log, offerURL)
	}

	log.Info().Str("token", tok).Msg("Participation registered")
	return result
}

func (s *SubmissionService) openOffer(ctx context.Context, log zerolog.Logger, offerURL string) {
	defer func() {
		if r := recover(); r != nil {
			log.Warn().Interface("panic", r).Msg("Navigator panicked")
		}
	}()
	if err := s.navigator.Open(ctx, offerURL); err != nil {
		log.Warn().Err(err).Str("offer_url", offerURL).Msg("Failed to open offer")
	}
}

func (s *SubmissionService) validate(participantID, prizeID string) (string, bool) {
	switch s.mode {
	case models.ModeEmail:
		if err := validation.ValidateEmail(participantID); err != nil {
			return messageInvalidEmail, false
		}
	default:
		if err := validation.ValidateExternalID(participantID); err != nil {
			return messageInvalidID, false
		}
	}
	if err := validation.ValidatePrizeID(prizeID); err != nil {
		return messageInvalidPrize, false
	}
	return "", true
}

func inProgress() models.SubmitResult {
	return models.SubmitResult{Outcome: models.OutcomeInProgress, Message: models.MessageInProgress}
}

func failed() models.SubmitResult {
	return models.SubmitResult{Outcome: models.OutcomeFailed, Message: models.MessageFailed}
}
