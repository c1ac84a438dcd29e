package http

import (
	"context"
	stderrors "errors"
	"net/http"
	"strings"
	"time"

	"giveaway-offers-backend/internal/common/cache"
	"giveaway-offers-backend/internal/common/errors"
	"giveaway-offers-backend/internal/common/middleware"
	"giveaway-offers-backend/internal/features/participation/models"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Submitter runs participation submissions.
type Submitter interface {
	CanSubmit(ctx context.Context, participantID, prizeID string) bool
	Submit(ctx context.Context, req models.SubmitRequest) models.SubmitResult
}

// Lifecycle moves stored participations forward and runs draws.
type Lifecycle interface {
	Verify(ctx context.Context, token, offerID string) (*models.Participation, error)
	Deliver(ctx context.Context, token, payoutAddress string) (*models.Participation, error)
	ListByPrize(ctx context.Context, prizeID string, status *models.Status) ([]*models.Participation, error)
	DrawWinners(ctx context.Context, prizeID string, count int) ([]models.Winner, error)
}

// Guards are middleware chains attached to route groups.
type Guards struct {
	Submit   []gin.HandlerFunc
	Postback []gin.HandlerFunc
	Admin    []gin.HandlerFunc
}

const (
	IdempotencyKeyHeader = "Idempotency-Key"
	defaultDrawReplayTTL = 24 * time.Hour
)

type ParticipationHandler struct {
	submitter  Submitter
	lifecycle  Lifecycle
	offerParam string
	logger     zerolog.Logger

	drawCache     cache.Cache
	drawReplayTTL time.Duration
}

func NewParticipationHandler(submitter Submitter, lifecycle Lifecycle, offerParam string, logger zerolog.Logger) *ParticipationHandler {
	if offerParam == "" {
		offerParam = "sub1"
	}
	return &ParticipationHandler{
		submitter:  submitter,
		lifecycle:  lifecycle,
		offerParam: offerParam,
		logger:     logger,
	}
}

// WithDrawCache makes draws with an Idempotency-Key header replayable: the
// same key for the same prize returns the stored winners instead of drawing
// again.
func (h *ParticipationHandler) WithDrawCache(c cache.Cache, ttl time.Duration) *ParticipationHandler {
	if ttl <= 0 {
		ttl = defaultDrawReplayTTL
	}
	h.drawCache = c
	h.drawReplayTTL = ttl
	return h
}

func (h *ParticipationHandler) RegisterRoutes(router *gin.RouterGroup, guards Guards) {
	participations := router.Group("/participations", guards.Submit...)
	{
		participations.POST("", h.submit)
		participations.GET("/can-submit", h.canSubmit)
	}

	router.GET("/postback", append(guards.Postback, h.postback)...)

	admin := router.Group("", guards.Admin...)
	{
		admin.GET("/prizes/:id/participations", h.listByPrize)
		admin.POST("/prizes/:id/draw", h.draw)
		admin.POST("/participations/:token/deliver", h.deliver)
	}
}

// @Summary Submit a participation
// @Description Registers a participant for a prize and returns the offer URL tagged with the participation token.
// @Description A second submission for the same participant and prize while the first is still running returns outcome "in_progress".
// @Tags participations
// @Accept json
// @Produce json
// @Security TelegramInitData
// @Param input body models.SubmitRequest true "Submission"
// @Success 200 {object} models.SubmitResult "Accepted or already in progress"
// @Failure 400 {object} models.SubmitResult "Invalid input"
// @Failure 503 {object} models.SubmitResult "Could not be stored"
// @Router /participations [post]
func (h *ParticipationHandler) submit(c *gin.Context) {
	var req models.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.SubmitResult{
			Outcome: models.OutcomeInvalid,
			Message: "Invalid request body",
		})
		return
	}

	if id, ok := middleware.ParticipantID(c); ok {
		req.ParticipantID = id
	}

	result := h.submitter.Submit(c.Request.Context(), req)
	c.JSON(submitStatus(result.Outcome), result)
}

func submitStatus(outcome models.Outcome) int {
	switch outcome {
	case models.OutcomeAccepted, models.OutcomeInProgress:
		return http.StatusOK
	case models.OutcomeInvalid:
		return http.StatusBadRequest
	default:
		return http.StatusServiceUnavailable
	}
}

// @Summary Check whether a submission can start
// @Description Advisory only: a true answer does not reserve the slot.
// @Tags participations
// @Produce json
// @Security TelegramInitData
// @Param participant_id query string false "Participant ID (ignored in telegram mode)"
// @Param prize_id query string true "Prize ID"
// @Success 200 {object} models.CanSubmitResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Router /participations/can-submit [get]
func (h *ParticipationHandler) canSubmit(c *gin.Context) {
	participantID := c.Query("participant_id")
	if id, ok := middleware.ParticipantID(c); ok {
		participantID = id
	}
	prizeID := c.Query("prize_id")

	if strings.TrimSpace(participantID) == "" {
		middleware.RespondError(c, errors.NewValidationError("participant_id", "participant_id is required"), h.logger)
		return
	}
	if strings.TrimSpace(prizeID) == "" {
		middleware.RespondError(c, errors.NewValidationError("prize_id", "prize_id is required"), h.logger)
		return
	}

	c.JSON(http.StatusOK, models.CanSubmitResponse{
		CanSubmit: h.submitter.CanSubmit(c.Request.Context(), participantID, prizeID),
	})
}

// @Summary Offer completion postback
// @Description Called by the offer network when a participant completes the offer. Marks the participation as verified.
// @Tags offers
// @Produce json
// @Param sub1 query string true "Participation token"
// @Param offer_id query string false "Offer ID"
// @Param secret query string false "Postback secret"
// @Success 200 {object} models.PostbackResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /postback [get]
func (h *ParticipationHandler) postback(c *gin.Context) {
	token := c.Query(h.offerParam)
	p, err := h.lifecycle.Verify(c.Request.Context(), token, c.Query("offer_id"))
	if err != nil {
		middleware.RespondError(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, models.PostbackResponse{Token: p.Token, Status: p.Status})
}

// @Summary List participations of a prize
// @Tags admin
// @Produce json
// @Security AdminKey
// @Param id path string true "Prize ID"
// @Param status query string false "Status filter" Enums(pending, verified, delivered)
// @Success 200 {object} models.ParticipationListResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Router /prizes/{id}/participations [get]
func (h *ParticipationHandler) listByPrize(c *gin.Context) {
	prizeID := c.Param("id")

	var status *models.Status
	if raw := c.Query("status"); raw != "" {
		s, err := models.ParseStatus(raw)
		if err != nil {
			middleware.RespondError(c, errors.NewValidationError("status", "status must be pending, verified or delivered"), h.logger)
			return
		}
		status = &s
	}

	items, err := h.lifecycle.ListByPrize(c.Request.Context(), prizeID, status)
	if err != nil {
		middleware.RespondError(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, models.ParticipationListResponse{
		PrizeID:        prizeID,
		Total:          len(items),
		Participations: items,
	})
}

// @Summary Mark a participation as delivered
// @Tags admin
// @Accept json
// @Produce json
// @Security AdminKey
// @Param token path string true "Participation token"
// @Param input body models.DeliverRequest false "Optional TON payout address"
// @Success 200 {object} models.Participation
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Failure 409 {object} middleware.ErrorResponse
// @Router /participations/{token}/deliver [post]
func (h *ParticipationHandler) deliver(c *gin.Context) {
	var req models.DeliverRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			middleware.RespondError(c, errors.New(errors.ErrCodeBadRequest, "Invalid request body"), h.logger)
			return
		}
	}

	p, err := h.lifecycle.Deliver(c.Request.Context(), c.Param("token"), req.PayoutAddress)
	if err != nil {
		middleware.RespondError(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, p)
}

// @Summary Draw winners for a prize
// @Description Picks winners at random among verified participations. A participant wins at most once.
// @Tags admin
// @Accept json
// @Produce json
// @Security AdminKey
// @Param id path string true "Prize ID"
// @Param Idempotency-Key header string false "Replays the stored result for a repeated key"
// @Param input body models.DrawRequest true "Number of winners"
// @Success 200 {object} models.DrawResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 422 {object} middleware.ErrorResponse
// @Router /prizes/{id}/draw [post]
func (h *ParticipationHandler) draw(c *gin.Context) {
	var req models.DrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondError(c, errors.NewValidationError("count", "count must be a positive integer"), h.logger)
		return
	}

	ctx := c.Request.Context()
	prizeID := c.Param("id")

	var replayKey string
	if key := strings.TrimSpace(c.GetHeader(IdempotencyKeyHeader)); key != "" && h.drawCache != nil {
		replayKey = "draw:" + prizeID + ":" + key

		var cached models.DrawResponse
		err := h.drawCache.Get(ctx, replayKey, &cached)
		if err == nil {
			c.Header("Idempotent-Replayed", "true")
			c.JSON(http.StatusOK, cached)
			return
		}
		if !stderrors.Is(err, cache.ErrMiss) {
			h.logger.Warn().Err(err).Str("prize_id", prizeID).Msg("Draw replay lookup failed")
		}
	}

	winners, err := h.lifecycle.DrawWinners(ctx, prizeID, req.Count)
	if err != nil {
		middleware.RespondError(c, err, h.logger)
		return
	}

	resp := models.DrawResponse{PrizeID: prizeID, Winners: winners}
	if replayKey != "" {
		if err := h.drawCache.Set(ctx, replayKey, resp, h.drawReplayTTL); err != nil {
			h.logger.Warn().Err(err).Str("prize_id", prizeID).Msg("Failed to store draw result")
		}
	}
	c.JSON(http.StatusOK, resp)
}
