package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"giveaway-offers-backend/internal/common/config"
	"giveaway-offers-backend/internal/common/logger"
	"giveaway-offers-backend/internal/features/participation/models"
	"giveaway-offers-backend/internal/features/participation/registry"
	boltrepo "giveaway-offers-backend/internal/features/participation/repository/bolt"
	"giveaway-offers-backend/internal/features/participation/service"
)

func testConfig() *config.Config {
	cfg := &config.Config{ServiceName: "giveaway-offers-test"}
	cfg.Server.Origins = []string{"http://localhost:3000"}
	cfg.Participation.Mode = string(models.ModeEmail)
	cfg.Participation.OfferParam = "sub1"
	cfg.Participation.StoreTimeout = time.Second
	cfg.Admin.APIKey = "admin-key"
	cfg.Offers.PostbackSecret = "pb-secret"
	return cfg
}

func newTestApp(t *testing.T, cfg *config.Config, checks map[string]pinger) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := boltrepo.Open(filepath.Join(t.TempDir(), "participations.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	submissions := service.NewSubmissionService(registry.NewMemory(), store, nil, nil, service.SubmissionOptions{
		Mode:         models.Mode(cfg.Participation.Mode),
		OfferParam:   cfg.Participation.OfferParam,
		StoreTimeout: cfg.Participation.StoreTimeout,
	}, logger.Nop())
	participations := service.NewParticipationService(store, cfg.Participation.StoreTimeout, logger.Nop())

	if checks == nil {
		checks = map[string]pinger{"store": store}
	}
	return setupRouter(routerDeps{
		cfg:       cfg,
		submitter: submissions,
		lifecycle: participations,
		checks:    checks,
		logger:    logger.Nop(),
	})
}

func call(t *testing.T, r http.Handler, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestParticipationLifecycle(t *testing.T) {
	r := newTestApp(t, testConfig(), nil)
	admin := map[string]string{"X-Admin-Key": "admin-key"}

	w := call(t, r, http.MethodPost, "/api/v1/participations", models.SubmitRequest{
		ParticipantID: "user@example.com",
		PrizeID:       "prize_1",
		OfferURL:      "https://offers.example.com/go?aff=7",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var submitted models.SubmitResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &submitted))
	require.True(t, submitted.OK)
	require.NotEmpty(t, submitted.Token)
	assert.Equal(t, "https://offers.example.com/go?aff=7&sub1="+submitted.Token, submitted.RedirectURL)

	w = call(t, r, http.MethodGet, "/api/v1/postback?sub1="+submitted.Token+"&offer_id=77&secret=wrong", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = call(t, r, http.MethodGet, "/api/v1/postback?sub1="+submitted.Token+"&offer_id=77&secret=pb-secret", nil, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = call(t, r, http.MethodGet, "/api/v1/prizes/prize_1/participations?status=verified", nil, admin)
	require.Equal(t, http.StatusOK, w.Code)
	var list models.ParticipationListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Equal(t, 1, list.Total)
	assert.Equal(t, "77", list.Participations[0].OfferID)

	w = call(t, r, http.MethodPost, "/api/v1/prizes/prize_1/draw", models.DrawRequest{Count: 1}, admin)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var draw models.DrawResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &draw))
	require.Len(t, draw.Winners, 1)
	assert.Equal(t, submitted.Token, draw.Winners[0].Token)

	w = call(t, r, http.MethodPost, "/api/v1/participations/"+submitted.Token+"/deliver", nil, admin)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var delivered models.Participation
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &delivered))
	assert.Equal(t, models.StatusDelivered, delivered.Status)
}

func TestSubmitInvalidEmail(t *testing.T) {
	r := newTestApp(t, testConfig(), nil)

	w := call(t, r, http.MethodPost, "/api/v1/participations", models.SubmitRequest{
		ParticipantID: "nope",
		PrizeID:       "prize_1",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTelegramModeRequiresInitData(t *testing.T) {
	cfg := testConfig()
	cfg.Participation.Mode = string(models.ModeTelegram)
	cfg.Telegram.BotToken = "123:abc"
	cfg.Telegram.InitDataTTL = time.Hour
	r := newTestApp(t, cfg, nil)

	w := call(t, r, http.MethodPost, "/api/v1/participations", models.SubmitRequest{
		ParticipantID: "42",
		PrizeID:       "prize_1",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProbes(t *testing.T) {
	r := newTestApp(t, testConfig(), nil)

	w := call(t, r, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "giveaway-offers-test")

	w = call(t, r, http.MethodGet, "/live", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = call(t, r, http.MethodGet, "/ready", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestReadyReportsFailingDependency(t *testing.T) {
	down := pingFunc(func(context.Context) error { return errors.New("connection refused") })
	r := newTestApp(t, testConfig(), map[string]pinger{"redis": down})

	w := call(t, r, http.MethodGet, "/ready", nil, nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "redis unavailable")
}

func TestUnknownRoute(t *testing.T) {
	r := newTestApp(t, testConfig(), nil)

	w := call(t, r, http.MethodGet, "/api/v1/nothing-here", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "NOT_FOUND")
}

func TestOpenRepositoryRejectsUnknownBackend(t *testing.T) {
	cfg := testConfig()
	cfg.Store.Backend = "mongo"
	_, err := openRepository(cfg, nil)
	assert.Error(t, err)
}

func TestNewRegistry(t *testing.T) {
	cfg := testConfig()
	cfg.Participation.Registry = config.RegistryMemory
	cfg.Participation.GlobalLock = true

	reg := newRegistry(cfg, nil, logger.Nop())
	mem, ok := reg.(*registry.Memory)
	require.True(t, ok)

	ctx := context.Background()
	_, ok, _ = mem.Start(ctx, "a", "p1")
	require.True(t, ok)
	_, ok, _ = mem.Start(ctx, "b", "p2")
	assert.False(t, ok, "global lock serializes unrelated keys")
}

func TestPostbackDisabledWithoutSecret(t *testing.T) {
	cfg := testConfig()
	cfg.Offers.PostbackSecret = ""
	r := newTestApp(t, cfg, nil)

	w := call(t, r, http.MethodPost, "/api/v1/participations", models.SubmitRequest{
		ParticipantID: "user@example.com",
		PrizeID:       "prize_1",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var submitted models.SubmitResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &submitted))
	require.NotEmpty(t, submitted.Token)

	// The participant knows their own token; without a secret nobody may verify it.
	w = call(t, r, http.MethodGet, "/api/v1/postback?sub1="+submitted.Token, nil, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = call(t, r, http.MethodGet, "/api/v1/postback?sub1="+submitted.Token+"&secret=", nil, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = call(t, r, http.MethodGet, "/api/v1/prizes/prize_1/participations?status=verified", nil,
		map[string]string{"X-Admin-Key": "admin-key"})
	require.Equal(t, http.StatusOK, w.Code)
	var list models.ParticipationListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Zero(t, list.Total)
}
