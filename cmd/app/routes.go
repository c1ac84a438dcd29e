package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "giveaway-offers-backend/docs"
	"giveaway-offers-backend/internal/common/cache"
	"giveaway-offers-backend/internal/common/config"
	"giveaway-offers-backend/internal/common/middleware"
	participationhttp "giveaway-offers-backend/internal/features/participation/delivery/http"
	"giveaway-offers-backend/internal/features/participation/models"
)

// pinger is anything /ready should check.
type pinger interface {
	Ping(ctx context.Context) error
}

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

type routerDeps struct {
	cfg       *config.Config
	submitter participationhttp.Submitter
	lifecycle participationhttp.Lifecycle
	drawCache cache.Cache
	// name -> dependency checked by /ready
	checks map[string]pinger
	logger zerolog.Logger
}

func setupRouter(d routerDeps) *gin.Engine {
	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.ErrorHandler(d.logger))
	router.Use(middleware.Logger(d.logger, "/health", "/live", "/ready"))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = d.cfg.Server.Origins
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{
		"Content-Type", "Accept",
		middleware.RequestIDHeader,
		middleware.TelegramInitDataHeader, "init_data",
		middleware.AdminKeyHeader,
		participationhttp.IdempotencyKeyHeader,
	}
	corsConfig.ExposeHeaders = []string{middleware.RequestIDHeader}
	router.Use(cors.New(corsConfig))

	router.NoRoute(middleware.NotFound(d.logger))

	guards := participationhttp.Guards{
		Postback: []gin.HandlerFunc{middleware.RequireSecret("secret", d.cfg.Offers.PostbackSecret, d.logger)},
		Admin:    []gin.HandlerFunc{middleware.RequireAdminKey(d.cfg.Admin.APIKey, d.logger)},
	}
	if models.Mode(d.cfg.Participation.Mode) == models.ModeTelegram {
		guards.Submit = []gin.HandlerFunc{
			middleware.TelegramInitData(d.cfg.Telegram.BotToken, d.cfg.Telegram.InitDataTTL, d.logger),
		}
	}

	handler := participationhttp.NewParticipationHandler(d.submitter, d.lifecycle, d.cfg.Participation.OfferParam, d.logger)
	if d.drawCache != nil {
		handler.WithDrawCache(d.drawCache, d.cfg.Admin.DrawReplayTTL)
	}

	v1 := router.Group("/api/v1")
	handler.RegisterRoutes(v1, guards)

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC(),
			"service":   d.cfg.ServiceName,
		})
	})

	router.GET("/live", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	router.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		for name, check := range d.checks {
			if err := check.Ping(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"status":  "unready",
					"error":   name + " unavailable",
					"details": err.Error(),
				})
				return
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "ready",
			"timestamp": time.Now().UTC(),
			"service":   d.cfg.ServiceName,
		})
	})

	return router
}
