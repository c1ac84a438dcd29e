package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	initdata "github.com/telegram-mini-apps/init-data-golang"

	"giveaway-offers-backend/internal/common/errors"
)

const (
	TelegramInitDataHeader = "X-Telegram-Init-Data"

	telegramUserKey  = "user"
	participantIDKey = "participant_id"
)

// TelegramInitData validates Telegram Mini App init data and stores the
// user and their participant ID in the context. Init data is read from the
// X-Telegram-Init-Data header, then from the legacy init_data header.
func TelegramInitData(botToken string, expIn time.Duration, logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if botToken == "" {
			RespondError(c, errors.New(errors.ErrCodeInternal, "Server configuration error"), logger)
			c.Abort()
			return
		}

		raw := c.GetHeader(TelegramInitDataHeader)
		if raw == "" {
			raw = c.GetHeader("init_data")
		}
		if raw == "" {
			RespondError(c, errors.NewUnauthorizedError("Telegram Init Data required"), logger)
			c.Abort()
			return
		}

		if err := initdata.Validate(raw, botToken, expIn); err != nil {
			logger.Debug().Err(err).Msg("Init data validation failed")
			RespondError(c, errors.NewUnauthorizedError("invalid init data"), logger)
			c.Abort()
			return
		}

		parsed, err := initdata.Parse(raw)
		if err != nil {
			RespondError(c, errors.New(errors.ErrCodeBadRequest, "invalid init data format"), logger)
			c.Abort()
			return
		}
		if parsed.User.ID == 0 {
			RespondError(c, errors.NewUnauthorizedError("init data carries no user"), logger)
			c.Abort()
			return
		}

		c.Set(telegramUserKey, parsed.User)
		c.Set(participantIDKey, strconv.FormatInt(parsed.User.ID, 10))
		c.Next()
	}
}

// TelegramUser returns the user stored by TelegramInitData.
func TelegramUser(c *gin.Context) (initdata.User, bool) {
	v, ok := c.Get(telegramUserKey)
	if !ok {
		return initdata.User{}, false
	}
	user, ok := v.(initdata.User)
	return user, ok
}

// ParticipantID returns the participant ID derived from authenticated
// context, if any middleware set one.
func ParticipantID(c *gin.Context) (string, bool) {
	v, ok := c.Get(participantIDKey)
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}
