package telegram

import (
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

const secretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"

// WebhookHandler receives Bot API updates. It answers 200 for every update it accepted,
// including ones that failed, so Telegram does not redeliver them.
func WebhookHandler(bot *Bot, secret string, logger *slog.Logger) fiber.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(c *fiber.Ctx) error {
		if secret != "" && subtle.ConstantTimeCompare([]byte(c.Get(secretTokenHeader)), []byte(secret)) != 1 {
			return fiber.NewError(http.StatusUnauthorized, "invalid webhook secret")
		}

		var update Update
		if err := json.Unmarshal(c.Body(), &update); err != nil {
			logger.Warn("malformed telegram update", slog.Any("error", err))
			return c.SendStatus(http.StatusOK)
		}

		bot.Dispatch(c.UserContext(), update)
		return c.SendStatus(http.StatusOK)
	}
}
