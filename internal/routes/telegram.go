package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/sellers-pro/sellers_pro/internal/telegram"
)

// RegisterTelegramRoutes wires the bot webhook when a bot is configured.
func RegisterTelegramRoutes(r fiber.Router, d Deps) {
	if d.Bot == nil {
		return
	}
	r.Post("/telegram-webhook", telegram.WebhookHandler(d.Bot, d.Cfg.TelegramWebhookSecret, d.Logger))
}
