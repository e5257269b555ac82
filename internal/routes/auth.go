package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/sellers-pro/sellers_pro/internal/auth"
)

// RegisterAuthRoutes wires the web login endpoints.
func RegisterAuthRoutes(r fiber.Router, h *auth.Handler) {
	group := r.Group("/auth")
	group.Post("/verify-otp", h.VerifyCode)
	group.Post("/verify-token", h.VerifyToken)
}
