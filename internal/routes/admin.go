package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/sellers-pro/sellers_pro/internal/account"
)

// RegisterAdminRoutes wires the admin panel. idempotency applies to the mutations only.
func RegisterAdminRoutes(r fiber.Router, h *account.Handler, guard, idempotency fiber.Handler) {
	group := r.Group("/admin", guard)
	group.Get("/users", h.ListUsers)
	group.Get("/stats", h.Stats)
	group.Post("/add-user", idempotency, h.AddUser)
	group.Post("/subscription", idempotency, h.UpdateSubscription)
}
