package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/sellers-pro/sellers_pro/internal/account"
)

// RegisterLessonRoutes wires lesson progress behind the session middleware.
func RegisterLessonRoutes(r fiber.Router, h *account.Handler, session fiber.Handler) {
	group := r.Group("/lessons", session)
	group.Get("/progress", h.Progress)
	group.Post("/complete/:lessonId", h.CompleteLesson)
}
