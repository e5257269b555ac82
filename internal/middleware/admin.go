package middleware

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/sellers-pro/sellers_pro/internal/auth"
)

// AdminToken guards admin routes with a bearer token compared against a bcrypt hash.
// An empty hash disables every admin route.
func AdminToken(hash string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if hash == "" {
			return fiber.NewError(http.StatusForbidden, "Admin kirish o'chirilgan")
		}
		token := auth.BearerToken(c)
		if token == "" {
			return fiber.NewError(http.StatusUnauthorized, "Token topilmadi")
		}
		if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(token)); err != nil {
			return fiber.NewError(http.StatusUnauthorized, "Ruxsat yo'q")
		}
		return c.Next()
	}
}
