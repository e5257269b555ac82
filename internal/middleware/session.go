package middleware

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/sellers-pro/sellers_pro/internal/auth"
)

const (
	accountIDKey = "account_id"
	hasAccessKey = "has_access"
)

// Session verifies the bearer session token and stores the account id in Locals.
func Session(svc *auth.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := auth.BearerToken(c)
		if token == "" {
			return fiber.NewError(http.StatusUnauthorized, "Token topilmadi")
		}
		view, err := svc.VerifySession(c.UserContext(), token)
		switch {
		case errors.Is(err, auth.ErrInvalidCredential), errors.Is(err, auth.ErrAccountNotFound):
			return fiber.NewError(http.StatusUnauthorized, "Yaroqsiz token")
		case err != nil:
			return err
		}

		c.Locals(accountIDKey, view.Account.ID)
		c.Locals(hasAccessKey, view.HasAccess)
		return c.Next()
	}
}

// AccountID returns the account id stored by Session, or "".
func AccountID(c *fiber.Ctx) string {
	id, _ := c.Locals(accountIDKey).(string)
	return id
}

// HasAccess reports the subscription access computed by Session.
func HasAccess(c *fiber.Ctx) bool {
	ok, _ := c.Locals(hasAccessKey).(bool)
	return ok
}
