package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/sellers-pro/sellers_pro/internal/account"
	"github.com/sellers-pro/sellers_pro/internal/otp"
)

const (
	msgMalformedCode = "OTP 6 raqamdan iborat bo'lishi kerak"
	msgInvalidCode   = "OTP noto'g'ri yoki muddati tugagan"
	msgMissingToken  = "Token topilmadi"
	msgInvalidToken  = "Yaroqsiz token"
	msgNoAccount     = "Foydalanuvchi topilmadi"
	msgServerError   = "Server xatosi"
)

// Handler exposes the web login endpoints.
type Handler struct {
	svc    *Service
	logger *slog.Logger
}

// NewHandler builds the auth HTTP handler.
func NewHandler(svc *Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{svc: svc, logger: logger}
}

type verifyCodeRequest struct {
	OTP string `json:"otp"`
}

type verifyCodeResponse struct {
	Success   bool         `json:"success"`
	Token     string       `json:"token"`
	User      account.View `json:"user"`
	HasAccess bool         `json:"hasAccess"`
}

// VerifyCode redeems a login code and returns a session token. Every redemption failure
// gets the same answer so the response never tells which part was wrong.
func (h *Handler) VerifyCode(c *fiber.Ctx) error {
	var req verifyCodeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, msgMalformedCode)
	}
	value := strings.TrimSpace(req.OTP)
	if !otp.ValidFormat(value) {
		return fiber.NewError(http.StatusBadRequest, msgMalformedCode)
	}

	login, err := h.svc.Redeem(c.UserContext(), value)
	if err != nil {
		if errors.Is(err, ErrInvalidCode) || errors.Is(err, ErrAccountNotFound) {
			return fiber.NewError(http.StatusUnauthorized, msgInvalidCode)
		}
		h.logger.Error("redeem code", slog.Any("error", err))
		return fiber.NewError(http.StatusInternalServerError, msgServerError)
	}

	return c.Status(http.StatusOK).JSON(verifyCodeResponse{
		Success:   true,
		Token:     login.Credential.Token,
		User:      account.NewView(login.Account),
		HasAccess: login.HasAccess,
	})
}

type verifyTokenRequest struct {
	Token string `json:"token"`
}

type verifyTokenResponse struct {
	Success   bool         `json:"success"`
	HasAccess bool         `json:"hasAccess"`
	User      account.View `json:"user"`
}

// VerifyToken checks a session token from the Authorization header or the body.
func (h *Handler) VerifyToken(c *fiber.Ctx) error {
	token := BearerToken(c)
	if token == "" {
		var req verifyTokenRequest
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&req); err != nil {
				return fiber.NewError(http.StatusBadRequest, msgMissingToken)
			}
		}
		token = strings.TrimSpace(req.Token)
	}
	if token == "" {
		return fiber.NewError(http.StatusUnauthorized, msgMissingToken)
	}

	view, err := h.svc.VerifySession(c.UserContext(), token)
	switch {
	case errors.Is(err, ErrInvalidCredential):
		return fiber.NewError(http.StatusUnauthorized, msgInvalidToken)
	case errors.Is(err, ErrAccountNotFound):
		return fiber.NewError(http.StatusNotFound, msgNoAccount)
	case err != nil:
		h.logger.Error("verify session", slog.Any("error", err))
		return fiber.NewError(http.StatusInternalServerError, msgServerError)
	}

	return c.Status(http.StatusOK).JSON(verifyTokenResponse{
		Success:   true,
		HasAccess: view.HasAccess,
		User:      account.NewView(view.Account),
	})
}

// BearerToken extracts the token of an "Authorization: Bearer" header, or "".
func BearerToken(c *fiber.Ctx) string {
	authz := c.Get(fiber.HeaderAuthorization)
	if len(authz) < len("bearer ") || !strings.EqualFold(authz[:len("bearer ")], "bearer ") {
		return ""
	}
	return strings.TrimSpace(authz[len("bearer "):])
}
