package account

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
)

const (
	defaultListLimit = 100
	maxListLimit     = 500
)

// Handler exposes the admin panel and lesson progress endpoints.
type Handler struct {
	svc       *Service
	accountID func(*fiber.Ctx) string
	logger    *slog.Logger
}

// NewHandler builds the account handler. accountID extracts the authenticated account
// from the request; it is set by the session middleware.
func NewHandler(svc *Service, accountID func(*fiber.Ctx) string, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{svc: svc, accountID: accountID, logger: logger}
}

// ListUsers returns the newest accounts.
func (h *Handler) ListUsers(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", defaultListLimit)
	if limit <= 0 || limit > maxListLimit {
		limit = defaultListLimit
	}
	accounts, err := h.svc.List(c.UserContext(), limit)
	if err != nil {
		return h.internal("list accounts", err)
	}
	users := make([]View, 0, len(accounts))
	for _, a := range accounts {
		users = append(users, NewView(a))
	}
	return c.JSON(fiber.Map{"success": true, "users": users})
}

// Stats returns the dashboard counters.
func (h *Handler) Stats(c *fiber.Ctx) error {
	stats, err := h.svc.Stats(c.UserContext())
	if err != nil {
		return h.internal("account stats", err)
	}
	return c.JSON(fiber.Map{"success": true, "stats": fiber.Map{
		"totalUsers":          stats.TotalAccounts,
		"activeSubscriptions": stats.ActiveSubscriptions,
		"completedLessons":    stats.CompletedLessons,
		"todayUsers":          stats.CreatedSince,
	}})
}

type addUserRequest struct {
	PhoneNumber string `json:"phoneNumber"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	TelegramID  string `json:"telegramId"`
	Duration    int    `json:"duration"`
}

// AddUser whitelists a learner with a pre-activated premium subscription.
func (h *Handler) AddUser(c *fiber.Ctx) error {
	var req addUserRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "Noto'g'ri so'rov")
	}
	created, err := h.svc.Provision(c.UserContext(), ProvisionInput{
		PhoneNumber:  req.PhoneNumber,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		ChannelID:    req.TelegramID,
		DurationDays: req.Duration,
	})
	switch {
	case errors.Is(err, ErrInvalidInput):
		return fiber.NewError(http.StatusBadRequest, "Telefon raqam va ism majburiy")
	case errors.Is(err, ErrAlreadyExists):
		return fiber.NewError(http.StatusConflict, "Bu foydalanuvchi allaqachon mavjud")
	case err != nil:
		return h.internal("provision account", err)
	}
	h.logger.Info("account provisioned", slog.String("account_id", created.ID), slog.Bool("placeholder", !created.Channel.Confirmed()))
	return c.Status(http.StatusCreated).JSON(fiber.Map{"success": true, "user": NewView(created)})
}

type subscriptionRequest struct {
	UserID   string `json:"userId"`
	Active   *bool  `json:"active"`
	Type     string `json:"type"`
	Duration int    `json:"duration"`
}

// UpdateSubscription grants, extends or revokes a subscription.
func (h *Handler) UpdateSubscription(c *fiber.Ctx) error {
	var req subscriptionRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "Noto'g'ri so'rov")
	}
	updated, err := h.svc.UpdateSubscription(c.UserContext(), SubscriptionUpdate{
		AccountID:    strings.TrimSpace(req.UserID),
		Active:       req.Active,
		Tier:         Tier(strings.ToLower(strings.TrimSpace(req.Type))),
		DurationDays: req.Duration,
	})
	switch {
	case errors.Is(err, ErrInvalidInput):
		return fiber.NewError(http.StatusBadRequest, "Noto'g'ri so'rov")
	case errors.Is(err, ErrNotFound):
		return fiber.NewError(http.StatusNotFound, "Foydalanuvchi topilmadi")
	case err != nil:
		return h.internal("update subscription", err)
	}
	return c.JSON(fiber.Map{"success": true, "user": NewView(updated)})
}

// Progress returns the authenticated learner's lesson progress.
func (h *Handler) Progress(c *fiber.Ctx) error {
	id := h.accountID(c)
	if id == "" {
		return c.SendStatus(http.StatusUnauthorized)
	}
	progress, err := h.svc.Progress(c.UserContext(), id)
	if errors.Is(err, ErrNotFound) {
		return fiber.NewError(http.StatusNotFound, "Foydalanuvchi topilmadi")
	}
	if err != nil {
		return h.internal("load progress", err)
	}
	return c.JSON(fiber.Map{"success": true, "progress": NewProgressViews(progress)})
}

// CompleteLesson marks the lesson in the path as completed.
func (h *Handler) CompleteLesson(c *fiber.Ctx) error {
	id := h.accountID(c)
	if id == "" {
		return c.SendStatus(http.StatusUnauthorized)
	}
	lessonID, err := c.ParamsInt("lessonId")
	if err != nil || lessonID <= 0 {
		return fiber.NewError(http.StatusBadRequest, "Noto'g'ri dars raqami")
	}
	progress, err := h.svc.CompleteLesson(c.UserContext(), id, lessonID)
	switch {
	case errors.Is(err, ErrNotFound):
		return fiber.NewError(http.StatusNotFound, "Foydalanuvchi topilmadi")
	case err != nil:
		return h.internal("complete lesson", err)
	}
	return c.JSON(fiber.Map{"success": true, "progress": NewProgressViews(progress)})
}

func (h *Handler) internal(op string, err error) error {
	h.logger.Error(op, slog.Any("error", err))
	return fiber.NewError(http.StatusInternalServerError, "Server xatosi")
}
