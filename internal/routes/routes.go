package routes

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/sellers-pro/sellers_pro/internal/account"
	"github.com/sellers-pro/sellers_pro/internal/auth"
	"github.com/sellers-pro/sellers_pro/internal/middleware"
)

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	if !d.Cfg.IsDev() && d.DB == nil {
		return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
	}
	if d.Auth == nil || d.Accounts == nil {
		return fmt.Errorf("routes: services are not built")
	}

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(d.Logger))

	RegisterHealthRoutes(app, d)

	api := app.Group("/api")
	RegisterAuthRoutes(api, auth.NewHandler(d.Auth, d.Logger))
	RegisterTelegramRoutes(api, d)

	accounts := account.NewHandler(d.Accounts, middleware.AccountID, d.Logger)
	RegisterLessonRoutes(api, accounts, middleware.Session(d.Auth))
	RegisterAdminRoutes(api, accounts,
		middleware.AdminToken(d.Cfg.AdminTokenHash),
		middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger),
	)
	return nil
}
