// Package api exposes the HTTP surface: admin auth, residents, the ledger,
// maintenance tracking, notifications, and spreadsheet import/export.
package api

import (
	"errors"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/societyhq/societyd/internal/auth"
	"github.com/societyhq/societyd/internal/middleware"
	"github.com/societyhq/societyd/internal/service"
	"github.com/societyhq/societyd/internal/sheets"
	"github.com/societyhq/societyd/internal/storage"
)

// Server bundles the services behind the HTTP routes.
type Server struct {
	Auth          *service.AuthService
	Residents     *service.ResidentService
	Transactions  *service.TransactionService
	Balances      *service.BalanceService
	Maintenance   *service.MaintenanceService
	Notifications *service.NotificationService
	Exporter      *sheets.Exporter
	Importer      *sheets.Importer
	Tokens        *auth.JWTManager
	Admins        middleware.AdminGetter
}

// RegisterRoutes wires every route onto the fiber app. Reads require a valid
// session; mutations additionally require edit access.
func (s *Server) RegisterRoutes(app *fiber.App) {
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	app.Post("/api/auth/register", s.RegisterHandler())
	app.Post("/api/auth/login", s.LoginHandler())

	authed := app.Group("/api", middleware.RequireAuth(s.Tokens))
	edit := authed.Group("", middleware.RequireEditAccess(s.Admins))

	authed.Get("/admins", s.ListAdminsHandler())
	authed.Put("/admins/:id/authorized", s.SetAuthorizedHandler())
	authed.Put("/admins/:id/edit-access", s.SetEditAccessHandler())
	authed.Put("/admins/:id/super-admin", s.SurrenderSuperAdminHandler())

	authed.Get("/residents", s.ListResidentsHandler())
	authed.Get("/residents/:id", s.GetResidentHandler())
	edit.Post("/residents", s.CreateResidentHandler())
	edit.Put("/residents/:id", s.UpdateResidentHandler())
	edit.Delete("/residents/:id", s.DeleteResidentHandler())

	authed.Get("/months/:month/transactions", s.ListTransactionsHandler())
	authed.Get("/transactions", s.ListAllTransactionsHandler())
	edit.Post("/months/:month/transactions", s.AddTransactionHandler())
	edit.Delete("/months/:month/transactions/:id", s.RemoveTransactionHandler())

	authed.Get("/balances", s.ListBalancesHandler())
	authed.Get("/balances/total", s.GetTotalBalanceHandler())
	authed.Get("/months/:month/balance", s.GetMonthlyBalanceHandler())
	edit.Post("/balances", s.UpdateBalanceHandler())

	authed.Get("/settings/payment-cycle", s.GetPaymentCycleHandler())
	edit.Put("/settings/payment-cycle", s.SetPaymentCycleHandler())
	authed.Get("/settings/maintenance-amount", s.GetMaintenanceAmountHandler())
	edit.Put("/settings/maintenance-amount", s.SetMaintenanceAmountHandler())
	edit.Post("/residents/:id/payment", s.MarkPaymentHandler())

	authed.Get("/notifications", s.ListNotificationsHandler())
	authed.Put("/notifications/:id/read", s.MarkNotificationReadHandler())
	edit.Delete("/notifications/:id", s.DeleteNotificationHandler())

	authed.Get("/export", s.ExportHandler())
	edit.Post("/import", s.ImportHandler())
}

// fail maps service errors onto HTTP statuses.
func fail(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, storage.ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, service.ErrNotAuthorized):
		status = fiber.StatusUnauthorized
	case errors.Is(err, service.ErrNotSuperAdmin):
		status = fiber.StatusForbidden
	case errors.Is(err, auth.ErrWeakPassword),
		errors.Is(err, auth.ErrEmailExists),
		errors.Is(err, service.ErrAmountNotSet),
		errors.Is(err, service.ErrUndoPastMonth),
		errors.Is(err, service.ErrNoMaintenanceTransaction),
		errors.Is(err, service.ErrReversalMismatch),
		errors.Is(err, sheets.ErrUnknownHeader):
		status = fiber.StatusBadRequest
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}
