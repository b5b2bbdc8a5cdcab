// Package middleware provides HTTP middleware for admin authentication and
// authorization.
package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/societyhq/societyd/internal/auth"
	"github.com/societyhq/societyd/internal/models"
)

// Locals keys set by RequireAuth.
const (
	LocalAdminID   = "admin_id"
	LocalSocietyID = "society_id"
	LocalEmail     = "email"
)

// RequireAuth validates the Bearer token and stores the session claims in the
// request locals.
func RequireAuth(tokens *auth.JWTManager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if header == "" {
			return fiber.NewError(fiber.StatusUnauthorized, auth.ErrMissingToken.Error())
		}

		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "authorization header must be a Bearer token")
		}

		claims, err := tokens.Validate(tokenString)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, auth.ErrInvalidToken.Error())
		}

		c.Locals(LocalAdminID, claims.AdminID)
		c.Locals(LocalSocietyID, claims.SocietyID)
		c.Locals(LocalEmail, claims.Email)
		return c.Next()
	}
}

// AdminGetter loads an admin by ID for authorization checks.
type AdminGetter interface {
	GetAdmin(ctx context.Context, adminID string) (*models.Admin, error)
}

// RequireEditAccess blocks mutating routes for admins without edit access.
// It must run after RequireAuth.
func RequireEditAccess(admins AdminGetter) fiber.Handler {
	return func(c *fiber.Ctx) error {
		adminID, _ := c.Locals(LocalAdminID).(string)
		if adminID == "" {
			return fiber.NewError(fiber.StatusUnauthorized, auth.ErrMissingToken.Error())
		}

		admin, err := admins.GetAdmin(c.Context(), adminID)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "unknown admin")
		}
		if !admin.IsEditAccess {
			return fiber.NewError(fiber.StatusForbidden, "edit access required")
		}
		return c.Next()
	}
}

// AdminID returns the authenticated admin's ID from the request locals.
func AdminID(c *fiber.Ctx) string {
	id, _ := c.Locals(LocalAdminID).(string)
	return id
}

// SocietyID returns the authenticated admin's society from the request locals.
func SocietyID(c *fiber.Ctx) string {
	id, _ := c.Locals(LocalSocietyID).(string)
	return id
}
