package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/societyhq/societyd/internal/middleware"
	"github.com/societyhq/societyd/internal/models"
	"github.com/societyhq/societyd/internal/service"
)

type registerRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	Phone       string `json:"phone"`
	FlatNo      string `json:"flatNo"`
	SocietyName string `json:"societyName"`
}

type adminResponse struct {
	ID                       string `json:"id"`
	SocietyID                string `json:"societyId"`
	Name                     string `json:"name"`
	Email                    string `json:"email"`
	Phone                    string `json:"phone"`
	FlatNo                   string `json:"flatNo"`
	IsSuperAdmin             bool   `json:"isSuperAdmin"`
	IsAuthorizedBySuperAdmin bool   `json:"isAuthorizedBySuperAdmin"`
	IsEditAccess             bool   `json:"isEditAccess"`
}

func toAdminResponse(a *models.Admin) adminResponse {
	return adminResponse{
		ID:                       a.ID,
		SocietyID:                a.SocietyID,
		Name:                     a.Name,
		Email:                    a.Email,
		Phone:                    a.Phone,
		FlatNo:                   a.FlatNo,
		IsSuperAdmin:             a.IsSuperAdmin,
		IsAuthorizedBySuperAdmin: a.IsAuthorizedBySuperAdmin,
		IsEditAccess:             a.IsEditAccess,
	}
}

// RegisterHandler creates an admin account, creating the society on first
// registration.
func (s *Server) RegisterHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req registerRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "invalid request body: "+err.Error())
		}

		admin, err := s.Auth.Register(c.Context(), service.RegisterInput{
			Name:        req.Name,
			Email:       req.Email,
			Password:    req.Password,
			Phone:       req.Phone,
			FlatNo:      req.FlatNo,
			SocietyName: req.SocietyName,
		})
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(toAdminResponse(admin))
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginHandler authenticates an admin and returns a session token.
func (s *Server) LoginHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req loginRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "invalid request body: "+err.Error())
		}

		token, admin, err := s.Auth.Login(c.Context(), req.Email, req.Password)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{
			"token": token,
			"admin": toAdminResponse(admin),
		})
	}
}

// ListAdminsHandler returns the society's admins.
func (s *Server) ListAdminsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		admins, err := s.Auth.ListAdmins(c.Context(), middleware.SocietyID(c))
		if err != nil {
			return fail(c, err)
		}
		out := make([]adminResponse, 0, len(admins))
		for _, a := range admins {
			out = append(out, toAdminResponse(a))
		}
		return c.JSON(out)
	}
}

type flagRequest struct {
	Value bool `json:"value"`
}

// SetAuthorizedHandler grants or revokes another admin's sign-in approval.
func (s *Server) SetAuthorizedHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req flagRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "invalid request body: "+err.Error())
		}
		if err := s.Auth.SetAuthorized(c.Context(), middleware.AdminID(c), c.Params("id"), req.Value); err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"updated": true})
	}
}

// SetEditAccessHandler grants or revokes another admin's edit access.
func (s *Server) SetEditAccessHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req flagRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "invalid request body: "+err.Error())
		}
		if err := s.Auth.SetEditAccess(c.Context(), middleware.AdminID(c), c.Params("id"), req.Value); err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"updated": true})
	}
}

// SurrenderSuperAdminHandler transfers the super admin role to the admin in
// the path.
func (s *Server) SurrenderSuperAdminHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := s.Auth.SurrenderSuperAdmin(c.Context(), middleware.AdminID(c), c.Params("id")); err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"updated": true})
	}
}
