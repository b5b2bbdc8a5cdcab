package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/societyhq/societyd/internal/middleware"
	"github.com/societyhq/societyd/internal/models"
	"github.com/societyhq/societyd/internal/service"
)

type residentRequest struct {
	FlatNo        string `json:"flatNo"`
	OwnerName     string `json:"ownerName"`
	OwnerContact  string `json:"ownerContact"`
	Type          string `json:"type"`
	TenantName    string `json:"tenantName"`
	TenantContact string `json:"tenantContact"`
}

func (r residentRequest) toInput() service.ResidentInput {
	return service.ResidentInput{
		FlatNo:        r.FlatNo,
		OwnerName:     r.OwnerName,
		OwnerContact:  r.OwnerContact,
		Type:          models.OccupancyType(r.Type),
		TenantName:    r.TenantName,
		TenantContact: r.TenantContact,
	}
}

type residentResponse struct {
	ID            string            `json:"id"`
	FlatNo        string            `json:"flatNo"`
	OwnerName     string            `json:"ownerName"`
	OwnerContact  string            `json:"ownerContact"`
	Type          string            `json:"type"`
	TenantName    string            `json:"tenantName,omitempty"`
	TenantContact string            `json:"tenantContact,omitempty"`
	Maintenance   map[string]string `json:"maintenance"`
}

func toResidentResponse(r *models.Resident) residentResponse {
	maintenance := make(map[string]string, len(r.Maintenance))
	for month, status := range r.Maintenance {
		maintenance[string(month)] = status.String()
	}
	return residentResponse{
		ID:            r.ID,
		FlatNo:        r.FlatNo,
		OwnerName:     r.OwnerName,
		OwnerContact:  r.OwnerContact,
		Type:          string(r.Type),
		TenantName:    r.TenantName,
		TenantContact: r.TenantContact,
		Maintenance:   maintenance,
	}
}

// CreateResidentHandler registers a new resident.
func (s *Server) CreateResidentHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req residentRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "invalid request body: "+err.Error())
		}

		resident, err := s.Residents.Create(c.Context(), middleware.SocietyID(c), req.toInput())
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(toResidentResponse(resident))
	}
}

// GetResidentHandler returns one resident with full dues history.
func (s *Server) GetResidentHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		resident, err := s.Residents.Get(c.Context(), middleware.SocietyID(c), c.Params("id"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(toResidentResponse(resident))
	}
}

// ListResidentsHandler returns the residents sorted by flat number.
func (s *Server) ListResidentsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		residents, err := s.Residents.List(c.Context(), middleware.SocietyID(c))
		if err != nil {
			return fail(c, err)
		}
		out := make([]residentResponse, 0, len(residents))
		for _, r := range residents {
			out = append(out, toResidentResponse(r))
		}
		return c.JSON(out)
	}
}

// UpdateResidentHandler rewrites a resident's registry fields.
func (s *Server) UpdateResidentHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req residentRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "invalid request body: "+err.Error())
		}

		resident, err := s.Residents.Update(c.Context(), middleware.SocietyID(c), c.Params("id"), req.toInput())
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(toResidentResponse(resident))
	}
}

// DeleteResidentHandler removes a resident. Their ledger entries are kept.
func (s *Server) DeleteResidentHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := s.Residents.Delete(c.Context(), middleware.SocietyID(c), c.Params("id")); err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"deleted": true})
	}
}
