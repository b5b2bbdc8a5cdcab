package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/societyhq/societyd/internal/middleware"
	"github.com/societyhq/societyd/internal/models"
)

type paymentCycleRequest struct {
	StartDay int `json:"startDay"`
	EndDay   int `json:"endDay"`
}

// GetPaymentCycleHandler returns the billing window.
func (s *Server) GetPaymentCycleHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		cycle, err := s.Maintenance.GetCycle(c.Context(), middleware.SocietyID(c))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"startDay": cycle.StartDay, "endDay": cycle.EndDay})
	}
}

// SetPaymentCycleHandler configures the billing window.
func (s *Server) SetPaymentCycleHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req paymentCycleRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "invalid request body: "+err.Error())
		}
		cycle := models.PaymentCycle{StartDay: req.StartDay, EndDay: req.EndDay}
		if err := s.Maintenance.SetCycle(c.Context(), middleware.SocietyID(c), cycle); err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"updated": true})
	}
}

// GetMaintenanceAmountHandler returns the monthly dues amount, null when the
// society never configured one.
func (s *Server) GetMaintenanceAmountHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		amount, ok, err := s.Maintenance.GetAmount(c.Context(), middleware.SocietyID(c))
		if err != nil {
			return fail(c, err)
		}
		if !ok {
			return c.JSON(fiber.Map{"amount": nil})
		}
		return c.JSON(fiber.Map{"amount": amount.String()})
	}
}

// SetMaintenanceAmountHandler configures the monthly dues amount.
func (s *Server) SetMaintenanceAmountHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req struct {
			Amount string `json:"amount"`
		}
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "invalid request body: "+err.Error())
		}
		amount, err := decimal.NewFromString(req.Amount)
		if err != nil {
			return badRequest(c, "invalid amount: "+req.Amount)
		}
		if err := s.Maintenance.SetAmount(c.Context(), middleware.SocietyID(c), amount); err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"updated": true})
	}
}

type markPaymentRequest struct {
	Action   string `json:"action"`
	MonthKey string `json:"monthKey"`
}

// MarkPaymentHandler records or undoes a resident's maintenance payment.
// An empty monthKey means the current month.
func (s *Server) MarkPaymentHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req markPaymentRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "invalid request body: "+err.Error())
		}

		var month models.MonthKey
		if req.MonthKey != "" {
			var err error
			month, err = models.ParseMonthKey(req.MonthKey)
			if err != nil {
				return badRequest(c, err.Error())
			}
		}

		err := s.Maintenance.MarkPayment(c.Context(), middleware.SocietyID(c), c.Params("id"), req.Action, month)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"updated": true})
	}
}

type notificationResponse struct {
	ID         string `json:"id"`
	ResidentID string `json:"residentId"`
	MonthKey   string `json:"monthKey"`
	FlatNo     string `json:"flatNo"`
	Message    string `json:"message"`
	Status     string `json:"status"`
	CreatedAt  int64  `json:"createdAt"`
}

// ListNotificationsHandler returns the society's notifications, newest first.
func (s *Server) ListNotificationsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		notifications, err := s.Notifications.List(c.Context(), middleware.SocietyID(c))
		if err != nil {
			return fail(c, err)
		}
		out := make([]notificationResponse, 0, len(notifications))
		for _, n := range notifications {
			out = append(out, notificationResponse{
				ID:         n.ID,
				ResidentID: n.ResidentID,
				MonthKey:   string(n.MonthKey),
				FlatNo:     n.FlatNo,
				Message:    n.Message,
				Status:     n.Status,
				CreatedAt:  n.CreatedAt,
			})
		}
		return c.JSON(out)
	}
}

// MarkNotificationReadHandler flips a notification to read.
func (s *Server) MarkNotificationReadHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := s.Notifications.MarkRead(c.Context(), middleware.SocietyID(c), c.Params("id")); err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"updated": true})
	}
}

// DeleteNotificationHandler removes a notification.
func (s *Server) DeleteNotificationHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := s.Notifications.Delete(c.Context(), middleware.SocietyID(c), c.Params("id")); err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"deleted": true})
	}
}
