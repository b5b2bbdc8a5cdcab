package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/societyhq/societyd/internal/middleware"
	"github.com/societyhq/societyd/internal/models"
	"github.com/societyhq/societyd/internal/service"
	"github.com/societyhq/societyd/internal/storage"
)

type transactionRequest struct {
	ResidentIDs          []string `json:"residentIds"`
	Type                 string   `json:"type"`
	Amount               string   `json:"amount"`
	Description          string   `json:"description"`
	IsMonthlyMaintenance bool     `json:"isMonthlyMaintenance"`
}

type transactionResponse struct {
	ID                   string   `json:"id"`
	MonthKey             string   `json:"monthKey"`
	Type                 string   `json:"type"`
	Amount               string   `json:"amount"`
	Description          string   `json:"description"`
	ResidentIDs          []string `json:"residentIds"`
	IsMonthlyMaintenance bool     `json:"isMonthlyMaintenance"`
	IsMultipleResidents  bool     `json:"isMultipleResidents"`
	CreatedAt            int64    `json:"createdAt"`
}

func toTransactionResponse(t *models.Transaction) transactionResponse {
	return transactionResponse{
		ID:                   t.ID,
		MonthKey:             string(t.MonthKey),
		Type:                 string(t.Type),
		Amount:               t.Amount.String(),
		Description:          t.Description,
		ResidentIDs:          t.ResidentIDs,
		IsMonthlyMaintenance: t.IsMonthlyMaintenance,
		IsMultipleResidents:  t.IsMultipleResidents,
		CreatedAt:            t.CreatedAt,
	}
}

func monthParam(c *fiber.Ctx) (models.MonthKey, error) {
	return models.ParseMonthKey(c.Params("month"))
}

// AddTransactionHandler appends a ledger entry to the month in the path.
func (s *Server) AddTransactionHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		month, err := monthParam(c)
		if err != nil {
			return badRequest(c, err.Error())
		}
		var req transactionRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "invalid request body: "+err.Error())
		}
		amount, err := decimal.NewFromString(req.Amount)
		if err != nil {
			return badRequest(c, "invalid amount: "+req.Amount)
		}
		entryType, err := models.ParseEntryType(req.Type)
		if err != nil {
			return badRequest(c, err.Error())
		}

		id, err := s.Transactions.Add(c.Context(), middleware.SocietyID(c), service.AddTransactionInput{
			ResidentIDs:          req.ResidentIDs,
			Type:                 entryType,
			Amount:               amount,
			Description:          req.Description,
			MonthKey:             month,
			IsMonthlyMaintenance: req.IsMonthlyMaintenance,
		})
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": id})
	}
}

// RemoveTransactionHandler deletes a ledger entry and reverses its balance
// effect. Optional type/amount query parameters are validated against the
// stored row before the removal proceeds.
func (s *Server) RemoveTransactionHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		month, err := monthParam(c)
		if err != nil {
			return badRequest(c, err.Error())
		}

		var claimed *service.Reversal
		if typ := c.Query("type"); typ != "" {
			entryType, err := models.ParseEntryType(typ)
			if err != nil {
				return badRequest(c, err.Error())
			}
			amount, err := decimal.NewFromString(c.Query("amount"))
			if err != nil {
				return badRequest(c, "invalid amount: "+c.Query("amount"))
			}
			claimed = &service.Reversal{Type: entryType, Amount: amount}
		}

		if err := s.Transactions.Remove(c.Context(), middleware.SocietyID(c), month, c.Params("id"), claimed); err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"deleted": true})
	}
}

// ListTransactionsHandler returns a month's entries, newest first.
func (s *Server) ListTransactionsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		month, err := monthParam(c)
		if err != nil {
			return badRequest(c, err.Error())
		}
		txns, err := s.Transactions.List(c.Context(), middleware.SocietyID(c), month)
		if err != nil {
			return fail(c, err)
		}
		out := make([]transactionResponse, 0, len(txns))
		for _, t := range txns {
			out = append(out, toTransactionResponse(t))
		}
		return c.JSON(out)
	}
}

// ListAllTransactionsHandler returns every entry across all months.
func (s *Server) ListAllTransactionsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		txns, err := s.Transactions.ListAll(c.Context(), middleware.SocietyID(c))
		if err != nil {
			return fail(c, err)
		}
		out := make([]transactionResponse, 0, len(txns))
		for _, t := range txns {
			out = append(out, toTransactionResponse(t))
		}
		return c.JSON(out)
	}
}

type balanceResponse struct {
	MonthKey     string `json:"monthKey"`
	Credit       string `json:"credit"`
	Debit        string `json:"debit"`
	CarryForward string `json:"carryForward"`
	Balance      string `json:"balance"`
}

func toBalanceResponse(b models.MonthlyBalance) balanceResponse {
	return balanceResponse{
		MonthKey:     string(b.MonthKey),
		Credit:       b.Credit.String(),
		Debit:        b.Debit.String(),
		CarryForward: b.CarryForward.String(),
		Balance:      b.Balance.String(),
	}
}

// GetMonthlyBalanceHandler returns the month's aggregates, zero when the
// month has no activity.
func (s *Server) GetMonthlyBalanceHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		month, err := monthParam(c)
		if err != nil {
			return badRequest(c, err.Error())
		}
		balance, err := s.Balances.GetMonthly(c.Context(), middleware.SocietyID(c), month)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(toBalanceResponse(balance))
	}
}

// ListBalancesHandler returns all recorded months, newest first.
func (s *Server) ListBalancesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		balances, err := s.Balances.ListMonthly(c.Context(), middleware.SocietyID(c))
		if err != nil {
			return fail(c, err)
		}
		out := make([]balanceResponse, 0, len(balances))
		for _, b := range balances {
			out = append(out, toBalanceResponse(b))
		}
		return c.JSON(out)
	}
}

// GetTotalBalanceHandler returns the society's running total.
func (s *Server) GetTotalBalanceHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		total, err := s.Balances.GetTotal(c.Context(), middleware.SocietyID(c))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"total": total.String()})
	}
}

type balanceUpdateRequest struct {
	MonthKey string `json:"monthKey"`
	Type     string `json:"type"`
	Amount   string `json:"amount"`
	Undo     bool   `json:"undo"`
}

// UpdateBalanceHandler applies a standalone balance adjustment.
func (s *Server) UpdateBalanceHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req balanceUpdateRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "invalid request body: "+err.Error())
		}
		month, err := models.ParseMonthKey(req.MonthKey)
		if err != nil {
			return badRequest(c, err.Error())
		}
		amount, err := decimal.NewFromString(req.Amount)
		if err != nil {
			return badRequest(c, "invalid amount: "+req.Amount)
		}

		err = s.Balances.Update(c.Context(), middleware.SocietyID(c), storage.BalanceEntry{
			MonthKey: month,
			Type:     models.EntryType(req.Type),
			Amount:   amount,
			Undo:     req.Undo,
		})
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"updated": true})
	}
}
