package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/societyhq/societyd/internal/models"
	"github.com/societyhq/societyd/internal/storage"
)

// BalanceService reads and adjusts the society's monthly and global balances.
type BalanceService struct {
	store storage.Store
}

// NewBalanceService creates a new BalanceService with the given storage backend.
func NewBalanceService(store storage.Store) *BalanceService {
	return &BalanceService{store: store}
}

// Update applies a standalone balance adjustment (one not tied to a ledger
// entry, such as seeding an opening balance). The global total and the
// month's record move together.
func (s *BalanceService) Update(ctx context.Context, societyID string, entry storage.BalanceEntry) error {
	if _, err := models.ParseEntryType(string(entry.Type)); err != nil {
		return err
	}
	if entry.Amount.IsNegative() {
		return fmt.Errorf("balance adjustment amount must not be negative, got %s", entry.Amount)
	}

	if err := s.store.ApplyBalance(ctx, societyID, entry); err != nil {
		slog.Error("Balance update failed", "society_id", societyID, "month_key", entry.MonthKey, "error", err)
		return err
	}
	slog.Info("Balance updated",
		"society_id", societyID,
		"month_key", entry.MonthKey,
		"type", entry.Type,
		"amount", entry.Amount,
		"undo", entry.Undo,
	)
	return nil
}

// GetMonthly returns a month's balance record. Months with no activity
// report zeroes.
func (s *BalanceService) GetMonthly(ctx context.Context, societyID string, month models.MonthKey) (models.MonthlyBalance, error) {
	return s.store.GetMonthlyBalance(ctx, societyID, month)
}

// ListMonthly returns all recorded monthly balances, newest month first.
func (s *BalanceService) ListMonthly(ctx context.Context, societyID string) ([]models.MonthlyBalance, error) {
	return s.store.ListMonthlyBalances(ctx, societyID)
}

// GetTotal returns the society's running global balance.
func (s *BalanceService) GetTotal(ctx context.Context, societyID string) (decimal.Decimal, error) {
	gb, err := s.store.GetGlobalBalance(ctx, societyID)
	if err != nil {
		return decimal.Zero, err
	}
	return gb.Total, nil
}
