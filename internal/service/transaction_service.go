package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/societyhq/societyd/internal/metrics"
	"github.com/societyhq/societyd/internal/models"
	"github.com/societyhq/societyd/internal/storage"
)

// ErrReversalMismatch is returned when a caller's claim about a transaction
// being removed disagrees with the stored row.
var ErrReversalMismatch = errors.New("claimed reversal does not match stored transaction")

// TransactionService appends and removes ledger entries. Balance effects are
// applied by the store in the same database transaction as the entry itself.
type TransactionService struct {
	store storage.Store
}

// NewTransactionService creates a new TransactionService with the given
// storage backend.
func NewTransactionService(store storage.Store) *TransactionService {
	return &TransactionService{store: store}
}

// AddTransactionInput describes a ledger entry to append.
type AddTransactionInput struct {
	ResidentIDs          []string
	Type                 models.EntryType
	Amount               decimal.Decimal
	Description          string
	MonthKey             models.MonthKey
	IsMonthlyMaintenance bool
}

// Add appends a ledger entry and returns its assigned ID. The monthly and
// global balances are updated atomically with the insert.
func (s *TransactionService) Add(ctx context.Context, societyID string, in AddTransactionInput) (string, error) {
	txn := &models.Transaction{
		SocietyID:            societyID,
		MonthKey:             in.MonthKey,
		Type:                 in.Type,
		Amount:               in.Amount,
		Description:          in.Description,
		ResidentIDs:          in.ResidentIDs,
		IsMonthlyMaintenance: in.IsMonthlyMaintenance,
	}
	if err := txn.Validate(); err != nil {
		return "", err
	}

	if err := s.store.CreateTransaction(ctx, txn); err != nil {
		slog.Error("Add transaction failed", "society_id", societyID, "month_key", in.MonthKey, "error", err)
		return "", err
	}

	metrics.TransactionsAppended.WithLabelValues(string(txn.Type)).Inc()
	slog.Info("Transaction appended",
		"society_id", societyID,
		"transaction_id", txn.ID,
		"month_key", txn.MonthKey,
		"type", txn.Type,
		"amount", txn.Amount,
	)
	return txn.ID, nil
}

// Reversal is a caller's claim about the entry being removed. The stored row
// is the ground truth; the claim is only validated against it.
type Reversal struct {
	Amount decimal.Decimal
	Type   models.EntryType
}

// Remove deletes a ledger entry and reverses its balance effect. The reversal
// always uses the persisted type and amount; if claimed is non-nil and
// disagrees with the stored row, the removal is refused.
func (s *TransactionService) Remove(ctx context.Context, societyID string, month models.MonthKey, txnID string, claimed *Reversal) error {
	txn, err := s.store.GetTransaction(ctx, societyID, month, txnID)
	if err != nil {
		return err
	}

	if claimed != nil && (claimed.Type != txn.Type || !claimed.Amount.Equal(txn.Amount)) {
		return fmt.Errorf("%w: claimed %s %s, stored %s %s",
			ErrReversalMismatch, claimed.Type, claimed.Amount, txn.Type, txn.Amount)
	}

	if err := s.store.DeleteTransaction(ctx, societyID, month, txnID); err != nil {
		slog.Error("Remove transaction failed", "society_id", societyID, "transaction_id", txnID, "error", err)
		return err
	}

	metrics.TransactionsReversed.Inc()
	slog.Info("Transaction removed",
		"society_id", societyID,
		"transaction_id", txnID,
		"month_key", month,
		"type", txn.Type,
		"amount", txn.Amount,
	)
	return nil
}

// List returns a month's entries, newest first.
func (s *TransactionService) List(ctx context.Context, societyID string, month models.MonthKey) ([]*models.Transaction, error) {
	return s.store.ListTransactions(ctx, societyID, month)
}

// ListAll returns every entry across all months, tagged with its month and
// sorted descending by month key.
func (s *TransactionService) ListAll(ctx context.Context, societyID string) ([]*models.Transaction, error) {
	return s.store.ListAllTransactions(ctx, societyID)
}
