package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/societyhq/societyd/internal/models"
	"github.com/societyhq/societyd/internal/storage"
)

// CreateTransaction appends a ledger entry. The parent month record, the
// entry, its resident links, and the balance updates commit as one SQL
// transaction.
func (s *SQLiteStore) CreateTransaction(ctx context.Context, txn *models.Transaction) error {
	if txn.ID == "" {
		txn.ID = uuid.New().String()
	}
	if txn.CreatedAt == 0 {
		txn.CreatedAt = time.Now().Unix()
	}
	txn.IsMultipleResidents = len(txn.ResidentIDs) > 1

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// The month is a container that must exist before items are added.
	_, err = tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO transaction_months (society_id, month_key, created_at)
		 VALUES (?, ?, ?)`,
		txn.SocietyID, txn.MonthKey.String(), time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to ensure month record: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO transactions (id, society_id, month_key, entry_type, amount, description,
		  is_monthly_maintenance, is_multiple_residents, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		txn.ID, txn.SocietyID, txn.MonthKey.String(), string(txn.Type), txn.Amount.String(),
		txn.Description, txn.IsMonthlyMaintenance, txn.IsMultipleResidents,
		txn.CreatedAt, txn.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}

	for _, residentID := range txn.ResidentIDs {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO transaction_residents (transaction_id, resident_id) VALUES (?, ?)",
			txn.ID, residentID,
		)
		if err != nil {
			return fmt.Errorf("failed to insert transaction resident: %w", err)
		}
	}

	err = applyBalanceTx(ctx, tx, txn.SocietyID, storage.BalanceEntry{
		MonthKey: txn.MonthKey,
		Type:     txn.Type,
		Amount:   txn.Amount,
	})
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// PutTransaction inserts a ledger entry without touching the balance
// aggregates. Used by spreadsheet import, where the Balances sheet already
// carries the month's totals.
func (s *SQLiteStore) PutTransaction(ctx context.Context, txn *models.Transaction) error {
	if txn.ID == "" {
		txn.ID = uuid.New().String()
	}
	if txn.CreatedAt == 0 {
		txn.CreatedAt = time.Now().Unix()
	}
	txn.IsMultipleResidents = len(txn.ResidentIDs) > 1

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO transaction_months (society_id, month_key, created_at)
		 VALUES (?, ?, ?)`,
		txn.SocietyID, txn.MonthKey.String(), time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to ensure month record: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO transactions (id, society_id, month_key, entry_type, amount, description,
		  is_monthly_maintenance, is_multiple_residents, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		txn.ID, txn.SocietyID, txn.MonthKey.String(), string(txn.Type), txn.Amount.String(),
		txn.Description, txn.IsMonthlyMaintenance, txn.IsMultipleResidents,
		txn.CreatedAt, txn.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}

	for _, residentID := range txn.ResidentIDs {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO transaction_residents (transaction_id, resident_id) VALUES (?, ?)",
			txn.ID, residentID,
		)
		if err != nil {
			return fmt.Errorf("failed to insert transaction resident: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetTransaction retrieves one ledger entry with its resident links.
func (s *SQLiteStore) GetTransaction(ctx context.Context, societyID string, month models.MonthKey, txnID string) (*models.Transaction, error) {
	txn := &models.Transaction{SocietyID: societyID, MonthKey: month}
	var typeStr, amountStr string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, entry_type, amount, description, is_monthly_maintenance, is_multiple_residents,
		  created_at, updated_at
		 FROM transactions WHERE society_id = ? AND month_key = ? AND id = ?`,
		societyID, month.String(), txnID,
	).Scan(&txn.ID, &typeStr, &amountStr, &txn.Description,
		&txn.IsMonthlyMaintenance, &txn.IsMultipleResidents, &txn.CreatedAt, &txn.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("transaction %s: %w", txnID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	txn.Type = models.EntryType(typeStr)
	if txn.Amount, err = parseDecimal(amountStr); err != nil {
		return nil, err
	}
	if txn.ResidentIDs, err = s.transactionResidents(ctx, txn.ID); err != nil {
		return nil, err
	}
	return txn, nil
}

// DeleteTransaction removes a ledger entry and reverses its balance effect in
// the same SQL transaction. The reversal uses the type and amount read from
// the stored row, never caller-supplied values.
func (s *SQLiteStore) DeleteTransaction(ctx context.Context, societyID string, month models.MonthKey, txnID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var typeStr, amountStr string
	err = tx.QueryRowContext(ctx,
		"SELECT entry_type, amount FROM transactions WHERE society_id = ? AND month_key = ? AND id = ?",
		societyID, month.String(), txnID,
	).Scan(&typeStr, &amountStr)
	if err == sql.ErrNoRows {
		return fmt.Errorf("transaction %s: %w", txnID, storage.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to read transaction for deletion: %w", err)
	}
	amount, err := parseDecimal(amountStr)
	if err != nil {
		return err
	}

	if _, err = tx.ExecContext(ctx, "DELETE FROM transaction_residents WHERE transaction_id = ?", txnID); err != nil {
		return fmt.Errorf("failed to delete transaction residents: %w", err)
	}
	if _, err = tx.ExecContext(ctx, "DELETE FROM transactions WHERE id = ?", txnID); err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}

	err = applyBalanceTx(ctx, tx, societyID, storage.BalanceEntry{
		MonthKey: month,
		Type:     models.EntryType(typeStr),
		Amount:   amount,
		Undo:     true,
	})
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ListTransactions returns a month's entries, newest first.
func (s *SQLiteStore) ListTransactions(ctx context.Context, societyID string, month models.MonthKey) ([]*models.Transaction, error) {
	return s.queryTransactions(ctx,
		`SELECT id, month_key, entry_type, amount, description, is_monthly_maintenance,
		  is_multiple_residents, created_at, updated_at
		 FROM transactions WHERE society_id = ? AND month_key = ?
		 ORDER BY created_at DESC`,
		societyID, societyID, month.String(),
	)
}

// ListAllTransactions returns every entry across all months, tagged with its
// month and sorted descending by month key.
func (s *SQLiteStore) ListAllTransactions(ctx context.Context, societyID string) ([]*models.Transaction, error) {
	return s.queryTransactions(ctx,
		`SELECT id, month_key, entry_type, amount, description, is_monthly_maintenance,
		  is_multiple_residents, created_at, updated_at
		 FROM transactions WHERE society_id = ?
		 ORDER BY month_key DESC, created_at DESC`,
		societyID, societyID,
	)
}

func (s *SQLiteStore) queryTransactions(ctx context.Context, query, societyID string, args ...interface{}) ([]*models.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var txns []*models.Transaction
	for rows.Next() {
		txn := &models.Transaction{SocietyID: societyID}
		var monthStr, typeStr, amountStr string
		if err := rows.Scan(&txn.ID, &monthStr, &typeStr, &amountStr, &txn.Description,
			&txn.IsMonthlyMaintenance, &txn.IsMultipleResidents, &txn.CreatedAt, &txn.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txn.MonthKey = models.MonthKey(monthStr)
		txn.Type = models.EntryType(typeStr)
		if txn.Amount, err = parseDecimal(amountStr); err != nil {
			return nil, err
		}
		txns = append(txns, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}

	for _, txn := range txns {
		if txn.ResidentIDs, err = s.transactionResidents(ctx, txn.ID); err != nil {
			return nil, err
		}
	}
	return txns, nil
}

func (s *SQLiteStore) transactionResidents(ctx context.Context, txnID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT resident_id FROM transaction_residents WHERE transaction_id = ? ORDER BY resident_id",
		txnID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction residents: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan transaction resident: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transaction residents: %w", err)
	}
	return ids, nil
}
