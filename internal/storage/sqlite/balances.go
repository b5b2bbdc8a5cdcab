package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/societyhq/societyd/internal/ledger"
	"github.com/societyhq/societyd/internal/models"
	"github.com/societyhq/societyd/internal/storage"
)

// ApplyBalance folds a standalone entry into the balance aggregates.
// Both writes (global total, monthly record) happen in one SQL transaction,
// so a failure between them cannot leave the aggregates inconsistent.
func (s *SQLiteStore) ApplyBalance(ctx context.Context, societyID string, entry storage.BalanceEntry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := applyBalanceTx(ctx, tx, societyID, entry); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// applyBalanceTx performs the read-modify-write of the global total and the
// monthly record inside the caller's transaction. CreateTransaction and
// DeleteTransaction reuse it so ledger entries and their balance effects
// commit together.
func applyBalanceTx(ctx context.Context, tx *sql.Tx, societyID string, entry storage.BalanceEntry) error {
	delta := ledger.Delta(entry.Type, entry.Amount, entry.Undo)

	// Global total.
	var totalStr string
	err := tx.QueryRowContext(ctx,
		"SELECT total FROM global_balances WHERE society_id = ?", societyID,
	).Scan(&totalStr)
	switch {
	case err == sql.ErrNoRows:
		_, err = tx.ExecContext(ctx,
			"INSERT INTO global_balances (society_id, total) VALUES (?, ?)",
			societyID, delta.String(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert global balance: %w", err)
		}
	case err != nil:
		return fmt.Errorf("failed to read global balance: %w", err)
	default:
		total, err := parseDecimal(totalStr)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx,
			"UPDATE global_balances SET total = ? WHERE society_id = ?",
			total.Add(delta).String(), societyID,
		)
		if err != nil {
			return fmt.Errorf("failed to update global balance: %w", err)
		}
	}

	// Monthly record.
	month := entry.MonthKey
	if month.IsZero() {
		month = models.CurrentMonthKey()
	}

	existing, found, err := readMonthlyBalanceTx(ctx, tx, societyID, month)
	if err != nil {
		return err
	}

	if found {
		updated := ledger.Apply(existing, entry.Type, entry.Amount, entry.Undo)
		_, err = tx.ExecContext(ctx,
			`UPDATE monthly_balances SET credit = ?, debit = ?, balance = ?
			 WHERE society_id = ? AND month_key = ?`,
			updated.Credit.String(), updated.Debit.String(), updated.Balance.String(),
			societyID, month.String(),
		)
		if err != nil {
			return fmt.Errorf("failed to update monthly balance: %w", err)
		}
		return nil
	}

	// First entry of the month: capture the previous month's closing balance
	// as the carry-forward. It is never recomputed afterwards.
	prev, _, err := readMonthlyBalanceTx(ctx, tx, societyID, month.Prev())
	if err != nil {
		return err
	}
	opened := ledger.Open(month, prev.Balance, entry.Type, entry.Amount, entry.Undo)
	_, err = tx.ExecContext(ctx,
		`INSERT INTO monthly_balances (society_id, month_key, credit, debit, carry_forward, balance)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		societyID, month.String(),
		opened.Credit.String(), opened.Debit.String(),
		opened.CarryForward.String(), opened.Balance.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert monthly balance: %w", err)
	}
	return nil
}

// readMonthlyBalanceTx reads a month's record inside a transaction,
// returning the zero record and found=false when the month is untouched.
func readMonthlyBalanceTx(ctx context.Context, tx *sql.Tx, societyID string, month models.MonthKey) (models.MonthlyBalance, bool, error) {
	var creditStr, debitStr, carryStr, balanceStr string
	err := tx.QueryRowContext(ctx,
		`SELECT credit, debit, carry_forward, balance FROM monthly_balances
		 WHERE society_id = ? AND month_key = ?`,
		societyID, month.String(),
	).Scan(&creditStr, &debitStr, &carryStr, &balanceStr)
	if err == sql.ErrNoRows {
		return models.ZeroMonthlyBalance(month), false, nil
	}
	if err != nil {
		return models.MonthlyBalance{}, false, fmt.Errorf("failed to read monthly balance: %w", err)
	}
	b, err := scanMonthlyBalance(month, creditStr, debitStr, carryStr, balanceStr)
	if err != nil {
		return models.MonthlyBalance{}, false, err
	}
	return b, true, nil
}

func scanMonthlyBalance(month models.MonthKey, creditStr, debitStr, carryStr, balanceStr string) (models.MonthlyBalance, error) {
	b := models.MonthlyBalance{MonthKey: month}
	var err error
	if b.Credit, err = parseDecimal(creditStr); err != nil {
		return b, err
	}
	if b.Debit, err = parseDecimal(debitStr); err != nil {
		return b, err
	}
	if b.CarryForward, err = parseDecimal(carryStr); err != nil {
		return b, err
	}
	if b.Balance, err = parseDecimal(balanceStr); err != nil {
		return b, err
	}
	return b, nil
}

// PutMonthlyBalance overwrites a month's record with externally supplied
// aggregates. Used by spreadsheet import, where the sheet is the source of
// truth; the global total is left alone.
func (s *SQLiteStore) PutMonthlyBalance(ctx context.Context, societyID string, b models.MonthlyBalance) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO monthly_balances (society_id, month_key, credit, debit, carry_forward, balance)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (society_id, month_key) DO UPDATE SET
		   credit = excluded.credit, debit = excluded.debit,
		   carry_forward = excluded.carry_forward, balance = excluded.balance`,
		societyID, b.MonthKey.String(),
		b.Credit.String(), b.Debit.String(), b.CarryForward.String(), b.Balance.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to put monthly balance: %w", err)
	}
	return nil
}

// GetMonthlyBalance returns a month's aggregates, or the zero record when the
// month has no ledger activity. Missing months are not an error.
func (s *SQLiteStore) GetMonthlyBalance(ctx context.Context, societyID string, month models.MonthKey) (models.MonthlyBalance, error) {
	var creditStr, debitStr, carryStr, balanceStr string
	err := s.db.QueryRowContext(ctx,
		`SELECT credit, debit, carry_forward, balance FROM monthly_balances
		 WHERE society_id = ? AND month_key = ?`,
		societyID, month.String(),
	).Scan(&creditStr, &debitStr, &carryStr, &balanceStr)
	if err == sql.ErrNoRows {
		return models.ZeroMonthlyBalance(month), nil
	}
	if err != nil {
		return models.MonthlyBalance{}, fmt.Errorf("failed to get monthly balance: %w", err)
	}
	return scanMonthlyBalance(month, creditStr, debitStr, carryStr, balanceStr)
}

// ListMonthlyBalances returns all month records sorted descending by month key.
func (s *SQLiteStore) ListMonthlyBalances(ctx context.Context, societyID string) ([]models.MonthlyBalance, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT month_key, credit, debit, carry_forward, balance FROM monthly_balances
		 WHERE society_id = ? ORDER BY month_key DESC`,
		societyID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list monthly balances: %w", err)
	}
	defer rows.Close()

	var balances []models.MonthlyBalance
	for rows.Next() {
		var monthStr, creditStr, debitStr, carryStr, balanceStr string
		if err := rows.Scan(&monthStr, &creditStr, &debitStr, &carryStr, &balanceStr); err != nil {
			return nil, fmt.Errorf("failed to scan monthly balance: %w", err)
		}
		b, err := scanMonthlyBalance(models.MonthKey(monthStr), creditStr, debitStr, carryStr, balanceStr)
		if err != nil {
			return nil, err
		}
		balances = append(balances, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate monthly balances: %w", err)
	}
	return balances, nil
}

// GetGlobalBalance returns the running total, zero if never written.
func (s *SQLiteStore) GetGlobalBalance(ctx context.Context, societyID string) (models.GlobalBalance, error) {
	var totalStr string
	err := s.db.QueryRowContext(ctx,
		"SELECT total FROM global_balances WHERE society_id = ?", societyID,
	).Scan(&totalStr)
	if err == sql.ErrNoRows {
		return models.GlobalBalance{}, nil
	}
	if err != nil {
		return models.GlobalBalance{}, fmt.Errorf("failed to get global balance: %w", err)
	}
	total, err := parseDecimal(totalStr)
	if err != nil {
		return models.GlobalBalance{}, err
	}
	return models.GlobalBalance{Total: total}, nil
}
