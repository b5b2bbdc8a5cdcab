package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/societyhq/societyd/internal/models"
	"github.com/societyhq/societyd/internal/storage"
)

// CreateSociety persists a new society.
func (s *SQLiteStore) CreateSociety(ctx context.Context, society *models.Society) error {
	if society.CreatedAt == 0 {
		society.CreatedAt = time.Now().Unix()
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO societies (id, name, created_at) VALUES (?, ?, ?)",
		society.ID, society.Name, society.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert society: %w", err)
	}
	return nil
}

// GetSociety retrieves a society by ID.
func (s *SQLiteStore) GetSociety(ctx context.Context, societyID string) (*models.Society, error) {
	society := &models.Society{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, created_at FROM societies WHERE id = ?", societyID,
	).Scan(&society.ID, &society.Name, &society.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("society %s: %w", societyID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get society: %w", err)
	}
	return society, nil
}

// ListSocieties returns every registered society.
func (s *SQLiteStore) ListSocieties(ctx context.Context) ([]*models.Society, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, created_at FROM societies ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to list societies: %w", err)
	}
	defer rows.Close()

	var societies []*models.Society
	for rows.Next() {
		society := &models.Society{}
		if err := rows.Scan(&society.ID, &society.Name, &society.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan society: %w", err)
		}
		societies = append(societies, society)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate societies: %w", err)
	}
	return societies, nil
}

// SetPaymentCycle stores the billing window.
func (s *SQLiteStore) SetPaymentCycle(ctx context.Context, societyID string, cycle models.PaymentCycle) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO society_settings (society_id, cycle_start_day, cycle_end_day)
		 VALUES (?, ?, ?)
		 ON CONFLICT (society_id) DO UPDATE SET
		   cycle_start_day = excluded.cycle_start_day,
		   cycle_end_day = excluded.cycle_end_day`,
		societyID, cycle.StartDay, cycle.EndDay,
	)
	if err != nil {
		return fmt.Errorf("failed to set payment cycle: %w", err)
	}
	return nil
}

// GetPaymentCycle returns the billing window, defaulting to 1-10 when the
// society never configured one.
func (s *SQLiteStore) GetPaymentCycle(ctx context.Context, societyID string) (models.PaymentCycle, error) {
	var startDay, endDay sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		"SELECT cycle_start_day, cycle_end_day FROM society_settings WHERE society_id = ?",
		societyID,
	).Scan(&startDay, &endDay)
	if err == sql.ErrNoRows || (err == nil && (!startDay.Valid || !endDay.Valid)) {
		return models.DefaultPaymentCycle, nil
	}
	if err != nil {
		return models.PaymentCycle{}, fmt.Errorf("failed to get payment cycle: %w", err)
	}
	return models.PaymentCycle{StartDay: int(startDay.Int64), EndDay: int(endDay.Int64)}, nil
}

// SetMaintenanceAmount stores the monthly dues amount.
func (s *SQLiteStore) SetMaintenanceAmount(ctx context.Context, societyID string, amount decimal.Decimal) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO society_settings (society_id, maintenance_amount)
		 VALUES (?, ?)
		 ON CONFLICT (society_id) DO UPDATE SET maintenance_amount = excluded.maintenance_amount`,
		societyID, amount.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to set maintenance amount: %w", err)
	}
	return nil
}

// GetMaintenanceAmount returns the dues amount; ok is false when unset.
func (s *SQLiteStore) GetMaintenanceAmount(ctx context.Context, societyID string) (decimal.Decimal, bool, error) {
	var amountStr sql.NullString
	err := s.db.QueryRowContext(ctx,
		"SELECT maintenance_amount FROM society_settings WHERE society_id = ?",
		societyID,
	).Scan(&amountStr)
	if err == sql.ErrNoRows || (err == nil && !amountStr.Valid) {
		return decimal.Zero, false, nil
	}
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("failed to get maintenance amount: %w", err)
	}
	amount, err := parseDecimal(amountStr.String)
	if err != nil {
		return decimal.Zero, false, err
	}
	return amount, true, nil
}
