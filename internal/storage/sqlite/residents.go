package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/societyhq/societyd/internal/models"
	"github.com/societyhq/societyd/internal/storage"
)

// CreateResident persists a new resident together with any seeded
// maintenance statuses.
func (s *SQLiteStore) CreateResident(ctx context.Context, resident *models.Resident) error {
	if resident.ID == "" {
		resident.ID = uuid.New().String()
	}
	if resident.CreatedAt == 0 {
		resident.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO residents (id, society_id, flat_no, owner_name, owner_contact, occupancy_type,
		  tenant_name, tenant_contact, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		resident.ID, resident.SocietyID, resident.FlatNo, resident.OwnerName, resident.OwnerContact,
		string(resident.Type), nullable(resident.TenantName), nullable(resident.TenantContact),
		resident.CreatedAt, resident.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert resident: %w", err)
	}

	for month, status := range resident.Maintenance {
		if status == models.StatusUnrecorded {
			continue
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO maintenance_statuses (society_id, resident_id, month_key, status)
			 VALUES (?, ?, ?, ?)`,
			resident.SocietyID, resident.ID, month.String(), status.String(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert maintenance status: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetResident retrieves a resident with its maintenance status map.
func (s *SQLiteStore) GetResident(ctx context.Context, societyID, residentID string) (*models.Resident, error) {
	resident := &models.Resident{SocietyID: societyID}
	var typeStr string
	var tenantName, tenantContact sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT id, flat_no, owner_name, owner_contact, occupancy_type, tenant_name, tenant_contact,
		  created_at, updated_at
		 FROM residents WHERE society_id = ? AND id = ?`,
		societyID, residentID,
	).Scan(&resident.ID, &resident.FlatNo, &resident.OwnerName, &resident.OwnerContact,
		&typeStr, &tenantName, &tenantContact, &resident.CreatedAt, &resident.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("resident %s: %w", residentID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get resident: %w", err)
	}

	resident.Type = models.OccupancyType(typeStr)
	resident.TenantName = tenantName.String
	resident.TenantContact = tenantContact.String

	if err := s.loadMaintenance(ctx, societyID, resident); err != nil {
		return nil, err
	}
	return resident, nil
}

// ListResidents returns a society's residents sorted by flat number.
// Ordering uses the alpha-prefix-then-numeric-suffix comparator, which SQL
// cannot express directly, so rows are sorted after scanning.
func (s *SQLiteStore) ListResidents(ctx context.Context, societyID string) ([]*models.Resident, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, flat_no, owner_name, owner_contact, occupancy_type, tenant_name, tenant_contact,
		  created_at, updated_at
		 FROM residents WHERE society_id = ?`,
		societyID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list residents: %w", err)
	}
	defer rows.Close()

	var residents []*models.Resident
	for rows.Next() {
		resident := &models.Resident{SocietyID: societyID}
		var typeStr string
		var tenantName, tenantContact sql.NullString
		if err := rows.Scan(&resident.ID, &resident.FlatNo, &resident.OwnerName, &resident.OwnerContact,
			&typeStr, &tenantName, &tenantContact, &resident.CreatedAt, &resident.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan resident: %w", err)
		}
		resident.Type = models.OccupancyType(typeStr)
		resident.TenantName = tenantName.String
		resident.TenantContact = tenantContact.String
		residents = append(residents, resident)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate residents: %w", err)
	}

	for _, resident := range residents {
		if err := s.loadMaintenance(ctx, societyID, resident); err != nil {
			return nil, err
		}
	}

	sort.Slice(residents, func(i, j int) bool {
		return models.CompareFlatNos(residents[i].FlatNo, residents[j].FlatNo) < 0
	})
	return residents, nil
}

// UpdateResident rewrites a resident's identity fields.
func (s *SQLiteStore) UpdateResident(ctx context.Context, resident *models.Resident) error {
	resident.UpdatedAt = time.Now().Unix()
	res, err := s.db.ExecContext(ctx,
		`UPDATE residents SET flat_no = ?, owner_name = ?, owner_contact = ?, occupancy_type = ?,
		  tenant_name = ?, tenant_contact = ?, updated_at = ?
		 WHERE society_id = ? AND id = ?`,
		resident.FlatNo, resident.OwnerName, resident.OwnerContact, string(resident.Type),
		nullable(resident.TenantName), nullable(resident.TenantContact), resident.UpdatedAt,
		resident.SocietyID, resident.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update resident: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("resident %s: %w", resident.ID, storage.ErrNotFound)
	}
	return nil
}

// DeleteResident removes a resident and its status rows. Ledger entries
// referencing the resident stay in place to preserve the historical ledger.
func (s *SQLiteStore) DeleteResident(ctx context.Context, societyID, residentID string) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM residents WHERE society_id = ? AND id = ?",
		societyID, residentID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete resident: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("resident %s: %w", residentID, storage.ErrNotFound)
	}
	return nil
}

// SetMaintenanceStatus writes a resident's dues status for a month.
// StatusUnrecorded removes the row, matching the absence-of-key semantics.
func (s *SQLiteStore) SetMaintenanceStatus(ctx context.Context, societyID, residentID string, month models.MonthKey, status models.MaintenanceStatus) error {
	var err error
	if status == models.StatusUnrecorded {
		_, err = s.db.ExecContext(ctx,
			`DELETE FROM maintenance_statuses
			 WHERE society_id = ? AND resident_id = ? AND month_key = ?`,
			societyID, residentID, month.String(),
		)
	} else {
		_, err = s.db.ExecContext(ctx,
			`INSERT INTO maintenance_statuses (society_id, resident_id, month_key, status)
			 VALUES (?, ?, ?, ?)
			 ON CONFLICT (society_id, resident_id, month_key) DO UPDATE SET status = excluded.status`,
			societyID, residentID, month.String(), status.String(),
		)
	}
	if err != nil {
		return fmt.Errorf("failed to set maintenance status: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		"UPDATE residents SET updated_at = ? WHERE society_id = ? AND id = ?",
		time.Now().Unix(), societyID, residentID,
	)
	if err != nil {
		return fmt.Errorf("failed to touch resident: %w", err)
	}
	return nil
}

func (s *SQLiteStore) loadMaintenance(ctx context.Context, societyID string, resident *models.Resident) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT month_key, status FROM maintenance_statuses
		 WHERE society_id = ? AND resident_id = ?`,
		societyID, resident.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to get maintenance statuses: %w", err)
	}
	defer rows.Close()

	resident.Maintenance = make(map[models.MonthKey]models.MaintenanceStatus)
	for rows.Next() {
		var monthStr, statusStr string
		if err := rows.Scan(&monthStr, &statusStr); err != nil {
			return fmt.Errorf("failed to scan maintenance status: %w", err)
		}
		status, err := models.ParseMaintenanceStatus(statusStr)
		if err != nil {
			return err
		}
		resident.Maintenance[models.MonthKey(monthStr)] = status
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate maintenance statuses: %w", err)
	}
	return nil
}

// nullable maps an empty string to NULL.
func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
