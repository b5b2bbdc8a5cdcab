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

// CreateAdmin persists a new admin account.
func (s *SQLiteStore) CreateAdmin(ctx context.Context, admin *models.Admin) error {
	if admin.ID == "" {
		admin.ID = uuid.New().String()
	}
	if admin.CreatedAt == 0 {
		admin.CreatedAt = time.Now().Unix()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO admins (id, society_id, name, email, phone, flat_no, password_hash,
		  is_super_admin, is_authorized, is_edit_access, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		admin.ID, admin.SocietyID, admin.Name, admin.Email, admin.Phone, admin.FlatNo,
		admin.PasswordHash, admin.IsSuperAdmin, admin.IsAuthorizedBySuperAdmin, admin.IsEditAccess,
		admin.CreatedAt, admin.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert admin: %w", err)
	}
	return nil
}

const adminColumns = `id, society_id, name, email, phone, flat_no, password_hash,
  is_super_admin, is_authorized, is_edit_access, created_at, updated_at`

func scanAdmin(row interface{ Scan(...interface{}) error }) (*models.Admin, error) {
	admin := &models.Admin{}
	err := row.Scan(&admin.ID, &admin.SocietyID, &admin.Name, &admin.Email, &admin.Phone,
		&admin.FlatNo, &admin.PasswordHash, &admin.IsSuperAdmin, &admin.IsAuthorizedBySuperAdmin,
		&admin.IsEditAccess, &admin.CreatedAt, &admin.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return admin, nil
}

// GetAdmin retrieves an admin by ID.
func (s *SQLiteStore) GetAdmin(ctx context.Context, adminID string) (*models.Admin, error) {
	admin, err := scanAdmin(s.db.QueryRowContext(ctx,
		"SELECT "+adminColumns+" FROM admins WHERE id = ?", adminID))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("admin %s: %w", adminID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get admin: %w", err)
	}
	return admin, nil
}

// GetAdminByEmail retrieves an admin by email.
func (s *SQLiteStore) GetAdminByEmail(ctx context.Context, email string) (*models.Admin, error) {
	admin, err := scanAdmin(s.db.QueryRowContext(ctx,
		"SELECT "+adminColumns+" FROM admins WHERE email = ?", email))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("admin with email %s: %w", email, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get admin by email: %w", err)
	}
	return admin, nil
}

// ListAdmins returns a society's admins.
func (s *SQLiteStore) ListAdmins(ctx context.Context, societyID string) ([]*models.Admin, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+adminColumns+" FROM admins WHERE society_id = ? ORDER BY created_at",
		societyID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list admins: %w", err)
	}
	defer rows.Close()

	var admins []*models.Admin
	for rows.Next() {
		admin, err := scanAdmin(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan admin: %w", err)
		}
		admins = append(admins, admin)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate admins: %w", err)
	}
	return admins, nil
}

// UpdateAdmin rewrites an admin's mutable fields and role flags.
func (s *SQLiteStore) UpdateAdmin(ctx context.Context, admin *models.Admin) error {
	admin.UpdatedAt = time.Now().Unix()
	res, err := s.db.ExecContext(ctx,
		`UPDATE admins SET name = ?, phone = ?, flat_no = ?, password_hash = ?,
		  is_super_admin = ?, is_authorized = ?, is_edit_access = ?, updated_at = ?
		 WHERE id = ?`,
		admin.Name, admin.Phone, admin.FlatNo, admin.PasswordHash,
		admin.IsSuperAdmin, admin.IsAuthorizedBySuperAdmin, admin.IsEditAccess, admin.UpdatedAt,
		admin.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update admin: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("admin %s: %w", admin.ID, storage.ErrNotFound)
	}
	return nil
}
