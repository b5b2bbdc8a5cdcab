// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/societyhq/societyd/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
// Implementations wrap it with a descriptive message.
var ErrNotFound = errors.New("not found")

// BalanceEntry describes one ledger effect to fold into the balance
// aggregates. Undo reverses the entry's original effect exactly.
type BalanceEntry struct {
	MonthKey models.MonthKey
	Type     models.EntryType
	Amount   decimal.Decimal
	Undo     bool
}

// Store defines the interface for society data operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL,
// etc.) without changing the service layer.
type Store interface {
	// CreateSociety persists a new society. Fails if the ID is taken.
	CreateSociety(ctx context.Context, society *models.Society) error

	// GetSociety retrieves a society by ID.
	GetSociety(ctx context.Context, societyID string) (*models.Society, error)

	// ListSocieties returns every registered society.
	ListSocieties(ctx context.Context) ([]*models.Society, error)

	// CreateAdmin persists a new admin account.
	CreateAdmin(ctx context.Context, admin *models.Admin) error

	// GetAdmin retrieves an admin by ID.
	GetAdmin(ctx context.Context, adminID string) (*models.Admin, error)

	// GetAdminByEmail retrieves an admin by email (unique across societies).
	GetAdminByEmail(ctx context.Context, email string) (*models.Admin, error)

	// ListAdmins returns a society's admins.
	ListAdmins(ctx context.Context, societyID string) ([]*models.Admin, error)

	// UpdateAdmin rewrites an admin's mutable fields and role flags.
	UpdateAdmin(ctx context.Context, admin *models.Admin) error

	// CreateResident persists a new resident, including any seeded
	// maintenance statuses.
	CreateResident(ctx context.Context, resident *models.Resident) error

	// GetResident retrieves a resident with its maintenance status map.
	GetResident(ctx context.Context, societyID, residentID string) (*models.Resident, error)

	// ListResidents returns a society's residents sorted by flat number
	// (alphabetic prefix, then numeric suffix), with status maps loaded.
	ListResidents(ctx context.Context, societyID string) ([]*models.Resident, error)

	// UpdateResident rewrites a resident's identity fields. The
	// maintenance map is managed through SetMaintenanceStatus.
	UpdateResident(ctx context.Context, resident *models.Resident) error

	// DeleteResident removes a resident. Ledger entries referencing the
	// resident are deliberately left in place.
	DeleteResident(ctx context.Context, societyID, residentID string) error

	// SetMaintenanceStatus writes a resident's dues status for a month.
	// StatusUnrecorded removes the entry.
	SetMaintenanceStatus(ctx context.Context, societyID, residentID string, month models.MonthKey, status models.MaintenanceStatus) error

	// CreateTransaction appends a ledger entry and folds its effect into
	// the monthly and global balances in a single database transaction,
	// creating the parent month record if needed. The transaction's ID
	// field is populated by the store.
	CreateTransaction(ctx context.Context, txn *models.Transaction) error

	// GetTransaction retrieves one ledger entry.
	GetTransaction(ctx context.Context, societyID string, month models.MonthKey, txnID string) (*models.Transaction, error)

	// DeleteTransaction removes a ledger entry and reverses its balance
	// effect in the same database transaction, using the type and amount
	// read from the stored row.
	DeleteTransaction(ctx context.Context, societyID string, month models.MonthKey, txnID string) error

	// ListTransactions returns a month's entries, newest first.
	ListTransactions(ctx context.Context, societyID string, month models.MonthKey) ([]*models.Transaction, error)

	// ListAllTransactions returns every entry across all months, sorted
	// descending by month key.
	ListAllTransactions(ctx context.Context, societyID string) ([]*models.Transaction, error)

	// PutTransaction inserts a ledger entry without touching the balance
	// aggregates. Used by spreadsheet import, where balances arrive in
	// their own sheet.
	PutTransaction(ctx context.Context, txn *models.Transaction) error

	// ApplyBalance folds a standalone entry into the global total and the
	// month's record atomically, seeding the month's carry-forward from
	// the previous month when it is first touched.
	ApplyBalance(ctx context.Context, societyID string, entry BalanceEntry) error

	// PutMonthlyBalance overwrites a month's record with externally
	// supplied aggregates, leaving the global total alone. Used by
	// spreadsheet import.
	PutMonthlyBalance(ctx context.Context, societyID string, b models.MonthlyBalance) error

	// GetMonthlyBalance returns a month's aggregates, or the zero-valued
	// record if the month has no ledger activity.
	GetMonthlyBalance(ctx context.Context, societyID string, month models.MonthKey) (models.MonthlyBalance, error)

	// ListMonthlyBalances returns all month records sorted descending by
	// month key.
	ListMonthlyBalances(ctx context.Context, societyID string) ([]models.MonthlyBalance, error)

	// GetGlobalBalance returns the running total, zero if never written.
	GetGlobalBalance(ctx context.Context, societyID string) (models.GlobalBalance, error)

	// SetPaymentCycle stores the billing window.
	SetPaymentCycle(ctx context.Context, societyID string, cycle models.PaymentCycle) error

	// GetPaymentCycle returns the billing window, or the default cycle
	// when none was configured.
	GetPaymentCycle(ctx context.Context, societyID string) (models.PaymentCycle, error)

	// SetMaintenanceAmount stores the monthly dues amount.
	SetMaintenanceAmount(ctx context.Context, societyID string, amount decimal.Decimal) error

	// GetMaintenanceAmount returns the dues amount; ok is false when it
	// was never configured.
	GetMaintenanceAmount(ctx context.Context, societyID string) (amount decimal.Decimal, ok bool, err error)

	// UpsertNotification writes a notification, merging over any existing
	// record with the same deterministic ID.
	UpsertNotification(ctx context.Context, n *models.Notification) error

	// DeleteNotification removes a notification. Deleting a missing
	// notification is not an error.
	DeleteNotification(ctx context.Context, societyID, notificationID string) error

	// ListNotifications returns a society's notifications, newest first.
	ListNotifications(ctx context.Context, societyID string) ([]*models.Notification, error)

	// MarkNotificationRead flips a notification's status to read.
	MarkNotificationRead(ctx context.Context, societyID, notificationID string) error

	// Close releases any resources held by the store.
	Close() error
}
