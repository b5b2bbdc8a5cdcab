package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// EntryType classifies a ledger entry's direction.
type EntryType string

const (
	EntryCredit EntryType = "credit"
	EntryDebit  EntryType = "debit"

	// EntryInitial seeds a balance document without moving money. It is
	// only valid for balance updates, never for transactions.
	EntryInitial EntryType = "initial"
)

// ParseEntryType converts a stored or request-supplied entry type.
func ParseEntryType(s string) (EntryType, error) {
	switch EntryType(s) {
	case EntryCredit, EntryDebit, EntryInitial:
		return EntryType(s), nil
	}
	return "", fmt.Errorf("unknown entry type %q", s)
}

// Transaction is one credit or debit entry in a month's ledger.
// Manual entries are immutable once created; only maintenance-originated
// entries are ever deleted, via payment undo.
type Transaction struct {
	// ID is the unique identifier for the transaction (UUID format).
	ID string

	// SocietyID scopes the transaction to its society.
	SocietyID string

	// MonthKey is the billing month this entry belongs to.
	MonthKey MonthKey

	// Type is credit or debit.
	Type EntryType

	// Amount is the positive amount moved.
	Amount decimal.Decimal

	// Description is free-form text shown in the transaction list.
	Description string

	// ResidentIDs are the residents the entry concerns. A maintenance
	// payment always concerns exactly one resident.
	ResidentIDs []string

	// IsMonthlyMaintenance marks entries generated by marking a resident's
	// dues paid; these are the entries located and reversed on undo.
	IsMonthlyMaintenance bool

	// IsMultipleResidents is derived: len(ResidentIDs) > 1.
	IsMultipleResidents bool

	// CreatedAt and UpdatedAt are Unix timestamps. UpdatedAt is zero for
	// entries that were never touched after creation.
	CreatedAt int64
	UpdatedAt int64
}

// Validate checks the transaction before it is appended to the ledger.
func (t *Transaction) Validate() error {
	if t.Type != EntryCredit && t.Type != EntryDebit {
		return fmt.Errorf("transaction type must be %q or %q", EntryCredit, EntryDebit)
	}
	if !t.Amount.IsPositive() {
		return fmt.Errorf("transaction amount must be positive, got %s", t.Amount)
	}
	if t.MonthKey.IsZero() {
		return fmt.Errorf("transaction month key is required")
	}
	if len(t.ResidentIDs) == 0 {
		return fmt.Errorf("transaction must reference at least one resident")
	}
	if t.IsMonthlyMaintenance && len(t.ResidentIDs) != 1 {
		return fmt.Errorf("maintenance transaction must reference exactly one resident")
	}
	return nil
}
