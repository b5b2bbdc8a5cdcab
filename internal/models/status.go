package models

import "fmt"

// MaintenanceStatus is a resident's dues status for a single month.
type MaintenanceStatus int

const (
	// StatusUnrecorded means no status has been written for the month yet.
	// It is the state of a freshly created month and the state a month
	// returns to when a payment is undone.
	StatusUnrecorded MaintenanceStatus = iota

	// StatusUnpaid is written by the post-cycle sweep for residents without
	// a payment once the billing window closes.
	StatusUnpaid

	// StatusPaid is written when an admin records a payment. It is always
	// backed by a maintenance credit transaction.
	StatusPaid
)

func (s MaintenanceStatus) String() string {
	switch s {
	case StatusUnpaid:
		return "unpaid"
	case StatusPaid:
		return "paid"
	default:
		return "unrecorded"
	}
}

// ParseMaintenanceStatus converts a stored status string. The empty string
// maps to StatusUnrecorded, matching the absence of a row.
func ParseMaintenanceStatus(s string) (MaintenanceStatus, error) {
	switch s {
	case "", "unrecorded":
		return StatusUnrecorded, nil
	case "unpaid":
		return StatusUnpaid, nil
	case "paid":
		return StatusPaid, nil
	default:
		return StatusUnrecorded, fmt.Errorf("unknown maintenance status %q", s)
	}
}

// TransitionError describes a rejected status change.
func TransitionError(from, to MaintenanceStatus) error {
	return fmt.Errorf("maintenance status cannot change from %s to %s", from, to)
}

// CanTransition reports whether moving from s to next is a declared
// transition of the status machine:
//
//	Unrecorded -> Unpaid   (sweep after cycle close)
//	Unrecorded -> Paid     (payment before the sweep runs)
//	Unpaid     -> Paid     (payment after the sweep)
//	Unpaid     -> Unpaid   (sweep re-run; idempotent)
//	Paid       -> Unrecorded (undo)
func (s MaintenanceStatus) CanTransition(next MaintenanceStatus) bool {
	switch s {
	case StatusUnrecorded:
		return next == StatusUnpaid || next == StatusPaid
	case StatusUnpaid:
		return next == StatusPaid || next == StatusUnpaid
	case StatusPaid:
		return next == StatusUnrecorded
	}
	return false
}
