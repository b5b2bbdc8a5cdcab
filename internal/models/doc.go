// Package models defines the core domain models for societyd.
//
// # Models
//
//   - Society: the top-level tenant; every other record is scoped to one
//   - Resident: a flat with owner/tenant details and a per-month dues status map
//   - Transaction: a credit or debit ledger entry scoped under its month
//   - MonthlyBalance / GlobalBalance: money aggregates maintained by the ledger
//   - PaymentCycle: the day-of-month billing window
//   - Notification: one unpaid-dues record per (resident, month)
//   - Admin: a society administrator with role flags
//
// # Month keys
//
// Every monthly record is keyed by a MonthKey, a validated "YYYY-MM" string.
// Because the month component is zero-padded, lexicographic order equals
// chronological order, and the same value serves as both a map key and a sort
// key. Code must never build month keys by hand; use MonthKeyOf or
// ParseMonthKey so the invariant holds everywhere.
//
// # Maintenance status
//
// A resident's dues status for a month is a three-state machine rather than a
// bare string: Unrecorded (no entry yet), Unpaid (marked by the post-cycle
// sweep), Paid (marked by an admin, backed by a maintenance transaction).
// Undoing a payment returns the month to Unrecorded, not Unpaid; the sweep is
// the only writer of Unpaid.
package models
