package models

import "fmt"

// Notification statuses.
const (
	NotificationUnread = "unread"
	NotificationRead   = "read"
)

// Notification records one unpaid-dues event for a (resident, month) pair.
// Its ID is deterministic, so the sweep can re-run without creating
// duplicates: re-raising the same event upserts the same record.
type Notification struct {
	// ID is "{residentID}-{monthKey}".
	ID string

	// SocietyID scopes the notification to its society.
	SocietyID string

	ResidentID string
	MonthKey   MonthKey

	// FlatNo is denormalized from the resident for display.
	FlatNo string

	// Message is the generated human-readable text.
	Message string

	// Status is unread or read.
	Status string

	// CreatedAt is the Unix timestamp of the first time the event was raised.
	CreatedAt int64
}

// NotificationID builds the deterministic key for a (resident, month) pair.
func NotificationID(residentID string, month MonthKey) string {
	return fmt.Sprintf("%s-%s", residentID, month)
}

// UnpaidMessage builds the notification text for an unpaid resident.
func UnpaidMessage(flatNo string, month MonthKey) string {
	return fmt.Sprintf("Resident %s has not paid maintenance for %s", flatNo, month)
}
