package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/societyhq/societyd/internal/models"
	"github.com/societyhq/societyd/internal/storage"
)

// UpsertNotification writes a notification under its deterministic ID,
// merging over any existing record so a re-run of the sweep does not
// duplicate events or reset the original creation time.
func (s *SQLiteStore) UpsertNotification(ctx context.Context, n *models.Notification) error {
	if n.ID == "" {
		n.ID = models.NotificationID(n.ResidentID, n.MonthKey)
	}
	if n.CreatedAt == 0 {
		n.CreatedAt = time.Now().Unix()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO notifications (society_id, id, resident_id, month_key, flat_no, message, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (society_id, id) DO UPDATE SET
		   flat_no = excluded.flat_no,
		   message = excluded.message,
		   status = excluded.status`,
		n.SocietyID, n.ID, n.ResidentID, n.MonthKey.String(), n.FlatNo, n.Message, n.Status, n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert notification: %w", err)
	}
	return nil
}

// DeleteNotification removes a notification. A missing record is not an
// error, matching document-store delete semantics.
func (s *SQLiteStore) DeleteNotification(ctx context.Context, societyID, notificationID string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM notifications WHERE society_id = ? AND id = ?",
		societyID, notificationID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}
	return nil
}

// ListNotifications returns a society's notifications, newest first.
func (s *SQLiteStore) ListNotifications(ctx context.Context, societyID string) ([]*models.Notification, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, resident_id, month_key, flat_no, message, status, created_at
		 FROM notifications WHERE society_id = ? ORDER BY created_at DESC`,
		societyID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*models.Notification
	for rows.Next() {
		n := &models.Notification{SocietyID: societyID}
		var monthStr string
		if err := rows.Scan(&n.ID, &n.ResidentID, &monthStr, &n.FlatNo, &n.Message, &n.Status, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		n.MonthKey = models.MonthKey(monthStr)
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate notifications: %w", err)
	}
	return notifications, nil
}

// MarkNotificationRead flips a notification's status to read.
func (s *SQLiteStore) MarkNotificationRead(ctx context.Context, societyID, notificationID string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE notifications SET status = ? WHERE society_id = ? AND id = ?",
		models.NotificationRead, societyID, notificationID,
	)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("notification %s: %w", notificationID, storage.ErrNotFound)
	}
	return nil
}
