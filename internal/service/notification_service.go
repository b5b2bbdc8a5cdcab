package service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/societyhq/societyd/internal/models"
	"github.com/societyhq/societyd/internal/storage"
)

// NotificationService maintains the per-society unpaid notification list and
// fans out change events to subscribers. Subscriptions are in-process only;
// every mutation re-publishes the full current list so late or slow
// subscribers converge on the same state.
type NotificationService struct {
	store storage.Store

	mu     sync.Mutex
	nextID int
	subs   map[string]map[int]chan []*models.Notification
}

// NewNotificationService creates a new NotificationService with the given
// storage backend.
func NewNotificationService(store storage.Store) *NotificationService {
	return &NotificationService{
		store: store,
		subs:  make(map[string]map[int]chan []*models.Notification),
	}
}

// RaiseUnpaid records (or refreshes) the unpaid notification for a resident
// and month. The notification ID is derived from the resident and month, so
// raising twice for the same pair updates the existing entry.
func (s *NotificationService) RaiseUnpaid(ctx context.Context, societyID, residentID string, month models.MonthKey) error {
	flatNo := "Unknown Flat"
	if resident, err := s.store.GetResident(ctx, societyID, residentID); err == nil {
		flatNo = resident.FlatNo
	}

	n := &models.Notification{
		ID:         models.NotificationID(residentID, month),
		SocietyID:  societyID,
		ResidentID: residentID,
		MonthKey:   month,
		FlatNo:     flatNo,
		Message:    models.UnpaidMessage(flatNo, month),
		Status:     models.NotificationUnread,
	}
	if err := s.store.UpsertNotification(ctx, n); err != nil {
		return err
	}

	slog.Info("Unpaid notification raised", "society_id", societyID, "resident_id", residentID, "month_key", month)
	s.broadcast(ctx, societyID)
	return nil
}

// Delete removes a notification. Deleting one that does not exist is not an
// error.
func (s *NotificationService) Delete(ctx context.Context, societyID, id string) error {
	if err := s.store.DeleteNotification(ctx, societyID, id); err != nil {
		return err
	}
	s.broadcast(ctx, societyID)
	return nil
}

// List returns the society's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, societyID string) ([]*models.Notification, error) {
	return s.store.ListNotifications(ctx, societyID)
}

// MarkRead marks a notification as read.
func (s *NotificationService) MarkRead(ctx context.Context, societyID, id string) error {
	if err := s.store.MarkNotificationRead(ctx, societyID, id); err != nil {
		return err
	}
	s.broadcast(ctx, societyID)
	return nil
}

// Subscribe returns a channel receiving the society's full notification list
// after every change, plus a function to cancel the subscription. Slow
// receivers miss intermediate snapshots but always get the latest on the
// next change.
func (s *NotificationService) Subscribe(societyID string) (<-chan []*models.Notification, func()) {
	ch := make(chan []*models.Notification, 1)

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	if s.subs[societyID] == nil {
		s.subs[societyID] = make(map[int]chan []*models.Notification)
	}
	s.subs[societyID][id] = ch
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if chans, ok := s.subs[societyID]; ok {
			if _, ok := chans[id]; ok {
				delete(chans, id)
				close(ch)
			}
			if len(chans) == 0 {
				delete(s.subs, societyID)
			}
		}
	}
	return ch, cancel
}

func (s *NotificationService) broadcast(ctx context.Context, societyID string) {
	s.mu.Lock()
	n := len(s.subs[societyID])
	s.mu.Unlock()
	if n == 0 {
		return
	}

	notifications, err := s.store.ListNotifications(ctx, societyID)
	if err != nil {
		slog.Error("Notification broadcast list failed", "society_id", societyID, "error", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subs[societyID] {
		// Drop the stale snapshot if the subscriber hasn't drained it.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- notifications:
		default:
		}
	}
}
