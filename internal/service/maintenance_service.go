package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/societyhq/societyd/internal/metrics"
	"github.com/societyhq/societyd/internal/models"
	"github.com/societyhq/societyd/internal/storage"
)

var (
	// ErrAmountNotSet is returned when a payment is marked before the
	// society has configured its monthly maintenance amount.
	ErrAmountNotSet = errors.New("monthly maintenance amount is not set")

	// ErrUndoPastMonth is returned when an undo targets any month other
	// than the current one.
	ErrUndoPastMonth = errors.New("payment undo is only allowed for the current month")

	// ErrNoMaintenanceTransaction is returned when an undo finds no
	// maintenance credit to reverse. Nothing is changed in that case.
	ErrNoMaintenanceTransaction = errors.New("no maintenance transaction found to reverse")
)

// Actions accepted by MarkPayment.
const (
	ActionPaid = "paid"
	ActionUndo = "undo"
)

// MaintenanceService manages monthly maintenance payments: marking residents
// paid, undoing payments, and the post-cycle sweep that marks everyone else
// unpaid.
type MaintenanceService struct {
	store         storage.Store
	transactions  *TransactionService
	notifications *NotificationService

	// now is swappable for tests.
	now func() time.Time
}

// NewMaintenanceService creates a new MaintenanceService.
func NewMaintenanceService(store storage.Store, transactions *TransactionService, notifications *NotificationService) *MaintenanceService {
	return &MaintenanceService{
		store:         store,
		transactions:  transactions,
		notifications: notifications,
		now:           time.Now,
	}
}

// SetCycle configures the society's payment window (day-of-month range).
func (s *MaintenanceService) SetCycle(ctx context.Context, societyID string, cycle models.PaymentCycle) error {
	if err := cycle.Validate(); err != nil {
		return err
	}
	return s.store.SetPaymentCycle(ctx, societyID, cycle)
}

// GetCycle returns the society's payment window, falling back to the default
// when none is configured.
func (s *MaintenanceService) GetCycle(ctx context.Context, societyID string) (models.PaymentCycle, error) {
	return s.store.GetPaymentCycle(ctx, societyID)
}

// SetAmount configures the monthly maintenance amount.
func (s *MaintenanceService) SetAmount(ctx context.Context, societyID string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("maintenance amount must be positive, got %s", amount)
	}
	return s.store.SetMaintenanceAmount(ctx, societyID, amount)
}

// GetAmount returns the monthly maintenance amount. ok is false when the
// society has not set one.
func (s *MaintenanceService) GetAmount(ctx context.Context, societyID string) (decimal.Decimal, bool, error) {
	return s.store.GetMaintenanceAmount(ctx, societyID)
}

// MarkPayment records or undoes a resident's maintenance payment for a month.
// An empty month means the current month.
func (s *MaintenanceService) MarkPayment(ctx context.Context, societyID, residentID, action string, month models.MonthKey) error {
	if month.IsZero() {
		month = models.MonthKeyOf(s.now())
	}
	switch action {
	case ActionPaid:
		return s.markPaid(ctx, societyID, residentID, month)
	case ActionUndo:
		return s.undoPayment(ctx, societyID, residentID, month)
	default:
		return fmt.Errorf("unknown payment action %q", action)
	}
}

// markPaid flips the resident's status to paid, appends the matching
// maintenance credit, and clears the unpaid notification.
func (s *MaintenanceService) markPaid(ctx context.Context, societyID, residentID string, month models.MonthKey) error {
	resident, err := s.store.GetResident(ctx, societyID, residentID)
	if err != nil {
		return err
	}

	current := resident.StatusFor(month)
	if !current.CanTransition(models.StatusPaid) {
		return fmt.Errorf("cannot mark flat %s paid for %s: status is %s", resident.FlatNo, month, current)
	}

	amount, ok, err := s.store.GetMaintenanceAmount(ctx, societyID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrAmountNotSet
	}

	if err := s.store.SetMaintenanceStatus(ctx, societyID, residentID, month, models.StatusPaid); err != nil {
		return err
	}

	_, err = s.transactions.Add(ctx, societyID, AddTransactionInput{
		ResidentIDs:          []string{residentID},
		Type:                 models.EntryCredit,
		Amount:               amount,
		Description:          fmt.Sprintf("Flat No. %s paid maintenance for %s", resident.FlatNo, month),
		MonthKey:             month,
		IsMonthlyMaintenance: true,
	})
	if err != nil {
		return err
	}

	if err := s.notifications.Delete(ctx, societyID, models.NotificationID(residentID, month)); err != nil {
		slog.Warn("Clearing unpaid notification failed", "society_id", societyID, "resident_id", residentID, "error", err)
	}

	slog.Info("Maintenance marked paid", "society_id", societyID, "resident_id", residentID, "flat_no", resident.FlatNo, "month_key", month)
	return nil
}

// undoPayment reverses a paid marking: the maintenance credit is removed,
// the status entry is cleared, and the unpaid notification comes back. Only
// the current month can be undone, and if no matching maintenance credit
// exists the undo fails without changing anything.
func (s *MaintenanceService) undoPayment(ctx context.Context, societyID, residentID string, month models.MonthKey) error {
	if month != models.MonthKeyOf(s.now()) {
		return ErrUndoPastMonth
	}

	resident, err := s.store.GetResident(ctx, societyID, residentID)
	if err != nil {
		return err
	}
	if resident.StatusFor(month) != models.StatusPaid {
		return fmt.Errorf("flat %s is not marked paid for %s", resident.FlatNo, month)
	}

	txns, err := s.store.ListTransactions(ctx, societyID, month)
	if err != nil {
		return err
	}
	match := findMaintenanceCredit(txns, residentID)
	if match == nil {
		return fmt.Errorf("%w: flat %s, month %s", ErrNoMaintenanceTransaction, resident.FlatNo, month)
	}

	if err := s.transactions.Remove(ctx, societyID, month, match.ID, nil); err != nil {
		return err
	}
	if err := s.store.SetMaintenanceStatus(ctx, societyID, residentID, month, models.StatusUnrecorded); err != nil {
		return err
	}
	if err := s.notifications.RaiseUnpaid(ctx, societyID, residentID, month); err != nil {
		slog.Warn("Re-raising unpaid notification failed", "society_id", societyID, "resident_id", residentID, "error", err)
	}

	slog.Info("Maintenance payment undone", "society_id", societyID, "resident_id", residentID, "flat_no", resident.FlatNo, "month_key", month)
	return nil
}

func findMaintenanceCredit(txns []*models.Transaction, residentID string) *models.Transaction {
	for _, txn := range txns {
		if !txn.IsMonthlyMaintenance || txn.Type != models.EntryCredit {
			continue
		}
		for _, id := range txn.ResidentIDs {
			if id == residentID {
				return txn
			}
		}
	}
	return nil
}

// AutoMarkUnpaid marks every resident without a paid status for the current
// month as unpaid and raises their notifications. It does nothing while the
// payment window is still open, and re-running it after the window closes is
// a no-op for residents already marked.
func (s *MaintenanceService) AutoMarkUnpaid(ctx context.Context, societyID string) error {
	cycle, err := s.store.GetPaymentCycle(ctx, societyID)
	if err != nil {
		return err
	}
	if !cycle.Closed(s.now().Day()) {
		slog.Debug("Payment window still open, skipping sweep", "society_id", societyID, "cycle_end", cycle.EndDay)
		return nil
	}

	month := models.MonthKeyOf(s.now())
	residents, err := s.store.ListResidents(ctx, societyID)
	if err != nil {
		return err
	}

	marked := 0
	for _, resident := range residents {
		status := resident.StatusFor(month)
		if status == models.StatusPaid {
			continue
		}
		if status != models.StatusUnpaid {
			if err := s.store.SetMaintenanceStatus(ctx, societyID, resident.ID, month, models.StatusUnpaid); err != nil {
				slog.Error("Marking resident unpaid failed", "society_id", societyID, "resident_id", resident.ID, "error", err)
				continue
			}
			marked++
			metrics.UnpaidResidentsMarked.Inc()
		}
		// Raise even for residents already unpaid so a lost
		// notification is restored. The upsert is idempotent.
		if err := s.notifications.RaiseUnpaid(ctx, societyID, resident.ID, month); err != nil {
			slog.Error("Raising unpaid notification failed", "society_id", societyID, "resident_id", resident.ID, "error", err)
		}
	}

	metrics.UnpaidSweeps.Inc()
	slog.Info("Unpaid sweep completed", "society_id", societyID, "month_key", month, "newly_marked", marked)
	return nil
}

// SweepAll runs AutoMarkUnpaid for every society. Failures in one society
// do not stop the others.
func (s *MaintenanceService) SweepAll(ctx context.Context) {
	societies, err := s.store.ListSocieties(ctx)
	if err != nil {
		slog.Error("Listing societies for sweep failed", "error", err)
		return
	}
	for _, society := range societies {
		if err := s.AutoMarkUnpaid(ctx, society.ID); err != nil {
			slog.Error("Unpaid sweep failed", "society_id", society.ID, "error", err)
		}
	}
}
