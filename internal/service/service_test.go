package service

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/societyhq/societyd/internal/models"
	"github.com/societyhq/societyd/internal/storage"
	"github.com/societyhq/societyd/internal/storage/sqlite"
)

const testSociety = "shyam-kunj"

type testServices struct {
	store         storage.Store
	transactions  *TransactionService
	balances      *BalanceService
	notifications *NotificationService
	maintenance   *MaintenanceService
	residents     *ResidentService
}

func setupServices(t *testing.T) (*testServices, func()) {
	t.Helper()

	tmpFile, err := os.CreateTemp("", "test-*.db")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	tmpFile.Close()

	store, err := sqlite.New(tmpFile.Name())
	if err != nil {
		os.Remove(tmpFile.Name())
		t.Fatalf("failed to create store: %v", err)
	}

	if err := store.CreateSociety(context.Background(), &models.Society{ID: testSociety, Name: "Shyam Kunj"}); err != nil {
		t.Fatalf("failed to create society: %v", err)
	}

	transactions := NewTransactionService(store)
	notifications := NewNotificationService(store)
	s := &testServices{
		store:         store,
		transactions:  transactions,
		balances:      NewBalanceService(store),
		notifications: notifications,
		maintenance:   NewMaintenanceService(store, transactions, notifications),
		residents:     NewResidentService(store),
	}

	cleanup := func() {
		store.Close()
		os.Remove(tmpFile.Name())
	}
	return s, cleanup
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// fixedClock pins both the maintenance and resident services to a specific day.
func (s *testServices) fixedClock(year int, month time.Month, day int) {
	now := func() time.Time {
		return time.Date(year, month, day, 12, 0, 0, 0, time.UTC)
	}
	s.maintenance.now = now
	s.residents.now = now
}

func (s *testServices) createResident(t *testing.T, flatNo string) *models.Resident {
	t.Helper()
	resident, err := s.residents.Create(context.Background(), testSociety, ResidentInput{
		FlatNo:       flatNo,
		OwnerName:    "Asha Rao",
		OwnerContact: "9876543210",
		Type:         models.OccupancyOwner,
	})
	if err != nil {
		t.Fatalf("failed to create resident: %v", err)
	}
	return resident
}

func TestResidentCreate_SeedsCurrentMonthUnpaid(t *testing.T) {
	s, cleanup := setupServices(t)
	defer cleanup()
	s.fixedClock(2025, time.August, 5)

	resident := s.createResident(t, "101")

	got, err := s.residents.Get(context.Background(), testSociety, resident.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.StatusFor("2025-08") != models.StatusUnpaid {
		t.Errorf("new resident status for 2025-08 = %s, want unpaid", got.StatusFor("2025-08"))
	}
}

func TestAutoMarkUnpaid_NoopWhileCycleOpen(t *testing.T) {
	s, cleanup := setupServices(t)
	defer cleanup()
	ctx := context.Background()

	// Cycle runs days 1-10; on day 5 the sweep must not touch anyone.
	s.fixedClock(2025, time.August, 5)
	if err := s.maintenance.SetCycle(ctx, testSociety, models.PaymentCycle{StartDay: 1, EndDay: 10}); err != nil {
		t.Fatalf("SetCycle failed: %v", err)
	}

	resident := s.createResident(t, "101")
	if err := s.store.SetMaintenanceStatus(ctx, testSociety, resident.ID, "2025-08", models.StatusUnrecorded); err != nil {
		t.Fatalf("clearing seeded status failed: %v", err)
	}

	if err := s.maintenance.AutoMarkUnpaid(ctx, testSociety); err != nil {
		t.Fatalf("AutoMarkUnpaid failed: %v", err)
	}

	got, _ := s.residents.Get(ctx, testSociety, resident.ID)
	if got.StatusFor("2025-08") != models.StatusUnrecorded {
		t.Errorf("status after in-window sweep = %s, want unrecorded", got.StatusFor("2025-08"))
	}
	notifications, _ := s.notifications.List(ctx, testSociety)
	if len(notifications) != 0 {
		t.Errorf("got %d notifications, want none while the cycle is open", len(notifications))
	}
}

func TestAutoMarkUnpaid_MarksAndNotifiesAfterCycle(t *testing.T) {
	s, cleanup := setupServices(t)
	defer cleanup()
	ctx := context.Background()

	s.fixedClock(2025, time.August, 11)
	if err := s.maintenance.SetCycle(ctx, testSociety, models.PaymentCycle{StartDay: 1, EndDay: 10}); err != nil {
		t.Fatalf("SetCycle failed: %v", err)
	}
	resident := s.createResident(t, "101")
	if err := s.store.SetMaintenanceStatus(ctx, testSociety, resident.ID, "2025-08", models.StatusUnrecorded); err != nil {
		t.Fatalf("clearing seeded status failed: %v", err)
	}

	if err := s.maintenance.AutoMarkUnpaid(ctx, testSociety); err != nil {
		t.Fatalf("AutoMarkUnpaid failed: %v", err)
	}

	got, _ := s.residents.Get(ctx, testSociety, resident.ID)
	if got.StatusFor("2025-08") != models.StatusUnpaid {
		t.Fatalf("status after sweep = %s, want unpaid", got.StatusFor("2025-08"))
	}

	notifications, err := s.notifications.List(ctx, testSociety)
	if err != nil {
		t.Fatalf("List notifications failed: %v", err)
	}
	if len(notifications) != 1 {
		t.Fatalf("got %d notifications, want 1", len(notifications))
	}
	n := notifications[0]
	if n.ID != models.NotificationID(resident.ID, "2025-08") {
		t.Errorf("notification ID = %q, want deterministic resident-month key", n.ID)
	}
	if n.FlatNo != "101" || n.Status != models.NotificationUnread {
		t.Errorf("notification = %+v", n)
	}

	// Re-running the sweep must not duplicate anything.
	if err := s.maintenance.AutoMarkUnpaid(ctx, testSociety); err != nil {
		t.Fatalf("second AutoMarkUnpaid failed: %v", err)
	}
	notifications, _ = s.notifications.List(ctx, testSociety)
	if len(notifications) != 1 {
		t.Errorf("after re-run got %d notifications, want 1", len(notifications))
	}
}

func TestMarkPayment_PaidCreatesCreditAndClearsNotification(t *testing.T) {
	s, cleanup := setupServices(t)
	defer cleanup()
	ctx := context.Background()

	s.fixedClock(2025, time.August, 11)
	if err := s.maintenance.SetAmount(ctx, testSociety, dec("500")); err != nil {
		t.Fatalf("SetAmount failed: %v", err)
	}
	resident := s.createResident(t, "101")
	if err := s.maintenance.AutoMarkUnpaid(ctx, testSociety); err != nil {
		t.Fatalf("AutoMarkUnpaid failed: %v", err)
	}

	if err := s.maintenance.MarkPayment(ctx, testSociety, resident.ID, ActionPaid, ""); err != nil {
		t.Fatalf("MarkPayment paid failed: %v", err)
	}

	got, _ := s.residents.Get(ctx, testSociety, resident.ID)
	if got.StatusFor("2025-08") != models.StatusPaid {
		t.Errorf("status = %s, want paid", got.StatusFor("2025-08"))
	}

	txns, err := s.transactions.List(ctx, testSociety, "2025-08")
	if err != nil {
		t.Fatalf("List transactions failed: %v", err)
	}
	if len(txns) != 1 {
		t.Fatalf("got %d transactions, want 1", len(txns))
	}
	txn := txns[0]
	if txn.Type != models.EntryCredit || !txn.Amount.Equal(dec("500")) || !txn.IsMonthlyMaintenance {
		t.Errorf("maintenance transaction = %+v", txn)
	}

	balance, err := s.balances.GetMonthly(ctx, testSociety, "2025-08")
	if err != nil {
		t.Fatalf("GetMonthly failed: %v", err)
	}
	if !balance.Credit.Equal(dec("500")) || !balance.Balance.Equal(dec("500")) {
		t.Errorf("monthly balance = %+v", balance)
	}
	if !balance.Reconciles() {
		t.Errorf("monthly balance does not reconcile: %+v", balance)
	}

	notifications, _ := s.notifications.List(ctx, testSociety)
	if len(notifications) != 0 {
		t.Errorf("got %d notifications after payment, want 0", len(notifications))
	}
}

func TestMarkPayment_RequiresAmountConfigured(t *testing.T) {
	s, cleanup := setupServices(t)
	defer cleanup()
	s.fixedClock(2025, time.August, 11)
	resident := s.createResident(t, "101")

	err := s.maintenance.MarkPayment(context.Background(), testSociety, resident.ID, ActionPaid, "")
	if !errors.Is(err, ErrAmountNotSet) {
		t.Errorf("MarkPayment without amount = %v, want ErrAmountNotSet", err)
	}
}

func TestMarkPayment_UndoRoundTrip(t *testing.T) {
	s, cleanup := setupServices(t)
	defer cleanup()
	ctx := context.Background()

	s.fixedClock(2025, time.August, 11)
	if err := s.maintenance.SetAmount(ctx, testSociety, dec("500")); err != nil {
		t.Fatalf("SetAmount failed: %v", err)
	}
	resident := s.createResident(t, "101")
	if err := s.maintenance.AutoMarkUnpaid(ctx, testSociety); err != nil {
		t.Fatalf("AutoMarkUnpaid failed: %v", err)
	}

	before, err := s.balances.GetMonthly(ctx, testSociety, "2025-08")
	if err != nil {
		t.Fatalf("GetMonthly failed: %v", err)
	}
	totalBefore, _ := s.balances.GetTotal(ctx, testSociety)

	if err := s.maintenance.MarkPayment(ctx, testSociety, resident.ID, ActionPaid, ""); err != nil {
		t.Fatalf("MarkPayment paid failed: %v", err)
	}
	if err := s.maintenance.MarkPayment(ctx, testSociety, resident.ID, ActionUndo, ""); err != nil {
		t.Fatalf("MarkPayment undo failed: %v", err)
	}

	// Status returns to unrecorded, not unpaid.
	got, _ := s.residents.Get(ctx, testSociety, resident.ID)
	if got.StatusFor("2025-08") != models.StatusUnrecorded {
		t.Errorf("status after undo = %s, want unrecorded", got.StatusFor("2025-08"))
	}

	txns, _ := s.transactions.List(ctx, testSociety, "2025-08")
	if len(txns) != 0 {
		t.Errorf("got %d transactions after undo, want 0", len(txns))
	}

	after, err := s.balances.GetMonthly(ctx, testSociety, "2025-08")
	if err != nil {
		t.Fatalf("GetMonthly failed: %v", err)
	}
	if !after.Credit.Equal(before.Credit) || !after.Balance.Equal(before.Balance) {
		t.Errorf("monthly balance after undo = %+v, want %+v", after, before)
	}
	totalAfter, _ := s.balances.GetTotal(ctx, testSociety)
	if !totalAfter.Equal(totalBefore) {
		t.Errorf("global total after undo = %s, want %s", totalAfter, totalBefore)
	}

	// The unpaid notification comes back.
	notifications, _ := s.notifications.List(ctx, testSociety)
	if len(notifications) != 1 {
		t.Errorf("got %d notifications after undo, want 1", len(notifications))
	}
}

func TestMarkPayment_UndoOnlyCurrentMonth(t *testing.T) {
	s, cleanup := setupServices(t)
	defer cleanup()
	s.fixedClock(2025, time.September, 5)
	resident := s.createResident(t, "101")

	err := s.maintenance.MarkPayment(context.Background(), testSociety, resident.ID, ActionUndo, "2025-08")
	if !errors.Is(err, ErrUndoPastMonth) {
		t.Errorf("undo of past month = %v, want ErrUndoPastMonth", err)
	}
}

func TestMarkPayment_UndoWithoutTransactionIsHardError(t *testing.T) {
	s, cleanup := setupServices(t)
	defer cleanup()
	ctx := context.Background()

	s.fixedClock(2025, time.August, 11)
	resident := s.createResident(t, "101")

	// Paid status with no backing maintenance credit: the undo must fail
	// and leave the status untouched.
	if err := s.store.SetMaintenanceStatus(ctx, testSociety, resident.ID, "2025-08", models.StatusPaid); err != nil {
		t.Fatalf("SetMaintenanceStatus failed: %v", err)
	}

	err := s.maintenance.MarkPayment(ctx, testSociety, resident.ID, ActionUndo, "")
	if !errors.Is(err, ErrNoMaintenanceTransaction) {
		t.Fatalf("undo without transaction = %v, want ErrNoMaintenanceTransaction", err)
	}

	got, _ := s.residents.Get(ctx, testSociety, resident.ID)
	if got.StatusFor("2025-08") != models.StatusPaid {
		t.Errorf("status after failed undo = %s, want paid (unchanged)", got.StatusFor("2025-08"))
	}
}

func TestMarkPayment_RejectsUnknownAction(t *testing.T) {
	s, cleanup := setupServices(t)
	defer cleanup()
	s.fixedClock(2025, time.August, 11)
	resident := s.createResident(t, "101")

	if err := s.maintenance.MarkPayment(context.Background(), testSociety, resident.ID, "refund", ""); err == nil {
		t.Error("MarkPayment accepted unknown action")
	}
}

func TestTransactionRemove_ValidatesClaimedReversal(t *testing.T) {
	s, cleanup := setupServices(t)
	defer cleanup()
	ctx := context.Background()

	resident := s.createResident(t, "101")
	id, err := s.transactions.Add(ctx, testSociety, AddTransactionInput{
		ResidentIDs: []string{resident.ID},
		Type:        models.EntryDebit,
		Amount:      dec("1200"),
		Description: "Water tank cleaning",
		MonthKey:    "2025-08",
	})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	// A claim disagreeing with the stored row is refused.
	err = s.transactions.Remove(ctx, testSociety, "2025-08", id, &Reversal{
		Type: models.EntryCredit, Amount: dec("1200"),
	})
	if !errors.Is(err, ErrReversalMismatch) {
		t.Fatalf("Remove with wrong claim = %v, want ErrReversalMismatch", err)
	}

	// A matching claim succeeds, and the reversal uses the stored values.
	err = s.transactions.Remove(ctx, testSociety, "2025-08", id, &Reversal{
		Type: models.EntryDebit, Amount: dec("1200"),
	})
	if err != nil {
		t.Fatalf("Remove with matching claim failed: %v", err)
	}

	balance, _ := s.balances.GetMonthly(ctx, testSociety, "2025-08")
	if !balance.Debit.IsZero() || !balance.Balance.IsZero() {
		t.Errorf("monthly balance after reversal = %+v, want zeroes", balance)
	}
}

func TestBalanceUpdate_RejectsUnknownType(t *testing.T) {
	s, cleanup := setupServices(t)
	defer cleanup()

	err := s.balances.Update(context.Background(), testSociety, storage.BalanceEntry{
		MonthKey: "2025-08", Type: "transfer", Amount: dec("10"),
	})
	if err == nil {
		t.Error("Update accepted unknown entry type")
	}
}

func TestNotificationSubscribe_ReceivesSnapshots(t *testing.T) {
	s, cleanup := setupServices(t)
	defer cleanup()
	ctx := context.Background()

	resident := s.createResident(t, "A2")

	ch, cancel := s.notifications.Subscribe(testSociety)
	defer cancel()

	if err := s.notifications.RaiseUnpaid(ctx, testSociety, resident.ID, "2025-08"); err != nil {
		t.Fatalf("RaiseUnpaid failed: %v", err)
	}

	select {
	case snapshot := <-ch:
		if len(snapshot) != 1 {
			t.Fatalf("snapshot has %d notifications, want 1", len(snapshot))
		}
		if snapshot[0].FlatNo != "A2" {
			t.Errorf("snapshot flat = %q, want A2", snapshot[0].FlatNo)
		}
	case <-time.After(time.Second):
		t.Fatal("no snapshot received after RaiseUnpaid")
	}

	// After cancel the channel is closed and no longer receives.
	cancel()
	if _, ok := <-ch; ok {
		t.Error("channel still open after cancel")
	}
}

func TestRaiseUnpaid_UnknownResidentUsesFallbackFlat(t *testing.T) {
	s, cleanup := setupServices(t)
	defer cleanup()
	ctx := context.Background()

	if err := s.notifications.RaiseUnpaid(ctx, testSociety, "ghost-id", "2025-08"); err != nil {
		t.Fatalf("RaiseUnpaid failed: %v", err)
	}
	notifications, _ := s.notifications.List(ctx, testSociety)
	if len(notifications) != 1 || notifications[0].FlatNo != "Unknown Flat" {
		t.Errorf("notifications = %+v, want one with fallback flat", notifications)
	}
}

func TestResidentUpdate_OwnerClearsTenantFields(t *testing.T) {
	s, cleanup := setupServices(t)
	defer cleanup()
	ctx := context.Background()

	resident, err := s.residents.Create(ctx, testSociety, ResidentInput{
		FlatNo:        "B4",
		OwnerName:     "Asha Rao",
		OwnerContact:  "9876543210",
		Type:          models.OccupancyTenant,
		TenantName:    "Vikram Shah",
		TenantContact: "9123456780",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	updated, err := s.residents.Update(ctx, testSociety, resident.ID, ResidentInput{
		FlatNo:        "B4",
		OwnerName:     "Asha Rao",
		OwnerContact:  "9876543210",
		Type:          models.OccupancyOwner,
		TenantName:    "Vikram Shah",
		TenantContact: "9123456780",
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.TenantName != "" || updated.TenantContact != "" {
		t.Errorf("tenant fields not cleared on owner occupancy: %+v", updated)
	}
}
