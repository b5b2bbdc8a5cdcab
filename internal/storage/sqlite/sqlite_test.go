package sqlite

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/societyhq/societyd/internal/models"
	"github.com/societyhq/societyd/internal/storage"
)

const testSociety = "shyam-kunj"

func setupTestStore(t *testing.T) (*SQLiteStore, func()) {
	t.Helper()

	tmpFile, err := os.CreateTemp("", "test-*.db")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	tmpFile.Close()

	store, err := New(tmpFile.Name())
	if err != nil {
		os.Remove(tmpFile.Name())
		t.Fatalf("failed to create store: %v", err)
	}

	if err := store.CreateSociety(context.Background(), &models.Society{ID: testSociety, Name: "Shyam Kunj"}); err != nil {
		t.Fatalf("failed to create society: %v", err)
	}

	cleanup := func() {
		store.Close()
		os.Remove(tmpFile.Name())
	}
	return store, cleanup
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestApplyBalance_CreatesAndUpdates(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	err := store.ApplyBalance(ctx, testSociety, storage.BalanceEntry{
		MonthKey: "2025-08", Type: models.EntryCredit, Amount: dec("500"),
	})
	if err != nil {
		t.Fatalf("ApplyBalance failed: %v", err)
	}

	b, err := store.GetMonthlyBalance(ctx, testSociety, "2025-08")
	if err != nil {
		t.Fatalf("GetMonthlyBalance failed: %v", err)
	}
	if !b.Credit.Equal(dec("500")) || !b.Balance.Equal(dec("500")) || !b.CarryForward.IsZero() {
		t.Errorf("after first credit: %+v", b)
	}

	err = store.ApplyBalance(ctx, testSociety, storage.BalanceEntry{
		MonthKey: "2025-08", Type: models.EntryDebit, Amount: dec("120"),
	})
	if err != nil {
		t.Fatalf("ApplyBalance failed: %v", err)
	}

	b, _ = store.GetMonthlyBalance(ctx, testSociety, "2025-08")
	if !b.Balance.Equal(dec("380")) || !b.Debit.Equal(dec("120")) {
		t.Errorf("after debit: %+v", b)
	}
	if !b.Reconciles() {
		t.Error("monthly balance does not reconcile")
	}

	g, err := store.GetGlobalBalance(ctx, testSociety)
	if err != nil {
		t.Fatalf("GetGlobalBalance failed: %v", err)
	}
	if !g.Total.Equal(dec("380")) {
		t.Errorf("global total = %s, want 380", g.Total)
	}
}

func TestApplyBalance_CarryForward(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	// August closes at 500.
	if err := store.ApplyBalance(ctx, testSociety, storage.BalanceEntry{
		MonthKey: "2025-08", Type: models.EntryCredit, Amount: dec("500"),
	}); err != nil {
		t.Fatalf("ApplyBalance failed: %v", err)
	}

	// First touch of September seeds carry-forward from August.
	if err := store.ApplyBalance(ctx, testSociety, storage.BalanceEntry{
		MonthKey: "2025-09", Type: models.EntryCredit, Amount: dec("100"),
	}); err != nil {
		t.Fatalf("ApplyBalance failed: %v", err)
	}

	sep, _ := store.GetMonthlyBalance(ctx, testSociety, "2025-09")
	if !sep.CarryForward.Equal(dec("500")) {
		t.Errorf("september carryForward = %s, want 500", sep.CarryForward)
	}
	if !sep.Balance.Equal(dec("600")) {
		t.Errorf("september balance = %s, want 600", sep.Balance)
	}

	// Altering August afterwards must not change September's carry-forward.
	if err := store.ApplyBalance(ctx, testSociety, storage.BalanceEntry{
		MonthKey: "2025-08", Type: models.EntryCredit, Amount: dec("1000"),
	}); err != nil {
		t.Fatalf("ApplyBalance failed: %v", err)
	}
	sep, _ = store.GetMonthlyBalance(ctx, testSociety, "2025-09")
	if !sep.CarryForward.Equal(dec("500")) {
		t.Errorf("september carryForward changed to %s after august edit", sep.CarryForward)
	}
}

func TestGetMonthlyBalance_MissingMonthIsZero(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	b, err := store.GetMonthlyBalance(context.Background(), testSociety, "2030-01")
	if err != nil {
		t.Fatalf("GetMonthlyBalance failed: %v", err)
	}
	if !b.Credit.IsZero() || !b.Debit.IsZero() || !b.CarryForward.IsZero() || !b.Balance.IsZero() {
		t.Errorf("missing month should be zero-valued, got %+v", b)
	}
}

func TestCreateTransaction_AppliesBalances(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	txn := &models.Transaction{
		SocietyID:   testSociety,
		MonthKey:    "2025-08",
		Type:        models.EntryCredit,
		Amount:      dec("500"),
		Description: "maintenance",
		ResidentIDs: []string{"r1"},
	}
	if err := store.CreateTransaction(ctx, txn); err != nil {
		t.Fatalf("CreateTransaction failed: %v", err)
	}
	if txn.ID == "" {
		t.Error("expected transaction ID to be assigned")
	}
	if txn.IsMultipleResidents {
		t.Error("single resident entry flagged as multiple")
	}

	b, _ := store.GetMonthlyBalance(ctx, testSociety, "2025-08")
	if !b.Balance.Equal(dec("500")) {
		t.Errorf("balance = %s, want 500", b.Balance)
	}
	g, _ := store.GetGlobalBalance(ctx, testSociety)
	if !g.Total.Equal(dec("500")) {
		t.Errorf("global total = %s, want 500", g.Total)
	}

	got, err := store.GetTransaction(ctx, testSociety, "2025-08", txn.ID)
	if err != nil {
		t.Fatalf("GetTransaction failed: %v", err)
	}
	if !got.Amount.Equal(dec("500")) || got.Type != models.EntryCredit {
		t.Errorf("round-tripped transaction = %+v", got)
	}
	if len(got.ResidentIDs) != 1 || got.ResidentIDs[0] != "r1" {
		t.Errorf("resident IDs = %v, want [r1]", got.ResidentIDs)
	}
}

func TestDeleteTransaction_ReversesBalances(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	seed := &models.Transaction{
		SocietyID: testSociety, MonthKey: "2025-08", Type: models.EntryCredit,
		Amount: dec("300"), Description: "seed", ResidentIDs: []string{"r0"},
	}
	if err := store.CreateTransaction(ctx, seed); err != nil {
		t.Fatalf("CreateTransaction failed: %v", err)
	}

	txn := &models.Transaction{
		SocietyID: testSociety, MonthKey: "2025-08", Type: models.EntryCredit,
		Amount: dec("500"), Description: "dues", ResidentIDs: []string{"r1"},
	}
	if err := store.CreateTransaction(ctx, txn); err != nil {
		t.Fatalf("CreateTransaction failed: %v", err)
	}

	before, _ := store.GetMonthlyBalance(ctx, testSociety, "2025-08")

	if err := store.DeleteTransaction(ctx, testSociety, "2025-08", txn.ID); err != nil {
		t.Fatalf("DeleteTransaction failed: %v", err)
	}

	after, _ := store.GetMonthlyBalance(ctx, testSociety, "2025-08")
	if !after.Balance.Equal(before.Balance.Sub(dec("500"))) {
		t.Errorf("balance after delete = %s, want %s", after.Balance, before.Balance.Sub(dec("500")))
	}
	if !after.Credit.Equal(dec("300")) {
		t.Errorf("credit after delete = %s, want 300", after.Credit)
	}
	if !after.Reconciles() {
		t.Error("balance does not reconcile after delete")
	}

	g, _ := store.GetGlobalBalance(ctx, testSociety)
	if !g.Total.Equal(dec("300")) {
		t.Errorf("global total = %s, want 300", g.Total)
	}

	if _, err := store.GetTransaction(ctx, testSociety, "2025-08", txn.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound for deleted transaction, got %v", err)
	}
}

func TestListAllTransactions_SortedByMonthDesc(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	for _, month := range []models.MonthKey{"2025-08", "2025-10", "2025-09"} {
		txn := &models.Transaction{
			SocietyID: testSociety, MonthKey: month, Type: models.EntryCredit,
			Amount: dec("100"), Description: "x", ResidentIDs: []string{"r1"},
		}
		if err := store.CreateTransaction(ctx, txn); err != nil {
			t.Fatalf("CreateTransaction failed: %v", err)
		}
	}

	all, err := store.ListAllTransactions(ctx, testSociety)
	if err != nil {
		t.Fatalf("ListAllTransactions failed: %v", err)
	}
	want := []models.MonthKey{"2025-10", "2025-09", "2025-08"}
	if len(all) != len(want) {
		t.Fatalf("got %d transactions, want %d", len(all), len(want))
	}
	for i, txn := range all {
		if txn.MonthKey != want[i] {
			t.Errorf("transaction %d month = %s, want %s", i, txn.MonthKey, want[i])
		}
	}
}

func TestResidents_CRUDAndSortOrder(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	for _, flat := range []string{"B2", "A10", "A2", "101"} {
		r := &models.Resident{
			SocietyID:    testSociety,
			FlatNo:       flat,
			OwnerName:    "Owner " + flat,
			OwnerContact: "9876543210",
			Type:         models.OccupancyOwner,
			Maintenance:  map[models.MonthKey]models.MaintenanceStatus{"2025-08": models.StatusUnpaid},
		}
		if err := store.CreateResident(ctx, r); err != nil {
			t.Fatalf("CreateResident failed: %v", err)
		}
	}

	residents, err := store.ListResidents(ctx, testSociety)
	if err != nil {
		t.Fatalf("ListResidents failed: %v", err)
	}
	want := []string{"101", "A2", "A10", "B2"}
	for i, r := range residents {
		if r.FlatNo != want[i] {
			t.Fatalf("resident %d flat = %s, want %s", i, r.FlatNo, want[i])
		}
		if r.StatusFor("2025-08") != models.StatusUnpaid {
			t.Errorf("flat %s status = %s, want unpaid", r.FlatNo, r.StatusFor("2025-08"))
		}
	}

	first := residents[0]
	first.OwnerName = "Renamed"
	if err := store.UpdateResident(ctx, first); err != nil {
		t.Fatalf("UpdateResident failed: %v", err)
	}
	got, _ := store.GetResident(ctx, testSociety, first.ID)
	if got.OwnerName != "Renamed" {
		t.Errorf("owner name = %s, want Renamed", got.OwnerName)
	}

	if err := store.DeleteResident(ctx, testSociety, first.ID); err != nil {
		t.Fatalf("DeleteResident failed: %v", err)
	}
	if _, err := store.GetResident(ctx, testSociety, first.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestSetMaintenanceStatus_UnrecordedRemovesEntry(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	r := &models.Resident{
		SocietyID: testSociety, FlatNo: "101", OwnerName: "O",
		OwnerContact: "9876543210", Type: models.OccupancyOwner,
	}
	if err := store.CreateResident(ctx, r); err != nil {
		t.Fatalf("CreateResident failed: %v", err)
	}

	if err := store.SetMaintenanceStatus(ctx, testSociety, r.ID, "2025-08", models.StatusPaid); err != nil {
		t.Fatalf("SetMaintenanceStatus failed: %v", err)
	}
	got, _ := store.GetResident(ctx, testSociety, r.ID)
	if got.StatusFor("2025-08") != models.StatusPaid {
		t.Errorf("status = %s, want paid", got.StatusFor("2025-08"))
	}

	if err := store.SetMaintenanceStatus(ctx, testSociety, r.ID, "2025-08", models.StatusUnrecorded); err != nil {
		t.Fatalf("SetMaintenanceStatus failed: %v", err)
	}
	got, _ = store.GetResident(ctx, testSociety, r.ID)
	if _, exists := got.Maintenance["2025-08"]; exists {
		t.Error("unrecorded status should remove the map entry")
	}
}

func TestNotifications_UpsertIsIdempotent(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	n := &models.Notification{
		SocietyID:  testSociety,
		ResidentID: "r1",
		MonthKey:   "2025-08",
		FlatNo:     "101",
		Message:    models.UnpaidMessage("101", "2025-08"),
		Status:     models.NotificationUnread,
	}
	if err := store.UpsertNotification(ctx, n); err != nil {
		t.Fatalf("UpsertNotification failed: %v", err)
	}
	if n.ID != "r1-2025-08" {
		t.Errorf("notification ID = %s, want r1-2025-08", n.ID)
	}

	// Second upsert under the same key must not duplicate.
	if err := store.UpsertNotification(ctx, n); err != nil {
		t.Fatalf("second UpsertNotification failed: %v", err)
	}

	list, err := store.ListNotifications(ctx, testSociety)
	if err != nil {
		t.Fatalf("ListNotifications failed: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("got %d notifications, want 1", len(list))
	}

	// Deleting twice is fine.
	if err := store.DeleteNotification(ctx, testSociety, n.ID); err != nil {
		t.Fatalf("DeleteNotification failed: %v", err)
	}
	if err := store.DeleteNotification(ctx, testSociety, n.ID); err != nil {
		t.Errorf("deleting a missing notification should not fail: %v", err)
	}
}

func TestSettings_DefaultsAndRoundTrip(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	cycle, err := store.GetPaymentCycle(ctx, testSociety)
	if err != nil {
		t.Fatalf("GetPaymentCycle failed: %v", err)
	}
	if cycle != models.DefaultPaymentCycle {
		t.Errorf("unset cycle = %+v, want default %+v", cycle, models.DefaultPaymentCycle)
	}

	if _, ok, err := store.GetMaintenanceAmount(ctx, testSociety); err != nil || ok {
		t.Errorf("unset amount: ok=%v err=%v, want ok=false", ok, err)
	}

	if err := store.SetPaymentCycle(ctx, testSociety, models.PaymentCycle{StartDay: 5, EndDay: 15}); err != nil {
		t.Fatalf("SetPaymentCycle failed: %v", err)
	}
	if err := store.SetMaintenanceAmount(ctx, testSociety, dec("750")); err != nil {
		t.Fatalf("SetMaintenanceAmount failed: %v", err)
	}

	cycle, _ = store.GetPaymentCycle(ctx, testSociety)
	if cycle.StartDay != 5 || cycle.EndDay != 15 {
		t.Errorf("cycle = %+v, want 5-15", cycle)
	}
	amount, ok, _ := store.GetMaintenanceAmount(ctx, testSociety)
	if !ok || !amount.Equal(dec("750")) {
		t.Errorf("amount = %s ok=%v, want 750 true", amount, ok)
	}
}

func TestAdmins_RoundTrip(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	admin := models.NewAdmin(testSociety, "Asha", "asha@example.com", "9876543210", "101", "hash")
	admin.IsSuperAdmin = true
	admin.IsAuthorizedBySuperAdmin = true
	admin.IsEditAccess = true
	if err := store.CreateAdmin(ctx, admin); err != nil {
		t.Fatalf("CreateAdmin failed: %v", err)
	}

	got, err := store.GetAdminByEmail(ctx, "asha@example.com")
	if err != nil {
		t.Fatalf("GetAdminByEmail failed: %v", err)
	}
	if !got.IsSuperAdmin || got.SocietyID != testSociety {
		t.Errorf("admin = %+v", got)
	}

	got.IsEditAccess = false
	if err := store.UpdateAdmin(ctx, got); err != nil {
		t.Fatalf("UpdateAdmin failed: %v", err)
	}
	again, _ := store.GetAdmin(ctx, got.ID)
	if again.IsEditAccess {
		t.Error("edit access should be revoked")
	}
}
