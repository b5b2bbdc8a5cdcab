package sheets

import (
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/societyhq/societyd/internal/models"
	"github.com/societyhq/societyd/internal/storage"
)

// Exporter writes a society's data to an xlsx workbook with three sheets:
// Residents (one dues-status column per month), Transactions, and Balances.
type Exporter struct {
	store storage.Store

	// minMonth clamps the lower bound of the export range. Months before
	// it predate reliable records. Zero means no clamp.
	minMonth models.MonthKey
}

// NewExporter creates an Exporter. minMonth may be zero.
func NewExporter(store storage.Store, minMonth models.MonthKey) *Exporter {
	return &Exporter{store: store, minMonth: minMonth}
}

// Export builds the workbook for the month range [from, to], both inclusive.
// The caller owns the returned file and should Close it.
func (e *Exporter) Export(ctx context.Context, societyID string, from, to models.MonthKey) (*excelize.File, error) {
	if !e.minMonth.IsZero() && from.Before(e.minMonth) {
		from = e.minMonth
	}
	if to.Before(from) {
		return nil, fmt.Errorf("export range is empty: %s to %s", from, to)
	}

	months := monthRange(from, to)
	f := excelize.NewFile()

	if err := e.writeResidents(ctx, f, societyID, months); err != nil {
		f.Close()
		return nil, err
	}
	if err := e.writeTransactions(ctx, f, societyID, months); err != nil {
		f.Close()
		return nil, err
	}
	if err := e.writeBalances(ctx, f, societyID, months); err != nil {
		f.Close()
		return nil, err
	}

	// excelize creates a default "Sheet1"; drop it once real sheets exist.
	f.DeleteSheet("Sheet1")
	return f, nil
}

func monthRange(from, to models.MonthKey) []models.MonthKey {
	var months []models.MonthKey
	for cur := from; !to.Before(cur); cur = cur.Next() {
		months = append(months, cur)
	}
	return months
}

func (e *Exporter) writeResidents(ctx context.Context, f *excelize.File, societyID string, months []models.MonthKey) error {
	const sheet = "Residents"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
	}

	header := []interface{}{"Flat No", "Owner Name", "Owner Contact", "Tenant Name", "Tenant Contact", "Type"}
	for _, month := range months {
		header = append(header, month.String())
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	residents, err := e.store.ListResidents(ctx, societyID)
	if err != nil {
		return err
	}

	for i, r := range residents {
		tenantName, tenantContact := r.TenantName, r.TenantContact
		if tenantName == "" {
			tenantName = "N/A"
		}
		if tenantContact == "" {
			tenantContact = "N/A"
		}
		row := []interface{}{r.FlatNo, r.OwnerName, r.OwnerContact, tenantName, tenantContact, string(r.Type)}
		for _, month := range months {
			status := r.StatusFor(month)
			if status == models.StatusUnrecorded {
				status = models.StatusUnpaid
			}
			row = append(row, status.String())
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write resident row: %w", err)
		}
	}
	return nil
}

func (e *Exporter) writeTransactions(ctx context.Context, f *excelize.File, societyID string, months []models.MonthKey) error {
	const sheet = "Transactions"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
	}

	header := []interface{}{"Month", "Type", "Amount", "Description", "Date", "Expense For (Residents)"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	rowNum := 2
	for _, month := range months {
		txns, err := e.store.ListTransactions(ctx, societyID, month)
		if err != nil {
			return err
		}
		for _, txn := range txns {
			scope := "Single"
			if txn.IsMultipleResidents {
				scope = "All"
			}
			row := []interface{}{
				txn.MonthKey.String(),
				string(txn.Type),
				txn.Amount.String(),
				txn.Description,
				time.Unix(txn.CreatedAt, 0).UTC().Format("02 Jan 2006"),
				scope,
			}
			cell := fmt.Sprintf("A%d", rowNum)
			if err := f.SetSheetRow(sheet, cell, &row); err != nil {
				return fmt.Errorf("failed to write transaction row: %w", err)
			}
			rowNum++
		}
	}
	return nil
}

func (e *Exporter) writeBalances(ctx context.Context, f *excelize.File, societyID string, months []models.MonthKey) error {
	const sheet = "Balances"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
	}

	header := []interface{}{"Month", "Credits", "Debits", "Carry Forward", "Balance"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, month := range months {
		balance, err := e.store.GetMonthlyBalance(ctx, societyID, month)
		if err != nil {
			return err
		}
		row := []interface{}{
			month.String(),
			balance.Credit.String(),
			balance.Debit.String(),
			balance.CarryForward.String(),
			balance.Balance.String(),
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write balance row: %w", err)
		}
	}
	return nil
}
