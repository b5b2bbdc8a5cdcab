package sheets

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/societyhq/societyd/internal/models"
	"github.com/societyhq/societyd/internal/storage"
)

// Importer loads residents, balances, and transactions from an xlsx workbook.
// Sheet type is detected from the (normalized) header row, so sheet names and
// order do not matter. Any unrecognized column aborts the whole import.
//
// Balance rows overwrite the month's aggregates and transaction rows are
// inserted raw: the workbook carries its own totals, so folding imported
// entries into the balances again would double-count them.
type Importer struct {
	store storage.Store
}

// NewImporter creates an Importer with the given storage backend.
func NewImporter(store storage.Store) *Importer {
	return &Importer{store: store}
}

// SheetResult reports what one worksheet contributed.
type SheetResult struct {
	Sheet    string `json:"sheet"`
	Type     string `json:"type"`
	Imported int    `json:"imported"`
}

// Import reads the workbook and loads every recognizable sheet.
func (im *Importer) Import(ctx context.Context, societyID string, r io.Reader) ([]SheetResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	var results []SheetResult
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
		}
		if len(rows) < 2 {
			continue
		}

		headers, err := normalizeHeaders(rows[0])
		if err != nil {
			return nil, fmt.Errorf("sheet %s: %w", sheet, err)
		}

		var result SheetResult
		switch {
		case contains(headers, "flatNo"):
			result, err = im.importResidents(ctx, societyID, sheet, headers, rows[1:])
		case contains(headers, "balance"):
			result, err = im.importBalances(ctx, societyID, sheet, headers, rows[1:])
		case contains(headers, "amount"):
			result, err = im.importTransactions(ctx, societyID, sheet, headers, rows[1:])
		default:
			slog.Warn("Skipping unrecognized sheet", "sheet", sheet)
			continue
		}
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, nil
}

func contains(headers []string, name string) bool {
	for _, h := range headers {
		if h == name {
			return true
		}
	}
	return false
}

func cellAt(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// notApplicable treats "N/A"/"NA" placeholders as empty.
func notApplicable(v string) bool {
	lower := strings.ToLower(v)
	return lower == "n/a" || lower == "na"
}

func (im *Importer) importResidents(ctx context.Context, societyID, sheet string, headers []string, rows [][]string) (SheetResult, error) {
	imported := 0
	for _, row := range rows {
		resident := &models.Resident{
			ID:          uuid.New().String(),
			SocietyID:   societyID,
			Maintenance: make(map[models.MonthKey]models.MaintenanceStatus),
			CreatedAt:   time.Now().Unix(),
		}

		for i, h := range headers {
			val := cellAt(row, i)
			if monthHeaderPattern.MatchString(h) {
				status := models.StatusUnpaid
				if strings.EqualFold(val, "paid") {
					status = models.StatusPaid
				}
				resident.Maintenance[models.MonthKey(h)] = status
				continue
			}
			switch h {
			case "flatNo":
				resident.FlatNo = val
			case "ownerName":
				resident.OwnerName = val
			case "ownerContact":
				resident.OwnerContact = val
			case "tenantName":
				if !notApplicable(val) {
					resident.TenantName = val
				}
			case "tenantContact":
				if !notApplicable(val) {
					resident.TenantContact = val
				}
			case "type":
				resident.Type = models.OccupancyType(strings.ToLower(val))
			}
		}

		if resident.FlatNo == "" {
			continue
		}
		if err := resident.Validate(); err != nil {
			return SheetResult{}, fmt.Errorf("sheet %s, flat %q: %w", sheet, resident.FlatNo, err)
		}
		if err := im.store.CreateResident(ctx, resident); err != nil {
			return SheetResult{}, fmt.Errorf("sheet %s, flat %q: %w", sheet, resident.FlatNo, err)
		}
		imported++
	}
	return SheetResult{Sheet: sheet, Type: "residents", Imported: imported}, nil
}

func (im *Importer) importBalances(ctx context.Context, societyID, sheet string, headers []string, rows [][]string) (SheetResult, error) {
	imported := 0
	for _, row := range rows {
		var monthStr string
		balance := models.MonthlyBalance{
			Credit:       decimal.Zero,
			Debit:        decimal.Zero,
			CarryForward: decimal.Zero,
			Balance:      decimal.Zero,
		}

		for i, h := range headers {
			val := cellAt(row, i)
			switch h {
			case "monthKey":
				monthStr = val
			case "credit":
				balance.Credit = parseAmount(val)
			case "debit":
				balance.Debit = parseAmount(val)
			case "carryForward":
				balance.CarryForward = parseAmount(val)
			case "balance":
				balance.Balance = parseAmount(val)
			}
		}

		if monthStr == "" {
			continue
		}
		month, err := models.ParseMonthKey(monthStr)
		if err != nil {
			return SheetResult{}, fmt.Errorf("sheet %s: %w", sheet, err)
		}
		balance.MonthKey = month

		if err := im.store.PutMonthlyBalance(ctx, societyID, balance); err != nil {
			return SheetResult{}, fmt.Errorf("sheet %s, month %s: %w", sheet, month, err)
		}
		imported++
	}
	return SheetResult{Sheet: sheet, Type: "balances", Imported: imported}, nil
}

func (im *Importer) importTransactions(ctx context.Context, societyID, sheet string, headers []string, rows [][]string) (SheetResult, error) {
	imported := 0
	for _, row := range rows {
		var monthStr string
		txn := &models.Transaction{
			SocietyID: societyID,
			Amount:    decimal.Zero,
		}

		for i, h := range headers {
			val := cellAt(row, i)
			switch h {
			case "monthKey":
				monthStr = val
			case "type":
				txn.Type = models.EntryType(strings.ToLower(val))
			case "amount":
				txn.Amount = parseAmount(val)
			case "description":
				txn.Description = val
			case "date":
				txn.CreatedAt = parseDate(val)
			case "isMonthlyMaintenance":
				txn.IsMonthlyMaintenance = parseBool(val)
			case "residentId":
				if val != "" && !notApplicable(val) {
					txn.ResidentIDs = []string{val}
				}
			}
		}

		if monthStr == "" {
			continue
		}
		month, err := models.ParseMonthKey(monthStr)
		if err != nil {
			return SheetResult{}, fmt.Errorf("sheet %s: %w", sheet, err)
		}
		txn.MonthKey = month

		if err := im.store.PutTransaction(ctx, txn); err != nil {
			return SheetResult{}, fmt.Errorf("sheet %s, month %s: %w", sheet, month, err)
		}
		imported++
	}
	return SheetResult{Sheet: sheet, Type: "transactions", Imported: imported}, nil
}

func parseAmount(val string) decimal.Decimal {
	if val == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(val)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func parseBool(val string) bool {
	lower := strings.ToLower(val)
	return lower == "true" || lower == "yes"
}

var dateLayouts = []string{
	"02 Jan 2006",
	"2006-01-02",
	"01/02/2006",
	time.RFC3339,
}

func parseDate(val string) int64 {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, val); err == nil {
			return t.Unix()
		}
	}
	return time.Now().Unix()
}
