// Package sheets implements spreadsheet export and import of a society's
// residents, transactions, and balances.
package sheets

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrUnknownHeader is returned when an imported sheet carries a column the
// importer does not recognize. The whole import is aborted rather than
// silently dropping data.
var ErrUnknownHeader = errors.New("unrecognized column header")

// headerAliases maps lowercased header spellings to canonical field names.
// Month columns ("YYYY-MM") are recognized separately.
var headerAliases = map[string]string{
	// residents
	"flatno":      "flatNo",
	"flat no":     "flatNo",
	"flat number": "flatNo",
	"flat":        "flatNo",

	"ownername":  "ownerName",
	"owner name": "ownerName",

	"ownercontact":  "ownerContact",
	"owner contact": "ownerContact",
	"ownerphone":    "ownerContact",
	"owner phone":   "ownerContact",

	"tenantname":  "tenantName",
	"tenant name": "tenantName",

	"tenantcontact":  "tenantContact",
	"tenant contact": "tenantContact",
	"tenantphone":    "tenantContact",
	"tenant phone":   "tenantContact",

	"type": "type",

	"createdat":  "createdAt",
	"created at": "createdAt",
	"updatedat":  "updatedAt",
	"updated at": "updatedAt",

	// balances
	"balance":       "balance",
	"balanceamount": "balance",
	"credits":       "credit",
	"credit":        "credit",
	"debits":        "debit",
	"debit":         "debit",

	"carryforward":  "carryForward",
	"carry forward": "carryForward",

	"monthkey":  "monthKey",
	"month key": "monthKey",
	"month":     "monthKey",

	// transactions
	"amount": "amount",

	"description": "description",
	"note":        "description",
	"details":     "description",
	"desc":        "description",

	"date": "date",

	"ismonthlymaintenance":   "isMonthlyMaintenance",
	"is monthly maintenance": "isMonthlyMaintenance",

	"ismultipleresidents":     "isMultipleResidents",
	"is multiple residents":   "isMultipleResidents",
	"expense for (residents)": "expenseFor",
	"expensefor":              "expenseFor",

	"residentid":  "residentId",
	"resident id": "residentId",
	"payerid":     "residentId",
	"payer id":    "residentId",
}

var monthHeaderPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

var nonAlnumPattern = regexp.MustCompile(`[^a-z0-9]`)

// normalizeHeader maps a raw cell to its canonical field name. Month columns
// pass through as-is. An unrecognized header fails the import.
func normalizeHeader(raw string) (string, error) {
	key := strings.TrimSpace(raw)
	if key == "" {
		return "", fmt.Errorf("%w: empty header cell", ErrUnknownHeader)
	}
	lower := strings.ToLower(key)

	if monthHeaderPattern.MatchString(lower) {
		return lower, nil
	}
	if canonical, ok := headerAliases[lower]; ok {
		return canonical, nil
	}
	if canonical, ok := headerAliases[nonAlnumPattern.ReplaceAllString(lower, "")]; ok {
		return canonical, nil
	}
	return "", fmt.Errorf("%w: %q, use the sample template", ErrUnknownHeader, key)
}

func normalizeHeaders(raw []string) ([]string, error) {
	headers := make([]string, 0, len(raw))
	for _, cell := range raw {
		h, err := normalizeHeader(cell)
		if err != nil {
			return nil, err
		}
		headers = append(headers, h)
	}
	return headers, nil
}
