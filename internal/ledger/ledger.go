// Package ledger implements the pure arithmetic behind the balance
// aggregates: signed deltas, per-column contributions, and the application of
// an entry to a monthly balance record. Keeping this free of storage concerns
// makes the reconciliation invariant directly testable.
package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/societyhq/societyd/internal/models"
)

// Delta returns the signed effect of an entry on a running balance.
// A credit adds, a debit subtracts, and an initial entry is zero; undo
// negates the effect so that reversing an entry restores the prior state
// exactly.
func Delta(typ models.EntryType, amount decimal.Decimal, undo bool) decimal.Decimal {
	var d decimal.Decimal
	switch typ {
	case models.EntryCredit:
		d = amount
	case models.EntryDebit:
		d = amount.Neg()
	default: // initial
		return decimal.Zero
	}
	if undo {
		return d.Neg()
	}
	return d
}

// Contributions returns the signed amounts an entry adds to the monthly
// credit and debit columns. Undo subtracts what was previously added, so a
// reversed credit shows up as a negative credit contribution rather than a
// debit.
func Contributions(typ models.EntryType, amount decimal.Decimal, undo bool) (credit, debit decimal.Decimal) {
	credit, debit = decimal.Zero, decimal.Zero
	signed := amount
	if undo {
		signed = amount.Neg()
	}
	switch typ {
	case models.EntryCredit:
		credit = signed
	case models.EntryDebit:
		debit = signed
	}
	return credit, debit
}

// Apply folds an entry into an existing monthly balance. CarryForward is
// untouched; it was fixed when the month was opened.
func Apply(b models.MonthlyBalance, typ models.EntryType, amount decimal.Decimal, undo bool) models.MonthlyBalance {
	credit, debit := Contributions(typ, amount, undo)
	b.Credit = b.Credit.Add(credit)
	b.Debit = b.Debit.Add(debit)
	b.Balance = b.Balance.Add(Delta(typ, amount, undo))
	return b
}

// Open creates the monthly balance record for a month's first entry,
// capturing the previous month's closing balance as the carry-forward.
func Open(month models.MonthKey, carryForward decimal.Decimal, typ models.EntryType, amount decimal.Decimal, undo bool) models.MonthlyBalance {
	credit, debit := Contributions(typ, amount, undo)
	return models.MonthlyBalance{
		MonthKey:     month,
		Credit:       credit,
		Debit:        debit,
		CarryForward: carryForward,
		Balance:      carryForward.Add(Delta(typ, amount, undo)),
	}
}
