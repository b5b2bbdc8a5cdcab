package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// MonthlyBalance holds one month's money aggregates.
//
// Invariant: Balance = CarryForward + Credit - Debit. CarryForward is captured
// once, from the previous month's closing balance, when the month's ledger is
// first touched; it is never recomputed if an earlier month changes later.
type MonthlyBalance struct {
	MonthKey     MonthKey
	Credit       decimal.Decimal
	Debit        decimal.Decimal
	CarryForward decimal.Decimal
	Balance      decimal.Decimal
}

// ZeroMonthlyBalance returns the zero-valued record used for months that have
// no ledger activity yet.
func ZeroMonthlyBalance(month MonthKey) MonthlyBalance {
	return MonthlyBalance{
		MonthKey:     month,
		Credit:       decimal.Zero,
		Debit:        decimal.Zero,
		CarryForward: decimal.Zero,
		Balance:      decimal.Zero,
	}
}

// Reconciles reports whether the balance invariant holds.
func (b MonthlyBalance) Reconciles() bool {
	return b.Balance.Equal(b.CarryForward.Add(b.Credit).Sub(b.Debit))
}

// GlobalBalance is the society's single running total, moved by every
// transaction's delta independent of month boundaries.
type GlobalBalance struct {
	Total decimal.Decimal
}

// PaymentCycle is the day-of-month window during which dues are expected.
// After EndDay passes, the unpaid sweep may run for the current month.
type PaymentCycle struct {
	StartDay int
	EndDay   int
}

// DefaultPaymentCycle is used for societies that never configured a cycle.
var DefaultPaymentCycle = PaymentCycle{StartDay: 1, EndDay: 10}

// Validate checks the window bounds.
func (c PaymentCycle) Validate() error {
	if c.StartDay < 1 || c.StartDay > 31 {
		return fmt.Errorf("start day must be between 1 and 31, got %d", c.StartDay)
	}
	if c.EndDay < 1 || c.EndDay > 31 {
		return fmt.Errorf("end day must be between 1 and 31, got %d", c.EndDay)
	}
	if c.StartDay > c.EndDay {
		return fmt.Errorf("start day %d is after end day %d", c.StartDay, c.EndDay)
	}
	return nil
}

// Closed reports whether the cycle window has passed for the given
// day of month.
func (c PaymentCycle) Closed(dayOfMonth int) bool {
	return dayOfMonth > c.EndDay
}
