package models

import (
	"fmt"
	"regexp"
	"time"
)

// MonthKey identifies a billing month as a zero-padded "YYYY-MM" string.
// The zero padding makes lexicographic comparison equal to chronological
// comparison, which the store relies on for sorting.
type MonthKey string

var monthKeyPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// ParseMonthKey validates s and returns it as a MonthKey.
func ParseMonthKey(s string) (MonthKey, error) {
	if !monthKeyPattern.MatchString(s) {
		return "", fmt.Errorf("invalid month key %q: want YYYY-MM", s)
	}
	return MonthKey(s), nil
}

// MonthKeyOf returns the month key for the month containing t.
func MonthKeyOf(t time.Time) MonthKey {
	return MonthKey(fmt.Sprintf("%04d-%02d", t.Year(), int(t.Month())))
}

// CurrentMonthKey returns the month key for the current month.
func CurrentMonthKey() MonthKey {
	return MonthKeyOf(time.Now())
}

// Time returns midnight on the first day of the month, in UTC.
func (m MonthKey) Time() time.Time {
	t, err := time.Parse("2006-01", string(m))
	if err != nil {
		return time.Time{}
	}
	return t
}

// Prev returns the month key for the preceding month.
func (m MonthKey) Prev() MonthKey {
	return MonthKeyOf(m.Time().AddDate(0, -1, 0))
}

// Next returns the month key for the following month.
func (m MonthKey) Next() MonthKey {
	return MonthKeyOf(m.Time().AddDate(0, 1, 0))
}

// Before reports whether m is chronologically before other.
func (m MonthKey) Before(other MonthKey) bool {
	return string(m) < string(other)
}

func (m MonthKey) String() string {
	return string(m)
}

// IsZero reports whether m is the empty value.
func (m MonthKey) IsZero() bool {
	return m == ""
}
