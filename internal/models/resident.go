package models

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// OccupancyType distinguishes owner-occupied flats from rented ones.
type OccupancyType string

const (
	OccupancyOwner  OccupancyType = "owner"
	OccupancyTenant OccupancyType = "tenant"
)

// Resident represents one flat in a society.
type Resident struct {
	// ID is the unique identifier for the resident (UUID format).
	ID string

	// SocietyID scopes the resident to its society.
	SocietyID string

	// FlatNo is the flat number, an optional alphabetic prefix followed by
	// digits (e.g. "101", "A2", "B12"). Residents sort by prefix first,
	// then by the numeric suffix.
	FlatNo string

	// OwnerName and OwnerContact identify the flat's owner.
	// Contact numbers are 10 digits.
	OwnerName    string
	OwnerContact string

	// Type is owner or tenant. Tenant name/contact are required only when
	// the flat is rented out.
	Type          OccupancyType
	TenantName    string
	TenantContact string

	// Maintenance maps month keys to dues statuses. A missing key is
	// StatusUnrecorded.
	Maintenance map[MonthKey]MaintenanceStatus

	// CreatedAt and UpdatedAt are Unix timestamps.
	CreatedAt int64
	UpdatedAt int64
}

var contactPattern = regexp.MustCompile(`^\d{10}$`)

// Validate checks the resident's fields before a create or update.
func (r *Resident) Validate() error {
	if strings.TrimSpace(r.FlatNo) == "" {
		return fmt.Errorf("flat number is required")
	}
	if strings.TrimSpace(r.OwnerName) == "" {
		return fmt.Errorf("owner name is required")
	}
	if !contactPattern.MatchString(r.OwnerContact) {
		return fmt.Errorf("owner contact must be a 10-digit number")
	}
	switch r.Type {
	case OccupancyOwner:
	case OccupancyTenant:
		if strings.TrimSpace(r.TenantName) == "" {
			return fmt.Errorf("tenant name is required for tenant-occupied flats")
		}
		if !contactPattern.MatchString(r.TenantContact) {
			return fmt.Errorf("tenant contact must be a 10-digit number")
		}
	default:
		return fmt.Errorf("occupancy type must be %q or %q", OccupancyOwner, OccupancyTenant)
	}
	return nil
}

// StatusFor returns the resident's dues status for the given month.
// A missing entry is StatusUnrecorded.
func (r *Resident) StatusFor(month MonthKey) MaintenanceStatus {
	if r.Maintenance == nil {
		return StatusUnrecorded
	}
	return r.Maintenance[month]
}

var flatNoPattern = regexp.MustCompile(`^([a-zA-Z]*)([0-9]*)$`)

// CompareFlatNos orders flat numbers by alphabetic prefix, then numeric
// suffix. Purely numeric flats have an empty prefix and therefore sort before
// prefixed ones by their numeric value: "101" < "A2" < "A10" < "B2".
func CompareFlatNos(a, b string) int {
	alphaA, numA := parseFlatNo(a)
	alphaB, numB := parseFlatNo(b)
	if alphaA != alphaB {
		if alphaA < alphaB {
			return -1
		}
		return 1
	}
	switch {
	case numA < numB:
		return -1
	case numA > numB:
		return 1
	}
	return 0
}

func parseFlatNo(flatNo string) (string, int) {
	m := flatNoPattern.FindStringSubmatch(flatNo)
	if m == nil {
		n, _ := strconv.Atoi(flatNo)
		return "", n
	}
	n, _ := strconv.Atoi(m[2])
	return strings.ToUpper(m[1]), n
}
