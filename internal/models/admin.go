package models

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Admin is a society administrator account.
//
// Role flags gate mutations: the first admin of a society becomes the super
// admin; later registrants must be authorized by the super admin before they
// can sign in, and need edit access before they can mutate anything.
type Admin struct {
	// ID is the unique identifier for the admin (UUID format).
	ID string

	// SocietyID scopes the admin to its society.
	SocietyID string

	Name   string
	Email  string
	Phone  string
	FlatNo string

	// PasswordHash is the bcrypt hash of the admin's password.
	PasswordHash string

	// IsSuperAdmin marks the society's first admin. Exactly one per
	// society, unless surrendered.
	IsSuperAdmin bool

	// IsAuthorizedBySuperAdmin gates sign-in for later registrants.
	IsAuthorizedBySuperAdmin bool

	// IsEditAccess gates mutating operations.
	IsEditAccess bool

	// CreatedAt and UpdatedAt are Unix timestamps.
	CreatedAt int64
	UpdatedAt int64
}

// NewAdmin creates an admin with a fresh ID and creation timestamp.
func NewAdmin(societyID, name, email, phone, flatNo, passwordHash string) *Admin {
	return &Admin{
		ID:           uuid.New().String(),
		SocietyID:    societyID,
		Name:         name,
		Email:        email,
		Phone:        phone,
		FlatNo:       flatNo,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().Unix(),
	}
}

// Society is the top-level tenant scoping all residents, transactions,
// balances, and settings.
type Society struct {
	// ID is derived from the name; see SocietyIDFromName.
	ID string

	Name string

	// CreatedAt is the Unix timestamp when the society was registered.
	CreatedAt int64
}

var whitespacePattern = regexp.MustCompile(`\s+`)

// SocietyIDFromName derives a stable, URL-safe society ID from a display
// name: "Shyam Kunj" -> "shyam-kunj".
func SocietyIDFromName(name string) string {
	return strings.ToLower(whitespacePattern.ReplaceAllString(strings.TrimSpace(name), "-"))
}
