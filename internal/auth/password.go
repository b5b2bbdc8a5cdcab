package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/societyhq/societyd/internal/models"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrEmailExists        = errors.New("email already registered")
)

// AdminStorage defines the interface for admin persistence operations.
// This allows the authenticator to be independent of the storage implementation.
type AdminStorage interface {
	CreateAdmin(ctx context.Context, admin *models.Admin) error
	GetAdminByEmail(ctx context.Context, email string) (*models.Admin, error)
	GetAdmin(ctx context.Context, adminID string) (*models.Admin, error)
}

// PasswordAuthenticator implements password-based authentication using bcrypt.
type PasswordAuthenticator struct {
	storage AdminStorage
}

// NewPasswordAuthenticator creates a new password-based authenticator.
func NewPasswordAuthenticator(storage AdminStorage) *PasswordAuthenticator {
	return &PasswordAuthenticator{
		storage: storage,
	}
}

// ValidateCredential checks if the password meets minimum requirements.
func (a *PasswordAuthenticator) ValidateCredential(credential string) error {
	if len(credential) < 8 {
		return ErrWeakPassword
	}
	return nil
}

// Register persists the admin with a hashed password.
func (a *PasswordAuthenticator) Register(ctx context.Context, admin *models.Admin, credential string) error {
	// Validate password strength
	if err := a.ValidateCredential(credential); err != nil {
		return err
	}

	// Check if email already exists
	existing, err := a.storage.GetAdminByEmail(ctx, admin.Email)
	if err == nil && existing != nil {
		return ErrEmailExists
	}

	// Hash the password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(credential), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	admin.PasswordHash = string(hashedPassword)

	// Save to storage
	if err := a.storage.CreateAdmin(ctx, admin); err != nil {
		return fmt.Errorf("failed to create admin: %w", err)
	}

	return nil
}

// Authenticate verifies the email and password, returning the admin if valid.
func (a *PasswordAuthenticator) Authenticate(ctx context.Context, email, credential string) (*models.Admin, error) {
	// Get admin by email
	admin, err := a.storage.GetAdminByEmail(ctx, email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	// Compare password hash
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(credential)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return admin, nil
}
