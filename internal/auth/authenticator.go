package auth

import (
	"context"

	"github.com/societyhq/societyd/internal/models"
)

// Authenticator defines the interface for authentication implementations.
// This abstraction allows swapping between different auth methods (password,
// passkeys, OAuth, etc.) without changing the service layer code.
type Authenticator interface {
	// Register stores the admin account with the given credential.
	// The admin's PasswordHash field is populated by the implementation.
	Register(ctx context.Context, admin *models.Admin, credential string) error

	// Authenticate verifies the credentials and returns the admin if
	// successful.
	Authenticate(ctx context.Context, email, credential string) (*models.Admin, error)

	// ValidateCredential checks if the credential meets the
	// implementation's requirements.
	ValidateCredential(credential string) error
}
