package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/societyhq/societyd/internal/auth"
	"github.com/societyhq/societyd/internal/models"
	"github.com/societyhq/societyd/internal/storage"
)

var (
	// ErrNotAuthorized is returned on sign-in when the super admin has not
	// yet approved the account.
	ErrNotAuthorized = errors.New("account pending super admin authorization")

	// ErrNotSuperAdmin is returned when a role-management call comes from a
	// non-super admin.
	ErrNotSuperAdmin = errors.New("only the super admin can manage admin roles")
)

// AuthService handles admin registration, sign-in, and role management.
type AuthService struct {
	store         storage.Store
	authenticator auth.Authenticator
	tokens        *auth.JWTManager
}

// NewAuthService creates a new AuthService.
func NewAuthService(store storage.Store, authenticator auth.Authenticator, tokens *auth.JWTManager) *AuthService {
	return &AuthService{store: store, authenticator: authenticator, tokens: tokens}
}

// RegisterInput holds a registration request.
type RegisterInput struct {
	Name        string
	Email       string
	Password    string
	Phone       string
	FlatNo      string
	SocietyName string
}

// Register creates an admin account. The first admin of a society creates
// the society itself, becomes its super admin, and seeds the default payment
// cycle and a zero opening balance. Later registrants start unauthorized and
// must be approved before they can sign in.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.Admin, error) {
	societyID := models.SocietyIDFromName(in.SocietyName)
	if societyID == "" {
		return nil, fmt.Errorf("society name is required")
	}

	_, err := s.store.GetSociety(ctx, societyID)
	isFirst := errors.Is(err, storage.ErrNotFound)
	if err != nil && !isFirst {
		return nil, err
	}

	if isFirst {
		society := &models.Society{
			ID:        societyID,
			Name:      in.SocietyName,
			CreatedAt: time.Now().Unix(),
		}
		if err := s.store.CreateSociety(ctx, society); err != nil {
			return nil, err
		}
		if err := s.store.SetPaymentCycle(ctx, societyID, models.DefaultPaymentCycle); err != nil {
			return nil, err
		}
		if err := s.store.ApplyBalance(ctx, societyID, storage.BalanceEntry{
			MonthKey: models.CurrentMonthKey(),
			Type:     models.EntryInitial,
			Amount:   decimal.Zero,
		}); err != nil {
			return nil, err
		}
		slog.Info("Society created", "society_id", societyID, "name", in.SocietyName)
	}

	admin := models.NewAdmin(societyID, in.Name, in.Email, in.Phone, in.FlatNo, "")
	if isFirst {
		admin.IsSuperAdmin = true
		admin.IsAuthorizedBySuperAdmin = true
		admin.IsEditAccess = true
	}

	if err := s.authenticator.Register(ctx, admin, in.Password); err != nil {
		return nil, err
	}

	slog.Info("Admin registered", "society_id", societyID, "admin_id", admin.ID, "super_admin", admin.IsSuperAdmin)
	return admin, nil
}

// Login authenticates an admin and returns a signed session token. Admins
// the super admin has not approved cannot sign in.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *models.Admin, error) {
	admin, err := s.authenticator.Authenticate(ctx, email, password)
	if err != nil {
		return "", nil, err
	}
	if !admin.IsAuthorizedBySuperAdmin {
		return "", nil, ErrNotAuthorized
	}

	token, err := s.tokens.Generate(admin)
	if err != nil {
		return "", nil, err
	}
	slog.Info("Admin signed in", "society_id", admin.SocietyID, "admin_id", admin.ID)
	return token, admin, nil
}

// ListAdmins returns every admin of the society.
func (s *AuthService) ListAdmins(ctx context.Context, societyID string) ([]*models.Admin, error) {
	return s.store.ListAdmins(ctx, societyID)
}

// SetAuthorized grants or revokes a fellow admin's sign-in approval. Only the
// super admin may call this. Revoking approval also revokes edit access.
func (s *AuthService) SetAuthorized(ctx context.Context, actorID, targetID string, authorized bool) error {
	_, target, err := s.superAdminAndTarget(ctx, actorID, targetID)
	if err != nil {
		return err
	}

	target.IsAuthorizedBySuperAdmin = authorized
	if !authorized {
		target.IsEditAccess = false
	}
	target.UpdatedAt = time.Now().Unix()
	return s.store.UpdateAdmin(ctx, target)
}

// SetEditAccess grants or revokes a fellow admin's edit access. Only the
// super admin may call this, and only for already-authorized admins.
func (s *AuthService) SetEditAccess(ctx context.Context, actorID, targetID string, editAccess bool) error {
	_, target, err := s.superAdminAndTarget(ctx, actorID, targetID)
	if err != nil {
		return err
	}
	if editAccess && !target.IsAuthorizedBySuperAdmin {
		return fmt.Errorf("admin %s must be authorized before granting edit access", targetID)
	}

	target.IsEditAccess = editAccess
	target.UpdatedAt = time.Now().Unix()
	return s.store.UpdateAdmin(ctx, target)
}

// SurrenderSuperAdmin transfers the super admin role to another authorized
// admin of the same society.
func (s *AuthService) SurrenderSuperAdmin(ctx context.Context, actorID, targetID string) error {
	actor, target, err := s.superAdminAndTarget(ctx, actorID, targetID)
	if err != nil {
		return err
	}
	if !target.IsAuthorizedBySuperAdmin {
		return fmt.Errorf("admin %s must be authorized before taking over as super admin", targetID)
	}

	now := time.Now().Unix()
	actor.IsSuperAdmin = false
	actor.UpdatedAt = now
	target.IsSuperAdmin = true
	target.IsEditAccess = true
	target.UpdatedAt = now

	if err := s.store.UpdateAdmin(ctx, target); err != nil {
		return err
	}
	if err := s.store.UpdateAdmin(ctx, actor); err != nil {
		return err
	}
	slog.Info("Super admin transferred", "society_id", actor.SocietyID, "from", actorID, "to", targetID)
	return nil
}

// superAdminAndTarget loads both admins and checks that the actor is the
// super admin of the target's society.
func (s *AuthService) superAdminAndTarget(ctx context.Context, actorID, targetID string) (*models.Admin, *models.Admin, error) {
	actor, err := s.store.GetAdmin(ctx, actorID)
	if err != nil {
		return nil, nil, err
	}
	if !actor.IsSuperAdmin {
		return nil, nil, ErrNotSuperAdmin
	}
	if actorID == targetID {
		return nil, nil, fmt.Errorf("super admin cannot change their own role")
	}

	target, err := s.store.GetAdmin(ctx, targetID)
	if err != nil {
		return nil, nil, err
	}
	if target.SocietyID != actor.SocietyID {
		return nil, nil, fmt.Errorf("admin %s belongs to a different society", targetID)
	}
	return actor, target, nil
}
