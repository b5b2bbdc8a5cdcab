package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/societyhq/societyd/internal/models"
	"github.com/societyhq/societyd/internal/storage"
)

// ResidentService manages the resident registry.
type ResidentService struct {
	store storage.Store

	now func() time.Time
}

// NewResidentService creates a new ResidentService with the given storage
// backend.
func NewResidentService(store storage.Store) *ResidentService {
	return &ResidentService{store: store, now: time.Now}
}

// ResidentInput holds the caller-supplied fields for a create or update.
type ResidentInput struct {
	FlatNo        string
	OwnerName     string
	OwnerContact  string
	Type          models.OccupancyType
	TenantName    string
	TenantContact string
}

// Create registers a new resident. The current month starts unpaid so the
// flat shows up in dues tracking immediately.
func (s *ResidentService) Create(ctx context.Context, societyID string, in ResidentInput) (*models.Resident, error) {
	now := s.now()
	resident := &models.Resident{
		ID:            uuid.New().String(),
		SocietyID:     societyID,
		FlatNo:        in.FlatNo,
		OwnerName:     in.OwnerName,
		OwnerContact:  in.OwnerContact,
		Type:          in.Type,
		TenantName:    in.TenantName,
		TenantContact: in.TenantContact,
		Maintenance: map[models.MonthKey]models.MaintenanceStatus{
			models.MonthKeyOf(now): models.StatusUnpaid,
		},
		CreatedAt: now.Unix(),
	}
	if err := resident.Validate(); err != nil {
		return nil, err
	}

	if err := s.store.CreateResident(ctx, resident); err != nil {
		return nil, err
	}
	slog.Info("Resident created", "society_id", societyID, "resident_id", resident.ID, "flat_no", resident.FlatNo)
	return resident, nil
}

// Get returns one resident with their full dues history.
func (s *ResidentService) Get(ctx context.Context, societyID, residentID string) (*models.Resident, error) {
	return s.store.GetResident(ctx, societyID, residentID)
}

// List returns the society's residents sorted by flat number.
func (s *ResidentService) List(ctx context.Context, societyID string) ([]*models.Resident, error) {
	return s.store.ListResidents(ctx, societyID)
}

// Update replaces a resident's registry fields. Dues history is untouched.
func (s *ResidentService) Update(ctx context.Context, societyID, residentID string, in ResidentInput) (*models.Resident, error) {
	resident, err := s.store.GetResident(ctx, societyID, residentID)
	if err != nil {
		return nil, err
	}

	resident.FlatNo = in.FlatNo
	resident.OwnerName = in.OwnerName
	resident.OwnerContact = in.OwnerContact
	resident.Type = in.Type
	resident.TenantName = in.TenantName
	resident.TenantContact = in.TenantContact
	if resident.Type == models.OccupancyOwner {
		resident.TenantName = ""
		resident.TenantContact = ""
	}
	resident.UpdatedAt = s.now().Unix()

	if err := resident.Validate(); err != nil {
		return nil, err
	}
	if err := s.store.UpdateResident(ctx, resident); err != nil {
		return nil, err
	}
	return resident, nil
}

// Delete removes a resident from the registry. Ledger entries that reference
// the resident are kept; the history stays auditable.
func (s *ResidentService) Delete(ctx context.Context, societyID, residentID string) error {
	if err := s.store.DeleteResident(ctx, societyID, residentID); err != nil {
		return err
	}
	slog.Info("Resident deleted", "society_id", societyID, "resident_id", residentID)
	return nil
}

// SetStatus records a resident's dues status for a month, enforcing the
// allowed transitions. StatusUnrecorded clears the entry.
func (s *ResidentService) SetStatus(ctx context.Context, societyID, residentID string, month models.MonthKey, status models.MaintenanceStatus) error {
	resident, err := s.store.GetResident(ctx, societyID, residentID)
	if err != nil {
		return err
	}
	current := resident.StatusFor(month)
	if !current.CanTransition(status) {
		return models.TransitionError(current, status)
	}
	return s.store.SetMaintenanceStatus(ctx, societyID, residentID, month, status)
}
