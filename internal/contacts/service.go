// Package contacts manages the people deals are attached to. Email and phone
// are encrypted at rest.
package contacts

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/hugh/dealflow/internal/apperr"
	"github.com/hugh/dealflow/internal/database/models"
	"github.com/hugh/dealflow/internal/permission"
	"github.com/hugh/dealflow/internal/tenancy"
)

var (
	ErrContactNotFound      = apperr.NotFound("Contact not found")
	ErrContactHasDeals      = apperr.Conflict("Contact has deals and cannot be deleted")
	ErrNotContactOwner      = apperr.PermissionDenied("You can only delete your own contacts")
	ErrOwnerFilterForbidden = apperr.PermissionDenied("Filtering by owner_id is not allowed for member role")
	ErrNameRequired         = apperr.Validation("Name is required")
)

// Store persists contacts. Lookups are scoped to an organization and return
// ErrContactNotFound for a contact outside it.
type Store interface {
	Get(ctx context.Context, orgID, contactID uuid.UUID) (*models.Contact, error)
	Create(ctx context.Context, contact *models.Contact) error
	Delete(ctx context.Context, orgID, contactID uuid.UUID) error
	List(ctx context.Context, orgID uuid.UUID, filter Filter) ([]models.Contact, int64, error)
	HasDeals(ctx context.Context, orgID, contactID uuid.UUID) (bool, error)
}

// FieldCipher seals and opens the encrypted contact columns.
type FieldCipher interface {
	SealField(plaintext string) (string, error)
	OpenField(sealed string) (string, error)
}

type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type Filter struct {
	OwnerID  *uuid.UUID
	Search   string
	Page     int
	PageSize int
}

const (
	DefaultPageSize = 50
	MaxPageSize     = 100
)

func (f *Filter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = DefaultPageSize
	}
	if f.PageSize > MaxPageSize {
		f.PageSize = MaxPageSize
	}
	f.Search = strings.TrimSpace(f.Search)
}

func (f *Filter) Offset() int {
	return (f.Page - 1) * f.PageSize
}

type CreateInput struct {
	Name  string
	Email string
	Phone string
}

type Service struct {
	store  Store
	cipher FieldCipher
	tx     Transactor
	logger *slog.Logger
}

func NewService(store Store, cipher FieldCipher, tx Transactor, logger *slog.Logger) *Service {
	return &Service{store: store, cipher: cipher, tx: tx, logger: logger}
}

func (s *Service) Create(ctx context.Context, rc tenancy.RequestContext, in CreateInput) (*models.Contact, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ErrNameRequired
	}

	contact := &models.Contact{
		OrganizationID: rc.OrganizationID(),
		OwnerID:        rc.UserID(),
		Name:           name,
		Email:          strings.TrimSpace(in.Email),
		Phone:          strings.TrimSpace(in.Phone),
	}
	if err := s.seal(contact); err != nil {
		return nil, err
	}

	if err := s.store.Create(ctx, contact); err != nil {
		return nil, err
	}

	s.logger.Info("contact created", "contact_id", contact.ID, "org_id", contact.OrganizationID)
	return contact, nil
}

func (s *Service) Get(ctx context.Context, rc tenancy.RequestContext, contactID uuid.UUID) (*models.Contact, error) {
	return s.FindContact(ctx, rc.OrganizationID(), contactID)
}

// FindContact loads and decrypts a contact of orgID.
func (s *Service) FindContact(ctx context.Context, orgID, contactID uuid.UUID) (*models.Contact, error) {
	contact, err := s.store.Get(ctx, orgID, contactID)
	if err != nil {
		return nil, err
	}
	if err := s.open(contact); err != nil {
		return nil, err
	}
	return contact, nil
}

func (s *Service) List(ctx context.Context, rc tenancy.RequestContext, filter Filter) ([]models.Contact, int64, error) {
	if filter.OwnerID != nil && !permission.CanFilterByOwner(rc.Role()) {
		return nil, 0, ErrOwnerFilterForbidden
	}
	filter.Normalize()

	items, total, err := s.store.List(ctx, rc.OrganizationID(), filter)
	if err != nil {
		return nil, 0, err
	}
	for i := range items {
		if err := s.open(&items[i]); err != nil {
			return nil, 0, err
		}
	}
	return items, total, nil
}

// Delete removes a contact that no deal references. Members may only delete
// contacts they own.
func (s *Service) Delete(ctx context.Context, rc tenancy.RequestContext, contactID uuid.UUID) error {
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		contact, err := s.store.Get(ctx, rc.OrganizationID(), contactID)
		if err != nil {
			return err
		}

		ownerID := contact.OwnerID
		if !permission.CanDeleteEntity(rc.Role(), &ownerID, rc.UserID()) {
			return ErrNotContactOwner
		}

		hasDeals, err := s.store.HasDeals(ctx, rc.OrganizationID(), contactID)
		if err != nil {
			return err
		}
		if hasDeals {
			return ErrContactHasDeals
		}

		return s.store.Delete(ctx, rc.OrganizationID(), contactID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("contact deleted", "contact_id", contactID, "org_id", rc.OrganizationID())
	return nil
}

func (s *Service) seal(c *models.Contact) error {
	var err error
	if c.EmailEncrypted, err = s.cipher.SealField(c.Email); err != nil {
		return fmt.Errorf("sealing email: %w", err)
	}
	if c.PhoneEncrypted, err = s.cipher.SealField(c.Phone); err != nil {
		return fmt.Errorf("sealing phone: %w", err)
	}
	return nil
}

func (s *Service) open(c *models.Contact) error {
	var err error
	if c.Email, err = s.cipher.OpenField(c.EmailEncrypted); err != nil {
		return fmt.Errorf("opening email: %w", err)
	}
	if c.Phone, err = s.cipher.OpenField(c.PhoneEncrypted); err != nil {
		return fmt.Errorf("opening phone: %w", err)
	}
	return nil
}
