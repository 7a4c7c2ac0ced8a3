package sqlstore

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/hugh/dealflow/internal/contacts"
	"github.com/hugh/dealflow/internal/database/models"
	"gorm.io/gorm"
)

type ContactStore struct {
	db *gorm.DB
}

var _ contacts.Store = (*ContactStore)(nil)

func (s *ContactStore) Get(ctx context.Context, orgID, contactID uuid.UUID) (*models.Contact, error) {
	var contact models.Contact
	err := conn(ctx, s.db).Where("id = ? AND organization_id = ?", contactID, orgID).First(&contact).Error
	if err != nil {
		return nil, notFound(err, contacts.ErrContactNotFound)
	}
	return &contact, nil
}

func (s *ContactStore) Create(ctx context.Context, contact *models.Contact) error {
	return conn(ctx, s.db).Create(contact).Error
}

func (s *ContactStore) Delete(ctx context.Context, orgID, contactID uuid.UUID) error {
	result := conn(ctx, s.db).
		Where("id = ? AND organization_id = ?", contactID, orgID).
		Delete(&models.Contact{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return contacts.ErrContactNotFound
	}
	return nil
}

func (s *ContactStore) List(ctx context.Context, orgID uuid.UUID, filter contacts.Filter) ([]models.Contact, int64, error) {
	query := conn(ctx, s.db).Model(&models.Contact{}).Where("organization_id = ?", orgID)

	if filter.OwnerID != nil {
		query = query.Where("owner_id = ?", *filter.OwnerID)
	}
	if filter.Search != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(filter.Search)+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []models.Contact
	err := query.
		Order("name ASC, id ASC").
		Offset(filter.Offset()).
		Limit(filter.PageSize).
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (s *ContactStore) HasDeals(ctx context.Context, orgID, contactID uuid.UUID) (bool, error) {
	var n int64
	err := conn(ctx, s.db).Model(&models.Deal{}).
		Where("contact_id = ? AND organization_id = ?", contactID, orgID).
		Limit(1).
		Count(&n).Error
	return n > 0, err
}
