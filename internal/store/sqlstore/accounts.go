package sqlstore

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/hugh/dealflow/internal/auth"
	"github.com/hugh/dealflow/internal/database/models"
	"github.com/hugh/dealflow/internal/organizations"
	"github.com/hugh/dealflow/internal/tenancy"
	"gorm.io/gorm"
)

// AccountStore covers users, organizations and memberships.
type AccountStore struct {
	db *gorm.DB
}

var (
	_ auth.Store              = (*AccountStore)(nil)
	_ organizations.Store     = (*AccountStore)(nil)
	_ tenancy.MembershipStore = (*AccountStore)(nil)
)

func (s *AccountStore) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := conn(ctx, s.db).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, notFound(err, auth.ErrUserNotFound)
	}
	return &user, nil
}

func (s *AccountStore) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := conn(ctx, s.db).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, notFound(err, auth.ErrUserNotFound)
	}
	return &user, nil
}

func (s *AccountStore) CreateUser(ctx context.Context, user *models.User) error {
	return duplicate(conn(ctx, s.db).Create(user).Error, auth.ErrUserExists)
}

func (s *AccountStore) FindOrganizationByName(ctx context.Context, name string) (*models.Organization, error) {
	var org models.Organization
	err := conn(ctx, s.db).Where("name = ?", name).First(&org).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &org, nil
}

func (s *AccountStore) CreateOrganization(ctx context.Context, org *models.Organization) error {
	return duplicate(conn(ctx, s.db).Create(org).Error, auth.ErrOrganizationExists)
}

func (s *AccountStore) CreateMembership(ctx context.Context, m *models.Membership) error {
	return duplicate(conn(ctx, s.db).Create(m).Error, organizations.ErrAlreadyMember)
}

func (s *AccountStore) FindMembership(ctx context.Context, orgID, userID uuid.UUID) (*models.Membership, error) {
	var m models.Membership
	err := conn(ctx, s.db).
		Where("organization_id = ? AND user_id = ?", orgID, userID).
		First(&m).Error
	if err != nil {
		return nil, notFound(err, tenancy.ErrNotAMember)
	}
	return &m, nil
}

func (s *AccountStore) ListMembershipsByUser(ctx context.Context, userID uuid.UUID) ([]models.Membership, error) {
	var items []models.Membership
	err := conn(ctx, s.db).
		Select("organization_members.*").
		Preload("Organization").
		Joins("JOIN organizations ON organizations.id = organization_members.organization_id").
		Where("organization_members.user_id = ?", userID).
		Order("organizations.name ASC").
		Find(&items).Error
	return items, err
}

func (s *AccountStore) ListOrganizationIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := conn(ctx, s.db).Model(&models.Organization{}).Order("created_at ASC").Pluck("id", &ids).Error
	return ids, err
}
