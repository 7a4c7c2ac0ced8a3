package testutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/hugh/dealflow/internal/activities"
	"github.com/hugh/dealflow/internal/analytics"
	"github.com/hugh/dealflow/internal/auth"
	"github.com/hugh/dealflow/internal/contacts"
	"github.com/hugh/dealflow/internal/database/models"
	"github.com/hugh/dealflow/internal/deals"
	"github.com/hugh/dealflow/internal/organizations"
	"github.com/hugh/dealflow/internal/store/memstore"
	"github.com/hugh/dealflow/internal/store/sqlstore"
	"github.com/hugh/dealflow/internal/tasks"
	"github.com/hugh/dealflow/internal/tenancy"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AccountStore is the union of the user, organization and membership contracts.
type AccountStore interface {
	auth.Store
	organizations.Store
	tenancy.MembershipStore
	ListOrganizationIDs(ctx context.Context) ([]uuid.UUID, error)
}

type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Backend bundles one storage implementation of every store contract.
type Backend struct {
	Name       string
	DB         *gorm.DB // nil for the in-memory backend
	Deals      deals.Store
	Contacts   contacts.Store
	Activities activities.Store
	Tasks      tasks.Store
	Accounts   AccountStore
	Analytics  analytics.Source
	Tx         Transactor
}

func NewMemoryBackend() *Backend {
	s := memstore.New()
	return &Backend{
		Name:       "memory",
		Deals:      s.Deals,
		Contacts:   s.Contacts,
		Activities: s.Activities,
		Tasks:      s.Tasks,
		Accounts:   s.Accounts,
		Analytics:  s.Analytics,
		Tx:         s.Transactor(),
	}
}

func NewSQLiteBackend(t *testing.T) *Backend {
	t.Helper()
	db := SetupTestDB(t)
	s := sqlstore.New(db)
	return &Backend{
		Name:       "sqlite",
		DB:         db,
		Deals:      s.Deals,
		Contacts:   s.Contacts,
		Activities: s.Activities,
		Tasks:      s.Tasks,
		Accounts:   s.Accounts,
		Analytics:  s.Analytics,
		Tx:         s.Transactor(),
	}
}

// ForEachBackend runs fn once per storage implementation, each on a fresh store.
func ForEachBackend(t *testing.T, fn func(t *testing.T, b *Backend)) {
	t.Run("memory", func(t *testing.T) {
		fn(t, NewMemoryBackend())
	})
	t.Run("sqlite", func(t *testing.T) {
		fn(t, NewSQLiteBackend(t))
	})
}

func (b *Backend) CreateOrg(t *testing.T, name string) *models.Organization {
	t.Helper()
	org := &models.Organization{Name: name + "-" + uuid.New().String()[:8]}
	if err := b.Accounts.CreateOrganization(context.Background(), org); err != nil {
		t.Fatalf("failed to create test organization: %v", err)
	}
	return org
}

func (b *Backend) CreateUser(t *testing.T) *models.User {
	t.Helper()
	hash, err := auth.HashPassword("testpassword123")
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	user := &models.User{
		Email:        "test-" + uuid.New().String()[:8] + "@example.com",
		PasswordHash: hash,
		Name:         "Test User",
		IsActive:     true,
	}
	if err := b.Accounts.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

func (b *Backend) AddMember(t *testing.T, orgID, userID uuid.UUID, role models.Role) {
	t.Helper()
	err := b.Accounts.CreateMembership(context.Background(), &models.Membership{
		OrganizationID: orgID,
		UserID:         userID,
		Role:           role,
	})
	if err != nil {
		t.Fatalf("failed to create membership: %v", err)
	}
}

// CreateMember creates a user in org with role and returns its request context.
func (b *Backend) CreateMember(t *testing.T, org *models.Organization, role models.Role) (*models.User, tenancy.RequestContext) {
	t.Helper()
	user := b.CreateUser(t)
	b.AddMember(t, org.ID, user.ID, role)
	return user, tenancy.NewRequestContext(user.ID, org.ID, role)
}

func (b *Backend) CreateContact(t *testing.T, orgID, ownerID uuid.UUID) *models.Contact {
	t.Helper()
	contact := &models.Contact{
		OrganizationID: orgID,
		OwnerID:        ownerID,
		Name:           "Contact " + uuid.New().String()[:6],
	}
	if err := b.Contacts.Create(context.Background(), contact); err != nil {
		t.Fatalf("failed to create test contact: %v", err)
	}
	return contact
}

// CreateDeal writes a deal straight to the store, bypassing creation rules.
func (b *Backend) CreateDeal(t *testing.T, orgID, ownerID, contactID uuid.UUID, stage models.DealStage, status models.DealStatus, amount string) *models.Deal {
	t.Helper()
	owner := ownerID
	deal := &models.Deal{
		OrganizationID: orgID,
		ContactID:      contactID,
		OwnerID:        &owner,
		Title:          "Deal " + uuid.New().String()[:6],
		Amount:         decimal.RequireFromString(amount),
		Currency:       "USD",
		Status:         status,
		Stage:          stage,
	}
	if err := b.Deals.Create(context.Background(), deal); err != nil {
		t.Fatalf("failed to create test deal: %v", err)
	}
	return deal
}
