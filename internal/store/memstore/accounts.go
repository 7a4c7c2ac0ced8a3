package memstore

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/hugh/dealflow/internal/auth"
	"github.com/hugh/dealflow/internal/database/models"
	"github.com/hugh/dealflow/internal/organizations"
	"github.com/hugh/dealflow/internal/tenancy"
)

type AccountStore struct {
	s *Store
}

var (
	_ auth.Store              = (*AccountStore)(nil)
	_ organizations.Store     = (*AccountStore)(nil)
	_ tenancy.MembershipStore = (*AccountStore)(nil)
)

func (a *AccountStore) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	a.s.mu.RLock()
	defer a.s.mu.RUnlock()

	for _, u := range a.s.data.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, auth.ErrUserNotFound
}

func (a *AccountStore) GetUser(_ context.Context, id uuid.UUID) (*models.User, error) {
	a.s.mu.RLock()
	defer a.s.mu.RUnlock()

	u, ok := a.s.data.users[id]
	if !ok {
		return nil, auth.ErrUserNotFound
	}
	return &u, nil
}

func (a *AccountStore) CreateUser(ctx context.Context, user *models.User) error {
	defer a.s.lock(ctx)()

	for _, u := range a.s.data.users {
		if u.Email == user.Email {
			return auth.ErrUserExists
		}
	}
	a.s.stamp(&user.Base)
	stored := *user
	stored.Memberships = nil
	a.s.data.users[user.ID] = stored
	return nil
}

func (a *AccountStore) FindOrganizationByName(_ context.Context, name string) (*models.Organization, error) {
	a.s.mu.RLock()
	defer a.s.mu.RUnlock()

	for _, o := range a.s.data.orgs {
		if o.Name == name {
			return &o, nil
		}
	}
	return nil, nil
}

func (a *AccountStore) CreateOrganization(ctx context.Context, org *models.Organization) error {
	defer a.s.lock(ctx)()

	for _, o := range a.s.data.orgs {
		if o.Name == org.Name {
			return auth.ErrOrganizationExists
		}
	}
	a.s.stamp(&org.Base)
	stored := *org
	stored.Memberships, stored.Contacts, stored.Deals = nil, nil, nil
	a.s.data.orgs[org.ID] = stored
	return nil
}

func (a *AccountStore) CreateMembership(ctx context.Context, m *models.Membership) error {
	defer a.s.lock(ctx)()

	key := membershipKey{orgID: m.OrganizationID, userID: m.UserID}
	if _, ok := a.s.data.memberships[key]; ok {
		return organizations.ErrAlreadyMember
	}
	stored := *m
	stored.Organization, stored.User = nil, nil
	a.s.data.memberships[key] = stored
	return nil
}

func (a *AccountStore) FindMembership(_ context.Context, orgID, userID uuid.UUID) (*models.Membership, error) {
	a.s.mu.RLock()
	defer a.s.mu.RUnlock()

	m, ok := a.s.data.memberships[membershipKey{orgID: orgID, userID: userID}]
	if !ok {
		return nil, tenancy.ErrNotAMember
	}
	return &m, nil
}

func (a *AccountStore) ListMembershipsByUser(_ context.Context, userID uuid.UUID) ([]models.Membership, error) {
	a.s.mu.RLock()
	defer a.s.mu.RUnlock()

	items := []models.Membership{}
	for key, m := range a.s.data.memberships {
		if key.userID != userID {
			continue
		}
		if org, ok := a.s.data.orgs[key.orgID]; ok {
			org := org
			m.Organization = &org
		}
		items = append(items, m)
	}
	sort.Slice(items, func(i, j int) bool {
		return orgName(items[i]) < orgName(items[j])
	})
	return items, nil
}

func (a *AccountStore) ListOrganizationIDs(_ context.Context) ([]uuid.UUID, error) {
	a.s.mu.RLock()
	defer a.s.mu.RUnlock()

	orgs := make([]models.Organization, 0, len(a.s.data.orgs))
	for _, o := range a.s.data.orgs {
		orgs = append(orgs, o)
	}
	sort.Slice(orgs, func(i, j int) bool { return orgs[i].CreatedAt.Before(orgs[j].CreatedAt) })

	ids := make([]uuid.UUID, len(orgs))
	for i, o := range orgs {
		ids[i] = o.ID
	}
	return ids, nil
}

func orgName(m models.Membership) string {
	if m.Organization == nil {
		return ""
	}
	return m.Organization.Name
}
