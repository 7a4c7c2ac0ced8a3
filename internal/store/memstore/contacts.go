package memstore

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/hugh/dealflow/internal/contacts"
	"github.com/hugh/dealflow/internal/database/models"
)

type ContactStore struct {
	s *Store
}

var _ contacts.Store = (*ContactStore)(nil)

func (c *ContactStore) Get(_ context.Context, orgID, contactID uuid.UUID) (*models.Contact, error) {
	c.s.mu.RLock()
	defer c.s.mu.RUnlock()

	contact, ok := c.s.data.contacts[contactID]
	if !ok || contact.OrganizationID != orgID {
		return nil, contacts.ErrContactNotFound
	}
	return &contact, nil
}

func (c *ContactStore) Create(ctx context.Context, contact *models.Contact) error {
	defer c.s.lock(ctx)()

	c.s.stamp(&contact.Base)
	stored := *contact
	stored.Email, stored.Phone = "", ""
	stored.Organization, stored.Deals = nil, nil
	c.s.data.contacts[contact.ID] = stored
	return nil
}

func (c *ContactStore) Delete(ctx context.Context, orgID, contactID uuid.UUID) error {
	defer c.s.lock(ctx)()

	contact, ok := c.s.data.contacts[contactID]
	if !ok || contact.OrganizationID != orgID {
		return contacts.ErrContactNotFound
	}
	delete(c.s.data.contacts, contactID)
	return nil
}

func (c *ContactStore) List(_ context.Context, orgID uuid.UUID, filter contacts.Filter) ([]models.Contact, int64, error) {
	c.s.mu.RLock()
	defer c.s.mu.RUnlock()

	search := strings.ToLower(filter.Search)
	var matched []models.Contact
	for _, contact := range c.s.data.contacts {
		if contact.OrganizationID != orgID {
			continue
		}
		if filter.OwnerID != nil && contact.OwnerID != *filter.OwnerID {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(contact.Name), search) {
			continue
		}
		matched = append(matched, contact)
	}

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].Name != matched[j].Name {
			return matched[i].Name < matched[j].Name
		}
		return compareUUID(matched[i].ID, matched[j].ID) < 0
	})

	return paginate(matched, filter.Offset(), filter.PageSize), int64(len(matched)), nil
}

func (c *ContactStore) HasDeals(_ context.Context, orgID, contactID uuid.UUID) (bool, error) {
	c.s.mu.RLock()
	defer c.s.mu.RUnlock()

	for _, deal := range c.s.data.deals {
		if deal.ContactID == contactID && deal.OrganizationID == orgID {
			return true, nil
		}
	}
	return false, nil
}
