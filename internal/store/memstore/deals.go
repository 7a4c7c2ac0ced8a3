package memstore

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/hugh/dealflow/internal/database/models"
	"github.com/hugh/dealflow/internal/deals"
)

type DealStore struct {
	s *Store
}

var _ deals.Store = (*DealStore)(nil)

func (d *DealStore) Get(_ context.Context, orgID, dealID uuid.UUID) (*models.Deal, error) {
	d.s.mu.RLock()
	defer d.s.mu.RUnlock()

	deal, ok := d.s.data.deals[dealID]
	if !ok || deal.OrganizationID != orgID {
		return nil, deals.ErrDealNotFound
	}
	c := copyDeal(deal)
	return &c, nil
}

// GetForUpdate needs no extra lock: WithinTx already serializes writers.
func (d *DealStore) GetForUpdate(ctx context.Context, orgID, dealID uuid.UUID) (*models.Deal, error) {
	return d.Get(ctx, orgID, dealID)
}

func (d *DealStore) Create(ctx context.Context, deal *models.Deal) error {
	defer d.s.lock(ctx)()

	d.s.stamp(&deal.Base)
	if deal.Currency == "" {
		deal.Currency = "USD"
	}
	d.s.data.deals[deal.ID] = copyDeal(*deal)
	return nil
}

func (d *DealStore) Update(ctx context.Context, deal *models.Deal) error {
	defer d.s.lock(ctx)()

	stored, ok := d.s.data.deals[deal.ID]
	if !ok || stored.OrganizationID != deal.OrganizationID {
		return deals.ErrDealNotFound
	}
	stored.Amount = deal.Amount
	stored.Status = deal.Status
	stored.Stage = deal.Stage
	stored.UpdatedAt = deal.UpdatedAt
	d.s.data.deals[deal.ID] = stored
	return nil
}

func (d *DealStore) List(_ context.Context, orgID uuid.UUID, filter deals.Filter) ([]models.Deal, int64, error) {
	d.s.mu.RLock()
	defer d.s.mu.RUnlock()

	var matched []models.Deal
	for _, deal := range d.s.data.deals {
		if deal.OrganizationID != orgID || !matchDeal(deal, filter) {
			continue
		}
		matched = append(matched, copyDeal(deal))
	}

	desc := filter.Descending || filter.OrderBy == deals.SortDefault
	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		var cmp int
		if filter.OrderBy == deals.SortAmount {
			cmp = a.Amount.Cmp(b.Amount)
		} else {
			cmp = a.CreatedAt.Compare(b.CreatedAt)
		}
		if cmp == 0 {
			cmp = compareUUID(a.ID, b.ID)
		}
		if desc {
			return cmp > 0
		}
		return cmp < 0
	})

	return paginate(matched, filter.Offset(), filter.PageSize), int64(len(matched)), nil
}

func matchDeal(deal models.Deal, f deals.Filter) bool {
	if len(f.Statuses) > 0 {
		found := false
		for _, st := range f.Statuses {
			if deal.Status == st {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.Stage != nil && deal.Stage != *f.Stage {
		return false
	}
	if f.MinAmount != nil && deal.Amount.LessThan(*f.MinAmount) {
		return false
	}
	if f.MaxAmount != nil && deal.Amount.GreaterThan(*f.MaxAmount) {
		return false
	}
	if f.OwnerID != nil && !deal.OwnedBy(*f.OwnerID) {
		return false
	}
	return true
}

func compareUUID(a, b uuid.UUID) int {
	for i := range a {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}
