package sqlstore

import (
	"context"

	"github.com/google/uuid"
	"github.com/hugh/dealflow/internal/database/models"
	"github.com/hugh/dealflow/internal/deals"
	"gorm.io/gorm"
)

type DealStore struct {
	db *gorm.DB
}

var _ deals.Store = (*DealStore)(nil)

func (s *DealStore) Get(ctx context.Context, orgID, dealID uuid.UUID) (*models.Deal, error) {
	return s.get(conn(ctx, s.db), orgID, dealID)
}

func (s *DealStore) GetForUpdate(ctx context.Context, orgID, dealID uuid.UUID) (*models.Deal, error) {
	return s.get(forUpdate(conn(ctx, s.db)), orgID, dealID)
}

func (s *DealStore) get(tx *gorm.DB, orgID, dealID uuid.UUID) (*models.Deal, error) {
	var deal models.Deal
	err := tx.Where("id = ? AND organization_id = ?", dealID, orgID).First(&deal).Error
	if err != nil {
		return nil, notFound(err, deals.ErrDealNotFound)
	}
	return &deal, nil
}

func (s *DealStore) Create(ctx context.Context, deal *models.Deal) error {
	return conn(ctx, s.db).Create(deal).Error
}

func (s *DealStore) Update(ctx context.Context, deal *models.Deal) error {
	result := conn(ctx, s.db).Model(&models.Deal{}).
		Where("id = ? AND organization_id = ?", deal.ID, deal.OrganizationID).
		Updates(map[string]interface{}{
			"amount":     deal.Amount,
			"status":     deal.Status,
			"stage":      deal.Stage,
			"updated_at": deal.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return deals.ErrDealNotFound
	}
	return nil
}

func (s *DealStore) List(ctx context.Context, orgID uuid.UUID, filter deals.Filter) ([]models.Deal, int64, error) {
	query := conn(ctx, s.db).Model(&models.Deal{}).Where("organization_id = ?", orgID)

	if len(filter.Statuses) > 0 {
		names := make([]string, len(filter.Statuses))
		for i, st := range filter.Statuses {
			names[i] = st.String()
		}
		query = query.Where("status IN ?", names)
	}
	if filter.Stage != nil {
		query = query.Where("stage = ?", filter.Stage.String())
	}
	if filter.MinAmount != nil {
		query = query.Where("amount >= ?", *filter.MinAmount)
	}
	if filter.MaxAmount != nil {
		query = query.Where("amount <= ?", *filter.MaxAmount)
	}
	if filter.OwnerID != nil {
		query = query.Where("owner_id = ?", *filter.OwnerID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []models.Deal
	err := query.
		Order(dealOrder(filter)).
		Offset(filter.Offset()).
		Limit(filter.PageSize).
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

func dealOrder(f deals.Filter) string {
	dir := "ASC"
	if f.Descending || f.OrderBy == deals.SortDefault {
		dir = "DESC"
	}
	switch f.OrderBy {
	case deals.SortAmount:
		return "amount " + dir + ", id " + dir
	default:
		return "created_at " + dir + ", id " + dir
	}
}
