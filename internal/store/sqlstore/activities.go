package sqlstore

import (
	"context"

	"github.com/google/uuid"
	"github.com/hugh/dealflow/internal/activities"
	"github.com/hugh/dealflow/internal/database/models"
	"gorm.io/gorm"
)

type ActivityStore struct {
	db *gorm.DB
}

var _ activities.Store = (*ActivityStore)(nil)

func (s *ActivityStore) Create(ctx context.Context, activity *models.Activity) error {
	return conn(ctx, s.db).Create(activity).Error
}

// ListByDeal orders by insertion sequence within equal timestamps.
func (s *ActivityStore) ListByDeal(ctx context.Context, dealID uuid.UUID) ([]models.Activity, error) {
	var items []models.Activity
	err := conn(ctx, s.db).
		Where("deal_id = ?", dealID).
		Order("created_at DESC").
		Order("seq DESC").
		Find(&items).Error
	return items, err
}
