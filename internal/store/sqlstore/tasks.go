package sqlstore

import (
	"context"

	"github.com/google/uuid"
	"github.com/hugh/dealflow/internal/database/models"
	"github.com/hugh/dealflow/internal/tasks"
	"gorm.io/gorm"
)

type TaskStore struct {
	db *gorm.DB
}

var _ tasks.Store = (*TaskStore)(nil)

func (s *TaskStore) Create(ctx context.Context, task *models.Task) error {
	return conn(ctx, s.db).Create(task).Error
}

func (s *TaskStore) List(ctx context.Context, orgID uuid.UUID, filter tasks.Filter) ([]models.Task, error) {
	query := conn(ctx, s.db).Model(&models.Task{}).
		Joins("JOIN deals ON deals.id = tasks.deal_id").
		Where("deals.organization_id = ?", orgID)

	if filter.DealID != nil {
		query = query.Where("tasks.deal_id = ?", *filter.DealID)
	}
	if filter.OwnerID != nil {
		query = query.Where("deals.owner_id = ?", *filter.OwnerID)
	}
	if filter.OnlyOpen {
		query = query.Where("tasks.is_done = ?", false)
	}
	if filter.DueBefore != nil {
		query = query.Where("tasks.due_date < ?", filter.DueBefore.UTC())
	}
	if filter.DueAfter != nil {
		query = query.Where("tasks.due_date > ?", filter.DueAfter.UTC())
	}

	var items []models.Task
	err := query.Select("tasks.*").Order("tasks.created_at DESC").Find(&items).Error
	return items, err
}
