package memstore

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/hugh/dealflow/internal/database/models"
	"github.com/hugh/dealflow/internal/tasks"
)

type TaskStore struct {
	s *Store
}

var _ tasks.Store = (*TaskStore)(nil)

func (t *TaskStore) Create(ctx context.Context, task *models.Task) error {
	defer t.s.lock(ctx)()

	t.s.stamp(&task.Base)
	stored := *task
	stored.Deal = nil
	t.s.data.tasks = append(t.s.data.tasks, stored)
	return nil
}

func (t *TaskStore) List(_ context.Context, orgID uuid.UUID, filter tasks.Filter) ([]models.Task, error) {
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()

	items := []models.Task{}
	for _, task := range t.s.data.tasks {
		deal, ok := t.s.data.deals[task.DealID]
		if !ok || deal.OrganizationID != orgID {
			continue
		}
		if filter.DealID != nil && task.DealID != *filter.DealID {
			continue
		}
		if filter.OwnerID != nil && !deal.OwnedBy(*filter.OwnerID) {
			continue
		}
		if filter.OnlyOpen && task.IsDone {
			continue
		}
		if filter.DueBefore != nil && (task.DueDate == nil || !task.DueDate.Before(*filter.DueBefore)) {
			continue
		}
		if filter.DueAfter != nil && (task.DueDate == nil || !task.DueDate.After(*filter.DueAfter)) {
			continue
		}
		items = append(items, task)
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items, nil
}
