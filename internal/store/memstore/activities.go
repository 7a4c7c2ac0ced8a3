package memstore

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/hugh/dealflow/internal/activities"
	"github.com/hugh/dealflow/internal/database/models"
)

type ActivityStore struct {
	s *Store
}

var _ activities.Store = (*ActivityStore)(nil)

func (a *ActivityStore) Create(ctx context.Context, activity *models.Activity) error {
	defer a.s.lock(ctx)()

	if activity.ID == uuid.Nil {
		activity.ID = uuid.New()
	}
	if activity.CreatedAt.IsZero() {
		activity.CreatedAt = a.s.now().UTC()
	}
	a.s.seq++
	activity.Seq = a.s.seq
	a.s.data.activities = append(a.s.data.activities, copyActivity(*activity))
	return nil
}

// ListByDeal returns newest first; equal timestamps come out in reverse
// insertion order, matching sqlstore.
func (a *ActivityStore) ListByDeal(_ context.Context, dealID uuid.UUID) ([]models.Activity, error) {
	a.s.mu.RLock()
	defer a.s.mu.RUnlock()

	items := []models.Activity{}
	for _, act := range a.s.data.activities {
		if act.DealID == dealID {
			items = append(items, copyActivity(act))
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.After(items[j].CreatedAt)
		}
		return items[i].Seq > items[j].Seq
	})
	return items, nil
}
