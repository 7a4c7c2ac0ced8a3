package memstore

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/hugh/dealflow/internal/analytics"
	"github.com/hugh/dealflow/internal/database/models"
)

type AnalyticsSource struct {
	s *Store
}

var _ analytics.Source = (*AnalyticsSource)(nil)

type bucketKey struct {
	stage  models.DealStage
	status models.DealStatus
}

func (a *AnalyticsSource) GroupedTotals(_ context.Context, orgID uuid.UUID) ([]analytics.Bucket, error) {
	a.s.mu.RLock()
	defer a.s.mu.RUnlock()

	index := map[bucketKey]int{}
	var buckets []analytics.Bucket
	for _, deal := range a.s.data.deals {
		if deal.OrganizationID != orgID {
			continue
		}
		key := bucketKey{deal.Stage, deal.Status}
		i, ok := index[key]
		if !ok {
			i = len(buckets)
			index[key] = i
			buckets = append(buckets, analytics.Bucket{Stage: deal.Stage, Status: deal.Status})
		}
		buckets[i].Count++
		buckets[i].Amount = buckets[i].Amount.Add(deal.Amount)
	}
	return buckets, nil
}

func (a *AnalyticsSource) CountCreatedSince(_ context.Context, orgID uuid.UUID, status models.DealStatus, since time.Time) (int64, error) {
	a.s.mu.RLock()
	defer a.s.mu.RUnlock()

	var n int64
	for _, deal := range a.s.data.deals {
		if deal.OrganizationID == orgID && deal.Status == status && !deal.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}
