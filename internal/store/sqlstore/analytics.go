package sqlstore

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/hugh/dealflow/internal/analytics"
	"github.com/hugh/dealflow/internal/database/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AnalyticsSource answers aggregate queries with GROUP BY in the database.
type AnalyticsSource struct {
	db *gorm.DB
}

var _ analytics.Source = (*AnalyticsSource)(nil)

type bucketRow struct {
	Stage  models.DealStage
	Status models.DealStatus
	Count  int64
	Amount decimal.Decimal
}

func (s *AnalyticsSource) GroupedTotals(ctx context.Context, orgID uuid.UUID) ([]analytics.Bucket, error) {
	var rows []bucketRow
	err := conn(ctx, s.db).Model(&models.Deal{}).
		Select("stage, status, COUNT(*) AS count, COALESCE(SUM(amount), 0) AS amount").
		Where("organization_id = ?", orgID).
		Group("stage, status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	buckets := make([]analytics.Bucket, len(rows))
	for i, r := range rows {
		buckets[i] = analytics.Bucket(r)
	}
	return buckets, nil
}

func (s *AnalyticsSource) CountCreatedSince(ctx context.Context, orgID uuid.UUID, status models.DealStatus, since time.Time) (int64, error) {
	var n int64
	err := conn(ctx, s.db).Model(&models.Deal{}).
		Where("organization_id = ? AND status = ? AND created_at >= ?", orgID, status.String(), since.UTC()).
		Count(&n).Error
	return n, err
}
