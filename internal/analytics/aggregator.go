// Package analytics computes per-organization deal summaries and the
// cumulative stage funnel, optionally behind a TTL cache.
package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hugh/dealflow/internal/database/models"
	"github.com/hugh/dealflow/internal/metrics"
)

const (
	opSummary = "summary"
	opFunnel  = "funnel"

	// DefaultTTL is the cache lifetime used when none is configured.
	DefaultTTL = 60 * time.Second

	newDealsWindow = 30 * 24 * time.Hour
)

// Source reads aggregate deal data for one organization.
type Source interface {
	// GroupedTotals returns one bucket per (stage, status) pair present in the
	// organization.
	GroupedTotals(ctx context.Context, orgID uuid.UUID) ([]Bucket, error)
	// CountCreatedSince counts deals with the given status created at or after since.
	CountCreatedSince(ctx context.Context, orgID uuid.UUID, status models.DealStatus, since time.Time) (int64, error)
}

type Aggregator struct {
	source Source
	cache  Cache
	ttl    time.Duration
	logger *slog.Logger
	now    func() time.Time
}

type Option func(*Aggregator)

// WithCache enables result caching. A ttl of zero or less uses DefaultTTL.
func WithCache(cache Cache, ttl time.Duration) Option {
	return func(a *Aggregator) {
		a.cache = cache
		if ttl <= 0 {
			ttl = DefaultTTL
		}
		a.ttl = ttl
	}
}

func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) { a.now = now }
}

func NewAggregator(source Source, logger *slog.Logger, opts ...Option) *Aggregator {
	a := &Aggregator{
		source: source,
		ttl:    DefaultTTL,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// CacheKey is the cache key for one operation on one organization.
func CacheKey(operation string, orgID uuid.UUID) string {
	return fmt.Sprintf("analytics:%s:%s", operation, orgID)
}

// DealsSummary returns the organization's deal summary.
func (a *Aggregator) DealsSummary(ctx context.Context, orgID uuid.UUID) (*Summary, error) {
	var s Summary
	if a.fromCache(ctx, opSummary, orgID, &s) {
		return &s, nil
	}

	computed, err := a.computeSummary(ctx, orgID)
	if err != nil {
		return nil, err
	}
	a.toCache(ctx, opSummary, orgID, computed)
	return computed, nil
}

// DealsFunnel returns the organization's cumulative stage funnel.
func (a *Aggregator) DealsFunnel(ctx context.Context, orgID uuid.UUID) (*Funnel, error) {
	var f Funnel
	if a.fromCache(ctx, opFunnel, orgID, &f) {
		return &f, nil
	}

	computed, err := a.computeFunnel(ctx, orgID)
	if err != nil {
		return nil, err
	}
	a.toCache(ctx, opFunnel, orgID, computed)
	return computed, nil
}

// Refresh recomputes both results for orgID and overwrites any cached copies.
func (a *Aggregator) Refresh(ctx context.Context, orgID uuid.UUID) error {
	summary, err := a.computeSummary(ctx, orgID)
	if err != nil {
		return fmt.Errorf("compute summary: %w", err)
	}
	funnel, err := a.computeFunnel(ctx, orgID)
	if err != nil {
		return fmt.Errorf("compute funnel: %w", err)
	}
	a.toCache(ctx, opSummary, orgID, summary)
	a.toCache(ctx, opFunnel, orgID, funnel)
	return nil
}

// Invalidate drops cached results for orgID.
func (a *Aggregator) Invalidate(ctx context.Context, orgID uuid.UUID) error {
	if a.cache == nil {
		return nil
	}
	return a.cache.Delete(ctx, CacheKey(opSummary, orgID), CacheKey(opFunnel, orgID))
}

func (a *Aggregator) computeSummary(ctx context.Context, orgID uuid.UUID) (*Summary, error) {
	buckets, err := a.source.GroupedTotals(ctx, orgID)
	if err != nil {
		return nil, err
	}
	since := a.now().UTC().Add(-newDealsWindow)
	recent, err := a.source.CountCreatedSince(ctx, orgID, models.DealStatusNew, since)
	if err != nil {
		return nil, err
	}
	s := BuildSummary(buckets, recent)
	return &s, nil
}

func (a *Aggregator) computeFunnel(ctx context.Context, orgID uuid.UUID) (*Funnel, error) {
	buckets, err := a.source.GroupedTotals(ctx, orgID)
	if err != nil {
		return nil, err
	}
	f := BuildFunnel(buckets)
	return &f, nil
}

// fromCache decodes a cached result into dst. Any cache failure is treated as
// a miss.
func (a *Aggregator) fromCache(ctx context.Context, op string, orgID uuid.UUID, dst interface{}) bool {
	if a.cache == nil {
		return false
	}

	b, err := a.cache.Get(ctx, CacheKey(op, orgID))
	switch {
	case errors.Is(err, ErrCacheMiss):
		metrics.AnalyticsCacheTotal.WithLabelValues(op, "miss").Inc()
		a.logger.Debug("analytics cache miss", "operation", op, "org_id", orgID)
		return false
	case err != nil:
		metrics.AnalyticsCacheTotal.WithLabelValues(op, "error").Inc()
		a.logger.Warn("analytics cache read failed", "operation", op, "org_id", orgID, "error", err)
		return false
	}

	if err := json.Unmarshal(b, dst); err != nil {
		metrics.AnalyticsCacheTotal.WithLabelValues(op, "error").Inc()
		a.logger.Warn("analytics cache entry corrupt", "operation", op, "org_id", orgID, "error", err)
		return false
	}

	metrics.AnalyticsCacheTotal.WithLabelValues(op, "hit").Inc()
	return true
}

func (a *Aggregator) toCache(ctx context.Context, op string, orgID uuid.UUID, v interface{}) {
	if a.cache == nil {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		a.logger.Error("analytics encode failed", "operation", op, "error", err)
		return
	}
	if err := a.cache.Set(ctx, CacheKey(op, orgID), b, a.ttl); err != nil {
		a.logger.Warn("analytics cache write failed", "operation", op, "org_id", orgID, "error", err)
	}
}
