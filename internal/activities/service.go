// Package activities is the append-only audit trail attached to deals.
package activities

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hugh/dealflow/internal/apperr"
	"github.com/hugh/dealflow/internal/database/models"
	"github.com/hugh/dealflow/internal/tenancy"
)

// ErrCommentOnly rejects a caller-supplied activity of any type but comment.
// Other types are produced internally by deal updates and task creation.
var ErrCommentOnly = apperr.Validation("Only comment activities can be created")

// Store appends and reads activities. ListByDeal returns newest first.
type Store interface {
	Create(ctx context.Context, activity *models.Activity) error
	ListByDeal(ctx context.Context, dealID uuid.UUID) ([]models.Activity, error)
}

// DealLookup checks that a deal exists inside an organization.
type DealLookup interface {
	Get(ctx context.Context, orgID, dealID uuid.UUID) (*models.Deal, error)
}

type Service struct {
	store  Store
	deals  DealLookup
	logger *slog.Logger
	now    func() time.Time
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(store Store, deals DealLookup, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{store: store, deals: deals, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Record appends activity to a deal of orgID. It is the single write path for
// both caller comments and derived events.
func (s *Service) Record(ctx context.Context, orgID, dealID uuid.UUID, activity *models.Activity) error {
	if _, err := s.deals.Get(ctx, orgID, dealID); err != nil {
		return err
	}

	activity.ID = uuid.Nil
	activity.DealID = dealID
	activity.CreatedAt = s.now().UTC()
	if activity.Payload == nil {
		activity.Payload = map[string]interface{}{}
	}

	if err := s.store.Create(ctx, activity); err != nil {
		return err
	}

	s.logger.Debug("activity recorded",
		"activity_id", activity.ID,
		"deal_id", dealID,
		"type", activity.Type.String(),
	)
	return nil
}

// Comment records a caller-authored comment on a deal.
func (s *Service) Comment(ctx context.Context, rc tenancy.RequestContext, dealID uuid.UUID, payload map[string]interface{}) (*models.Activity, error) {
	authorID := rc.UserID()
	activity := &models.Activity{
		AuthorID: &authorID,
		Type:     models.ActivityComment,
		Payload:  payload,
	}
	if err := s.Record(ctx, rc.OrganizationID(), dealID, activity); err != nil {
		return nil, err
	}
	return activity, nil
}

// List returns a deal's activities, most recent first.
func (s *Service) List(ctx context.Context, rc tenancy.RequestContext, dealID uuid.UUID) ([]models.Activity, error) {
	if _, err := s.deals.Get(ctx, rc.OrganizationID(), dealID); err != nil {
		return nil, err
	}
	return s.store.ListByDeal(ctx, dealID)
}
