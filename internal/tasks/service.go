// Package tasks manages follow-up tasks attached to deals.
package tasks

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hugh/dealflow/internal/apperr"
	"github.com/hugh/dealflow/internal/database/models"
	"github.com/hugh/dealflow/internal/permission"
	"github.com/hugh/dealflow/internal/tenancy"
)

var (
	ErrDueDateInPast = apperr.Validation("due_date cannot be in the past")
	ErrTitleRequired = apperr.Validation("Title is required")
	ErrNotDealOwner  = apperr.PermissionDenied("You can only add tasks to your own deals")
)

type Store interface {
	Create(ctx context.Context, task *models.Task) error
	List(ctx context.Context, orgID uuid.UUID, filter Filter) ([]models.Task, error)
}

type DealLookup interface {
	Get(ctx context.Context, orgID, dealID uuid.UUID) (*models.Deal, error)
}

type ActivityRecorder interface {
	Record(ctx context.Context, orgID, dealID uuid.UUID, activity *models.Activity) error
}

type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Filter narrows a task listing. Members only ever see tasks on deals they own.
type Filter struct {
	DealID    *uuid.UUID
	OwnerID   *uuid.UUID
	OnlyOpen  bool
	DueBefore *time.Time
	DueAfter  *time.Time
}

type CreateInput struct {
	DealID      uuid.UUID
	Title       string
	Description string
	DueDate     *time.Time
}

type Service struct {
	store      Store
	deals      DealLookup
	activities ActivityRecorder
	tx         Transactor
	logger     *slog.Logger
	now        func() time.Time
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(store Store, deals DealLookup, activities ActivityRecorder, tx Transactor, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		store:      store,
		deals:      deals,
		activities: activities,
		tx:         tx,
		logger:     logger,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create adds a task to a deal and records a task_created activity in the
// same transaction.
func (s *Service) Create(ctx context.Context, rc tenancy.RequestContext, in CreateInput) (*models.Task, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	if in.DueDate != nil && isBeforeToday(*in.DueDate, s.now()) {
		return nil, ErrDueDateInPast
	}

	task := &models.Task{
		DealID:      in.DealID,
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		DueDate:     in.DueDate,
	}

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		deal, err := s.deals.Get(ctx, rc.OrganizationID(), in.DealID)
		if err != nil {
			return err
		}
		if !permission.CanUpdateEntity(rc.Role(), deal.OwnerID, rc.UserID()) {
			return ErrNotDealOwner
		}

		if err := s.store.Create(ctx, task); err != nil {
			return err
		}

		authorID := rc.UserID()
		return s.activities.Record(ctx, rc.OrganizationID(), deal.ID, &models.Activity{
			AuthorID: &authorID,
			Type:     models.ActivityTaskCreated,
			Payload: map[string]interface{}{
				"task_id":    task.ID.String(),
				"task_title": task.Title,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("task created", "task_id", task.ID, "deal_id", task.DealID, "org_id", rc.OrganizationID())
	return task, nil
}

// List returns the organization's tasks. A member's listing is restricted to
// deals they own.
func (s *Service) List(ctx context.Context, rc tenancy.RequestContext, filter Filter) ([]models.Task, error) {
	filter.OwnerID = nil
	if !permission.CanFilterByOwner(rc.Role()) {
		userID := rc.UserID()
		filter.OwnerID = &userID
	}
	return s.store.List(ctx, rc.OrganizationID(), filter)
}

// isBeforeToday compares calendar dates in UTC, ignoring time of day.
func isBeforeToday(due, now time.Time) bool {
	dy, dm, dd := due.UTC().Date()
	ny, nm, nd := now.UTC().Date()
	return time.Date(dy, dm, dd, 0, 0, 0, 0, time.UTC).Before(time.Date(ny, nm, nd, 0, 0, 0, 0, time.UTC))
}
