package deals

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hugh/dealflow/internal/apperr"
	"github.com/hugh/dealflow/internal/database/models"
	"github.com/hugh/dealflow/internal/metrics"
	"github.com/hugh/dealflow/internal/permission"
	"github.com/hugh/dealflow/internal/tenancy"
)

const defaultCurrency = "USD"

type Service struct {
	store      Store
	contacts   ContactLookup
	activities ActivityRecorder
	tx         Transactor
	notifier   ChangeNotifier
	logger     *slog.Logger
	now        func() time.Time
}

type Option func(*Service)

// WithNotifier registers a listener for committed deal changes.
func WithNotifier(n ChangeNotifier) Option {
	return func(s *Service) { s.notifier = n }
}

// WithClock overrides the time source used for updated_at.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(store Store, contacts ContactLookup, activities ActivityRecorder, tx Transactor, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		store:      store,
		contacts:   contacts,
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

// Create opens a deal owned by the caller. Status and stage always start at
// new/qualification.
func (s *Service) Create(ctx context.Context, rc tenancy.RequestContext, in CreateInput) (*models.Deal, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	if err := checkAmount(in.Amount); err != nil {
		return nil, err
	}
	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = defaultCurrency
	}

	ownerID := rc.UserID()
	deal := &models.Deal{
		OrganizationID: rc.OrganizationID(),
		ContactID:      in.ContactID,
		OwnerID:        &ownerID,
		Title:          title,
		Amount:         in.Amount,
		Currency:       currency,
		Status:         models.DealStatusNew,
		Stage:          models.DealStageQualification,
	}

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.contacts.FindContact(ctx, rc.OrganizationID(), in.ContactID); err != nil {
			return err
		}
		now := s.now().UTC()
		deal.CreatedAt = now
		deal.UpdatedAt = now
		return s.store.Create(ctx, deal)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("deal created",
		"deal_id", deal.ID,
		"org_id", deal.OrganizationID,
		"owner_id", ownerID,
	)
	s.notify(ctx, rc.OrganizationID())

	return deal, nil
}

// Update applies patch to a deal. Checks run in a fixed order and the first
// failure is returned: existence, ownership, amount rules, stage rollback.
// The deal row and its audit records are written in one
// transaction.
func (s *Service) Update(ctx context.Context, rc tenancy.RequestContext, dealID uuid.UUID, patch Patch) (*models.Deal, error) {
	var (
		updated *models.Deal
		plan    Transition
	)

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		deal, err := s.store.GetForUpdate(ctx, rc.OrganizationID(), dealID)
		if err != nil {
			return err
		}

		if !permission.CanUpdateEntity(rc.Role(), deal.OwnerID, rc.UserID()) {
			return ErrNotDealOwner
		}

		plan, err = Plan(deal, patch, rc.Role())
		if err != nil {
			return err
		}

		plan.Apply(deal)
		deal.UpdatedAt = s.now().UTC()
		if err := s.store.Update(ctx, deal); err != nil {
			return err
		}

		for _, activity := range plan.Activities(rc.UserID()) {
			activity := activity
			if err := s.activities.Record(ctx, rc.OrganizationID(), deal.ID, &activity); err != nil {
				return err
			}
		}

		updated = deal
		return nil
	})
	if err != nil {
		if kind := apperr.KindOf(err); kind != apperr.KindInternal {
			metrics.DealUpdatesRejectedTotal.WithLabelValues(kind.String()).Inc()
		}
		return nil, err
	}

	if plan.StatusChanged() {
		metrics.DealTransitionsTotal.WithLabelValues("status", plan.OldStatus.String(), plan.NewStatus.String()).Inc()
	}
	if plan.StageChanged() {
		metrics.DealTransitionsTotal.WithLabelValues("stage", plan.OldStage.String(), plan.NewStage.String()).Inc()
	}

	s.logger.Info("deal updated",
		"deal_id", updated.ID,
		"org_id", updated.OrganizationID,
		"user_id", rc.UserID(),
		"status", updated.Status.String(),
		"stage", updated.Stage.String(),
	)
	s.notify(ctx, rc.OrganizationID())

	return updated, nil
}

func (s *Service) Get(ctx context.Context, rc tenancy.RequestContext, dealID uuid.UUID) (*models.Deal, error) {
	return s.store.Get(ctx, rc.OrganizationID(), dealID)
}

// List returns one page of the organization's deals and the total match count.
func (s *Service) List(ctx context.Context, rc tenancy.RequestContext, filter Filter) ([]models.Deal, int64, error) {
	if filter.OwnerID != nil && !permission.CanFilterByOwner(rc.Role()) {
		return nil, 0, ErrOwnerFilterForbidden
	}
	filter.Normalize()
	return s.store.List(ctx, rc.OrganizationID(), filter)
}

func (s *Service) notify(ctx context.Context, orgID uuid.UUID) {
	if s.notifier != nil {
		s.notifier.DealsChanged(ctx, orgID)
	}
}
