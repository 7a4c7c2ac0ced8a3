// Package deals implements the deal lifecycle: creation, listing, and the
// state machine that validates and applies status/stage/amount changes and
// derives their audit records.
package deals

import (
	"context"

	"github.com/google/uuid"
	"github.com/hugh/dealflow/internal/apperr"
	"github.com/hugh/dealflow/internal/database/models"
	"github.com/shopspring/decimal"
)

var (
	ErrDealNotFound              = apperr.NotFound("Deal not found")
	ErrNotDealOwner              = apperr.PermissionDenied("You can only update your own deals")
	ErrWonRequiresPositiveAmount = apperr.Validation("Amount must be positive for won deals")
	ErrNegativeAmount            = apperr.Validation("Amount must not be negative")
	ErrAmountPrecision           = apperr.Validation("Amount must have at most 2 decimal places")
	ErrAmountTooLarge            = apperr.Validation("Amount must be less than 1000000000000")
	ErrStageRollbackForbidden    = apperr.PermissionDenied("Stage rollback is not allowed for your role")
	ErrOwnerFilterForbidden      = apperr.PermissionDenied("Filtering by owner_id is not allowed for member role")
	ErrTitleRequired             = apperr.Validation("Title is required")
)

// checkAmount rejects amounts the amount column cannot store exactly.
func checkAmount(amount decimal.Decimal) error {
	switch {
	case amount.IsNegative():
		return ErrNegativeAmount
	case !amount.Equal(amount.Truncate(models.AmountScale)):
		return ErrAmountPrecision
	case amount.GreaterThanOrEqual(models.MaxAmount):
		return ErrAmountTooLarge
	}
	return nil
}

// Patch is a partial update. A nil field is omitted; a non-nil field is a
// provided value, including an explicit zero amount.
type Patch struct {
	Status *models.DealStatus
	Stage  *models.DealStage
	Amount *decimal.Decimal
}

func (p Patch) IsEmpty() bool {
	return p.Status == nil && p.Stage == nil && p.Amount == nil
}

type CreateInput struct {
	ContactID uuid.UUID
	Title     string
	Amount    decimal.Decimal
	Currency  string
}

type SortKey uint8

const (
	SortDefault SortKey = iota
	SortCreatedAt
	SortAmount
)

// Filter narrows a deal listing. Zero values mean "no constraint".
type Filter struct {
	Statuses   []models.DealStatus
	MinAmount  *decimal.Decimal
	MaxAmount  *decimal.Decimal
	Stage      *models.DealStage
	OwnerID    *uuid.UUID
	OrderBy    SortKey
	Descending bool
	Page       int
	PageSize   int
}

const (
	DefaultPageSize = 50
	MaxPageSize     = 100
)

func (f *Filter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = DefaultPageSize
	}
	if f.PageSize > MaxPageSize {
		f.PageSize = MaxPageSize
	}
}

func (f *Filter) Offset() int {
	return (f.Page - 1) * f.PageSize
}

// Store persists deals. Every lookup is scoped to an organization and
// returns ErrDealNotFound for a deal outside it.
type Store interface {
	Get(ctx context.Context, orgID, dealID uuid.UUID) (*models.Deal, error)
	// GetForUpdate is Get that also locks the row for the enclosing transaction
	// where the engine supports it.
	GetForUpdate(ctx context.Context, orgID, dealID uuid.UUID) (*models.Deal, error)
	Create(ctx context.Context, deal *models.Deal) error
	// Update persists status, stage, amount and updated_at.
	Update(ctx context.Context, deal *models.Deal) error
	List(ctx context.Context, orgID uuid.UUID, filter Filter) ([]models.Deal, int64, error)
}

// ContactLookup finds a contact inside an organization, failing with a
// not-found error for a contact in another organization.
type ContactLookup interface {
	FindContact(ctx context.Context, orgID, contactID uuid.UUID) (*models.Contact, error)
}

// ActivityRecorder appends audit records for a deal.
type ActivityRecorder interface {
	Record(ctx context.Context, orgID, dealID uuid.UUID, activity *models.Activity) error
}

type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// ChangeNotifier is told after a committed create or update so derived data
// such as cached analytics can be refreshed.
type ChangeNotifier interface {
	DealsChanged(ctx context.Context, orgID uuid.UUID)
}
