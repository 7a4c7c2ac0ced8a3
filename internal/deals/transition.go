package deals

import (
	"github.com/google/uuid"
	"github.com/hugh/dealflow/internal/database/models"
	"github.com/hugh/dealflow/internal/permission"
	"github.com/shopspring/decimal"
)

// Transition is a validated patch: the deal's effective values after the
// update and which tracked fields actually change.
type Transition struct {
	OldStatus models.DealStatus
	NewStatus models.DealStatus
	OldStage  models.DealStage
	NewStage  models.DealStage
	Amount    decimal.Decimal
}

func (t Transition) StatusChanged() bool { return t.OldStatus != t.NewStatus }

func (t Transition) StageChanged() bool { return t.OldStage != t.NewStage }

// Plan validates patch against the current deal for a caller with role.
// Ownership is checked by the caller before Plan. Business rules are checked
// before the rollback permission so the first applicable failure wins.
func Plan(current *models.Deal, patch Patch, role models.Role) (Transition, error) {
	t := Transition{
		OldStatus: current.Status,
		NewStatus: current.Status,
		OldStage:  current.Stage,
		NewStage:  current.Stage,
		Amount:    current.Amount,
	}
	if patch.Status != nil {
		t.NewStatus = *patch.Status
	}
	if patch.Stage != nil {
		t.NewStage = *patch.Stage
	}
	if patch.Amount != nil {
		t.Amount = *patch.Amount
	}

	if t.NewStatus == models.DealStatusWon && !t.Amount.IsPositive() {
		return Transition{}, ErrWonRequiresPositiveAmount
	}
	if patch.Amount != nil {
		if err := checkAmount(*patch.Amount); err != nil {
			return Transition{}, err
		}
	}

	if t.OldStage.IsRollbackTo(t.NewStage) && !permission.CanRollbackStage(role) {
		return Transition{}, ErrStageRollbackForbidden
	}

	return t, nil
}

// Apply writes the transition's effective values onto deal.
func (t Transition) Apply(deal *models.Deal) {
	deal.Status = t.NewStatus
	deal.Stage = t.NewStage
	deal.Amount = t.Amount
}

// Activities derives one audit record per tracked field whose value changed,
// authored by authorID.
func (t Transition) Activities(authorID uuid.UUID) []models.Activity {
	var out []models.Activity
	if t.StatusChanged() {
		out = append(out, models.Activity{
			AuthorID: &authorID,
			Type:     models.ActivityStatusChanged,
			Payload: map[string]interface{}{
				"old_status": t.OldStatus.String(),
				"new_status": t.NewStatus.String(),
			},
		})
	}
	if t.StageChanged() {
		out = append(out, models.Activity{
			AuthorID: &authorID,
			Type:     models.ActivityStageChanged,
			Payload: map[string]interface{}{
				"old_stage": t.OldStage.String(),
				"new_stage": t.NewStage.String(),
			},
		})
	}
	return out
}
