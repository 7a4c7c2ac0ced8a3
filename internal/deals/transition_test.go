package deals

import (
	"testing"

	"github.com/google/uuid"
	"github.com/hugh/dealflow/internal/database/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func statusPtr(s models.DealStatus) *models.DealStatus { return &s }
func stagePtr(s models.DealStage) *models.DealStage    { return &s }
func amountPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func dealAt(stage models.DealStage, status models.DealStatus, amount string) *models.Deal {
	return &models.Deal{Stage: stage, Status: status, Amount: decimal.RequireFromString(amount)}
}

func TestPlan_WonRequiresPositiveEffectiveAmount(t *testing.T) {
	tests := []struct {
		name    string
		status  models.DealStatus
		current string
		patch   Patch
		wantErr error
	}{
		{"status only, zero amount on deal", models.DealStatusNew, "0", Patch{Status: statusPtr(models.DealStatusWon)}, ErrWonRequiresPositiveAmount},
		{"status and explicit zero", models.DealStatusNew, "100", Patch{Status: statusPtr(models.DealStatusWon), Amount: amountPtr("0")}, ErrWonRequiresPositiveAmount},
		{"status with positive amount on deal", models.DealStatusNew, "100", Patch{Status: statusPtr(models.DealStatusWon)}, nil},
		{"status and positive amount", models.DealStatusNew, "0", Patch{Status: statusPtr(models.DealStatusWon), Amount: amountPtr("0.01")}, nil},
		{"zeroing amount of a won deal", models.DealStatusWon, "50", Patch{Amount: amountPtr("0")}, ErrWonRequiresPositiveAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Plan(dealAt(models.DealStageQualification, tt.status, tt.current), tt.patch, models.RoleMember)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestPlan_ExplicitZeroDiffersFromOmitted(t *testing.T) {
	deal := dealAt(models.DealStageProposal, models.DealStatusInProgress, "250")

	omitted, err := Plan(deal, Patch{}, models.RoleMember)
	require.NoError(t, err)
	assert.True(t, omitted.Amount.Equal(decimal.NewFromInt(250)))

	zeroed, err := Plan(deal, Patch{Amount: amountPtr("0")}, models.RoleMember)
	require.NoError(t, err)
	assert.True(t, zeroed.Amount.IsZero())
}

func TestPlan_NegativeAmountRejected(t *testing.T) {
	_, err := Plan(dealAt(models.DealStageQualification, models.DealStatusNew, "10"), Patch{Amount: amountPtr("-1")}, models.RoleOwner)
	assert.ErrorIs(t, err, ErrNegativeAmount)
}

func TestPlan_AmountMustFitColumn(t *testing.T) {
	deal := dealAt(models.DealStageQualification, models.DealStatusNew, "0")
	tests := []struct {
		name    string
		patch   Patch
		wantErr error
	}{
		{"won with sub-cent amount", Patch{Status: statusPtr(models.DealStatusWon), Amount: amountPtr("0.001")}, ErrAmountPrecision},
		{"three decimal places", Patch{Amount: amountPtr("12.345")}, ErrAmountPrecision},
		{"trailing zeros are fine", Patch{Amount: amountPtr("12.500")}, nil},
		{"largest storable", Patch{Amount: amountPtr("999999999999.99")}, nil},
		{"overflows column", Patch{Amount: amountPtr("1000000000000")}, ErrAmountTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Plan(deal, tt.patch, models.RoleMember)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestPlan_StageRollbackByRole(t *testing.T) {
	pipeline := models.Pipeline()
	for _, role := range models.Roles() {
		for _, from := range pipeline {
			for _, to := range pipeline {
				_, err := Plan(dealAt(from, models.DealStatusNew, "0"), Patch{Stage: stagePtr(to)}, role)

				rollback := to.Index() < from.Index()
				privileged := role == models.RoleAdmin || role == models.RoleOwner
				if rollback && !privileged {
					assert.ErrorIs(t, err, ErrStageRollbackForbidden, "%s: %s -> %s", role, from, to)
				} else {
					assert.NoError(t, err, "%s: %s -> %s", role, from, to)
				}
			}
		}
	}
}

func TestPlan_AmountRuleBeforeRollbackRule(t *testing.T) {
	deal := dealAt(models.DealStageNegotiation, models.DealStatusNew, "0")
	patch := Patch{Status: statusPtr(models.DealStatusWon), Stage: stagePtr(models.DealStageQualification)}

	_, err := Plan(deal, patch, models.RoleMember)
	assert.ErrorIs(t, err, ErrWonRequiresPositiveAmount)
}

func TestPlan_ArbitraryStatusJumpsAllowed(t *testing.T) {
	for _, from := range models.DealStatuses() {
		for _, to := range models.DealStatuses() {
			_, err := Plan(dealAt(models.DealStageQualification, from, "10"), Patch{Status: statusPtr(to)}, models.RoleMember)
			assert.NoError(t, err, "%s -> %s", from, to)
		}
	}
}

func TestTransition_Activities(t *testing.T) {
	author := uuid.New()

	t.Run("only changed fields", func(t *testing.T) {
		tr, err := Plan(dealAt(models.DealStageQualification, models.DealStatusNew, "100"),
			Patch{Status: statusPtr(models.DealStatusWon), Stage: stagePtr(models.DealStageQualification)}, models.RoleMember)
		require.NoError(t, err)

		acts := tr.Activities(author)
		require.Len(t, acts, 1)
		assert.Equal(t, models.ActivityStatusChanged, acts[0].Type)
		assert.Equal(t, map[string]interface{}{"old_status": "new", "new_status": "won"}, acts[0].Payload)
		assert.Equal(t, author, *acts[0].AuthorID)
	})

	t.Run("both fields", func(t *testing.T) {
		tr, err := Plan(dealAt(models.DealStageQualification, models.DealStatusNew, "100"),
			Patch{Status: statusPtr(models.DealStatusInProgress), Stage: stagePtr(models.DealStageNegotiation)}, models.RoleMember)
		require.NoError(t, err)

		acts := tr.Activities(author)
		require.Len(t, acts, 2)
		assert.Equal(t, models.ActivityStageChanged, acts[1].Type)
		assert.Equal(t, map[string]interface{}{"old_stage": "qualification", "new_stage": "negotiation"}, acts[1].Payload)
	})

	t.Run("amount only", func(t *testing.T) {
		tr, err := Plan(dealAt(models.DealStageQualification, models.DealStatusNew, "100"), Patch{Amount: amountPtr("5")}, models.RoleMember)
		require.NoError(t, err)
		assert.Empty(t, tr.Activities(author))
	})
}

func TestFilter_Normalize(t *testing.T) {
	f := Filter{Page: 0, PageSize: 500}
	f.Normalize()
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, MaxPageSize, f.PageSize)
	assert.Equal(t, 0, f.Offset())

	f = Filter{Page: 3}
	f.Normalize()
	assert.Equal(t, DefaultPageSize, f.PageSize)
	assert.Equal(t, 100, f.Offset())
}
