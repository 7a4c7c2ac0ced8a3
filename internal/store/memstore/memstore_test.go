package memstore_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hugh/dealflow/internal/contacts"
	"github.com/hugh/dealflow/internal/database/models"
	"github.com/hugh/dealflow/internal/deals"
	"github.com/hugh/dealflow/internal/store/memstore"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithinTx_RollsBackOnError(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()
	orgID := uuid.New()

	boom := errors.New("boom")
	err := s.WithinTx(ctx, func(ctx context.Context) error {
		require.NoError(t, s.Contacts.Create(ctx, &models.Contact{OrganizationID: orgID, OwnerID: uuid.New(), Name: "Ada"}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, total, err := s.Contacts.List(ctx, orgID, contacts.Filter{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestWithinTx_NestedJoinsOuter(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()
	orgID := uuid.New()

	err := s.WithinTx(ctx, func(ctx context.Context) error {
		return s.WithinTx(ctx, func(ctx context.Context) error {
			return s.Contacts.Create(ctx, &models.Contact{OrganizationID: orgID, OwnerID: uuid.New(), Name: "Ada"})
		})
	})
	require.NoError(t, err)

	_, total, err := s.Contacts.List(ctx, orgID, contacts.Filter{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestDealStore_ReturnsCopies(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()
	orgID := uuid.New()

	deal := &models.Deal{
		OrganizationID: orgID,
		ContactID:      uuid.New(),
		Title:          "Renewal",
		Amount:         decimal.NewFromInt(10),
		Status:         models.DealStatusNew,
		Stage:          models.DealStageQualification,
	}
	require.NoError(t, s.Deals.Create(ctx, deal))

	got, err := s.Deals.Get(ctx, orgID, deal.ID)
	require.NoError(t, err)
	got.Status = models.DealStatusLost

	again, err := s.Deals.Get(ctx, orgID, deal.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DealStatusNew, again.Status)

	_, err = s.Deals.Get(ctx, uuid.New(), deal.ID)
	assert.ErrorIs(t, err, deals.ErrDealNotFound)
}

func TestWithinTx_RollbackKeepsWritesMadeOutside(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()
	dealID := uuid.New()

	outside := make(chan error, 1)
	boom := errors.New("boom")
	err := s.WithinTx(ctx, func(txCtx context.Context) error {
		go func() {
			outside <- s.Activities.Create(ctx, &models.Activity{DealID: dealID, Type: models.ActivityComment})
		}()
		select {
		case <-outside:
			t.Error("write outside the transaction did not wait for it")
		case <-time.After(50 * time.Millisecond):
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	select {
	case err := <-outside:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("write outside the transaction never completed")
	}

	items, err := s.Activities.ListByDeal(ctx, dealID)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}
