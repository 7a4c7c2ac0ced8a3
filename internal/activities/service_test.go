package activities_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hugh/dealflow/internal/database/models"
	"github.com/hugh/dealflow/internal/deals"
	"github.com/hugh/dealflow/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)

func TestComment_AndList(t *testing.T) {
	testutil.ForEachBackend(t, func(t *testing.T, b *testutil.Backend) {
		svc := testutil.NewServices(t, b, now)
		org := b.CreateOrg(t, "acme")
		user, rc := b.CreateMember(t, org, models.RoleMember)
		contact := b.CreateContact(t, org.ID, user.ID)
		deal := b.CreateDeal(t, org.ID, user.ID, contact.ID, models.DealStageQualification, models.DealStatusNew, "10")

		act, err := svc.Activities.Comment(context.Background(), rc, deal.ID, map[string]interface{}{"text": "called them"})
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, act.ID)
		assert.Equal(t, models.ActivityComment, act.Type)
		assert.Equal(t, now, act.CreatedAt)

		acts, err := svc.Activities.List(context.Background(), rc, deal.ID)
		require.NoError(t, err)
		require.Len(t, acts, 1)
		assert.Equal(t, "called them", acts[0].Payload["text"])
		require.NotNil(t, acts[0].AuthorID)
		assert.Equal(t, user.ID, *acts[0].AuthorID)
	})
}

func TestList_NewestFirst(t *testing.T) {
	testutil.ForEachBackend(t, func(t *testing.T, b *testutil.Backend) {
		org := b.CreateOrg(t, "acme")
		user, rc := b.CreateMember(t, org, models.RoleMember)
		contact := b.CreateContact(t, org.ID, user.ID)
		deal := b.CreateDeal(t, org.ID, user.ID, contact.ID, models.DealStageQualification, models.DealStatusNew, "10")

		for i, ts := range []time.Time{now, now.Add(2 * time.Hour), now.Add(time.Hour)} {
			svc := testutil.NewServices(t, b, ts)
			_, err := svc.Activities.Comment(context.Background(), rc, deal.ID, map[string]interface{}{"n": float64(i)})
			require.NoError(t, err)
		}

		svc := testutil.NewServices(t, b, now)
		acts, err := svc.Activities.List(context.Background(), rc, deal.ID)
		require.NoError(t, err)
		require.Len(t, acts, 3)
		assert.Equal(t, float64(1), acts[0].Payload["n"])
		assert.Equal(t, float64(2), acts[1].Payload["n"])
		assert.Equal(t, float64(0), acts[2].Payload["n"])
	})
}

func TestRecord_DealOutsideOrganization(t *testing.T) {
	testutil.ForEachBackend(t, func(t *testing.T, b *testutil.Backend) {
		svc := testutil.NewServices(t, b, now)
		org := b.CreateOrg(t, "acme")
		other := b.CreateOrg(t, "globex")
		user, rc := b.CreateMember(t, org, models.RoleOwner)
		contact := b.CreateContact(t, other.ID, user.ID)
		foreign := b.CreateDeal(t, other.ID, user.ID, contact.ID, models.DealStageQualification, models.DealStatusNew, "10")

		_, err := svc.Activities.Comment(context.Background(), rc, foreign.ID, nil)
		assert.ErrorIs(t, err, deals.ErrDealNotFound)

		_, err = svc.Activities.List(context.Background(), rc, foreign.ID)
		assert.ErrorIs(t, err, deals.ErrDealNotFound)

		_, err = svc.Activities.List(context.Background(), rc, uuid.New())
		assert.ErrorIs(t, err, deals.ErrDealNotFound)
	})
}

func TestRecord_EmptyPayloadBecomesObject(t *testing.T) {
	testutil.ForEachBackend(t, func(t *testing.T, b *testutil.Backend) {
		svc := testutil.NewServices(t, b, now)
		org := b.CreateOrg(t, "acme")
		user, rc := b.CreateMember(t, org, models.RoleMember)
		contact := b.CreateContact(t, org.ID, user.ID)
		deal := b.CreateDeal(t, org.ID, user.ID, contact.ID, models.DealStageQualification, models.DealStatusNew, "10")

		act := &models.Activity{Type: models.ActivitySystem}
		require.NoError(t, svc.Activities.Record(context.Background(), rc.OrganizationID(), deal.ID, act))

		assert.Nil(t, act.AuthorID)
		assert.NotNil(t, act.Payload)
	})
}

func TestList_EqualTimestampsNewestInsertFirst(t *testing.T) {
	testutil.ForEachBackend(t, func(t *testing.T, b *testutil.Backend) {
		svc := testutil.NewServices(t, b, now)
		org := b.CreateOrg(t, "acme")
		user, rc := b.CreateMember(t, org, models.RoleMember)
		contact := b.CreateContact(t, org.ID, user.ID)
		deal := b.CreateDeal(t, org.ID, user.ID, contact.ID, models.DealStageQualification, models.DealStatusNew, "10")

		status := models.DealStatusInProgress
		stage := models.DealStageProposal
		_, err := svc.Deals.Update(context.Background(), rc, deal.ID, deals.Patch{Status: &status, Stage: &stage})
		require.NoError(t, err)
		_, err = svc.Activities.Comment(context.Background(), rc, deal.ID, map[string]interface{}{"text": "sent proposal"})
		require.NoError(t, err)

		acts, err := svc.Activities.List(context.Background(), rc, deal.ID)
		require.NoError(t, err)
		require.Len(t, acts, 3)
		for _, a := range acts {
			assert.True(t, a.CreatedAt.Equal(now))
		}
		assert.Equal(t, models.ActivityComment, acts[0].Type)
		assert.Equal(t, models.ActivityStageChanged, acts[1].Type)
		assert.Equal(t, models.ActivityStatusChanged, acts[2].Type)
	})
}
