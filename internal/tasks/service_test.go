package tasks_test

import (
	"context"
	"testing"
	"time"

	"github.com/hugh/dealflow/internal/apperr"
	"github.com/hugh/dealflow/internal/database/models"
	"github.com/hugh/dealflow/internal/deals"
	"github.com/hugh/dealflow/internal/tasks"
	"github.com/hugh/dealflow/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 6, 1, 15, 45, 0, 0, time.UTC)

func at(t time.Time) *time.Time { return &t }

func TestCreate_DueDate(t *testing.T) {
	tests := []struct {
		name    string
		due     *time.Time
		wantErr error
	}{
		{"yesterday", at(now.AddDate(0, 0, -1)), tasks.ErrDueDateInPast},
		{"today at midnight", at(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)), nil},
		{"today later", at(now.Add(time.Hour)), nil},
		{"tomorrow", at(now.AddDate(0, 0, 1)), nil},
		{"none", nil, nil},
	}

	testutil.ForEachBackend(t, func(t *testing.T, b *testutil.Backend) {
		svc := testutil.NewServices(t, b, now)
		org := b.CreateOrg(t, "acme")
		user, rc := b.CreateMember(t, org, models.RoleMember)
		contact := b.CreateContact(t, org.ID, user.ID)
		deal := b.CreateDeal(t, org.ID, user.ID, contact.ID, models.DealStageQualification, models.DealStatusNew, "10")

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				task, err := svc.Tasks.Create(context.Background(), rc, tasks.CreateInput{
					DealID:  deal.ID,
					Title:   "Follow up",
					DueDate: tt.due,
				})
				if tt.wantErr != nil {
					require.ErrorIs(t, err, tt.wantErr)
					assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
					assert.Equal(t, "due_date cannot be in the past", err.Error())
					return
				}
				require.NoError(t, err)
				assert.False(t, task.IsDone)
			})
		}
	})
}

func TestCreate_RecordsActivity(t *testing.T) {
	testutil.ForEachBackend(t, func(t *testing.T, b *testutil.Backend) {
		svc := testutil.NewServices(t, b, now)
		org := b.CreateOrg(t, "acme")
		user, rc := b.CreateMember(t, org, models.RoleMember)
		contact := b.CreateContact(t, org.ID, user.ID)
		deal := b.CreateDeal(t, org.ID, user.ID, contact.ID, models.DealStageQualification, models.DealStatusNew, "10")

		task, err := svc.Tasks.Create(context.Background(), rc, tasks.CreateInput{DealID: deal.ID, Title: "Send proposal"})
		require.NoError(t, err)

		acts, err := svc.Activities.List(context.Background(), rc, deal.ID)
		require.NoError(t, err)
		require.Len(t, acts, 1)
		assert.Equal(t, models.ActivityTaskCreated, acts[0].Type)
		assert.Equal(t, task.ID.String(), acts[0].Payload["task_id"])
		assert.Equal(t, "Send proposal", acts[0].Payload["task_title"])
	})
}

func TestCreate_Permissions(t *testing.T) {
	testutil.ForEachBackend(t, func(t *testing.T, b *testutil.Backend) {
		svc := testutil.NewServices(t, b, now)
		org := b.CreateOrg(t, "acme")
		other := b.CreateOrg(t, "globex")
		owner, _ := b.CreateMember(t, org, models.RoleMember)
		_, strangerRC := b.CreateMember(t, org, models.RoleMember)
		_, managerRC := b.CreateMember(t, org, models.RoleManager)
		contact := b.CreateContact(t, org.ID, owner.ID)
		deal := b.CreateDeal(t, org.ID, owner.ID, contact.ID, models.DealStageQualification, models.DealStatusNew, "10")

		_, err := svc.Tasks.Create(context.Background(), strangerRC, tasks.CreateInput{DealID: deal.ID, Title: "x"})
		assert.ErrorIs(t, err, tasks.ErrNotDealOwner)

		_, err = svc.Tasks.Create(context.Background(), managerRC, tasks.CreateInput{DealID: deal.ID, Title: "x"})
		assert.NoError(t, err)

		foreignContact := b.CreateContact(t, other.ID, owner.ID)
		foreign := b.CreateDeal(t, other.ID, owner.ID, foreignContact.ID, models.DealStageQualification, models.DealStatusNew, "10")
		_, err = svc.Tasks.Create(context.Background(), managerRC, tasks.CreateInput{DealID: foreign.ID, Title: "x"})
		assert.ErrorIs(t, err, deals.ErrDealNotFound)
	})
}

func TestList_ScopedByRole(t *testing.T) {
	testutil.ForEachBackend(t, func(t *testing.T, b *testutil.Backend) {
		svc := testutil.NewServices(t, b, now)
		org := b.CreateOrg(t, "acme")
		alice, aliceRC := b.CreateMember(t, org, models.RoleMember)
		bob, bobRC := b.CreateMember(t, org, models.RoleMember)
		_, adminRC := b.CreateMember(t, org, models.RoleAdmin)
		contact := b.CreateContact(t, org.ID, alice.ID)
		aliceDeal := b.CreateDeal(t, org.ID, alice.ID, contact.ID, models.DealStageQualification, models.DealStatusNew, "10")
		bobDeal := b.CreateDeal(t, org.ID, bob.ID, contact.ID, models.DealStageQualification, models.DealStatusNew, "10")

		_, err := svc.Tasks.Create(context.Background(), aliceRC, tasks.CreateInput{DealID: aliceDeal.ID, Title: "a", DueDate: at(now.AddDate(0, 0, 3))})
		require.NoError(t, err)
		_, err = svc.Tasks.Create(context.Background(), bobRC, tasks.CreateInput{DealID: bobDeal.ID, Title: "b"})
		require.NoError(t, err)

		mine, err := svc.Tasks.List(context.Background(), aliceRC, tasks.Filter{})
		require.NoError(t, err)
		require.Len(t, mine, 1)
		assert.Equal(t, "a", mine[0].Title)

		all, err := svc.Tasks.List(context.Background(), adminRC, tasks.Filter{OnlyOpen: true})
		require.NoError(t, err)
		assert.Len(t, all, 2)

		due, err := svc.Tasks.List(context.Background(), adminRC, tasks.Filter{DueBefore: at(now.AddDate(0, 0, 7))})
		require.NoError(t, err)
		require.Len(t, due, 1)
		assert.Equal(t, aliceDeal.ID, due[0].DealID)
	})
}
