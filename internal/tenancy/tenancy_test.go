package tenancy_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/hugh/dealflow/internal/database/models"
	"github.com/hugh/dealflow/internal/tenancy"
	"github.com/hugh/dealflow/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSelector(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name    string
		raw     string
		want    uuid.UUID
		wantErr error
	}{
		{"valid", id.String(), id, nil},
		{"missing", "", uuid.Nil, tenancy.ErrOrganizationMissing},
		{"garbage", "acme", uuid.Nil, tenancy.ErrOrganizationInvalid},
		{"truncated", id.String()[:20], uuid.Nil, tenancy.ErrOrganizationInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tenancy.ParseSelector(tt.raw)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolve(t *testing.T) {
	testutil.ForEachBackend(t, func(t *testing.T, b *testutil.Backend) {
		resolver := tenancy.NewResolver(b.Accounts)
		org := b.CreateOrg(t, "acme")
		other := b.CreateOrg(t, "globex")
		user, _ := b.CreateMember(t, org, models.RoleManager)

		rc, err := resolver.Resolve(context.Background(), user.ID, org.ID)
		require.NoError(t, err)
		assert.Equal(t, user.ID, rc.UserID())
		assert.Equal(t, org.ID, rc.OrganizationID())
		assert.Equal(t, models.RoleManager, rc.Role())

		_, err = resolver.Resolve(context.Background(), user.ID, other.ID)
		assert.ErrorIs(t, err, tenancy.ErrNotAMember)

		_, err = resolver.Resolve(context.Background(), user.ID, uuid.New())
		assert.ErrorIs(t, err, tenancy.ErrNotAMember)
	})
}

func TestContextRoundTrip(t *testing.T) {
	_, ok := tenancy.FromContext(context.Background())
	assert.False(t, ok)

	rc := tenancy.NewRequestContext(uuid.New(), uuid.New(), models.RoleAdmin)
	got, ok := tenancy.FromContext(tenancy.WithRequestContext(context.Background(), rc))
	require.True(t, ok)
	assert.Equal(t, rc, got)
}
