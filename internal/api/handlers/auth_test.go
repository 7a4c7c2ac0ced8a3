package handlers_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/hugh/dealflow/internal/api/dto"
	"github.com/hugh/dealflow/internal/database/models"
	"github.com/hugh/dealflow/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthHandler_Register(t *testing.T) {
	s := newTestServer(t)

	t.Run("successful registration", func(t *testing.T) {
		rr := s.anonymous("POST", "/api/v1/auth/register", map[string]string{
			"email":    "newuser@example.com",
			"password": "securepassword123",
			"name":     "New User",
			"org_name": "New Org",
		})
		testutil.AssertStatus(t, rr, http.StatusCreated)

		var resp dto.AuthResponse
		testutil.ParseJSONResponse(t, rr, &resp)
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, "newuser@example.com", resp.User.Email)
		require.NotNil(t, resp.Organization)
		assert.Equal(t, "New Org", resp.Organization.Name)
		assert.Equal(t, "owner", resp.Organization.Role)
	})

	t.Run("default org name", func(t *testing.T) {
		rr := s.anonymous("POST", "/api/v1/auth/register", map[string]string{
			"email":    "another@example.com",
			"password": "securepassword123",
			"name":     "Another User",
		})
		testutil.AssertStatus(t, rr, http.StatusCreated)

		var resp dto.AuthResponse
		testutil.ParseJSONResponse(t, rr, &resp)
		assert.Equal(t, "Another User's Team", resp.Organization.Name)
	})

	t.Run("duplicate email", func(t *testing.T) {
		rr := s.anonymous("POST", "/api/v1/auth/register", map[string]string{
			"email":    "NEWUSER@example.com",
			"password": "securepassword123",
			"name":     "Dup",
		})
		testutil.AssertStatus(t, rr, http.StatusConflict)
	})

	t.Run("validation", func(t *testing.T) {
		rr := s.anonymous("POST", "/api/v1/auth/register", map[string]string{
			"email":    "not-an-email",
			"password": "short",
		})
		testutil.AssertStatus(t, rr, http.StatusBadRequest)

		var resp dto.ErrorResponse
		testutil.ParseJSONResponse(t, rr, &resp)
		assert.Contains(t, resp.Details, "email")
		assert.Contains(t, resp.Details, "password")
		assert.Contains(t, resp.Details, "name")
	})

	t.Run("empty body", func(t *testing.T) {
		rr := s.anonymous("POST", "/api/v1/auth/register", nil)
		testutil.AssertStatus(t, rr, http.StatusBadRequest)
	})
}

func TestAuthHandler_LoginAndMe(t *testing.T) {
	s := newTestServer(t)
	user := s.b.CreateUser(t)

	rr := s.anonymous("POST", "/api/v1/auth/login", map[string]string{
		"email":    strings.ToUpper(user.Email),
		"password": "testpassword123",
	})
	testutil.AssertStatus(t, rr, http.StatusOK)
	var resp dto.AuthResponse
	testutil.ParseJSONResponse(t, rr, &resp)

	me := s.do(caller{user: user, token: resp.Token}, "GET", "/api/v1/me", nil)
	testutil.AssertStatus(t, me, http.StatusOK)
	var u dto.UserDTO
	testutil.ParseJSONResponse(t, me, &u)
	assert.Equal(t, user.ID.String(), u.ID)

	rr = s.anonymous("POST", "/api/v1/auth/login", map[string]string{
		"email":    user.Email,
		"password": "wrongpassword",
	})
	testutil.AssertStatus(t, rr, http.StatusUnauthorized)
}

func TestOrganizationHandler(t *testing.T) {
	s := newTestServer(t)
	org := s.b.CreateOrg(t, "acme")
	admin := s.member(org, models.RoleAdmin)
	invitee := s.b.CreateUser(t)

	rr := s.do(admin, "POST", "/api/v1/organizations/members", map[string]string{"email": invitee.Email, "role": "owner"})
	testutil.AssertStatus(t, rr, http.StatusForbidden)

	rr = s.do(admin, "POST", "/api/v1/organizations/members", map[string]string{"email": invitee.Email, "role": "manager"})
	testutil.AssertStatus(t, rr, http.StatusCreated)

	rr = s.do(admin, "POST", "/api/v1/organizations/members", map[string]string{"email": invitee.Email, "role": "member"})
	testutil.AssertStatus(t, rr, http.StatusConflict)

	rr = s.do(admin, "POST", "/api/v1/organizations/members", map[string]string{"email": invitee.Email, "role": "boss"})
	testutil.AssertStatus(t, rr, http.StatusBadRequest)

	token := testutil.GenerateTestToken(t, s.svc.JWT, invitee.ID, invitee.Email)
	rr = s.do(caller{user: invitee, token: token}, "GET", "/api/v1/organizations/me", nil)
	testutil.AssertStatus(t, rr, http.StatusOK)

	var orgs []dto.OrganizationDTO
	testutil.ParseJSONResponse(t, rr, &orgs)
	require.Len(t, orgs, 1)
	assert.Equal(t, org.ID.String(), orgs[0].ID)
	assert.Equal(t, "manager", orgs[0].Role)
}
