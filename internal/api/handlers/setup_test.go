package handlers_test

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hugh/dealflow/internal/api"
	"github.com/hugh/dealflow/internal/database/models"
	"github.com/hugh/dealflow/internal/testutil"
)

var now = time.Date(2024, 6, 1, 14, 0, 0, 0, time.UTC)

type testServer struct {
	t      *testing.T
	router *api.Router
	svc    *testutil.Services
	b      *testutil.Backend
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	b := testutil.NewMemoryBackend()
	svc := testutil.NewServices(t, b, now)

	router := api.NewRouter(api.RouterConfig{
		DB:            b.DB,
		Logger:        testutil.Logger(),
		JWTService:    svc.JWT,
		AuthService:   svc.Auth,
		Organizations: svc.Organizations,
		Resolver:      svc.Resolver,
		Contacts:      svc.Contacts,
		Activities:    svc.Activities,
		Deals:         svc.Deals,
		Tasks:         svc.Tasks,
		Analytics:     svc.Analytics,
	})

	return &testServer{t: t, router: router, svc: svc, b: b}
}

// caller is a user acting inside one organization.
type caller struct {
	user  *models.User
	orgID uuid.UUID
	token string
}

func (s *testServer) member(org *models.Organization, role models.Role) caller {
	s.t.Helper()
	user, _ := s.b.CreateMember(s.t, org, role)
	return caller{
		user:  user,
		orgID: org.ID,
		token: testutil.GenerateTestToken(s.t, s.svc.JWT, user.ID, user.Email),
	}
}

func (s *testServer) do(c caller, method, path string, body interface{}) *httptest.ResponseRecorder {
	s.t.Helper()
	req := testutil.AuthenticatedRequest(s.t, method, path, body, c.token, c.orgID)
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)
	return rr
}

func (s *testServer) anonymous(method, path string, body interface{}) *httptest.ResponseRecorder {
	s.t.Helper()
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, testutil.UnauthenticatedRequest(s.t, method, path, body))
	return rr
}

func (s *testServer) createDeal(c caller, amount string) *models.Deal {
	s.t.Helper()
	contact := s.b.CreateContact(s.t, c.orgID, c.user.ID)
	return s.b.CreateDeal(s.t, c.orgID, c.user.ID, contact.ID, models.DealStageQualification, models.DealStatusNew, amount)
}
