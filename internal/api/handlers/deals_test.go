package handlers_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/hugh/dealflow/internal/api/dto"
	"github.com/hugh/dealflow/internal/database/models"
	"github.com/hugh/dealflow/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDealHandler_Create(t *testing.T) {
	s := newTestServer(t)
	org := s.b.CreateOrg(t, "acme")
	alice := s.member(org, models.RoleMember)
	contact := s.b.CreateContact(t, org.ID, alice.user.ID)

	t.Run("forces defaults", func(t *testing.T) {
		rr := s.do(alice, "POST", "/api/v1/deals", map[string]interface{}{
			"contact_id": contact.ID.String(),
			"title":      "Website redesign",
			"amount":     "1500.50",
			"currency":   "EUR",
			"status":     "won",
			"stage":      "closed",
		})
		testutil.AssertStatus(t, rr, http.StatusCreated)

		var deal models.Deal
		testutil.ParseJSONResponse(t, rr, &deal)
		assert.Equal(t, models.DealStatusNew, deal.Status)
		assert.Equal(t, models.DealStageQualification, deal.Stage)
		require.NotNil(t, deal.OwnerID)
		assert.Equal(t, alice.user.ID, *deal.OwnerID)
		assert.True(t, decimal.RequireFromString("1500.50").Equal(deal.Amount))
	})

	t.Run("validation", func(t *testing.T) {
		rr := s.do(alice, "POST", "/api/v1/deals", map[string]interface{}{
			"contact_id": "nope",
			"currency":   "euro",
		})
		testutil.AssertStatus(t, rr, http.StatusBadRequest)

		var resp dto.ErrorResponse
		testutil.ParseJSONResponse(t, rr, &resp)
		assert.Contains(t, resp.Details, "contact_id")
		assert.Contains(t, resp.Details, "title")
		assert.Contains(t, resp.Details, "currency")
	})

	t.Run("contact in another organization", func(t *testing.T) {
		other := s.b.CreateOrg(t, "globex")
		foreign := s.b.CreateContact(t, other.ID, alice.user.ID)

		rr := s.do(alice, "POST", "/api/v1/deals", map[string]interface{}{
			"contact_id": foreign.ID.String(),
			"title":      "Poach",
		})
		testutil.AssertStatus(t, rr, http.StatusNotFound)
	})
}

func TestDealHandler_WonRequiresPositiveAmount(t *testing.T) {
	s := newTestServer(t)
	org := s.b.CreateOrg(t, "acme")
	alice := s.member(org, models.RoleMember)
	deal := s.createDeal(alice, "0")
	path := "/api/v1/deals/" + deal.ID.String()

	rr := s.do(alice, "PATCH", path, map[string]interface{}{"status": "won"})
	testutil.AssertStatus(t, rr, http.StatusBadRequest)
	var resp dto.ErrorResponse
	testutil.ParseJSONResponse(t, rr, &resp)
	assert.Equal(t, "Amount must be positive for won deals", resp.Error)

	rr = s.do(alice, "GET", path, nil)
	testutil.AssertStatus(t, rr, http.StatusOK)
	var current models.Deal
	testutil.ParseJSONResponse(t, rr, &current)
	assert.Equal(t, models.DealStatusNew, current.Status)
	assert.Equal(t, models.DealStageQualification, current.Stage)
}

func TestDealHandler_ExplicitZeroVersusNull(t *testing.T) {
	s := newTestServer(t)
	org := s.b.CreateOrg(t, "acme")
	alice := s.member(org, models.RoleMember)

	zero := s.createDeal(alice, "100")
	rr := s.do(alice, "PATCH", "/api/v1/deals/"+zero.ID.String(), map[string]interface{}{"status": "won", "amount": 0})
	testutil.AssertStatus(t, rr, http.StatusBadRequest)

	null := s.createDeal(alice, "100")
	rr = s.do(alice, "PATCH", "/api/v1/deals/"+null.ID.String(), map[string]interface{}{"status": "won", "amount": nil})
	testutil.AssertStatus(t, rr, http.StatusOK)

	var deal models.Deal
	testutil.ParseJSONResponse(t, rr, &deal)
	assert.Equal(t, models.DealStatusWon, deal.Status)
	assert.True(t, decimal.NewFromInt(100).Equal(deal.Amount))
}

func TestDealHandler_StageRollback(t *testing.T) {
	s := newTestServer(t)
	org := s.b.CreateOrg(t, "acme")
	alice := s.member(org, models.RoleMember)
	admin := s.member(org, models.RoleAdmin)

	contact := s.b.CreateContact(t, org.ID, alice.user.ID)
	deal := s.b.CreateDeal(t, org.ID, alice.user.ID, contact.ID, models.DealStageProposal, models.DealStatusInProgress, "10")
	path := "/api/v1/deals/" + deal.ID.String()
	body := map[string]interface{}{"stage": "qualification"}

	rr := s.do(alice, "PATCH", path, body)
	testutil.AssertStatus(t, rr, http.StatusForbidden)

	rr = s.do(admin, "PATCH", path, body)
	testutil.AssertStatus(t, rr, http.StatusOK)
	var updated models.Deal
	testutil.ParseJSONResponse(t, rr, &updated)
	assert.Equal(t, models.DealStageQualification, updated.Stage)
}

func TestDealHandler_UpdateRejections(t *testing.T) {
	s := newTestServer(t)
	org := s.b.CreateOrg(t, "acme")
	alice := s.member(org, models.RoleMember)
	bob := s.member(org, models.RoleMember)
	deal := s.createDeal(alice, "10")
	path := "/api/v1/deals/" + deal.ID.String()

	tests := []struct {
		name       string
		as         caller
		path       string
		body       interface{}
		wantStatus int
	}{
		{"unknown status", alice, path, map[string]interface{}{"status": "WON"}, http.StatusBadRequest},
		{"unknown stage", alice, path, map[string]interface{}{"stage": "done"}, http.StatusBadRequest},
		{"malformed amount", alice, path, map[string]interface{}{"amount": "ten"}, http.StatusBadRequest},
		{"negative amount", alice, path, map[string]interface{}{"amount": "-1"}, http.StatusBadRequest},
		{"won with sub-cent amount", alice, path, map[string]interface{}{"status": "won", "amount": "0.001"}, http.StatusBadRequest},
		{"amount too large", alice, path, map[string]interface{}{"amount": "1000000000000"}, http.StatusBadRequest},
		{"not the owner", bob, path, map[string]interface{}{"stage": "proposal"}, http.StatusForbidden},
		{"bad id", alice, "/api/v1/deals/123", map[string]interface{}{}, http.StatusBadRequest},
		{"unknown deal", alice, "/api/v1/deals/" + uuid.NewString(), map[string]interface{}{"stage": "proposal"}, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := s.do(tt.as, "PATCH", tt.path, tt.body)
			testutil.AssertStatus(t, rr, tt.wantStatus)
		})
	}
}

func TestDealHandler_UpdateUnknownStatusKeepsDeal(t *testing.T) {
	s := newTestServer(t)
	org := s.b.CreateOrg(t, "acme")
	alice := s.member(org, models.RoleMember)
	deal := s.createDeal(alice, "10")

	rr := s.do(alice, "PATCH", "/api/v1/deals/"+deal.ID.String(), map[string]interface{}{"status": "closed_won"})
	testutil.AssertStatus(t, rr, http.StatusBadRequest)

	var body dto.ErrorResponse
	testutil.ParseJSONResponse(t, rr, &body)
	assert.Contains(t, body.Details, "status")

	stored, err := s.b.Deals.Get(context.Background(), org.ID, deal.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DealStatusNew, stored.Status)
}

func TestDealHandler_List(t *testing.T) {
	s := newTestServer(t)
	org := s.b.CreateOrg(t, "acme")
	alice := s.member(org, models.RoleMember)
	manager := s.member(org, models.RoleManager)
	contact := s.b.CreateContact(t, org.ID, alice.user.ID)

	for i, status := range []models.DealStatus{models.DealStatusNew, models.DealStatusWon, models.DealStatusLost} {
		s.b.CreateDeal(t, org.ID, alice.user.ID, contact.ID, models.DealStageQualification, status, fmt.Sprintf("%d", (i+1)*100))
	}

	type page struct {
		Data  []models.Deal `json:"data"`
		Total int64         `json:"total"`
	}

	t.Run("status is repeatable", func(t *testing.T) {
		rr := s.do(alice, "GET", "/api/v1/deals?status=won&status=lost&order_by=amount&order=desc", nil)
		testutil.AssertStatus(t, rr, http.StatusOK)

		var resp page
		testutil.ParseJSONResponse(t, rr, &resp)
		assert.Equal(t, int64(2), resp.Total)
		require.Len(t, resp.Data, 2)
		assert.Equal(t, models.DealStatusLost, resp.Data[0].Status)
	})

	t.Run("amount range", func(t *testing.T) {
		rr := s.do(alice, "GET", "/api/v1/deals?min_amount=150&max_amount=250", nil)
		testutil.AssertStatus(t, rr, http.StatusOK)

		var resp page
		testutil.ParseJSONResponse(t, rr, &resp)
		require.Len(t, resp.Data, 1)
		assert.Equal(t, models.DealStatusWon, resp.Data[0].Status)
	})

	t.Run("owner filter", func(t *testing.T) {
		path := "/api/v1/deals?owner_id=" + alice.user.ID.String()
		testutil.AssertStatus(t, s.do(alice, "GET", path, nil), http.StatusForbidden)
		testutil.AssertStatus(t, s.do(manager, "GET", path, nil), http.StatusOK)
	})

	t.Run("bad query", func(t *testing.T) {
		rr := s.do(alice, "GET", "/api/v1/deals?order_by=title&page_size=500&status=open", nil)
		testutil.AssertStatus(t, rr, http.StatusBadRequest)

		var resp dto.ErrorResponse
		testutil.ParseJSONResponse(t, rr, &resp)
		assert.Contains(t, resp.Details, "order_by")
		assert.Contains(t, resp.Details, "page_size")
		assert.Contains(t, resp.Details, "status")
	})
}

func TestDealHandler_RequestContext(t *testing.T) {
	s := newTestServer(t)
	org := s.b.CreateOrg(t, "acme")
	other := s.b.CreateOrg(t, "globex")
	alice := s.member(org, models.RoleOwner)

	testutil.AssertStatus(t, s.anonymous("GET", "/api/v1/deals", nil), http.StatusUnauthorized)

	noOrg := alice
	noOrg.orgID = uuid.Nil
	testutil.AssertStatus(t, s.do(noOrg, "GET", "/api/v1/deals", nil), http.StatusBadRequest)

	outsider := alice
	outsider.orgID = other.ID
	testutil.AssertStatus(t, s.do(outsider, "GET", "/api/v1/deals", nil), http.StatusForbidden)
}
