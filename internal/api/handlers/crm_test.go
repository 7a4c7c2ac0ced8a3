package handlers_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/hugh/dealflow/internal/api/dto"
	"github.com/hugh/dealflow/internal/database/models"
	"github.com/hugh/dealflow/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskHandler_DueDate(t *testing.T) {
	s := newTestServer(t)
	org := s.b.CreateOrg(t, "acme")
	alice := s.member(org, models.RoleMember)
	deal := s.createDeal(alice, "10")

	yesterday := now.AddDate(0, 0, -1).Format(time.DateOnly)
	today := now.Format(time.DateOnly)

	rr := s.do(alice, "POST", "/api/v1/tasks", map[string]interface{}{
		"deal_id":  deal.ID.String(),
		"title":    "Call back",
		"due_date": yesterday,
	})
	testutil.AssertStatus(t, rr, http.StatusBadRequest)
	var resp dto.ErrorResponse
	testutil.ParseJSONResponse(t, rr, &resp)
	assert.Equal(t, "due_date cannot be in the past", resp.Error)

	rr = s.do(alice, "POST", "/api/v1/tasks", map[string]interface{}{
		"deal_id":  deal.ID.String(),
		"title":    "Call back",
		"due_date": today,
	})
	testutil.AssertStatus(t, rr, http.StatusCreated)

	rr = s.do(alice, "GET", "/api/v1/tasks?only_open=true&deal_id="+deal.ID.String(), nil)
	testutil.AssertStatus(t, rr, http.StatusOK)
	var tasks []models.Task
	testutil.ParseJSONResponse(t, rr, &tasks)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Call back", tasks[0].Title)

	rr = s.do(alice, "GET", "/api/v1/tasks?due_before=soon", nil)
	testutil.AssertStatus(t, rr, http.StatusBadRequest)
}

func TestContactHandler(t *testing.T) {
	s := newTestServer(t)
	org := s.b.CreateOrg(t, "acme")
	alice := s.member(org, models.RoleMember)
	bob := s.member(org, models.RoleMember)

	rr := s.do(alice, "POST", "/api/v1/contacts", map[string]interface{}{
		"name":  "Grace Hopper",
		"email": "grace@example.com",
	})
	testutil.AssertStatus(t, rr, http.StatusCreated)
	var created models.Contact
	testutil.ParseJSONResponse(t, rr, &created)
	assert.Equal(t, "grace@example.com", created.Email)
	assert.NotContains(t, rr.Body.String(), "email_encrypted")

	path := "/api/v1/contacts/" + created.ID.String()

	rr = s.do(bob, "GET", path, nil)
	testutil.AssertStatus(t, rr, http.StatusOK)

	testutil.AssertStatus(t, s.do(bob, "DELETE", path, nil), http.StatusForbidden)

	s.b.CreateDeal(t, org.ID, alice.user.ID, created.ID, models.DealStageQualification, models.DealStatusNew, "10")
	testutil.AssertStatus(t, s.do(alice, "DELETE", path, nil), http.StatusConflict)

	rr = s.do(alice, "GET", "/api/v1/contacts?search=grace", nil)
	testutil.AssertStatus(t, rr, http.StatusOK)
	var page struct {
		Data  []models.Contact `json:"data"`
		Total int64            `json:"total"`
	}
	testutil.ParseJSONResponse(t, rr, &page)
	assert.Equal(t, int64(1), page.Total)

	testutil.AssertStatus(t, s.do(alice, "GET", "/api/v1/contacts?owner_id="+alice.user.ID.String(), nil), http.StatusForbidden)
	testutil.AssertStatus(t, s.do(alice, "POST", "/api/v1/contacts", map[string]string{"email": "x@example.com"}), http.StatusBadRequest)
}

func TestAnalyticsHandler(t *testing.T) {
	s := newTestServer(t)
	org := s.b.CreateOrg(t, "acme")
	alice := s.member(org, models.RoleMember)

	rr := s.do(alice, "GET", "/api/v1/analytics/deals/summary", nil)
	testutil.AssertStatus(t, rr, http.StatusOK)
	assert.Contains(t, rr.Body.String(), `"avg_won_amount":null`)

	contact := s.b.CreateContact(t, org.ID, alice.user.ID)
	stages := []models.DealStage{models.DealStageQualification, models.DealStageProposal}
	for _, stage := range stages {
		s.b.CreateDeal(t, org.ID, alice.user.ID, contact.ID, stage, models.DealStatusInProgress, "10")
	}

	rr = s.do(alice, "GET", "/api/v1/analytics/deals/funnel", nil)
	testutil.AssertStatus(t, rr, http.StatusOK)

	var funnel struct {
		Stages []struct {
			Stage string `json:"stage"`
			Total int64  `json:"total"`
		} `json:"stages"`
		ConversionRates []struct {
			FromStage   string  `json:"from_stage"`
			ToStage     string  `json:"to_stage"`
			RatePercent float64 `json:"rate_percent"`
		} `json:"conversion_rates"`
	}
	testutil.ParseJSONResponse(t, rr, &funnel)
	require.Len(t, funnel.Stages, 4)
	assert.Equal(t, "qualification", funnel.Stages[0].Stage)
	assert.Equal(t, int64(2), funnel.Stages[0].Total)
	require.Len(t, funnel.ConversionRates, 3)
	assert.Equal(t, 50.0, funnel.ConversionRates[0].RatePercent)
	assert.Equal(t, 0.0, funnel.ConversionRates[1].RatePercent)
}
