package handlers

import (
	"log/slog"
	"net/http"

	"github.com/hugh/dealflow/internal/analytics"
	"github.com/hugh/dealflow/internal/api/respond"
)

type AnalyticsHandler struct {
	aggregator *analytics.Aggregator
	logger     *slog.Logger
}

func NewAnalyticsHandler(aggregator *analytics.Aggregator, logger *slog.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{aggregator: aggregator, logger: logger}
}

func (h *AnalyticsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	rc, ok := requestContext(w, r)
	if !ok {
		return
	}

	summary, err := h.aggregator.DealsSummary(r.Context(), rc.OrganizationID())
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, summary)
}

func (h *AnalyticsHandler) Funnel(w http.ResponseWriter, r *http.Request) {
	rc, ok := requestContext(w, r)
	if !ok {
		return
	}

	funnel, err := h.aggregator.DealsFunnel(r.Context(), rc.OrganizationID())
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, funnel)
}
