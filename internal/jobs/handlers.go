// Package jobs runs analytics maintenance in the background on asynq.
package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// Refresher recomputes and re-caches one organization's analytics.
type Refresher interface {
	Refresh(ctx context.Context, orgID uuid.UUID) error
}

// OrganizationLister enumerates every organization for the periodic sweep.
type OrganizationLister interface {
	ListOrganizationIDs(ctx context.Context) ([]uuid.UUID, error)
}

type Handler struct {
	refresher Refresher
	orgs      OrganizationLister
	logger    *slog.Logger
}

func NewHandler(refresher Refresher, orgs OrganizationLister, logger *slog.Logger) *Handler {
	return &Handler{refresher: refresher, orgs: orgs, logger: logger}
}

func (h *Handler) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeAnalyticsRefresh, h.HandleAnalyticsRefresh)
	mux.HandleFunc(TypeAnalyticsSweep, h.HandleAnalyticsSweep)
}

func (h *Handler) HandleAnalyticsRefresh(ctx context.Context, t *asynq.Task) error {
	var payload AnalyticsRefreshPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w: %v", asynq.SkipRetry, err)
	}
	if payload.OrganizationID == uuid.Nil {
		return fmt.Errorf("missing organization_id: %w", asynq.SkipRetry)
	}

	if err := h.refresher.Refresh(ctx, payload.OrganizationID); err != nil {
		h.logger.Error("analytics refresh failed", "org_id", payload.OrganizationID, "error", err)
		return err
	}

	h.logger.Debug("analytics refreshed", "org_id", payload.OrganizationID)
	return nil
}

// HandleAnalyticsSweep refreshes every organization. One organization failing
// does not stop the others; all failures are returned together.
func (h *Handler) HandleAnalyticsSweep(ctx context.Context, _ *asynq.Task) error {
	orgIDs, err := h.orgs.ListOrganizationIDs(ctx)
	if err != nil {
		return fmt.Errorf("listing organizations: %w", err)
	}

	var errs []error
	for _, orgID := range orgIDs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := h.refresher.Refresh(ctx, orgID); err != nil {
			h.logger.Error("analytics refresh failed", "org_id", orgID, "error", err)
			errs = append(errs, fmt.Errorf("org %s: %w", orgID, err))
		}
	}

	h.logger.Info("analytics sweep completed",
		"organizations", len(orgIDs),
		"failed", len(errs),
	)
	return errors.Join(errs...)
}
