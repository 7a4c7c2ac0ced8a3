package handlers

import (
	"log/slog"
	"net/http"

	"github.com/hugh/dealflow/internal/activities"
	"github.com/hugh/dealflow/internal/api/dto"
	"github.com/hugh/dealflow/internal/api/respond"
	"github.com/hugh/dealflow/internal/database/models"
)

type ActivityHandler struct {
	activities *activities.Service
	logger     *slog.Logger
}

func NewActivityHandler(activities *activities.Service, logger *slog.Logger) *ActivityHandler {
	return &ActivityHandler{activities: activities, logger: logger}
}

func (h *ActivityHandler) List(w http.ResponseWriter, r *http.Request) {
	rc, ok := requestContext(w, r)
	if !ok {
		return
	}
	dealID, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	items, err := h.activities.List(r.Context(), rc, dealID)
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, items)
}

// Create accepts comments only; every other type is derived by the server.
func (h *ActivityHandler) Create(w http.ResponseWriter, r *http.Request) {
	rc, ok := requestContext(w, r)
	if !ok {
		return
	}
	dealID, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	var req dto.CreateActivityRequest
	if !decode(w, r, &req) {
		return
	}
	if t, err := models.ParseActivityType(req.Type); err != nil || t != models.ActivityComment {
		respond.Error(w, r, h.logger, activities.ErrCommentOnly)
		return
	}

	activity, err := h.activities.Comment(r.Context(), rc, dealID, req.Payload)
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusCreated, activity)
}
