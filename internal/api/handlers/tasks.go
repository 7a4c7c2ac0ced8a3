package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/hugh/dealflow/internal/api/dto"
	"github.com/hugh/dealflow/internal/api/respond"
	"github.com/hugh/dealflow/internal/api/validation"
	"github.com/hugh/dealflow/internal/tasks"
)

type TaskHandler struct {
	tasks  *tasks.Service
	logger *slog.Logger
}

func NewTaskHandler(tasks *tasks.Service, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{tasks: tasks, logger: logger}
}

func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	rc, ok := requestContext(w, r)
	if !ok {
		return
	}

	errs := fieldErrors{}
	filter := tasks.Filter{
		DealID:    errs.uuid(r, "deal_id"),
		OnlyOpen:  errs.bool(r, "only_open"),
		DueBefore: queryDate(errs, r, "due_before"),
		DueAfter:  queryDate(errs, r, "due_after"),
	}
	if len(errs) > 0 {
		respond.ValidationFailed(w, errs)
		return
	}

	items, err := h.tasks.List(r.Context(), rc, filter)
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, items)
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	rc, ok := requestContext(w, r)
	if !ok {
		return
	}

	var req dto.CreateTaskRequest
	if !decode(w, r, &req) {
		return
	}

	errs := fieldErrors{}
	in := tasks.CreateInput{
		DealID:      errs.id("deal_id", req.DealID),
		Title:       req.Title,
		Description: req.Description,
	}
	if req.DueDate != "" {
		due, err := validation.ParseDate(req.DueDate)
		if err != nil {
			errs["due_date"] = "due_date must be a date (YYYY-MM-DD) or an RFC 3339 timestamp"
		}
		in.DueDate = &due
	}
	if len(errs) > 0 {
		respond.ValidationFailed(w, errs)
		return
	}

	task, err := h.tasks.Create(r.Context(), rc, in)
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusCreated, task)
}

func queryDate(errs fieldErrors, r *http.Request, key string) *time.Time {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil
	}
	t, err := validation.ParseDate(raw)
	if err != nil {
		errs[key] = key + " must be a date (YYYY-MM-DD) or an RFC 3339 timestamp"
		return nil
	}
	return &t
}
