package handlers

import (
	"log/slog"
	"net/http"

	"github.com/hugh/dealflow/internal/api/dto"
	"github.com/hugh/dealflow/internal/api/respond"
	"github.com/hugh/dealflow/internal/contacts"
)

type ContactHandler struct {
	contacts *contacts.Service
	logger   *slog.Logger
}

func NewContactHandler(contacts *contacts.Service, logger *slog.Logger) *ContactHandler {
	return &ContactHandler{contacts: contacts, logger: logger}
}

func (h *ContactHandler) List(w http.ResponseWriter, r *http.Request) {
	rc, ok := requestContext(w, r)
	if !ok {
		return
	}

	errs := fieldErrors{}
	filter := contacts.Filter{
		OwnerID:  errs.uuid(r, "owner_id"),
		Search:   r.URL.Query().Get("search"),
		Page:     errs.int(r, "page"),
		PageSize: errs.int(r, "page_size"),
	}
	if len(errs) > 0 {
		respond.ValidationFailed(w, errs)
		return
	}

	items, total, err := h.contacts.List(r.Context(), rc, filter)
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	filter.Normalize()
	respond.JSON(w, http.StatusOK, dto.NewPaginatedResponse(items, total, filter.Page, filter.PageSize))
}

func (h *ContactHandler) Create(w http.ResponseWriter, r *http.Request) {
	rc, ok := requestContext(w, r)
	if !ok {
		return
	}

	var req dto.CreateContactRequest
	if !decode(w, r, &req) {
		return
	}

	contact, err := h.contacts.Create(r.Context(), rc, contacts.CreateInput{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	})
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusCreated, contact)
}

func (h *ContactHandler) Get(w http.ResponseWriter, r *http.Request) {
	rc, ok := requestContext(w, r)
	if !ok {
		return
	}
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	contact, err := h.contacts.Get(r.Context(), rc, id)
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, contact)
}

func (h *ContactHandler) Delete(w http.ResponseWriter, r *http.Request) {
	rc, ok := requestContext(w, r)
	if !ok {
		return
	}
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.contacts.Delete(r.Context(), rc, id); err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
