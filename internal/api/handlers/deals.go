package handlers

import (
	"log/slog"
	"net/http"

	"github.com/hugh/dealflow/internal/api/dto"
	"github.com/hugh/dealflow/internal/api/respond"
	"github.com/hugh/dealflow/internal/database/models"
	"github.com/hugh/dealflow/internal/deals"
	"github.com/shopspring/decimal"
)

type DealHandler struct {
	deals  *deals.Service
	logger *slog.Logger
}

func NewDealHandler(deals *deals.Service, logger *slog.Logger) *DealHandler {
	return &DealHandler{deals: deals, logger: logger}
}

func (h *DealHandler) Create(w http.ResponseWriter, r *http.Request) {
	rc, ok := requestContext(w, r)
	if !ok {
		return
	}

	var req dto.CreateDealRequest
	if !decode(w, r, &req) {
		return
	}

	errs := fieldErrors{}
	contactID := errs.id("contact_id", req.ContactID)
	if len(errs) > 0 {
		respond.ValidationFailed(w, errs)
		return
	}

	deal, err := h.deals.Create(r.Context(), rc, deals.CreateInput{
		ContactID: contactID,
		Title:     req.Title,
		Amount:    req.Amount,
		Currency:  req.Currency,
	})
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusCreated, deal)
}

func (h *DealHandler) List(w http.ResponseWriter, r *http.Request) {
	rc, ok := requestContext(w, r)
	if !ok {
		return
	}

	filter, errs := parseDealFilter(r)
	if len(errs) > 0 {
		respond.ValidationFailed(w, errs)
		return
	}

	items, total, err := h.deals.List(r.Context(), rc, filter)
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	filter.Normalize()
	respond.JSON(w, http.StatusOK, dto.NewPaginatedResponse(items, total, filter.Page, filter.PageSize))
}

func (h *DealHandler) Get(w http.ResponseWriter, r *http.Request) {
	rc, ok := requestContext(w, r)
	if !ok {
		return
	}
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	deal, err := h.deals.Get(r.Context(), rc, id)
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, deal)
}

func (h *DealHandler) Update(w http.ResponseWriter, r *http.Request) {
	rc, ok := requestContext(w, r)
	if !ok {
		return
	}
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	var req dto.UpdateDealRequest
	if !decode(w, r, &req) {
		return
	}

	errs := fieldErrors{}
	patch := deals.Patch{Amount: req.Amount}
	if req.Status != nil {
		status, err := models.ParseDealStatus(*req.Status)
		if err != nil {
			errs["status"] = "status must be one of: new in_progress won lost"
		}
		patch.Status = &status
	}
	if req.Stage != nil {
		stage, err := models.ParseDealStage(*req.Stage)
		if err != nil {
			errs["stage"] = "stage must be one of: qualification proposal negotiation closed"
		}
		patch.Stage = &stage
	}
	if len(errs) > 0 {
		respond.ValidationFailed(w, errs)
		return
	}

	deal, err := h.deals.Update(r.Context(), rc, id, patch)
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, deal)
}

func parseDealFilter(r *http.Request) (deals.Filter, fieldErrors) {
	q := r.URL.Query()
	errs := fieldErrors{}
	var f deals.Filter

	for _, raw := range q["status"] {
		status, err := models.ParseDealStatus(raw)
		if err != nil {
			errs["status"] = "status must be one of: new in_progress won lost"
			continue
		}
		f.Statuses = append(f.Statuses, status)
	}

	if raw := q.Get("stage"); raw != "" {
		stage, err := models.ParseDealStage(raw)
		if err != nil {
			errs["stage"] = "stage must be one of: qualification proposal negotiation closed"
		} else {
			f.Stage = &stage
		}
	}

	f.MinAmount = parseAmount(errs, q.Get("min_amount"), "min_amount")
	f.MaxAmount = parseAmount(errs, q.Get("max_amount"), "max_amount")
	f.OwnerID = errs.uuid(r, "owner_id")

	switch q.Get("order_by") {
	case "":
		f.OrderBy = deals.SortDefault
	case "created_at":
		f.OrderBy = deals.SortCreatedAt
	case "amount":
		f.OrderBy = deals.SortAmount
	default:
		errs["order_by"] = "order_by must be one of: created_at amount"
	}

	switch q.Get("order") {
	case "", "asc":
	case "desc":
		f.Descending = true
	default:
		errs["order"] = "order must be one of: asc desc"
	}

	f.Page = errs.int(r, "page")
	f.PageSize = errs.int(r, "page_size")
	if f.PageSize > deals.MaxPageSize {
		errs["page_size"] = "page_size must be at most 100"
	}

	return f, errs
}

func parseAmount(errs fieldErrors, raw, key string) *decimal.Decimal {
	if raw == "" {
		return nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		errs[key] = key + " must be a decimal number"
		return nil
	}
	return &d
}
