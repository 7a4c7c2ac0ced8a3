package handlers

import (
	"log/slog"
	"net/http"

	"github.com/hugh/dealflow/internal/api/dto"
	"github.com/hugh/dealflow/internal/api/middleware"
	"github.com/hugh/dealflow/internal/api/respond"
	"github.com/hugh/dealflow/internal/database/models"
	"github.com/hugh/dealflow/internal/organizations"
)

type OrganizationHandler struct {
	orgs   *organizations.Service
	logger *slog.Logger
}

func NewOrganizationHandler(orgs *organizations.Service, logger *slog.Logger) *OrganizationHandler {
	return &OrganizationHandler{orgs: orgs, logger: logger}
}

// Mine lists the caller's organizations. It needs no organization selector.
func (h *OrganizationHandler) Mine(w http.ResponseWriter, r *http.Request) {
	memberships, err := h.orgs.ListMine(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	out := make([]dto.OrganizationDTO, 0, len(memberships))
	for _, m := range memberships {
		item := dto.OrganizationDTO{ID: m.OrganizationID.String(), Role: m.Role.String()}
		if m.Organization != nil {
			item.Name = m.Organization.Name
		}
		out = append(out, item)
	}
	respond.JSON(w, http.StatusOK, out)
}

func (h *OrganizationHandler) Invite(w http.ResponseWriter, r *http.Request) {
	rc, ok := requestContext(w, r)
	if !ok {
		return
	}

	var req dto.InviteMemberRequest
	if !decode(w, r, &req) {
		return
	}
	role, err := models.ParseRole(req.Role)
	if err != nil {
		respond.ValidationFailed(w, map[string]string{"role": "role must be one of: member manager admin owner"})
		return
	}

	m, err := h.orgs.Invite(r.Context(), rc, req.Email, role)
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	respond.JSON(w, http.StatusCreated, dto.MembershipDTO{
		OrganizationID: m.OrganizationID.String(),
		UserID:         m.UserID.String(),
		Role:           m.Role.String(),
	})
}
