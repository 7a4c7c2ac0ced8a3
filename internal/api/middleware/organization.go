package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/hugh/dealflow/internal/api/respond"
	"github.com/hugh/dealflow/internal/tenancy"
)

const OrganizationHeader = "X-Organization-Id"

type OrganizationResolver interface {
	Resolve(ctx context.Context, userID, orgID uuid.UUID) (tenancy.RequestContext, error)
}

// Organization resolves the caller's membership in the organization named by
// the X-Organization-Id header and installs the resulting request context.
// Must run after Auth.
func Organization(resolver OrganizationResolver, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := GetUserID(r.Context())
			if userID == uuid.Nil {
				respond.Message(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			orgID, err := tenancy.ParseSelector(r.Header.Get(OrganizationHeader))
			if err != nil {
				respond.Error(w, r, logger, err)
				return
			}

			rc, err := resolver.Resolve(r.Context(), userID, orgID)
			if err != nil {
				respond.Error(w, r, logger, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(tenancy.WithRequestContext(r.Context(), rc)))
		})
	}
}
