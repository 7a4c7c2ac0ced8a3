// Package tenancy resolves an authenticated user and an organization selector
// into the request context every organization-scoped operation runs under.
package tenancy

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/hugh/dealflow/internal/apperr"
	"github.com/hugh/dealflow/internal/database/models"
)

var (
	ErrNotAMember          = apperr.PermissionDenied("User is not a member of this organization")
	ErrOrganizationMissing = apperr.Validation("X-Organization-Id header required")
	ErrOrganizationInvalid = apperr.Validation("X-Organization-Id header must be a valid UUID")
)

// MembershipStore looks up a user's membership. FindMembership returns
// ErrNotAMember when the pair does not exist.
type MembershipStore interface {
	FindMembership(ctx context.Context, orgID, userID uuid.UUID) (*models.Membership, error)
}

// RequestContext is the authorization state of one request. Its fields are
// unexported so it cannot change after resolution.
type RequestContext struct {
	userID uuid.UUID
	orgID  uuid.UUID
	role   models.Role
}

func NewRequestContext(userID, orgID uuid.UUID, role models.Role) RequestContext {
	return RequestContext{userID: userID, orgID: orgID, role: role}
}

func (rc RequestContext) UserID() uuid.UUID         { return rc.userID }
func (rc RequestContext) OrganizationID() uuid.UUID { return rc.orgID }
func (rc RequestContext) Role() models.Role         { return rc.role }

func (rc RequestContext) String() string {
	return fmt.Sprintf("user=%s org=%s role=%s", rc.userID, rc.orgID, rc.role)
}

type Resolver struct {
	memberships MembershipStore
}

func NewResolver(memberships MembershipStore) *Resolver {
	return &Resolver{memberships: memberships}
}

// Resolve returns the caller's context in orgID, or ErrNotAMember.
func (r *Resolver) Resolve(ctx context.Context, userID, orgID uuid.UUID) (RequestContext, error) {
	m, err := r.memberships.FindMembership(ctx, orgID, userID)
	if err != nil {
		return RequestContext{}, err
	}
	return NewRequestContext(userID, orgID, m.Role), nil
}

// ParseSelector validates the raw organization selector supplied by a caller.
func ParseSelector(raw string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, ErrOrganizationMissing
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, ErrOrganizationInvalid
	}
	return id, nil
}

type ctxKey struct{}

func WithRequestContext(ctx context.Context, rc RequestContext) context.Context {
	return context.WithValue(ctx, ctxKey{}, rc)
}

// FromContext returns the request context installed by the organization middleware.
func FromContext(ctx context.Context) (RequestContext, bool) {
	rc, ok := ctx.Value(ctxKey{}).(RequestContext)
	return rc, ok
}
