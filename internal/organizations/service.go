// Package organizations lists a user's organizations and adds members to them.
package organizations

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/hugh/dealflow/internal/apperr"
	"github.com/hugh/dealflow/internal/database/models"
	"github.com/hugh/dealflow/internal/permission"
	"github.com/hugh/dealflow/internal/tenancy"
)

var (
	ErrAlreadyMember   = apperr.Conflict("User is already a member of this organization")
	ErrCannotGrantRole = apperr.PermissionDenied("You cannot grant this role")
)

type Store interface {
	// ListMembershipsByUser returns the user's memberships with Organization loaded.
	ListMembershipsByUser(ctx context.Context, userID uuid.UUID) ([]models.Membership, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	FindMembership(ctx context.Context, orgID, userID uuid.UUID) (*models.Membership, error)
	CreateMembership(ctx context.Context, m *models.Membership) error
}

type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type Service struct {
	store  Store
	tx     Transactor
	logger *slog.Logger
}

func NewService(store Store, tx Transactor, logger *slog.Logger) *Service {
	return &Service{store: store, tx: tx, logger: logger}
}

// ListMine returns every organization the user belongs to, with the role held there.
func (s *Service) ListMine(ctx context.Context, userID uuid.UUID) ([]models.Membership, error) {
	return s.store.ListMembershipsByUser(ctx, userID)
}

// Invite adds an existing user to the caller's organization. Only admins and
// owners may invite, and nobody may grant a role above their own.
func (s *Service) Invite(ctx context.Context, rc tenancy.RequestContext, email string, role models.Role) (*models.Membership, error) {
	if err := permission.EnsureAdminOrOwner(rc.Role()); err != nil {
		return nil, err
	}
	if !permission.CanGrantRole(rc.Role(), role) {
		return nil, ErrCannotGrantRole
	}

	var membership *models.Membership
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		user, err := s.store.FindUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
		if err != nil {
			return err
		}

		_, err = s.store.FindMembership(ctx, rc.OrganizationID(), user.ID)
		switch {
		case err == nil:
			return ErrAlreadyMember
		case !errors.Is(err, tenancy.ErrNotAMember):
			return err
		}

		membership = &models.Membership{
			OrganizationID: rc.OrganizationID(),
			UserID:         user.ID,
			Role:           role,
		}
		return s.store.CreateMembership(ctx, membership)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("member added",
		"org_id", rc.OrganizationID(),
		"user_id", membership.UserID,
		"role", role.String(),
		"invited_by", rc.UserID(),
	)
	return membership, nil
}
