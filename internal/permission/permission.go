// Package permission holds the role rules shared by every organization-scoped
// operation. It has no state and performs no I/O.
package permission

import (
	"github.com/google/uuid"
	"github.com/hugh/dealflow/internal/apperr"
	"github.com/hugh/dealflow/internal/database/models"
)

// EnsureMinRole fails with PermissionDenied when current ranks below minimum.
func EnsureMinRole(current, minimum models.Role) error {
	if current.Rank() < minimum.Rank() {
		return apperr.PermissionDenied("Role %s does not meet minimum requirement %s", current, minimum)
	}
	return nil
}

func EnsureOwner(current models.Role) error {
	return EnsureMinRole(current, models.RoleOwner)
}

func EnsureAdminOrOwner(current models.Role) error {
	if !isAdminOrOwner(current) {
		return apperr.PermissionDenied("Admin or owner privileges required")
	}
	return nil
}

// CanFilterByOwner is false only for members, who always see their own scope.
func CanFilterByOwner(role models.Role) bool {
	return role != models.RoleMember
}

// CanUpdateEntity allows any role above member; a member only their own records.
func CanUpdateEntity(role models.Role, entityOwnerID *uuid.UUID, callerID uuid.UUID) bool {
	if role == models.RoleMember {
		return entityOwnerID != nil && *entityOwnerID == callerID
	}
	return true
}

func CanDeleteEntity(role models.Role, entityOwnerID *uuid.UUID, callerID uuid.UUID) bool {
	return CanUpdateEntity(role, entityOwnerID, callerID)
}

// CanRollbackStage reports whether role may move a deal backwards in the pipeline.
func CanRollbackStage(role models.Role) bool {
	return isAdminOrOwner(role)
}

// CanGrantRole reports whether granter may hand out target. Only admins and
// owners invite, and only an owner creates another owner.
func CanGrantRole(granter, target models.Role) bool {
	if !isAdminOrOwner(granter) {
		return false
	}
	return target.Rank() <= granter.Rank()
}

func isAdminOrOwner(role models.Role) bool {
	return role == models.RoleAdmin || role == models.RoleOwner
}
