package entity

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	vo "github.com/oksasatya/go-ddd-user-context/internal/domain/valueobject"
)

// Role represents an authorization role.
// Many-to-many with User via user_roles.
type Role struct {
	ID          uuid.UUID
	Name        vo.RoleName
	DisplayName string
	Description string
	Permissions []string
	IsSystem    bool
	CreatedAt   time.Time
}

func NewRole(name vo.RoleName, displayName, description string, permissions []string, isSystem bool) *Role {
	r := &Role{
		ID:          uuid.New(),
		Name:        name,
		DisplayName: strings.TrimSpace(displayName),
		Description: strings.TrimSpace(description),
		IsSystem:    isSystem,
		CreatedAt:   clock().UTC(),
	}
	for _, p := range permissions {
		r.AddPermission(p)
	}
	return r
}

func (r *Role) HasPermission(p string) bool { return slices.Contains(r.Permissions, p) }

// AddPermission is a no-op for blank or already granted permissions.
func (r *Role) AddPermission(p string) {
	p = strings.TrimSpace(p)
	if p == "" || r.HasPermission(p) {
		return
	}
	r.Permissions = append(r.Permissions, p)
}

func (r *Role) RemovePermission(p string) {
	r.Permissions = slices.DeleteFunc(r.Permissions, func(x string) bool { return x == p })
}

// UserRole grants a role to a user, optionally until ExpiresAt.
type UserRole struct {
	ID        uuid.UUID
	UserID    vo.UserID
	RoleID    uuid.UUID
	GrantedBy *vo.UserID
	GrantedAt time.Time
	ExpiresAt *time.Time
	IsActive  bool
}

func NewUserRole(userID vo.UserID, roleID uuid.UUID, grantedBy *vo.UserID, expiresAt *time.Time) (*UserRole, error) {
	t := clock()
	if expiresAt != nil && expiresAt.Before(t) {
		return nil, vo.NewExpiredError(vo.CategoryRoleAssignment)
	}
	return &UserRole{
		ID:        uuid.New(),
		UserID:    userID,
		RoleID:    roleID,
		GrantedBy: grantedBy,
		GrantedAt: t.UTC(),
		ExpiresAt: expiresAt,
		IsActive:  true,
	}, nil
}

func (r *UserRole) Revoke()     { r.IsActive = false }
func (r *UserRole) Reactivate() { r.IsActive = true }

// IsValid reports whether the grant is active and not expired at t.
func (r *UserRole) IsValid(t time.Time) bool {
	if !r.IsActive {
		return false
	}
	return r.ExpiresAt == nil || r.ExpiresAt.After(t)
}
