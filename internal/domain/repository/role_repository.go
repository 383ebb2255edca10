package repository

import (
	"context"

	"github.com/oksasatya/go-ddd-user-context/internal/domain/entity"
	vo "github.com/oksasatya/go-ddd-user-context/internal/domain/valueobject"
)

// RoleRepository stores roles and their assignment to users.
type RoleRepository interface {
	GetByName(ctx context.Context, name vo.RoleName) (*entity.Role, error)
	Save(ctx context.Context, r *entity.Role) error
	Assign(ctx context.Context, ur *entity.UserRole) error
	RolesOf(ctx context.Context, userID vo.UserID) ([]*entity.Role, error)
}
