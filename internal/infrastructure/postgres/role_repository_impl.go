package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/oksasatya/go-ddd-user-context/internal/domain/entity"
	"github.com/oksasatya/go-ddd-user-context/internal/domain/repository"
	vo "github.com/oksasatya/go-ddd-user-context/internal/domain/valueobject"
)

const roleColumns = `r.id, r.name, r.display_name, r.description, r.permissions, r.is_system, r.created_at`

type RoleRepository struct {
	db DB
}

func NewRoleRepository(db DB) *RoleRepository {
	return &RoleRepository{db: db}
}

// GetByName returns nil, nil when no role has that name.
func (r *RoleRepository) GetByName(ctx context.Context, name vo.RoleName) (*entity.Role, error) {
	row := r.db.QueryRow(ctx, `SELECT `+roleColumns+` FROM roles r WHERE r.name = $1`, name.String())
	role, err := scanRole(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return role, err
}

func (r *RoleRepository) Save(ctx context.Context, role *entity.Role) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO roles (id, name, display_name, description, permissions, is_system, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE
		SET display_name = EXCLUDED.display_name, description = EXCLUDED.description,
			permissions = EXCLUDED.permissions
	`, role.ID, role.Name.String(), role.DisplayName, role.Description, role.Permissions, role.IsSystem, role.CreatedAt)
	if err != nil {
		return mapWriteError("save role", err)
	}
	return nil
}

// Assign stores the grant, replacing a previous grant of the same role.
func (r *RoleRepository) Assign(ctx context.Context, ur *entity.UserRole) error {
	var grantedBy *uuid.UUID
	if ur.GrantedBy != nil {
		id := ur.GrantedBy.UUID()
		grantedBy = &id
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO user_roles (id, user_id, role_id, granted_by, granted_at, expires_at, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id, role_id) DO UPDATE
		SET granted_by = EXCLUDED.granted_by, granted_at = EXCLUDED.granted_at,
			expires_at = EXCLUDED.expires_at, is_active = EXCLUDED.is_active
	`, ur.ID, ur.UserID.UUID(), ur.RoleID, grantedBy, ur.GrantedAt, ur.ExpiresAt, ur.IsActive)
	if err != nil {
		return mapWriteError("assign role", err)
	}
	return nil
}

// RolesOf lists the roles currently granted to the user.
func (r *RoleRepository) RolesOf(ctx context.Context, userID vo.UserID) ([]*entity.Role, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+roleColumns+`
		FROM roles r
		JOIN user_roles ur ON ur.role_id = r.id
		WHERE ur.user_id = $1 AND ur.is_active AND (ur.expires_at IS NULL OR ur.expires_at > now())
		ORDER BY r.name
	`, userID.UUID())
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	defer rows.Close()

	var out []*entity.Role
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, role)
	}
	return out, rows.Err()
}

func scanRole(row pgx.Row) (*entity.Role, error) {
	var (
		role      entity.Role
		name      string
		createdAt time.Time
	)
	if err := row.Scan(&role.ID, &name, &role.DisplayName, &role.Description, &role.Permissions, &role.IsSystem, &createdAt); err != nil {
		return nil, err
	}
	n, err := vo.NewRoleName(name)
	if err != nil {
		return nil, fmt.Errorf("stored role %s: %w", role.ID, err)
	}
	role.Name = n
	role.CreatedAt = createdAt.UTC()
	return &role, nil
}

var _ repository.RoleRepository = (*RoleRepository)(nil)
