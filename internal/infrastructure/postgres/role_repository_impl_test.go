package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-ddd-user-context/internal/domain/entity"
	vo "github.com/oksasatya/go-ddd-user-context/internal/domain/valueobject"
)

var roleCols = []string{"id", "name", "display_name", "description", "permissions", "is_system", "created_at"}

func TestRoleRepository_GetByName(t *testing.T) {
	mock := newMock(t)
	repo := NewRoleRepository(mock)
	name, err := vo.NewRoleName("admin")
	require.NoError(t, err)
	id := uuid.New()
	at := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("FROM roles r WHERE r.name = $1")).
		WithArgs("admin").
		WillReturnRows(pgxmock.NewRows(roleCols).AddRow(id, "admin", "Administrator", "", []string{"users:write"}, true, at))

	role, err := repo.GetByName(context.Background(), name)
	require.NoError(t, err)
	require.NotNil(t, role)
	assert.Equal(t, id, role.ID)
	assert.True(t, role.HasPermission("users:write"))
	assert.True(t, role.IsSystem)

	mock.ExpectQuery(regexp.QuoteMeta("FROM roles r WHERE r.name = $1")).
		WithArgs("admin").
		WillReturnRows(pgxmock.NewRows(roleCols))
	role, err = repo.GetByName(context.Background(), name)
	require.NoError(t, err)
	assert.Nil(t, role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoleRepository_AssignAndList(t *testing.T) {
	mock := newMock(t)
	repo := NewRoleRepository(mock)
	ctx := context.Background()
	userID := vo.NewUserID()
	roleID := uuid.New()

	ur, err := entity.NewUserRole(userID, roleID, nil, nil)
	require.NoError(t, err)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO user_roles")).
		WithArgs(ur.ID, userID.UUID(), roleID, (*uuid.UUID)(nil), pgxmock.AnyArg(), (*time.Time)(nil), true).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	require.NoError(t, repo.Assign(ctx, ur))

	mock.ExpectQuery(regexp.QuoteMeta("JOIN user_roles ur ON ur.role_id = r.id")).
		WithArgs(userID.UUID()).
		WillReturnRows(pgxmock.NewRows(roleCols).
			AddRow(roleID, "editor", "Editor", "", []string{}, false, time.Now()).
			AddRow(uuid.New(), "viewer", "Viewer", "", []string{"users:read"}, false, time.Now()))

	roles, err := repo.RolesOf(ctx, userID)
	require.NoError(t, err)
	require.Len(t, roles, 2)
	assert.Equal(t, "editor", roles[0].Name.String())
	assert.Equal(t, "viewer", roles[1].Name.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPasswordRepository_RoundTrip(t *testing.T) {
	mock := newMock(t)
	repo := NewPasswordRepository(mock)
	ctx := context.Background()
	userID := vo.NewUserID()

	mock.ExpectQuery(regexp.QuoteMeta("FROM user_passwords")).
		WithArgs(userID.UUID()).
		WillReturnRows(pgxmock.NewRows([]string{"id", "password_hash", "reset_token", "reset_token_expires",
			"failed_attempts", "locked_until", "created_at", "updated_at"}))
	p, err := repo.GetByUserID(ctx, userID)
	require.NoError(t, err)
	assert.Nil(t, p)

	p, err = entity.NewUserPassword(userID, "$2a$10$hash")
	require.NoError(t, err)
	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (user_id) DO UPDATE")).
		WithArgs(p.ID, userID.UUID(), "$2a$10$hash", (*string)(nil), (*time.Time)(nil), 0, (*time.Time)(nil),
			pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	require.NoError(t, repo.Save(ctx, p))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileRepository_GetByUserID(t *testing.T) {
	mock := newMock(t)
	repo := NewProfileRepository(mock)
	userID := vo.NewUserID()
	id := uuid.New()
	gender := "female"
	at := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("FROM user_profiles")).
		WithArgs(userID.UUID()).
		WillReturnRows(pgxmock.NewRows([]string{"id", "first_name", "last_name", "display_name", "avatar_url", "bio",
			"birth_date", "gender", "locale", "timezone", "created_at", "updated_at"}).
			AddRow(id, "Ana", "Ruiz", "ana.ruiz", "", "", (*time.Time)(nil), &gender, "en-US", "Europe/Madrid", at, at))

	p, err := repo.GetByUserID(context.Background(), userID)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "en-US", p.Locale.String())
	assert.Equal(t, "Europe/Madrid", p.Timezone.String())
	require.NotNil(t, p.Gender)
	assert.Equal(t, vo.GenderFemale, *p.Gender)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestActivityLogRepository_Append(t *testing.T) {
	mock := newMock(t)
	repo := NewActivityLogRepository(mock)
	l, err := entity.NewUserActivityLog(vo.NewUserID(), "login", false, nil)
	require.NoError(t, err)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO user_activity_logs")).
		WithArgs(l.ID, l.UserID.UUID(), "login", map[string]any{}, "", "", false, "", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.Append(context.Background(), l))
	assert.NoError(t, mock.ExpectationsWereMet())
}
