package application

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-user-context/internal/domain/entity"
	"github.com/oksasatya/go-ddd-user-context/internal/domain/event"
	"github.com/oksasatya/go-ddd-user-context/internal/domain/repository"
	vo "github.com/oksasatya/go-ddd-user-context/internal/domain/valueobject"
	"github.com/oksasatya/go-ddd-user-context/pkg/helpers"
	"github.com/oksasatya/go-ddd-user-context/pkg/validation"
)

// UserService drives the User aggregate: registration, contact data, lifecycle,
// roles and passwords.
type UserService struct {
	store     userStore
	Users     repository.UserRepository
	Roles     repository.RoleRepository
	Passwords repository.PasswordRepository
	Profiles  repository.ProfileRepository
	Searcher  repository.UserSearcher // optional
	Hasher    helpers.PasswordHasher
	Logger    logrus.FieldLogger
}

func NewUserService(
	users repository.UserRepository,
	roles repository.RoleRepository,
	passwords repository.PasswordRepository,
	profiles repository.ProfileRepository,
	publisher event.Publisher,
	logger logrus.FieldLogger,
) *UserService {
	return &UserService{
		store:     userStore{users: users, publisher: publisher, logger: logger},
		Users:     users,
		Roles:     roles,
		Passwords: passwords,
		Profiles:  profiles,
		Logger:    logger,
	}
}

// Register creates a pending user. Email and username must be free; the
// password is optional.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*entity.User, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	email, err := vo.NewEmail(in.Email)
	if err != nil {
		return nil, err
	}
	if taken, err := s.Users.ExistsByEmail(ctx, email); err != nil {
		return nil, err
	} else if taken {
		return nil, ErrEmailTaken
	}

	var username *vo.Username
	if in.Username != "" {
		name, err := vo.NewUsername(in.Username)
		if err != nil {
			return nil, err
		}
		if taken, err := s.Users.ExistsByUsername(ctx, name); err != nil {
			return nil, err
		} else if taken {
			return nil, ErrUsernameTaken
		}
		username = &name
	}

	var hash string
	if in.Password != "" {
		if hash, err = s.Hasher.HashPassword(in.Password); err != nil {
			return nil, err
		}
	}

	u := entity.Register(email)
	if username != nil {
		if err := u.AssignUsername(*username); err != nil {
			return nil, err
		}
	}
	if err := s.Users.Save(ctx, u); err != nil {
		s.Logger.WithError(err).WithField("email", email.String()).Error("save registered user failed")
		return nil, err
	}
	if hash != "" {
		pw, err := entity.NewUserPassword(u.ID(), hash)
		if err != nil {
			return nil, err
		}
		if err := s.Passwords.Save(ctx, pw); err != nil {
			return nil, err
		}
	}
	if err := s.Profiles.Save(ctx, entity.NewUserProfile(u.ID())); err != nil {
		return nil, err
	}
	if err := s.store.publish(ctx, u); err != nil {
		return u, err
	}
	s.Logger.WithField("user_id", u.ID().String()).Info("user registered")
	return u, nil
}

func (s *UserService) Get(ctx context.Context, id string) (*entity.User, error) {
	return s.store.load(ctx, id)
}

func (s *UserService) GetByEmail(ctx context.Context, raw string) (*entity.User, error) {
	email, err := vo.NewEmail(raw)
	if err != nil {
		return nil, err
	}
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

// ChangeEmail moves the user to a new address, which must not belong to anyone else.
func (s *UserService) ChangeEmail(ctx context.Context, id, raw string) (*entity.User, error) {
	email, err := vo.NewEmail(raw)
	if err != nil {
		return nil, err
	}
	return s.store.mutate(ctx, id, func(u *entity.User) error {
		if !u.Email().Equals(email) {
			taken, err := s.Users.ExistsByEmail(ctx, email)
			if err != nil {
				return err
			}
			if taken {
				return ErrEmailTaken
			}
		}
		return u.UpdateEmail(email)
	})
}

// VerifyEmail marks the address verified without a code, for administrators.
func (s *UserService) VerifyEmail(ctx context.Context, id string) (*entity.User, error) {
	return s.store.mutate(ctx, id, (*entity.User).VerifyEmail)
}

func (s *UserService) AssignPhone(ctx context.Context, id, raw string) (*entity.User, error) {
	phone, err := vo.ParsePhone(raw)
	if err != nil {
		return nil, err
	}
	return s.store.mutate(ctx, id, func(u *entity.User) error { return u.AssignPhone(phone) })
}

func (s *UserService) VerifyPhone(ctx context.Context, id string) (*entity.User, error) {
	return s.store.mutate(ctx, id, (*entity.User).VerifyPhone)
}

func (s *UserService) AssignUsername(ctx context.Context, id, raw string) (*entity.User, error) {
	name, err := vo.NewUsername(raw)
	if err != nil {
		return nil, err
	}
	return s.store.mutate(ctx, id, func(u *entity.User) error {
		if current := u.Username(); current == nil || !current.Equals(name) {
			taken, err := s.Users.ExistsByUsername(ctx, name)
			if err != nil {
				return err
			}
			if taken {
				return ErrUsernameTaken
			}
		}
		return u.AssignUsername(name)
	})
}

func (s *UserService) LinkExternalID(ctx context.Context, id, raw string) (*entity.User, error) {
	ext, err := vo.NewExternalID(raw)
	if err != nil {
		return nil, err
	}
	return s.store.mutate(ctx, id, func(u *entity.User) error { return u.LinkExternalID(ext) })
}

func (s *UserService) Activate(ctx context.Context, id string) (*entity.User, error) {
	return s.store.mutate(ctx, id, (*entity.User).Activate)
}

func (s *UserService) Suspend(ctx context.Context, id string) (*entity.User, error) {
	return s.store.mutate(ctx, id, (*entity.User).Suspend)
}

func (s *UserService) Delete(ctx context.Context, id string) (*entity.User, error) {
	return s.store.mutate(ctx, id, (*entity.User).Delete)
}

// EnsureRole returns the named role, creating it when missing.
func (s *UserService) EnsureRole(ctx context.Context, name, displayName, description string, permissions []string, system bool) (*entity.Role, error) {
	rn, err := vo.NewRoleName(name)
	if err != nil {
		return nil, err
	}
	role, err := s.Roles.GetByName(ctx, rn)
	if err != nil || role != nil {
		return role, err
	}
	role = entity.NewRole(rn, displayName, description, permissions, system)
	if err := s.Roles.Save(ctx, role); err != nil {
		return nil, err
	}
	s.Logger.WithField("role", rn.String()).Info("role created")
	return role, nil
}

// AssignRole grants an existing role to a user that is not deleted.
func (s *UserService) AssignRole(ctx context.Context, in AssignRoleInput) (*entity.UserRole, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	u, err := s.store.load(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	if u.IsDeleted() {
		return nil, vo.NewInvalidStatusError(vo.CategoryRoleAssignment, u.Status())
	}
	rn, err := vo.NewRoleName(in.Role)
	if err != nil {
		return nil, err
	}
	role, err := s.Roles.GetByName(ctx, rn)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, ErrRoleNotFound
	}
	var grantedBy *vo.UserID
	if in.GrantedBy != "" {
		g, err := vo.ParseUserID(in.GrantedBy)
		if err != nil {
			return nil, err
		}
		grantedBy = &g
	}
	ur, err := entity.NewUserRole(u.ID(), role.ID, grantedBy, in.ExpiresAt)
	if err != nil {
		return nil, err
	}
	if err := s.Roles.Assign(ctx, ur); err != nil {
		return nil, err
	}
	s.Logger.WithField("user_id", in.UserID).WithField("role", rn.String()).Info("role assigned")
	return ur, nil
}

func (s *UserService) RolesOf(ctx context.Context, id string) ([]*entity.Role, error) {
	u, err := s.store.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.Roles.RolesOf(ctx, u.ID())
}

// SetPassword sets or replaces the password and clears any lockout.
func (s *UserService) SetPassword(ctx context.Context, id, plain string) error {
	u, err := s.store.load(ctx, id)
	if err != nil {
		return err
	}
	if u.IsDeleted() {
		return vo.NewInvalidStatusError(vo.CategoryPassword, u.Status())
	}
	hash, err := s.Hasher.HashPassword(plain)
	if err != nil {
		return err
	}
	pw, err := s.Passwords.GetByUserID(ctx, u.ID())
	if err != nil {
		return err
	}
	if pw == nil {
		if pw, err = entity.NewUserPassword(u.ID(), hash); err != nil {
			return err
		}
	} else if err := pw.UpdatePassword(hash); err != nil {
		return err
	}
	return s.Passwords.Save(ctx, pw)
}

// Search queries the search projection.
func (s *UserService) Search(ctx context.Context, query string, limit int) ([]entity.Snapshot, error) {
	if s.Searcher == nil {
		return nil, ErrSearchDisabled
	}
	start := time.Now()
	out, err := s.Searcher.Search(ctx, query, limit)
	if err != nil {
		s.Logger.WithError(err).WithField("query", query).Warn("user search failed")
		return nil, err
	}
	s.Logger.WithField("hits", len(out)).WithField("took", time.Since(start)).Debug("user search")
	return out, nil
}
