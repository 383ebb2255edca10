package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/oksasatya/go-ddd-user-context/internal/domain/entity"
	"github.com/oksasatya/go-ddd-user-context/internal/domain/repository"
	vo "github.com/oksasatya/go-ddd-user-context/internal/domain/valueobject"
	"github.com/oksasatya/go-ddd-user-context/pkg/apperrors"
)

type PasswordRepository struct {
	mu    sync.Mutex
	items map[vo.UserID]entity.UserPassword
}

func NewPasswordRepository() *PasswordRepository {
	return &PasswordRepository{items: make(map[vo.UserID]entity.UserPassword)}
}

func (r *PasswordRepository) GetByUserID(_ context.Context, userID vo.UserID) (*entity.UserPassword, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.items[userID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *PasswordRepository) Save(_ context.Context, p *entity.UserPassword) error {
	r.mu.Lock()
	r.items[p.UserID] = *p
	r.mu.Unlock()
	return nil
}

type ProfileRepository struct {
	mu    sync.Mutex
	items map[vo.UserID]entity.UserProfile
}

func NewProfileRepository() *ProfileRepository {
	return &ProfileRepository{items: make(map[vo.UserID]entity.UserProfile)}
}

func (r *ProfileRepository) GetByUserID(_ context.Context, userID vo.UserID) (*entity.UserProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.items[userID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *ProfileRepository) Save(_ context.Context, p *entity.UserProfile) error {
	r.mu.Lock()
	r.items[p.UserID] = *p
	r.mu.Unlock()
	return nil
}

type SubscriptionRepository struct {
	mu    sync.Mutex
	items map[vo.UserID]entity.UserSubscription
}

func NewSubscriptionRepository() *SubscriptionRepository {
	return &SubscriptionRepository{items: make(map[vo.UserID]entity.UserSubscription)}
}

func (r *SubscriptionRepository) GetByUserID(_ context.Context, userID vo.UserID) (*entity.UserSubscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.items[userID]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (r *SubscriptionRepository) Save(_ context.Context, s *entity.UserSubscription) error {
	r.mu.Lock()
	r.items[s.UserID] = *s
	r.mu.Unlock()
	return nil
}

type RoleRepository struct {
	mu     sync.Mutex
	roles  map[string]*entity.Role
	grants []entity.UserRole
}

func NewRoleRepository() *RoleRepository {
	return &RoleRepository{roles: make(map[string]*entity.Role)}
}

func (r *RoleRepository) GetByName(_ context.Context, name vo.RoleName) (*entity.Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	role, ok := r.roles[name.String()]
	if !ok {
		return nil, nil
	}
	cp := *role
	cp.Permissions = slices.Clone(role.Permissions)
	return &cp, nil
}

func (r *RoleRepository) Save(_ context.Context, role *entity.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.roles[role.Name.String()]; ok && existing.ID != role.ID {
		return apperrors.Wrap(apperrors.ErrConflict, "role name already stored")
	}
	cp := *role
	cp.Permissions = slices.Clone(role.Permissions)
	r.roles[role.Name.String()] = &cp
	return nil
}

func (r *RoleRepository) Assign(_ context.Context, ur *entity.UserRole) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.grants = slices.DeleteFunc(r.grants, func(g entity.UserRole) bool {
		return g.UserID.Equals(ur.UserID) && g.RoleID == ur.RoleID
	})
	r.grants = append(r.grants, *ur)
	return nil
}

func (r *RoleRepository) RolesOf(_ context.Context, userID vo.UserID) ([]*entity.Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	var out []*entity.Role
	for _, g := range r.grants {
		if !g.UserID.Equals(userID) || !g.IsValid(now) {
			continue
		}
		for _, role := range r.roles {
			if role.ID == g.RoleID {
				cp := *role
				out = append(out, &cp)
			}
		}
	}
	slices.SortFunc(out, func(a, b *entity.Role) int {
		switch {
		case a.Name.String() < b.Name.String():
			return -1
		case a.Name.String() > b.Name.String():
			return 1
		}
		return 0
	})
	return out, nil
}

type ActivityLogRepository struct {
	mu   sync.Mutex
	logs []entity.UserActivityLog
}

func NewActivityLogRepository() *ActivityLogRepository { return &ActivityLogRepository{} }

func (r *ActivityLogRepository) Append(_ context.Context, l *entity.UserActivityLog) error {
	r.mu.Lock()
	r.logs = append(r.logs, *l)
	r.mu.Unlock()
	return nil
}

// Actions lists the recorded actions of userID in order.
func (r *ActivityLogRepository) Actions(userID vo.UserID) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, l := range r.logs {
		if l.UserID.Equals(userID) {
			out = append(out, l.Action)
		}
	}
	return out
}

type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]entity.UserSession
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]entity.UserSession)}
}

func (s *SessionStore) Put(_ context.Context, sess *entity.UserSession) error {
	s.mu.Lock()
	s.sessions[sess.ID.String()] = *sess
	s.mu.Unlock()
	return nil
}

func (s *SessionStore) Get(_ context.Context, id string) (*entity.UserSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok || !sess.IsValid(time.Now()) {
		return nil, nil
	}
	return &sess, nil
}

func (s *SessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	return nil
}

type VerificationStore struct {
	mu       sync.Mutex
	codes    map[vo.UserID]repository.VerificationCode
	failures map[vo.UserID]int
}

func NewVerificationStore() *VerificationStore {
	return &VerificationStore{
		codes:    make(map[vo.UserID]repository.VerificationCode),
		failures: make(map[vo.UserID]int),
	}
}

func (s *VerificationStore) Save(_ context.Context, userID vo.UserID, c repository.VerificationCode, _ time.Duration) error {
	s.mu.Lock()
	s.codes[userID] = c
	delete(s.failures, userID)
	s.mu.Unlock()
	return nil
}

func (s *VerificationStore) CountFailure(_ context.Context, userID vo.UserID, _ time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[userID]++
	return s.failures[userID], nil
}

// Get honours ExpiresAt in place of a TTL.
func (s *VerificationStore) Get(_ context.Context, userID vo.UserID) (*repository.VerificationCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.codes[userID]
	if !ok || (!c.ExpiresAt.IsZero() && !c.ExpiresAt.After(time.Now())) {
		return nil, nil
	}
	return &c, nil
}

func (s *VerificationStore) Delete(_ context.Context, userID vo.UserID) error {
	s.mu.Lock()
	delete(s.codes, userID)
	delete(s.failures, userID)
	s.mu.Unlock()
	return nil
}

var (
	_ repository.PasswordRepository     = (*PasswordRepository)(nil)
	_ repository.ProfileRepository      = (*ProfileRepository)(nil)
	_ repository.SubscriptionRepository = (*SubscriptionRepository)(nil)
	_ repository.RoleRepository         = (*RoleRepository)(nil)
	_ repository.ActivityLogRepository  = (*ActivityLogRepository)(nil)
	_ repository.SessionStore           = (*SessionStore)(nil)
	_ repository.VerificationCodeStore  = (*VerificationStore)(nil)
)
