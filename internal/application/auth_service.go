package application

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-user-context/internal/domain/entity"
	"github.com/oksasatya/go-ddd-user-context/internal/domain/event"
	"github.com/oksasatya/go-ddd-user-context/internal/domain/repository"
	vo "github.com/oksasatya/go-ddd-user-context/internal/domain/valueobject"
	"github.com/oksasatya/go-ddd-user-context/pkg/helpers"
	"github.com/oksasatya/go-ddd-user-context/pkg/validation"
)

const (
	DefaultMaxFailedAttempts = 5
	DefaultLockPeriod        = 15 * time.Minute
)

// AuthService logs users in with a password and manages their sessions.
type AuthService struct {
	store     userStore
	Users     repository.UserRepository
	Passwords repository.PasswordRepository
	Sessions  repository.SessionStore
	Activity  repository.ActivityLogRepository // optional
	JWT       *helpers.JWTManager
	Hasher    helpers.PasswordHasher
	Logger    logrus.FieldLogger

	SessionTTL        time.Duration
	MaxFailedAttempts int
	LockPeriod        time.Duration

	now func() time.Time
}

func NewAuthService(
	users repository.UserRepository,
	passwords repository.PasswordRepository,
	sessions repository.SessionStore,
	publisher event.Publisher,
	jwt *helpers.JWTManager,
	sessionTTL time.Duration,
	logger logrus.FieldLogger,
) *AuthService {
	return &AuthService{
		store:             userStore{users: users, publisher: publisher, logger: logger},
		Users:             users,
		Passwords:         passwords,
		Sessions:          sessions,
		JWT:               jwt,
		Logger:            logger,
		SessionTTL:        sessionTTL,
		MaxFailedAttempts: DefaultMaxFailedAttempts,
		LockPeriod:        DefaultLockPeriod,
		now:               time.Now,
	}
}

// Login checks the password, opens a session and issues an access token.
// Repeated failures lock the password for LockPeriod. Only active users may
// log in.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	email, err := vo.NewEmail(in.Email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrInvalidCredentials
	}
	log := s.Logger.WithField("user_id", u.ID().String())

	pw, err := s.Passwords.GetByUserID(ctx, u.ID())
	if err != nil {
		return nil, err
	}
	if pw == nil {
		return nil, ErrInvalidCredentials
	}
	now := s.now()
	if pw.IsLocked(now) {
		s.audit(ctx, u.ID(), in, ErrAccountLocked)
		return nil, ErrAccountLocked
	}
	if !s.Hasher.CompareHashAndPassword(pw.Hash, in.Password) {
		if n := pw.RegisterFailedAttempt(); n >= s.MaxFailedAttempts {
			pw.ResetFailedAttempts()
			pw.LockUntil(now.Add(s.LockPeriod))
			log.WithField("until", pw.LockedUntil).Warn("password locked after failed attempts")
		}
		if err := s.Passwords.Save(ctx, pw); err != nil {
			return nil, err
		}
		s.audit(ctx, u.ID(), in, ErrInvalidCredentials)
		return nil, ErrInvalidCredentials
	}
	if !u.IsActive() {
		s.audit(ctx, u.ID(), in, ErrAccountInactive)
		return nil, ErrAccountInactive
	}
	if pw.FailedAttempts > 0 || pw.LockedUntil != nil {
		pw.ResetFailedAttempts()
		if err := s.Passwords.Save(ctx, pw); err != nil {
			return nil, err
		}
	}

	sess, err := entity.NewUserSession(u.ID(), uuid.NewString(), now.Add(s.SessionTTL), in.IP, in.UserAgent)
	if err != nil {
		return nil, err
	}
	token, exp, err := s.JWT.GenerateAccessToken(u.ID().String(), sess.ID.String(), sess.AccessTokenVersion)
	if err != nil {
		log.WithError(err).Error("generate access token failed")
		return nil, err
	}
	if err := s.Sessions.Put(ctx, sess); err != nil {
		log.WithError(err).Error("store session failed")
		return nil, err
	}
	if err := u.RecordLogin(sess); err != nil {
		return nil, err
	}
	if err := s.store.publish(ctx, u); err != nil {
		return nil, err
	}
	s.audit(ctx, u.ID(), in, nil)
	log.WithField("session_id", sess.ID.String()).Info("user logged in")

	return &LoginResult{
		UserID:            u.ID().String(),
		SessionID:         sess.ID.String(),
		AccessToken:       token,
		AccessTokenExpiry: exp,
		RefreshToken:      sess.RefreshToken,
		SessionExpiry:     sess.ExpiresAt,
	}, nil
}

// Authorize resolves an access token to its live session.
func (s *AuthService) Authorize(ctx context.Context, token string) (*entity.UserSession, error) {
	claims, err := s.JWT.ParseAccessToken(token)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	sess, err := s.Sessions.Get(ctx, claims.SessionID)
	if err != nil {
		return nil, err
	}
	if sess == nil || !sess.IsValid(s.now()) {
		return nil, ErrSessionNotFound
	}
	if sess.UserID.String() != claims.UserID || sess.AccessTokenVersion != claims.TokenVersion {
		return nil, ErrInvalidCredentials
	}
	sess.Touch()
	if err := s.Sessions.Put(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// RevokeTokens invalidates every access token issued for the session.
func (s *AuthService) RevokeTokens(ctx context.Context, sessionID string) error {
	sess, err := s.session(ctx, sessionID)
	if err != nil {
		return err
	}
	sess.InvalidateTokens()
	return s.Sessions.Put(ctx, sess)
}

func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	sess, err := s.session(ctx, sessionID)
	if err != nil {
		return err
	}
	sess.Terminate()
	if err := s.Sessions.Delete(ctx, sessionID); err != nil {
		return err
	}
	s.Logger.WithField("session_id", sessionID).WithField("user_id", sess.UserID.String()).Info("user logged out")
	return nil
}

func (s *AuthService) session(ctx context.Context, id string) (*entity.UserSession, error) {
	sess, err := s.Sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// audit appends a login attempt to the activity log; failures to do so are
// only logged.
func (s *AuthService) audit(ctx context.Context, userID vo.UserID, in LoginInput, failure error) {
	if s.Activity == nil {
		return
	}
	l, err := entity.NewUserActivityLog(userID, "login", failure == nil, map[string]any{"ip": in.IP})
	if err != nil {
		return
	}
	l.IPAddress = in.IP
	l.UserAgent = in.UserAgent
	if failure != nil {
		l.Error = failure.Error()
	}
	if err := s.Activity.Append(ctx, l); err != nil && !errors.Is(err, context.Canceled) {
		s.Logger.WithError(err).WithField("user_id", userID.String()).Warn("activity log append failed")
	}
}
