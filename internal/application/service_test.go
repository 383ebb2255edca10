package application

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/oksasatya/go-ddd-user-context/internal/domain/entity"
	"github.com/oksasatya/go-ddd-user-context/internal/domain/event"
	"github.com/oksasatya/go-ddd-user-context/internal/domain/repository"
	vo "github.com/oksasatya/go-ddd-user-context/internal/domain/valueobject"
	"github.com/oksasatya/go-ddd-user-context/internal/infrastructure/memory"
	"github.com/oksasatya/go-ddd-user-context/pkg/apperrors"
	"github.com/oksasatya/go-ddd-user-context/pkg/helpers"
)

type fixture struct {
	users     *memory.UserRepository
	roles     *memory.RoleRepository
	passwords *memory.PasswordRepository
	profiles  *memory.ProfileRepository
	sessions  *memory.SessionStore
	codes     *memory.VerificationStore
	activity  *memory.ActivityLogRepository
	subs      *memory.SubscriptionRepository
	pub       *memory.Publisher
	jwt       *helpers.JWTManager

	userSvc  *UserService
	auth     *AuthService
	verify   *VerificationService
	profSvc  *ProfileService
	subSvc   *SubscriptionService
	uploader *mockUploader
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	f := &fixture{
		users:     memory.NewUserRepository(),
		roles:     memory.NewRoleRepository(),
		passwords: memory.NewPasswordRepository(),
		profiles:  memory.NewProfileRepository(),
		sessions:  memory.NewSessionStore(),
		codes:     memory.NewVerificationStore(),
		activity:  memory.NewActivityLogRepository(),
		subs:      memory.NewSubscriptionRepository(),
		pub:       memory.NewPublisher(),
		jwt:       helpers.NewJWTManager("test-secret", "users-test", time.Hour),
		uploader:  &mockUploader{},
	}
	hasher := helpers.PasswordHasher{Cost: bcrypt.MinCost}

	f.userSvc = NewUserService(f.users, f.roles, f.passwords, f.profiles, f.pub, logger)
	f.userSvc.Hasher = hasher

	f.auth = NewAuthService(f.users, f.passwords, f.sessions, f.pub, f.jwt, 24*time.Hour, logger)
	f.auth.Hasher = hasher
	f.auth.Activity = f.activity

	f.verify = NewVerificationService(f.users, f.codes, f.pub, 30*time.Minute, logger)
	f.verify.generate = func() (string, error) { return "123456", nil }

	f.profSvc = NewProfileService(f.users, f.profiles, f.uploader, logger)
	f.subSvc = NewSubscriptionService(f.users, f.subs, f.pub, logger)
	return f
}

func (f *fixture) register(t *testing.T, email, password string) *entity.User {
	t.Helper()
	u, err := f.userSvc.Register(context.Background(), RegisterInput{Email: email, Password: password})
	require.NoError(t, err)
	return u
}

type mockUploader struct{ mock.Mock }

func (m *mockUploader) Upload(_ context.Context, userID vo.UserID, contentType string, r io.Reader) (string, error) {
	b, _ := io.ReadAll(r)
	args := m.Called(userID, contentType, string(b))
	return args.String(0), args.Error(1)
}

type mockSearcher struct{ mock.Mock }

func (m *mockSearcher) Search(_ context.Context, q string, limit int) ([]entity.Snapshot, error) {
	args := m.Called(q, limit)
	return args.Get(0).([]entity.Snapshot), args.Error(1)
}

func TestUserService_Register(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	u, err := f.userSvc.Register(ctx, RegisterInput{Email: " Ana@Example.com ", Username: "ana_dev", Password: "s3cret-pass"})
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", u.Email().String())
	assert.Equal(t, vo.StatusPending, u.Status())
	assert.Equal(t, 1, u.Version())
	assert.Equal(t, []string{event.NameRegistered, event.NameUsernameAssigned}, f.pub.Names())

	pw, err := f.passwords.GetByUserID(ctx, u.ID())
	require.NoError(t, err)
	require.NotNil(t, pw)
	assert.True(t, f.userSvc.Hasher.CompareHashAndPassword(pw.Hash, "s3cret-pass"))

	profile, err := f.profiles.GetByUserID(ctx, u.ID())
	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.Equal(t, vo.DefaultLocale, profile.Locale.String())

	t.Run("email taken", func(t *testing.T) {
		_, err := f.userSvc.Register(ctx, RegisterInput{Email: "ana@example.com"})
		assert.ErrorIs(t, err, ErrEmailTaken)
		assert.ErrorIs(t, err, apperrors.ErrConflict)
	})
	t.Run("username taken", func(t *testing.T) {
		_, err := f.userSvc.Register(ctx, RegisterInput{Email: "other@example.com", Username: "ANA_DEV"})
		assert.ErrorIs(t, err, ErrUsernameTaken)
	})
	t.Run("bad email", func(t *testing.T) {
		_, err := f.userSvc.Register(ctx, RegisterInput{Email: "not-an-email"})
		assert.ErrorIs(t, err, vo.ErrFormat)
	})
	t.Run("short password", func(t *testing.T) {
		_, err := f.userSvc.Register(ctx, RegisterInput{Email: "short@example.com", Password: "123"})
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})
	assert.Equal(t, 1, f.users.Len())
}

func TestUserService_Lifecycle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	id := f.register(t, "life@example.com", "").ID().String()
	f.pub.Reset()

	_, err := f.userSvc.Activate(ctx, id)
	require.NoError(t, err)
	_, err = f.userSvc.Suspend(ctx, id)
	require.NoError(t, err)
	_, err = f.userSvc.Suspend(ctx, id)
	assert.ErrorIs(t, err, vo.ErrTransition)
	_, err = f.userSvc.Activate(ctx, id)
	require.NoError(t, err)
	u, err := f.userSvc.Delete(ctx, id)
	require.NoError(t, err)
	assert.True(t, u.IsDeleted())
	require.NotNil(t, u.DeletedAt())

	_, err = f.userSvc.Activate(ctx, id)
	assert.ErrorIs(t, err, vo.ErrTransition)
	_, err = f.userSvc.AssignPhone(ctx, id, "+57 300 123 4567")
	assert.ErrorIs(t, err, vo.ErrInvalidStatus)

	assert.Equal(t, []string{
		event.NameActivated, event.NameSuspended, event.NameActivated, event.NameDeleted,
	}, f.pub.Names())

	stored, err := f.userSvc.Get(ctx, id)
	require.NoError(t, err)
	assert.True(t, stored.IsDeleted())
	assert.Equal(t, 5, stored.Version())
}

func TestUserService_Get(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.userSvc.Get(ctx, vo.NewUserID().String())
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = f.userSvc.Get(ctx, "nope")
	assert.ErrorIs(t, err, vo.ErrFormat)

	u := f.register(t, "find@example.com", "")
	got, err := f.userSvc.GetByEmail(ctx, "FIND@example.com")
	require.NoError(t, err)
	assert.True(t, got.ID().Equals(u.ID()))
}

func TestUserService_ContactData(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.register(t, "a@example.com", "")
	f.register(t, "b@example.com", "")
	id := a.ID().String()

	_, err := f.userSvc.ChangeEmail(ctx, id, "b@example.com")
	assert.ErrorIs(t, err, ErrEmailTaken)
	_, err = f.userSvc.ChangeEmail(ctx, id, "a@example.com")
	assert.ErrorIs(t, err, vo.ErrUnchanged)

	_, err = f.userSvc.VerifyEmail(ctx, id)
	require.NoError(t, err)
	u, err := f.userSvc.ChangeEmail(ctx, id, "a2@example.com")
	require.NoError(t, err)
	assert.False(t, u.EmailVerified())

	_, err = f.userSvc.VerifyPhone(ctx, id)
	assert.ErrorIs(t, err, vo.ErrMissing)
	u, err = f.userSvc.AssignPhone(ctx, id, "+57 300 123 4567")
	require.NoError(t, err)
	assert.Equal(t, "+57", u.Phone().CountryCode())
	u, err = f.userSvc.VerifyPhone(ctx, id)
	require.NoError(t, err)
	assert.True(t, u.PhoneVerified())

	_, err = f.userSvc.AssignUsername(ctx, id, "alpha_user")
	require.NoError(t, err)
	// re-assigning your own username is allowed
	_, err = f.userSvc.AssignUsername(ctx, id, "alpha_user")
	require.NoError(t, err)

	u, err = f.userSvc.LinkExternalID(ctx, id, "auth0|abc123")
	require.NoError(t, err)
	assert.Equal(t, "auth0|abc123", u.ExternalID().String())
}

func TestUserService_Roles(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	u := f.register(t, "roles@example.com", "")
	admin := f.register(t, "admin@example.com", "")

	_, err := f.userSvc.AssignRole(ctx, AssignRoleInput{UserID: u.ID().String(), Role: "editor"})
	assert.ErrorIs(t, err, ErrRoleNotFound)

	role, err := f.userSvc.EnsureRole(ctx, "editor", "Editor", "", []string{"posts:write"}, false)
	require.NoError(t, err)
	again, err := f.userSvc.EnsureRole(ctx, "editor", "ignored", "", nil, false)
	require.NoError(t, err)
	assert.Equal(t, role.ID, again.ID)

	ur, err := f.userSvc.AssignRole(ctx, AssignRoleInput{UserID: u.ID().String(), Role: "Editor", GrantedBy: admin.ID().String()})
	require.NoError(t, err)
	require.NotNil(t, ur.GrantedBy)
	assert.True(t, ur.GrantedBy.Equals(admin.ID()))

	roles, err := f.userSvc.RolesOf(ctx, u.ID().String())
	require.NoError(t, err)
	require.Len(t, roles, 1)
	assert.Equal(t, "editor", roles[0].Name.String())

	past := time.Now().Add(-time.Hour)
	_, err = f.userSvc.AssignRole(ctx, AssignRoleInput{UserID: u.ID().String(), Role: "editor", ExpiresAt: &past})
	assert.ErrorIs(t, err, vo.ErrExpired)
}

func TestUserService_PublishFailureKeepsSavedState(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	id := f.register(t, "pub@example.com", "").ID().String()

	f.pub.Err = errors.New("broker down")
	_, err := f.userSvc.Activate(ctx, id)
	require.Error(t, err)
	assert.Contains(t, err.Error(), event.NameActivated)

	stored, err := f.userSvc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, vo.StatusActive, stored.Status())
}

type flakyRepo struct {
	*memory.UserRepository
	failures int
}

func (r *flakyRepo) Save(ctx context.Context, u *entity.User) error {
	if r.failures > 0 {
		r.failures--
		return repository.ErrConcurrentUpdate
	}
	return r.UserRepository.Save(ctx, u)
}

func TestUserService_RetriesConcurrentUpdate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	id := f.register(t, "retry@example.com", "").ID().String()

	repo := &flakyRepo{UserRepository: f.users, failures: 2}
	svc := NewUserService(repo, f.roles, f.passwords, f.profiles, f.pub, f.userSvc.Logger)
	u, err := svc.Activate(ctx, id)
	require.NoError(t, err)
	assert.True(t, u.IsActive())

	repo.failures = maxSaveAttempts
	_, err = svc.Suspend(ctx, id)
	assert.True(t, repository.IsConcurrentUpdate(err))
}

func TestUserService_SetPassword(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	u := f.register(t, "pw@example.com", "")

	assert.ErrorIs(t, f.userSvc.SetPassword(ctx, u.ID().String(), "short"), helpers.ErrPasswordTooShort)
	require.NoError(t, f.userSvc.SetPassword(ctx, u.ID().String(), "first-password"))
	require.NoError(t, f.userSvc.SetPassword(ctx, u.ID().String(), "second-password"))

	pw, err := f.passwords.GetByUserID(ctx, u.ID())
	require.NoError(t, err)
	assert.True(t, f.userSvc.Hasher.CompareHashAndPassword(pw.Hash, "second-password"))
}

func TestUserService_Search(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.userSvc.Search(ctx, "ana", 10)
	assert.ErrorIs(t, err, ErrSearchDisabled)

	s := &mockSearcher{}
	s.On("Search", "ana", 10).Return([]entity.Snapshot{{Email: "ana@example.com"}}, nil)
	f.userSvc.Searcher = s
	out, err := f.userSvc.Search(ctx, "ana", 10)
	require.NoError(t, err)
	require.Len(t, out, 1)
	s.AssertExpectations(t)
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	u := f.register(t, "login@example.com", "correct-horse")
	in := LoginInput{Email: "login@example.com", Password: "correct-horse", IP: "10.1.1.1", UserAgent: "cli"}

	_, err := f.auth.Login(ctx, in)
	assert.ErrorIs(t, err, ErrAccountInactive)

	_, err = f.userSvc.Activate(ctx, u.ID().String())
	require.NoError(t, err)
	f.pub.Reset()

	res, err := f.auth.Login(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, u.ID().String(), res.UserID)
	assert.NotEmpty(t, res.RefreshToken)

	claims, err := f.jwt.ParseAccessToken(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, res.SessionID, claims.SessionID)
	assert.Equal(t, 1, claims.TokenVersion)

	require.Len(t, f.pub.Events(), 1)
	loggedIn, ok := f.pub.Events()[0].(event.LoggedIn)
	require.True(t, ok)
	assert.Equal(t, "10.1.1.1", loggedIn.IP)
	assert.Equal(t, []string{"login", "login"}, f.activity.Actions(u.ID()))

	sess, err := f.auth.Authorize(ctx, res.AccessToken)
	require.NoError(t, err)
	assert.NotNil(t, sess.LastActivityAt)

	require.NoError(t, f.auth.RevokeTokens(ctx, res.SessionID))
	_, err = f.auth.Authorize(ctx, res.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, f.auth.Logout(ctx, res.SessionID))
	assert.ErrorIs(t, f.auth.Logout(ctx, res.SessionID), ErrSessionNotFound)
}

func TestAuthService_UnknownUserAndBadPassword(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.register(t, "nopw@example.com", "")

	_, err := f.auth.Login(ctx, LoginInput{Email: "ghost@example.com", Password: "whatever1"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = f.auth.Login(ctx, LoginInput{Email: "nopw@example.com", Password: "whatever1"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = f.auth.Login(ctx, LoginInput{Email: "not-an-email", Password: "whatever1"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = f.auth.Login(ctx, LoginInput{Email: "nopw@example.com"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestAuthService_Lockout(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	u := f.register(t, "lock@example.com", "right-password")
	_, err := f.userSvc.Activate(ctx, u.ID().String())
	require.NoError(t, err)

	now := time.Now()
	f.auth.now = func() time.Time { return now }

	bad := LoginInput{Email: "lock@example.com", Password: "wrong-password"}
	for i := 0; i < DefaultMaxFailedAttempts; i++ {
		_, err := f.auth.Login(ctx, bad)
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	}

	good := LoginInput{Email: "lock@example.com", Password: "right-password"}
	_, err = f.auth.Login(ctx, good)
	assert.ErrorIs(t, err, ErrAccountLocked)

	now = now.Add(DefaultLockPeriod + time.Second)
	_, err = f.auth.Login(ctx, good)
	require.NoError(t, err)

	pw, err := f.passwords.GetByUserID(ctx, u.ID())
	require.NoError(t, err)
	assert.Zero(t, pw.FailedAttempts)
	assert.Nil(t, pw.LockedUntil)
}

func TestVerificationService(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	u := f.register(t, "verify@example.com", "")
	id := u.ID().String()

	_, code, err := f.verify.IssueEmailCode(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "123456", code.Code)
	assert.Equal(t, "verify@example.com", code.Email)

	_, err = f.verify.ConfirmEmail(ctx, id, "000000")
	assert.ErrorIs(t, err, ErrInvalidCode)

	// a code issued for the previous address is useless after a change
	_, err = f.userSvc.ChangeEmail(ctx, id, "verify2@example.com")
	require.NoError(t, err)
	_, err = f.verify.ConfirmEmail(ctx, id, "123456")
	assert.ErrorIs(t, err, ErrInvalidCode)

	_, _, err = f.verify.IssueEmailCode(ctx, id)
	require.NoError(t, err)
	f.pub.Reset()
	verified, err := f.verify.ConfirmEmail(ctx, id, "123456")
	require.NoError(t, err)
	assert.True(t, verified.EmailVerified())
	assert.Equal(t, []string{event.NameEmailVerified}, f.pub.Names())

	pending, err := f.codes.Get(ctx, u.ID())
	require.NoError(t, err)
	assert.Nil(t, pending)

	_, _, err = f.verify.IssueEmailCode(ctx, id)
	assert.ErrorIs(t, err, vo.ErrAlreadyVerified)
}

func TestVerificationService_WrongGuessesDiscardCode(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.verify.MaxAttempts = 3
	u := f.register(t, "guess@example.com", "")
	id := u.ID().String()

	_, _, err := f.verify.IssueEmailCode(ctx, id)
	require.NoError(t, err)

	for _, guess := range []string{"000000", "111111"} {
		_, err = f.verify.ConfirmEmail(ctx, id, guess)
		assert.ErrorIs(t, err, ErrInvalidCode)
	}
	_, err = f.verify.ConfirmEmail(ctx, id, "222222")
	assert.ErrorIs(t, err, ErrTooManyCodeGuesses)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	pending, err := f.codes.Get(ctx, u.ID())
	require.NoError(t, err)
	assert.Nil(t, pending)

	// the right code is useless once discarded
	_, err = f.verify.ConfirmEmail(ctx, id, "123456")
	assert.ErrorIs(t, err, ErrInvalidCode)

	// a fresh code starts a fresh count
	_, _, err = f.verify.IssueEmailCode(ctx, id)
	require.NoError(t, err)
	_, err = f.verify.ConfirmEmail(ctx, id, "000000")
	assert.ErrorIs(t, err, ErrInvalidCode)
	verified, err := f.verify.ConfirmEmail(ctx, id, "123456")
	require.NoError(t, err)
	assert.True(t, verified.EmailVerified())
}

func TestProfileService(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	u := f.register(t, "profile@example.com", "")
	id := u.ID().String()

	name, bad, locale, tz, gender := "Ana Ruiz", "Ana", "en_us", "Europe/Madrid", "female"
	p, err := f.profSvc.Update(ctx, id, ProfileInput{DisplayName: &name, Locale: &locale, Timezone: &tz, Gender: &gender})
	require.NoError(t, err)
	assert.Equal(t, "Ana Ruiz", p.DisplayName)
	assert.Equal(t, "en-US", p.Locale.String())
	assert.Equal(t, "Europe/Madrid", p.Timezone.String())

	_, err = f.profSvc.Update(ctx, id, ProfileInput{DisplayName: &bad})
	assert.ErrorIs(t, err, vo.ErrTooShort)

	f.uploader.On("Upload", u.ID(), "image/png", "png-bytes").Return("https://cdn.example/avatar.png", nil)
	url, err := f.profSvc.UploadAvatar(ctx, id, "image/png", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/avatar.png", url)

	got, err := f.profSvc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, url, got.AvatarURL)
	assert.Equal(t, "Ana Ruiz", got.DisplayName)
	f.uploader.AssertExpectations(t)
}

func TestSubscriptionService(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	u := f.register(t, "sub@example.com", "s3cret-pass")
	id := u.ID().String()

	_, err := f.subSvc.Get(ctx, id)
	assert.ErrorIs(t, err, ErrSubscriptionNotFound)
	_, err = f.subSvc.Renew(ctx, id, 30)
	assert.ErrorIs(t, err, ErrSubscriptionNotFound)

	_, err = f.subSvc.Subscribe(ctx, id, SubscribeInput{Tier: "gold", Days: 30})
	assert.ErrorIs(t, err, vo.ErrNotSupported)
	_, err = f.subSvc.Subscribe(ctx, id, SubscribeInput{Tier: "basic", Days: -1})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	sub, err := f.subSvc.Subscribe(ctx, id, SubscribeInput{Tier: "Premium", Days: 30, AutoRenew: true, PaymentMethod: "card"})
	require.NoError(t, err)
	assert.Equal(t, vo.TierPremium, sub.Tier)
	assert.Equal(t, vo.SubscriptionActive, sub.Status)
	require.NotNil(t, sub.ExpiresAt)
	firstExpiry := *sub.ExpiresAt

	_, err = f.subSvc.Subscribe(ctx, id, SubscribeInput{Tier: "basic", Days: 30})
	assert.ErrorIs(t, err, ErrSubscriptionActive)

	f.pub.Reset()
	sub, err = f.subSvc.Renew(ctx, id, 10)
	require.NoError(t, err)
	assert.True(t, firstExpiry.AddDate(0, 0, 10).Equal(*sub.ExpiresAt))
	assert.Equal(t, []string{event.NameSubscriptionRenewed}, f.pub.Names())

	_, err = f.subSvc.Renew(ctx, id, 0)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	sub, err = f.subSvc.ChangeTier(ctx, id, "enterprise")
	require.NoError(t, err)
	assert.Equal(t, vo.TierEnterprise, sub.Tier)
	_, err = f.subSvc.ChangeTier(ctx, id, "enterprise")
	assert.ErrorIs(t, err, vo.ErrUnchanged)

	sub, err = f.subSvc.Cancel(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, vo.SubscriptionCanceled, sub.Status)
	assert.False(t, sub.AutoRenew)

	f.pub.Reset()
	_, err = f.subSvc.Renew(ctx, id, 10)
	assert.ErrorIs(t, err, vo.ErrInvalidValue)
	assert.Empty(t, f.pub.Names())
	_, err = f.subSvc.ChangeTier(ctx, id, "basic")
	assert.ErrorIs(t, err, vo.ErrInvalidValue)

	stored, err := f.subSvc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, vo.SubscriptionCanceled, stored.Status)

	t.Run("resubscribe keeps identity", func(t *testing.T) {
		again, err := f.subSvc.Subscribe(ctx, id, SubscribeInput{Tier: "basic"})
		require.NoError(t, err)
		assert.Equal(t, stored.ID, again.ID)
		assert.Equal(t, stored.CreatedAt, again.CreatedAt)
		assert.Nil(t, again.ExpiresAt)
	})

	t.Run("deleted user", func(t *testing.T) {
		other := f.register(t, "gone@example.com", "s3cret-pass")
		_, err := f.userSvc.Delete(ctx, other.ID().String())
		require.NoError(t, err)
		_, err = f.subSvc.Subscribe(ctx, other.ID().String(), SubscribeInput{Tier: "basic", Days: 30})
		assert.ErrorIs(t, err, vo.ErrInvalidStatus)
	})
}
