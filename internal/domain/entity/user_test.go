package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-ddd-user-context/internal/domain/event"
	vo "github.com/oksasatya/go-ddd-user-context/internal/domain/valueobject"
)

var t0 = time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)

func TestRegister(t *testing.T) {
	freezeClock(t, t0)
	u := Register(mustEmail(t, "alice@example.com"))

	assert.False(t, u.ID().IsZero())
	assert.Equal(t, vo.StatusPending, u.Status())
	assert.False(t, u.EmailVerified())
	assert.Nil(t, u.Phone())
	assert.Nil(t, u.DeletedAt())
	assert.Equal(t, t0, u.CreatedAt().Time())
	assert.Equal(t, 0, u.Version())

	events := u.TakeEvents()
	require.Len(t, events, 1)
	reg, ok := events[0].(event.Registered)
	require.True(t, ok)
	assert.Equal(t, "alice@example.com", reg.Email.String())
	assert.True(t, reg.AggregateID().Equals(u.ID()))
}

func TestUser_Scenario(t *testing.T) {
	advance := freezeClock(t, t0)

	u := Register(mustEmail(t, "alice@example.com"))
	assert.Equal(t, 1, u.PendingEvents())
	u.TakeEvents()

	advance(time.Minute)
	require.NoError(t, u.UpdateEmail(mustEmail(t, "alice2@example.com")))
	assert.Equal(t, vo.StatusPending, u.Status())
	assert.False(t, u.EmailVerified())
	assert.Equal(t, t0.Add(time.Minute), u.UpdatedAt().Time())
	events := u.TakeEvents()
	require.Len(t, events, 1)
	updated := events[0].(event.EmailUpdated)
	assert.Equal(t, "alice@example.com", updated.Old.String())
	assert.Equal(t, "alice2@example.com", updated.New.String())

	require.NoError(t, u.VerifyEmail())
	assert.True(t, u.EmailVerified())

	require.NoError(t, u.Activate())
	assert.Equal(t, vo.StatusActive, u.Status())
	require.NoError(t, u.Suspend())
	assert.Equal(t, vo.StatusSuspended, u.Status())
	require.NoError(t, u.Activate())
	assert.Equal(t, vo.StatusActive, u.Status())

	advance(time.Hour)
	require.NoError(t, u.Delete())
	assert.Equal(t, vo.StatusDeleted, u.Status())
	require.NotNil(t, u.DeletedAt())
	assert.Equal(t, t0.Add(time.Hour+time.Minute), u.DeletedAt().Time())

	err := u.Activate()
	assert.ErrorIs(t, err, vo.ErrTransition)

	names := []string{}
	for _, e := range u.TakeEvents() {
		names = append(names, e.EventName())
	}
	assert.Equal(t, []string{
		event.NameEmailVerified,
		event.NameActivated,
		event.NameSuspended,
		event.NameActivated,
		event.NameDeleted,
	}, names)
}

func TestUser_Activate(t *testing.T) {
	cases := []struct {
		from vo.UserStatus
		ok   bool
	}{
		{vo.StatusPending, true},
		{vo.StatusSuspended, true},
		{vo.StatusActive, false},
		{vo.StatusDeleted, false},
	}
	for _, tc := range cases {
		t.Run(string(tc.from), func(t *testing.T) {
			u := userIn(t, tc.from)
			err := u.Activate()
			if tc.ok {
				require.NoError(t, err)
				assert.Equal(t, vo.StatusActive, u.Status())
				ev := u.TakeEvents()
				require.Len(t, ev, 1)
				assert.Equal(t, tc.from, ev[0].(event.Activated).From)
				return
			}
			var verr *vo.Error
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, vo.KindTransition, verr.Kind)
			assert.Equal(t, tc.from, verr.From)
			assert.Equal(t, vo.StatusActive, verr.To)
			assert.Equal(t, tc.from, u.Status())
			assert.Empty(t, u.TakeEvents())
		})
	}
}

func TestUser_Suspend(t *testing.T) {
	for _, from := range vo.UserStatuses {
		t.Run(string(from), func(t *testing.T) {
			u := userIn(t, from)
			err := u.Suspend()
			if from == vo.StatusActive {
				require.NoError(t, err)
				assert.Equal(t, vo.StatusSuspended, u.Status())
				return
			}
			assert.ErrorIs(t, err, vo.ErrTransition)
			assert.Equal(t, from, u.Status())
		})
	}
}

func TestUser_DeleteIsTerminal(t *testing.T) {
	for _, from := range []vo.UserStatus{vo.StatusPending, vo.StatusActive, vo.StatusSuspended} {
		t.Run(string(from), func(t *testing.T) {
			u := userIn(t, from)
			require.NoError(t, u.Delete())
			require.NotNil(t, u.DeletedAt())

			assert.ErrorIs(t, u.Activate(), vo.ErrTransition)
			assert.ErrorIs(t, u.Suspend(), vo.ErrTransition)
			assert.ErrorIs(t, u.Delete(), vo.ErrTransition)
			assert.ErrorIs(t, u.UpdateEmail(mustEmail(t, "other@example.com")), vo.ErrInvalidStatus)
			assert.ErrorIs(t, u.VerifyEmail(), vo.ErrInvalidStatus)
			assert.ErrorIs(t, u.AssignPhone(mustPhone(t)), vo.ErrInvalidStatus)

			name, err := vo.NewUsername("alice_01")
			require.NoError(t, err)
			assert.ErrorIs(t, u.AssignUsername(name), vo.ErrInvalidStatus)
			assert.Equal(t, vo.StatusDeleted, u.Status())
		})
	}
}

func TestUser_UpdateEmail(t *testing.T) {
	t.Run("same email is unchanged", func(t *testing.T) {
		u := userIn(t, vo.StatusActive)
		err := u.UpdateEmail(mustEmail(t, " ALICE@example.com "))
		var verr *vo.Error
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, vo.KindUnchanged, verr.Kind)
		assert.Equal(t, "alice@example.com", verr.Value)
		assert.Equal(t, vo.StatusActive, u.Status())
		assert.Empty(t, u.TakeEvents())
	})

	for _, from := range []vo.UserStatus{vo.StatusPending, vo.StatusActive, vo.StatusSuspended} {
		t.Run("resets from "+string(from), func(t *testing.T) {
			u := userIn(t, from)
			if from == vo.StatusPending {
				require.NoError(t, u.VerifyEmail())
			}
			require.NoError(t, u.UpdateEmail(mustEmail(t, "new@example.com")))
			assert.Equal(t, vo.StatusPending, u.Status())
			assert.False(t, u.EmailVerified())
			assert.Equal(t, "new@example.com", u.Email().String())
		})
	}
}

func TestUser_VerifyEmail(t *testing.T) {
	u := userIn(t, vo.StatusPending)
	require.NoError(t, u.VerifyEmail())
	assert.ErrorIs(t, u.VerifyEmail(), vo.ErrAlreadyVerified)

	s := userIn(t, vo.StatusSuspended)
	err := s.VerifyEmail()
	var verr *vo.Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, vo.KindInvalidStatus, verr.Kind)
	assert.Equal(t, vo.StatusSuspended, verr.Status)
	assert.False(t, s.EmailVerified())
}

func TestUser_Phone(t *testing.T) {
	u := userIn(t, vo.StatusActive)
	assert.ErrorIs(t, u.VerifyPhone(), &vo.Error{Category: vo.CategoryPhone, Kind: vo.KindMissing})

	require.NoError(t, u.AssignPhone(mustPhone(t)))
	assert.False(t, u.PhoneVerified())
	require.NoError(t, u.VerifyPhone())
	assert.True(t, u.PhoneVerified())
	assert.ErrorIs(t, u.VerifyPhone(), vo.ErrAlreadyVerified)

	require.NoError(t, u.AssignPhone(mustPhone(t)))
	assert.False(t, u.PhoneVerified())

	events := u.TakeEvents()
	require.Len(t, events, 3)
	assert.IsType(t, event.PhoneAssigned{}, events[0])
	assert.IsType(t, event.PhoneVerified{}, events[1])
	assert.IsType(t, event.PhoneAssigned{}, events[2])
}

func TestUser_UsernameAndExternalID(t *testing.T) {
	u := userIn(t, vo.StatusSuspended)
	name, err := vo.NewUsername("alice_01")
	require.NoError(t, err)
	ext, err := vo.NewExternalID("oidc|0123456789abcdef")
	require.NoError(t, err)

	require.NoError(t, u.AssignUsername(name))
	require.NoError(t, u.LinkExternalID(ext))
	assert.Equal(t, "alice_01", u.Username().String())
	assert.Equal(t, ext, *u.ExternalID())
	assert.Equal(t, vo.StatusSuspended, u.Status())
	assert.Len(t, u.TakeEvents(), 2)
}

func TestUser_TakeEventsDrains(t *testing.T) {
	u := Register(mustEmail(t, "alice@example.com"))
	assert.NotEmpty(t, u.TakeEvents())
	assert.Empty(t, u.TakeEvents())
}

func TestUser_GettersReturnCopies(t *testing.T) {
	u := userIn(t, vo.StatusActive)
	require.NoError(t, u.AssignPhone(mustPhone(t)))

	p := u.Phone()
	other, err := vo.NewPhone("1", "4155552671")
	require.NoError(t, err)
	*p = other
	assert.Equal(t, "+573201234567", u.Phone().String())
}

func TestUser_RecordLogin(t *testing.T) {
	freezeClock(t, t0)
	u := userIn(t, vo.StatusActive)
	s, err := NewUserSession(u.ID(), "", t0.Add(time.Hour), "10.0.0.1", "cli")
	require.NoError(t, err)

	before := u.UpdatedAt()
	freezeClock(t, t0.Add(time.Minute))
	require.NoError(t, u.RecordLogin(s))
	assert.Equal(t, before, u.UpdatedAt())
	ev := u.TakeEvents()
	require.Len(t, ev, 1)
	login := ev[0].(event.LoggedIn)
	assert.Equal(t, s.ID, login.SessionID)
	assert.Equal(t, "10.0.0.1", login.IP)

	pending := userIn(t, vo.StatusPending)
	assert.ErrorIs(t, pending.RecordLogin(s), vo.ErrInvalidStatus)
}
