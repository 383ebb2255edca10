package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	vo "github.com/oksasatya/go-ddd-user-context/internal/domain/valueobject"
)

// freezeClock pins the package clock and returns a func advancing it.
func freezeClock(t *testing.T, start time.Time) func(d time.Duration) {
	t.Helper()
	current := start
	prev := clock
	clock = func() time.Time { return current }
	t.Cleanup(func() { clock = prev })
	return func(d time.Duration) { current = current.Add(d) }
}

func mustEmail(t *testing.T, raw string) vo.Email {
	t.Helper()
	e, err := vo.NewEmail(raw)
	require.NoError(t, err)
	return e
}

func mustPhone(t *testing.T) vo.Phone {
	t.Helper()
	p, err := vo.NewPhone("+57", "3201234567")
	require.NoError(t, err)
	return p
}

// userIn drives a freshly registered user into status and drops its events.
func userIn(t *testing.T, status vo.UserStatus) *User {
	t.Helper()
	u := Register(mustEmail(t, "alice@example.com"))
	switch status {
	case vo.StatusActive:
		require.NoError(t, u.Activate())
	case vo.StatusSuspended:
		require.NoError(t, u.Activate())
		require.NoError(t, u.Suspend())
	case vo.StatusDeleted:
		require.NoError(t, u.Delete())
	}
	u.TakeEvents()
	return u
}
