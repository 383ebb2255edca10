package valueobject

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEmail_Valid(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"alice@example.com", "alice@example.com"},
		{"  Alice@Example.COM  ", "alice@example.com"},
		{"first.last-1@mail.example.co", "first.last-1@mail.example.co"},
		{"a_b@sub-domain.example.museum", "a_b@sub-domain.example.museum"},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			e, err := NewEmail(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, e.String())

			again, err := NewEmail(e.String())
			require.NoError(t, err)
			assert.True(t, again.Equals(e))
		})
	}
}

func TestNewEmail_Invalid(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want error
	}{
		{"empty", "", ErrEmpty},
		{"blank", "   ", ErrEmpty},
		{"too short", "a@b.c", ErrTooShort},
		{"too long", strings.Repeat("a", 60) + "@" + strings.Repeat("b", 200) + ".com", ErrTooLong},
		{"missing at", "alice.example.com", ErrFormat},
		{"missing tld", "alice@example", ErrFormat},
		{"double dot domain", "alice@example..com", ErrFormat},
		{"leading hyphen label", "alice@-example.com", ErrFormat},
		{"numeric tld", "alice@example.c0m", ErrFormat},
		{"leading dot local", ".alice@example.com", ErrFormat},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewEmail(tc.in)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.want)
			assert.ErrorIs(t, err, &Error{Category: CategoryEmail})
		})
	}
}

func TestEmail_Domain(t *testing.T) {
	e, err := NewEmail("bob@example.org")
	require.NoError(t, err)
	assert.Equal(t, "example.org", e.Domain())
	assert.False(t, e.IsZero())
	assert.True(t, Email{}.IsZero())
}
