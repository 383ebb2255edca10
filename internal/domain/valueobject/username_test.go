package valueobject

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUsername(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr error
	}{
		{in: "abcdef", want: "abcdef"},
		{in: "  Alice_01 ", want: "alice_01"},
		{in: "john.doe-99", want: "john.doe-99"},
		{in: "ab", wantErr: ErrTooShort},
		{in: "", wantErr: ErrEmpty},
		{in: strings.Repeat("a", 31), wantErr: ErrTooLong},
		{in: "1abcdef", wantErr: ErrFormat},
		{in: "_abcdef", wantErr: ErrFormat},
		{in: "abc..def", wantErr: ErrFormat},
		{in: "abcdef.", wantErr: ErrFormat},
		{in: "abc def", wantErr: ErrFormat},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			u, err := NewUsername(tc.in)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, u.String())
		})
	}
}
