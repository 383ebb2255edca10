package valueobject

import "strings"

const (
	usernameMinLen = 6
	usernameMaxLen = 30
)

// Username is a lowercase handle starting with a letter.
type Username struct {
	value string
}

func NewUsername(raw string) (Username, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return Username{}, newError(CategoryUsername, KindEmpty)
	}
	v = strings.ToLower(v)
	if len(v) < usernameMinLen {
		return Username{}, errTooShort(CategoryUsername, usernameMinLen)
	}
	if len(v) > usernameMaxLen {
		return Username{}, errTooLong(CategoryUsername, usernameMaxLen)
	}
	if !usernameRule.match(v) {
		return Username{}, errFormat(CategoryUsername, usernameRule.name)
	}
	return Username{value: v}, nil
}

func (u Username) String() string         { return u.value }
func (u Username) Equals(o Username) bool { return u.value == o.value }

func (u Username) MarshalText() ([]byte, error) { return []byte(u.String()), nil }
