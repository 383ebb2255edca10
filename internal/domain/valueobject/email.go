package valueobject

import "strings"

const (
	emailMinLen = 6
	emailMaxLen = 254
)

// Email is a trimmed, lowercased address in local@domain.tld form.
type Email struct {
	value string
}

func NewEmail(raw string) (Email, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return Email{}, newError(CategoryEmail, KindEmpty)
	}
	v = strings.ToLower(v)
	if len(v) < emailMinLen {
		return Email{}, errTooShort(CategoryEmail, emailMinLen)
	}
	if len(v) > emailMaxLen {
		return Email{}, errTooLong(CategoryEmail, emailMaxLen)
	}
	if !emailRule.match(v) {
		return Email{}, errFormat(CategoryEmail, emailRule.name)
	}
	return Email{value: v}, nil
}

func (e Email) String() string      { return e.value }
func (e Email) Equals(o Email) bool { return e.value == o.value }
func (e Email) IsZero() bool        { return e.value == "" }

// Domain returns the part after the @.
func (e Email) Domain() string {
	if i := strings.LastIndexByte(e.value, '@'); i >= 0 {
		return e.value[i+1:]
	}
	return ""
}

func (e Email) MarshalText() ([]byte, error) { return []byte(e.String()), nil }
