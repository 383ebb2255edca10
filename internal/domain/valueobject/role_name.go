package valueobject

import "strings"

const (
	roleNameMinLen = 3
	roleNameMaxLen = 50
)

// RoleName identifies a role, e.g. "admin" or "billing-viewer".
type RoleName struct {
	value string
}

func NewRoleName(raw string) (RoleName, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return RoleName{}, newError(CategoryRole, KindEmpty)
	}
	v = strings.ToLower(v)
	if len(v) < roleNameMinLen {
		return RoleName{}, errTooShort(CategoryRole, roleNameMinLen)
	}
	if len(v) > roleNameMaxLen {
		return RoleName{}, errTooLong(CategoryRole, roleNameMaxLen)
	}
	if !roleNameRule.match(v) {
		return RoleName{}, errFormat(CategoryRole, roleNameRule.name)
	}
	return RoleName{value: v}, nil
}

func (r RoleName) String() string         { return r.value }
func (r RoleName) Equals(o RoleName) bool { return r.value == o.value }

// Title returns the name with its first letter upper-cased, for display.
func (r RoleName) Title() string {
	if r.value == "" {
		return ""
	}
	return strings.ToUpper(r.value[:1]) + r.value[1:]
}

func (r RoleName) MarshalText() ([]byte, error) { return []byte(r.String()), nil }
