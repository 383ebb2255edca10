package valueobject

import (
	"strings"
	"unicode"
)

const (
	externalIDMinLen = 16
	externalIDMaxLen = 255
)

// ExternalID is the subject identifier issued by an external identity provider.
type ExternalID struct {
	value string
}

func NewExternalID(raw string) (ExternalID, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return ExternalID{}, newError(CategoryExternalID, KindEmpty)
	}
	if len(v) < externalIDMinLen {
		return ExternalID{}, errTooShort(CategoryExternalID, externalIDMinLen)
	}
	if len(v) > externalIDMaxLen {
		return ExternalID{}, errTooLong(CategoryExternalID, externalIDMaxLen)
	}
	if strings.IndexFunc(v, unicode.IsControl) >= 0 {
		return ExternalID{}, errFormat(CategoryExternalID, "printable")
	}
	return ExternalID{value: v}, nil
}

func (e ExternalID) String() string           { return e.value }
func (e ExternalID) Equals(o ExternalID) bool { return e.value == o.value }

func (e ExternalID) MarshalText() ([]byte, error) { return []byte(e.String()), nil }
