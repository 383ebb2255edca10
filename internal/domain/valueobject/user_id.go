package valueobject

import (
	"strings"

	"github.com/google/uuid"
)

// UserID is the immutable identity of a user.
type UserID struct {
	value uuid.UUID
}

func NewUserID() UserID { return UserID{value: uuid.New()} }

func UserIDFromUUID(id uuid.UUID) UserID { return UserID{value: id} }

func ParseUserID(raw string) (UserID, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return UserID{}, newError(CategoryID, KindEmpty)
	}
	id, err := uuid.Parse(v)
	if err != nil {
		return UserID{}, errFormat(CategoryID, "uuid")
	}
	return UserID{value: id}, nil
}

func (id UserID) UUID() uuid.UUID      { return id.value }
func (id UserID) String() string       { return id.value.String() }
func (id UserID) Equals(o UserID) bool { return id.value == o.value }
func (id UserID) IsZero() bool         { return id.value == uuid.Nil }

func (id UserID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

func (id *UserID) UnmarshalText(b []byte) error {
	parsed, err := ParseUserID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
