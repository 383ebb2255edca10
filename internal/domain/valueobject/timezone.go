package valueobject

import (
	"strings"
	"time"
	_ "time/tzdata"
)

const DefaultTimezone = "America/Bogota"

// Timezone is an IANA zone name such as "Europe/Madrid".
type Timezone struct {
	value string
}

func NewTimezone(raw string) (Timezone, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return Timezone{}, newError(CategoryTimezone, KindEmpty)
	}
	if v == "Local" {
		return Timezone{}, newError(CategoryTimezone, KindNotSupported)
	}
	if _, err := time.LoadLocation(v); err != nil {
		return Timezone{}, newError(CategoryTimezone, KindNotSupported)
	}
	return Timezone{value: v}, nil
}

// DefaultTimezoneValue returns the zone applied when a profile has none.
func DefaultTimezoneValue() Timezone { return Timezone{value: DefaultTimezone} }

func (t Timezone) String() string         { return t.value }
func (t Timezone) Equals(o Timezone) bool { return t.value == o.value }

// Location loads the zone. The name was validated on construction.
func (t Timezone) Location() *time.Location {
	loc, err := time.LoadLocation(t.value)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (t Timezone) MarshalText() ([]byte, error) { return []byte(t.String()), nil }
