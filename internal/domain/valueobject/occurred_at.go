package valueobject

import (
	"strings"
	"time"
)

// OccurredAt is a UTC instant.
type OccurredAt struct {
	t time.Time
}

func Now() OccurredAt { return OccurredAt{t: time.Now().UTC()} }

func OccurredAtFrom(t time.Time) OccurredAt { return OccurredAt{t: t.UTC()} }

// ParseOccurredAt parses an RFC 3339 timestamp.
func ParseOccurredAt(raw string) (OccurredAt, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return OccurredAt{}, newError(CategoryOccurredAt, KindEmpty)
	}
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return OccurredAt{}, errFormat(CategoryOccurredAt, "rfc3339")
	}
	return OccurredAt{t: t.UTC()}, nil
}

func (o OccurredAt) Time() time.Time              { return o.t }
func (o OccurredAt) String() string               { return o.t.Format(time.RFC3339Nano) }
func (o OccurredAt) IsZero() bool                 { return o.t.IsZero() }
func (o OccurredAt) Equals(other OccurredAt) bool { return o.t.Equal(other.t) }
func (o OccurredAt) Before(other OccurredAt) bool { return o.t.Before(other.t) }
func (o OccurredAt) After(other OccurredAt) bool  { return o.t.After(other.t) }
