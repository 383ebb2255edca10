package entity

import (
	"time"

	"github.com/oksasatya/go-ddd-user-context/internal/domain/valueobject"
)

// clock is swapped in tests.
var clock = time.Now

func now() valueobject.OccurredAt { return valueobject.OccurredAtFrom(clock()) }
