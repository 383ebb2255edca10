package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"

	vo "github.com/oksasatya/go-ddd-user-context/internal/domain/valueobject"
)

type UserActivityLog struct {
	ID        uuid.UUID
	UserID    vo.UserID
	Action    string
	Details   map[string]any
	IPAddress string
	UserAgent string
	Success   bool
	Error     string
	CreatedAt time.Time
}

func NewUserActivityLog(userID vo.UserID, action string, success bool, details map[string]any) (*UserActivityLog, error) {
	action = strings.TrimSpace(action)
	if action == "" {
		return nil, &vo.Error{Category: vo.CategoryActivity, Kind: vo.KindEmpty}
	}
	return &UserActivityLog{
		ID:        uuid.New(),
		UserID:    userID,
		Action:    action,
		Details:   details,
		Success:   success,
		CreatedAt: clock().UTC(),
	}, nil
}

func (l *UserActivityLog) IsFailure() bool { return !l.Success }
