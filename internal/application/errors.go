package application

import (
	"github.com/oksasatya/go-ddd-user-context/pkg/apperrors"
)

var (
	ErrUserNotFound         = apperrors.Wrap(apperrors.ErrNotFound, "user not found")
	ErrRoleNotFound         = apperrors.Wrap(apperrors.ErrNotFound, "role not found")
	ErrEmailTaken           = apperrors.Wrap(apperrors.ErrConflict, "email already registered")
	ErrUsernameTaken        = apperrors.Wrap(apperrors.ErrConflict, "username already taken")
	ErrInvalidCredentials   = apperrors.Wrap(apperrors.ErrUnauthorized, "invalid credentials")
	ErrSessionNotFound      = apperrors.Wrap(apperrors.ErrUnauthorized, "session not found")
	ErrAccountLocked        = apperrors.Wrap(apperrors.ErrForbidden, "account temporarily locked")
	ErrAccountInactive      = apperrors.Wrap(apperrors.ErrForbidden, "account not active")
	ErrInvalidCode          = apperrors.Wrap(apperrors.ErrInvalidInput, "invalid or expired verification code")
	ErrTooManyCodeGuesses   = apperrors.Wrap(apperrors.ErrForbidden, "too many wrong codes, request a new one")
	ErrSubscriptionNotFound = apperrors.Wrap(apperrors.ErrNotFound, "subscription not found")
	ErrSubscriptionActive   = apperrors.Wrap(apperrors.ErrConflict, "subscription already active")
	ErrSearchDisabled       = apperrors.Wrap(apperrors.ErrNotFound, "search index not configured")
	ErrAvatarsDisabled      = apperrors.Wrap(apperrors.ErrNotFound, "avatar storage not configured")
)
