// Package apperrors holds the generic error taxonomy shared by every layer.
// Domain and application errors wrap one of these so callers can branch on intent
// (not found, conflict, invalid input) without knowing the concrete error type.
package apperrors

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

// Wrap annotates err with message while keeping it matchable through errors.Is.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
