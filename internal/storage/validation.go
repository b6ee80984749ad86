// Package storage provides the SQLite store for user-imported tax schedules.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/taxflow/internal/model"
)

// Validation errors.
var (
	ErrNilContext   = errors.New("context cannot be nil")
	ErrEmptyString  = errors.New("string parameter cannot be empty")
	ErrInvalidInput = errors.New("invalid schedule")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateSchedule checks a schedule before it is written.
func validateSchedule(s model.Schedule) error {
	if err := validateString(string(s.Jurisdiction), "jurisdiction"); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if s.Year <= 0 {
		return fmt.Errorf("%w: year must be positive", ErrInvalidInput)
	}
	if err := s.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return nil
}
