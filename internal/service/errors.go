package service

import (
	"errors"
	"fmt"
	"strings"

	"tooltrack/pkg/validator"

	"gorm.io/gorm"
)

var (
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrDuplicateMapping  = errors.New("supplier code is already mapped to another product")
	ErrDuplicateCode     = errors.New("product code already exists")
	ErrInvalidState      = errors.New("invalid state")
	ErrUnknownHolder     = errors.New("unknown holder")
)

// ValidationError carries the individual field failures of a request.
type ValidationError struct {
	Fields []*validator.ErrorResponse
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("field '%s' failed on '%s'", f.FailedField, f.Tag))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// validateStruct runs struct tags and wraps failures as a ValidationError.
func validateStruct(v interface{}) error {
	if errs := validator.ValidateStruct(v); len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}

func invalidf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// notFound maps gorm's missing-row error onto ErrNotFound.
func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return err
}

// ItemFailure reports one input item a bulk operation could not apply.
type ItemFailure struct {
	Code   string `json:"code"`
	Reason string `json:"reason"`
}

func failure(code string, err error) ItemFailure {
	return ItemFailure{Code: code, Reason: err.Error()}
}
