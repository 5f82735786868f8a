// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	ErrQuoteNotFound = errors.New("quote not found")
	ErrTokenMissing  = errors.New("telegram bot token not configured")
	ErrConfigInvalid = errors.New("invalid configuration")
	ErrUserNotFound  = errors.New("user has no data")
)

// GatewayError represents a hard transport failure talking to an external
// collaborator (quote source or Telegram). It is distinct from ErrQuoteNotFound,
// which is the ordinary "no trading data" condition.
type GatewayError struct {
	Op     string
	Symbol string
	Err    error
}

func (e *GatewayError) Error() string {
	if e.Symbol != "" {
		return fmt.Sprintf("gateway error [%s] %s: %v", e.Op, e.Symbol, e.Err)
	}
	return fmt.Sprintf("gateway error [%s]: %v", e.Op, e.Err)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// NewGatewayError creates a new GatewayError.
func NewGatewayError(op, symbol string, err error) *GatewayError {
	return &GatewayError{Op: op, Symbol: symbol, Err: err}
}

// IsGatewayFault reports whether err is a hard transport failure.
func IsGatewayFault(err error) bool {
	var ge *GatewayError
	return errors.As(err, &ge)
}

// ValidationError represents a rejected command argument.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s (%v): %s", e.Field, e.Value, e.Message)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
