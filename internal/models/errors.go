package models

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// ErrorKind tags the variant of an AppError.
type ErrorKind string

const (
	// KindUnauthorized means the caller identity is missing or invalid.
	KindUnauthorized ErrorKind = "UNAUTHORIZED"
	// KindForbidden means the caller is known but may not act on the resource.
	KindForbidden ErrorKind = "FORBIDDEN"
	// KindNotFound means a referenced entity is absent.
	KindNotFound ErrorKind = "NOT_FOUND"
	// KindValidation means the input was rejected by schema validation.
	KindValidation ErrorKind = "VALIDATION_ERROR"
	// KindConflict means the write collides with an existing unique value.
	KindConflict ErrorKind = "CONFLICT"
	// KindInternal covers every other failure.
	KindInternal ErrorKind = "INTERNAL_ERROR"
)

var kindStatus = map[ErrorKind]int{
	KindUnauthorized: fiber.StatusUnauthorized,
	KindForbidden:    fiber.StatusForbidden,
	KindNotFound:     fiber.StatusNotFound,
	KindValidation:   fiber.StatusBadRequest,
	KindConflict:     fiber.StatusConflict,
	KindInternal:     fiber.StatusInternalServerError,
}

// StatusFor maps an error kind to its HTTP status code.
func StatusFor(kind ErrorKind) int {
	if status, ok := kindStatus[kind]; ok {
		return status
	}
	return fiber.StatusInternalServerError
}

// FieldError is one field-level validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ErrorResponse represents a standardized API error response
type ErrorResponse struct {
	Message string       `json:"message"`
	Code    ErrorKind    `json:"code,omitempty"`
	Errors  []FieldError `json:"errors,omitempty"`
}

// AppError represents a custom application error
type AppError struct {
	Kind    ErrorKind
	Message string
	Errors  []FieldError
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Status returns the HTTP status code for the error's kind.
func (e *AppError) Status() int {
	return StatusFor(e.Kind)
}

// NewNotFoundError reports a missing resource, e.g. "Post not found".
func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Kind:    KindNotFound,
		Message: resource + " not found",
	}
}

func NewValidationError(message string) *AppError {
	return &AppError{
		Kind:    KindValidation,
		Message: message,
	}
}

// NewFieldValidationError carries a per-field error list.
func NewFieldValidationError(message string, fields []FieldError) *AppError {
	return &AppError{
		Kind:    KindValidation,
		Message: message,
		Errors:  fields,
	}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Kind:    KindUnauthorized,
		Message: message,
	}
}

func NewForbiddenError(message string) *AppError {
	return &AppError{
		Kind:    KindForbidden,
		Message: message,
	}
}

func NewConflictError(message string) *AppError {
	return &AppError{
		Kind:    KindConflict,
		Message: message,
	}
}

// NewInternalError wraps an unexpected failure. The underlying message is
// passed through to the client.
func NewInternalError(err error) *AppError {
	msg := "Internal server error"
	if err != nil {
		msg = err.Error()
	}
	return &AppError{
		Kind:    KindInternal,
		Message: msg,
		Err:     err,
	}
}

// IsKind reports whether err is an AppError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Kind == kind
}

// RespondWithError writes err using the status mapped from its kind.
// Errors that are not AppErrors become a 500 carrying err.Error().
func RespondWithError(c *fiber.Ctx, err error) error {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return c.Status(appErr.Status()).JSON(ErrorResponse{
			Message: appErr.Message,
			Code:    appErr.Kind,
			Errors:  appErr.Errors,
		})
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(ErrorResponse{Message: fiberErr.Message})
	}

	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
		Message: err.Error(),
	})
}
