package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ValidationError is reported to the caller verbatim.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string { return e.Resource + " not found" }

func notFound(resource string) error {
	return &NotFoundError{Resource: resource}
}

// ConflictError means the requested time is no longer free.
type ConflictError struct {
	Message        string
	AppointmentIDs []uuid.UUID
}

func (e *ConflictError) Error() string {
	if e.Message == "" {
		return "time slot is no longer available"
	}
	return e.Message
}

// notFoundOr maps gorm.ErrRecordNotFound to a NotFoundError and wraps anything else.
func notFoundOr(err error, resource string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound(resource)
	}
	return fmt.Errorf("load %s: %w", resource, err)
}

func parseID(value, field string) (uuid.UUID, error) {
	if value == "" {
		return uuid.Nil, invalid("%s is required", field)
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, invalid("invalid %s", field)
	}
	return id, nil
}
