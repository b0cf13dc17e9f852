package domain

import (
	"context"
	"errors"
	"fmt"
)

type NotFoundError struct {
	Resource string
	Err      error
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s does not exist", e.Resource)
}

func (e NotFoundError) Unwrap() error { return e.Err }

// ValidationError is tagged with the request field that failed.
type ValidationError struct {
	Field string
	Msg   string
	Err   error
}

func (e ValidationError) Error() string {
	if e.Msg != "" && e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	}
	if e.Msg != "" {
		return e.Msg
	}
	if e.Field != "" {
		return fmt.Sprintf("invalid %s", e.Field)
	}
	return "validation error"
}

func (e ValidationError) Unwrap() error { return e.Err }

type ConflictError struct {
	Resource string
	Msg      string
	Err      error
}

func (e ConflictError) Error() string {
	switch {
	case e.Msg != "" && e.Resource != "":
		return fmt.Sprintf("%s conflict: %s", e.Resource, e.Msg)
	case e.Msg != "":
		return e.Msg
	case e.Resource != "":
		return fmt.Sprintf("%s conflict", e.Resource)
	default:
		return "conflict"
	}
}

func (e ConflictError) Unwrap() error { return e.Err }

// AuthenticationError never carries credential material in its message.
type AuthenticationError struct {
	Msg string
	Err error
}

func (e AuthenticationError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "authentication required"
}

func (e AuthenticationError) Unwrap() error { return e.Err }

type AuthorizationError struct {
	Msg string
}

func (e AuthorizationError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "unauthorized access"
}

// CanceledError reports a store operation abandoned because its context ended.
type CanceledError struct {
	Op  string
	Err error
}

func (e CanceledError) Error() string {
	if e.Op == "" {
		return "operation cancelled"
	}
	return fmt.Sprintf("%s: operation cancelled", e.Op)
}

func (e CanceledError) Unwrap() error { return e.Err }

// StoreError wraps a backend failure. CorrelationID ties the failure to an audit log entry.
type StoreError struct {
	Op            string
	CorrelationID string
	Retryable     bool
	Err           error
}

func (e StoreError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: store failure", e.Op)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e StoreError) Unwrap() error { return e.Err }

type InternalError struct {
	Msg string
	Err error
}

func (e InternalError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "internal error"
}

func (e InternalError) Unwrap() error { return e.Err }

func IsNotFound(err error) bool {
	var target NotFoundError
	return errors.As(err, &target)
}

func IsValidation(err error) bool {
	var target ValidationError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target ConflictError
	return errors.As(err, &target)
}

func IsAuthentication(err error) bool {
	var target AuthenticationError
	return errors.As(err, &target)
}

func IsAuthorization(err error) bool {
	var target AuthorizationError
	return errors.As(err, &target)
}

func IsCanceled(err error) bool {
	var target CanceledError
	if errors.As(err, &target) {
		return true
	}
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func IsStore(err error) bool {
	var target StoreError
	return errors.As(err, &target)
}

func IsInternal(err error) bool {
	var target InternalError
	return errors.As(err, &target)
}

// FieldOf returns the field tag of a ValidationError, or "" for other errors.
func FieldOf(err error) string {
	var target ValidationError
	if errors.As(err, &target) {
		return target.Field
	}
	return ""
}
