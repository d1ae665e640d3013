package simulation

import (
	"errors"
	"fmt"
)

// Class names a failure category. Every class ends in the same fallback result.
type Class string

const (
	ClassConfigurationMissing Class = "configuration_missing"
	ClassTransport            Class = "transport_failure"
	ClassSchemaViolation      Class = "schema_violation"
	ClassInvalidInput         Class = "invalid_input"
	ClassCanceled             Class = "canceled"
)

var (
	ErrConfigurationMissing = errors.New("simulation: service credential is not configured")
	ErrTransport            = errors.New("simulation: generation service call failed")
	ErrSchemaViolation      = errors.New("simulation: response does not match the result schema")
	ErrInvalidInput         = errors.New("simulation: scenario is empty")
	ErrCanceled             = errors.New("simulation: request canceled by caller")
)

// AdvisoryMessage is shown to users when the service could not be reached or
// is not configured.
const AdvisoryMessage = "生成模拟结果失败。请检查您的网络连接或 API Key。"

// Error is the classified failure behind a fallback result.
type Error struct {
	Class Class
	Err   error
}

func newError(class Class, cause error) *Error {
	return &Error{Class: class, Err: cause}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.sentinel().Error()
	}
	return fmt.Sprintf("%s: %v", e.sentinel(), e.Err)
}

// Unwrap exposes both the class sentinel and the cause to errors.Is/As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.sentinel()}
	}
	return []error{e.sentinel(), e.Err}
}

func (e *Error) sentinel() error {
	switch e.Class {
	case ClassConfigurationMissing:
		return ErrConfigurationMissing
	case ClassTransport:
		return ErrTransport
	case ClassSchemaViolation:
		return ErrSchemaViolation
	case ClassInvalidInput:
		return ErrInvalidInput
	case ClassCanceled:
		return ErrCanceled
	default:
		return ErrTransport
	}
}

// ClassOf returns the class of err, or "" when err is nil or unclassified.
func ClassOf(err error) Class {
	var e *Error
	if errors.As(err, &e) {
		return e.Class
	}
	return ""
}

// Advisory returns the user-facing message for err. Only configuration and
// transport failures carry one; a schema violation degrades silently.
func Advisory(err error) string {
	switch ClassOf(err) {
	case ClassConfigurationMissing, ClassTransport:
		return AdvisoryMessage
	default:
		return ""
	}
}
