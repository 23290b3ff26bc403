package fieldcodec

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownField is matched by UnknownFieldError.
	ErrUnknownField = errors.New("unknown field")

	// ErrInvalidValue is matched by InvalidValueError.
	ErrInvalidValue = errors.New("invalid field value")
)

// UnknownFieldError means a layout references a field the rule table does
// not declare. It is a configuration defect, never a data problem.
type UnknownFieldError struct {
	Name string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("unknown field %q: not in rule table", e.Name)
}

func (e *UnknownFieldError) Is(target error) bool {
	return target == ErrUnknownField
}

// InvalidValueError means a raw value cannot be encoded with its rule.
type InvalidValueError struct {
	Field  string
	Value  string
	Reason string
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("field %q: %s (value: %q)", e.Field, e.Reason, e.Value)
}

func (e *InvalidValueError) Is(target error) bool {
	return target == ErrInvalidValue
}
