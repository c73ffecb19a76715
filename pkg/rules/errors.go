package rules

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownRuleType is matched by *UnknownRuleTypeError.
	ErrUnknownRuleType = errors.New("unknown rule type")
	// ErrInvalidRuleRecord is matched by *RecordError.
	ErrInvalidRuleRecord = errors.New("invalid rule record")
	// ErrUnsupportedOperator is returned when a comparison or group operator is not supported.
	ErrUnsupportedOperator = errors.New("unsupported operator")
	// ErrColumnNotFound is returned by Apply when a rule needs a column the table lacks.
	ErrColumnNotFound = errors.New("column not found")
)

// UnknownRuleTypeError carries the tag that matched no rule variant.
type UnknownRuleTypeError struct {
	Type string
}

func (e *UnknownRuleTypeError) Error() string {
	return fmt.Sprintf("unknown rule type %q", e.Type)
}

func (e *UnknownRuleTypeError) Is(target error) bool { return target == ErrUnknownRuleType }

// RecordError describes a missing or ill-typed field in a rule record.
type RecordError struct {
	Type   Type
	Field  string
	Reason string
	Err    error
}

func (e *RecordError) Error() string {
	msg := fmt.Sprintf("invalid %s record", e.Type)
	if e.Field != "" {
		msg += fmt.Sprintf(": field %q", e.Field)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *RecordError) Is(target error) bool { return target == ErrInvalidRuleRecord }

func (e *RecordError) Unwrap() error { return e.Err }

func recordErr(t Type, field, reason string) error {
	return &RecordError{Type: t, Field: field, Reason: reason}
}
