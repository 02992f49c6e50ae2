package contacts

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors. Callers should match with errors.Is.
var (
	ErrEmptyFile     = errors.New("empty file")
	ErrNoHeader      = errors.New("no header row found")
	ErrInvalidCSV    = errors.New("invalid csv")
	ErrNoPhoneColumn = errors.New("no phone column found")
	ErrInvalidPhone  = errors.New("invalid phone number")
)

// ParseError reports a structural problem with the input file.
type ParseError struct {
	Line int // 1-based line in the source, 0 when not applicable
	Err  error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse csv: line %d: %v", e.Line, e.Err)
	}
	return "parse csv: " + e.Err.Error()
}

func (e *ParseError) Unwrap() error { return e.Err }

// DetectionError is returned when no header looks like a phone column.
type DetectionError struct {
	Headers []string
}

func (e *DetectionError) Error() string {
	return fmt.Sprintf("%v (headers: %s)", ErrNoPhoneColumn, strings.Join(e.Headers, ", "))
}

func (e *DetectionError) Unwrap() error { return ErrNoPhoneColumn }

// NormalizationError is returned when a raw value cannot be turned into a
// canonical phone number.
type NormalizationError struct {
	Input  string
	Reason string
}

func (e *NormalizationError) Error() string {
	return fmt.Sprintf("%v %q: %s", ErrInvalidPhone, e.Input, e.Reason)
}

func (e *NormalizationError) Unwrap() error { return ErrInvalidPhone }
