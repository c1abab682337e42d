// Package mdserr defines the error taxonomy shared by the MDS readers.
//
// Two error types cover every failure the readers report:
//
//   - [FormatError]: malformed metadata or diagnostics text (bad grammar,
//     wrong field count, unknown precision tag).
//   - [IOError]: a required file is missing, or a payload's byte length does
//     not match its declared shape and element type.
//
// Both carry the offending path so callers never have to re-derive context
// from logs. Both unwrap to an underlying cause, so the sentinel errors
// below can be matched with errors.Is.
package mdserr

import (
	"errors"
	"fmt"
)

// Common errors
var (
	ErrMissingFile      = errors.New("file not found")
	ErrSizeMismatch     = errors.New("payload size does not match declared shape")
	ErrSyntax           = errors.New("syntax error")
	ErrMissingField     = errors.New("required field missing")
	ErrUnknownPrecision = errors.New("unknown data precision")
	ErrMultiRecord      = errors.New("file holds more than one record")
	ErrMaxMapCount      = errors.New("maximum map count reached")
)

// FormatError reports malformed metadata or diagnostics text.
type FormatError struct {
	Path string
	Line int // 1-based; zero when not applicable
	Err  error
}

func (e *FormatError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("format error in %s line %d: %v", e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("format error in %s: %v", e.Path, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

// IOError reports a missing file or a payload inconsistent with its metadata.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("i/o error on %s: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// IO returns an IOError for path wrapping err.
func IO(path string, err error) error {
	return &IOError{Path: path, Err: err}
}

// IsFormat reports whether err is, or wraps, a FormatError.
func IsFormat(err error) bool {
	var fe *FormatError
	return errors.As(err, &fe)
}

// IsIO reports whether err is, or wraps, an IOError.
func IsIO(err error) bool {
	var ie *IOError
	return errors.As(err, &ie)
}
