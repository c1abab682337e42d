package mdserr

import (
	"errors"
	"fmt"
	"testing"
)

func TestFormatErrorMessage(t *testing.T) {
	err := Format("a.meta", 0, "bad token %q", "}")
	if got, want := err.Error(), `format error in a.meta: bad token "}"`; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}

	err = &FormatError{Path: "diag.log", Line: 12, Err: ErrSyntax}
	if got, want := err.Error(), "format error in diag.log line 12: syntax error"; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestErrorsUnwrap(t *testing.T) {
	wrapped := fmt.Errorf("reading T: %w", IO("T.0000000010.data", ErrSizeMismatch))

	if !IsIO(wrapped) {
		t.Error("expected IsIO to see through wrapping")
	}
	if IsFormat(wrapped) {
		t.Error("IOError must not be reported as FormatError")
	}
	if !errors.Is(wrapped, ErrSizeMismatch) {
		t.Error("expected errors.Is to find ErrSizeMismatch")
	}

	var ioErr *IOError
	if !errors.As(wrapped, &ioErr) || ioErr.Path != "T.0000000010.data" {
		t.Errorf("expected path T.0000000010.data, got %+v", ioErr)
	}
}
