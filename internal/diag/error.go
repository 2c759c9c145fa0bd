package diag

import (
	"errors"
	"fmt"
)

// Error is a fatal diagnostic travelling as a Go error.
type Error struct {
	Diag Diagnostic
	Err  error // optional cause
}

// Errorf builds a fatal diagnostic without location.
func Errorf(code Code, format string, args ...any) *Error {
	return &Error{Diag: New(SevError, code, Location{}, fmt.Sprintf(format, args...))}
}

// Wrap builds a fatal diagnostic around cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	e := Errorf(code, format, args...)
	e.Err = cause
	return e
}

func (e *Error) Error() string {
	msg := e.Diag.Short()
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error by code, so sentinel comparisons work with
// errors.Is(err, &diag.Error{Diag: diag.Diagnostic{Code: diag.CfgNoPrimary}}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Diag.Code == e.Diag.Code
}

// WithAction records the offending action's description.
func (e *Error) WithAction(desc string) *Error {
	e.Diag.Action = desc
	return e
}

// At fills in the location of a diag error that does not carry one yet.
// Other errors are returned untouched.
func At(err error, loc Location) error {
	var de *Error
	if !errors.As(err, &de) {
		return err
	}
	if de.Diag.Location.Table == "" {
		de.Diag.Location.Table = loc.Table
	}
	if de.Diag.Location.Row == 0 {
		de.Diag.Location.Row = loc.Row
	}
	return err
}

// CodeOf returns the diagnostic code carried by err, or UnknownCode.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Diag.Code
	}
	return UnknownCode
}
