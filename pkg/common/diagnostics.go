package common

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"
)

// Error kinds shared by the parsing and repair pipelines. Diagnostics and
// returned errors wrap one of these so callers can test with errors.Is.
var (
	ErrIO        = errors.New("i/o error")
	ErrFormat    = errors.New("format error")
	ErrIntegrity = errors.New("integrity warning")
	ErrCycle     = errors.New("cycle error")
)

// KindOf returns the error kind wrapped by err. Errors that wrap none of
// the kinds are reported as ErrIO.
func KindOf(err error) error {
	for _, kind := range []error{ErrCycle, ErrIntegrity, ErrFormat, ErrIO} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return ErrIO
}

// Severity of a recorded diagnostic
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
)

func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "warning"
}

// Diagnostic is one anomaly found while processing an image.
// Offset is the absolute byte position in the image, or -1 when unknown.
type Diagnostic struct {
	Severity Severity
	Kind     error
	Offset   int64
	Message  string
}

func (d Diagnostic) Error() string {
	return fmt.Sprintf("%s: %s", d.Kind, d.Message)
}

func (d Diagnostic) Unwrap() error {
	return d.Kind
}

// Diagnostics accumulates the non-fatal findings of a run.
// The zero value is ready to use.
type Diagnostics struct {
	items []Diagnostic
}

// Warn records a warning and logs it.
func (d *Diagnostics) Warn(kind error, offset int64, message string, args ...interface{}) {
	d.add(SeverityWarning, kind, offset, message, args...)
	LogWarn(message, args...)
}

// Error records an error and logs it. Processing is expected to continue.
func (d *Diagnostics) Error(kind error, offset int64, message string, args ...interface{}) {
	d.add(SeverityError, kind, offset, message, args...)
	LogError(message, args...)
}

func (d *Diagnostics) add(severity Severity, kind error, offset int64, message string, args ...interface{}) {
	if len(args) > 0 {
		message = fmt.Sprintf(message, args...)
	}
	d.items = append(d.items, Diagnostic{
		Severity: severity,
		Kind:     kind,
		Offset:   offset,
		Message:  message,
	})
}

// Items returns every recorded diagnostic in recording order.
func (d *Diagnostics) Items() []Diagnostic {
	return d.items
}

// Len returns the number of recorded diagnostics.
func (d *Diagnostics) Len() int {
	return len(d.items)
}

// Warnings returns the number of warning-severity diagnostics.
func (d *Diagnostics) Warnings() int {
	return d.count(SeverityWarning)
}

// Errors returns the number of error-severity diagnostics.
func (d *Diagnostics) Errors() int {
	return d.count(SeverityError)
}

func (d *Diagnostics) count(severity Severity) int {
	n := 0
	for _, item := range d.items {
		if item.Severity == severity {
			n++
		}
	}
	return n
}

// Has reports whether any diagnostic of the given kind was recorded.
func (d *Diagnostics) Has(kind error) bool {
	for _, item := range d.items {
		if errors.Is(item, kind) {
			return true
		}
	}
	return false
}

// Err combines every error-severity diagnostic into one error, or nil.
func (d *Diagnostics) Err() error {
	var err error
	for _, item := range d.items {
		if item.Severity == SeverityError {
			err = multierr.Append(err, item)
		}
	}
	return err
}
