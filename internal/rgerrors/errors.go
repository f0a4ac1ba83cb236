// Package rgerrors provides a lightweight structured error type for
// category-based classification of report generation failures.
package rgerrors

import "fmt"

// Category classifies a report generation error.
type Category string

const (
	// User-facing configuration errors: bad report tree, unknown provider.
	CategoryConfig Category = "config"

	// Archive data source errors.
	CategoryArchive Category = "archive"

	// Rendering and output errors.
	CategoryRender     Category = "render"
	CategoryFileSystem Category = "filesystem"

	// Everything else.
	CategoryRuntime Category = "runtime"
)

// Severity indicates how much of the run an error aborts.
type Severity string

const (
	SeverityFatal   Severity = "fatal"   // aborts the whole run
	SeverityTask    Severity = "task"    // aborts one report task, run continues
	SeverityWindow  Severity = "window"  // aborts one output window, task continues
	SeverityWarning Severity = "warning" // informational, nothing aborted
)

// Error is a structured error with category, severity and an optional cause.
type Error struct {
	Category Category
	Severity Severity
	Message  string
	Cause    error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Category, e.Severity, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Category, e.Severity, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New creates a new structured error.
func New(category Category, severity Severity, message string) *Error {
	return &Error{Category: category, Severity: severity, Message: message}
}

// Newf creates a new structured error with a formatted message.
func Newf(category Category, severity Severity, format string, args ...any) *Error {
	return &Error{Category: category, Severity: severity, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates a structured error wrapping an existing one.
func Wrap(err error, category Category, severity Severity, message string) *Error {
	return &Error{Category: category, Severity: severity, Message: message, Cause: err}
}

// IsCategory checks if an error belongs to a specific category.
func IsCategory(err error, category Category) bool {
	if e, ok := err.(*Error); ok {
		return e.Category == category
	}
	return false
}

// GetSeverity extracts the severity from an error, defaulting to SeverityFatal
// for errors that did not come through this package.
func GetSeverity(err error) Severity {
	if e, ok := err.(*Error); ok {
		return e.Severity
	}
	return SeverityFatal
}
