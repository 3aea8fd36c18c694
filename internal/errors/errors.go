// Package errors provides a lightweight structured error type (BuildError)
// for category-based classification of page build failures in the CLI.
package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrorCategory represents the category of a build error for classification
type ErrorCategory string

const (
	// User-facing configuration and input errors
	CategoryConfig      ErrorCategory = "config"
	CategoryFrontMatter ErrorCategory = "frontmatter"
	CategorySidecar     ErrorCategory = "sidecar"
	CategoryValidation  ErrorCategory = "validation"

	// Content rendering errors
	CategoryDirective ErrorCategory = "directive"
	CategoryRender    ErrorCategory = "render"

	// Runtime and infrastructure errors
	CategoryFileSystem ErrorCategory = "filesystem"
	CategoryInternal   ErrorCategory = "internal"
)

// ErrorSeverity indicates how critical an error is
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // Aborts the whole build
	SeverityError   ErrorSeverity = "error"   // Skips the offending page, batch continues
	SeverityWarning ErrorSeverity = "warning" // Continues with degraded output
)

// Sentinel errors for directive-level failures. They travel inside a
// BuildError with CategoryDirective and stay reachable through errors.Is.
var (
	ErrImageNotFound          = errors.New("image not found")
	ErrUnsupportedImageFormat = errors.New("unsupported image format")
	ErrGalleryData            = errors.New("invalid gallery data")
)

// BuildError is a structured error with category, severity, and context
type BuildError struct {
	Category ErrorCategory `json:"category"`
	Severity ErrorSeverity `json:"severity"`
	Message  string        `json:"message"`
	Cause    error         `json:"cause,omitempty"`
	Context  ContextFields `json:"context,omitempty"`
}

// ContextFields carries structured context for BuildError
type ContextFields map[string]any

// Error implements the error interface. Context fields are rendered in
// sorted key order so messages stay stable across runs.
func (e *BuildError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s): %s", e.Category, e.Severity, e.Message)
	if len(e.Context) > 0 {
		keys := make([]string, 0, len(e.Context))
		for k := range e.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteString(" [")
		for i, k := range keys {
			if i > 0 {
				b.WriteByte(' ')
			}
			fmt.Fprintf(&b, "%s=%v", k, e.Context[k])
		}
		b.WriteByte(']')
	}
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	return b.String()
}

// Unwrap implements error unwrapping for Go 1.13+ error handling
func (e *BuildError) Unwrap() error {
	return e.Cause
}

// WithContext adds context information to the error
func (e *BuildError) WithContext(key string, value any) *BuildError {
	if e.Context == nil {
		e.Context = make(ContextFields)
	}
	e.Context[key] = value
	return e
}

// New creates a new BuildError
func New(category ErrorCategory, severity ErrorSeverity, message string) *BuildError {
	return &BuildError{
		Category: category,
		Severity: severity,
		Message:  message,
	}
}

// Wrap creates a new BuildError that wraps an existing error
func Wrap(err error, category ErrorCategory, severity ErrorSeverity, message string) *BuildError {
	return &BuildError{
		Category: category,
		Severity: severity,
		Message:  message,
		Cause:    err,
	}
}

// IsCategory checks if an error belongs to a specific category
func IsCategory(err error, category ErrorCategory) bool {
	var be *BuildError
	if errors.As(err, &be) {
		return be.Category == category
	}
	return false
}

// IsFatal reports whether an error should abort the whole build rather
// than skip a single page.
func IsFatal(err error) bool {
	var be *BuildError
	if errors.As(err, &be) {
		return be.Severity == SeverityFatal
	}
	return false
}

// GetCategory extracts the category from an error, or returns CategoryInternal if not a BuildError
func GetCategory(err error) ErrorCategory {
	var be *BuildError
	if errors.As(err, &be) {
		return be.Category
	}
	return CategoryInternal
}
