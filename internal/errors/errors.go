// Package errors defines the application error type and the containment
// scopes used across the report pipeline. Failures are classified by the
// smallest scope that can absorb them: a bad cell becomes a null, a bad
// column reverts to its original type, a failed section falls back to
// deterministic wording, a missing resource moves to the next tier, and
// only a final-output write failure is fatal to a report.
package errors

import (
	"errors"
	"fmt"
)

// ErrorType identifies the subsystem an error originated in.
type ErrorType string

const (
	ErrTypeParsing  ErrorType = "PARSING"
	ErrTypeCoercion ErrorType = "COERCION"
	ErrTypeAnalysis ErrorType = "ANALYSIS"
	ErrTypeFont     ErrorType = "FONT"
	ErrTypeLayout   ErrorType = "LAYOUT"
	ErrTypeOutput   ErrorType = "OUTPUT"
	ErrTypeConfig   ErrorType = "CONFIG"
)

// Scope is the containment level of an error. Errors never propagate past
// their scope unless the scope is ScopeFatal.
type Scope int

const (
	// ScopeValue covers a single cell; the cell becomes null.
	ScopeValue Scope = iota
	// ScopeColumn covers a bulk conversion; the column reverts unchanged.
	ScopeColumn
	// ScopeSection covers one report section; fallback text is substituted.
	ScopeSection
	// ScopeResource covers a font tier or chart file; the next tier is tried.
	ScopeResource
	// ScopeFatal covers the final output write; surfaced to the caller.
	ScopeFatal
)

// String returns the scope name used in logs.
func (s Scope) String() string {
	switch s {
	case ScopeValue:
		return "value"
	case ScopeColumn:
		return "column"
	case ScopeSection:
		return "section"
	case ScopeResource:
		return "resource"
	case ScopeFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// AppError is the application-specific error carrying type, scope, and
// structured context.
type AppError struct {
	Type    ErrorType
	Scope   Scope
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s/%s] %s: %v", e.Type, e.Scope, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s/%s] %s", e.Type, e.Scope, e.Message)
}

// Unwrap allows errors.Is and errors.As to reach the cause.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext attaches a key/value pair for logging.
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// New creates an AppError with the given classification.
func New(errType ErrorType, scope Scope, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Scope:   scope,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// Fatal creates an output-write error, the only class that fails a report.
func Fatal(message string, cause error) *AppError {
	return New(ErrTypeOutput, ScopeFatal, message, cause)
}

// IsFatal reports whether err (or anything it wraps) is fatal-scoped.
func IsFatal(err error) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Scope == ScopeFatal
	}
	return false
}

// ScopeOf returns the containment scope of err. Errors that are not
// AppErrors are treated as section-scoped: unexpected, but recoverable by
// the guaranteed-section protocol.
func ScopeOf(err error) Scope {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Scope
	}
	return ScopeSection
}
