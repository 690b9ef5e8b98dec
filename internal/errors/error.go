package errors

import (
	stderrors "errors"
	"fmt"
)

// Category represents the type of error.
type Category string

const (
	CategoryRoute      Category = "route"
	CategoryNavigation Category = "navigation"
	CategoryView       Category = "view"
	CategoryConfig     Category = "config"
	CategoryCLI        Category = "cli"
)

// FractalsError is a structured error with a code, suggestion and documentation link.
type FractalsError struct {
	// Code is a unique error identifier (e.g., "R001").
	Code string

	// Category is the error type (route, navigation, etc.).
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// DocURL is a link to documentation about this error.
	DocURL string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *FractalsError) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *FractalsError) Unwrap() error {
	return e.Wrapped
}

// Is reports whether target is a FractalsError with the same code.
func (e *FractalsError) Is(target error) bool {
	t, ok := target.(*FractalsError)
	if !ok || t.Code == "" {
		return false
	}
	return t.Code == e.Code
}

// WithSuggestion adds a fix suggestion to the error.
func (e *FractalsError) WithSuggestion(s string) *FractalsError {
	e.Suggestion = s
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *FractalsError) WithDetail(d string) *FractalsError {
	e.Detail = d
	return e
}

// WithDetailf adds a formatted detail to the error.
func (e *FractalsError) WithDetailf(format string, args ...any) *FractalsError {
	e.Detail = fmt.Sprintf(format, args...)
	return e
}

// Wrap wraps another error.
func (e *FractalsError) Wrap(err error) *FractalsError {
	e.Wrapped = err
	return e
}

// New creates a FractalsError from a registered error code.
func New(code string) *FractalsError {
	template, ok := GetTemplate(code)
	if !ok {
		return &FractalsError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &FractalsError{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		DocURL:   template.DocURL,
	}
}

// Newf creates a new FractalsError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *FractalsError {
	return &FractalsError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in a FractalsError.
func FromError(err error, code string) *FractalsError {
	if err == nil {
		return nil
	}
	var fe *FractalsError
	if stderrors.As(err, &fe) {
		return fe
	}
	return New(code).Wrap(err)
}

// Code returns the code of the first FractalsError in err's chain, or "".
func Code(err error) string {
	var fe *FractalsError
	if stderrors.As(err, &fe) {
		return fe.Code
	}
	return ""
}
