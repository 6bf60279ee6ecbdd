// Package errors provides custom error types for the lotsync system.
// These errors enable better error handling, programmatic error checking,
// and improved debugging throughout the application.
package errors

import (
	"errors"
	"fmt"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Common sentinel errors for the lotsync system
var (
	// ErrNotFound indicates that a requested remote resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrTokenInvalid indicates that the auth token was rejected by the backend
	ErrTokenInvalid = errors.New("token invalid")

	// ErrCredentialsRequired indicates that backend credentials are missing
	ErrCredentialsRequired = errors.New("credentials required")

	// ErrRateLimited indicates that the backend rate limit has been exceeded
	ErrRateLimited = errors.New("rate limited")

	// ErrBackendUnavailable indicates the content backend is temporarily unavailable
	ErrBackendUnavailable = errors.New("backend unavailable")

	// ErrCanceled indicates that an operation was canceled
	ErrCanceled = errors.New("operation canceled")

	// ErrUnresolved indicates a taxonomy term could not be resolved
	ErrUnresolved = errors.New("term unresolved")
)

// RequestError represents a failed call to the content backend.
// It carries the endpoint, HTTP status code, and the raw response body.
type RequestError struct {
	Method     string
	Endpoint   string
	StatusCode int
	Body       string
	Err        error
}

// Error implements the error interface
func (e *RequestError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("request %s %s failed (status %d): %s", e.Method, e.Endpoint, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("request %s %s failed: %v", e.Method, e.Endpoint, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *RequestError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *RequestError) Is(target error) bool {
	if e.StatusCode == 429 {
		return target == ErrRateLimited
	}
	if e.StatusCode >= 500 {
		return target == ErrBackendUnavailable
	}
	return false
}

// NewRequestError creates a new RequestError
func NewRequestError(method, endpoint string, statusCode int, body string) *RequestError {
	return &RequestError{
		Method:     method,
		Endpoint:   endpoint,
		StatusCode: statusCode,
		Body:       body,
	}
}

// ResolutionError indicates a required taxonomy term could not be resolved
// to an identifier. It is fatal for the record being processed, not the run.
type ResolutionError struct {
	Taxonomy string
	Name     string
	Err      error
}

// Error implements the error interface
func (e *ResolutionError) Error() string {
	return fmt.Sprintf("cannot resolve term %q in taxonomy %q", e.Name, e.Taxonomy)
}

// Unwrap implements errors.Unwrap
func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *ResolutionError) Is(target error) bool {
	return target == ErrUnresolved
}

// NewResolutionError creates a new ResolutionError
func NewResolutionError(taxonomy, name string, err error) *ResolutionError {
	return &ResolutionError{Taxonomy: taxonomy, Name: name, Err: err}
}

// ValidationError represents a validation failure
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// AuthenticationError represents an authentication failure against the backend
type AuthenticationError struct {
	Endpoint string
	Message  string
	Err      error
}

// Error implements the error interface
func (e *AuthenticationError) Error() string {
	if e.Endpoint != "" {
		return fmt.Sprintf("authentication error at %s: %s", e.Endpoint, e.Message)
	}
	return fmt.Sprintf("authentication error: %s", e.Message)
}

// Unwrap implements errors.Unwrap
func (e *AuthenticationError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *AuthenticationError) Is(target error) bool {
	return target == ErrTokenInvalid || target == ErrCredentialsRequired
}

// NewAuthenticationError creates a new AuthenticationError
func NewAuthenticationError(endpoint, message string, err error) *AuthenticationError {
	return &AuthenticationError{Endpoint: endpoint, Message: message, Err: err}
}

// RunError represents an uncaught failure at the batch run level.
// It aborts the remaining batch and is reported to the notifier.
type RunError struct {
	RunID     string
	Processed int
	Err       error
}

// Error implements the error interface
func (e *RunError) Error() string {
	return fmt.Sprintf("run %s aborted after %d records: %v", e.RunID, e.Processed, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *RunError) Unwrap() error {
	return e.Err
}

// NewRunError creates a new RunError
func NewRunError(runID string, processed int, err error) *RunError {
	return &RunError{RunID: runID, Processed: processed, Err: err}
}

// NotFoundError represents an error when a remote resource is not found
type NotFoundError struct {
	Resource string
	ID       string
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %s not found", e.Resource, e.ID)
}

// Is implements errors.Is support
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// IOError represents an error during I/O operations
type IOError struct {
	Operation string // "read", "write", "create", "delete", "open", "close"
	Path      string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("IO error during %s of %s: %s", e.Operation, e.Path, e.Message)
	}
	return fmt.Sprintf("IO error during %s: %s", e.Operation, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *IOError) Unwrap() error {
	return e.Err
}

// NewIOError creates a new IOError
func NewIOError(operation, path string, err error) *IOError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &IOError{Operation: operation, Path: path, Message: message, Err: err}
}

// ParseError represents an error when parsing data formats
type ParseError struct {
	Format  string // "json", "yaml", "csv", etc.
	Source  string
	Message string
	Err     error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("parse error in %s from %s: %s", e.Format, e.Source, e.Message)
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError creates a new ParseError
func NewParseError(format, source, message string, err error) *ParseError {
	return &ParseError{Format: format, Source: source, Message: message, Err: err}
}

// Helper functions for error checking

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsTokenInvalid checks if an error indicates a rejected auth token
func IsTokenInvalid(err error) bool {
	return errors.Is(err, ErrTokenInvalid)
}

// IsRateLimited checks if an error is a rate limit error
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

// IsUnresolved checks if an error indicates an unresolvable term
func IsUnresolved(err error) bool {
	return errors.Is(err, ErrUnresolved)
}

// IsCanceled checks if an error is a cancellation error
func IsCanceled(err error) bool {
	return errors.Is(err, ErrCanceled)
}

// Helper wrapping functions for common patterns

// WrapValidation wraps an error as a ValidationError
func WrapValidation(field string, err error) error {
	if err == nil {
		return nil
	}
	return &ValidationError{Field: field, Message: err.Error()}
}

// WrapIO wraps an error as an IOError
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return NewIOError(operation, path, err)
}

// WrapParse wraps an error as a ParseError
func WrapParse(format, source string, err error) error {
	if err == nil {
		return nil
	}
	return NewParseError(format, source, err.Error(), err)
}

// WrapRequest wraps an error as a RequestError
func WrapRequest(method, endpoint string, err error) error {
	if err == nil {
		return nil
	}
	return &RequestError{Method: method, Endpoint: endpoint, Err: err}
}
