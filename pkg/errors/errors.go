// Package errors provides custom error types for the cellmap system.
// These errors enable better error handling, programmatic error checking,
// and improved debugging throughout the application.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Join aggregates multiple errors into one.
// It's an alias for the standard library errors.Join for convenience.
var Join = errors.Join

// Is reports whether any error in err's tree matches target.
// It's an alias for the standard library errors.Is for convenience.
var Is = errors.Is

// Common sentinel errors for the cellmap system
var (
	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates that a resource already exists
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrMalformedInput indicates that an input file violates its format
	// and no partial result may be used
	ErrMalformedInput = errors.New("malformed input")

	// ErrMissingField indicates that an expected field is absent from a record
	ErrMissingField = errors.New("missing field")

	// ErrUnresolvedReference indicates a cross-reference that does not
	// resolve against the referenced collection
	ErrUnresolvedReference = errors.New("unresolved cross-reference")

	// ErrAmbiguousMatch indicates that a label matched more than one record
	ErrAmbiguousMatch = errors.New("ambiguous match")

	// ErrUnmatchedLabel indicates that a label matched no record at all
	ErrUnmatchedLabel = errors.New("unmatched label")

	// ErrInsufficientSource indicates that a required source is absent or unreadable
	ErrInsufficientSource = errors.New("insufficient source")

	// ErrTimeout indicates that an operation timed out
	ErrTimeout = errors.New("operation timed out")

	// ErrCanceled indicates that an operation was canceled
	ErrCanceled = errors.New("operation canceled")
)

// ParseError represents a format violation in an input file. Consumers must
// treat it as fatal for that file: no partial output may be derived from it.
type ParseError struct {
	Format  string // "obo", "cellosaurus", "tsv", "csv", "yaml"
	File    string
	Line    int
	Message string
	Err     error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.File != "" && e.Line > 0 {
		return fmt.Sprintf("parse error in %s file %s:%d: %s", e.Format, e.File, e.Line, e.Message)
	}
	if e.File != "" {
		return fmt.Sprintf("parse error in %s file %s: %s", e.Format, e.File, e.Message)
	}
	if e.Line > 0 {
		return fmt.Sprintf("%s parse error at line %d: %s", e.Format, e.Line, e.Message)
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ParseError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *ParseError) Is(target error) bool {
	return target == ErrMalformedInput
}

// NewParseError creates a new ParseError
func NewParseError(format, file string, line int, message string) *ParseError {
	return &ParseError{
		Format:  format,
		File:    file,
		Line:    line,
		Message: message,
	}
}

// MissingFieldError reports a record that lacks an expected field. It is
// recoverable: the consumer substitutes the missing-value sentinel or skips
// the record, depending on the field.
type MissingFieldError struct {
	Record string // identifier of the record, e.g. an accession
	Field  string
}

// Error implements the error interface
func (e *MissingFieldError) Error() string {
	if e.Record != "" {
		return fmt.Sprintf("record %s: missing field %s", e.Record, e.Field)
	}
	return fmt.Sprintf("missing field %s", e.Field)
}

// Is implements errors.Is support
func (e *MissingFieldError) Is(target error) bool {
	return target == ErrMissingField
}

// NewMissingFieldError creates a new MissingFieldError
func NewMissingFieldError(record, field string) *MissingFieldError {
	return &MissingFieldError{Record: record, Field: field}
}

// ReferenceError reports a cross-reference pointing at an identifier the
// referenced collection does not contain.
type ReferenceError struct {
	Collection string // "bto", "cl", ...
	ID         string // the dangling identifier
	Record     string // record carrying the reference
}

// Error implements the error interface
func (e *ReferenceError) Error() string {
	if e.Record != "" {
		return fmt.Sprintf("record %s: reference %s not found in %s", e.Record, e.ID, e.Collection)
	}
	return fmt.Sprintf("reference %s not found in %s", e.ID, e.Collection)
}

// Is implements errors.Is support
func (e *ReferenceError) Is(target error) bool {
	return target == ErrUnresolvedReference
}

// NewReferenceError creates a new ReferenceError
func NewReferenceError(collection, id, record string) *ReferenceError {
	return &ReferenceError{Collection: collection, ID: id, Record: record}
}

// AmbiguousMatchError reports a label that satisfied a match rule against
// more than one registry record. Candidates holds the competing codes and
// Chosen the deterministic winner.
type AmbiguousMatchError struct {
	Label      string
	Rule       string
	Candidates []string
	Chosen     string
}

// Error implements the error interface
func (e *AmbiguousMatchError) Error() string {
	return fmt.Sprintf("label %q matched %d records via %s (%s), chose %s",
		e.Label, len(e.Candidates), e.Rule, strings.Join(e.Candidates, ", "), e.Chosen)
}

// Is implements errors.Is support
func (e *AmbiguousMatchError) Is(target error) bool {
	return target == ErrAmbiguousMatch
}

// NewAmbiguousMatchError creates a new AmbiguousMatchError
func NewAmbiguousMatchError(label, rule string, candidates []string, chosen string) *AmbiguousMatchError {
	return &AmbiguousMatchError{Label: label, Rule: rule, Candidates: candidates, Chosen: chosen}
}

// UnmatchedLabelError reports a label no match rule could place.
type UnmatchedLabelError struct {
	Label string
}

// Error implements the error interface
func (e *UnmatchedLabelError) Error() string {
	return fmt.Sprintf("label %q matched no registry record", e.Label)
}

// Is implements errors.Is support
func (e *UnmatchedLabelError) Is(target error) bool {
	return target == ErrUnmatchedLabel
}

// NewUnmatchedLabelError creates a new UnmatchedLabelError
func NewUnmatchedLabelError(label string) *UnmatchedLabelError {
	return &UnmatchedLabelError{Label: label}
}

// SourceError represents a source that could not be loaded at all, as
// opposed to one that loaded with recoverable record-level problems.
type SourceError struct {
	Source  string
	Path    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *SourceError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("source %s (%s): %s", e.Source, e.Path, e.Message)
	}
	return fmt.Sprintf("source %s: %s", e.Source, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *SourceError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *SourceError) Is(target error) bool {
	return target == ErrInsufficientSource
}

// NewSourceError creates a new SourceError
func NewSourceError(source, path, message string, err error) *SourceError {
	return &SourceError{Source: source, Path: path, Message: message, Err: err}
}

// NotFoundError represents an error when a resource is not found
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

// ConfigError represents a configuration error
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError
func NewConfigError(component, message string, err error) *ConfigError {
	return &ConfigError{
		Component: component,
		Message:   message,
		Err:       err,
	}
}

// IOError represents an error during I/O operations
type IOError struct {
	Operation string // "read", "write", "create", "rename"
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
	return &IOError{
		Operation: operation,
		Path:      path,
		Message:   message,
		Err:       err,
	}
}

// Helper functions for error checking

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsMalformedInput checks if an error is fatal for its input file
func IsMalformedInput(err error) bool {
	return errors.Is(err, ErrMalformedInput)
}

// IsMissingField checks if an error reports an absent record field
func IsMissingField(err error) bool {
	return errors.Is(err, ErrMissingField)
}

// IsUnresolvedReference checks if an error reports a dangling cross-reference
func IsUnresolvedReference(err error) bool {
	return errors.Is(err, ErrUnresolvedReference)
}

// IsAmbiguousMatch checks if an error reports a multi-record match
func IsAmbiguousMatch(err error) bool {
	return errors.Is(err, ErrAmbiguousMatch)
}

// IsUnmatchedLabel checks if an error reports a label with no match
func IsUnmatchedLabel(err error) bool {
	return errors.Is(err, ErrUnmatchedLabel)
}

// IsInsufficientSource checks if an error reports an unusable source
func IsInsufficientSource(err error) bool {
	return errors.Is(err, ErrInsufficientSource)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsCanceled checks if an error is a cancellation error
func IsCanceled(err error) bool {
	return errors.Is(err, ErrCanceled)
}

// Helper wrapping functions for common patterns

// WrapParse wraps an error as a ParseError
func WrapParse(format, file string, err error) error {
	if err == nil {
		return nil
	}
	return &ParseError{Format: format, File: file, Message: err.Error(), Err: err}
}

// WrapIO wraps an error as an IOError
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return NewIOError(operation, path, err)
}

// WrapValidation wraps an error as a ValidationError
func WrapValidation(field string, err error) error {
	if err == nil {
		return nil
	}
	return &ValidationError{Field: field, Message: err.Error()}
}

// WrapSource wraps an error as a SourceError
func WrapSource(source, path string, err error) error {
	if err == nil {
		return nil
	}
	return &SourceError{Source: source, Path: path, Message: err.Error(), Err: err}
}
