// Package errors provides standardized error handling for the prediction service.
package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeArtifactNotFound ErrorCode = "ARTIFACT_NOT_FOUND"
	ErrCodeModelNotLoaded   ErrorCode = "MODEL_NOT_LOADED"
	ErrCodeSchemaInvalid    ErrorCode = "SCHEMA_INVALID"
	ErrCodeDomainInvalid    ErrorCode = "DOMAIN_INVALID"
	ErrCodeShapeInvalid     ErrorCode = "INPUT_SHAPE_INVALID"
	ErrCodeRequestInvalid   ErrorCode = "REQUEST_INVALID"
	ErrCodeHubRequestFailed ErrorCode = "HUB_REQUEST_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode `json:"code"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Fields    []string  `json:"fields,omitempty"`
	Retryable bool      `json:"retryable"`
	Timestamp time.Time `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// CodeOf extracts the error code from err, or "" if err is not a StandardError.
func CodeOf(err error) ErrorCode {
	var se *StandardError
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}

// IsCode reports whether err carries the given error code.
func IsCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}

// AsStandard unwraps err into a StandardError if it is one.
func AsStandard(err error, target **StandardError) bool {
	return errors.As(err, target)
}

// NewRequestInvalidError signals an HTTP request body that fails the wire
// schema before it reaches the predictor.
func NewRequestInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeRequestInvalid,
		Message:   "request body does not match the expected schema",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewArtifactNotFoundError signals that a model or pipeline artifact path
// does not resolve to a readable file.
func NewArtifactNotFoundError(path string) *StandardError {
	return &StandardError{
		Code:      ErrCodeArtifactNotFound,
		Message:   fmt.Sprintf("artifact file not found: %s", path),
		Details:   fmt.Sprintf("path: %s", path),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewModelNotLoadedError signals a prediction attempt before Load succeeded.
func NewModelNotLoadedError() *StandardError {
	return &StandardError{
		Code:      ErrCodeModelNotLoaded,
		Message:   "model not loaded, call Load first",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSchemaError enumerates every required feature missing from the input.
func NewSchemaError(missing []string) *StandardError {
	sorted := append([]string(nil), missing...)
	sort.Strings(sorted)
	return &StandardError{
		Code:      ErrCodeSchemaInvalid,
		Message:   fmt.Sprintf("missing required features: %s", strings.Join(sorted, ", ")),
		Fields:    sorted,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDomainError enumerates every categorical value outside the allowed set.
func NewDomainError(column string, invalid, allowed []string) *StandardError {
	sorted := append([]string(nil), invalid...)
	sort.Strings(sorted)
	return &StandardError{
		Code: ErrCodeDomainInvalid,
		Message: fmt.Sprintf("invalid %s values: %s, valid values are: %s",
			column, strings.Join(sorted, ", "), strings.Join(allowed, ", ")),
		Fields:    sorted,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewShapeError signals input that is neither a record, a record batch, nor a frame.
func NewShapeError(got interface{}) *StandardError {
	return &StandardError{
		Code:      ErrCodeShapeInvalid,
		Message:   "input must be a record, a slice of records, or a frame",
		Details:   fmt.Sprintf("got: %T", got),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewHubRequestFailedError wraps a non-success response from the model hub.
func NewHubRequestFailedError(status int, body string) *StandardError {
	return &StandardError{
		Code:      ErrCodeHubRequestFailed,
		Message:   fmt.Sprintf("hub request failed with status %d", status),
		Details:   body,
		Retryable: status >= 500,
		Timestamp: time.Now().UTC(),
	}
}
