package apierror

import (
	"errors"
	"fmt"
	"net/http"
)

// Codes rendered in the failure envelope. Each maps to one error kind.
const (
	CodeBadRequest        = "BAD_REQUEST"
	CodeNotFound          = "NOT_FOUND"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeForbidden         = "FORBIDDEN"
	CodeConflict          = "CONFLICT"
	CodeDependencyFailure = "DEPENDENCY_FAILURE"
	CodeInternal          = "INTERNAL_ERROR"
)

type APIError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    string `json:"details,omitempty"`
	Field      string `json:"field,omitempty"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"`
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}

	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}

	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause so callers can still match sentinels
// while the client only ever sees Code and Message.
func (e *APIError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func New(code string, message string, details string, status int) *APIError {
	return &APIError{Code: code, Message: message, Details: details, HTTPStatus: status}
}

// Wrap attaches cause to a new APIError without exposing it in the response.
func Wrap(cause error, code string, message string, status int) *APIError {
	return &APIError{Code: code, Message: message, HTTPStatus: status, Err: cause}
}

func InvalidArgument(message string, field string) *APIError {
	return &APIError{Code: CodeBadRequest, Message: message, Field: field, HTTPStatus: http.StatusBadRequest}
}

func NotFound(message string, details string) *APIError {
	return New(CodeNotFound, message, details, http.StatusNotFound)
}

func Unauthorized(message string) *APIError {
	return New(CodeUnauthorized, message, "", http.StatusUnauthorized)
}

func Forbidden(message string) *APIError {
	return New(CodeForbidden, message, "", http.StatusForbidden)
}

func Conflict(message string, details string) *APIError {
	return New(CodeConflict, message, details, http.StatusConflict)
}

func DependencyFailure(message string, cause error) *APIError {
	return Wrap(cause, CodeDependencyFailure, message, http.StatusBadGateway)
}

// HasCode reports whether err is an APIError carrying code.
func HasCode(err error, code string) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Code == code
}
