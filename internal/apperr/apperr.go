// Package apperr defines the client-facing error taxonomy. Validation and
// business-rule failures resolve to one of these codes; only store
// connectivity problems surface as opaque internal errors.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies an error for HTTP mapping and client reconciliation.
type Code string

const (
	CodeNotFound           Code = "NotFound"
	CodeDuplicateAction    Code = "DuplicateAction"
	CodeInvalidEnumValue   Code = "InvalidEnumValue"
	CodeNoUndoAvailable    Code = "NoUndoAvailable"
	CodeInvalidPhoneFormat Code = "InvalidPhoneFormat"
	CodeInternal           Code = "Internal"
)

// Error is a structured application error. DuplicateAction errors carry the
// existing actor phones so the client can reconcile without a follow-up read.
type Error struct {
	Code            Code
	Message         string
	ReportedNumbers []string `json:"reportedNumbers,omitempty"`
	Err             error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// NotFound reports a missing listing, entry or notification.
func NotFound(format string, args ...interface{}) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// Duplicate reports an idempotence violation; existing carries the phones
// already present in the engagement log.
func Duplicate(message string, existing []string) *Error {
	return &Error{Code: CodeDuplicateAction, Message: message, ReportedNumbers: existing}
}

// InvalidEnum reports a reason code outside its fixed enum.
func InvalidEnum(field, value string) *Error {
	return &Error{Code: CodeInvalidEnumValue, Message: fmt.Sprintf("invalid %s: %q", field, value)}
}

// NoUndo reports an undo attempt with no previous status captured.
func NoUndo(ppcID int64) *Error {
	return &Error{Code: CodeNoUndoAvailable, Message: fmt.Sprintf("listing %d has nothing to undo", ppcID)}
}

// InvalidPhoneFormat reports a phone number with fewer than 10 digits.
func InvalidPhoneFormat(raw string) *Error {
	return &Error{Code: CodeInvalidPhoneFormat, Message: fmt.Sprintf("phone number %q is not a valid 10-digit number", raw)}
}

// Internal wraps a store or infrastructure failure.
func Internal(err error) *Error {
	return &Error{Code: CodeInternal, Message: "internal error", Err: err}
}

// From extracts an *Error from err, wrapping unknown errors as internal.
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}

// HTTPStatus maps an error to its HTTP response status.
func HTTPStatus(err error) int {
	switch From(err).Code {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeDuplicateAction, CodeInvalidEnumValue, CodeNoUndoAvailable, CodeInvalidPhoneFormat:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
