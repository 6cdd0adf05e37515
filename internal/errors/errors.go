// Package errors provides custom error types for the expensematch API.
// All service-layer errors should use AppError to ensure consistent,
// secure error responses that never leak internal details to clients.
package errors

import "net/http"

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// Authentication & authorization errors.
var (
	ErrUnauthorized       = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrInvalidCredentials = &AppError{Code: "INVALID_CREDENTIALS", Message: "Invalid email or password", StatusCode: http.StatusUnauthorized}
	ErrForbidden          = &AppError{Code: "FORBIDDEN", Message: "Access denied", StatusCode: http.StatusForbidden}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// User errors.
var (
	ErrUserNotFound   = &AppError{Code: "USER_NOT_FOUND", Message: "User not found", StatusCode: http.StatusNotFound}
	ErrDuplicateEmail = &AppError{Code: "DUPLICATE_EMAIL", Message: "A user with this email already exists", StatusCode: http.StatusConflict}
)

// Receipt & transaction errors.
var (
	ErrReceiptNotFound     = &AppError{Code: "RECEIPT_NOT_FOUND", Message: "Receipt not found", StatusCode: http.StatusNotFound}
	ErrTransactionNotFound = &AppError{Code: "TRANSACTION_NOT_FOUND", Message: "Transaction not found", StatusCode: http.StatusNotFound}
)

// Matching errors. InvalidState means the requested transition is not legal
// from the record's current state; Conflict means a write-time precondition
// no longer held (concurrent confirm/unmatch) and the caller may safely
// re-fetch and retry.
var (
	ErrMatchNotFound      = &AppError{Code: "MATCH_NOT_FOUND", Message: "Match not found", StatusCode: http.StatusNotFound}
	ErrMatchInvalidState  = &AppError{Code: "INVALID_STATE", Message: "Operation not allowed in the current match state", StatusCode: http.StatusConflict}
	ErrMatchConflict      = &AppError{Code: "CONFLICT", Message: "The record was modified concurrently; re-fetch and retry", StatusCode: http.StatusConflict}
	ErrReceiptNotReady    = &AppError{Code: "RECEIPT_NOT_READY", Message: "Receipt is not in a matchable status", StatusCode: http.StatusConflict}
	ErrTransactionMatched = &AppError{Code: "TRANSACTION_ALREADY_MATCHED", Message: "Transaction is no longer unmatched", StatusCode: http.StatusConflict}
)
