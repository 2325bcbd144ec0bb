// Package errors provides the error taxonomy shared by the remote client,
// the sync store and the local API. Every failure a caller can observe is an
// *AppError whose Kind tells the caller how the store reacted to it.
package errors

import (
	stderrors "errors"
	"net/http"
)

// Kind classifies a failure by how the store handles it.
type Kind string

const (
	// KindAuth means the credential was rejected. It forces a logout.
	KindAuth Kind = "auth"
	// KindTransport means the request never got a response (dial, timeout, read).
	KindTransport Kind = "transport"
	// KindRejected means the remote service answered with a non-auth error status.
	KindRejected Kind = "rejected"
	// KindInvalidInput means the input failed local validation and was never sent.
	KindInvalidInput Kind = "invalid_input"
	// KindNoSession means a mutation was attempted without an active session.
	KindNoSession Kind = "no_session"
	// KindInternal covers encode/decode bugs on our side.
	KindInternal Kind = "internal"
)

// AppError represents a structured application error with an error code,
// human-readable message, kind, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Kind       Kind   `json:"-"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Internal != nil {
		return e.Message + ": " + e.Internal.Error()
	}
	return e.Message
}

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Wrap creates a new AppError with the same code/message/kind/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		Kind:       sentinel.Kind,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		Kind:       sentinel.Kind,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// KindOf returns the Kind of the first AppError in err's chain.
// Errors that are not AppErrors are reported as KindInternal.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// FromStatus maps a non-2xx response status to the matching sentinel.
// detail, when non-empty, replaces the sentinel's message.
func FromStatus(status int, detail string) *AppError {
	var sentinel *AppError
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		sentinel = ErrUnauthorized
	case status == http.StatusNotFound:
		sentinel = ErrNotFound
	default:
		sentinel = ErrRejected
	}
	out := WithMessage(sentinel, sentinel.Message)
	if detail != "" {
		out.Message = detail
	}
	out.StatusCode = status
	return out
}

// Authentication errors.
var (
	ErrUnauthorized = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", Kind: KindAuth, StatusCode: http.StatusUnauthorized}
	ErrNoSession    = &AppError{Code: "NO_SESSION", Message: "Not logged in", Kind: KindNoSession, StatusCode: http.StatusUnauthorized}
)

// Remote service errors.
var (
	ErrTransport = &AppError{Code: "TRANSPORT_ERROR", Message: "Could not reach the budget service", Kind: KindTransport, StatusCode: http.StatusBadGateway}
	ErrRejected  = &AppError{Code: "REJECTED", Message: "Request rejected by the budget service", Kind: KindRejected, StatusCode: http.StatusBadGateway}
	ErrNotFound  = &AppError{Code: "NOT_FOUND", Message: "Resource not found", Kind: KindRejected, StatusCode: http.StatusNotFound}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", Kind: KindInvalidInput, StatusCode: http.StatusBadRequest}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", Kind: KindInternal, StatusCode: http.StatusInternalServerError}
)

// Local record errors.
var (
	ErrTransactionNotFound = &AppError{Code: "TRANSACTION_NOT_FOUND", Message: "Transaction not found", Kind: KindInvalidInput, StatusCode: http.StatusNotFound}
	ErrTransactionPending  = &AppError{Code: "TRANSACTION_PENDING", Message: "Transaction is still being saved", Kind: KindInvalidInput, StatusCode: http.StatusConflict}
	ErrHabitNotFound       = &AppError{Code: "HABIT_NOT_FOUND", Message: "Habit not found", Kind: KindInvalidInput, StatusCode: http.StatusNotFound}
)
