package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Kind groups errors by where they came from.
type Kind string

const (
	KindConfiguration  Kind = "configuration"
	KindUpstream       Kind = "upstream"
	KindAuthentication Kind = "authentication"
	KindValidation     Kind = "validation"
	KindInternal       Kind = "internal"
)

// Error represents an application error
type Error struct {
	Code    int    `json:"code"`
	Kind    Kind   `json:"kind"`
	Reason  string `json:"reason,omitempty"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error of the same kind and reason. An empty reason on
// the target matches any reason of that kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Reason == "" || t.Reason == e.Reason
}

// JSON returns the error as a JSON string
func (e *Error) JSON() string {
	b, _ := json.Marshal(e)
	return string(b)
}

// New creates a new Error
func New(code int, message string, err error) *Error {
	return &Error{
		Code:    code,
		Kind:    KindInternal,
		Message: message,
		Err:     err,
	}
}

// NewConfigurationError reports an operation attempted before credentials or
// the client are available.
func NewConfigurationError(message string, err error) *Error {
	return &Error{
		Code:    http.StatusInternalServerError,
		Kind:    KindConfiguration,
		Message: message,
		Err:     err,
	}
}

// NewUpstreamError wraps a failure surfaced by the payment SDK. The status
// defaults to 502 when the upstream did not provide one.
func NewUpstreamError(status int, reason, message string, err error) *Error {
	if status == 0 {
		status = http.StatusBadGateway
	}
	return &Error{
		Code:    status,
		Kind:    KindUpstream,
		Reason:  reason,
		Message: message,
		Err:     err,
	}
}

// NewAuthenticationError reports a rejected inbound request.
func NewAuthenticationError(reason, message string, err error) *Error {
	return &Error{
		Code:    http.StatusBadRequest,
		Kind:    KindAuthentication,
		Reason:  reason,
		Message: message,
		Err:     err,
	}
}

// NewValidationError reports an invalid argument.
func NewValidationError(field, message string) *Error {
	return &Error{
		Code:    http.StatusBadRequest,
		Kind:    KindValidation,
		Reason:  field,
		Message: message,
	}
}

// IsKind reports whether any error in err's chain is an *Error of kind k.
func IsKind(err error, k Kind) bool {
	var appErr *Error
	if !stderrors.As(err, &appErr) {
		return false
	}
	return appErr.Kind == k
}

// As is a shorthand for errors.As on *Error.
func As(err error) (*Error, bool) {
	var appErr *Error
	ok := stderrors.As(err, &appErr)
	return appErr, ok
}

// Common error types
var (
	ErrBadRequest         = New(http.StatusBadRequest, "Bad request", nil)
	ErrUnauthorized       = New(http.StatusUnauthorized, "Unauthorized", nil)
	ErrNotFound           = New(http.StatusNotFound, "Not found", nil)
	ErrInternalServer     = New(http.StatusInternalServerError, "Internal server error", nil)
	ErrServiceUnavailable = New(http.StatusServiceUnavailable, "Service unavailable", nil)
)

// Kind sentinels for errors.Is checks.
var (
	ErrConfiguration  = &Error{Kind: KindConfiguration}
	ErrUpstream       = &Error{Kind: KindUpstream}
	ErrAuthentication = &Error{Kind: KindAuthentication}
	ErrValidation     = &Error{Kind: KindValidation}
)

// toAppError never mutates the shared sentinels.
func toAppError(err error) *Error {
	if appErr, ok := As(err); ok {
		return appErr
	}
	return New(http.StatusInternalServerError, ErrInternalServer.Message, err)
}

// HandleError writes err as a JSON response.
func HandleError(w http.ResponseWriter, err error) {
	appErr := toAppError(err)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.Code)
	w.Write([]byte(appErr.JSON()))
}

// Error middleware for Gin
func ErrorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			appErr := toAppError(c.Errors.Last().Err)
			c.JSON(appErr.Code, gin.H{"error": appErr.Message, "kind": appErr.Kind, "reason": appErr.Reason})
			c.Abort()
		}
	}
}
