package http

import (
	"fmt"
	"net/http"
)

// errorCodes maps the statuses the API reports to stable error codes.
var errorCodes = map[int]string{
	http.StatusBadRequest:          "ERR_BAD_REQUEST",
	http.StatusNotFound:            "ERR_NOT_FOUND",
	http.StatusTooManyRequests:     "ERR_RATE_LIMITED",
	http.StatusInternalServerError: "ERR_INTERNAL",
	http.StatusServiceUnavailable:  "ERR_UNAVAILABLE",
}

// AppError is an error whose message is safe to show to API clients. The
// wrapped Err is only logged.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// WithError wraps an underlying error.
func (e *AppError) WithError(err error) *AppError {
	e.Err = err
	return e
}

// NewAppError creates an error for status; the code follows the status.
func NewAppError(status int, message string) *AppError {
	code, ok := errorCodes[status]
	if !ok {
		code = fmt.Sprintf("ERR_HTTP_%d", status)
	}
	return &AppError{Code: code, Message: message, Status: status}
}

func NotFoundError(message string) *AppError {
	return NewAppError(http.StatusNotFound, message)
}

func BadRequestError(message string) *AppError {
	return NewAppError(http.StatusBadRequest, message)
}

func TooManyRequestsError(message string) *AppError {
	return NewAppError(http.StatusTooManyRequests, message)
}

func InternalError(message string) *AppError {
	return NewAppError(http.StatusInternalServerError, message)
}
