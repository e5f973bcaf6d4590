package transport

import (
	"errors"
	"fmt"
	"net/http"

	"adminconsole/internal/platform/models"
)

// Error is a failed call in the backend's error shape. Status is 0 when the
// request never produced an HTTP response.
type Error struct {
	Status int              `json:"status"`
	Data   models.ErrorBody `json:"data"`

	cause error
}

func (e *Error) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("network error: %s", e.Data.Message)
	}
	return fmt.Sprintf("backend returned %d: %s", e.Status, e.Data.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// AsError extracts a transport error from err.
func AsError(err error) (*Error, bool) {
	var te *Error
	if errors.As(err, &te) {
		return te, true
	}
	return nil, false
}

// StatusOf returns the HTTP status carried by err, 0 for network failures and
// 500 for anything that is not a transport error.
func StatusOf(err error) int {
	if te, ok := AsError(err); ok {
		return te.Status
	}
	return http.StatusInternalServerError
}

func newError(status int, message string, cause error) *Error {
	return &Error{
		Status: status,
		Data:   models.ErrorBody{Success: false, Message: message},
		cause:  cause,
	}
}
