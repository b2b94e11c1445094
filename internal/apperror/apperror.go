// Package apperror holds the errors the HTTP layer knows how to turn into a
// client facing status code. Anything else is an internal error.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Error is an error carrying the HTTP status it should be reported with.
type Error struct {
	Status   int
	Message  string
	Messages []string
}

func (e *Error) Error() string {
	if len(e.Messages) > 0 {
		return e.Message + ": " + strings.Join(e.Messages, "; ")
	}
	return e.Message
}

// Body is the value rendered under the "message" key of an error response.
// Validation failures render the list of field messages.
func (e *Error) Body() interface{} {
	if len(e.Messages) > 0 {
		return e.Messages
	}
	return e.Message
}

// Response is the JSON error envelope written to the client.
func (e *Error) Response() map[string]interface{} {
	return map[string]interface{}{
		"error": map[string]interface{}{"message": e.Body(), "status": e.Status},
	}
}

// Internal is the error reported to clients for failures they cannot act on.
func Internal() *Error {
	return &Error{Status: http.StatusInternalServerError, Message: "Internal Server Error"}
}

func BadRequest(format string, args ...interface{}) *Error {
	return &Error{Status: http.StatusBadRequest, Message: fmt.Sprintf(format, args...)}
}

// Invalid is a BadRequest listing every validation failure.
func Invalid(messages []string) *Error {
	return &Error{Status: http.StatusBadRequest, Message: "Bad Request", Messages: messages}
}

func Unauthorized() *Error {
	return &Error{Status: http.StatusUnauthorized, Message: "Unauthorized"}
}

func NotFound(format string, args ...interface{}) *Error {
	return &Error{Status: http.StatusNotFound, Message: fmt.Sprintf(format, args...)}
}

// From finds the first *Error in err's chain.
func From(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsStatus reports whether err wraps an *Error with the given status.
func IsStatus(err error, status int) bool {
	e, ok := From(err)
	return ok && e.Status == status
}
