package api

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Error is the error type handlers return to control the response.
// It is rendered as a json object with http_status, error_code, message,
// and when present, the original error and a list of field errors.
type Error struct {
	HTTPStatus int
	ErrorCode  string
	Message    string
	Original   error
	// Errors are per-field problems, rendered under "errors".
	// Usually set for validation failures.
	Errors interface{}
}

func (e Error) Error() string {
	s := fmt.Sprintf("%s: [%d] %s", e.ErrorCode, e.HTTPStatus, e.Message)
	if e.Original != nil {
		s += " (Original: " + e.Original.Error() + ")"
	}
	return s
}

func (e Error) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		"http_status": e.HTTPStatus,
		"error_code":  e.ErrorCode,
		"message":     e.Message,
	}
	if e.Original != nil {
		m["original"] = e.Original.Error()
	}
	if e.Errors != nil {
		m["errors"] = e.Errors
	}
	return m
}

func (e Error) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.ToMap())
}

// WithMessage returns a copy of e using msg instead of the status text.
func (e Error) WithMessage(msg string) Error {
	e.Message = msg
	return e
}

// WithErrors returns a copy of e with the given field errors.
func (e Error) WithErrors(errs interface{}) Error {
	e.Errors = errs
	return e
}

func NewError(httpStatus int, errorCode string, original ...error) Error {
	e := Error{
		ErrorCode:  errorCode,
		HTTPStatus: httpStatus,
		Message:    http.StatusText(httpStatus),
	}
	if len(original) > 0 {
		e.Original = original[0]
	}
	return e
}

func NewInternalError(original ...error) Error {
	return NewError(500, "internal_error", original...)
}

// NewBadRequest is a 400 error with the given code and message.
func NewBadRequest(errorCode, msg string) Error {
	return NewError(http.StatusBadRequest, errorCode).WithMessage(msg)
}
