package server

import (
	"errors"
	"fmt"
)

type Error struct {
	orig error
	msg  string
	code error
}

func (e *Error) Error() string {
	return e.msg
}

func (e *Error) Unwrap() error {
	return e.orig
}

func WrapErrorf(orig error, code error, format string, a ...interface{}) error {
	return &Error{
		code: code,
		orig: orig,
		msg:  fmt.Sprintf(format, a...),
	}
}

func (e *Error) Code() error {
	return e.code
}

var (
	// ErrInternalServerError will throw if any the Internal Server Error happen
	ErrInternalServerError = errors.New("internal Server Error")
	// ErrNotFound will throw if the requested item is not exists
	ErrNotFound = errors.New("your requested Item is not found")
	// ErrBadParamInput will throw if the given request-body or params is not valid
	ErrBadParamInput = errors.New("given Param is not valid")
	// ErrUnprocessable will throw if the request is valid but cannot be served (e.g. no route between two points)
	ErrUnprocessable = errors.New("request cannot be processed")
	// ErrTimeout will throw if the work did not finish within its budget
	ErrTimeout = errors.New("request timed out")
	// ErrUnavailable will throw if the service is not ready yet (e.g. road network not loaded)
	ErrUnavailable = errors.New("service unavailable")
)

var MessageInternalServerError string = "internal server error"
