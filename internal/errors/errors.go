package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is the project-wide error carrying a status-like code and an optional cause.
type Error struct {
	Message string `json:"message"`
	Cause   error  `json:"-"`
	Code    int    `json:"-"`
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Cause)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// WithCause returns a copy of e wrapping cause.
func (e *Error) WithCause(cause error) *Error {
	cp := *e
	cp.Cause = cause
	return &cp
}

func New(cause error, code int, message string) *Error {
	return &Error{Message: message, Cause: cause, Code: code}
}

func Newf(cause error, code int, format string, args ...any) *Error {
	return &Error{Message: fmt.Sprintf(format, args...), Cause: cause, Code: code}
}

// Wrap annotates err with message. A nil err stays nil.
func Wrap(err error, message string, code int) error {
	if err == nil {
		return nil
	}
	return &Error{Message: message, Cause: err, Code: code}
}

func Is(err, target error) bool { return errors.Is(err, target) }

func As(err error, target any) bool { return errors.As(err, target) }

// Code returns the code of the outermost *Error in err's chain, or 500.
func Code(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return http.StatusInternalServerError
}

func InvalidArg(arg string) error {
	return Newf(nil, http.StatusBadRequest, "invalid argument: %s", arg)
}

func ErrFileNotFound(path string) error {
	return Newf(nil, http.StatusNotFound, "file not found: %s", path)
}

func OpenDBFailed(path string, cause error) error {
	return Newf(cause, http.StatusInternalServerError, "open db failed: %s", path)
}

func QueryFailed(query string, cause error) error {
	return Newf(cause, http.StatusInternalServerError, "query failed: %s", query)
}

func ReadFileFailed(path string, cause error) error {
	return Newf(cause, http.StatusInternalServerError, "read file failed: %s", path)
}

func WriteFileFailed(path string, cause error) error {
	return Newf(cause, http.StatusInternalServerError, "write file failed: %s", path)
}

func InvalidRecord(kind string, index int, reason string) error {
	return Newf(nil, http.StatusUnprocessableEntity, "invalid %s record #%d: %s", kind, index, reason)
}

func HTTPRequestFailed(url string, cause error) error {
	return Newf(cause, http.StatusBadGateway, "request failed: %s", url)
}

var ErrDBFileNotFound = New(nil, http.StatusNotFound, "db file not found")

func DBFileNotFound(group string) error {
	return Newf(ErrDBFileNotFound, http.StatusNotFound, "no files for %s", group)
}
