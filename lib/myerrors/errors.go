package myerrors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type httpErrorCoder interface {
	error
	GetHTTPErrorCode() int
}

type httpError struct {
	httpCode int
	err      error
}

func (e httpError) Error() string {
	return fmt.Sprintf("status: %d, err: %s", e.httpCode, e.err.Error())
}

func (e httpError) Unwrap() error {
	return e.err
}

func (e httpError) GetHTTPErrorCode() int {
	return e.httpCode
}

func newError(httpCode int, err error) *httpError {
	return &httpError{
		httpCode: httpCode,
		err:      err,
	}
}

func NewInvalidInputError(err error) *httpError {
	return newError(http.StatusBadRequest, err)
}

func NewInvalidInputErrorf(format string, args ...interface{}) *httpError {
	return NewInvalidInputError(fmt.Errorf(format, args...))
}

func NewUnsupportedMediaTypeError(err error) *httpError {
	return newError(http.StatusUnsupportedMediaType, err)
}

func NewNotFoundError(err error) *httpError {
	return newError(http.StatusNotFound, err)
}

func NewAuthenticationError(err error) *httpError {
	return newError(http.StatusForbidden, err)
}

func NewInternalError(err error) *httpError {
	return newError(http.StatusInternalServerError, err)
}

func NewNotImplementedError(err error) *httpError {
	return newError(http.StatusNotImplemented, err)
}

func NewUnavailableError(err error) *httpError {
	return newError(http.StatusServiceUnavailable, err)
}

// GetHTTPStatus returns the status of the outermost http-aware error in the chain.
func GetHTTPStatus(err error) int {
	if err != nil {
		var myError httpErrorCoder
		if errors.As(err, &myError) {
			return myError.GetHTTPErrorCode()
		}
	}
	return http.StatusInternalServerError
}

// FieldError describes a single invalid or missing form field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// FieldErrors is a validation result: empty means valid.
type FieldErrors []FieldError

func (fe FieldErrors) Error() string {
	parts := make([]string, 0, len(fe))
	for _, e := range fe {
		parts = append(parts, fmt.Sprintf("%s: %s", e.Field, e.Message))
	}
	return fmt.Sprintf("status: %d, err: invalid fields: %s", http.StatusBadRequest, strings.Join(parts, ", "))
}

func (fe FieldErrors) GetHTTPErrorCode() int {
	return http.StatusBadRequest
}

// Required appends an error for field when value is blank.
func (fe FieldErrors) Required(field string, value string) FieldErrors {
	if strings.TrimSpace(value) == "" {
		return append(fe, FieldError{Field: field, Message: "is required"})
	}
	return fe
}

// AsError returns nil when there are no field errors, so callers can return it directly.
func (fe FieldErrors) AsError() error {
	if len(fe) == 0 {
		return nil
	}
	return fe
}
