// Package api holds the HTTP plumbing shared by the forecaster endpoints.
package api

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

var (
	// ErrInvalid is the inner error for errors that convert to a 400.
	ErrInvalid = errors.New("bad request")
	// ErrNotFound is the inner error for errors that convert to a 404.
	ErrNotFound = errors.New("not found")
)

// classifiedError carries a client-facing message and the category it converts to.
type classifiedError struct {
	msg  string
	kind error
}

func (e classifiedError) Error() string { return e.msg }

func (e classifiedError) Is(target error) bool { return target == e.kind }

// AsValidationError returns an error that wraps ErrInvalid, so that errors.Is can identify it.
func AsValidationError(msg string, args ...interface{}) error {
	return errors.WithStack(classifiedError{msg: fmt.Sprintf(msg, args...), kind: ErrInvalid})
}

// AsErrNotFound returns an error that wraps ErrNotFound, so that errors.Is can identify it.
func AsErrNotFound(msg string, args ...interface{}) error {
	return errors.WithStack(classifiedError{msg: fmt.Sprintf(msg, args...), kind: ErrNotFound})
}

// ErrorResponse is the body of every failed API request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// JSONErrorHandler sends a JSON response with a single "error" key containing the error message.
func JSONErrorHandler(err error, c echo.Context) {
	code, msg := classify(err)
	if code >= 500 {
		c.Logger().Error(fmt.Sprintf("%+v", err))
	}
	if c.Response().Committed {
		return
	}
	// For the HEAD method, the server MUST NOT return a message-body in the response.
	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.JSON(code, ErrorResponse{Error: msg})
	}
	if err != nil {
		c.Logger().Error(err)
	}
}

func classify(err error) (int, string) {
	var he *echo.HTTPError
	switch {
	case errors.Is(err, ErrInvalid):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound, err.Error()
	case errors.As(err, &he):
		return he.Code, fmt.Sprint(he.Message)
	default:
		return http.StatusInternalServerError, fmt.Sprintf("An error occurred: %s", err)
	}
}
