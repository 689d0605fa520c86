package http

import (
	"errors"
	"net/http"

	"radiology/internal/core/application/usecases/commands"
	"radiology/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// errMalformedRequest marks path and query parameters that could not be parsed.
var errMalformedRequest = errors.New("malformed request")

// statusFor maps a use case error to an HTTP status code. Forbidden and
// conflict are checked first because their errors also carry a cause that may
// belong to another class.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errMalformedRequest):
		return http.StatusBadRequest
	case errors.Is(err, commands.ErrWorklistSyncFailed):
		return http.StatusBadGateway
	case errors.Is(err, errs.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, errs.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, errs.ErrObjectNotFound):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrValueIsRequired), errors.Is(err, errs.ErrValueIsOutOfRange):
		return http.StatusBadRequest
	case errors.Is(err, errs.ErrValueIsInvalid):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c echo.Context, err error) error {
	code := statusFor(err)
	message := err.Error()
	if code == http.StatusInternalServerError {
		c.Logger().Error(err)
		message = http.StatusText(code)
	}
	return c.JSON(code, Error{Code: code, Message: message})
}

func badRequest(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, Error{Code: http.StatusBadRequest, Message: message})
}
