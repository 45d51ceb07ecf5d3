package controllers

import (
	"errors"
	"net/http"

	"github.com/yeremiapane/restaurant-tables/services"
)

// statusFor maps service errors to HTTP status codes. Anything unknown,
// including *services.APIError, came from the remote table API.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrValidation),
		errors.Is(err, services.ErrUnknownFloor),
		errors.Is(err, services.ErrUnknownField),
		errors.Is(err, services.ErrNoSelection):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrOperationPending):
		return http.StatusConflict
	case errors.Is(err, services.ErrInstanceNotFound),
		errors.Is(err, services.ErrTableNotFound):
		return http.StatusNotFound
	default:
		return http.StatusBadGateway
	}
}
