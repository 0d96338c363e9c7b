package controllers

import (
	"errors"
	"net/http"

	"github.com/shashiranjanraj/supplydesk/app/models"
	"github.com/shashiranjanraj/supplydesk/app/services"
	"github.com/shashiranjanraj/supplydesk/pkg/ctx"
	"github.com/shashiranjanraj/supplydesk/pkg/logger"
	"github.com/shashiranjanraj/supplydesk/pkg/notification"
)

// statusFor maps the domain error taxonomy to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrInvalidEmail),
		errors.Is(err, models.ErrInvalidName),
		errors.Is(err, models.ErrInvalidStatus),
		errors.Is(err, models.ErrInvalidInput):
		return http.StatusUnprocessableEntity
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, services.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, notification.ErrDelivery):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// fail writes err as a JSON error. Storage and unknown errors are logged
// and reported without their cause.
func fail(c *ctx.Context, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		logger.WithCtx(c.Context()).Error("request failed", "path", c.R.URL.Path, "error", err)
		c.Error(code, "Internal Server Error")
		return
	}
	c.Error(code, err.Error())
}
