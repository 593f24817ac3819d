package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/user-identity-service/internal/logging"
	"github.com/iliyamo/user-identity-service/internal/service"
)

// writeError translates a service error into the HTTP response.  Internal
// details never reach the client; anything unrecognized is logged with the
// request context and becomes a generic 500.
func writeError(c echo.Context, log *logging.Logger, err error) error {
	var ve *service.ValidationError
	var ce *service.ConflictError
	var ae *service.AuthError
	var nfe *service.NotFoundError
	switch {
	case errors.As(err, &ve):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": ve.Message})
	case errors.As(err, &ce):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": ce.Message})
	case errors.As(err, &ae):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": ae.Message})
	case errors.As(err, &nfe):
		return c.JSON(http.StatusNotFound, echo.Map{"error": nfe.Message})
	default:
		log.Error("request failed",
			"method", c.Request().Method,
			"path", c.Request().URL.Path,
			"err", err.Error())
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}
}
