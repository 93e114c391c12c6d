package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"realtime-chat/internal/service"
)

// HandleServiceError maps business errors to HTTP status codes. Anything
// unrecognized is logged and reported as a 500.
func HandleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		ErrorResponse(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrAuthenticationFailed):
		ErrorResponse(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrRegistrationFailed):
		ErrorResponse(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrAccessDenied), errors.Is(err, service.ErrForbidden):
		ErrorResponse(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrRoomArchived):
		ErrorResponse(c, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrRoomNotFound),
		errors.Is(err, service.ErrMessageNotFound),
		errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrNotificationNotFound):
		ErrorResponse(c, http.StatusNotFound, err.Error())
	default:
		logrus.WithError(err).Error("Unhandled internal server error")
		ErrorResponse(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}
