package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"realtime-chat/internal/middleware"
)

func ErrorResponse(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{"error": message})
}

func SuccessResponse(c *gin.Context, code int, data interface{}) {
	c.JSON(code, data)
}

// authedUserID returns the authenticated user ID set by the Auth
// middleware, writing the error response itself when it is missing.
func authedUserID(c *gin.Context) (uint, bool) {
	userIDAny, exists := c.Get(middleware.ContextUserID)
	if !exists {
		logrus.Warn("Handler: user ID not found in context, middleware missing or failed?")
		ErrorResponse(c, http.StatusUnauthorized, "User not authenticated")
		return 0, false
	}
	userID, ok := userIDAny.(uint)
	if !ok {
		logrus.Error("Handler: user ID in context is not uint")
		ErrorResponse(c, http.StatusInternalServerError, "Internal server error processing user ID")
		return 0, false
	}
	return userID, true
}

// pathID parses a positive uint path parameter, writing a 400 on failure.
func pathID(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		ErrorResponse(c, http.StatusBadRequest, "Invalid "+name+" parameter")
		return 0, false
	}
	return uint(id), true
}
