package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"realtime-chat/internal/service"
)

// AuthHandler wires registration and login endpoints to the AuthService.
type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Password string `json:"password" binding:"required,min=8"`
	Email    string `json:"email" binding:"omitempty,email"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logrus.WithError(err).Warn("Handler.Register: invalid input format")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "details": err.Error()})
		return
	}

	newUser, err := h.authService.Register(c.Request.Context(), req.Username, req.Password, req.Email)
	if err != nil {
		logCtx := logrus.WithField("username", req.Username)
		if errors.Is(err, service.ErrRegistrationFailed) || errors.Is(err, service.ErrValidation) {
			logCtx.WithError(err).Warn("Handler.Register: registration rejected")
			ErrorResponse(c, http.StatusBadRequest, err.Error())
		} else {
			logCtx.WithError(err).Error("Handler.Register: internal error during registration")
			ErrorResponse(c, http.StatusInternalServerError, "Registration failed due to server error")
		}
		return
	}

	logrus.WithField("user_id", newUser.ID).Info("Handler.Register: user registered")
	SuccessResponse(c, http.StatusOK, gin.H{
		"message": "User registered successfully",
		"user_id": newUser.ID,
	})
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logrus.WithError(err).Warn("Handler.Login: invalid input format")
		ErrorResponse(c, http.StatusBadRequest, "Invalid input: username and password required")
		return
	}

	token, err := h.authService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		logCtx := logrus.WithField("username", req.Username)
		if errors.Is(err, service.ErrAuthenticationFailed) {
			logCtx.WithError(err).Warn("Handler.Login: authentication failed")
			ErrorResponse(c, http.StatusUnauthorized, err.Error())
		} else {
			logCtx.WithError(err).Error("Handler.Login: internal error during login")
			ErrorResponse(c, http.StatusInternalServerError, "Login failed due to server error")
		}
		return
	}

	logrus.WithField("username", req.Username).Info("Handler.Login: user logged in")
	SuccessResponse(c, http.StatusOK, LoginResponse{
		Message: "Login successful",
		Token:   token,
	})
}
