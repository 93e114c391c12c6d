package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/sirupsen/logrus"

	"realtime-chat/internal/domain"
)

// Context keys set by Auth.
const (
	ContextUserID   = "user_id"
	ContextIdentity = "identity"
)

// ErrMissingAuthHeader marks a request with no Authorization header.
var ErrMissingAuthHeader = errors.New("missing Authorization header")

// Auth returns a gin middleware that validates the Bearer JWT and puts the
// caller's identity into the request context. Websocket upgrades also pass
// through here, so the token may arrive as a query parameter instead.
func Auth(jwtSecret string) gin.HandlerFunc {
	if jwtSecret == "" {
		panic("JWT secret cannot be empty for Auth middleware")
	}

	return func(c *gin.Context) {
		tokenStr, err := extractToken(c)
		if err != nil {
			if errors.Is(err, ErrMissingAuthHeader) {
				logrus.Warn("Auth middleware: missing Authorization header")
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			} else {
				logrus.WithError(err).Warn("Auth middleware: malformed token")
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token format"})
			}
			c.Abort()
			return
		}

		claims, err := validateToken(tokenStr, jwtSecret)
		if err != nil {
			logrus.WithError(err).Warn("Auth middleware: invalid token")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		identity, err := identityFromClaims(claims)
		if err != nil {
			logrus.WithError(err).Error("Auth middleware: bad token claims")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token claims"})
			c.Abort()
			return
		}

		c.Set(ContextUserID, identity.UserID)
		c.Set(ContextIdentity, identity)
		logrus.WithField("user_id", identity.UserID).Debug("Auth middleware: user authenticated")
		c.Next()
	}
}

// IdentityFrom pulls the authenticated identity out of the gin context.
func IdentityFrom(c *gin.Context) (domain.Identity, bool) {
	v, ok := c.Get(ContextIdentity)
	if !ok {
		return domain.Identity{}, false
	}
	id, ok := v.(domain.Identity)
	return id, ok
}

func extractToken(c *gin.Context) (string, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		// Browser websocket clients cannot set headers on the upgrade
		// request; they pass the token in the query string.
		if token := c.Query("token"); token != "" {
			return token, nil
		}
		return "", ErrMissingAuthHeader
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", jwt.ErrTokenMalformed
	}
	return parts[1], nil
}

func validateToken(tokenStr, secret string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("token validation failed: %w", err)
	}
	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token or claims type")
}

func identityFromClaims(claims jwt.MapClaims) (domain.Identity, error) {
	userIDClaim, ok := claims["user_id"]
	if !ok {
		return domain.Identity{}, errors.New("user_id claim missing")
	}
	// JWT numbers decode as float64.
	userIDFloat, ok := userIDClaim.(float64)
	if !ok || userIDFloat <= 0 || userIDFloat != float64(uint(userIDFloat)) {
		return domain.Identity{}, fmt.Errorf("user_id claim is not a valid positive integer: %v", userIDClaim)
	}

	identity := domain.Identity{UserID: uint(userIDFloat)}
	if username, ok := claims["username"].(string); ok {
		identity.Username = username
	}
	if role, ok := claims["role"].(string); ok {
		identity.Role = role
	}
	return identity, nil
}
