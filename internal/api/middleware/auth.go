package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"foodgram/internal/api/service"
)

const (
	ctxUserID = "userID"
	ctxClaims = "claims"
)

// accepted Authorization schemes
var authSchemes = []string{"Token", "Bearer"}

var (
	errNoCredentials  = errors.New("authentication credentials were not provided")
	errBadCredentials = errors.New("invalid token header")
)

// AuthMiddleware rejects requests without a valid access token.
func AuthMiddleware(authService service.AuthService) gin.HandlerFunc {
	return authenticate(authService, true)
}

// OptionalAuth lets anonymous requests through but still rejects a
// malformed or invalid token.
func OptionalAuth(authService service.AuthService) gin.HandlerFunc {
	return authenticate(authService, false)
}

func authenticate(authService service.AuthService, required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			if required {
				abortUnauthorized(c, errNoCredentials)
				return
			}
			c.Next()
			return
		}

		tokenString, err := parseAuthHeader(authHeader)
		if err != nil {
			abortUnauthorized(c, err)
			return
		}

		claims, err := authService.ValidateToken(c.Request.Context(), tokenString)
		if errors.Is(err, service.ErrInvalidToken) {
			abortUnauthorized(c, err)
			return
		}
		if err != nil {
			_ = c.Error(err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"detail": "internal server error"})
			return
		}

		c.Set(ctxClaims, claims)
		c.Set(ctxUserID, claims.UserID)
		c.Next()
	}
}

// parseAuthHeader extracts the token from "<scheme> <token>".
func parseAuthHeader(header string) (string, error) {
	parts := strings.Fields(header)
	if len(parts) != 2 {
		return "", errBadCredentials
	}
	for _, scheme := range authSchemes {
		if strings.EqualFold(parts[0], scheme) {
			return parts[1], nil
		}
	}
	return "", errBadCredentials
}

func abortUnauthorized(c *gin.Context, err error) {
	c.Header("WWW-Authenticate", `Token realm="api"`)
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": err.Error()})
}

// CurrentUserID returns the authenticated user id, or service.Anonymous.
func CurrentUserID(c *gin.Context) int64 {
	if id, ok := c.Get(ctxUserID); ok {
		if v, ok := id.(int64); ok {
			return v
		}
	}
	return service.Anonymous
}

// CurrentClaims returns the validated token claims, nil for anonymous requests.
func CurrentClaims(c *gin.Context) *service.Claims {
	if v, ok := c.Get(ctxClaims); ok {
		if claims, ok := v.(*service.Claims); ok {
			return claims
		}
	}
	return nil
}
