package middleware

import (
	"net/http"
	"strings"

	"library_catalog/internal/utils"

	"github.com/gin-gonic/gin"
)

const (
	AuthAdminKey = "authAdmin"
	AuthRoleKey  = "authRole"
	AuthTokenKey = "authToken"
)

// Authenticator validates a bearer token and rejects signed-out sessions
type Authenticator interface {
	Authenticate(token string) (*utils.JWTClaims, error)
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header, or "" if absent
func BearerToken(c *gin.Context) string {
	parts := strings.Fields(c.GetHeader("Authorization"))
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}

// JWTAuthMiddleware creates a middleware for JWT authentication
func JWTAuthMiddleware(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		tokenString := BearerToken(c)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			return
		}

		claims, err := auth.Authenticate(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set(AuthAdminKey, claims.AdminID)
		c.Set(AuthRoleKey, claims.Role)
		c.Set(AuthTokenKey, tokenString)

		c.Next()
	}
}
