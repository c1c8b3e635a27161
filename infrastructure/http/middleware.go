package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"tutor-chat/auth"
	"tutor-chat/domain"
)

const identityKey = "identity"

// Identity is the authenticated caller attached to each request.
type Identity struct {
	UserID string
	Role   domain.Role
}

// AuthRequired validates the bearer token and injects the caller identity.
// Websocket clients cannot set headers, so a token query parameter is
// accepted as a fallback.
func AuthRequired(tokens auth.Tokens) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c)
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}

		claims, err := tokens.Validate(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		role, ok := domain.ParseRole(claims.Role)
		if !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "unknown role"})
			return
		}

		c.Set(identityKey, Identity{UserID: claims.UserID, Role: role})
		c.Next()
	}
}

// CallerIdentity reads the identity set by AuthRequired.
func CallerIdentity(c *gin.Context) (Identity, bool) {
	value, ok := c.Get(identityKey)
	if !ok {
		return Identity{}, false
	}
	identity, ok := value.(Identity)
	return identity, ok
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return c.Query("token")
}
