package auth

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const usernameKey = "username"

// Bearer requires an Authorization bearer token naming a user. Any failure
// answers 401 {"detail":"Invalid token"}.
func Bearer() gin.HandlerFunc {
	return func(c *gin.Context) {
		authz := c.GetHeader("Authorization")
		if len(authz) < len("bearer ") || !strings.EqualFold(authz[:len("bearer ")], "bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Invalid token"})
			return
		}
		claims, err := Parse(strings.TrimSpace(authz[len("bearer "):]), time.Now())
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Invalid token"})
			return
		}
		c.Set(usernameKey, claims.Username())
		c.Next()
	}
}

// Username returns the user set by Bearer.
func Username(c *gin.Context) string {
	return c.GetString(usernameKey)
}
