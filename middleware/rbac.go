package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tundeajayi/estate-management-backend/internal/auth"
)

// RBACMiddleware checks if the user has one of the allowed roles
func RBACMiddleware(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userVal, exists := c.Get("user")
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
			return
		}

		user, ok := userVal.(auth.User)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid user object"})
			return
		}

		for _, role := range allowedRoles {
			if user.Role.RoleName == role {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
	}
}

// RequireEstateAccess ensures the caller is bound to an estate before any
// estate-scoped operation.
func RequireEstateAccess() gin.HandlerFunc {
	return func(c *gin.Context) {
		ac, ok := GetAccessContext(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "access context missing"})
			return
		}
		if ac.RoleName != RoleSuperAdmin && ac.EstateID == nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "user is not linked to an estate"})
			return
		}
		c.Next()
	}
}

// RequireWriteAccess blocks read-only accounts (gate security) from mutating
// estate data.
func RequireWriteAccess() gin.HandlerFunc {
	return func(c *gin.Context) {
		ac, ok := GetAccessContext(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "access context missing"})
			return
		}
		if !ac.CanWrite() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "this account is read-only"})
			return
		}
		c.Next()
	}
}
