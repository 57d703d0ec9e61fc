package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/tundeajayi/estate-management-backend/config"
)

// ResidentAuthMiddleware validates the lightweight resident session token
// issued at resident login. Residents are not backed by the users table, so
// this runs instead of AuthMiddleware on resident-facing routes.
func ResidentAuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			c.Abort()
			return
		}

		tokenStr := strings.TrimPrefix(header, "Bearer ")
		token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(cfg.JWTAccessSecret), nil
		})
		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok || claims["role"] != "resident" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "not a resident session"})
			c.Abort()
			return
		}

		idFloat, ok := claims["resident_id"].(float64)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "malformed token"})
			c.Abort()
			return
		}

		c.Set("resident_id", uint(idFloat))
		if userID, ok := claims["user_id"].(string); ok {
			c.Set("resident_user_id", userID)
		}
		if estateCode, ok := claims["estate_id"].(string); ok {
			c.Set("resident_estate_code", estateCode)
		}
		c.Next()
	}
}

// GetResidentID pulls the resident primary key set by ResidentAuthMiddleware.
func GetResidentID(c *gin.Context) (uint, bool) {
	raw, exists := c.Get("resident_id")
	if !exists {
		return 0, false
	}
	id, ok := raw.(uint)
	return id, ok
}
