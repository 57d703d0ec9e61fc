package middleware

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tundeajayi/estate-management-backend/internal/auditlog"
)

// AuditMiddleware captures the client IP and records every mutating API call
// once the handler chain has run, so the entry carries the resolved principal.
func AuditMiddleware(svc auditlog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.GetHeader("X-Forwarded-For")
		if ip == "" {
			ip = c.ClientIP()
		}
		c.Set("client_ip", ip)

		c.Next()

		if c.Request.Method == http.MethodGet {
			return
		}

		var userID, estateID *uint
		if ac, ok := GetAccessContext(c); ok {
			id := ac.UserID
			userID = &id
			estateID = ac.EstateID
		}

		status := "success"
		if c.Writer.Status() >= http.StatusBadRequest {
			status = "failed"
		}

		details := map[string]interface{}{
			"method":      c.Request.Method,
			"path":        c.FullPath(),
			"status_code": c.Writer.Status(),
		}
		action := c.Request.Method + " " + c.FullPath()

		if err := svc.LogAction(c.Request.Context(), userID, estateID, action, details, ip, status); err != nil {
			log.Printf("⚠️ Failed to write audit entry for %s: %v", action, err)
		}
	}
}

// GetClientIP returns the IP captured by AuditMiddleware.
func GetClientIP(c *gin.Context) string {
	if ip, exists := c.Get("client_ip"); exists {
		if s, ok := ip.(string); ok {
			return s
		}
	}
	return c.ClientIP()
}
