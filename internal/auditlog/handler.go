package auditlog

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// GetAuditLogs returns paginated audit logs (super admin only).
func (h *Handler) GetAuditLogs(c *gin.Context) {
	var filter AuditLogFilter

	filter.Action = c.Query("action")
	filter.Status = c.Query("status")
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))

	if raw := c.Query("user_id"); raw != "" {
		if id64, err := strconv.ParseUint(raw, 10, 32); err == nil {
			id := uint(id64)
			filter.UserID = &id
		}
	}
	if raw := c.Query("estate_id"); raw != "" {
		if id64, err := strconv.ParseUint(raw, 10, 32); err == nil {
			id := uint(id64)
			filter.EstateID = &id
		}
	}
	if raw := c.Query("from"); raw != "" {
		if t, err := time.Parse("2006-01-02", raw); err == nil {
			filter.FromDate = &t
		}
	}
	if raw := c.Query("to"); raw != "" {
		if t, err := time.Parse("2006-01-02", raw); err == nil {
			end := t.Add(24*time.Hour - time.Second)
			filter.ToDate = &end
		}
	}

	result, err := h.service.GetAuditLogs(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch audit logs"})
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetAuditLogByID returns one audit entry.
func (h *Handler) GetAuditLogByID(c *gin.Context) {
	id64, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	entry, err := h.service.GetAuditLogByID(c.Request.Context(), uint(id64))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "audit log not found"})
		return
	}
	c.JSON(http.StatusOK, entry)
}
