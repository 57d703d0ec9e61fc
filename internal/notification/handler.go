package notification

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tundeajayi/estate-management-backend/internal/apperr"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func residentUserID(c *gin.Context) (string, bool) {
	raw, exists := c.Get("resident_user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return "", false
	}
	id, ok := raw.(string)
	if !ok || id == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return "", false
	}
	return id, true
}

// List shows the resident's notification feed.
// GET /api/v1/residents/me/notifications
func (h *Handler) List(c *gin.Context) {
	userID, ok := residentUserID(c)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	notifs, unread, err := h.service.List(userID, limit)
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.MessageOf(err)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": notifs, "unread": unread})
}

// MarkRead acknowledges one notification.
// PATCH /api/v1/residents/me/notifications/:id/read
func (h *Handler) MarkRead(c *gin.Context) {
	userID, ok := residentUserID(c)
	if !ok {
		return
	}

	id64, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid notification id"})
		return
	}

	if err := h.service.MarkRead(userID, uint(id64)); err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.MessageOf(err)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "marked as read"})
}

// RegisterDevice stores an FCM token for push delivery.
// POST /api/v1/residents/me/devices
func (h *Handler) RegisterDevice(c *gin.Context) {
	userID, ok := residentUserID(c)
	if !ok {
		return
	}

	var req struct {
		Token    string `json:"token" binding:"required"`
		Platform string `json:"platform"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	if err := h.service.RegisterDevice(userID, req.Token, req.Platform); err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.MessageOf(err)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "device registered"})
}
