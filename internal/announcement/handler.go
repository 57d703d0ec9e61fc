package announcement

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tundeajayi/estate-management-backend/internal/apperr"
	"github.com/tundeajayi/estate-management-backend/internal/estate"
	"github.com/tundeajayi/estate-management-backend/middleware"
)

type Handler struct {
	service   Service
	estateSvc estate.Service
}

func NewHandler(service Service, estateSvc estate.Service) *Handler {
	return &Handler{service: service, estateSvc: estateSvc}
}

// Publish posts an estate-wide notice.
// POST /api/v1/admin/announcements
func (h *Handler) Publish(c *gin.Context) {
	ac, ok := middleware.GetAccessContext(c)
	if !ok || ac.EstateID == nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "no estate bound to this account"})
		return
	}

	var req PublishInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	est, err := h.estateSvc.GetByID(*ac.EstateID)
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.MessageOf(err)})
		return
	}

	ann, err := h.service.Publish(est.ID, est.EstateCode, ac.UserID, req)
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.MessageOf(err)})
		return
	}
	c.JSON(http.StatusCreated, ann)
}

// ListForEstate lists notices for the office.
// GET /api/v1/admin/announcements
func (h *Handler) ListForEstate(c *gin.Context) {
	ac, ok := middleware.GetAccessContext(c)
	if !ok || ac.EstateID == nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "no estate bound to this account"})
		return
	}

	anns, err := h.service.ListForEstate(*ac.EstateID)
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.MessageOf(err)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"announcements": anns})
}

// Delete removes a notice.
// DELETE /api/v1/admin/announcements/:id
func (h *Handler) Delete(c *gin.Context) {
	ac, ok := middleware.GetAccessContext(c)
	if !ok || ac.EstateID == nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "no estate bound to this account"})
		return
	}

	id64, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid announcement id"})
		return
	}

	if err := h.service.Delete(*ac.EstateID, uint(id64)); err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.MessageOf(err)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "announcement deleted"})
}

// ListForResident shows a resident their estate's notices.
// GET /api/v1/residents/me/announcements
func (h *Handler) ListForResident(c *gin.Context) {
	residentID, ok := middleware.GetResidentID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	anns, err := h.service.ListForResident(residentID)
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.MessageOf(err)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"announcements": anns})
}

// SendMessage delivers a private note to one resident.
// POST /api/v1/admin/messages
func (h *Handler) SendMessage(c *gin.Context) {
	ac, ok := middleware.GetAccessContext(c)
	if !ok || ac.EstateID == nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "no estate bound to this account"})
		return
	}

	var req MessageInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	msg, err := h.service.SendMessage(*ac.EstateID, req)
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.MessageOf(err)})
		return
	}
	c.JSON(http.StatusCreated, msg)
}

// ListMessages shows the resident's inbox.
// GET /api/v1/residents/me/messages
func (h *Handler) ListMessages(c *gin.Context) {
	residentID, ok := middleware.GetResidentID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	msgs, unread, err := h.service.ListMessages(residentID)
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.MessageOf(err)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs, "unread": unread})
}

// MarkRead acknowledges a message.
// PATCH /api/v1/residents/me/messages/:id/read
func (h *Handler) MarkRead(c *gin.Context) {
	residentID, ok := middleware.GetResidentID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	id64, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message id"})
		return
	}

	if err := h.service.MarkRead(residentID, uint(id64)); err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.MessageOf(err)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "marked as read"})
}
