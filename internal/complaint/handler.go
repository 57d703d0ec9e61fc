package complaint

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tundeajayi/estate-management-backend/internal/apperr"
	"github.com/tundeajayi/estate-management-backend/middleware"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Create files a complaint from the signed-in resident.
// POST /api/v1/residents/me/complaints
func (h *Handler) Create(c *gin.Context) {
	residentID, ok := middleware.GetResidentID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var req CreateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	complaint, err := h.service.Create(residentID, req)
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.MessageOf(err)})
		return
	}
	c.JSON(http.StatusCreated, complaint)
}

// ListMine lists the resident's own complaints.
// GET /api/v1/residents/me/complaints
func (h *Handler) ListMine(c *gin.Context) {
	residentID, ok := middleware.GetResidentID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	complaints, err := h.service.ListForResident(residentID)
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.MessageOf(err)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"complaints": complaints})
}

// ListForEstate lists an estate's complaints for the office.
// GET /api/v1/admin/complaints
func (h *Handler) ListForEstate(c *gin.Context) {
	ac, ok := middleware.GetAccessContext(c)
	if !ok || ac.EstateID == nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "no estate bound to this account"})
		return
	}

	complaints, err := h.service.ListForEstate(*ac.EstateID, c.Query("status"))
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.MessageOf(err)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"complaints": complaints})
}

// UpdateStatus moves a complaint along its lifecycle.
// PATCH /api/v1/admin/complaints/:id
func (h *Handler) UpdateStatus(c *gin.Context) {
	ac, ok := middleware.GetAccessContext(c)
	if !ok || ac.EstateID == nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "no estate bound to this account"})
		return
	}

	id64, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid complaint id"})
		return
	}

	var req UpdateStatusInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	complaint, err := h.service.UpdateStatus(*ac.EstateID, uint(id64), req)
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.MessageOf(err)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "complaint updated", "complaint": complaint})
}
