package superadmin

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

// ListEstates lists all estates with resident counts.
// GET /api/v1/superadmin/estates?approved=true|false
func (h *Handler) ListEstates(c *gin.Context) {
	var approved *bool
	if raw := c.Query("approved"); raw != "" {
		v := raw == "true"
		approved = &v
	}

	estates, err := h.service.ListEstates(approved)
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.MessageOf(err)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"estates": estates})
}

// DecideEstate approves or rejects an estate registration.
// PATCH /api/v1/superadmin/estates/:id/decision
func (h *Handler) DecideEstate(c *gin.Context) {
	id64, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid estate id"})
		return
	}

	var req DecideEstateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	estate, err := h.service.DecideEstate(uint(id64), req)
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.MessageOf(err)})
		return
	}

	message := "estate rejected"
	if req.Approved {
		message = "estate approved"
	}
	c.JSON(http.StatusOK, gin.H{"message": message, "estate": estate})
}

// DeleteEstate removes an estate from the platform.
// DELETE /api/v1/superadmin/estates/:id
func (h *Handler) DeleteEstate(c *gin.Context) {
	id64, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid estate id"})
		return
	}

	if err := h.service.DeleteEstate(uint(id64)); err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.MessageOf(err)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "estate deleted"})
}

// Stats returns the platform dashboard summary.
// GET /api/v1/superadmin/stats
func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.service.Stats()
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.MessageOf(err)})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ListEstateAdmins lists every estate admin account.
// GET /api/v1/superadmin/admins
func (h *Handler) ListEstateAdmins(c *gin.Context) {
	admins, err := h.service.ListEstateAdmins()
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.MessageOf(err)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"admins": admins})
}

// ListSuperAdmins lists the platform's superadmin accounts.
// GET /api/v1/superadmin/superadmins
func (h *Handler) ListSuperAdmins(c *gin.Context) {
	admins, err := h.service.ListSuperAdmins()
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.MessageOf(err)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"admins": admins})
}

// CreateSuperAdmin mints a new superadmin account.
// POST /api/v1/superadmin/superadmins
func (h *Handler) CreateSuperAdmin(c *gin.Context) {
	var req CreateAdminInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	user, err := h.service.CreateSuperAdmin(req)
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.MessageOf(err)})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "super admin created", "admin": user})
}

// DeleteSuperAdmin removes a superadmin account.
// DELETE /api/v1/superadmin/superadmins/:id
func (h *Handler) DeleteSuperAdmin(c *gin.Context) {
	id64, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid admin id"})
		return
	}

	if err := h.service.DeleteSuperAdmin(uint(id64)); err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.MessageOf(err)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "super admin deleted"})
}

// ListChangeRequests lists change requests across estates.
// GET /api/v1/superadmin/change-requests?status=pending
func (h *Handler) ListChangeRequests(c *gin.Context) {
	reqs, err := h.service.ListChangeRequests(c.Query("status"))
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.MessageOf(err)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"change_requests": reqs})
}

// ResolveChangeRequest marks a change request handled.
// PATCH /api/v1/superadmin/change-requests/:id/resolve
func (h *Handler) ResolveChangeRequest(c *gin.Context) {
	id64, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid change request id"})
		return
	}

	if err := h.service.ResolveChangeRequest(uint(id64)); err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.MessageOf(err)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "change request resolved"})
}
