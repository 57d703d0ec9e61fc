package resident

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tundeajayi/estate-management-backend/config"
	"github.com/tundeajayi/estate-management-backend/internal/apperr"
	"github.com/tundeajayi/estate-management-backend/middleware"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Register handles the public resident sign-up form.
// POST /api/v1/residents/register
func (h *Handler) Register(c *gin.Context) {
	var req RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	res, err := h.service.Register(req)
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.MessageOf(err)})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "registration successful, visit the estate office to get verified",
		"user_id": res.UserID,
	})
}

// Login signs a resident in with their USR- ID.
// POST /api/v1/residents/login
func (h *Handler) Login(c *gin.Context) {
	var req LoginInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	result, err := h.service.Login(req)
	if err != nil {
		// login failures never reveal whether the ID exists
		if apperr.Is(err, apperr.NotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": apperr.MessageOf(err)})
			return
		}
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.MessageOf(err)})
		return
	}
	c.JSON(http.StatusOK, result)
}

// Me returns the authenticated resident's own record.
// GET /api/v1/residents/me
func (h *Handler) Me(c *gin.Context) {
	id, ok := middleware.GetResidentID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	res, err := h.service.GetByID(id)
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.MessageOf(err)})
		return
	}
	c.JSON(http.StatusOK, res)
}

// IDCard streams the resident's printable ID card PDF.
// GET /api/v1/residents/me/id-card
func (h *Handler) IDCard(c *gin.Context) {
	id, ok := middleware.GetResidentID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	pdf, filename, err := h.service.IDCard(id)
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.MessageOf(err)})
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// GatePassSlip streams a printable slip carrying the resident's GP- code.
// GET /api/v1/residents/me/gate-pass-slip
func (h *Handler) GatePassSlip(c *gin.Context) {
	id, ok := middleware.GetResidentID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	pdf, filename, err := h.service.GatePassSlip(id)
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.MessageOf(err)})
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// UploadPhoto stores the resident's photo and records its URL.
// POST /api/v1/residents/me/photo
func (h *Handler) UploadPhoto(c *gin.Context) {
	id, ok := middleware.GetResidentID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	file, err := c.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File not found in request"})
		return
	}
	if file.Size > 5<<20 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "photo must be 5MB or smaller"})
		return
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	switch ext {
	case ".jpg", ".jpeg", ".png":
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "photo must be a JPEG or PNG"})
		return
	}

	filename := fmt.Sprintf("resident-%d%s", id, ext)
	dst := filepath.Join(config.UploadPath, filename)
	if err := c.SaveUploadedFile(file, dst); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save file"})
		return
	}

	res, err := h.service.SetPhoto(id, "/uploads/"+filename)
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.MessageOf(err)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "photo updated", "photo_url": res.PhotoURL})
}

// List returns the residents of the admin's estate with filters.
// GET /api/v1/admin/residents
func (h *Handler) List(c *gin.Context) {
	estateID, ok := adminEstate(c)
	if !ok {
		return
	}

	filter := ListFilter{Search: c.Query("search")}
	if raw := c.Query("verified"); raw != "" {
		v := raw == "true"
		filter.Verified = &v
	}
	if raw := c.Query("active"); raw != "" {
		v := raw == "true"
		filter.Active = &v
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))

	residents, total, err := h.service.List(estateID, filter)
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.MessageOf(err)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"residents": residents, "total": total})
}

// Scan resolves a scanned USR- code for the estate office.
// GET /api/v1/admin/residents/scan/:userId
func (h *Handler) Scan(c *gin.Context) {
	estateID, ok := adminEstate(c)
	if !ok {
		return
	}

	result, err := h.service.Scan(estateID, c.Param("userId"))
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.MessageOf(err)})
		return
	}
	c.JSON(http.StatusOK, result)
}

// Approve verifies a resident and issues their gate pass.
// PATCH /api/v1/admin/residents/:id/approve
func (h *Handler) Approve(c *gin.Context) {
	h.transition(c, h.service.Approve, "resident approved")
}

// Reject marks a resident as not verified.
// PATCH /api/v1/admin/residents/:id/reject
func (h *Handler) Reject(c *gin.Context) {
	h.transition(c, h.service.Reject, "resident rejected")
}

// Deactivate marks a resident as moved out.
// PATCH /api/v1/admin/residents/:id/deactivate
func (h *Handler) Deactivate(c *gin.Context) {
	h.transition(c, h.service.Deactivate, "resident deactivated")
}

// RegenerateGatePass rotates a resident's gate pass code.
// PATCH /api/v1/admin/residents/:id/regenerate-pass
func (h *Handler) RegenerateGatePass(c *gin.Context) {
	h.transition(c, h.service.RegenerateGatePass, "gate pass regenerated")
}

func (h *Handler) transition(c *gin.Context, fn func(estateID, residentID uint) (*Resident, error), message string) {
	estateID, ok := adminEstate(c)
	if !ok {
		return
	}

	id64, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid resident id"})
		return
	}

	res, err := fn(estateID, uint(id64))
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.MessageOf(err)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": message, "resident": res})
}

func adminEstate(c *gin.Context) (uint, bool) {
	ac, ok := middleware.GetAccessContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return 0, false
	}
	if ac.EstateID != nil {
		return *ac.EstateID, true
	}
	if id := middleware.ExtractEstateIDFromContext(c); id != nil && ac.CanAccessEstate(*id) {
		return *id, true
	}
	c.JSON(http.StatusForbidden, gin.H{"error": "no estate bound to this account"})
	return 0, false
}
