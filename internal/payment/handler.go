package payment

import (
	"net/http"

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

// CreateLevy raises a new levy on the admin's estate.
// POST /api/v1/admin/levies
func (h *Handler) CreateLevy(c *gin.Context) {
	ac, ok := middleware.GetAccessContext(c)
	if !ok || ac.EstateID == nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "no estate bound to this account"})
		return
	}

	var req CreateLevyInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	est, err := h.estateSvc.GetByID(*ac.EstateID)
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.MessageOf(err)})
		return
	}

	levy, err := h.service.CreateLevy(est.ID, est.EstateCode, req)
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.MessageOf(err)})
		return
	}
	c.JSON(http.StatusCreated, levy)
}

// ListLevies lists the estate's levies for the office.
// GET /api/v1/admin/levies
func (h *Handler) ListLevies(c *gin.Context) {
	ac, ok := middleware.GetAccessContext(c)
	if !ok || ac.EstateID == nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "no estate bound to this account"})
		return
	}

	levies, err := h.service.ListLevies(*ac.EstateID)
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.MessageOf(err)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"levies": levies})
}

// ListMyLevies lists levies of the resident's estate.
// GET /api/v1/residents/me/levies
func (h *Handler) ListMyLevies(c *gin.Context) {
	if _, ok := middleware.GetResidentID(c); !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	// levies hang off the estate in the resident's token
	estateCode, _ := c.Get("resident_estate_code")
	code, _ := estateCode.(string)
	est, err := h.estateSvc.GetByCode(code)
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.MessageOf(err)})
		return
	}

	levies, err := h.service.ListLevies(est.ID)
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.MessageOf(err)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"levies": levies})
}

// Initiate opens a payment attempt for a levy.
// POST /api/v1/residents/me/payments
func (h *Handler) Initiate(c *gin.Context) {
	residentID, ok := middleware.GetResidentID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var req struct {
		LevyID uint `json:"levy_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	result, err := h.service.Initiate(residentID, req.LevyID)
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.MessageOf(err)})
		return
	}
	c.JSON(http.StatusCreated, result)
}

// Confirm settles a payment after checkout.
// POST /api/v1/residents/me/payments/confirm
func (h *Handler) Confirm(c *gin.Context) {
	if _, ok := middleware.GetResidentID(c); !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var req ConfirmInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	p, err := h.service.Confirm(req)
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.MessageOf(err)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "payment settled", "payment": p})
}

// ListMine lists the resident's own payments.
// GET /api/v1/residents/me/payments
func (h *Handler) ListMine(c *gin.Context) {
	residentID, ok := middleware.GetResidentID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	payments, err := h.service.ListForResident(residentID)
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.MessageOf(err)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"payments": payments})
}

// ListForEstate lists the estate's payments for the office.
// GET /api/v1/admin/payments
func (h *Handler) ListForEstate(c *gin.Context) {
	ac, ok := middleware.GetAccessContext(c)
	if !ok || ac.EstateID == nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "no estate bound to this account"})
		return
	}

	payments, err := h.service.ListForEstate(*ac.EstateID, c.Query("status"))
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.MessageOf(err)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"payments": payments})
}

// Receipt streams a PDF receipt for a settled payment.
// GET /api/v1/residents/me/payments/:reference/receipt
func (h *Handler) Receipt(c *gin.Context) {
	residentID, ok := middleware.GetResidentID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	pdf, filename, err := h.service.Receipt(residentID, c.Param("reference"))
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.MessageOf(err)})
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/pdf", pdf)
}
