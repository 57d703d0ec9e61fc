package estate

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

// Register handles the public estate sign-up form.
// POST /api/v1/estates/register
func (h *Handler) Register(c *gin.Context) {
	var req RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	estate, err := h.service.Register(req)
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.MessageOf(err)})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":   "estate registered, awaiting approval",
		"estate_id": estate.EstateCode,
	})
}

// Lookup resolves an estate code for registration and visit forms.
// GET /api/v1/estates/lookup/:code
func (h *Handler) Lookup(c *gin.Context) {
	pub, err := h.service.LookupPublic(c.Param("code"))
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.MessageOf(err)})
		return
	}
	c.JSON(http.StatusOK, pub)
}

// GetMine returns the estate of the authenticated admin.
// GET /api/v1/estates/me
func (h *Handler) GetMine(c *gin.Context) {
	_, estateID, ok := requireEstate(c)
	if !ok {
		return
	}

	estate, err := h.service.GetByID(estateID)
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.MessageOf(err)})
		return
	}
	c.JSON(http.StatusOK, estate)
}

// UpdateBankDetails stores the levy collection account.
// PUT /api/v1/estates/me/bank-details
func (h *Handler) UpdateBankDetails(c *gin.Context) {
	_, estateID, ok := requireEstate(c)
	if !ok {
		return
	}

	var req BankDetailsInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	estate, err := h.service.UpdateBankDetails(estateID, req)
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.MessageOf(err)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "bank details updated", "estate": estate})
}

// AddStreet registers a street name for resident addresses.
// POST /api/v1/estates/me/streets
func (h *Handler) AddStreet(c *gin.Context) {
	_, estateID, ok := requireEstate(c)
	if !ok {
		return
	}

	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	street, err := h.service.AddStreet(estateID, req.Name)
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.MessageOf(err)})
		return
	}
	c.JSON(http.StatusCreated, street)
}

// ListStreets lists an estate's streets. Public by estate code so the
// resident registration form can offer them.
// GET /api/v1/estates/:code/streets
func (h *Handler) ListStreets(c *gin.Context) {
	estate, err := h.service.GetByCode(c.Param("code"))
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.MessageOf(err)})
		return
	}
	streets, err := h.service.ListStreets(estate.ID)
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.MessageOf(err)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"streets": streets})
}

// RemoveStreet deletes a street from the admin's estate.
// DELETE /api/v1/estates/me/streets/:id
func (h *Handler) RemoveStreet(c *gin.Context) {
	_, estateID, ok := requireEstate(c)
	if !ok {
		return
	}

	streetID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid street id"})
		return
	}

	if err := h.service.RemoveStreet(estateID, uint(streetID)); err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.MessageOf(err)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "street removed"})
}

// SubmitChangeRequest lets an estate admin raise a request with the platform.
// POST /api/v1/estates/me/change-requests
func (h *Handler) SubmitChangeRequest(c *gin.Context) {
	_, estateID, ok := requireEstate(c)
	if !ok {
		return
	}

	var req ChangeRequestInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	estate, err := h.service.GetByID(estateID)
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.MessageOf(err)})
		return
	}

	cr, err := h.service.SubmitChangeRequest(estateID, estate.AdminName, req)
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.MessageOf(err)})
		return
	}
	c.JSON(http.StatusCreated, cr)
}

// ListChangeRequests lists the admin's own change requests.
// GET /api/v1/estates/me/change-requests
func (h *Handler) ListChangeRequests(c *gin.Context) {
	_, estateID, ok := requireEstate(c)
	if !ok {
		return
	}

	reqs, err := h.service.ListChangeRequests(estateID)
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.MessageOf(err)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"change_requests": reqs})
}

// requireEstate resolves the caller's estate from the access context, falling
// back to the X-Estate-ID header for super admins.
func requireEstate(c *gin.Context) (middleware.AccessContext, uint, bool) {
	ac, ok := middleware.GetAccessContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return ac, 0, false
	}
	if ac.EstateID != nil {
		return ac, *ac.EstateID, true
	}
	if id := middleware.ExtractEstateIDFromContext(c); id != nil && ac.CanAccessEstate(*id) {
		return ac, *id, true
	}
	c.JSON(http.StatusForbidden, gin.H{"error": "no estate bound to this account"})
	return ac, 0, false
}
