package gateaccess

import (
	"log"
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

// Verify checks any access code at the gate. Public, rate limited.
// POST /api/v1/gate/verify
func (h *Handler) Verify(c *gin.Context) {
	var req struct {
		EstateCode string `json:"estate_id" binding:"required,len=6"`
		Code       string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	result, err := h.service.Verify(req.EstateCode, req.Code)
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.MessageOf(err)})
		return
	}
	if !result.Granted {
		log.Printf("🚫 Gate denied at %s from %s: %s", req.EstateCode, middleware.GetClientIP(c), result.Message)
	}
	c.JSON(http.StatusOK, result)
}

// CreateVisitorPass lets a resident invite a visitor.
// POST /api/v1/residents/me/visitor-passes
func (h *Handler) CreateVisitorPass(c *gin.Context) {
	residentID, ok := middleware.GetResidentID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var req struct {
		VisitorName string `json:"visitor_name" binding:"required"`
		Purpose     string `json:"purpose"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	pass, err := h.service.CreateVisitorPass(residentID, req.VisitorName, req.Purpose)
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.MessageOf(err)})
		return
	}
	c.JSON(http.StatusCreated, pass)
}

// ListVisitorPasses lists a resident's own issued passes.
// GET /api/v1/residents/me/visitor-passes
func (h *Handler) ListVisitorPasses(c *gin.Context) {
	residentID, ok := middleware.GetResidentID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	passes, err := h.service.ListVisitorPassesForResident(residentID)
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.MessageOf(err)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"passes": passes})
}

// CreateOfficialPass lets the estate office issue a staff/official pass.
// POST /api/v1/admin/official-passes
func (h *Handler) CreateOfficialPass(c *gin.Context) {
	estateID, ok := adminEstate(c)
	if !ok {
		return
	}

	var req struct {
		Name    string `json:"name" binding:"required"`
		Purpose string `json:"purpose"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	pass, err := h.service.CreateOfficialPass(estateID, req.Name, req.Purpose)
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.MessageOf(err)})
		return
	}
	c.JSON(http.StatusCreated, pass)
}

// CreateVisitRequest files a public visit request.
// POST /api/v1/gate/visit-requests
func (h *Handler) CreateVisitRequest(c *gin.Context) {
	var req VisitRequestInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	vr, err := h.service.CreateVisitRequest(req)
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.MessageOf(err)})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":      "request sent, the resident will be notified",
		"request_code": vr.RequestCode,
		"status":       vr.Status,
	})
}

// TrackVisitRequest lets the visitor poll their request by REQ- code.
// GET /api/v1/gate/visit-requests/:code
func (h *Handler) TrackVisitRequest(c *gin.Context) {
	vr, err := h.service.TrackVisitRequest(c.Param("code"))
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.MessageOf(err)})
		return
	}

	resp := gin.H{
		"request_code": vr.RequestCode,
		"status":       vr.Status,
		"visitor_name": vr.VisitorName,
	}
	if vr.Note != "" {
		resp["note"] = vr.Note
	}
	if vr.Status == RequestApproved && vr.AccessCode != "" {
		resp["access_code"] = vr.AccessCode
		resp["message"] = "approved, show this access code at the gate"
	}
	c.JSON(http.StatusOK, resp)
}

// ListMyVisitRequests lists requests addressed to the signed-in resident.
// GET /api/v1/residents/me/visit-requests
func (h *Handler) ListMyVisitRequests(c *gin.Context) {
	residentID, ok := middleware.GetResidentID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	reqs, err := h.service.ListVisitRequestsForResident(residentID, RequestStatus(c.Query("status")))
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.MessageOf(err)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"visit_requests": reqs})
}

// ApproveVisitRequest approves a pending request addressed to the resident.
// PATCH /api/v1/residents/me/visit-requests/:id/approve
func (h *Handler) ApproveVisitRequest(c *gin.Context) {
	residentID, ok := middleware.GetResidentID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	id64, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request id"})
		return
	}

	var body struct {
		Note string `json:"note"`
	}
	_ = c.ShouldBindJSON(&body)

	vr, pass, err := h.service.ApproveVisitRequest(residentID, uint(id64), body.Note)
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.MessageOf(err)})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":       "visit request approved",
		"visit_request": vr,
		"access_code":   pass.Code,
	})
}

// RejectVisitRequest rejects a pending request addressed to the resident.
// PATCH /api/v1/residents/me/visit-requests/:id/reject
func (h *Handler) RejectVisitRequest(c *gin.Context) {
	residentID, ok := middleware.GetResidentID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	id64, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request id"})
		return
	}

	var body struct {
		Note string `json:"note"`
	}
	_ = c.ShouldBindJSON(&body)

	vr, err := h.service.RejectVisitRequest(residentID, uint(id64), body.Note)
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.MessageOf(err)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "visit request rejected", "visit_request": vr})
}

// ApproveEstateVisitRequest lets the estate office approve an official
// request, minting an OFF- pass.
// PATCH /api/v1/admin/visit-requests/:id/approve
func (h *Handler) ApproveEstateVisitRequest(c *gin.Context) {
	estateID, ok := adminEstate(c)
	if !ok {
		return
	}

	id64, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request id"})
		return
	}

	var body struct {
		Note string `json:"note"`
	}
	_ = c.ShouldBindJSON(&body)

	vr, pass, err := h.service.ApproveVisitRequestByEstate(estateID, uint(id64), body.Note)
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.MessageOf(err)})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":       "visit request approved",
		"visit_request": vr,
		"access_code":   pass.Code,
	})
}

// RejectEstateVisitRequest lets the estate office reject an official request.
// PATCH /api/v1/admin/visit-requests/:id/reject
func (h *Handler) RejectEstateVisitRequest(c *gin.Context) {
	estateID, ok := adminEstate(c)
	if !ok {
		return
	}

	id64, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request id"})
		return
	}

	var body struct {
		Note string `json:"note"`
	}
	_ = c.ShouldBindJSON(&body)

	vr, err := h.service.RejectVisitRequestByEstate(estateID, uint(id64), body.Note)
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.MessageOf(err)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "visit request rejected", "visit_request": vr})
}

// ListEstateVisitRequests gives the estate office a view of requests.
// GET /api/v1/admin/visit-requests
func (h *Handler) ListEstateVisitRequests(c *gin.Context) {
	estateID, ok := adminEstate(c)
	if !ok {
		return
	}

	reqs, err := h.service.ListVisitRequestsForEstate(estateID, RequestStatus(c.Query("status")))
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.MessageOf(err)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"visit_requests": reqs})
}

// GeneratePins mints a batch of one-time gate pins.
// POST /api/v1/admin/pins/batch
func (h *Handler) GeneratePins(c *gin.Context) {
	estateID, ok := adminEstate(c)
	if !ok {
		return
	}

	var req struct {
		Count int `json:"count" binding:"required,min=1,max=500"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	result, pins, err := h.service.GeneratePins(estateID, req.Count)
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.MessageOf(err)})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"batch": result, "pins": pins})
}

// ListPins lists an estate's pins, optionally by status.
// GET /api/v1/admin/pins
func (h *Handler) ListPins(c *gin.Context) {
	estateID, ok := adminEstate(c)
	if !ok {
		return
	}

	pins, err := h.service.ListPins(estateID, PinStatus(c.Query("status")))
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.MessageOf(err)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"pins": pins})
}

// GenerateTokens mints a batch of annual resident tokens.
// POST /api/v1/admin/tokens/batch
func (h *Handler) GenerateTokens(c *gin.Context) {
	estateID, ok := adminEstate(c)
	if !ok {
		return
	}

	var req struct {
		Count int `json:"count" binding:"required,min=1,max=500"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	result, tokens, err := h.service.GenerateTokens(estateID, req.Count)
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.MessageOf(err)})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"batch": result, "tokens": tokens})
}

// ListTokens lists an estate's tokens, optionally by status.
// GET /api/v1/admin/tokens
func (h *Handler) ListTokens(c *gin.Context) {
	estateID, ok := adminEstate(c)
	if !ok {
		return
	}

	tokens, err := h.service.ListTokens(estateID, TokenStatus(c.Query("status")))
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.MessageOf(err)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"tokens": tokens})
}

// ActivateToken binds an unused RES- token to the signed-in resident.
// POST /api/v1/residents/me/tokens/activate
func (h *Handler) ActivateToken(c *gin.Context) {
	residentID, ok := middleware.GetResidentID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var req struct {
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	token, err := h.service.ActivateToken(residentID, req.Code)
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.MessageOf(err)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "token activated", "token": token})
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
