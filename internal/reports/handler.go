package reports

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tundeajayi/estate-management-backend/internal/apperr"
	"github.com/tundeajayi/estate-management-backend/middleware"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) export(c *gin.Context, fn func(estateID uint) ([]byte, string, error), contentType string) {
	ac, ok := middleware.GetAccessContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var estateID uint
	if ac.EstateID != nil {
		estateID = *ac.EstateID
	} else if id := middleware.ExtractEstateIDFromContext(c); id != nil && ac.CanAccessEstate(*id) {
		estateID = *id
	}
	if estateID == 0 {
		c.JSON(http.StatusForbidden, gin.H{"error": "no estate bound to this account"})
		return
	}

	data, filename, err := fn(estateID)
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.MessageOf(err)})
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, contentType, data)
}

// Residents exports the resident register.
// GET /api/v1/admin/reports/residents
func (h *Handler) Residents(c *gin.Context) {
	h.export(c, h.service.ResidentsXLSX, xlsxContentType)
}

// Pins exports the pin inventory.
// GET /api/v1/admin/reports/pins
func (h *Handler) Pins(c *gin.Context) {
	h.export(c, h.service.PinsXLSX, xlsxContentType)
}

// VisitLog exports the visit request history.
// GET /api/v1/admin/reports/visit-log
func (h *Handler) VisitLog(c *gin.Context) {
	h.export(c, h.service.VisitLogXLSX, xlsxContentType)
}

// PinSheet renders printable pin slips.
// GET /api/v1/admin/reports/pin-sheet
func (h *Handler) PinSheet(c *gin.Context) {
	h.export(c, h.service.PinSheetPDF, "application/pdf")
}
