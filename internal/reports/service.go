// Package reports produces the estate office's downloadable exports.
package reports

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	"github.com/tundeajayi/estate-management-backend/internal/apperr"
	"github.com/tundeajayi/estate-management-backend/internal/estate"
	"github.com/tundeajayi/estate-management-backend/internal/gateaccess"
	"github.com/tundeajayi/estate-management-backend/internal/resident"
)

type Service interface {
	ResidentsXLSX(estateID uint) ([]byte, string, error)
	PinsXLSX(estateID uint) ([]byte, string, error)
	VisitLogXLSX(estateID uint) ([]byte, string, error)
	PinSheetPDF(estateID uint) ([]byte, string, error)
}

type service struct {
	estateSvc    estate.Service
	residentRepo resident.Repository
	gateRepo     gateaccess.Repository
}

func NewService(estateSvc estate.Service, residentRepo resident.Repository, gateRepo gateaccess.Repository) Service {
	return &service{estateSvc: estateSvc, residentRepo: residentRepo, gateRepo: gateRepo}
}

func writeHeader(f *excelize.File, sheet string, headers []string) {
	style, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"DDEBF7"}, Pattern: 1},
	})
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
		f.SetCellStyle(sheet, cell, cell, style)
	}
}

// ResidentsXLSX exports the estate's resident register.
func (s *service) ResidentsXLSX(estateID uint) ([]byte, string, error) {
	est, err := s.estateSvc.GetByID(estateID)
	if err != nil {
		return nil, "", err
	}

	residents, err := s.residentRepo.ListAllByEstate(estateID)
	if err != nil {
		return nil, "", apperr.Wrap(apperr.TransientIO, "failed to load residents", err)
	}

	f := excelize.NewFile()
	defer f.Close()
	sheet := "Residents"
	f.SetSheetName("Sheet1", sheet)
	writeHeader(f, sheet, []string{"Resident ID", "Full Name", "Phone", "Street", "House", "Verified", "Active", "Gate Pass", "Registered"})

	for i, r := range residents {
		row := i + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), r.UserID)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), r.FullName)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), r.Phone)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), r.Street)
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), r.HouseNumber)
		f.SetCellValue(sheet, fmt.Sprintf("F%d", row), r.Verified)
		f.SetCellValue(sheet, fmt.Sprintf("G%d", row), r.Active)
		f.SetCellValue(sheet, fmt.Sprintf("H%d", row), r.GatePassCode)
		f.SetCellValue(sheet, fmt.Sprintf("I%d", row), r.CreatedAt.Format("2006-01-02"))
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", apperr.Wrap(apperr.TransientIO, "failed to write workbook", err)
	}
	return buf.Bytes(), fmt.Sprintf("residents-%s.xlsx", est.EstateCode), nil
}

// PinsXLSX exports the pin inventory with usage status.
func (s *service) PinsXLSX(estateID uint) ([]byte, string, error) {
	est, err := s.estateSvc.GetByID(estateID)
	if err != nil {
		return nil, "", err
	}

	pins, err := s.gateRepo.ListPins(estateID, "")
	if err != nil {
		return nil, "", apperr.Wrap(apperr.TransientIO, "failed to load pins", err)
	}

	f := excelize.NewFile()
	defer f.Close()
	sheet := "Pins"
	f.SetSheetName("Sheet1", sheet)
	writeHeader(f, sheet, []string{"Serial", "Pin", "Status", "Expires", "Used At", "Issued"})

	for i, p := range pins {
		row := i + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), p.Serial)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), p.Pin)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), string(p.Status))
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), p.ExpiresAt.Format("2006-01-02"))
		if p.UsedAt != nil {
			f.SetCellValue(sheet, fmt.Sprintf("E%d", row), p.UsedAt.Format("2006-01-02 15:04"))
		}
		f.SetCellValue(sheet, fmt.Sprintf("F%d", row), p.CreatedAt.Format("2006-01-02"))
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", apperr.Wrap(apperr.TransientIO, "failed to write workbook", err)
	}
	return buf.Bytes(), fmt.Sprintf("pins-%s.xlsx", est.EstateCode), nil
}

// VisitLogXLSX exports the visit request history.
func (s *service) VisitLogXLSX(estateID uint) ([]byte, string, error) {
	est, err := s.estateSvc.GetByID(estateID)
	if err != nil {
		return nil, "", err
	}

	reqs, err := s.gateRepo.ListVisitRequestsForEstate(estateID, "")
	if err != nil {
		return nil, "", apperr.Wrap(apperr.TransientIO, "failed to load visit requests", err)
	}

	f := excelize.NewFile()
	defer f.Close()
	sheet := "Visits"
	f.SetSheetName("Sheet1", sheet)
	writeHeader(f, sheet, []string{"Request", "Visitor", "Phone", "Purpose", "Host", "Status", "Filed", "Decided"})

	for i, r := range reqs {
		row := i + 2
		host := r.ResidentName
		if r.Purpose == gateaccess.PurposeOfficial {
			host = "Estate Office"
		}
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), r.RequestCode)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), r.VisitorName)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), r.VisitorPhone)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), string(r.Purpose))
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), host)
		f.SetCellValue(sheet, fmt.Sprintf("F%d", row), string(r.Status))
		f.SetCellValue(sheet, fmt.Sprintf("G%d", row), r.CreatedAt.Format("2006-01-02 15:04"))
		if r.DecidedAt != nil {
			f.SetCellValue(sheet, fmt.Sprintf("H%d", row), r.DecidedAt.Format("2006-01-02 15:04"))
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", apperr.Wrap(apperr.TransientIO, "failed to write workbook", err)
	}
	return buf.Bytes(), fmt.Sprintf("visit-log-%s.xlsx", est.EstateCode), nil
}

// PinSheetPDF renders the estate's unused pins as printable tear-off slips.
func (s *service) PinSheetPDF(estateID uint) ([]byte, string, error) {
	est, err := s.estateSvc.GetByID(estateID)
	if err != nil {
		return nil, "", err
	}

	pins, err := s.gateRepo.ListPins(estateID, gateaccess.PinActive)
	if err != nil {
		return nil, "", apperr.Wrap(apperr.TransientIO, "failed to load pins", err)
	}
	if len(pins) == 0 {
		return nil, "", apperr.New(apperr.NotFound, "no active pins to print")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 10, est.Name+" - Gate Pins", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(0, 5, "Generated "+time.Now().Format("02 Jan 2006"), "", 1, "C", false, 0, "")
	pdf.Ln(3)

	// three slips per row
	const slipW, slipH = 63.0, 28.0
	x, y := 10.0, pdf.GetY()
	for i, p := range pins {
		if i > 0 && i%3 == 0 {
			x = 10.0
			y += slipH + 2
			if y+slipH > 287 {
				pdf.AddPage()
				y = 10.0
			}
		}
		pdf.Rect(x, y, slipW, slipH, "D")
		pdf.SetXY(x+3, y+3)
		pdf.SetFont("Helvetica", "", 7)
		pdf.CellFormat(slipW-6, 4, p.Serial, "", 2, "L", false, 0, "")
		pdf.SetFont("Helvetica", "B", 18)
		pdf.CellFormat(slipW-6, 10, p.Pin, "", 2, "C", false, 0, "")
		pdf.SetFont("Helvetica", "", 7)
		pdf.CellFormat(slipW-6, 4, "Valid until "+p.ExpiresAt.Format("02 Jan 2006"), "", 2, "L", false, 0, "")
		x += slipW + 2
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", apperr.Wrap(apperr.TransientIO, "failed to render pin sheet", err)
	}
	return buf.Bytes(), fmt.Sprintf("pin-sheet-%s.pdf", est.EstateCode), nil
}
