package resident

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/tundeajayi/estate-management-backend/internal/apperr"
)

// IDCard renders a printable resident ID card as a PDF. The QR code encodes
// the resident's USR- login ID so gate staff can scan instead of typing.
func (s *service) IDCard(residentID uint) ([]byte, string, error) {
	res, err := s.GetByID(residentID)
	if err != nil {
		return nil, "", err
	}

	png, err := qrcode.Encode(res.UserID, qrcode.Medium, 256)
	if err != nil {
		return nil, "", apperr.Wrap(apperr.TransientIO, "failed to render QR code", err)
	}

	// Credit-card sized page, landscape
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "mm",
		Size:    gofpdf.SizeType{Wd: 85.6, Ht: 54},
	})
	pdf.SetMargins(4, 4, 4)
	pdf.AddPage()

	pdf.SetFillColor(21, 101, 52)
	pdf.Rect(0, 0, 85.6, 12, "F")
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetXY(4, 3)
	pdf.CellFormat(60, 6, res.EstateName, "", 0, "L", false, 0, "")

	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetXY(4, 16)
	pdf.CellFormat(50, 6, res.FullName, "", 2, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(50, 4.5, "Resident ID: "+res.UserID, "", 2, "L", false, 0, "")
	if res.Street != "" {
		addr := res.Street
		if res.HouseNumber != "" {
			addr = res.HouseNumber + " " + addr
		}
		pdf.CellFormat(50, 4.5, addr, "", 2, "L", false, 0, "")
	}
	pdf.CellFormat(50, 4.5, "Estate: "+res.EstateCode, "", 2, "L", false, 0, "")
	if res.Verified {
		pdf.SetTextColor(21, 101, 52)
		pdf.CellFormat(50, 4.5, "VERIFIED RESIDENT", "", 2, "L", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
	}

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("resident-qr", opts, bytes.NewReader(png))
	pdf.ImageOptions("resident-qr", 58, 16, 24, 24, false, opts, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", apperr.Wrap(apperr.TransientIO, "failed to render ID card", err)
	}

	filename := fmt.Sprintf("id-card-%s.pdf", res.UserID)
	return buf.Bytes(), filename, nil
}

// GatePassSlip renders the resident's gate pass as a small printable slip with
// the GP- code in a QR, for residents who keep a paper copy on the dashboard.
func (s *service) GatePassSlip(residentID uint) ([]byte, string, error) {
	res, err := s.GetByID(residentID)
	if err != nil {
		return nil, "", err
	}
	if res.GatePassCode == "" {
		return nil, "", apperr.New(apperr.InvalidState, "no gate pass has been issued yet")
	}

	png, err := qrcode.Encode(res.GatePassCode, qrcode.Medium, 256)
	if err != nil {
		return nil, "", apperr.Wrap(apperr.TransientIO, "failed to render QR code", err)
	}

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "mm",
		Size:    gofpdf.SizeType{Wd: 85.6, Ht: 54},
	})
	pdf.SetMargins(4, 4, 4)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetXY(4, 5)
	pdf.CellFormat(45, 6, res.EstateName, "", 2, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(45, 4.5, res.FullName, "", 2, "L", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Courier", "B", 14)
	pdf.CellFormat(45, 8, res.GatePassCode, "", 2, "L", false, 0, "")

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("gatepass-qr", opts, bytes.NewReader(png))
	pdf.ImageOptions("gatepass-qr", 52, 12, 30, 30, false, opts, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", apperr.Wrap(apperr.TransientIO, "failed to render gate pass slip", err)
	}

	filename := fmt.Sprintf("gate-pass-%s.pdf", res.UserID)
	return buf.Bytes(), filename, nil
}
