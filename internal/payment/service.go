package payment

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	razorpay "github.com/razorpay/razorpay-go"
	"gorm.io/gorm"

	"github.com/tundeajayi/estate-management-backend/config"
	"github.com/tundeajayi/estate-management-backend/internal/apperr"
	"github.com/tundeajayi/estate-management-backend/internal/resident"
	"github.com/tundeajayi/estate-management-backend/utils"
)

type CreateLevyInput struct {
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	Amount      int64      `json:"amount" binding:"required,min=1"`
	Currency    string     `json:"currency"`
	DueDate     *time.Time `json:"due_date"`
}

type ConfirmInput struct {
	Reference         string `json:"reference" binding:"required"`
	RazorpayOrderID   string `json:"razorpay_order_id" binding:"required"`
	RazorpayPaymentID string `json:"razorpay_payment_id" binding:"required"`
	RazorpaySignature string `json:"razorpay_signature" binding:"required"`
}

// InitiateResult carries what the client needs to open the checkout.
type InitiateResult struct {
	Payment  *Payment `json:"payment"`
	OrderID  string   `json:"order_id"`
	Amount   int64    `json:"amount"`
	Currency string   `json:"currency"`
	Key      string   `json:"key"`
}

type Service interface {
	CreateLevy(estateID uint, estateCode string, input CreateLevyInput) (*Levy, error)
	ListLevies(estateID uint) ([]Levy, error)

	Initiate(residentID, levyID uint) (*InitiateResult, error)
	Confirm(input ConfirmInput) (*Payment, error)
	ListForResident(residentID uint) ([]Payment, error)
	ListForEstate(estateID uint, status string) ([]Payment, error)
	Receipt(residentID uint, reference string) ([]byte, string, error)
}

type service struct {
	repo        Repository
	residentSvc resident.Service
	cfg         *config.Config
	client      *razorpay.Client
}

func NewService(repo Repository, residentSvc resident.Service, cfg *config.Config) Service {
	var client *razorpay.Client
	if cfg.RazorpayKey != "" && cfg.RazorpaySecret != "" {
		client = razorpay.NewClient(cfg.RazorpayKey, cfg.RazorpaySecret)
	} else {
		log.Println("⚠️ Razorpay keys not set, online payment disabled")
	}
	return &service{repo: repo, residentSvc: residentSvc, cfg: cfg, client: client}
}

func (s *service) CreateLevy(estateID uint, estateCode string, in CreateLevyInput) (*Levy, error) {
	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = "NGN"
	}
	levy := &Levy{
		EstateID:    estateID,
		EstateCode:  estateCode,
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Amount:      in.Amount,
		Currency:    currency,
		DueDate:     in.DueDate,
	}
	if err := s.repo.CreateLevy(levy); err != nil {
		return nil, apperr.Wrap(apperr.TransientIO, "failed to create levy", err)
	}
	log.Printf("💰 Levy %q created for estate %s", levy.Title, estateCode)
	return levy, nil
}

func (s *service) ListLevies(estateID uint) ([]Levy, error) {
	levies, err := s.repo.ListLevies(estateID)
	if err != nil {
		return nil, apperr.Wrap(apperr.TransientIO, "failed to list levies", err)
	}
	return levies, nil
}

// Initiate opens a payment attempt for a levy: one PAY- reference, one
// Razorpay order. Paying the same levy twice is refused up front.
func (s *service) Initiate(residentID, levyID uint) (*InitiateResult, error) {
	if s.client == nil {
		return nil, apperr.New(apperr.InvalidState, "online payment is not configured")
	}

	res, err := s.residentSvc.GetByID(residentID)
	if err != nil {
		return nil, err
	}
	if !res.Active {
		return nil, apperr.New(apperr.InvalidState, "this resident has moved out of the estate")
	}

	levy, err := s.repo.FindLevyByID(levyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.NotFound, "levy not found")
		}
		return nil, apperr.Wrap(apperr.TransientIO, "failed to fetch levy", err)
	}
	if levy.EstateID != res.EstateID {
		return nil, apperr.New(apperr.ScopeMismatch, "this levy belongs to a different estate")
	}

	alreadyPaid, err := s.repo.HasPaidPayment(res.ID, levy.ID)
	if err != nil {
		return nil, apperr.Wrap(apperr.TransientIO, "failed to check payment history", err)
	}
	if alreadyPaid {
		return nil, apperr.New(apperr.InvalidState, "this levy has already been paid")
	}

	reference := utils.NewPaymentRef()
	order, err := s.client.Order.Create(map[string]interface{}{
		"amount":   levy.Amount,
		"currency": levy.Currency,
		"receipt":  reference,
	}, nil)
	if err != nil {
		return nil, apperr.Wrap(apperr.TransientIO, "failed to create payment order", err)
	}
	orderID, _ := order["id"].(string)

	p := &Payment{
		EstateID:        res.EstateID,
		EstateCode:      res.EstateCode,
		ResidentID:      res.ID,
		ResidentName:    res.FullName,
		LevyID:          levy.ID,
		LevyTitle:       levy.Title,
		Reference:       reference,
		Amount:          levy.Amount,
		Currency:        levy.Currency,
		Status:          "pending",
		RazorpayOrderID: orderID,
	}
	if err := s.repo.CreatePayment(p); err != nil {
		return nil, apperr.Wrap(apperr.TransientIO, "failed to record payment", err)
	}

	log.Printf("💳 Payment %s initiated by %s for levy %q", reference, res.UserID, levy.Title)
	return &InitiateResult{
		Payment:  p,
		OrderID:  orderID,
		Amount:   levy.Amount,
		Currency: levy.Currency,
		Key:      s.cfg.RazorpayKey,
	}, nil
}

// Confirm verifies the gateway signature and settles the payment. The guarded
// update makes a replayed confirmation a conflict rather than a double settle.
func (s *service) Confirm(in ConfirmInput) (*Payment, error) {
	p, err := s.repo.FindPaymentByReference(in.Reference)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.NotFound, "payment not found")
		}
		return nil, apperr.Wrap(apperr.TransientIO, "failed to fetch payment", err)
	}
	if p.RazorpayOrderID != in.RazorpayOrderID {
		return nil, apperr.New(apperr.InvalidState, "order mismatch")
	}

	if !s.verifySignature(in.RazorpayOrderID, in.RazorpayPaymentID, in.RazorpaySignature) {
		if _, ferr := s.repo.MarkFailedIfPending(p.ID); ferr != nil {
			log.Printf("⚠️ Failed to mark payment %s failed: %v", p.Reference, ferr)
		}
		return nil, apperr.New(apperr.InvalidState, "payment signature verification failed")
	}

	rows, err := s.repo.MarkPaidIfPending(p.ID, in.RazorpayPaymentID, time.Now())
	if err != nil {
		return nil, apperr.Wrap(apperr.TransientIO, "failed to settle payment", err)
	}
	if rows == 0 {
		return nil, apperr.New(apperr.InvalidState, "this payment has already been settled")
	}

	utils.PublishGateEvent(utils.GateEvent{
		Type:     "LEVY_PAID",
		EstateID: p.EstateCode,
		Payload: map[string]interface{}{
			"reference": p.Reference,
			"levy":      p.LevyTitle,
			"amount":    p.Amount,
		},
		OccurredAt: time.Now(),
	})

	log.Printf("✅ Payment %s settled", p.Reference)
	return s.repo.FindPaymentByReference(p.Reference)
}

func (s *service) verifySignature(orderID, paymentID, signature string) bool {
	mac := hmac.New(sha256.New, []byte(s.cfg.RazorpaySecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

func (s *service) ListForResident(residentID uint) ([]Payment, error) {
	payments, err := s.repo.ListPaymentsByResident(residentID)
	if err != nil {
		return nil, apperr.Wrap(apperr.TransientIO, "failed to list payments", err)
	}
	return payments, nil
}

func (s *service) ListForEstate(estateID uint, status string) ([]Payment, error) {
	payments, err := s.repo.ListPaymentsByEstate(estateID, status)
	if err != nil {
		return nil, apperr.Wrap(apperr.TransientIO, "failed to list payments", err)
	}
	return payments, nil
}

// Receipt renders a PDF receipt for the resident's own settled payment.
func (s *service) Receipt(residentID uint, reference string) ([]byte, string, error) {
	p, err := s.repo.FindPaymentByReference(strings.ToUpper(strings.TrimSpace(reference)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", apperr.New(apperr.NotFound, "payment not found")
		}
		return nil, "", apperr.Wrap(apperr.TransientIO, "failed to fetch payment", err)
	}
	if p.ResidentID != residentID {
		return nil, "", apperr.New(apperr.ScopeMismatch, "this payment belongs to another resident")
	}
	if p.Status != "paid" {
		return nil, "", apperr.New(apperr.InvalidState, "only settled payments have receipts")
	}

	pdf := gofpdf.New("P", "mm", "A5", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, "Payment Receipt", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 10)
	rows := [][2]string{
		{"Reference", p.Reference},
		{"Resident", p.ResidentName},
		{"Estate", p.EstateCode},
		{"Levy", p.LevyTitle},
		{"Amount", fmt.Sprintf("%s %.2f", p.Currency, float64(p.Amount)/100)},
		{"Paid At", p.PaidAt.Format("02 Jan 2006 15:04")},
	}
	for _, row := range rows {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(35, 8, row[0], "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(0, 8, row[1], "", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", apperr.Wrap(apperr.TransientIO, "failed to render receipt", err)
	}
	return buf.Bytes(), fmt.Sprintf("receipt-%s.pdf", p.Reference), nil
}
