package estate

import (
	"errors"
	"log"
	"strings"

	"gorm.io/gorm"

	"github.com/tundeajayi/estate-management-backend/internal/apperr"
	"github.com/tundeajayi/estate-management-backend/internal/auth"
	"github.com/tundeajayi/estate-management-backend/utils"
)

type RegisterInput struct {
	Name      string `json:"name" binding:"required"`
	Address   string `json:"address" binding:"required"`
	AdminName string `json:"admin_name" binding:"required"`
	Phone     string `json:"phone" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
}

type BankDetailsInput struct {
	BankName      string `json:"bank_name" binding:"required"`
	AccountNumber string `json:"account_number" binding:"required"`
	AccountName   string `json:"account_name" binding:"required"`
}

type ChangeRequestInput struct {
	Subject string `json:"subject" binding:"required"`
	Details string `json:"details" binding:"required"`
}

// PublicEstate is the registration-form view of an estate: just enough for a
// resident or visitor to confirm they picked the right community.
type PublicEstate struct {
	EstateCode string `json:"estate_id"`
	Name       string `json:"name"`
	Address    string `json:"address"`
	Approved   bool   `json:"approved"`
}

type Service interface {
	Register(input RegisterInput) (*Estate, error)
	GetByID(id uint) (*Estate, error)
	GetByCode(code string) (*Estate, error)
	LookupPublic(code string) (*PublicEstate, error)
	UpdateBankDetails(estateID uint, input BankDetailsInput) (*Estate, error)

	AddStreet(estateID uint, name string) (*EstateStreet, error)
	ListStreets(estateID uint) ([]EstateStreet, error)
	RemoveStreet(estateID, streetID uint) error

	SubmitChangeRequest(estateID uint, adminName string, input ChangeRequestInput) (*ChangeRequest, error)
	ListChangeRequests(estateID uint) ([]ChangeRequest, error)
}

type service struct {
	repo    Repository
	authSvc auth.Service
}

func NewService(repo Repository, authSvc auth.Service) Service {
	return &service{repo: repo, authSvc: authSvc}
}

// Register creates a pending estate together with its admin login. The estate
// stays invisible to residents until the super admin approves it.
func (s *service) Register(input RegisterInput) (*Estate, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if existing, err := s.repo.FindByEmail(email); err == nil && existing != nil {
		return nil, apperr.New(apperr.InvalidState, "an estate with this email already exists")
	}

	code, err := s.uniqueEstateCode()
	if err != nil {
		return nil, err
	}

	estate := &Estate{
		EstateCode: code,
		Name:       strings.TrimSpace(input.Name),
		Address:    strings.TrimSpace(input.Address),
		AdminName:  strings.TrimSpace(input.AdminName),
		Phone:      strings.TrimSpace(input.Phone),
		Email:      email,
		Approved:   false,
	}
	if err := s.repo.Create(estate); err != nil {
		log.Printf("❌ Failed to create estate %s: %v", estate.Name, err)
		return nil, apperr.Wrap(apperr.TransientIO, "failed to create estate", err)
	}

	admin, err := s.authSvc.Register(auth.RegisterInput{
		FullName: estate.AdminName,
		Email:    email,
		Password: input.Password,
		Role:     "estateadmin",
		Phone:    estate.Phone,
		EstateID: &estate.ID,
	})
	if err != nil {
		// roll the estate back so a retry with the same email can succeed
		if delErr := s.repo.Delete(estate.ID); delErr != nil {
			log.Printf("⚠️ Failed to roll back estate %d after admin creation error: %v", estate.ID, delErr)
		}
		return nil, err
	}

	estate.CreatedBy = admin.ID
	if err := s.repo.Update(estate); err != nil {
		log.Printf("⚠️ Failed to record creator on estate %d: %v", estate.ID, err)
	}

	log.Printf("✅ Estate registered: %s (%s), awaiting approval", estate.Name, estate.EstateCode)
	return estate, nil
}

func (s *service) uniqueEstateCode() (string, error) {
	for attempt := 0; attempt < 5; attempt++ {
		code := utils.NewEstateCode()
		if _, err := s.repo.FindByCode(code); errors.Is(err, gorm.ErrRecordNotFound) {
			return code, nil
		}
	}
	return "", apperr.New(apperr.TransientIO, "could not allocate a unique estate code")
}

func (s *service) GetByID(id uint) (*Estate, error) {
	e, err := s.repo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.NotFound, "estate not found")
		}
		return nil, apperr.Wrap(apperr.TransientIO, "failed to fetch estate", err)
	}
	return e, nil
}

func (s *service) GetByCode(code string) (*Estate, error) {
	e, err := s.repo.FindByCode(strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.NotFound, "estate not found")
		}
		return nil, apperr.Wrap(apperr.TransientIO, "failed to fetch estate", err)
	}
	return e, nil
}

// LookupPublic resolves an estate code for unauthenticated registration and
// visit forms. Unapproved estates are reported as not found.
func (s *service) LookupPublic(code string) (*PublicEstate, error) {
	e, err := s.GetByCode(code)
	if err != nil {
		return nil, err
	}
	if !e.Approved {
		return nil, apperr.New(apperr.NotFound, "estate not found")
	}
	return &PublicEstate{
		EstateCode: e.EstateCode,
		Name:       e.Name,
		Address:    e.Address,
		Approved:   e.Approved,
	}, nil
}

func (s *service) UpdateBankDetails(estateID uint, input BankDetailsInput) (*Estate, error) {
	e, err := s.GetByID(estateID)
	if err != nil {
		return nil, err
	}
	e.BankName = strings.TrimSpace(input.BankName)
	e.AccountNumber = strings.TrimSpace(input.AccountNumber)
	e.AccountName = strings.TrimSpace(input.AccountName)
	if err := s.repo.Update(e); err != nil {
		return nil, apperr.Wrap(apperr.TransientIO, "failed to update bank details", err)
	}
	return e, nil
}

func (s *service) AddStreet(estateID uint, name string) (*EstateStreet, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.New(apperr.InvalidState, "street name is required")
	}
	if _, err := s.GetByID(estateID); err != nil {
		return nil, err
	}
	street := &EstateStreet{EstateID: estateID, Name: name}
	if err := s.repo.CreateStreet(street); err != nil {
		return nil, apperr.Wrap(apperr.TransientIO, "failed to add street", err)
	}
	return street, nil
}

func (s *service) ListStreets(estateID uint) ([]EstateStreet, error) {
	streets, err := s.repo.ListStreets(estateID)
	if err != nil {
		return nil, apperr.Wrap(apperr.TransientIO, "failed to list streets", err)
	}
	return streets, nil
}

func (s *service) RemoveStreet(estateID, streetID uint) error {
	if _, err := s.repo.FindStreet(estateID, streetID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.New(apperr.NotFound, "street not found")
		}
		return apperr.Wrap(apperr.TransientIO, "failed to fetch street", err)
	}
	if err := s.repo.DeleteStreet(estateID, streetID); err != nil {
		return apperr.Wrap(apperr.TransientIO, "failed to remove street", err)
	}
	return nil
}

func (s *service) SubmitChangeRequest(estateID uint, adminName string, input ChangeRequestInput) (*ChangeRequest, error) {
	if _, err := s.GetByID(estateID); err != nil {
		return nil, err
	}
	req := &ChangeRequest{
		EstateID:  estateID,
		AdminName: adminName,
		Subject:   strings.TrimSpace(input.Subject),
		Details:   strings.TrimSpace(input.Details),
		Status:    "pending",
	}
	if err := s.repo.CreateChangeRequest(req); err != nil {
		return nil, apperr.Wrap(apperr.TransientIO, "failed to submit change request", err)
	}
	log.Printf("📨 Change request %d submitted for estate %d: %s", req.ID, estateID, req.Subject)
	return req, nil
}

func (s *service) ListChangeRequests(estateID uint) ([]ChangeRequest, error) {
	reqs, err := s.repo.ListChangeRequests(&estateID, "")
	if err != nil {
		return nil, apperr.Wrap(apperr.TransientIO, "failed to list change requests", err)
	}
	return reqs, nil
}
