package resident

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/tundeajayi/estate-management-backend/config"
	"github.com/tundeajayi/estate-management-backend/internal/apperr"
	"github.com/tundeajayi/estate-management-backend/internal/estate"
	"github.com/tundeajayi/estate-management-backend/utils"
)

type RegisterInput struct {
	FullName    string `json:"full_name" binding:"required"`
	Phone       string `json:"phone" binding:"required"`
	Email       string `json:"email" binding:"omitempty,email"`
	EstateCode  string `json:"estate_id" binding:"required,len=6"`
	Street      string `json:"street"`
	HouseNumber string `json:"house_number"`
	Password    string `json:"password" binding:"required,min=6"`
}

type LoginInput struct {
	UserID   string `json:"user_id" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResult bundles the resident snapshot with a signed session token and
// the payload their ID card QR encodes.
type LoginResult struct {
	Token    string    `json:"token"`
	Resident *Resident `json:"resident"`
	QRData   string    `json:"qr_data"`
}

type Service interface {
	Register(input RegisterInput) (*Resident, error)
	Login(input LoginInput) (*LoginResult, error)
	GetByID(id uint) (*Resident, error)
	GetByUserID(userID string) (*Resident, error)
	GetByGatePass(code string) (*Resident, error)
	List(estateID uint, filter ListFilter) ([]Resident, int64, error)

	// Scan resolves a scanned resident user ID for an estate admin.
	Scan(estateID uint, userID string) (*ScanResult, error)
	Approve(estateID, residentID uint) (*Resident, error)
	Reject(estateID, residentID uint) (*Resident, error)
	Deactivate(estateID, residentID uint) (*Resident, error)

	// RegenerateGatePass rotates a verified resident's pass code.
	RegenerateGatePass(estateID, residentID uint) (*Resident, error)
	// SetAnnualToken records the RES- token a resident activated.
	SetAnnualToken(residentID uint, code string) error
	// SetPhoto records the stored location of the resident's photo.
	SetPhoto(residentID uint, photoURL string) (*Resident, error)
	IDCard(residentID uint) ([]byte, string, error)
	GatePassSlip(residentID uint) ([]byte, string, error)
}

type service struct {
	repo      Repository
	estateSvc estate.Service
	cfg       *config.Config
}

func NewService(repo Repository, estateSvc estate.Service, cfg *config.Config) Service {
	return &service{repo: repo, estateSvc: estateSvc, cfg: cfg}
}

// Register creates an unverified resident in an approved estate. The resident
// gets a USR- login ID but no gate pass until an admin approves them in person.
func (s *service) Register(in RegisterInput) (*Resident, error) {
	est, err := s.estateSvc.GetByCode(in.EstateCode)
	if err != nil {
		return nil, err
	}
	if !est.Approved {
		return nil, apperr.New(apperr.InvalidState, "this estate is not yet open for registration")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Wrap(apperr.TransientIO, "failed to secure password", err)
	}

	userID, err := s.uniqueUserID()
	if err != nil {
		return nil, err
	}

	res := &Resident{
		FullName:     strings.TrimSpace(in.FullName),
		Phone:        strings.TrimSpace(in.Phone),
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		EstateID:     est.ID,
		EstateCode:   est.EstateCode,
		EstateName:   est.Name,
		Street:       strings.TrimSpace(in.Street),
		HouseNumber:  strings.TrimSpace(in.HouseNumber),
		UserID:       userID,
		PasswordHash: string(hash),
		Verified:     false,
		Active:       true,
	}
	if err := s.repo.Create(res); err != nil {
		log.Printf("❌ Failed to register resident %s: %v", res.FullName, err)
		return nil, apperr.Wrap(apperr.TransientIO, "failed to register resident", err)
	}

	log.Printf("✅ Resident %s registered in estate %s as %s", res.FullName, res.EstateCode, res.UserID)
	return res, nil
}

func (s *service) uniqueUserID() (string, error) {
	for attempt := 0; attempt < 5; attempt++ {
		id := utils.NewResidentUserID()
		if _, err := s.repo.FindByUserID(id); errors.Is(err, gorm.ErrRecordNotFound) {
			return id, nil
		}
	}
	return "", apperr.New(apperr.TransientIO, "could not allocate a unique resident ID")
}

func (s *service) Login(in LoginInput) (*LoginResult, error) {
	res, err := s.repo.FindByUserID(strings.ToUpper(strings.TrimSpace(in.UserID)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.NotFound, "invalid resident ID or password")
		}
		return nil, apperr.Wrap(apperr.TransientIO, "failed to look up resident", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(res.PasswordHash), []byte(in.Password)); err != nil {
		return nil, apperr.New(apperr.NotFound, "invalid resident ID or password")
	}
	if !res.Active {
		return nil, apperr.New(apperr.InvalidState, "this resident has moved out of the estate")
	}

	ttl := time.Duration(s.cfg.JWTAccessTTLHours) * time.Hour
	if ttl == 0 {
		ttl = 24 * time.Hour
	}
	claims := jwt.MapClaims{
		"resident_id": res.ID,
		"user_id":     res.UserID,
		"role":        "resident",
		"estate_id":   res.EstateCode,
		"exp":         time.Now().Add(ttl).Unix(),
		"iat":         time.Now().Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTAccessSecret))
	if err != nil {
		return nil, apperr.Wrap(apperr.TransientIO, "failed to sign session token", err)
	}

	return &LoginResult{
		Token:    token,
		Resident: res,
		QRData:   res.UserID,
	}, nil
}

func (s *service) GetByID(id uint) (*Resident, error) {
	res, err := s.repo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.NotFound, "resident not found")
		}
		return nil, apperr.Wrap(apperr.TransientIO, "failed to fetch resident", err)
	}
	return res, nil
}

func (s *service) GetByUserID(userID string) (*Resident, error) {
	res, err := s.repo.FindByUserID(strings.ToUpper(strings.TrimSpace(userID)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.NotFound, "resident not found")
		}
		return nil, apperr.Wrap(apperr.TransientIO, "failed to fetch resident", err)
	}
	return res, nil
}

func (s *service) GetByGatePass(code string) (*Resident, error) {
	res, err := s.repo.FindByGatePass(strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.NotFound, "resident not found")
		}
		return nil, apperr.Wrap(apperr.TransientIO, "failed to fetch resident", err)
	}
	return res, nil
}

func (s *service) List(estateID uint, filter ListFilter) ([]Resident, int64, error) {
	residents, total, err := s.repo.ListByEstate(estateID, filter)
	if err != nil {
		return nil, 0, apperr.Wrap(apperr.TransientIO, "failed to list residents", err)
	}
	return residents, total, nil
}

// Scan resolves a scanned USR- code for the admin's estate. A resident from a
// different estate is a scope mismatch, never silently shown.
func (s *service) Scan(estateID uint, userID string) (*ScanResult, error) {
	res, err := s.GetByUserID(userID)
	if err != nil {
		return nil, err
	}
	if res.EstateID != estateID {
		return nil, apperr.New(apperr.ScopeMismatch, "this resident belongs to a different estate")
	}

	status := "unverified"
	switch {
	case !res.Active:
		status = "inactive"
	case res.Verified:
		status = "verified"
	}
	return &ScanResult{Resident: res, Status: status}, nil
}

// Approve verifies a resident and issues their gate pass code in one guarded
// update, so two admins approving at once produce exactly one pass. Approving
// an already-verified resident reissues a fresh code instead of failing.
func (s *service) Approve(estateID, residentID uint) (*Resident, error) {
	res, err := s.requireInEstate(estateID, residentID)
	if err != nil {
		return nil, err
	}
	if !res.Active {
		return nil, apperr.New(apperr.InvalidState, "this resident has moved out of the estate")
	}

	code := utils.NewGatePassCode()
	rows, err := s.repo.ApproveIfUnverified(res.ID, code)
	if err != nil {
		return nil, apperr.Wrap(apperr.TransientIO, "failed to approve resident", err)
	}
	if rows == 0 {
		// already verified: re-approval rotates the pass code
		return s.RegenerateGatePass(estateID, res.ID)
	}

	utils.PublishGateEvent(utils.GateEvent{
		Type:       "RESIDENT_APPROVED",
		EstateID:   res.EstateCode,
		ResidentID: res.UserID,
		Payload:    map[string]interface{}{"gate_pass_code": code},
		OccurredAt: time.Now(),
	})

	log.Printf("✅ Resident %s approved, gate pass %s issued", res.UserID, code)
	return s.GetByID(res.ID)
}

// Reject marks a scanned resident as not verified without removing the account.
func (s *service) Reject(estateID, residentID uint) (*Resident, error) {
	res, err := s.requireInEstate(estateID, residentID)
	if err != nil {
		return nil, err
	}
	if res.Verified {
		res.Verified = false
		if err := s.repo.Update(res); err != nil {
			return nil, apperr.Wrap(apperr.TransientIO, "failed to reject resident", err)
		}
		// the gate must stop honoring a cached verification immediately
		if res.GatePassCode != "" {
			utils.CacheDelete(utils.GatePassCacheKey(res.EstateCode, res.GatePassCode))
		}
	}
	return res, nil
}

// Deactivate marks a resident as moved out, revoking their gate pass.
func (s *service) Deactivate(estateID, residentID uint) (*Resident, error) {
	res, err := s.requireInEstate(estateID, residentID)
	if err != nil {
		return nil, err
	}

	oldPass := res.GatePassCode
	rows, err := s.repo.DeactivateIfActive(res.ID)
	if err != nil {
		return nil, apperr.Wrap(apperr.TransientIO, "failed to deactivate resident", err)
	}
	if rows == 0 {
		return nil, apperr.New(apperr.InvalidState, "resident is already inactive")
	}

	if oldPass != "" {
		utils.CacheDelete(utils.GatePassCacheKey(res.EstateCode, oldPass))
	}
	utils.PublishGateEvent(utils.GateEvent{
		Type:       "RESIDENT_DEACTIVATED",
		EstateID:   res.EstateCode,
		ResidentID: res.UserID,
		OccurredAt: time.Now(),
	})

	log.Printf("🚫 Resident %s deactivated, gate pass revoked", res.UserID)
	return s.GetByID(res.ID)
}

// RegenerateGatePass rotates the pass code of a verified resident, e.g. after
// the old code leaked.
func (s *service) RegenerateGatePass(estateID, residentID uint) (*Resident, error) {
	res, err := s.requireInEstate(estateID, residentID)
	if err != nil {
		return nil, err
	}
	if !res.Verified || !res.Active {
		return nil, apperr.New(apperr.InvalidState, "only verified active residents hold a gate pass")
	}

	oldPass := res.GatePassCode
	res.GatePassCode = utils.NewGatePassCode()
	if err := s.repo.Update(res); err != nil {
		return nil, apperr.Wrap(apperr.TransientIO, "failed to rotate gate pass", err)
	}
	if oldPass != "" {
		utils.CacheDelete(utils.GatePassCacheKey(res.EstateCode, oldPass))
	}
	return res, nil
}

func (s *service) SetAnnualToken(residentID uint, code string) error {
	res, err := s.GetByID(residentID)
	if err != nil {
		return err
	}
	res.AnnualToken = code
	if err := s.repo.Update(res); err != nil {
		return apperr.Wrap(apperr.TransientIO, "failed to record annual token", err)
	}
	return nil
}

func (s *service) SetPhoto(residentID uint, photoURL string) (*Resident, error) {
	res, err := s.GetByID(residentID)
	if err != nil {
		return nil, err
	}
	res.PhotoURL = photoURL
	if err := s.repo.Update(res); err != nil {
		return nil, apperr.Wrap(apperr.TransientIO, "failed to update photo", err)
	}
	return res, nil
}

func (s *service) requireInEstate(estateID, residentID uint) (*Resident, error) {
	res, err := s.GetByID(residentID)
	if err != nil {
		return nil, err
	}
	if res.EstateID != estateID {
		return nil, apperr.New(apperr.ScopeMismatch, "this resident belongs to a different estate")
	}
	return res, nil
}
