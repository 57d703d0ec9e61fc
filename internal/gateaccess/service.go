package gateaccess

import (
	"encoding/json"
	"errors"
	"log"
	"regexp"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/tundeajayi/estate-management-backend/internal/apperr"
	"github.com/tundeajayi/estate-management-backend/internal/estate"
	"github.com/tundeajayi/estate-management-backend/internal/resident"
	"github.com/tundeajayi/estate-management-backend/utils"
)

var pinPattern = regexp.MustCompile(`^[0-9]{6}$`)

// VerifyResult is what the gate sees after a code check.
type VerifyResult struct {
	Granted bool   `json:"granted"`
	Mode    string `json:"mode"` // resident | visitor | official | token | pin
	Message string `json:"message"`

	ResidentName string `json:"resident_name,omitempty"`
	VisitorName  string `json:"visitor_name,omitempty"`
	HostName     string `json:"host_name,omitempty"`
	Street       string `json:"street,omitempty"`
	HouseNumber  string `json:"house_number,omitempty"`
}

type VisitRequestInput struct {
	EstateCode string `json:"estate_id" binding:"required,len=6"`
	// resident (default) needs resident_user_id; official is addressed to the
	// estate office and carries no host
	Purpose        RequestPurpose `json:"purpose" binding:"omitempty,oneof=resident official"`
	ResidentUserID string         `json:"resident_user_id"`
	VisitorName    string         `json:"visitor_name" binding:"required"`
	VisitorPhone   string         `json:"visitor_phone" binding:"required"`
	Reason         string         `json:"reason"`
}

type BatchResult struct {
	Requested int `json:"requested"`
	Issued    int `json:"issued"`
	Failed    int `json:"failed"`
}

type Service interface {
	Verify(estateCode, code string) (*VerifyResult, error)

	CreateVisitorPass(residentID uint, visitorName, purpose string) (*VisitorPass, error)
	CreateOfficialPass(estateID uint, visitorName, purpose string) (*VisitorPass, error)
	ListVisitorPassesForResident(residentID uint) ([]VisitorPass, error)

	CreateVisitRequest(input VisitRequestInput) (*VisitRequest, error)
	TrackVisitRequest(requestCode string) (*VisitRequest, error)
	ListVisitRequestsForResident(residentID uint, status RequestStatus) ([]VisitRequest, error)
	ListVisitRequestsForEstate(estateID uint, status RequestStatus) ([]VisitRequest, error)
	ApproveVisitRequest(residentID, requestID uint, note string) (*VisitRequest, *VisitorPass, error)
	RejectVisitRequest(residentID, requestID uint, note string) (*VisitRequest, error)
	ApproveVisitRequestByEstate(estateID, requestID uint, note string) (*VisitRequest, *VisitorPass, error)
	RejectVisitRequestByEstate(estateID, requestID uint, note string) (*VisitRequest, error)

	GeneratePins(estateID uint, count int) (*BatchResult, []AccessPin, error)
	ListPins(estateID uint, status PinStatus) ([]AccessPin, error)

	GenerateTokens(estateID uint, count int) (*BatchResult, []ResidentToken, error)
	ListTokens(estateID uint, status TokenStatus) ([]ResidentToken, error)
	ActivateToken(residentID uint, code string) (*ResidentToken, error)
}

type service struct {
	repo        Repository
	residentSvc resident.Service
	estateSvc   estate.Service
}

func NewService(repo Repository, residentSvc resident.Service, estateSvc estate.Service) Service {
	return &service{repo: repo, residentSvc: residentSvc, estateSvc: estateSvc}
}

// =============================
// Verification
// =============================

// Verify is the single entry point for the gate: any code the estate issues
// lands here, and the prefix decides how it is checked.
func (s *service) Verify(estateCode, code string) (*VerifyResult, error) {
	est, err := s.estateSvc.GetByCode(estateCode)
	if err != nil {
		return nil, err
	}

	code = strings.ToUpper(strings.TrimSpace(code))

	var result *VerifyResult
	switch {
	case strings.HasPrefix(code, "GP-"):
		result, err = s.verifyResidentPass(est, code)
	case strings.HasPrefix(code, "VIS-"), strings.HasPrefix(code, "OFF-"):
		result, err = s.verifyVisitorPass(est, code)
	case strings.HasPrefix(code, "RES-"):
		result, err = s.verifyResidentToken(est, code)
	case pinPattern.MatchString(code):
		result, err = s.redeemPin(est, code)
	default:
		result = &VerifyResult{Granted: false, Mode: "unknown", Message: "Invalid Pass"}
	}
	if err != nil {
		return nil, err
	}

	utils.PublishGateEvent(utils.GateEvent{
		Type:     "GATE_VERIFIED",
		EstateID: est.EstateCode,
		Payload: map[string]interface{}{
			"mode":    result.Mode,
			"granted": result.Granted,
			"message": result.Message,
		},
		OccurredAt: time.Now(),
	})
	return result, nil
}

func (s *service) verifyResidentPass(est *estate.Estate, code string) (*VerifyResult, error) {
	// hot path: gate scans hit the same pass repeatedly at peak hours. The
	// key is estate-scoped so a hit at one gate says nothing at another.
	cacheKey := utils.GatePassCacheKey(est.EstateCode, code)
	if cached, ok := utils.CacheGet(cacheKey); ok {
		var r VerifyResult
		if err := json.Unmarshal([]byte(cached), &r); err == nil {
			return &r, nil
		}
	}

	res, err := s.residentSvc.GetByGatePass(code)
	if err != nil {
		if apperr.Is(err, apperr.NotFound) {
			return &VerifyResult{Granted: false, Mode: "resident", Message: "Invalid Pass"}, nil
		}
		return nil, err
	}
	if res.EstateID != est.ID {
		return &VerifyResult{Granted: false, Mode: "resident", Message: "Invalid Pass"}, nil
	}
	if !res.Active {
		return &VerifyResult{Granted: false, Mode: "resident", Message: "This resident has moved out of the estate"}, nil
	}
	if !res.Verified {
		return &VerifyResult{Granted: false, Mode: "resident", Message: "This resident has not been verified"}, nil
	}

	result := &VerifyResult{
		Granted:      true,
		Mode:         "resident",
		Message:      "Access granted",
		ResidentName: res.FullName,
		Street:       res.Street,
		HouseNumber:  res.HouseNumber,
	}
	if blob, err := json.Marshal(result); err == nil {
		utils.CacheSet(cacheKey, string(blob), 5*time.Minute)
	}
	return result, nil
}

func (s *service) verifyVisitorPass(est *estate.Estate, code string) (*VerifyResult, error) {
	pass, err := s.repo.FindVisitorPassByCode(est.ID, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &VerifyResult{Granted: false, Mode: "visitor", Message: "Invalid Pass"}, nil
		}
		return nil, apperr.Wrap(apperr.TransientIO, "failed to check pass", err)
	}

	mode := "visitor"
	if pass.Type == PassOfficial {
		mode = "official"
	}
	return &VerifyResult{
		Granted:     true,
		Mode:        mode,
		Message:     "Access granted",
		VisitorName: pass.VisitorName,
		HostName:    pass.HostName,
	}, nil
}

func (s *service) verifyResidentToken(est *estate.Estate, code string) (*VerifyResult, error) {
	token, err := s.repo.FindTokenByCode(code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &VerifyResult{Granted: false, Mode: "token", Message: "Invalid Pass"}, nil
		}
		return nil, apperr.Wrap(apperr.TransientIO, "failed to check token", err)
	}
	if token.EstateID != est.ID {
		return &VerifyResult{Granted: false, Mode: "token", Message: "Invalid Pass"}, nil
	}
	if token.Status != TokenActive || token.ResidentID == nil {
		return &VerifyResult{Granted: false, Mode: "token", Message: "This token has not been activated"}, nil
	}
	if time.Now().After(token.ExpiresAt) {
		return &VerifyResult{Granted: false, Mode: "token", Message: "This token has expired"}, nil
	}

	res, err := s.residentSvc.GetByID(*token.ResidentID)
	if err != nil {
		return nil, err
	}
	if !res.Active {
		return &VerifyResult{Granted: false, Mode: "token", Message: "This resident has moved out of the estate"}, nil
	}
	return &VerifyResult{
		Granted:      true,
		Mode:         "token",
		Message:      "Access granted",
		ResidentName: res.FullName,
		Street:       res.Street,
		HouseNumber:  res.HouseNumber,
	}, nil
}

func (s *service) redeemPin(est *estate.Estate, pin string) (*VerifyResult, error) {
	now := time.Now()
	rows, err := s.repo.RedeemPinIfActive(est.ID, pin, now)
	if err != nil {
		return nil, apperr.Wrap(apperr.TransientIO, "failed to redeem pin", err)
	}
	if rows > 0 {
		return &VerifyResult{Granted: true, Mode: "pin", Message: "Access granted, pin used"}, nil
	}

	// lost or never had it: explain which
	existing, err := s.repo.FindActivePin(est.ID, pin, now)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &VerifyResult{Granted: false, Mode: "pin", Message: "Invalid Pass"}, nil
		}
		return nil, apperr.Wrap(apperr.TransientIO, "failed to check pin", err)
	}
	if existing.Status == PinUsed {
		return &VerifyResult{Granted: false, Mode: "pin", Message: "This pin has already been used"}, nil
	}
	return &VerifyResult{Granted: false, Mode: "pin", Message: "This pin has expired"}, nil
}

// =============================
// Visitor passes
// =============================

func (s *service) CreateVisitorPass(residentID uint, visitorName, purpose string) (*VisitorPass, error) {
	res, err := s.residentSvc.GetByID(residentID)
	if err != nil {
		return nil, err
	}
	if !res.Verified || !res.Active {
		return nil, apperr.New(apperr.InvalidState, "only verified residents can invite visitors")
	}

	pass := &VisitorPass{
		EstateID:    res.EstateID,
		EstateCode:  res.EstateCode,
		ResidentID:  &res.ID,
		HostName:    res.FullName,
		VisitorName: strings.TrimSpace(visitorName),
		Purpose:     strings.TrimSpace(purpose),
		Code:        utils.NewVisitorCode(),
		Type:        PassVisitor,
	}
	if err := s.repo.CreateVisitorPass(pass); err != nil {
		return nil, apperr.Wrap(apperr.TransientIO, "failed to create visitor pass", err)
	}

	log.Printf("🎫 Visitor pass %s issued by %s for %s", pass.Code, res.UserID, pass.VisitorName)
	return pass, nil
}

func (s *service) CreateOfficialPass(estateID uint, visitorName, purpose string) (*VisitorPass, error) {
	est, err := s.estateSvc.GetByID(estateID)
	if err != nil {
		return nil, err
	}

	pass := &VisitorPass{
		EstateID:    est.ID,
		EstateCode:  est.EstateCode,
		HostName:    est.Name + " Office",
		VisitorName: strings.TrimSpace(visitorName),
		Purpose:     strings.TrimSpace(purpose),
		Code:        utils.NewOfficialCode(),
		Type:        PassOfficial,
	}
	if err := s.repo.CreateVisitorPass(pass); err != nil {
		return nil, apperr.Wrap(apperr.TransientIO, "failed to create official pass", err)
	}

	log.Printf("🎫 Official pass %s issued for %s", pass.Code, pass.VisitorName)
	return pass, nil
}

func (s *service) ListVisitorPassesForResident(residentID uint) ([]VisitorPass, error) {
	res, err := s.residentSvc.GetByID(residentID)
	if err != nil {
		return nil, err
	}
	passes, err := s.repo.ListVisitorPasses(res.EstateID, &res.ID)
	if err != nil {
		return nil, apperr.Wrap(apperr.TransientIO, "failed to list passes", err)
	}
	return passes, nil
}

// =============================
// Visit requests
// =============================

// CreateVisitRequest files a visitor's ask to enter the estate. A resident
// request resolves its host by USR- id; an official request is addressed to
// the estate office. The visitor gets back a REQ- code to track the decision.
func (s *service) CreateVisitRequest(in VisitRequestInput) (*VisitRequest, error) {
	est, err := s.estateSvc.GetByCode(in.EstateCode)
	if err != nil {
		return nil, err
	}
	if !est.Approved {
		return nil, apperr.New(apperr.InvalidState, "this estate is not yet open")
	}

	purpose := in.Purpose
	if purpose == "" {
		purpose = PurposeResident
	}

	req := &VisitRequest{
		EstateID:     est.ID,
		EstateCode:   est.EstateCode,
		RequestCode:  utils.NewRequestCode(),
		VisitorName:  strings.TrimSpace(in.VisitorName),
		VisitorPhone: strings.TrimSpace(in.VisitorPhone),
		Purpose:      purpose,
		Reason:       strings.TrimSpace(in.Reason),
		Status:       RequestPending,
	}

	switch purpose {
	case PurposeResident:
		if strings.TrimSpace(in.ResidentUserID) == "" {
			return nil, apperr.New(apperr.InvalidState, "a resident visit request must name the host resident")
		}
		host, err := s.residentSvc.GetByUserID(in.ResidentUserID)
		if err != nil {
			return nil, err
		}
		if host.EstateID != est.ID {
			return nil, apperr.New(apperr.NotFound, "resident not found")
		}
		if !host.Active {
			return nil, apperr.New(apperr.InvalidState, "this resident has moved out of the estate")
		}
		req.ResidentID = &host.ID
		req.ResidentUserID = host.UserID
		req.ResidentName = host.FullName
	case PurposeOfficial:
		// no host to resolve; the estate office decides these
	default:
		return nil, apperr.New(apperr.InvalidState, "unknown visit purpose")
	}

	if err := s.repo.CreateVisitRequest(req); err != nil {
		return nil, apperr.Wrap(apperr.TransientIO, "failed to create visit request", err)
	}

	utils.PublishGateEvent(utils.GateEvent{
		Type:       "VISIT_REQUESTED",
		EstateID:   est.EstateCode,
		ResidentID: req.ResidentUserID,
		Payload: map[string]interface{}{
			"request_code": req.RequestCode,
			"visitor_name": req.VisitorName,
			"purpose":      req.Purpose,
		},
		OccurredAt: time.Now(),
	})

	if purpose == PurposeOfficial {
		log.Printf("📨 Official visit request %s filed at %s", req.RequestCode, est.EstateCode)
	} else {
		log.Printf("📨 Visit request %s filed for resident %s", req.RequestCode, req.ResidentUserID)
	}
	return req, nil
}

func (s *service) TrackVisitRequest(requestCode string) (*VisitRequest, error) {
	req, err := s.repo.FindVisitRequestByCode(strings.ToUpper(strings.TrimSpace(requestCode)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.NotFound, "visit request not found")
		}
		return nil, apperr.Wrap(apperr.TransientIO, "failed to track visit request", err)
	}
	return req, nil
}

func (s *service) ListVisitRequestsForResident(residentID uint, status RequestStatus) ([]VisitRequest, error) {
	reqs, err := s.repo.ListVisitRequestsForResident(residentID, status)
	if err != nil {
		return nil, apperr.Wrap(apperr.TransientIO, "failed to list visit requests", err)
	}
	return reqs, nil
}

func (s *service) ListVisitRequestsForEstate(estateID uint, status RequestStatus) ([]VisitRequest, error) {
	reqs, err := s.repo.ListVisitRequestsForEstate(estateID, status)
	if err != nil {
		return nil, apperr.Wrap(apperr.TransientIO, "failed to list visit requests", err)
	}
	return reqs, nil
}

// ApproveVisitRequest lets the host resident approve a pending request
// addressed to them, minting a VIS- pass.
func (s *service) ApproveVisitRequest(residentID, requestID uint, note string) (*VisitRequest, *VisitorPass, error) {
	req, err := s.requireOwnRequest(residentID, requestID)
	if err != nil {
		return nil, nil, err
	}

	pass := &VisitorPass{
		EstateID:    req.EstateID,
		EstateCode:  req.EstateCode,
		ResidentID:  req.ResidentID,
		HostName:    req.ResidentName,
		VisitorName: req.VisitorName,
		Purpose:     req.Reason,
		Code:        utils.NewVisitorCode(),
		Type:        PassVisitor,
	}
	return s.approve(req, pass, note)
}

// ApproveVisitRequestByEstate lets the estate office approve a pending
// official request, minting an OFF- pass held by the office.
func (s *service) ApproveVisitRequestByEstate(estateID, requestID uint, note string) (*VisitRequest, *VisitorPass, error) {
	req, err := s.requireEstateRequest(estateID, requestID)
	if err != nil {
		return nil, nil, err
	}
	est, err := s.estateSvc.GetByID(req.EstateID)
	if err != nil {
		return nil, nil, err
	}

	pass := &VisitorPass{
		EstateID:    req.EstateID,
		EstateCode:  req.EstateCode,
		HostName:    est.Name + " Office",
		VisitorName: req.VisitorName,
		Purpose:     req.Reason,
		Code:        utils.NewOfficialCode(),
		Type:        PassOfficial,
	}
	return s.approve(req, pass, note)
}

// approve persists the minted pass, then flips the request in one guarded
// update so two devices approving at the same moment mint exactly one pass.
func (s *service) approve(req *VisitRequest, pass *VisitorPass, note string) (*VisitRequest, *VisitorPass, error) {
	if err := s.repo.CreateVisitorPass(pass); err != nil {
		return nil, nil, apperr.Wrap(apperr.TransientIO, "failed to create visitor pass", err)
	}

	rows, err := s.repo.DecideVisitRequestIfPending(req.ID, RequestApproved, strings.TrimSpace(note), pass.Code, &pass.ID, time.Now())
	if err != nil {
		return nil, nil, apperr.Wrap(apperr.TransientIO, "failed to approve visit request", err)
	}
	if rows == 0 {
		// another device decided first; the pass we minted must not survive
		if delErr := s.repo.DeleteVisitorPass(pass.ID); delErr != nil {
			log.Printf("⚠️ Failed to discard orphan pass %d: %v", pass.ID, delErr)
		}
		return nil, nil, apperr.New(apperr.InvalidState, "this visit request has already been decided")
	}

	utils.PublishGateEvent(utils.GateEvent{
		Type:       "VISIT_APPROVED",
		EstateID:   req.EstateCode,
		ResidentID: req.ResidentUserID,
		Payload: map[string]interface{}{
			"request_code": req.RequestCode,
			"visitor_name": req.VisitorName,
			"access_code":  pass.Code,
		},
		OccurredAt: time.Now(),
	})

	log.Printf("✅ Visit request %s approved, code %s issued", req.RequestCode, pass.Code)
	updated, err := s.repo.FindVisitRequestByID(req.ID)
	if err != nil {
		return nil, nil, apperr.Wrap(apperr.TransientIO, "failed to reload visit request", err)
	}
	return updated, pass, nil
}

func (s *service) RejectVisitRequest(residentID, requestID uint, note string) (*VisitRequest, error) {
	req, err := s.requireOwnRequest(residentID, requestID)
	if err != nil {
		return nil, err
	}
	return s.reject(req, note)
}

func (s *service) RejectVisitRequestByEstate(estateID, requestID uint, note string) (*VisitRequest, error) {
	req, err := s.requireEstateRequest(estateID, requestID)
	if err != nil {
		return nil, err
	}
	return s.reject(req, note)
}

func (s *service) reject(req *VisitRequest, note string) (*VisitRequest, error) {
	rows, err := s.repo.DecideVisitRequestIfPending(req.ID, RequestRejected, strings.TrimSpace(note), "", nil, time.Now())
	if err != nil {
		return nil, apperr.Wrap(apperr.TransientIO, "failed to reject visit request", err)
	}
	if rows == 0 {
		return nil, apperr.New(apperr.InvalidState, "this visit request has already been decided")
	}

	utils.PublishGateEvent(utils.GateEvent{
		Type:       "VISIT_REJECTED",
		EstateID:   req.EstateCode,
		ResidentID: req.ResidentUserID,
		Payload:    map[string]interface{}{"request_code": req.RequestCode},
		OccurredAt: time.Now(),
	})

	return s.repo.FindVisitRequestByID(req.ID)
}

func (s *service) findVisitRequest(requestID uint) (*VisitRequest, error) {
	req, err := s.repo.FindVisitRequestByID(requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.NotFound, "visit request not found")
		}
		return nil, apperr.Wrap(apperr.TransientIO, "failed to fetch visit request", err)
	}
	return req, nil
}

func (s *service) requireOwnRequest(residentID, requestID uint) (*VisitRequest, error) {
	req, err := s.findVisitRequest(requestID)
	if err != nil {
		return nil, err
	}
	if req.Purpose != PurposeResident || req.ResidentID == nil || *req.ResidentID != residentID {
		return nil, apperr.New(apperr.ScopeMismatch, "this visit request is addressed to another resident")
	}
	return req, nil
}

func (s *service) requireEstateRequest(estateID, requestID uint) (*VisitRequest, error) {
	req, err := s.findVisitRequest(requestID)
	if err != nil {
		return nil, err
	}
	if req.EstateID != estateID {
		return nil, apperr.New(apperr.ScopeMismatch, "this visit request belongs to another estate")
	}
	if req.Purpose != PurposeOfficial {
		return nil, apperr.New(apperr.ScopeMismatch, "only the host resident can decide this request")
	}
	return req, nil
}

// =============================
// Batch issuance
// =============================

// GeneratePins mints a batch of one-time gate pins expiring at year end. A
// failed row does not abort the batch; the result reports the split.
func (s *service) GeneratePins(estateID uint, count int) (*BatchResult, []AccessPin, error) {
	if count < 1 || count > 500 {
		return nil, nil, apperr.New(apperr.InvalidState, "batch size must be between 1 and 500")
	}
	est, err := s.estateSvc.GetByID(estateID)
	if err != nil {
		return nil, nil, err
	}

	expiry := EndOfYear(time.Now())
	result := &BatchResult{Requested: count}
	issued := make([]AccessPin, 0, count)

	for i := 0; i < count; i++ {
		pin := AccessPin{
			EstateID:   est.ID,
			EstateCode: est.EstateCode,
			Serial:     utils.NewPinSerial(i),
			Pin:        utils.NewAccessPin(),
			Status:     PinActive,
			ExpiresAt:  expiry,
		}
		if err := s.repo.CreatePin(&pin); err != nil {
			log.Printf("⚠️ Failed to issue pin %s: %v", pin.Serial, err)
			result.Failed++
			continue
		}
		result.Issued++
		issued = append(issued, pin)
	}

	if result.Issued == 0 {
		return nil, nil, apperr.New(apperr.TransientIO, "failed to issue any pins")
	}

	utils.PublishGateEvent(utils.GateEvent{
		Type:       "PINS_ISSUED",
		EstateID:   est.EstateCode,
		Payload:    map[string]interface{}{"issued": result.Issued, "failed": result.Failed},
		OccurredAt: time.Now(),
	})

	log.Printf("🔢 Issued %d/%d pins for estate %s", result.Issued, count, est.EstateCode)
	return result, issued, nil
}

func (s *service) ListPins(estateID uint, status PinStatus) ([]AccessPin, error) {
	pins, err := s.repo.ListPins(estateID, status)
	if err != nil {
		return nil, apperr.Wrap(apperr.TransientIO, "failed to list pins", err)
	}
	return pins, nil
}

// GenerateTokens mints a batch of annual resident tokens.
func (s *service) GenerateTokens(estateID uint, count int) (*BatchResult, []ResidentToken, error) {
	if count < 1 || count > 500 {
		return nil, nil, apperr.New(apperr.InvalidState, "batch size must be between 1 and 500")
	}
	est, err := s.estateSvc.GetByID(estateID)
	if err != nil {
		return nil, nil, err
	}

	expiry := EndOfYear(time.Now())
	result := &BatchResult{Requested: count}
	issued := make([]ResidentToken, 0, count)

	for i := 0; i < count; i++ {
		token := ResidentToken{
			EstateID:   est.ID,
			EstateCode: est.EstateCode,
			Serial:     utils.NewTokenSerial(i),
			Code:       utils.NewResidentTokenCode(),
			Status:     TokenUnused,
			ExpiresAt:  expiry,
		}
		if err := s.repo.CreateToken(&token); err != nil {
			log.Printf("⚠️ Failed to issue token %s: %v", token.Serial, err)
			result.Failed++
			continue
		}
		result.Issued++
		issued = append(issued, token)
	}

	if result.Issued == 0 {
		return nil, nil, apperr.New(apperr.TransientIO, "failed to issue any tokens")
	}

	utils.PublishGateEvent(utils.GateEvent{
		Type:       "TOKENS_ISSUED",
		EstateID:   est.EstateCode,
		Payload:    map[string]interface{}{"issued": result.Issued, "failed": result.Failed},
		OccurredAt: time.Now(),
	})

	log.Printf("🎟️ Issued %d/%d tokens for estate %s", result.Issued, count, est.EstateCode)
	return result, issued, nil
}

func (s *service) ListTokens(estateID uint, status TokenStatus) ([]ResidentToken, error) {
	tokens, err := s.repo.ListTokens(estateID, status)
	if err != nil {
		return nil, apperr.Wrap(apperr.TransientIO, "failed to list tokens", err)
	}
	return tokens, nil
}

// ActivateToken binds an unused token to the resident activating it. The
// guarded update means two residents typing the same code race for one win.
func (s *service) ActivateToken(residentID uint, code string) (*ResidentToken, error) {
	res, err := s.residentSvc.GetByID(residentID)
	if err != nil {
		return nil, err
	}
	if !res.Verified || !res.Active {
		return nil, apperr.New(apperr.InvalidState, "only verified residents can activate a token")
	}

	code = strings.ToUpper(strings.TrimSpace(code))
	token, err := s.repo.FindTokenByCode(code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.NotFound, "token not found")
		}
		return nil, apperr.Wrap(apperr.TransientIO, "failed to look up token", err)
	}
	if token.EstateID != res.EstateID {
		return nil, apperr.New(apperr.ScopeMismatch, "this token belongs to a different estate")
	}

	now := time.Now()
	rows, err := s.repo.ActivateTokenIfUnused(code, res.ID, now)
	if err != nil {
		return nil, apperr.Wrap(apperr.TransientIO, "failed to activate token", err)
	}
	if rows == 0 {
		if now.After(token.ExpiresAt) {
			return nil, apperr.New(apperr.InvalidState, "this token has expired")
		}
		return nil, apperr.New(apperr.InvalidState, "this token has already been activated")
	}

	if err := s.residentSvc.SetAnnualToken(res.ID, code); err != nil {
		log.Printf("⚠️ Token %s activated but resident %s not updated: %v", code, res.UserID, err)
	}

	utils.PublishGateEvent(utils.GateEvent{
		Type:       "TOKEN_ACTIVATED",
		EstateID:   res.EstateCode,
		ResidentID: res.UserID,
		Payload:    map[string]interface{}{"token": code},
		OccurredAt: now,
	})

	return s.repo.FindTokenByCode(code)
}
