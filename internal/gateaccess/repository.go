package gateaccess

import (
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	CreateVisitorPass(pass *VisitorPass) error
	FindVisitorPassByCode(estateID uint, code string) (*VisitorPass, error)
	ListVisitorPasses(estateID uint, residentID *uint) ([]VisitorPass, error)
	DeleteVisitorPass(id uint) error

	CreateVisitRequest(req *VisitRequest) error
	FindVisitRequestByID(id uint) (*VisitRequest, error)
	FindVisitRequestByCode(code string) (*VisitRequest, error)
	ListVisitRequestsForResident(residentID uint, status RequestStatus) ([]VisitRequest, error)
	ListVisitRequestsForEstate(estateID uint, status RequestStatus) ([]VisitRequest, error)
	// DecideVisitRequestIfPending transitions pending -> status in one guarded
	// update and reports whether a row changed. On approval the minted access
	// code and pass id are stored on the request for the tracking surface.
	DecideVisitRequestIfPending(id uint, status RequestStatus, note, accessCode string, passID *uint, decidedAt time.Time) (int64, error)

	CreatePin(pin *AccessPin) error
	ListPins(estateID uint, status PinStatus) ([]AccessPin, error)
	CountPins(estateID uint, status PinStatus) (int64, error)
	// RedeemPinIfActive marks a live, unexpired pin used. The row count tells
	// the caller whether this attempt won.
	RedeemPinIfActive(estateID uint, pin string, now time.Time) (int64, error)
	FindActivePin(estateID uint, pin string, now time.Time) (*AccessPin, error)

	CreateToken(token *ResidentToken) error
	FindTokenByCode(code string) (*ResidentToken, error)
	ListTokens(estateID uint, status TokenStatus) ([]ResidentToken, error)
	// ActivateTokenIfUnused binds an unused token to a resident.
	ActivateTokenIfUnused(code string, residentID uint, now time.Time) (int64, error)
}

type gormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

// =============================
// Visitor passes
// =============================

func (r *gormRepository) CreateVisitorPass(pass *VisitorPass) error {
	return r.db.Create(pass).Error
}

func (r *gormRepository) FindVisitorPassByCode(estateID uint, code string) (*VisitorPass, error) {
	var p VisitorPass
	if err := r.db.Where("estate_id = ? AND code = ?", estateID, code).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *gormRepository) ListVisitorPasses(estateID uint, residentID *uint) ([]VisitorPass, error) {
	query := r.db.Where("estate_id = ?", estateID)
	if residentID != nil {
		query = query.Where("resident_id = ?", *residentID)
	}
	var passes []VisitorPass
	err := query.Order("created_at DESC").Limit(200).Find(&passes).Error
	return passes, err
}

func (r *gormRepository) DeleteVisitorPass(id uint) error {
	return r.db.Delete(&VisitorPass{}, id).Error
}

// =============================
// Visit requests
// =============================

func (r *gormRepository) CreateVisitRequest(req *VisitRequest) error {
	return r.db.Create(req).Error
}

func (r *gormRepository) FindVisitRequestByID(id uint) (*VisitRequest, error) {
	var req VisitRequest
	if err := r.db.First(&req, id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *gormRepository) FindVisitRequestByCode(code string) (*VisitRequest, error) {
	var req VisitRequest
	if err := r.db.Where("request_code = ?", code).First(&req).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *gormRepository) ListVisitRequestsForResident(residentID uint, status RequestStatus) ([]VisitRequest, error) {
	query := r.db.Where("resident_id = ?", residentID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var reqs []VisitRequest
	err := query.Order("created_at DESC").Find(&reqs).Error
	return reqs, err
}

func (r *gormRepository) ListVisitRequestsForEstate(estateID uint, status RequestStatus) ([]VisitRequest, error) {
	query := r.db.Where("estate_id = ?", estateID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var reqs []VisitRequest
	err := query.Order("created_at DESC").Find(&reqs).Error
	return reqs, err
}

func (r *gormRepository) DecideVisitRequestIfPending(id uint, status RequestStatus, note, accessCode string, passID *uint, decidedAt time.Time) (int64, error) {
	updates := map[string]interface{}{
		"status":     status,
		"note":       note,
		"decided_at": decidedAt,
	}
	if passID != nil {
		updates["visitor_pass_id"] = *passID
		updates["access_code"] = accessCode
	}
	res := r.db.Model(&VisitRequest{}).
		Where("id = ? AND status = ?", id, RequestPending).
		Updates(updates)
	return res.RowsAffected, res.Error
}

// =============================
// Pins
// =============================

func (r *gormRepository) CreatePin(pin *AccessPin) error {
	return r.db.Create(pin).Error
}

func (r *gormRepository) ListPins(estateID uint, status PinStatus) ([]AccessPin, error) {
	query := r.db.Where("estate_id = ?", estateID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var pins []AccessPin
	err := query.Order("created_at DESC").Find(&pins).Error
	return pins, err
}

func (r *gormRepository) CountPins(estateID uint, status PinStatus) (int64, error) {
	query := r.db.Model(&AccessPin{}).Where("estate_id = ?", estateID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var count int64
	err := query.Count(&count).Error
	return count, err
}

func (r *gormRepository) RedeemPinIfActive(estateID uint, pin string, now time.Time) (int64, error) {
	res := r.db.Model(&AccessPin{}).
		Where("estate_id = ? AND pin = ? AND status = ? AND expires_at > ?", estateID, pin, PinActive, now).
		Updates(map[string]interface{}{
			"status":  PinUsed,
			"used_at": now,
		})
	return res.RowsAffected, res.Error
}

func (r *gormRepository) FindActivePin(estateID uint, pin string, now time.Time) (*AccessPin, error) {
	var p AccessPin
	err := r.db.Where("estate_id = ? AND pin = ?", estateID, pin).
		Order("created_at DESC").
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// =============================
// Resident tokens
// =============================

func (r *gormRepository) CreateToken(token *ResidentToken) error {
	return r.db.Create(token).Error
}

func (r *gormRepository) FindTokenByCode(code string) (*ResidentToken, error) {
	var t ResidentToken
	if err := r.db.Where("code = ?", code).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *gormRepository) ListTokens(estateID uint, status TokenStatus) ([]ResidentToken, error) {
	query := r.db.Where("estate_id = ?", estateID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var tokens []ResidentToken
	err := query.Order("created_at DESC").Find(&tokens).Error
	return tokens, err
}

func (r *gormRepository) ActivateTokenIfUnused(code string, residentID uint, now time.Time) (int64, error) {
	res := r.db.Model(&ResidentToken{}).
		Where("code = ? AND status = ? AND expires_at > ?", code, TokenUnused, now).
		Updates(map[string]interface{}{
			"status":       TokenActive,
			"resident_id":  residentID,
			"activated_at": now,
		})
	return res.RowsAffected, res.Error
}
