// Package superadmin holds the platform back office: estate approval,
// estate admin oversight and change request resolution.
package superadmin

import (
	"errors"
	"log"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/tundeajayi/estate-management-backend/internal/apperr"
	"github.com/tundeajayi/estate-management-backend/internal/auth"
	"github.com/tundeajayi/estate-management-backend/internal/estate"
	"github.com/tundeajayi/estate-management-backend/internal/resident"
	"github.com/tundeajayi/estate-management-backend/utils"
)

type DecideEstateInput struct {
	Approved bool   `json:"approved"`
	Note     string `json:"note"`
}

// EstateOverview is the back-office listing row.
type EstateOverview struct {
	Estate        estate.Estate `json:"estate"`
	ResidentCount int64         `json:"resident_count"`
	VerifiedCount int64         `json:"verified_count"`
}

// PlatformStats is the back-office dashboard summary.
type PlatformStats struct {
	TotalEstates    int64 `json:"total_estates"`
	ApprovedEstates int64 `json:"approved_estates"`
	PendingEstates  int64 `json:"pending_estates"`
}

type CreateAdminInput struct {
	FullName string `json:"full_name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type Service interface {
	ListEstates(approved *bool) ([]EstateOverview, error)
	DecideEstate(estateID uint, input DecideEstateInput) (*estate.Estate, error)
	DeleteEstate(estateID uint) error
	Stats() (*PlatformStats, error)
	ListEstateAdmins() ([]auth.User, error)
	ListSuperAdmins() ([]auth.User, error)
	CreateSuperAdmin(input CreateAdminInput) (*auth.User, error)
	DeleteSuperAdmin(id uint) error
	ListChangeRequests(status string) ([]estate.ChangeRequest, error)
	ResolveChangeRequest(id uint) error
}

type service struct {
	estateRepo   estate.Repository
	authRepo     auth.Repository
	residentRepo resident.Repository
}

func NewService(estateRepo estate.Repository, authRepo auth.Repository, residentRepo resident.Repository) Service {
	return &service{estateRepo: estateRepo, authRepo: authRepo, residentRepo: residentRepo}
}

func (s *service) ListEstates(approved *bool) ([]EstateOverview, error) {
	estates, err := s.estateRepo.List(approved)
	if err != nil {
		return nil, apperr.Wrap(apperr.TransientIO, "failed to list estates", err)
	}

	overviews := make([]EstateOverview, 0, len(estates))
	for _, e := range estates {
		total, verified, err := s.residentRepo.CountByEstate(e.ID)
		if err != nil {
			log.Printf("⚠️ Failed to count residents for estate %d: %v", e.ID, err)
		}
		overviews = append(overviews, EstateOverview{
			Estate:        e,
			ResidentCount: total,
			VerifiedCount: verified,
		})
	}
	return overviews, nil
}

// DecideEstate approves or rejects an estate. Approval activates the estate
// admin's login; either way the admin is emailed the decision.
func (s *service) DecideEstate(estateID uint, in DecideEstateInput) (*estate.Estate, error) {
	e, err := s.estateRepo.FindByID(estateID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.NotFound, "estate not found")
		}
		return nil, apperr.Wrap(apperr.TransientIO, "failed to fetch estate", err)
	}

	now := time.Now()
	if in.Approved {
		if e.Approved {
			return nil, apperr.New(apperr.InvalidState, "estate is already approved")
		}
		e.Approved = true
		e.ApprovedAt = &now
		e.RejectedAt = nil
		e.RejectionReason = ""
	} else {
		e.Approved = false
		e.RejectedAt = &now
		e.RejectionReason = in.Note
	}
	if err := s.estateRepo.Update(e); err != nil {
		return nil, apperr.Wrap(apperr.TransientIO, "failed to update estate", err)
	}

	adminStatus := "pending"
	if in.Approved {
		adminStatus = "active"
	}
	if err := s.authRepo.UpdateStatusByEstate(e.ID, adminStatus); err != nil {
		log.Printf("⚠️ Failed to update admin status for estate %d: %v", e.ID, err)
	}

	if err := utils.SendEstateApprovalEmail(e.Email, e.AdminName, e.Name, in.Approved, in.Note); err != nil {
		log.Printf("⚠️ Failed to email estate decision to %s: %v", e.Email, err)
	}

	if in.Approved {
		log.Printf("✅ Estate %s (%s) approved", e.Name, e.EstateCode)
	} else {
		log.Printf("🚫 Estate %s (%s) rejected", e.Name, e.EstateCode)
	}
	return e, nil
}

func (s *service) DeleteEstate(estateID uint) error {
	if _, err := s.estateRepo.FindByID(estateID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.New(apperr.NotFound, "estate not found")
		}
		return apperr.Wrap(apperr.TransientIO, "failed to fetch estate", err)
	}
	if err := s.estateRepo.Delete(estateID); err != nil {
		return apperr.Wrap(apperr.TransientIO, "failed to delete estate", err)
	}
	log.Printf("🗑️ Estate %d deleted", estateID)
	return nil
}

func (s *service) Stats() (*PlatformStats, error) {
	all, err := s.estateRepo.List(nil)
	if err != nil {
		return nil, apperr.Wrap(apperr.TransientIO, "failed to load estates", err)
	}

	stats := &PlatformStats{TotalEstates: int64(len(all))}
	for _, e := range all {
		if e.Approved {
			stats.ApprovedEstates++
		} else {
			stats.PendingEstates++
		}
	}
	return stats, nil
}

func (s *service) ListEstateAdmins() ([]auth.User, error) {
	admins, err := s.authRepo.ListByRole("estateadmin")
	if err != nil {
		return nil, apperr.Wrap(apperr.TransientIO, "failed to list estate admins", err)
	}
	return admins, nil
}

func (s *service) ListSuperAdmins() ([]auth.User, error) {
	admins, err := s.authRepo.ListByRole("superadmin")
	if err != nil {
		return nil, apperr.Wrap(apperr.TransientIO, "failed to list super admins", err)
	}
	return admins, nil
}

// CreateSuperAdmin is the only path that mints a superadmin account; the
// public registration endpoint refuses the role.
func (s *service) CreateSuperAdmin(in CreateAdminInput) (*auth.User, error) {
	role, err := s.authRepo.FindRoleByName("superadmin")
	if err != nil {
		return nil, apperr.Wrap(apperr.TransientIO, "superadmin role not seeded", err)
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))
	if _, err := s.authRepo.FindByEmail(email); err == nil {
		return nil, apperr.New(apperr.InvalidState, "a user with this email already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Wrap(apperr.TransientIO, "failed to hash password", err)
	}

	user := &auth.User{
		FullName:     strings.TrimSpace(in.FullName),
		Email:        email,
		PasswordHash: string(hash),
		RoleID:       role.ID,
		Status:       "active",
	}
	if err := s.authRepo.Create(user); err != nil {
		return nil, apperr.Wrap(apperr.TransientIO, "failed to create super admin", err)
	}
	user.Role = *role

	log.Printf("👤 Super admin %s created", user.Email)
	return user, nil
}

// DeleteSuperAdmin removes a superadmin account but never the last one.
func (s *service) DeleteSuperAdmin(id uint) error {
	admins, err := s.authRepo.ListByRole("superadmin")
	if err != nil {
		return apperr.Wrap(apperr.TransientIO, "failed to list super admins", err)
	}

	found := false
	for _, a := range admins {
		if a.ID == id {
			found = true
			break
		}
	}
	if !found {
		return apperr.New(apperr.NotFound, "super admin not found")
	}
	if len(admins) == 1 {
		return apperr.New(apperr.InvalidState, "cannot delete the last super admin")
	}

	rows, err := s.authRepo.DeleteByID(id)
	if err != nil {
		return apperr.Wrap(apperr.TransientIO, "failed to delete super admin", err)
	}
	if rows == 0 {
		return apperr.New(apperr.NotFound, "super admin not found")
	}
	log.Printf("🗑️ Super admin %d deleted", id)
	return nil
}

func (s *service) ListChangeRequests(status string) ([]estate.ChangeRequest, error) {
	reqs, err := s.estateRepo.ListChangeRequests(nil, status)
	if err != nil {
		return nil, apperr.Wrap(apperr.TransientIO, "failed to list change requests", err)
	}
	return reqs, nil
}

func (s *service) ResolveChangeRequest(id uint) error {
	rows, err := s.estateRepo.ResolveChangeRequest(id)
	if err != nil {
		return apperr.Wrap(apperr.TransientIO, "failed to resolve change request", err)
	}
	if rows == 0 {
		return apperr.New(apperr.InvalidState, "change request is not pending")
	}
	return nil
}
