package complaint

import (
	"errors"
	"log"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/tundeajayi/estate-management-backend/internal/apperr"
	"github.com/tundeajayi/estate-management-backend/internal/resident"
)

type CreateInput struct {
	Category string `json:"category"`
	Subject  string `json:"subject" binding:"required"`
	Details  string `json:"details" binding:"required"`
}

type UpdateStatusInput struct {
	Status   string `json:"status" binding:"required,oneof=in_progress resolved"`
	Response string `json:"response"`
}

type Service interface {
	Create(residentID uint, input CreateInput) (*Complaint, error)
	ListForResident(residentID uint) ([]Complaint, error)
	ListForEstate(estateID uint, status string) ([]Complaint, error)
	UpdateStatus(estateID, complaintID uint, input UpdateStatusInput) (*Complaint, error)
}

type service struct {
	repo        Repository
	residentSvc resident.Service
}

func NewService(repo Repository, residentSvc resident.Service) Service {
	return &service{repo: repo, residentSvc: residentSvc}
}

func (s *service) Create(residentID uint, in CreateInput) (*Complaint, error) {
	res, err := s.residentSvc.GetByID(residentID)
	if err != nil {
		return nil, err
	}
	if !res.Active {
		return nil, apperr.New(apperr.InvalidState, "this resident has moved out of the estate")
	}

	category := strings.TrimSpace(in.Category)
	if category == "" {
		category = "other"
	}

	c := &Complaint{
		EstateID:     res.EstateID,
		EstateCode:   res.EstateCode,
		ResidentID:   res.ID,
		ResidentName: res.FullName,
		Category:     category,
		Subject:      strings.TrimSpace(in.Subject),
		Details:      strings.TrimSpace(in.Details),
		Status:       "open",
	}
	if err := s.repo.Create(c); err != nil {
		return nil, apperr.Wrap(apperr.TransientIO, "failed to file complaint", err)
	}

	log.Printf("📋 Complaint %d filed by %s: %s", c.ID, res.UserID, c.Subject)
	return c, nil
}

func (s *service) ListForResident(residentID uint) ([]Complaint, error) {
	complaints, err := s.repo.ListByResident(residentID)
	if err != nil {
		return nil, apperr.Wrap(apperr.TransientIO, "failed to list complaints", err)
	}
	return complaints, nil
}

func (s *service) ListForEstate(estateID uint, status string) ([]Complaint, error) {
	complaints, err := s.repo.ListByEstate(estateID, status)
	if err != nil {
		return nil, apperr.Wrap(apperr.TransientIO, "failed to list complaints", err)
	}
	return complaints, nil
}

func (s *service) UpdateStatus(estateID, complaintID uint, in UpdateStatusInput) (*Complaint, error) {
	c, err := s.repo.FindByID(complaintID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.NotFound, "complaint not found")
		}
		return nil, apperr.Wrap(apperr.TransientIO, "failed to fetch complaint", err)
	}
	if c.EstateID != estateID {
		return nil, apperr.New(apperr.ScopeMismatch, "this complaint belongs to a different estate")
	}
	if !canTransition(c.Status, in.Status) {
		return nil, apperr.New(apperr.InvalidState, "cannot move complaint from "+c.Status+" to "+in.Status)
	}

	c.Status = in.Status
	if in.Response != "" {
		c.Response = strings.TrimSpace(in.Response)
	}
	if in.Status == "resolved" {
		now := time.Now()
		c.ResolvedAt = &now
	}
	if err := s.repo.Update(c); err != nil {
		return nil, apperr.Wrap(apperr.TransientIO, "failed to update complaint", err)
	}
	return c, nil
}
