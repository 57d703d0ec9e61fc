package announcement

import (
	"log"
	"strings"
	"time"

	"github.com/tundeajayi/estate-management-backend/internal/apperr"
	"github.com/tundeajayi/estate-management-backend/internal/resident"
	"github.com/tundeajayi/estate-management-backend/utils"
)

type PublishInput struct {
	Title    string `json:"title" binding:"required"`
	Body     string `json:"body" binding:"required"`
	Audience string `json:"audience" binding:"omitempty,oneof=all verified"`
}

type MessageInput struct {
	ResidentID uint   `json:"resident_id" binding:"required"`
	Subject    string `json:"subject" binding:"required"`
	Body       string `json:"body" binding:"required"`
}

type Service interface {
	Publish(estateID uint, estateCode string, createdBy uint, input PublishInput) (*Announcement, error)
	ListForResident(residentID uint) ([]Announcement, error)
	ListForEstate(estateID uint) ([]Announcement, error)
	Delete(estateID, id uint) error

	SendMessage(estateID uint, input MessageInput) (*PrivateMessage, error)
	ListMessages(residentID uint) ([]PrivateMessage, int64, error)
	MarkRead(residentID, messageID uint) error
}

type service struct {
	repo        Repository
	residentSvc resident.Service
}

func NewService(repo Repository, residentSvc resident.Service) Service {
	return &service{repo: repo, residentSvc: residentSvc}
}

func (s *service) Publish(estateID uint, estateCode string, createdBy uint, in PublishInput) (*Announcement, error) {
	audience := in.Audience
	if audience == "" {
		audience = "all"
	}
	a := &Announcement{
		EstateID:   estateID,
		EstateCode: estateCode,
		Title:      strings.TrimSpace(in.Title),
		Body:       strings.TrimSpace(in.Body),
		Audience:   audience,
		CreatedBy:  createdBy,
	}
	if err := s.repo.CreateAnnouncement(a); err != nil {
		return nil, apperr.Wrap(apperr.TransientIO, "failed to publish announcement", err)
	}

	utils.PublishGateEvent(utils.GateEvent{
		Type:       "ANNOUNCEMENT_PUBLISHED",
		EstateID:   estateCode,
		Payload:    map[string]interface{}{"title": a.Title, "audience": a.Audience},
		OccurredAt: time.Now(),
	})

	log.Printf("📢 Announcement %q published for estate %s", a.Title, estateCode)
	return a, nil
}

// ListForResident shows a resident their estate's notices; unverified
// residents only see notices addressed to everyone.
func (s *service) ListForResident(residentID uint) ([]Announcement, error) {
	res, err := s.residentSvc.GetByID(residentID)
	if err != nil {
		return nil, err
	}
	anns, err := s.repo.ListAnnouncements(res.EstateID, res.Verified)
	if err != nil {
		return nil, apperr.Wrap(apperr.TransientIO, "failed to list announcements", err)
	}
	return anns, nil
}

func (s *service) ListForEstate(estateID uint) ([]Announcement, error) {
	anns, err := s.repo.ListAnnouncements(estateID, true)
	if err != nil {
		return nil, apperr.Wrap(apperr.TransientIO, "failed to list announcements", err)
	}
	return anns, nil
}

func (s *service) Delete(estateID, id uint) error {
	rows, err := s.repo.DeleteAnnouncement(estateID, id)
	if err != nil {
		return apperr.Wrap(apperr.TransientIO, "failed to delete announcement", err)
	}
	if rows == 0 {
		return apperr.New(apperr.NotFound, "announcement not found")
	}
	return nil
}

func (s *service) SendMessage(estateID uint, in MessageInput) (*PrivateMessage, error) {
	res, err := s.residentSvc.GetByID(in.ResidentID)
	if err != nil {
		return nil, err
	}
	if res.EstateID != estateID {
		return nil, apperr.New(apperr.ScopeMismatch, "this resident belongs to a different estate")
	}

	m := &PrivateMessage{
		EstateID:   estateID,
		ResidentID: res.ID,
		Subject:    strings.TrimSpace(in.Subject),
		Body:       strings.TrimSpace(in.Body),
	}
	if err := s.repo.CreateMessage(m); err != nil {
		return nil, apperr.Wrap(apperr.TransientIO, "failed to send message", err)
	}

	utils.PublishGateEvent(utils.GateEvent{
		Type:       "MESSAGE_SENT",
		EstateID:   res.EstateCode,
		ResidentID: res.UserID,
		Payload:    map[string]interface{}{"subject": m.Subject},
		OccurredAt: time.Now(),
	})
	return m, nil
}

func (s *service) ListMessages(residentID uint) ([]PrivateMessage, int64, error) {
	msgs, err := s.repo.ListMessages(residentID)
	if err != nil {
		return nil, 0, apperr.Wrap(apperr.TransientIO, "failed to list messages", err)
	}
	unread, err := s.repo.CountUnread(residentID)
	if err != nil {
		return nil, 0, apperr.Wrap(apperr.TransientIO, "failed to count unread messages", err)
	}
	return msgs, unread, nil
}

func (s *service) MarkRead(residentID, messageID uint) error {
	rows, err := s.repo.MarkMessageRead(residentID, messageID, time.Now())
	if err != nil {
		return apperr.Wrap(apperr.TransientIO, "failed to mark message read", err)
	}
	if rows == 0 {
		return apperr.New(apperr.NotFound, "unread message not found")
	}
	return nil
}
