package notification

import (
	"encoding/json"
	"strings"

	"gorm.io/datatypes"

	"github.com/tundeajayi/estate-management-backend/internal/apperr"
)

type Service interface {
	Notify(residentUserID, estateCode, notifType, title, body string, data map[string]interface{}) error
	List(residentUserID string, limit int) ([]Notification, int64, error)
	MarkRead(residentUserID string, id uint) error
	RegisterDevice(residentUserID, token, platform string) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// Notify records an in-app notification and pushes it to the resident's
// devices.
func (s *service) Notify(residentUserID, estateCode, notifType, title, body string, data map[string]interface{}) error {
	var blob datatypes.JSON
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return apperr.Wrap(apperr.TransientIO, "failed to encode notification data", err)
		}
		blob = datatypes.JSON(raw)
	}

	n := &Notification{
		ResidentUserID: residentUserID,
		EstateCode:     estateCode,
		Type:           notifType,
		Title:          title,
		Body:           body,
		Data:           blob,
	}
	if err := s.repo.Create(n); err != nil {
		return apperr.Wrap(apperr.TransientIO, "failed to store notification", err)
	}

	pushData := map[string]string{"type": notifType}
	for k, v := range data {
		if str, ok := v.(string); ok {
			pushData[k] = str
		}
	}
	go sendPush(s.repo, residentUserID, title, body, pushData)
	return nil
}

func (s *service) List(residentUserID string, limit int) ([]Notification, int64, error) {
	notifs, err := s.repo.ListForResident(residentUserID, limit)
	if err != nil {
		return nil, 0, apperr.Wrap(apperr.TransientIO, "failed to list notifications", err)
	}
	unread, err := s.repo.CountUnread(residentUserID)
	if err != nil {
		return nil, 0, apperr.Wrap(apperr.TransientIO, "failed to count unread", err)
	}
	return notifs, unread, nil
}

func (s *service) MarkRead(residentUserID string, id uint) error {
	rows, err := s.repo.MarkRead(residentUserID, id)
	if err != nil {
		return apperr.Wrap(apperr.TransientIO, "failed to mark notification read", err)
	}
	if rows == 0 {
		return apperr.New(apperr.NotFound, "unread notification not found")
	}
	return nil
}

func (s *service) RegisterDevice(residentUserID, token, platform string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return apperr.New(apperr.InvalidState, "device token is required")
	}
	t := &DeviceToken{
		ResidentUserID: residentUserID,
		Token:          token,
		Platform:       strings.ToLower(strings.TrimSpace(platform)),
	}
	if err := s.repo.SaveDeviceToken(t); err != nil {
		return apperr.Wrap(apperr.TransientIO, "failed to register device", err)
	}
	return nil
}
