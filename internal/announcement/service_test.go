package announcement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tundeajayi/estate-management-backend/config"
	"github.com/tundeajayi/estate-management-backend/internal/apperr"
	"github.com/tundeajayi/estate-management-backend/internal/auth"
	"github.com/tundeajayi/estate-management-backend/internal/estate"
	"github.com/tundeajayi/estate-management-backend/internal/resident"
)

func newTestService(t *testing.T) (Service, resident.Service, *resident.Resident, *estate.Estate) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&auth.UserRole{}, &auth.User{},
		&estate.Estate{}, &estate.EstateStreet{}, &estate.ChangeRequest{},
		&resident.Resident{}, &Announcement{}, &PrivateMessage{},
	))
	require.NoError(t, auth.SeedUserRoles(db))

	cfg := &config.Config{JWTAccessSecret: "test-secret"}
	authSvc := auth.NewService(auth.NewRepository(db), cfg)
	estateSvc := estate.NewService(estate.NewRepository(db), authSvc)
	residentSvc := resident.NewService(resident.NewRepository(db), estateSvc, cfg)

	est := &estate.Estate{
		EstateCode: "AB12CD",
		Name:       "Greenfield Gardens",
		Address:    "12 Palm Avenue",
		AdminName:  "Ada Obi",
		Phone:      "+2348012345670",
		Email:      "admin@greenfield.test",
		Approved:   true,
	}
	require.NoError(t, db.Create(est).Error)

	res, err := residentSvc.Register(resident.RegisterInput{
		FullName:   "Chika Nwosu",
		Phone:      "+2348012345671",
		EstateCode: est.EstateCode,
		Password:   "secret-pass",
	})
	require.NoError(t, err)

	return NewService(NewRepository(db), residentSvc), residentSvc, res, est
}

func TestPublishDefaultsAudience(t *testing.T) {
	svc, _, _, est := newTestService(t)

	a, err := svc.Publish(est.ID, est.EstateCode, 1, PublishInput{
		Title: "Water maintenance",
		Body:  "Supply will be off from 9am to noon on Saturday",
	})
	require.NoError(t, err)
	assert.Equal(t, "all", a.Audience)
}

func TestUnverifiedResidentOnlySeesGeneralNotices(t *testing.T) {
	svc, residentSvc, res, est := newTestService(t)

	_, err := svc.Publish(est.ID, est.EstateCode, 1, PublishInput{
		Title: "General notice", Body: "For everyone", Audience: "all",
	})
	require.NoError(t, err)
	_, err = svc.Publish(est.ID, est.EstateCode, 1, PublishInput{
		Title: "Verified only", Body: "AGM minutes attached", Audience: "verified",
	})
	require.NoError(t, err)

	anns, err := svc.ListForResident(res.ID)
	require.NoError(t, err)
	require.Len(t, anns, 1)
	assert.Equal(t, "General notice", anns[0].Title)

	_, err = residentSvc.Approve(est.ID, res.ID)
	require.NoError(t, err)

	anns, err = svc.ListForResident(res.ID)
	require.NoError(t, err)
	assert.Len(t, anns, 2)
}

func TestDeleteAnnouncement(t *testing.T) {
	svc, _, _, est := newTestService(t)

	a, err := svc.Publish(est.ID, est.EstateCode, 1, PublishInput{
		Title: "Old notice", Body: "Out of date",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(est.ID, a.ID))
	assert.True(t, apperr.Is(svc.Delete(est.ID, a.ID), apperr.NotFound))

	// deletion is scoped to the owning estate
	b, err := svc.Publish(est.ID, est.EstateCode, 1, PublishInput{
		Title: "Another", Body: "Still current",
	})
	require.NoError(t, err)
	assert.True(t, apperr.Is(svc.Delete(est.ID+99, b.ID), apperr.NotFound))
}

func TestSendMessageRejectsForeignResident(t *testing.T) {
	svc, _, res, est := newTestService(t)

	_, err := svc.SendMessage(est.ID+99, MessageInput{
		ResidentID: res.ID,
		Subject:    "Levy reminder",
		Body:       "Your security levy is due",
	})
	assert.True(t, apperr.Is(err, apperr.ScopeMismatch))
}

func TestMarkReadIsSingleShot(t *testing.T) {
	svc, _, res, est := newTestService(t)

	m, err := svc.SendMessage(est.ID, MessageInput{
		ResidentID: res.ID,
		Subject:    "Levy reminder",
		Body:       "Your security levy is due",
	})
	require.NoError(t, err)

	msgs, unread, err := svc.ListMessages(res.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, int64(1), unread)

	require.NoError(t, svc.MarkRead(res.ID, m.ID))
	assert.True(t, apperr.Is(svc.MarkRead(res.ID, m.ID), apperr.NotFound))

	_, unread, err = svc.ListMessages(res.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), unread)

	// a different resident cannot mark someone else's message
	assert.True(t, apperr.Is(svc.MarkRead(res.ID+99, m.ID), apperr.NotFound))
}
