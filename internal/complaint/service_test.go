package complaint

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

func newTestService(t *testing.T) (Service, *resident.Resident, *estate.Estate) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&auth.UserRole{}, &auth.User{},
		&estate.Estate{}, &estate.EstateStreet{}, &estate.ChangeRequest{},
		&resident.Resident{}, &Complaint{},
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

	return NewService(NewRepository(db), residentSvc), res, est
}

func TestCreateComplaint(t *testing.T) {
	svc, res, _ := newTestService(t)

	c, err := svc.Create(res.ID, CreateInput{
		Subject: "Broken street light",
		Details: "The light on Palm Avenue has been out for a week",
	})
	require.NoError(t, err)
	assert.Equal(t, "open", c.Status)
	assert.Equal(t, "other", c.Category)
	assert.Equal(t, res.FullName, c.ResidentName)
}

func TestStatusTransitions(t *testing.T) {
	svc, res, est := newTestService(t)

	c, err := svc.Create(res.ID, CreateInput{
		Category: "maintenance",
		Subject:  "Broken street light",
		Details:  "Out for a week",
	})
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(est.ID, c.ID, UpdateStatusInput{Status: "in_progress"})
	require.NoError(t, err)
	assert.Equal(t, "in_progress", updated.Status)

	resolved, err := svc.UpdateStatus(est.ID, c.ID, UpdateStatusInput{
		Status:   "resolved",
		Response: "Replaced the bulb",
	})
	require.NoError(t, err)
	assert.Equal(t, "resolved", resolved.Status)
	assert.NotNil(t, resolved.ResolvedAt)

	// resolved is terminal
	_, err = svc.UpdateStatus(est.ID, c.ID, UpdateStatusInput{Status: "in_progress"})
	assert.True(t, apperr.Is(err, apperr.InvalidState))
}

func TestUpdateStatusScopeMismatch(t *testing.T) {
	svc, res, est := newTestService(t)

	c, err := svc.Create(res.ID, CreateInput{Subject: "Noise", Details: "Loud parties"})
	require.NoError(t, err)

	_, err = svc.UpdateStatus(est.ID+99, c.ID, UpdateStatusInput{Status: "resolved"})
	assert.True(t, apperr.Is(err, apperr.ScopeMismatch))
}

func TestListForResident(t *testing.T) {
	svc, res, est := newTestService(t)

	_, err := svc.Create(res.ID, CreateInput{Subject: "One", Details: "first"})
	require.NoError(t, err)
	_, err = svc.Create(res.ID, CreateInput{Subject: "Two", Details: "second"})
	require.NoError(t, err)

	mine, err := svc.ListForResident(res.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	all, err := svc.ListForEstate(est.ID, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	open, err := svc.ListForEstate(est.ID, "open")
	require.NoError(t, err)
	assert.Len(t, open, 2)
}
