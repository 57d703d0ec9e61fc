package superadmin

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

func newTestService(t *testing.T) (Service, estate.Service, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&auth.UserRole{}, &auth.User{},
		&estate.Estate{}, &estate.EstateStreet{}, &estate.ChangeRequest{},
		&resident.Resident{},
	))
	require.NoError(t, auth.SeedUserRoles(db))

	cfg := &config.Config{JWTAccessSecret: "test-secret"}
	authRepo := auth.NewRepository(db)
	authSvc := auth.NewService(authRepo, cfg)
	estateRepo := estate.NewRepository(db)
	estateSvc := estate.NewService(estateRepo, authSvc)

	svc := NewService(estateRepo, authRepo, resident.NewRepository(db))
	return svc, estateSvc, db
}

func registerEstate(t *testing.T, estateSvc estate.Service) *estate.Estate {
	t.Helper()
	est, err := estateSvc.Register(estate.RegisterInput{
		Name:      "Greenfield Gardens",
		Address:   "12 Palm Avenue",
		AdminName: "Ada Obi",
		Phone:     "+2348012345670",
		Email:     "admin@greenfield.test",
		Password:  "secret-pass",
	})
	require.NoError(t, err)
	return est
}

func adminStatus(t *testing.T, db *gorm.DB, estateID uint) string {
	t.Helper()
	var user auth.User
	require.NoError(t, db.Where("estate_id = ?", estateID).First(&user).Error)
	return user.Status
}

func TestApproveEstateActivatesAdmin(t *testing.T) {
	svc, estateSvc, db := newTestService(t)
	est := registerEstate(t, estateSvc)

	require.False(t, est.Approved)
	assert.Equal(t, "pending", adminStatus(t, db, est.ID))

	decided, err := svc.DecideEstate(est.ID, DecideEstateInput{Approved: true})
	require.NoError(t, err)
	assert.True(t, decided.Approved)
	assert.NotNil(t, decided.ApprovedAt)
	assert.Equal(t, "active", adminStatus(t, db, est.ID))

	// approving twice is a conflict
	_, err = svc.DecideEstate(est.ID, DecideEstateInput{Approved: true})
	assert.True(t, apperr.Is(err, apperr.InvalidState))
}

func TestRejectEstateKeepsAdminPending(t *testing.T) {
	svc, estateSvc, db := newTestService(t)
	est := registerEstate(t, estateSvc)

	decided, err := svc.DecideEstate(est.ID, DecideEstateInput{
		Approved: false,
		Note:     "incomplete registration documents",
	})
	require.NoError(t, err)
	assert.False(t, decided.Approved)
	assert.NotNil(t, decided.RejectedAt)
	assert.Equal(t, "incomplete registration documents", decided.RejectionReason)
	assert.Equal(t, "pending", adminStatus(t, db, est.ID))
}

func TestDecideEstateNotFound(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.DecideEstate(42, DecideEstateInput{Approved: true})
	assert.True(t, apperr.Is(err, apperr.NotFound))
}

func TestStatsAndOverview(t *testing.T) {
	svc, estateSvc, _ := newTestService(t)
	est := registerEstate(t, estateSvc)

	_, err := svc.DecideEstate(est.ID, DecideEstateInput{Approved: true})
	require.NoError(t, err)

	stats, err := svc.Stats()
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalEstates)
	assert.Equal(t, int64(1), stats.ApprovedEstates)
	assert.Equal(t, int64(0), stats.PendingEstates)

	approved := true
	overviews, err := svc.ListEstates(&approved)
	require.NoError(t, err)
	require.Len(t, overviews, 1)
	assert.Equal(t, est.EstateCode, overviews[0].Estate.EstateCode)
	assert.Equal(t, int64(0), overviews[0].ResidentCount)

	admins, err := svc.ListEstateAdmins()
	require.NoError(t, err)
	assert.Len(t, admins, 1)
}

func TestSuperAdminLifecycle(t *testing.T) {
	svc, _, _ := newTestService(t)

	first, err := svc.CreateSuperAdmin(CreateAdminInput{
		FullName: "Root Admin",
		Email:    "Root@Platform.Test",
		Password: "secret-pass",
	})
	require.NoError(t, err)
	assert.Equal(t, "root@platform.test", first.Email)
	assert.Equal(t, "superadmin", first.Role.RoleName)

	_, err = svc.CreateSuperAdmin(CreateAdminInput{
		FullName: "Dup",
		Email:    "root@platform.test",
		Password: "secret-pass",
	})
	assert.True(t, apperr.Is(err, apperr.InvalidState))

	// the last superadmin cannot be removed
	assert.True(t, apperr.Is(svc.DeleteSuperAdmin(first.ID), apperr.InvalidState))

	second, err := svc.CreateSuperAdmin(CreateAdminInput{
		FullName: "Second Admin",
		Email:    "second@platform.test",
		Password: "secret-pass",
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteSuperAdmin(second.ID))
	assert.True(t, apperr.Is(svc.DeleteSuperAdmin(second.ID), apperr.NotFound))

	admins, err := svc.ListSuperAdmins()
	require.NoError(t, err)
	assert.Len(t, admins, 1)
}

func TestResolveChangeRequestOnce(t *testing.T) {
	svc, estateSvc, _ := newTestService(t)
	est := registerEstate(t, estateSvc)

	req, err := estateSvc.SubmitChangeRequest(est.ID, est.AdminName, estate.ChangeRequestInput{
		Subject: "Update bank account",
		Details: "We have changed banks",
	})
	require.NoError(t, err)

	pending, err := svc.ListChangeRequests("pending")
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	require.NoError(t, svc.ResolveChangeRequest(req.ID))
	assert.True(t, apperr.Is(svc.ResolveChangeRequest(req.ID), apperr.InvalidState))
}
