package resident

import (
	"strings"
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
)

func newTestService(t *testing.T) (Service, *estate.Estate, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&auth.UserRole{}, &auth.User{},
		&estate.Estate{}, &estate.EstateStreet{}, &estate.ChangeRequest{},
		&Resident{},
	))
	require.NoError(t, auth.SeedUserRoles(db))

	cfg := &config.Config{JWTAccessSecret: "test-secret", JWTAccessTTLHours: 1}
	authSvc := auth.NewService(auth.NewRepository(db), cfg)
	estateSvc := estate.NewService(estate.NewRepository(db), authSvc)
	svc := NewService(NewRepository(db), estateSvc, cfg)

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

	return svc, est, db
}

func register(t *testing.T, svc Service, estateCode string) *Resident {
	t.Helper()
	res, err := svc.Register(RegisterInput{
		FullName:   "Chika Nwosu",
		Phone:      "+2348012345671",
		EstateCode: estateCode,
		Street:     "Palm Avenue",
		Password:   "secret-pass",
	})
	require.NoError(t, err)
	return res
}

func TestRegisterAssignsUserID(t *testing.T) {
	svc, est, _ := newTestService(t)

	res := register(t, svc, est.EstateCode)
	assert.True(t, strings.HasPrefix(res.UserID, "USR-"))
	assert.Len(t, res.UserID, 9)
	assert.False(t, res.Verified)
	assert.True(t, res.Active)
	assert.Empty(t, res.GatePassCode)
}

func TestRegisterRejectsUnapprovedEstate(t *testing.T) {
	svc, est, db := newTestService(t)

	require.NoError(t, db.Model(&estate.Estate{}).
		Where("id = ?", est.ID).
		Update("approved", false).Error)

	_, err := svc.Register(RegisterInput{
		FullName:   "Chika Nwosu",
		Phone:      "+2348012345671",
		EstateCode: est.EstateCode,
		Password:   "secret-pass",
	})
	assert.True(t, apperr.Is(err, apperr.InvalidState))
}

func TestRegisterRejectsUnknownEstate(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Register(RegisterInput{
		FullName:   "Chika Nwosu",
		Phone:      "+2348012345671",
		EstateCode: "ZZ99ZZ",
		Password:   "secret-pass",
	})
	assert.True(t, apperr.Is(err, apperr.NotFound))
}

func TestLogin(t *testing.T) {
	svc, est, _ := newTestService(t)
	res := register(t, svc, est.EstateCode)

	result, err := svc.Login(LoginInput{UserID: res.UserID, Password: "secret-pass"})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, res.UserID, result.QRData)

	// case-insensitive on the ID, strict on the password
	_, err = svc.Login(LoginInput{UserID: strings.ToLower(res.UserID), Password: "secret-pass"})
	assert.NoError(t, err)

	_, err = svc.Login(LoginInput{UserID: res.UserID, Password: "wrong"})
	assert.True(t, apperr.Is(err, apperr.NotFound))
}

func TestLoginRejectsMovedOutResident(t *testing.T) {
	svc, est, _ := newTestService(t)
	res := register(t, svc, est.EstateCode)

	_, err := svc.Approve(est.ID, res.ID)
	require.NoError(t, err)
	_, err = svc.Deactivate(est.ID, res.ID)
	require.NoError(t, err)

	_, err = svc.Login(LoginInput{UserID: res.UserID, Password: "secret-pass"})
	assert.True(t, apperr.Is(err, apperr.InvalidState))
}

func TestScanStatuses(t *testing.T) {
	svc, est, _ := newTestService(t)
	res := register(t, svc, est.EstateCode)

	scan, err := svc.Scan(est.ID, res.UserID)
	require.NoError(t, err)
	assert.Equal(t, "unverified", scan.Status)

	_, err = svc.Approve(est.ID, res.ID)
	require.NoError(t, err)

	scan, err = svc.Scan(est.ID, res.UserID)
	require.NoError(t, err)
	assert.Equal(t, "verified", scan.Status)

	_, err = svc.Deactivate(est.ID, res.ID)
	require.NoError(t, err)

	scan, err = svc.Scan(est.ID, res.UserID)
	require.NoError(t, err)
	assert.Equal(t, "inactive", scan.Status)
}

func TestScanRejectsOtherEstate(t *testing.T) {
	svc, est, db := newTestService(t)
	res := register(t, svc, est.EstateCode)

	other := &estate.Estate{
		EstateCode: "XY34ZW",
		Name:       "Sunset Court",
		Address:    "3 Beach Road",
		AdminName:  "Bola Ade",
		Phone:      "+2348012345672",
		Email:      "admin@sunset.test",
		Approved:   true,
	}
	require.NoError(t, db.Create(other).Error)

	_, err := svc.Scan(other.ID, res.UserID)
	assert.True(t, apperr.Is(err, apperr.ScopeMismatch))
}

func TestApproveIssuesGatePass(t *testing.T) {
	svc, est, _ := newTestService(t)
	res := register(t, svc, est.EstateCode)

	approved, err := svc.Approve(est.ID, res.ID)
	require.NoError(t, err)
	assert.True(t, approved.Verified)
	assert.True(t, strings.HasPrefix(approved.GatePassCode, "GP-"))

	// re-approval reissues a fresh code rather than failing
	reapproved, err := svc.Approve(est.ID, res.ID)
	require.NoError(t, err)
	assert.True(t, reapproved.Verified)
	assert.True(t, strings.HasPrefix(reapproved.GatePassCode, "GP-"))
	assert.NotEqual(t, approved.GatePassCode, reapproved.GatePassCode)
}

func TestRejectClearsVerification(t *testing.T) {
	svc, est, _ := newTestService(t)
	res := register(t, svc, est.EstateCode)

	_, err := svc.Approve(est.ID, res.ID)
	require.NoError(t, err)

	rejected, err := svc.Reject(est.ID, res.ID)
	require.NoError(t, err)
	assert.False(t, rejected.Verified)
}

func TestDeactivateRevokesPass(t *testing.T) {
	svc, est, _ := newTestService(t)
	res := register(t, svc, est.EstateCode)

	_, err := svc.Approve(est.ID, res.ID)
	require.NoError(t, err)

	deactivated, err := svc.Deactivate(est.ID, res.ID)
	require.NoError(t, err)
	assert.False(t, deactivated.Active)
	assert.False(t, deactivated.Verified)
	assert.Empty(t, deactivated.GatePassCode)

	_, err = svc.Deactivate(est.ID, res.ID)
	assert.True(t, apperr.Is(err, apperr.InvalidState))
}

func TestRegenerateGatePass(t *testing.T) {
	svc, est, _ := newTestService(t)
	res := register(t, svc, est.EstateCode)

	approved, err := svc.Approve(est.ID, res.ID)
	require.NoError(t, err)
	old := approved.GatePassCode

	rotated, err := svc.RegenerateGatePass(est.ID, res.ID)
	require.NoError(t, err)
	assert.NotEqual(t, old, rotated.GatePassCode)
	assert.True(t, strings.HasPrefix(rotated.GatePassCode, "GP-"))
}

func TestRegenerateRequiresVerified(t *testing.T) {
	svc, est, _ := newTestService(t)
	res := register(t, svc, est.EstateCode)

	_, err := svc.RegenerateGatePass(est.ID, res.ID)
	assert.True(t, apperr.Is(err, apperr.InvalidState))
}

func TestIDCardRendersPDF(t *testing.T) {
	svc, est, _ := newTestService(t)
	res := register(t, svc, est.EstateCode)

	pdf, filename, err := svc.IDCard(res.ID)
	require.NoError(t, err)
	assert.Contains(t, filename, res.UserID)
	assert.True(t, strings.HasPrefix(string(pdf[:4]), "%PDF"))
}
