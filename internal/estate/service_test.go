package estate

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tundeajayi/estate-management-backend/config"
	"github.com/tundeajayi/estate-management-backend/internal/apperr"
	"github.com/tundeajayi/estate-management-backend/internal/auth"
)

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&auth.UserRole{}, &auth.User{},
		&Estate{}, &EstateStreet{}, &ChangeRequest{},
	))
	require.NoError(t, auth.SeedUserRoles(db))

	cfg := &config.Config{JWTAccessSecret: "test-secret"}
	authSvc := auth.NewService(auth.NewRepository(db), cfg)
	return NewService(NewRepository(db), authSvc), db
}

func registerEstate(t *testing.T, svc Service) *Estate {
	t.Helper()
	est, err := svc.Register(RegisterInput{
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

func TestRegisterCreatesPendingEstateAndAdmin(t *testing.T) {
	svc, db := newTestService(t)

	est := registerEstate(t, svc)
	assert.Regexp(t, regexp.MustCompile(`^[A-Z0-9]{6}$`), est.EstateCode)
	assert.False(t, est.Approved)

	// the admin account exists but stays pending until approval
	var admin auth.User
	require.NoError(t, db.Preload("Role").Where("email = ?", "admin@greenfield.test").First(&admin).Error)
	assert.Equal(t, "estateadmin", admin.Role.RoleName)
	assert.Equal(t, "pending", admin.Status)
	require.NotNil(t, admin.EstateID)
	assert.Equal(t, est.ID, *admin.EstateID)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc, _ := newTestService(t)
	registerEstate(t, svc)

	_, err := svc.Register(RegisterInput{
		Name:      "Greenfield Two",
		Address:   "13 Palm Avenue",
		AdminName: "Ada Obi",
		Phone:     "+2348012345670",
		Email:     "admin@greenfield.test",
		Password:  "secret-pass",
	})
	assert.True(t, apperr.Is(err, apperr.InvalidState))
}

func TestPublicLookupHidesUnapprovedEstate(t *testing.T) {
	svc, db := newTestService(t)
	est := registerEstate(t, svc)

	_, err := svc.LookupPublic(est.EstateCode)
	assert.True(t, apperr.Is(err, apperr.NotFound))

	require.NoError(t, db.Model(&Estate{}).Where("id = ?", est.ID).Update("approved", true).Error)

	pub, err := svc.LookupPublic(est.EstateCode)
	require.NoError(t, err)
	assert.Equal(t, est.EstateCode, pub.EstateCode)
	assert.Equal(t, "Greenfield Gardens", pub.Name)
}

func TestLookupIsCaseInsensitive(t *testing.T) {
	svc, db := newTestService(t)
	est := registerEstate(t, svc)
	require.NoError(t, db.Model(&Estate{}).Where("id = ?", est.ID).Update("approved", true).Error)

	pub, err := svc.LookupPublic(" " + est.EstateCode + " ")
	require.NoError(t, err)
	assert.Equal(t, est.EstateCode, pub.EstateCode)
}

func TestStreets(t *testing.T) {
	svc, _ := newTestService(t)
	est := registerEstate(t, svc)

	street, err := svc.AddStreet(est.ID, "Palm Avenue")
	require.NoError(t, err)
	assert.Equal(t, "Palm Avenue", street.Name)

	streets, err := svc.ListStreets(est.ID)
	require.NoError(t, err)
	assert.Len(t, streets, 1)

	require.NoError(t, svc.RemoveStreet(est.ID, street.ID))

	err = svc.RemoveStreet(est.ID, street.ID)
	assert.True(t, apperr.Is(err, apperr.NotFound))
}

func TestAddStreetRejectsBlankName(t *testing.T) {
	svc, _ := newTestService(t)
	est := registerEstate(t, svc)

	_, err := svc.AddStreet(est.ID, "   ")
	assert.True(t, apperr.Is(err, apperr.InvalidState))
}

func TestBankDetails(t *testing.T) {
	svc, _ := newTestService(t)
	est := registerEstate(t, svc)

	updated, err := svc.UpdateBankDetails(est.ID, BankDetailsInput{
		BankName:      "First Bank",
		AccountNumber: "0123456789",
		AccountName:   "Greenfield Gardens Ltd",
	})
	require.NoError(t, err)
	assert.Equal(t, "First Bank", updated.BankName)
}

func TestChangeRequests(t *testing.T) {
	svc, _ := newTestService(t)
	est := registerEstate(t, svc)

	cr, err := svc.SubmitChangeRequest(est.ID, est.AdminName, ChangeRequestInput{
		Subject: "Rename estate",
		Details: "We rebranded to Greenfield Park",
	})
	require.NoError(t, err)
	assert.Equal(t, "pending", cr.Status)

	reqs, err := svc.ListChangeRequests(est.ID)
	require.NoError(t, err)
	assert.Len(t, reqs, 1)
}
