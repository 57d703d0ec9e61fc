package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tundeajayi/estate-management-backend/config"
)

func newTestService(t *testing.T) Service {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&UserRole{}, &User{}))
	require.NoError(t, SeedUserRoles(db))

	cfg := &config.Config{
		JWTAccessSecret:    "access-secret",
		JWTRefreshSecret:   "refresh-secret",
		JWTAccessTTLHours:  1,
		JWTRefreshTTLHours: 24,
	}
	return NewService(NewRepository(db), cfg)
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newTestService(t)

	user, err := svc.Register(RegisterInput{
		FullName: "Bola Akin",
		Email:    "Bola@Example.Test",
		Password: "secret-pass",
		Role:     "security",
		Phone:    "+2348012345672",
	})
	require.NoError(t, err)
	assert.Equal(t, "bola@example.test", user.Email)
	assert.Equal(t, "active", user.Status)
	assert.Equal(t, "security", user.Role.RoleName)

	pair, logged, err := svc.Login(LoginInput{Email: "bola@example.test", Password: "secret-pass"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, logged.ID)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)

	_, _, err = svc.Login(LoginInput{Email: "bola@example.test", Password: "wrong"})
	assert.EqualError(t, err, "invalid credentials")
}

func TestSuperadminCannotSelfRegister(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Register(RegisterInput{
		FullName: "Eve",
		Email:    "eve@example.test",
		Password: "secret-pass",
		Role:     "superadmin",
	})
	assert.EqualError(t, err, "cannot self-register this role")
}

func TestPendingEstateAdminCannotLogin(t *testing.T) {
	svc := newTestService(t)

	estateID := uint(7)
	user, err := svc.Register(RegisterInput{
		FullName: "Ada Obi",
		Email:    "ada@example.test",
		Password: "secret-pass",
		Role:     "estateadmin",
		EstateID: &estateID,
	})
	require.NoError(t, err)
	assert.Equal(t, "pending", user.Status)

	_, _, err = svc.Login(LoginInput{Email: "ada@example.test", Password: "secret-pass"})
	assert.EqualError(t, err, "account is not active yet")
}

func TestRefreshMintsNewAccessToken(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Register(RegisterInput{
		FullName: "Bola Akin",
		Email:    "bola@example.test",
		Password: "secret-pass",
		Role:     "security",
	})
	require.NoError(t, err)

	pair, _, err := svc.Login(LoginInput{Email: "bola@example.test", Password: "secret-pass"})
	require.NoError(t, err)

	access, err := svc.Refresh(pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, access)

	_, err = svc.Refresh("not-a-token")
	assert.EqualError(t, err, "invalid refresh token")
}

func TestConcurrentLoginsGetDistinctRefreshTokens(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Register(RegisterInput{
		FullName: "Bola Akin",
		Email:    "bola@example.test",
		Password: "secret-pass",
		Role:     "security",
	})
	require.NoError(t, err)

	first, _, err := svc.Login(LoginInput{Email: "bola@example.test", Password: "secret-pass"})
	require.NoError(t, err)
	second, _, err := svc.Login(LoginInput{Email: "bola@example.test", Password: "secret-pass"})
	require.NoError(t, err)

	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)
}
