package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"testing"
	"time"

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
	"github.com/tundeajayi/estate-management-backend/utils"
)

const testSecret = "rzp-test-secret"

func newTestService(t *testing.T) (Service, Repository, *resident.Resident, *estate.Estate) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&auth.UserRole{}, &auth.User{},
		&estate.Estate{}, &estate.EstateStreet{}, &estate.ChangeRequest{},
		&resident.Resident{}, &Levy{}, &Payment{},
	))
	require.NoError(t, auth.SeedUserRoles(db))

	cfg := &config.Config{JWTAccessSecret: "test-secret", RazorpaySecret: testSecret}
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

	repo := NewRepository(db)
	return NewService(repo, residentSvc, cfg), repo, res, est
}

func seedPendingPayment(t *testing.T, repo Repository, res *resident.Resident, est *estate.Estate) *Payment {
	t.Helper()

	levy := &Levy{
		EstateID:   est.ID,
		EstateCode: est.EstateCode,
		Title:      "Security Levy 2026",
		Amount:     2500000,
		Currency:   "NGN",
	}
	require.NoError(t, repo.CreateLevy(levy))

	p := &Payment{
		EstateID:        est.ID,
		EstateCode:      est.EstateCode,
		ResidentID:      res.ID,
		ResidentName:    res.FullName,
		LevyID:          levy.ID,
		LevyTitle:       levy.Title,
		Reference:       utils.NewPaymentRef(),
		Amount:          levy.Amount,
		Currency:        levy.Currency,
		Status:          "pending",
		RazorpayOrderID: "order_test123",
	}
	require.NoError(t, repo.CreatePayment(p))
	return p
}

func sign(orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(testSecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestCreateLevy(t *testing.T) {
	svc, _, _, est := newTestService(t)

	levy, err := svc.CreateLevy(est.ID, est.EstateCode, CreateLevyInput{
		Title:  "Security Levy 2026",
		Amount: 2500000,
	})
	require.NoError(t, err)
	assert.Equal(t, "NGN", levy.Currency)

	levies, err := svc.ListLevies(est.ID)
	require.NoError(t, err)
	assert.Len(t, levies, 1)
}

func TestConfirmSettlesExactlyOnce(t *testing.T) {
	svc, repo, res, est := newTestService(t)
	p := seedPendingPayment(t, repo, res, est)

	settled, err := svc.Confirm(ConfirmInput{
		Reference:         p.Reference,
		RazorpayOrderID:   p.RazorpayOrderID,
		RazorpayPaymentID: "pay_test456",
		RazorpaySignature: sign(p.RazorpayOrderID, "pay_test456"),
	})
	require.NoError(t, err)
	assert.Equal(t, "paid", settled.Status)
	assert.NotNil(t, settled.PaidAt)

	// a replayed confirmation conflicts instead of double-settling
	_, err = svc.Confirm(ConfirmInput{
		Reference:         p.Reference,
		RazorpayOrderID:   p.RazorpayOrderID,
		RazorpayPaymentID: "pay_test456",
		RazorpaySignature: sign(p.RazorpayOrderID, "pay_test456"),
	})
	assert.True(t, apperr.Is(err, apperr.InvalidState))
}

func TestConfirmRejectsBadSignature(t *testing.T) {
	svc, repo, res, est := newTestService(t)
	p := seedPendingPayment(t, repo, res, est)

	_, err := svc.Confirm(ConfirmInput{
		Reference:         p.Reference,
		RazorpayOrderID:   p.RazorpayOrderID,
		RazorpayPaymentID: "pay_test456",
		RazorpaySignature: "forged",
	})
	assert.True(t, apperr.Is(err, apperr.InvalidState))

	failed, err := repo.FindPaymentByReference(p.Reference)
	require.NoError(t, err)
	assert.Equal(t, "failed", failed.Status)
}

func TestConfirmRejectsOrderMismatch(t *testing.T) {
	svc, repo, res, est := newTestService(t)
	p := seedPendingPayment(t, repo, res, est)

	_, err := svc.Confirm(ConfirmInput{
		Reference:         p.Reference,
		RazorpayOrderID:   "order_other",
		RazorpayPaymentID: "pay_test456",
		RazorpaySignature: sign("order_other", "pay_test456"),
	})
	assert.True(t, apperr.Is(err, apperr.InvalidState))
}

func TestReceiptOnlyForOwnSettledPayment(t *testing.T) {
	svc, repo, res, est := newTestService(t)
	p := seedPendingPayment(t, repo, res, est)

	// pending payment has no receipt
	_, _, err := svc.Receipt(res.ID, p.Reference)
	assert.True(t, apperr.Is(err, apperr.InvalidState))

	rows, err := repo.MarkPaidIfPending(p.ID, "pay_test456", time.Now())
	require.NoError(t, err)
	require.Equal(t, int64(1), rows)

	pdf, filename, err := svc.Receipt(res.ID, p.Reference)
	require.NoError(t, err)
	assert.Contains(t, filename, p.Reference)
	assert.True(t, strings.HasPrefix(string(pdf[:4]), "%PDF"))

	// another resident cannot pull it
	_, _, err = svc.Receipt(res.ID+99, p.Reference)
	assert.True(t, apperr.Is(err, apperr.ScopeMismatch))
}

func TestInitiateWithoutGatewayConfigured(t *testing.T) {
	svc, repo, res, est := newTestService(t)

	levy := &Levy{EstateID: est.ID, EstateCode: est.EstateCode, Title: "Levy", Amount: 100, Currency: "NGN"}
	require.NoError(t, repo.CreateLevy(levy))

	// no Razorpay keys in the test config, so initiation is refused
	_, err := svc.Initiate(res.ID, levy.ID)
	assert.True(t, apperr.Is(err, apperr.InvalidState))
}
