package gateaccess

import (
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
)

type fixture struct {
	db          *gorm.DB
	svc         Service
	residentSvc resident.Service
	estateSvc   estate.Service
	est         *estate.Estate
	host        *resident.Resident
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&auth.UserRole{}, &auth.User{},
		&estate.Estate{}, &estate.EstateStreet{}, &estate.ChangeRequest{},
		&resident.Resident{},
		&VisitorPass{}, &VisitRequest{}, &AccessPin{}, &ResidentToken{},
	))
	require.NoError(t, auth.SeedUserRoles(db))

	cfg := &config.Config{JWTAccessSecret: "test-secret", JWTAccessTTLHours: 1}

	authSvc := auth.NewService(auth.NewRepository(db), cfg)
	estateSvc := estate.NewService(estate.NewRepository(db), authSvc)
	residentSvc := resident.NewService(resident.NewRepository(db), estateSvc, cfg)
	svc := NewService(NewRepository(db), residentSvc, estateSvc)

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

	host, err := residentSvc.Register(resident.RegisterInput{
		FullName:   "Chika Nwosu",
		Phone:      "+2348012345671",
		EstateCode: est.EstateCode,
		Street:     "Palm Avenue",
		Password:   "secret-pass",
	})
	require.NoError(t, err)

	// verify the host so they can invite visitors
	host, err = residentSvc.Approve(est.ID, host.ID)
	require.NoError(t, err)
	require.NotEmpty(t, host.GatePassCode)

	return &fixture{
		db:          db,
		svc:         svc,
		residentSvc: residentSvc,
		estateSvc:   estateSvc,
		est:         est,
		host:        host,
	}
}

func (f *fixture) newResident(t *testing.T, name string) *resident.Resident {
	t.Helper()
	res, err := f.residentSvc.Register(resident.RegisterInput{
		FullName:   name,
		Phone:      "+2348099887766",
		EstateCode: f.est.EstateCode,
		Password:   "secret-pass",
	})
	require.NoError(t, err)
	return res
}

func TestVerifyUnknownCodeIsInvalidPass(t *testing.T) {
	f := newFixture(t)

	result, err := f.svc.Verify(f.est.EstateCode, "GP-ZZZZZZ")
	require.NoError(t, err)
	assert.False(t, result.Granted)
	assert.Equal(t, "Invalid Pass", result.Message)

	result, err = f.svc.Verify(f.est.EstateCode, "garbage")
	require.NoError(t, err)
	assert.False(t, result.Granted)
	assert.Equal(t, "Invalid Pass", result.Message)
}

func TestVerifyResidentGatePass(t *testing.T) {
	f := newFixture(t)

	result, err := f.svc.Verify(f.est.EstateCode, f.host.GatePassCode)
	require.NoError(t, err)
	assert.True(t, result.Granted)
	assert.Equal(t, "resident", result.Mode)
	assert.Equal(t, f.host.FullName, result.ResidentName)
}

func TestVerifyUnverifiedResidentIsDenied(t *testing.T) {
	f := newFixture(t)

	// an unverified resident has no pass at all; give one a stale code to
	// simulate a pass surviving a rejection
	res := f.newResident(t, "Tunde Bello")
	require.NoError(t, f.db.Model(&resident.Resident{}).
		Where("id = ?", res.ID).
		Update("gate_pass_code", "GP-STALE1").Error)

	result, err := f.svc.Verify(f.est.EstateCode, "GP-STALE1")
	require.NoError(t, err)
	assert.False(t, result.Granted)
	assert.Contains(t, result.Message, "not been verified")
}

func TestVerifyMovedOutResidentIsDenied(t *testing.T) {
	f := newFixture(t)

	pass := f.host.GatePassCode
	_, err := f.residentSvc.Deactivate(f.est.ID, f.host.ID)
	require.NoError(t, err)

	// deactivation clears the stored pass, so the old code no longer matches
	result, err := f.svc.Verify(f.est.EstateCode, pass)
	require.NoError(t, err)
	assert.False(t, result.Granted)
	assert.Equal(t, "Invalid Pass", result.Message)
}

func TestVerifyInactiveResidentWithLingeringPass(t *testing.T) {
	f := newFixture(t)

	// a pass that somehow survived deactivation still names the move-out
	require.NoError(t, f.db.Model(&resident.Resident{}).
		Where("id = ?", f.host.ID).
		Update("active", false).Error)

	result, err := f.svc.Verify(f.est.EstateCode, f.host.GatePassCode)
	require.NoError(t, err)
	assert.False(t, result.Granted)
	assert.Contains(t, result.Message, "moved out")
}

func TestVerifyGatePassAtForeignEstateIsDenied(t *testing.T) {
	f := newFixture(t)

	other := &estate.Estate{
		EstateCode: "XY34ZW",
		Name:       "Sunset Court",
		Address:    "3 Beach Road",
		AdminName:  "Bola Ade",
		Phone:      "+2348012345672",
		Email:      "admin@sunset.test",
		Approved:   true,
	}
	require.NoError(t, f.db.Create(other).Error)

	// grant at home first, then present the same code at the other gate
	result, err := f.svc.Verify(f.est.EstateCode, f.host.GatePassCode)
	require.NoError(t, err)
	require.True(t, result.Granted)

	result, err = f.svc.Verify(other.EstateCode, f.host.GatePassCode)
	require.NoError(t, err)
	assert.False(t, result.Granted)
	assert.Equal(t, "Invalid Pass", result.Message)
}

func TestVerifyRejectedResidentIsDenied(t *testing.T) {
	f := newFixture(t)

	result, err := f.svc.Verify(f.est.EstateCode, f.host.GatePassCode)
	require.NoError(t, err)
	require.True(t, result.Granted)

	_, err = f.residentSvc.Reject(f.est.ID, f.host.ID)
	require.NoError(t, err)

	result, err = f.svc.Verify(f.est.EstateCode, f.host.GatePassCode)
	require.NoError(t, err)
	assert.False(t, result.Granted)
	assert.Contains(t, result.Message, "not been verified")
}

func TestVisitorPassLifecycle(t *testing.T) {
	f := newFixture(t)

	pass, err := f.svc.CreateVisitorPass(f.host.ID, "Bisi Ade", "family visit")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(pass.Code, "VIS-"))
	assert.Equal(t, PassVisitor, pass.Type)

	result, err := f.svc.Verify(f.est.EstateCode, pass.Code)
	require.NoError(t, err)
	assert.True(t, result.Granted)
	assert.Equal(t, "visitor", result.Mode)
	assert.Equal(t, "Bisi Ade", result.VisitorName)
	assert.Equal(t, f.host.FullName, result.HostName)
}

func TestUnverifiedResidentCannotInvite(t *testing.T) {
	f := newFixture(t)
	res := f.newResident(t, "Tunde Bello")

	_, err := f.svc.CreateVisitorPass(res.ID, "Bisi Ade", "")
	assert.True(t, apperr.Is(err, apperr.InvalidState))
}

func TestOfficialPassVerifies(t *testing.T) {
	f := newFixture(t)

	pass, err := f.svc.CreateOfficialPass(f.est.ID, "PHCN Technician", "meter reading")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(pass.Code, "OFF-"))

	result, err := f.svc.Verify(f.est.EstateCode, pass.Code)
	require.NoError(t, err)
	assert.True(t, result.Granted)
	assert.Equal(t, "official", result.Mode)
}

func TestVisitRequestApprovalMintsOnePass(t *testing.T) {
	f := newFixture(t)

	req, err := f.svc.CreateVisitRequest(VisitRequestInput{
		EstateCode:     f.est.EstateCode,
		ResidentUserID: f.host.UserID,
		VisitorName:    "Bisi Ade",
		VisitorPhone:   "+2348011112222",
		Reason:         "birthday",
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(req.RequestCode, "REQ-"))
	assert.Equal(t, RequestPending, req.Status)
	assert.Equal(t, PurposeResident, req.Purpose)

	updated, pass, err := f.svc.ApproveVisitRequest(f.host.ID, req.ID, "expected at 4pm")
	require.NoError(t, err)
	assert.Equal(t, RequestApproved, updated.Status)
	assert.Equal(t, "expected at 4pm", updated.Note)
	assert.Equal(t, pass.Code, updated.AccessCode)
	require.NotNil(t, updated.VisitorPassID)
	assert.Equal(t, pass.ID, *updated.VisitorPassID)

	// the minted code opens the gate
	result, err := f.svc.Verify(f.est.EstateCode, pass.Code)
	require.NoError(t, err)
	assert.True(t, result.Granted)

	// a second approval loses the race and mints nothing extra
	_, _, err = f.svc.ApproveVisitRequest(f.host.ID, req.ID, "")
	assert.True(t, apperr.Is(err, apperr.InvalidState))

	var passCount int64
	require.NoError(t, f.db.Model(&VisitorPass{}).
		Where("estate_id = ? AND visitor_name = ?", f.est.ID, "Bisi Ade").
		Count(&passCount).Error)
	assert.Equal(t, int64(1), passCount)
}

func TestVisitRequestRejectAfterApproveConflicts(t *testing.T) {
	f := newFixture(t)

	req, err := f.svc.CreateVisitRequest(VisitRequestInput{
		EstateCode:     f.est.EstateCode,
		ResidentUserID: f.host.UserID,
		VisitorName:    "Bisi Ade",
		VisitorPhone:   "+2348011112222",
	})
	require.NoError(t, err)

	_, _, err = f.svc.ApproveVisitRequest(f.host.ID, req.ID, "")
	require.NoError(t, err)

	_, err = f.svc.RejectVisitRequest(f.host.ID, req.ID, "changed my mind")
	assert.True(t, apperr.Is(err, apperr.InvalidState))
}

func TestVisitRequestScopeMismatch(t *testing.T) {
	f := newFixture(t)
	other := f.newResident(t, "Tunde Bello")

	req, err := f.svc.CreateVisitRequest(VisitRequestInput{
		EstateCode:     f.est.EstateCode,
		ResidentUserID: f.host.UserID,
		VisitorName:    "Bisi Ade",
		VisitorPhone:   "+2348011112222",
	})
	require.NoError(t, err)

	_, _, err = f.svc.ApproveVisitRequest(other.ID, req.ID, "")
	assert.True(t, apperr.Is(err, apperr.ScopeMismatch))
}

func TestOfficialVisitRequestDecidedByEstateOffice(t *testing.T) {
	f := newFixture(t)

	req, err := f.svc.CreateVisitRequest(VisitRequestInput{
		EstateCode:   f.est.EstateCode,
		Purpose:      PurposeOfficial,
		VisitorName:  "PHCN Technician",
		VisitorPhone: "+2348033334444",
		Reason:       "meter reading",
	})
	require.NoError(t, err)
	assert.Equal(t, PurposeOfficial, req.Purpose)
	assert.Nil(t, req.ResidentID)

	// a resident cannot decide a request addressed to the office
	_, _, err = f.svc.ApproveVisitRequest(f.host.ID, req.ID, "")
	assert.True(t, apperr.Is(err, apperr.ScopeMismatch))

	updated, pass, err := f.svc.ApproveVisitRequestByEstate(f.est.ID, req.ID, "cleared by the office")
	require.NoError(t, err)
	assert.Equal(t, RequestApproved, updated.Status)
	assert.True(t, strings.HasPrefix(pass.Code, "OFF-"))
	assert.Equal(t, PassOfficial, pass.Type)
	assert.Nil(t, pass.ResidentID)
	assert.Equal(t, pass.Code, updated.AccessCode)

	result, err := f.svc.Verify(f.est.EstateCode, pass.Code)
	require.NoError(t, err)
	assert.True(t, result.Granted)
	assert.Equal(t, "official", result.Mode)

	// a second decision loses the race
	_, _, err = f.svc.ApproveVisitRequestByEstate(f.est.ID, req.ID, "")
	assert.True(t, apperr.Is(err, apperr.InvalidState))
}

func TestOfficialVisitRequestRejectedWithNote(t *testing.T) {
	f := newFixture(t)

	req, err := f.svc.CreateVisitRequest(VisitRequestInput{
		EstateCode:   f.est.EstateCode,
		Purpose:      PurposeOfficial,
		VisitorName:  "Water Corp Inspector",
		VisitorPhone: "+2348033334444",
	})
	require.NoError(t, err)

	rejected, err := f.svc.RejectVisitRequestByEstate(f.est.ID, req.ID, "no inspection scheduled")
	require.NoError(t, err)
	assert.Equal(t, RequestRejected, rejected.Status)
	assert.Equal(t, "no inspection scheduled", rejected.Note)
	assert.Empty(t, rejected.AccessCode)

	var passCount int64
	require.NoError(t, f.db.Model(&VisitorPass{}).
		Where("estate_id = ?", f.est.ID).
		Count(&passCount).Error)
	assert.Equal(t, int64(0), passCount)
}

func TestEstateOfficeCannotDecideResidentRequest(t *testing.T) {
	f := newFixture(t)

	req, err := f.svc.CreateVisitRequest(VisitRequestInput{
		EstateCode:     f.est.EstateCode,
		ResidentUserID: f.host.UserID,
		VisitorName:    "Bisi Ade",
		VisitorPhone:   "+2348011112222",
	})
	require.NoError(t, err)

	_, _, err = f.svc.ApproveVisitRequestByEstate(f.est.ID, req.ID, "")
	assert.True(t, apperr.Is(err, apperr.ScopeMismatch))

	_, err = f.svc.RejectVisitRequestByEstate(f.est.ID, req.ID, "")
	assert.True(t, apperr.Is(err, apperr.ScopeMismatch))
}

func TestVisitRequestToMovedOutResidentCreatesNothing(t *testing.T) {
	f := newFixture(t)

	_, err := f.residentSvc.Deactivate(f.est.ID, f.host.ID)
	require.NoError(t, err)

	_, err = f.svc.CreateVisitRequest(VisitRequestInput{
		EstateCode:     f.est.EstateCode,
		ResidentUserID: f.host.UserID,
		VisitorName:    "Bisi Ade",
		VisitorPhone:   "+2348011112222",
	})
	assert.True(t, apperr.Is(err, apperr.InvalidState))

	var count int64
	require.NoError(t, f.db.Model(&VisitRequest{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestVisitRequestWithoutHostIsRefused(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreateVisitRequest(VisitRequestInput{
		EstateCode:   f.est.EstateCode,
		VisitorName:  "Bisi Ade",
		VisitorPhone: "+2348011112222",
	})
	assert.True(t, apperr.Is(err, apperr.InvalidState))
}

func TestVisitRequestTracking(t *testing.T) {
	f := newFixture(t)

	req, err := f.svc.CreateVisitRequest(VisitRequestInput{
		EstateCode:     f.est.EstateCode,
		ResidentUserID: f.host.UserID,
		VisitorName:    "Bisi Ade",
		VisitorPhone:   "+2348011112222",
	})
	require.NoError(t, err)

	tracked, err := f.svc.TrackVisitRequest(req.RequestCode)
	require.NoError(t, err)
	assert.Equal(t, RequestPending, tracked.Status)
	assert.Empty(t, tracked.AccessCode)

	// once approved, tracking carries the access code and note to the visitor
	_, pass, err := f.svc.ApproveVisitRequest(f.host.ID, req.ID, "come before 6pm")
	require.NoError(t, err)

	tracked, err = f.svc.TrackVisitRequest(req.RequestCode)
	require.NoError(t, err)
	assert.Equal(t, RequestApproved, tracked.Status)
	assert.Equal(t, pass.Code, tracked.AccessCode)
	assert.Equal(t, "come before 6pm", tracked.Note)

	_, err = f.svc.TrackVisitRequest("REQ-NOPE1")
	assert.True(t, apperr.Is(err, apperr.NotFound))
}

func TestGeneratePinsBatch(t *testing.T) {
	f := newFixture(t)

	result, pins, err := f.svc.GeneratePins(f.est.ID, 25)
	require.NoError(t, err)
	assert.Equal(t, 25, result.Requested)
	assert.Equal(t, 25, result.Issued)
	assert.Equal(t, 0, result.Failed)
	require.Len(t, pins, 25)

	wantExpiry := EndOfYear(time.Now())
	for _, p := range pins {
		assert.Len(t, p.Pin, 6)
		assert.Equal(t, PinActive, p.Status)
		assert.Equal(t, wantExpiry.Year(), p.ExpiresAt.Year())
		assert.Equal(t, time.December, p.ExpiresAt.Month())
		assert.Equal(t, 31, p.ExpiresAt.Day())
	}
}

func TestGeneratePinsRejectsBadBatchSize(t *testing.T) {
	f := newFixture(t)

	_, _, err := f.svc.GeneratePins(f.est.ID, 0)
	assert.True(t, apperr.Is(err, apperr.InvalidState))

	_, _, err = f.svc.GeneratePins(f.est.ID, 501)
	assert.True(t, apperr.Is(err, apperr.InvalidState))
}

func TestPinRedeemsExactlyOnce(t *testing.T) {
	f := newFixture(t)

	_, pins, err := f.svc.GeneratePins(f.est.ID, 1)
	require.NoError(t, err)
	pin := pins[0].Pin

	result, err := f.svc.Verify(f.est.EstateCode, pin)
	require.NoError(t, err)
	assert.True(t, result.Granted)
	assert.Equal(t, "pin", result.Mode)

	// second swipe of the same pin is refused
	result, err = f.svc.Verify(f.est.EstateCode, pin)
	require.NoError(t, err)
	assert.False(t, result.Granted)
	assert.Contains(t, result.Message, "already been used")
}

func TestExpiredPinIsDenied(t *testing.T) {
	f := newFixture(t)

	_, pins, err := f.svc.GeneratePins(f.est.ID, 1)
	require.NoError(t, err)

	require.NoError(t, f.db.Model(&AccessPin{}).
		Where("id = ?", pins[0].ID).
		Update("expires_at", time.Now().Add(-time.Hour)).Error)

	result, err := f.svc.Verify(f.est.EstateCode, pins[0].Pin)
	require.NoError(t, err)
	assert.False(t, result.Granted)
	assert.Contains(t, result.Message, "expired")
}

func TestTokenActivationBindsOnce(t *testing.T) {
	f := newFixture(t)

	_, tokens, err := f.svc.GenerateTokens(f.est.ID, 1)
	require.NoError(t, err)
	code := tokens[0].Code
	assert.True(t, strings.HasPrefix(code, "RES-"))

	activated, err := f.svc.ActivateToken(f.host.ID, code)
	require.NoError(t, err)
	assert.Equal(t, TokenActive, activated.Status)
	require.NotNil(t, activated.ResidentID)
	assert.Equal(t, f.host.ID, *activated.ResidentID)

	// the activated token now verifies at the gate
	result, err := f.svc.Verify(f.est.EstateCode, code)
	require.NoError(t, err)
	assert.True(t, result.Granted)
	assert.Equal(t, "token", result.Mode)
	assert.Equal(t, f.host.FullName, result.ResidentName)

	// a second activation attempt conflicts
	_, err = f.svc.ActivateToken(f.host.ID, code)
	assert.True(t, apperr.Is(err, apperr.InvalidState))
}

func TestUnactivatedTokenIsDeniedAtGate(t *testing.T) {
	f := newFixture(t)

	_, tokens, err := f.svc.GenerateTokens(f.est.ID, 1)
	require.NoError(t, err)

	result, err := f.svc.Verify(f.est.EstateCode, tokens[0].Code)
	require.NoError(t, err)
	assert.False(t, result.Granted)
	assert.Contains(t, result.Message, "not been activated")
}

func TestUnverifiedResidentCannotActivateToken(t *testing.T) {
	f := newFixture(t)
	res := f.newResident(t, "Tunde Bello")

	_, tokens, err := f.svc.GenerateTokens(f.est.ID, 1)
	require.NoError(t, err)

	_, err = f.svc.ActivateToken(res.ID, tokens[0].Code)
	assert.True(t, apperr.Is(err, apperr.InvalidState))
}

func TestEndOfYear(t *testing.T) {
	now := time.Date(2025, time.March, 14, 9, 30, 0, 0, time.UTC)
	end := EndOfYear(now)
	assert.Equal(t, 2025, end.Year())
	assert.Equal(t, time.December, end.Month())
	assert.Equal(t, 31, end.Day())
	assert.Equal(t, 23, end.Hour())
	assert.Equal(t, 59, end.Minute())
	assert.Equal(t, 59, end.Second())
}
