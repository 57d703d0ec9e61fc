package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/tundeajayi/estate-management-backend/config"
	"github.com/tundeajayi/estate-management-backend/utils"
)

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type Service interface {
	Register(input RegisterInput) (*User, error)
	Login(input LoginInput) (*TokenPair, *User, error)
	Refresh(refreshToken string) (string, error)
	Logout(refreshToken string) error
	GetUserByID(userID uint) (User, error)

	RequestPasswordReset(email string) error
	ResetPassword(token string, newPassword string) error

	GetPublicRoles() ([]PublicRoleResponse, error)
}

type service struct {
	repo          Repository
	accessSecret  string
	refreshSecret string
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewService(r Repository, cfg *config.Config) Service {
	return &service{
		repo:          r,
		accessSecret:  cfg.JWTAccessSecret,
		refreshSecret: cfg.JWTRefreshSecret,
		accessTTL:     time.Duration(cfg.JWTAccessTTLHours) * time.Hour,
		refreshTTL:    time.Duration(cfg.JWTRefreshTTLHours) * time.Hour,
	}
}

// =============================
// Register
// =============================

type RegisterInput struct {
	FullName string
	Email    string
	Password string
	Role     string
	Phone    string
	EstateID *uint
}

func (s *service) Register(in RegisterInput) (*User, error) {
	roleName := strings.ToLower(in.Role)
	role, err := s.repo.FindRoleByName(roleName)
	if err != nil {
		return nil, errors.New("invalid role")
	}

	// Super admin accounts are seeded, never self-registered
	if roleName == "superadmin" {
		return nil, errors.New("cannot self-register this role")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	// Estate admins stay pending until the super admin approves their estate
	status := "active"
	if roleName == "estateadmin" {
		status = "pending"
	}

	phone, err := cleanPhone(in.Phone)
	if err != nil {
		return nil, err
	}

	user := &User{
		FullName:     in.FullName,
		Email:        strings.ToLower(in.Email),
		PasswordHash: string(hash),
		RoleID:       role.ID,
		EstateID:     in.EstateID,
		Status:       status,
		Phone:        phone,
	}

	if err := s.repo.Create(user); err != nil {
		return nil, err
	}
	user.Role = *role
	return user, nil
}

// =============================
// Login
// =============================

type LoginInput struct {
	Email    string
	Password string
}

func (s *service) Login(in LoginInput) (*TokenPair, *User, error) {
	user, err := s.repo.FindByEmail(strings.ToLower(in.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, errors.New("invalid credentials")
		}
		return nil, nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, nil, errors.New("invalid credentials")
	}

	if user.Status != "active" {
		return nil, nil, errors.New("account is not active yet")
	}

	access, err := s.generateAccessToken(user)
	if err != nil {
		return nil, nil, err
	}
	refresh, err := s.generateRefreshToken(user)
	if err != nil {
		return nil, nil, err
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh}, user, nil
}

func (s *service) generateAccessToken(user *User) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"role":    user.Role.RoleName,
		"exp":     time.Now().Add(s.accessTTL).Unix(),
		"iat":     time.Now().Unix(),
	}
	if user.EstateID != nil {
		claims["estate_id"] = *user.EstateID
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.accessSecret))
}

func (s *service) generateRefreshToken(user *User) (string, error) {
	// The jti keeps concurrent logins distinct so revoking one session
	// does not revoke the other.
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"jti":     uuid.NewString(),
		"exp":     time.Now().Add(s.refreshTTL).Unix(),
		"iat":     time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.refreshSecret))
}

func (s *service) Refresh(refreshToken string) (string, error) {
	if utils.IsTokenRevoked(refreshToken) {
		return "", errors.New("refresh token revoked")
	}

	token, err := jwt.Parse(refreshToken, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.refreshSecret), nil
	})
	if err != nil || !token.Valid {
		return "", errors.New("invalid refresh token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid claims")
	}
	userIDFloat, ok := claims["user_id"].(float64)
	if !ok {
		return "", errors.New("user_id missing in token")
	}

	user, err := s.repo.FindByID(uint(userIDFloat))
	if err != nil {
		return "", errors.New("user not found")
	}

	return s.generateAccessToken(user)
}

// Logout revokes the refresh token for the remainder of its lifetime.
func (s *service) Logout(refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return utils.RevokeToken(refreshToken, s.refreshTTL)
}

func (s *service) GetUserByID(userID uint) (User, error) {
	user, err := s.repo.FindByID(userID)
	if err != nil {
		return User{}, err
	}
	return *user, nil
}

// =============================
// Password reset
// =============================

func (s *service) RequestPasswordReset(email string) error {
	user, err := s.repo.FindByEmail(strings.ToLower(email))
	if err != nil {
		// Do not leak which emails exist
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	token := generateSecureToken()
	expiry := time.Now().Add(1 * time.Hour)
	if err := s.repo.SetResetToken(user.ID, token, expiry); err != nil {
		return err
	}

	return utils.SendPasswordResetEmail(user.Email, user.FullName, token)
}

func (s *service) ResetPassword(token string, newPassword string) error {
	user, err := s.repo.FindByResetToken(token)
	if err != nil {
		return errors.New("invalid or expired reset token")
	}
	if user.ForgotPasswordExpiry == nil || time.Now().After(*user.ForgotPasswordExpiry) {
		return errors.New("invalid or expired reset token")
	}
	if len(newPassword) < 8 {
		return errors.New("password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.repo.UpdatePassword(user.ID, string(hash)); err != nil {
		return err
	}
	return s.repo.ClearResetToken(user.ID)
}

func (s *service) GetPublicRoles() ([]PublicRoleResponse, error) {
	roles, err := s.repo.ListActiveRoles()
	if err != nil {
		return nil, err
	}
	out := make([]PublicRoleResponse, 0, len(roles))
	for _, r := range roles {
		if r.RoleName == "superadmin" {
			continue
		}
		out = append(out, PublicRoleResponse{ID: r.ID, RoleName: r.RoleName})
	}
	return out, nil
}

// =============================
// Helpers
// =============================

func generateSecureToken() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

var phoneRe = regexp.MustCompile(`^\+?[0-9]{7,15}$`)

func cleanPhone(raw string) (string, error) {
	phone := strings.ReplaceAll(strings.TrimSpace(raw), " ", "")
	phone = strings.ReplaceAll(phone, "-", "")
	if phone == "" {
		return "", nil
	}
	if !phoneRe.MatchString(phone) {
		return "", fmt.Errorf("invalid phone number: %s", raw)
	}
	return phone, nil
}
