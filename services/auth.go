package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/VyacheslavBabenko/beejee/database"
	"github.com/VyacheslavBabenko/beejee/models"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// Token verification failures. Both are reported as 401 but with different
// messages so the client can explain why the session ended.
var (
	ErrTokenInvalid = errors.New("token invalid")
	ErrTokenExpired = errors.New("token expired")
)

const (
	msgInvalidCredentials = "Invalid credentials"
	msgInvalidToken       = "Invalid token"
	msgExpiredToken       = "Token expired, please log in again"
)

// AdminStore is the persistence the auth service depends on.
type AdminStore interface {
	GetAdminByUsername(ctx context.Context, username string) (*models.Admin, error)
	CreateAdmin(ctx context.Context, username, passwordHash string) (int64, error)
}

// AuthService issues and verifies admin tokens.
type AuthService struct {
	admins AdminStore
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewAuthService creates an AuthService signing HS256 tokens valid for ttl.
func NewAuthService(admins AdminStore, secret []byte, ttl time.Duration) *AuthService {
	return &AuthService{admins: admins, secret: secret, ttl: ttl, now: time.Now}
}

// SeedAdmin creates the default administrator unless an admin with that
// username already exists. It reports whether a row was inserted.
func (s *AuthService) SeedAdmin(ctx context.Context, username, password string) (bool, error) {
	_, err := s.admins.GetAdminByUsername(ctx, username)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, database.ErrNotFound) {
		return false, fmt.Errorf("failed to look up admin: %w", err)
	}

	hash, err := hashPassword(password)
	if err != nil {
		return false, fmt.Errorf("failed to hash admin password: %w", err)
	}
	if _, err := s.admins.CreateAdmin(ctx, username, hash); err != nil {
		return false, err
	}
	return true, nil
}

// Login checks the credentials and returns a signed token for the admin.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResult, error) {
	req.Username = strings.TrimSpace(req.Username)
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	admin, err := s.admins.GetAdminByUsername(ctx, req.Username)
	if errors.Is(err, database.ErrNotFound) {
		return nil, Unauthorized(msgInvalidCredentials, nil)
	} else if err != nil {
		return nil, Internal("Server error during authorization", err)
	}

	if !checkPasswordHash(req.Password, admin.PasswordHash) {
		return nil, Unauthorized(msgInvalidCredentials, nil)
	}

	token, claims, err := s.issue(admin)
	if err != nil {
		return nil, Internal("Failed to generate token", err)
	}
	return &models.LoginResult{Token: token, User: claims.User()}, nil
}

func (s *AuthService) issue(admin *models.Admin) (string, *models.Claims, error) {
	now := s.now()
	claims := &models.Claims{
		ID:       admin.ID,
		Username: admin.Username,
		Role:     models.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return signed, claims, nil
}

// Verify decodes tokenString and checks its signature and expiry. The
// returned error is an *Error wrapping ErrTokenInvalid or ErrTokenExpired.
func (s *AuthService) Verify(tokenString string) (*models.Claims, error) {
	claims := &models.Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))

	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, Unauthorized(msgExpiredToken, ErrTokenExpired)
	case err != nil:
		return nil, Unauthorized(msgInvalidToken, fmt.Errorf("%w: %v", ErrTokenInvalid, err))
	case !token.Valid:
		return nil, Unauthorized(msgInvalidToken, ErrTokenInvalid)
	}
	return claims, nil
}

// Logout acknowledges a logout. Tokens are stateless, so the client ends the
// session by discarding its token.
func (s *AuthService) Logout() string {
	return "Logged out successfully"
}

// hashPassword generates a bcrypt hash of the plain-text password.
func hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// checkPasswordHash compares a bcrypt password hash with a plain-text password.
func checkPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
