package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// RoleAdmin is the only role issued by this service.
const RoleAdmin = "admin"

// Admin represents an administrator account.
type Admin struct {
	ID           int64     `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	PasswordHash string    `json:"-" db:"password"` // Omit from JSON output for security
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// User is the public view of an authenticated principal.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// LoginRequest defines the structure for admin login requests.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// VerifyResult is returned by the token verification endpoint.
type VerifyResult struct {
	User User `json:"user"`
}

// Claims defines the information stored in the JWT. A decoded Claims value is
// the per-request capability handed to handlers.
type Claims struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// IsAdmin reports whether the claims grant administrator rights.
func (c *Claims) IsAdmin() bool {
	return c != nil && c.Role == RoleAdmin
}

// User returns the public view of the claims.
func (c *Claims) User() User {
	return User{ID: c.ID, Username: c.Username, Role: c.Role}
}

// Response is the envelope every API response is wrapped in.
type Response struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	Data    any          `json:"data,omitempty"`
	Errors  []FieldError `json:"errors,omitempty"`
}

// FieldError is a single field-level validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}
