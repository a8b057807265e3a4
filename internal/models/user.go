package models

import (
	"strings"
	"time"
)

// MinPasswordLength is the shortest password accepted at registration.
const MinPasswordLength = 6

// User represents a user in the system
type User struct {
	ID           string    `json:"id" dynamodbav:"user_id"`      // Primary Key
	Email        string    `json:"email" dynamodbav:"email"`     // Unique, normalized
	PasswordHash string    `json:"-" dynamodbav:"password_hash"` // bcrypt hash (never in JSON)
	Name         string    `json:"name" dynamodbav:"name"`       // Display name
	CreatedAt    time.Time `json:"createdAt" dynamodbav:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" dynamodbav:"updated_at"`
}

// PublicUser is the outward view of a user
type PublicUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Public strips everything that must never leave the service.
func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Name: u.Name, Email: u.Email}
}

// NormalizeEmail trims and lowercases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// LoginRequest represents login request payload
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest represents registration request payload
type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// Normalize applies the registration input rules: email is trimmed and
// lowercased, name and password are trimmed.
func (r *RegisterRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = NormalizeEmail(r.Email)
	r.Password = strings.TrimSpace(r.Password)
}

// VerifyRequest carries a client-held token for the verification endpoint
type VerifyRequest struct {
	Token string `json:"token"`
}

// UpdateProfileRequest represents a profile name change
type UpdateProfileRequest struct {
	Name string `json:"name" validate:"required"`
}

// AuthResponse represents authentication response
type AuthResponse struct {
	User      PublicUser `json:"user"`
	Token     string     `json:"token"`
	ExpiresIn int        `json:"expires_in"` // seconds
}

// UserResponse wraps a single public user
type UserResponse struct {
	User PublicUser `json:"user"`
}

// ProfileUpdateResponse reports a completed profile update
type ProfileUpdateResponse struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	ItemsUpdated int    `json:"items_updated"`
}
