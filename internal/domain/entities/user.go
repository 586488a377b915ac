package entities

import (
	"time"

	"github.com/google/uuid"
)

// User is a verified account. Rows exist only after OTP verification.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Verified     bool      `json:"verified"`
	IsAdmin      bool      `json:"isAdmin"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// SignupInput starts an OTP-gated signup
type SignupInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Name     string `json:"name"`
}

// VerifyInput consumes a verification code
type VerifyInput struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required,len=6,numeric"`
}

// EmailInput carries a single address (resend, cancel)
type EmailInput struct {
	Email string `json:"email" binding:"required,email"`
}

// SigninInput represents input for user login
type SigninInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	// UseSession stores the token server side and returns an opaque session id
	UseSession bool `json:"useSession"`
}

// UpdateProfileInput changes the display name and optionally the password
type UpdateProfileInput struct {
	Name            string `json:"name"`
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// AuthResponse is returned by verify and signin
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	SessionID string    `json:"sessionId,omitempty"`
	User      *User     `json:"user"`
}

// SignupResult reports an issued verification code
type SignupResult struct {
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expiresAt"`
	// DevCode is only populated when code exposure is enabled outside production.
	DevCode string `json:"devCode,omitempty"`
}
