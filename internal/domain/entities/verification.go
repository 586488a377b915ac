package entities

import (
	"time"

	"github.com/google/uuid"
)

// VerificationCode is a one-time code bound to an email address.
type VerificationCode struct {
	ID        uuid.UUID
	Email     string
	Code      string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// ValidAt reports whether the code is still usable. The boundary instant counts as expired.
func (v *VerificationCode) ValidAt(now time.Time) bool {
	return v.ExpiresAt.After(now)
}

// PendingSignup holds the account waiting for its verification code.
type PendingSignup struct {
	Email        string
	PasswordHash string
	Name         string
	CreatedAt    time.Time
}
