package entities

import "github.com/google/uuid"

// SessionSource says how the caller authenticated.
type SessionSource string

const (
	SessionFromBearer    SessionSource = "bearer"
	SessionFromCookie    SessionSource = "cookie"
	SessionFromSessionID SessionSource = "session_id"
	SessionFromHeader    SessionSource = "user_id_header"
)

// Session is the authenticated caller attached to a request context.
type Session struct {
	UserID  uuid.UUID
	Email   string
	TokenID string
	Source  SessionSource
}
