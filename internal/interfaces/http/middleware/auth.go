package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"mechamind.backend/internal/domain/entities"
	domainerrors "mechamind.backend/internal/domain/errors"
	"mechamind.backend/internal/interfaces/http/response"
	"mechamind.backend/pkg/jwt"
	"mechamind.backend/pkg/logger"
	"mechamind.backend/pkg/redis"
)

const (
	// AuthorizationHeader is the header key for authorization
	AuthorizationHeader = "Authorization"
	// BearerPrefix is the prefix for bearer tokens
	BearerPrefix = "Bearer "
	// AuthCookie carries the token for browser clients
	AuthCookie      = "auth-token"
	SessionIDHeader = "X-Session-Id"
	UserIDHeader    = "X-User-Id"

	// SessionKey is the gin context key for the resolved *entities.Session
	SessionKey = "session"
)

// SessionResolver looks up opaque sessions and revoked token ids.
type SessionResolver interface {
	GetSession(ctx context.Context, sessionID string) (*redis.SessionData, error)
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// AuthConfig wires the session middleware.
type AuthConfig struct {
	JWT      *jwt.JWTService
	Sessions SessionResolver
	// AllowUserIDHeader accepts a caller-asserted X-User-Id when no token is sent.
	AllowUserIDHeader bool
}

// SessionAuth resolves the caller from a bearer token, the auth cookie, an
// opaque session id or, when allowed, the X-User-Id header. Unauthenticated
// requests are rejected with 401.
func SessionAuth(cfg AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := resolveSession(c, cfg)
		if err != nil {
			logger.Debug(c.Request.Context(), "Authentication failed", zap.String("path", c.FullPath()), zap.Error(err))
			response.Abort(c, domainerrors.Unauthorized(err.Error()))
			return
		}

		c.Set(SessionKey, session)
		ctx := context.WithValue(c.Request.Context(), logger.UserIDKey, session.UserID.String())
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func resolveSession(c *gin.Context, cfg AuthConfig) (*entities.Session, error) {
	ctx := c.Request.Context()

	token, source := tokenFromRequest(c)
	if token == "" && cfg.Sessions != nil {
		if sid := c.GetHeader(SessionIDHeader); sid != "" {
			data, err := cfg.Sessions.GetSession(ctx, sid)
			if err != nil {
				return nil, errors.New("session not found")
			}
			token, source = data.Token, entities.SessionFromSessionID
		}
	}

	if token != "" {
		claims, err := cfg.JWT.ValidateToken(token)
		if err != nil {
			if errors.Is(err, jwt.ErrExpiredToken) {
				return nil, errors.New("token has expired")
			}
			return nil, errors.New("invalid token")
		}
		if cfg.Sessions != nil {
			revoked, err := cfg.Sessions.IsRevoked(ctx, claims.ID)
			if err != nil {
				logger.Warn(ctx, "Revocation check unavailable", zap.Error(err))
			} else if revoked {
				return nil, errors.New("token has been revoked")
			}
		}
		return &entities.Session{UserID: claims.UserID, Email: claims.Email, TokenID: claims.ID, Source: source}, nil
	}

	if cfg.AllowUserIDHeader {
		if raw := c.GetHeader(UserIDHeader); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				return nil, errors.New("invalid user id header")
			}
			return &entities.Session{UserID: id, Source: entities.SessionFromHeader}, nil
		}
	}

	return nil, errors.New("authentication required")
}

func tokenFromRequest(c *gin.Context) (string, entities.SessionSource) {
	if h := c.GetHeader(AuthorizationHeader); strings.HasPrefix(h, BearerPrefix) {
		if t := strings.TrimSpace(strings.TrimPrefix(h, BearerPrefix)); t != "" {
			return t, entities.SessionFromBearer
		}
	}
	if t, err := c.Cookie(AuthCookie); err == nil && t != "" {
		return t, entities.SessionFromCookie
	}
	return "", ""
}

// BearerOrCookie returns the raw token the request carries, if any.
func BearerOrCookie(c *gin.Context) string {
	t, _ := tokenFromRequest(c)
	return t
}

// GetSession returns the session set by SessionAuth.
func GetSession(c *gin.Context) (*entities.Session, bool) {
	v, ok := c.Get(SessionKey)
	if !ok {
		return nil, false
	}
	s, ok := v.(*entities.Session)
	return s, ok
}

// GetUserID gets the user ID from context
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	s, ok := GetSession(c)
	if !ok {
		return uuid.Nil, false
	}
	return s.UserID, true
}

// AdminChecker reports the stored admin flag.
type AdminChecker interface {
	IsAdmin(ctx context.Context, userID uuid.UUID) (bool, error)
}

// RequireAdmin must run after SessionAuth.
func RequireAdmin(checker AdminChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := GetUserID(c)
		if !ok {
			response.Abort(c, domainerrors.Unauthorized("authentication required"))
			return
		}

		isAdmin, err := checker.IsAdmin(c.Request.Context(), userID)
		if err != nil {
			response.Abort(c, err)
			return
		}
		if !isAdmin {
			response.Abort(c, domainerrors.Forbidden("admin access required"))
			return
		}
		c.Next()
	}
}
