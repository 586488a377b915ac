package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mechamind.backend/internal/domain/entities"
	"mechamind.backend/pkg/jwt"
	"mechamind.backend/pkg/redis"
)

type stubSessions struct {
	sessions   map[string]*redis.SessionData
	revoked    map[string]bool
	revokedErr error
}

func (s *stubSessions) GetSession(_ context.Context, id string) (*redis.SessionData, error) {
	if d, ok := s.sessions[id]; ok {
		return d, nil
	}
	return nil, errors.New("redis: nil")
}

func (s *stubSessions) IsRevoked(_ context.Context, jti string) (bool, error) {
	return s.revoked[jti], s.revokedErr
}

type stubAdmin struct {
	admins map[uuid.UUID]bool
	err    error
}

func (s stubAdmin) IsAdmin(_ context.Context, id uuid.UUID) (bool, error) {
	return s.admins[id], s.err
}

func newAuthRouter(cfg AuthConfig, extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers := append([]gin.HandlerFunc{SessionAuth(cfg)}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		s, _ := GetSession(c)
		c.JSON(http.StatusOK, gin.H{"userId": s.UserID.String(), "source": string(s.Source)})
	})
	r.GET("/me", handlers...)
	return r
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSessionAuth_Sources(t *testing.T) {
	svc := jwt.NewJWTService("secret", time.Hour)
	userID := uuid.New()
	issued, err := svc.Issue(userID, "a@mail.com")
	require.NoError(t, err)

	sessions := &stubSessions{sessions: map[string]*redis.SessionData{"sid": {Token: issued.Token, UserID: userID.String()}}}
	r := newAuthRouter(AuthConfig{JWT: svc, Sessions: sessions})

	bearer := httptest.NewRequest(http.MethodGet, "/me", nil)
	bearer.Header.Set(AuthorizationHeader, "Bearer "+issued.Token)

	cookie := httptest.NewRequest(http.MethodGet, "/me", nil)
	cookie.AddCookie(&http.Cookie{Name: AuthCookie, Value: issued.Token})

	session := httptest.NewRequest(http.MethodGet, "/me", nil)
	session.Header.Set(SessionIDHeader, "sid")

	for source, req := range map[entities.SessionSource]*http.Request{
		entities.SessionFromBearer:    bearer,
		entities.SessionFromCookie:    cookie,
		entities.SessionFromSessionID: session,
	} {
		w := serve(r, req)
		assert.Equal(t, http.StatusOK, w.Code, source)
		assert.Contains(t, w.Body.String(), userID.String())
		assert.Contains(t, w.Body.String(), string(source))
	}
}

func TestSessionAuth_Rejections(t *testing.T) {
	svc := jwt.NewJWTService("secret", time.Hour)
	issued, err := svc.Issue(uuid.New(), "a@mail.com")
	require.NoError(t, err)
	expired, err := jwt.NewJWTService("secret", -time.Minute).Issue(uuid.New(), "a@mail.com")
	require.NoError(t, err)

	sessions := &stubSessions{revoked: map[string]bool{issued.ID: true}}
	r := newAuthRouter(AuthConfig{JWT: svc, Sessions: sessions})

	cases := map[string]func(*http.Request){
		"none":            func(*http.Request) {},
		"garbage":         func(req *http.Request) { req.Header.Set(AuthorizationHeader, "Bearer nope") },
		"expired":         func(req *http.Request) { req.Header.Set(AuthorizationHeader, "Bearer "+expired.Token) },
		"revoked":         func(req *http.Request) { req.Header.Set(AuthorizationHeader, "Bearer "+issued.Token) },
		"unknown session": func(req *http.Request) { req.Header.Set(SessionIDHeader, "missing") },
		"header disabled": func(req *http.Request) { req.Header.Set(UserIDHeader, uuid.NewString()) },
	}
	for name, mutate := range cases {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		mutate(req)
		w := serve(r, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code, name)
		assert.Contains(t, w.Body.String(), `"code":"UNAUTHORIZED"`, name)
	}
}

func TestSessionAuth_RevocationBackendDownFailsOpen(t *testing.T) {
	svc := jwt.NewJWTService("secret", time.Hour)
	issued, err := svc.Issue(uuid.New(), "a@mail.com")
	require.NoError(t, err)

	r := newAuthRouter(AuthConfig{JWT: svc, Sessions: &stubSessions{revokedErr: errors.New("down")}})
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(AuthorizationHeader, "Bearer "+issued.Token)
	assert.Equal(t, http.StatusOK, serve(r, req).Code)
}

func TestSessionAuth_UserIDHeader(t *testing.T) {
	svc := jwt.NewJWTService("secret", time.Hour)
	tokenUser := uuid.New()
	issued, err := svc.Issue(tokenUser, "a@mail.com")
	require.NoError(t, err)
	r := newAuthRouter(AuthConfig{JWT: svc, AllowUserIDHeader: true})

	asserted := uuid.New()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(UserIDHeader, asserted.String())
	w := serve(r, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), asserted.String())

	// a valid token wins over the header
	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(UserIDHeader, asserted.String())
	req.Header.Set(AuthorizationHeader, "Bearer "+issued.Token)
	w = serve(r, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), tokenUser.String())

	// an invalid token is not rescued by the header
	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(UserIDHeader, asserted.String())
	req.Header.Set(AuthorizationHeader, "Bearer broken")
	assert.Equal(t, http.StatusUnauthorized, serve(r, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(UserIDHeader, "not-a-uuid")
	assert.Equal(t, http.StatusUnauthorized, serve(r, req).Code)
}

func TestRequireAdmin(t *testing.T) {
	svc := jwt.NewJWTService("secret", time.Hour)
	admin, user := uuid.New(), uuid.New()
	adminTok, err := svc.Issue(admin, "admin@mail.com")
	require.NoError(t, err)
	userTok, err := svc.Issue(user, "user@mail.com")
	require.NoError(t, err)

	r := newAuthRouter(AuthConfig{JWT: svc}, RequireAdmin(stubAdmin{admins: map[uuid.UUID]bool{admin: true}}))

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(AuthorizationHeader, "Bearer "+adminTok.Token)
	assert.Equal(t, http.StatusOK, serve(r, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(AuthorizationHeader, "Bearer "+userTok.Token)
	w := serve(r, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"FORBIDDEN"`)

	failing := newAuthRouter(AuthConfig{JWT: svc}, RequireAdmin(stubAdmin{err: errors.New("db down")}))
	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(AuthorizationHeader, "Bearer "+adminTok.Token)
	assert.Equal(t, http.StatusInternalServerError, serve(failing, req).Code)

	gin.SetMode(gin.TestMode)
	bare := gin.New()
	bare.GET("/x", RequireAdmin(stubAdmin{}), func(c *gin.Context) { c.Status(http.StatusOK) })
	assert.Equal(t, http.StatusUnauthorized, serve(bare, httptest.NewRequest(http.MethodGet, "/x", nil)).Code)
}

func TestBearerOrCookie(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, BearerOrCookie(c))

	c.Request.AddCookie(&http.Cookie{Name: AuthCookie, Value: "tok"})
	assert.Equal(t, "tok", BearerOrCookie(c))
	c.Request.Header.Set(AuthorizationHeader, "Bearer hdr")
	assert.Equal(t, "hdr", BearerOrCookie(c))
}
