package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"mechamind.backend/internal/domain/entities"
	"mechamind.backend/internal/infrastructure/datasources/postgres"
	"mechamind.backend/internal/infrastructure/repositories"
	"mechamind.backend/internal/interfaces/http/middleware"
	"mechamind.backend/internal/interfaces/http/schema"
	"mechamind.backend/internal/usecases"
	"mechamind.backend/pkg/jwt"
	"mechamind.backend/pkg/redis"
)

const (
	testSessionKey  = "0000000000000000000000000000000000000000000000000000000000000000"
	testAdminSecret = "setup-secret"
)

type captureMailer struct {
	mu    sync.Mutex
	codes map[string]string
	err   error
}

func (m *captureMailer) SendVerificationCode(_ context.Context, email, code string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.codes[email] = code
	return nil
}

func (m *captureMailer) code(email string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.codes[email]
}

type scriptedModel struct {
	mu     sync.Mutex
	deltas []string
	err    error
	calls  int
}

func (m *scriptedModel) Stream(ctx context.Context, _ string, _ []entities.ConversationTurn, onDelta func(string) error) error {
	m.mu.Lock()
	m.calls++
	deltas, err := m.deltas, m.err
	m.mu.Unlock()

	for _, d := range deltas {
		if err := onDelta(d); err != nil {
			return err
		}
	}
	if err != nil {
		return err
	}
	return ctx.Err()
}

func (m *scriptedModel) set(deltas []string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deltas, m.err = deltas, err
}

type testEnv struct {
	t      *testing.T
	db     *gorm.DB
	router *gin.Engine
	mailer *captureMailer
	model  *scriptedModel
	users  *repositories.UserRepository
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, postgres.Migrate(db))
	return db
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	srv, err := miniredis.Run()
	if err != nil {
		t.Skipf("skip: miniredis unavailable in this environment: %v", err)
	}
	cli := goredis.NewClient(&goredis.Options{Addr: srv.Addr()})
	redis.SetClient(cli)
	t.Cleanup(func() {
		_ = cli.Close()
		srv.Close()
	})

	db := newTestDB(t)
	sessions, err := redis.NewSessionStore(testSessionKey)
	require.NoError(t, err)
	validator, err := schema.ChatRequest()
	require.NoError(t, err)

	env := &testEnv{
		t:      t,
		db:     db,
		mailer: &captureMailer{codes: map[string]string{}},
		model:  &scriptedModel{deltas: []string{"Check ", "the spark plugs."}},
		users:  repositories.NewUserRepository(db),
	}

	jwtService := jwt.NewJWTService("test-secret", time.Hour)
	partRepo := repositories.NewCarPartRepository(db)

	authUsecase := usecases.NewAuthUsecase(
		env.users,
		repositories.NewVerificationRepository(db),
		repositories.NewUnitOfWork(db),
		jwtService,
		env.mailer,
		sessions,
		usecases.AuthOptions{},
	)
	chatUsecase := usecases.NewChatUsecase(
		repositories.NewChatRepository(db),
		partRepo,
		env.model,
		redis.NewLocker(),
		usecases.ChatOptions{MaxAttempts: 2, RetryDelay: time.Millisecond},
	)
	adminUsecase := usecases.NewAdminUsecase(env.users, repositories.NewStatsRepository(db), testAdminSecret)

	authHandler := NewAuthHandler(authUsecase, false)
	chatHandler := NewChatHandler(chatUsecase, validator)
	partHandler := NewPartHandler(usecases.NewInventoryUsecase(partRepo))
	oilHandler := NewOilChangeHandler(usecases.NewMaintenanceUsecase(repositories.NewOilChangeRepository(db)))
	adminHandler := NewAdminHandler(adminUsecase)

	requireAuth := middleware.SessionAuth(middleware.AuthConfig{JWT: jwtService, Sessions: sessions})
	requireAdmin := middleware.RequireAdmin(adminUsecase)

	r := gin.New()
	v1 := r.Group("/api/v1")

	auth := v1.Group("/auth")
	auth.POST("/signup", authHandler.Signup)
	auth.POST("/verify", authHandler.Verify)
	auth.POST("/resend-otp", authHandler.ResendOTP)
	auth.POST("/cancel-otp", authHandler.CancelOTP)
	auth.POST("/signin", authHandler.Signin)
	auth.POST("/signout", authHandler.Signout)
	auth.GET("/me", requireAuth, authHandler.Me)
	auth.POST("/update-profile", requireAuth, authHandler.UpdateProfile)

	v1.POST("/chat", requireAuth, chatHandler.Chat)
	chats := v1.Group("/chats", requireAuth)
	chats.GET("", chatHandler.ListChats)
	chats.GET("/:id", chatHandler.GetChat)
	chats.DELETE("/:id", chatHandler.DeleteChat)

	v1.GET("/parts", partHandler.ListParts)
	v1.GET("/parts/:id", partHandler.GetPart)
	v1.POST("/parts", requireAuth, requireAdmin, partHandler.CreatePart)
	v1.PUT("/parts/:id", requireAuth, requireAdmin, partHandler.UpdatePart)
	v1.DELETE("/parts/:id", requireAuth, requireAdmin, partHandler.DeletePart)

	oil := v1.Group("/oil-change", requireAuth)
	oil.GET("", oilHandler.ListRecords)
	oil.POST("", oilHandler.CreateRecord)
	oil.GET("/status", oilHandler.Status)
	oil.PUT("/:id", oilHandler.UpdateRecord)
	oil.DELETE("/:id", oilHandler.DeleteRecord)

	admin := v1.Group("/admin")
	admin.POST("/setup", adminHandler.Setup)
	admin.GET("/check", requireAuth, adminHandler.Check)
	admin.GET("/stats", requireAuth, requireAdmin, adminHandler.Stats)
	admin.PUT("/users/role", requireAuth, requireAdmin, adminHandler.SetRole)

	env.router = r
	return env
}

type call struct {
	method  string
	path    string
	body    any
	token   string
	headers map[string]string
}

func (e *testEnv) do(c call) *httptest.ResponseRecorder {
	e.t.Helper()
	var reader *bytes.Reader
	switch b := c.body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(e.t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(c.method, c.path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept-Language", "en")
	if c.token != "" {
		req.Header.Set(middleware.AuthorizationHeader, middleware.BearerPrefix+c.token)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

// signup runs the full OTP flow and returns the session token.
func (e *testEnv) signup(email, password string) (string, uuid.UUID) {
	e.t.Helper()
	rec := e.do(call{method: http.MethodPost, path: "/api/v1/auth/signup", body: gin.H{"email": email, "password": password, "name": "Driver"}})
	require.Equal(e.t, http.StatusOK, rec.Code, rec.Body.String())

	rec = e.do(call{method: http.MethodPost, path: "/api/v1/auth/verify", body: gin.H{"email": email, "code": e.mailer.code(email)}})
	require.Equal(e.t, http.StatusCreated, rec.Code, rec.Body.String())

	var body struct {
		Data entities.AuthResponse `json:"data"`
	}
	decode(e.t, rec, &body)
	return body.Data.Token, body.Data.User.ID
}

// makeAdmin flips the stored flag directly.
func (e *testEnv) makeAdmin(email string) {
	e.t.Helper()
	_, err := e.users.SetAdmin(context.Background(), email, true)
	require.NoError(e.t, err)
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Code string `json:"code"`
	}
	decode(t, rec, &body)
	return body.Code
}
