package main

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"

	"mechamind.backend/internal/config"
	"mechamind.backend/internal/interfaces/http/handlers"
	"mechamind.backend/pkg/redis"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// newStubRouter wires the real route table with pass-through auth so routing
// concerns can be checked without a database.
func newStubRouter(cfg *config.Config) *gin.Engine {
	pass := func(c *gin.Context) { c.Next() }
	return newRouter(cfg, routeDeps{
		authHandler:      handlers.NewAuthHandler(nil, false),
		chatHandler:      handlers.NewChatHandler(nil, nil),
		partHandler:      handlers.NewPartHandler(nil),
		oilChangeHandler: handlers.NewOilChangeHandler(nil),
		adminHandler:     handlers.NewAdminHandler(nil),
		authMiddleware:   pass,
		adminMiddleware:  pass,
	})
}

func serve(h http.Handler, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	return serveBody(h, method, path, nil, headers)
}

func serveBody(h http.Handler, method, path string, body io.Reader, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func useMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
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
	return srv
}

func jsonBody(s string) io.Reader { return strings.NewReader(s) }
