package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blogmodapk-backend/internal/authorization"
	"blogmodapk-backend/internal/service"
	"blogmodapk-backend/pkg/logger"
)

type stubParser map[string]service.Actor

func (p stubParser) ParseToken(token string) (service.Actor, error) {
	actor, ok := p[token]
	if !ok {
		return service.Actor{}, service.ErrUnauthorized
	}
	return actor, nil
}

var parser = stubParser{
	"editor": {ID: 2, Role: authorization.RoleEditor},
	"reader": {ID: 3, Role: authorization.RoleUser},
}

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	handlers = append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": ActorFrom(c).ID})
	})
	r.GET("/target", handlers...)
	return r
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	r := newRouter(AuthMiddleware(parser))

	w := serve(r, httptest.NewRequest(http.MethodGet, "/target", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/target", nil)
	req.Header.Set("Authorization", "Bearer forged")
	assert.Equal(t, http.StatusUnauthorized, serve(r, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/target", nil)
	req.Header.Set("Authorization", "bearer editor")
	w = serve(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":2}`, w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/target", nil)
	req.AddCookie(&http.Cookie{Name: AuthTokenCookieName, Value: "reader"})
	w = serve(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":3}`, w.Body.String())
}

func TestOptionalAuthMiddleware(t *testing.T) {
	r := newRouter(OptionalAuthMiddleware(parser))

	w := serve(r, httptest.NewRequest(http.MethodGet, "/target", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":0}`, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/target", nil)
	req.Header.Set("Authorization", "Bearer forged")
	w = serve(r, req)
	assert.Equal(t, http.StatusOK, w.Code, "a bad token is treated as anonymous")
	assert.JSONEq(t, `{"id":0}`, w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/target", nil)
	req.Header.Set("Authorization", "Bearer reader")
	assert.JSONEq(t, `{"id":3}`, serve(r, req).Body.String())
}

func TestRequirePermission(t *testing.T) {
	r := newRouter(AuthMiddleware(parser), RequirePermission(authorization.PermissionAccessAdmin))

	req := httptest.NewRequest(http.MethodGet, "/target", nil)
	req.Header.Set("Authorization", "Bearer reader")
	assert.Equal(t, http.StatusForbidden, serve(r, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/target", nil)
	req.Header.Set("Authorization", "Bearer editor")
	assert.Equal(t, http.StatusOK, serve(r, req).Code)

	anonymous := newRouter(RequirePermission(authorization.PermissionAccessAdmin))
	assert.Equal(t, http.StatusUnauthorized, serve(anonymous, httptest.NewRequest(http.MethodGet, "/target", nil)).Code)
}

func TestRequestIDMiddleware(t *testing.T) {
	var seen string
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/target", func(c *gin.Context) {
		seen = c.GetString(logger.RequestIDKey)
		c.Status(http.StatusNoContent)
	})

	w := serve(r, httptest.NewRequest(http.MethodGet, "/target", nil))
	require.Len(t, seen, 36)
	assert.Equal(t, seen, w.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/target", nil)
	req.Header.Set("X-Request-ID", "upstream-id")
	w = serve(r, req)
	assert.Equal(t, "upstream-id", w.Header().Get("X-Request-ID"))
}

func TestRateLimitMiddleware(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	manager := NewRateLimitManager(ctx, 2, 60, 0)
	defer manager.Shutdown()

	r := gin.New()
	r.Use(RateLimitMiddleware(manager))
	r.GET("/target", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	request := func(path, ip string) int {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.RemoteAddr = ip + ":1234"
		return serve(r, req).Code
	}

	assert.Equal(t, http.StatusOK, request("/target", "10.0.0.1"))
	assert.Equal(t, http.StatusOK, request("/target", "10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, request("/target", "10.0.0.1"))
	assert.Equal(t, http.StatusOK, request("/target", "10.0.0.2"), "buckets are per address")
	assert.Equal(t, http.StatusOK, request("/health", "10.0.0.1"))
}

func TestRateLimitManagerEvictsIdleVisitors(t *testing.T) {
	manager := NewRateLimitManager(context.Background(), 1, 60, 1)
	defer manager.Shutdown()

	manager.Allow("10.0.0.1")
	manager.cleanup(time.Now())
	assert.Len(t, manager.visitors, 1)

	manager.cleanup(time.Now().Add(visitorIdleTimeout + time.Second))
	assert.Empty(t, manager.visitors)
}

func TestSecurityHeaders(t *testing.T) {
	r := newRouter(SecurityHeadersMiddleware())
	w := serve(r, httptest.NewRequest(http.MethodGet, "/target", nil))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Empty(t, w.Header().Get("Strict-Transport-Security"))

	req := httptest.NewRequest(http.MethodGet, "/target", nil)
	req.Header.Set("X-Forwarded-Proto", "https")
	assert.NotEmpty(t, serve(r, req).Header().Get("Strict-Transport-Security"))
}
