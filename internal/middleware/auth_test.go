package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"project-management-api/internal/auth"
	"project-management-api/internal/config"
)

type stubUsers struct {
	known map[int]bool
	err   error
}

func (s stubUsers) Exists(_ context.Context, id int) (bool, error) {
	return s.known[id], s.err
}

func testTokens() *auth.TokenIssuer {
	return auth.NewTokenIssuer(config.JWTConfig{Secret: "test", Issuer: "pm-test", Lifetime: time.Hour})
}

func newRouter(users UserChecker) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(JWTAuthMiddleware(testTokens(), users, zap.NewNop()))
	r.GET("/protected", func(c *gin.Context) {
		id, ok := UserID(c)
		if !ok {
			c.Status(http.StatusTeapot)
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": id, "name": c.GetString(ContextUserName)})
	})
	return r
}

func TestJWTAuthMiddleware_Success(t *testing.T) {
	r := newRouter(stubUsers{known: map[int]bool{1: true}})

	token, err := testTokens().GenerateToken(1, "alice")
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"id":1,"name":"alice"}`, w.Body.String())
}

func TestJWTAuthMiddleware_QueryToken(t *testing.T) {
	r := newRouter(stubUsers{known: map[int]bool{1: true}})
	token, err := testTokens().GenerateToken(1, "alice")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/protected?token="+token, nil))
	require.Equal(t, http.StatusOK, w.Code)
}

func TestJWTAuthMiddleware_MissingHeader(t *testing.T) {
	r := newRouter(stubUsers{})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTAuthMiddleware_DeletedUser(t *testing.T) {
	r := newRouter(stubUsers{known: map[int]bool{}})
	token, err := testTokens().GenerateToken(5, "ghost")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTAuthMiddleware_LookupFailure(t *testing.T) {
	r := newRouter(stubUsers{err: errors.New("db down")})
	token, err := testTokens().GenerateToken(1, "alice")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.NotContains(t, w.Body.String(), "db down")
}

func TestRequestLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zap.DebugLevel)
	r := gin.New()
	r.Use(RequestLogger(zap.New(core)))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	r.ServeHTTP(w, req)
	require.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	require.NotEmpty(t, w.Header().Get(RequestIDHeader))

	entries := logs.All()
	require.Len(t, entries, 2)
	require.Equal(t, zap.DebugLevel, entries[0].Level)
	require.Equal(t, "abc-123", entries[0].ContextMap()["request_id"])
	require.Equal(t, zap.ErrorLevel, entries[1].Level)
}
