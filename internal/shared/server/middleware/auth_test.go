package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"pulsechain-backend/internal/shared/auth"
	"pulsechain-backend/internal/shared/cache"
)

type memCache struct {
	mu   sync.Mutex
	data map[string]string
	sets int
	gets int
}

func newMemCache() *memCache {
	return &memCache{data: make(map[string]string)}
}

func (m *memCache) Get(ctx context.Context, key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	val, ok := m.data[key]
	return val, ok
}

func (m *memCache) Set(ctx context.Context, key string, ttl time.Duration, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets++
	m.data[key] = value
}

func (m *memCache) Delete(ctx context.Context, key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
}

func authRouter(secret []byte, sessions cache.Coordinator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Auth(secret, sessions, time.Minute))
	r.GET("/whoami", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"userId": UserIDFromContext(c)})
	})
	return r
}

func TestAuthRejectsMissingHeader(t *testing.T) {
	r := authRouter([]byte("secret"), cache.Disabled{})

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}

func TestAuthRejectsBadToken(t *testing.T) {
	r := authRouter([]byte("secret"), cache.Disabled{})

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}

func TestAuthAcceptsValidToken(t *testing.T) {
	secret := []byte("secret")
	token, err := auth.SignJWT(secret, "user-1", "u@example.com", time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	r := authRouter(secret, cache.Disabled{})

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestAuthCachesVerifiedIdentity(t *testing.T) {
	secret := []byte("secret")
	token, err := auth.SignJWT(secret, "user-1", "", time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	sessions := newMemCache()
	r := authRouter(secret, sessions)

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("request %d expected 200, got %d", i+1, resp.Code)
		}
	}

	// The first request verifies and stores; the second hits the session.
	if sessions.sets != 1 {
		t.Fatalf("expected one session write, got %d", sessions.sets)
	}
}

func TestAuthPassesPreflightThrough(t *testing.T) {
	r := authRouter([]byte("secret"), cache.Disabled{})
	r.OPTIONS("/whoami", func(c *gin.Context) {})

	req := httptest.NewRequest(http.MethodOptions, "/whoami", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for preflight, got %d", resp.Code)
	}
}
