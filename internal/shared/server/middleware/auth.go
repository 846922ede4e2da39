package middleware

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"pulsechain-backend/internal/shared/auth"
	"pulsechain-backend/internal/shared/cache"
	"pulsechain-backend/internal/shared/server/respond"
)

const (
	userIDKey    = "userId"
	userEmailKey = "userEmail"
)

type identity struct {
	UserID string `json:"userId"`
	Email  string `json:"email,omitempty"`
}

// Auth validates Bearer JWTs and stores the owner identity in context.
// Verified identities are kept in the shared cache under a hashed token
// key with a short TTL; the cache is advisory and a broken backend just
// means every request re-verifies.
func Auth(secret []byte, sessions cache.Coordinator, sessionTTL time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			return
		}

		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
		if !strings.HasPrefix(authHeader, "Bearer ") {
			respond.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid token", nil)
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer"))
		if token == "" {
			respond.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid token", nil)
			return
		}

		sessionKey := cache.DeriveKey("auth", token)
		if raw, ok := sessions.Get(c.Request.Context(), sessionKey); ok {
			var id identity
			if err := json.Unmarshal([]byte(raw), &id); err == nil && id.UserID != "" {
				setIdentity(c, id)
				c.Next()
				return
			}
			sessions.Delete(c.Request.Context(), sessionKey)
		}

		claims, err := auth.VerifyJWT(secret, token)
		if err != nil {
			respond.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid token", nil)
			return
		}

		id := identity{UserID: claims.UserID, Email: claims.Email}
		if raw, err := json.Marshal(id); err == nil {
			sessions.Set(c.Request.Context(), sessionKey, sessionTTL, string(raw))
		}
		setIdentity(c, id)
		c.Next()
	}
}

func setIdentity(c *gin.Context, id identity) {
	c.Set(userIDKey, id.UserID)
	if id.Email != "" {
		c.Set(userEmailKey, id.Email)
	}
}

// UserIDFromContext fetches the user ID set by the auth middleware.
func UserIDFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(userIDKey)
	if id, ok := val.(string); ok {
		return id
	}
	return ""
}

// UserEmailFromContext fetches the user email set by the auth middleware.
func UserEmailFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(userEmailKey)
	if email, ok := val.(string); ok {
		return email
	}
	return ""
}
