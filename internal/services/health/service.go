package health

import (
	"context"
	"database/sql"
	"time"
)

const pingTimeout = 2 * time.Second

// Service encapsulates health-related checks.
type Service struct {
	// DB is nil when the deployment runs on the in-memory repository.
	DB *sql.DB
	// CacheEnabled reports whether a cache backend is configured.
	CacheEnabled bool
}

// NewService constructs a new health service.
func NewService(db *sql.DB, cacheEnabled bool) *Service {
	return &Service{DB: db, CacheEnabled: cacheEnabled}
}

// Status reports overall health plus the state of each dependency.
func (s *Service) Status(ctx context.Context) map[string]any {
	out := map[string]any{"ok": true}

	switch {
	case s.DB == nil:
		out["database"] = "memory"
	default:
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		defer cancel()
		if err := s.DB.PingContext(pingCtx); err != nil {
			out["ok"] = false
			out["database"] = "down"
		} else {
			out["database"] = "up"
		}
	}

	if s.CacheEnabled {
		out["cache"] = "enabled"
	} else {
		out["cache"] = "disabled"
	}
	return out
}
