package cache

import (
	"context"
	"strings"
	"time"

	"pulsechain-backend/internal/shared/util"
)

// Coordinator is a fail-open wrapper around a shared key-value cache.
// Backend errors never propagate to callers: Get degrades to a miss,
// Set and Delete log and return. Cached values are best-effort snapshots;
// correctness relies on delete-on-write invalidation, not cache contents.
type Coordinator interface {
	// Get returns the cached value and whether it was present.
	Get(ctx context.Context, key string) (string, bool)
	// Set stores value under key. ttl <= 0 means no expiry.
	Set(ctx context.Context, key string, ttl time.Duration, value string)
	// Delete removes key.
	Delete(ctx context.Context, key string)
}

const maxRawKeyLen = 64

// DeriveKey composes "prefix:raw", substituting a fixed-width content hash
// for raw inputs that are long or contain characters unsafe in a cache key.
func DeriveKey(prefix, raw string) string {
	if len(raw) > maxRawKeyLen || !safeKeyComponent(raw) {
		return prefix + ":" + util.HashKey(raw)
	}
	return prefix + ":" + raw
}

func safeKeyComponent(raw string) bool {
	if raw == "" {
		return false
	}
	if strings.ContainsAny(raw, " \t\r\n") {
		return false
	}
	for i := 0; i < len(raw); i++ {
		if raw[i] < 0x21 || raw[i] > 0x7e {
			return false
		}
	}
	return true
}

// Disabled is a Coordinator for deployments without a cache backend.
// Every read is a miss and every write is a no-op.
type Disabled struct{}

func (Disabled) Get(ctx context.Context, key string) (string, bool)                  { return "", false }
func (Disabled) Set(ctx context.Context, key string, ttl time.Duration, val string) {}
func (Disabled) Delete(ctx context.Context, key string)                             {}
