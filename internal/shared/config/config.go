package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	Port            string
	Env             string
	CORSAllowOrigin []string
	DatabaseURL     string

	RedisAddr     string
	RedisPassword string

	JWTSecret string

	UploadDir        string
	MaxUploadBytes   int64
	AllowedMimeTypes []string

	// KeepUnextracted persists a document with sentinel content when every
	// extraction strategy fails, instead of rejecting the upload.
	KeepUnextracted bool

	OCRAPIURL  string
	OCRAPIKey  string
	OCRTimeout time.Duration

	CacheDocumentTTL time.Duration
	CacheAuthTTL     time.Duration
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of a local env file for dev convenience.
	if err := godotenv.Load(); err != nil {
		log.Println("config: .env not found, using environment variables")
	}

	env := normalizeEnv(getEnv("ENV", "dev"))
	dbURL := os.Getenv("DATABASE_URL")

	if env == "production" && dbURL == "" {
		log.Printf("DATABASE_URL is required in production")
	}

	return Config{
		Port:             getEnv("PORT", "8080"),
		Env:              env,
		CORSAllowOrigin:  splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173")),
		DatabaseURL:      dbURL,
		RedisAddr:        getEnv("REDIS_ADDR", ""),
		RedisPassword:    getEnv("REDIS_PASSWORD", ""),
		JWTSecret:        getEnv("JWT_SECRET", ""),
		UploadDir:        getEnv("UPLOAD_DIR", "./uploads"),
		MaxUploadBytes:   getEnvInt64("MAX_UPLOAD_BYTES", 5<<20),
		AllowedMimeTypes: splitAndTrim(getEnv("ALLOWED_MIME_TYPES", "application/pdf,image/jpeg,image/jpg,image/png")),
		KeepUnextracted:  getEnvBool("KEEP_UNEXTRACTED", false),
		OCRAPIURL:        getEnv("OCR_API_URL", ""),
		OCRAPIKey:        getEnv("OCR_API_KEY", ""),
		OCRTimeout:       getEnvSeconds("OCR_TIMEOUT_SECONDS", 10*time.Second),
		CacheDocumentTTL: getEnvSeconds("CACHE_DOCUMENT_TTL_SECONDS", time.Hour),
		CacheAuthTTL:     getEnvSeconds("CACHE_AUTH_TTL_SECONDS", 30*time.Minute),
	}
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt64(key string, def int64) int64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || val <= 0 {
		log.Printf("config: %s invalid, using default: %q", key, raw)
		return def
	}
	return val
}

func getEnvBool(key string, def bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.ParseBool(raw)
	if err != nil {
		log.Printf("config: %s invalid, using default: %q", key, raw)
		return def
	}
	return val
}

func getEnvSeconds(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil || val < 0 {
		log.Printf("config: %s invalid, using default: %q", key, raw)
		return def
	}
	return time.Duration(val) * time.Second
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	case "development", "dev":
		return "dev"
	default:
		return "dev"
	}
}
