package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	"github.com/gin-gonic/gin"

	"pulsechain-backend/internal/documents"
	"pulsechain-backend/internal/extract"
	"pulsechain-backend/internal/services/health"
	"pulsechain-backend/internal/shared/cache"
	"pulsechain-backend/internal/shared/config"
	"pulsechain-backend/internal/shared/server"
	"pulsechain-backend/internal/shared/storage/db"
	"pulsechain-backend/internal/shared/storage/files"
)

// App holds the wired dependencies behind the HTTP surface.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Cache  cache.Coordinator
	Files  *files.Store

	DocumentsRepo    documents.Repo
	DocumentsService *documents.Service
	DocumentsHandler *documents.Handler
}

// Build prepares the dependency graph and the router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.JWTSecret) == "" {
		if !isDevLike(cfg.Env) {
			return nil, fmt.Errorf("JWT_SECRET is required")
		}
		log.Printf("bootstrap: JWT_SECRET empty; using dev secret")
		cfg.JWTSecret = "dev-secret"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	coordinator := buildCache(ctx, cfg)
	fileStore := files.New(cfg.UploadDir)
	pipeline, err := buildPipeline(cfg)
	if err != nil {
		return nil, err
	}

	var repo documents.Repo
	if sqlDB != nil {
		repo = &documents.PGRepo{DB: sqlDB}
	} else {
		repo = documents.NewMemoryRepo()
	}

	svc := &documents.Service{
		Repo:            repo,
		Files:           fileStore,
		Pipeline:        pipeline,
		Cache:           coordinator,
		Validator:       documents.NewValidator(cfg.AllowedMimeTypes, cfg.MaxUploadBytes),
		DocumentTTL:     cfg.CacheDocumentTTL,
		KeepUnextracted: cfg.KeepUnextracted,
	}
	handler := documents.NewHandler(svc)

	app := &App{
		Config:           cfg,
		DB:               sqlDB,
		Cache:            coordinator,
		Files:            fileStore,
		DocumentsRepo:    repo,
		DocumentsService: svc,
		DocumentsHandler: handler,
	}
	app.Router = server.NewRouter(server.RouterDeps{
		Config:    cfg,
		Documents: handler,
		Health:    health.NewService(sqlDB, strings.TrimSpace(cfg.RedisAddr) != ""),
		Sessions:  coordinator,
	})
	return app, nil
}

// Close releases the app's long-lived connections.
func (a *App) Close() {
	if rc, ok := a.Cache.(*cache.RedisCache); ok {
		if err := rc.Close(); err != nil {
			log.Printf("bootstrap: close cache: %v", err)
		}
	}
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			log.Printf("bootstrap: close database: %v", err)
		}
	}
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repository")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repository: %v", err)
			return nil, nil
		}
		return nil, err
	}

	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return sqlDB, nil
}

func buildCache(ctx context.Context, cfg config.Config) cache.Coordinator {
	if strings.TrimSpace(cfg.RedisAddr) == "" {
		log.Printf("bootstrap: REDIS_ADDR empty; cache disabled")
		return cache.Disabled{}
	}
	return cache.NewRedis(ctx, cfg.RedisAddr, cfg.RedisPassword)
}

// buildPipeline assembles the extraction chain. The remote OCR strategy is
// only part of the chain when an endpoint is configured; without it the
// chain ends at the local engine and exhaustion stays a document problem,
// never a gateway one.
func buildPipeline(cfg config.Config) (*extract.Pipeline, error) {
	strategies := []extract.Strategy{
		extract.NativeText{},
		extract.LocalOCR{},
	}
	if strings.TrimSpace(cfg.OCRAPIURL) != "" {
		remote, err := extract.NewRemoteOCR(cfg.OCRAPIURL, cfg.OCRAPIKey, cfg.OCRTimeout)
		if err != nil {
			return nil, fmt.Errorf("remote ocr: %w", err)
		}
		strategies = append(strategies, remote)
	}
	return extract.NewPipeline(strategies...), nil
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
