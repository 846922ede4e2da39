package documents

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"time"

	"github.com/google/uuid"

	"pulsechain-backend/internal/extract"
	"pulsechain-backend/internal/shared/cache"
	"pulsechain-backend/internal/shared/metrics"
	"pulsechain-backend/internal/shared/storage/files"
	"pulsechain-backend/internal/shared/telemetry"
)

const (
	maxTitleLen    = 200
	maxCategoryLen = 100
	maxTagLen      = 50
	dateLayout     = "2006-01-02"
)

// Extractor produces text from a staged file, reporting every strategy's
// failure when exhausted.
type Extractor interface {
	Extract(ctx context.Context, path, mimeType string) (string, []extract.Attempt)
}

// Service orchestrates upload, read, and delete flows for documents.
// The cache is advisory: every mutation deletes the keys that could hold
// a stale view, and reads repopulate on miss. A broken cache backend
// degrades every operation to the source of truth, never to an error.
type Service struct {
	Repo      Repo
	Files     *files.Store
	Pipeline  Extractor
	Cache     cache.Coordinator
	Validator *Validator

	DocumentTTL time.Duration
	// KeepUnextracted persists SentinelContent instead of rejecting the
	// upload when extraction is exhausted.
	KeepUnextracted bool
}

// UploadInput is one inbound multipart upload plus its raw metadata.
// Metadata arrives in whatever shape the client sent; normalization to
// the canonical internal representation happens here, once.
type UploadInput struct {
	File     io.Reader
	FileName string
	MimeType string
	Size     int64

	Title    string
	Category string
	Date     string
	Tags     string
}

// Upload validates, stages, extracts, persists, and invalidates. The
// staged temp file is removed on every exit path except the successful
// rename into permanent storage.
func (s *Service) Upload(ctx context.Context, ownerID string, in UploadInput) (Document, error) {
	if verr := s.Validator.Validate(in.MimeType, in.Size); verr != nil {
		return Document{}, verr
	}

	stagedKey, stagedSize, err := s.Files.Stage(ctx, in.File)
	if err != nil {
		return Document{}, fmt.Errorf("stage upload: %w", err)
	}
	staged := true
	defer func() {
		if !staged {
			return
		}
		if rmErr := s.Files.Remove(stagedKey); rmErr != nil {
			telemetry.Error("upload.cleanup", map[string]any{"key": stagedKey, "error": rmErr.Error()})
		}
	}()

	// The declared size already passed validation; re-check what actually
	// arrived on disk.
	if stagedSize == 0 {
		return Document{}, &ValidationError{Reason: ReasonEmpty}
	}
	if stagedSize > s.Validator.MaxBytes() {
		return Document{}, &ValidationError{Reason: ReasonTooLarge}
	}

	stagedPath, err := s.Files.FullPath(stagedKey)
	if err != nil {
		return Document{}, fmt.Errorf("resolve staged file: %w", err)
	}

	metrics.IncExtractionStarted()
	extractStart := time.Now()
	content, attempts := s.Pipeline.Extract(ctx, stagedPath, in.MimeType)
	metrics.ObserveExtractionDurationMs(float64(time.Since(extractStart)) / float64(time.Millisecond))
	if content == "" {
		metrics.IncExtractionFailed()
		if !s.KeepUnextracted {
			if extract.ExternalFailure(attempts) {
				return Document{}, ErrOCRUnavailable
			}
			return Document{}, ErrExtractionFailed
		}
		content = SentinelContent
	} else {
		metrics.IncExtractionSucceeded()
	}

	fileName, finalKey, err := s.Files.Finalize(stagedKey, ownerID, in.FileName)
	if err != nil {
		return Document{}, fmt.Errorf("finalize upload: %w", err)
	}
	staged = false

	now := time.Now().UTC()
	doc := Document{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Title:     boundString(in.Title, maxTitleLen, "Untitled"),
		Category:  boundString(in.Category, maxCategoryLen, "General"),
		Date:      resolveDate(in.Date, now),
		Content:   content,
		Tags:      parseTags(in.Tags),
		FileName:  fileName,
		FilePath:  finalKey,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.Repo.Create(ctx, doc); err != nil {
		if rmErr := s.Files.Remove(finalKey); rmErr != nil {
			telemetry.Error("upload.cleanup", map[string]any{"key": finalKey, "error": rmErr.Error()})
		}
		return Document{}, fmt.Errorf("create document: %w", err)
	}

	s.invalidate(ctx, ownerID, doc.ID)
	telemetry.Info("document.uploaded", map[string]any{"document_id": doc.ID, "owner_id": ownerID})
	return doc, nil
}

// List returns the owner's documents through the cache-aside path.
func (s *Service) List(ctx context.Context, ownerID string) ([]Document, error) {
	key := listKey(ownerID)
	if raw, ok := s.Cache.Get(ctx, key); ok {
		var docs []Document
		if err := json.Unmarshal([]byte(raw), &docs); err == nil {
			return docs, nil
		}
		s.Cache.Delete(ctx, key)
	}

	docs, err := s.Repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if raw, err := json.Marshal(docs); err == nil {
		s.Cache.Set(ctx, key, s.DocumentTTL, string(raw))
	}
	return docs, nil
}

// Get returns one document through the cache-aside path.
func (s *Service) Get(ctx context.Context, ownerID, id string) (Document, error) {
	key := itemKey(ownerID, id)
	if raw, ok := s.Cache.Get(ctx, key); ok {
		var doc Document
		if err := json.Unmarshal([]byte(raw), &doc); err == nil {
			return doc, nil
		}
		s.Cache.Delete(ctx, key)
	}

	doc, err := s.Repo.GetByOwnerAndID(ctx, ownerID, id)
	if err != nil {
		return Document{}, err
	}
	if raw, err := json.Marshal(doc); err == nil {
		s.Cache.Set(ctx, key, s.DocumentTTL, string(raw))
	}
	return doc, nil
}

// Delete removes the row, then the file, then the cache entries. The row
// delete is the transactional boundary; a failed file removal only gets
// logged since the row's absence already makes the file unreachable.
func (s *Service) Delete(ctx context.Context, ownerID, id string) error {
	doc, err := s.Repo.GetByOwnerAndID(ctx, ownerID, id)
	if err != nil {
		return err
	}
	if err := s.Repo.Delete(ctx, ownerID, id); err != nil {
		return err
	}
	if rmErr := s.Files.Remove(doc.FilePath); rmErr != nil {
		telemetry.Error("document.file_delete", map[string]any{"document_id": id, "error": rmErr.Error()})
	}
	s.invalidate(ctx, ownerID, id)
	telemetry.Info("document.deleted", map[string]any{"document_id": id, "owner_id": ownerID})
	return nil
}

// Download returns the document row plus a reader over its stored file.
func (s *Service) Download(ctx context.Context, ownerID, id string) (Document, io.ReadCloser, error) {
	doc, err := s.Repo.GetByOwnerAndID(ctx, ownerID, id)
	if err != nil {
		return Document{}, nil, err
	}
	rc, err := s.Files.Open(doc.FilePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Document{}, nil, ErrNotFound
		}
		return Document{}, nil, err
	}
	return doc, rc, nil
}

func (s *Service) invalidate(ctx context.Context, ownerID, id string) {
	s.Cache.Delete(ctx, listKey(ownerID))
	// The item key cannot be populated yet on upload; deleting it is a
	// no-op safety call there and a real invalidation on delete.
	s.Cache.Delete(ctx, itemKey(ownerID, id))
}

func listKey(ownerID string) string {
	return cache.DeriveKey("documents", ownerID)
}

func itemKey(ownerID, id string) string {
	return cache.DeriveKey("document", ownerID+":"+id)
}

func boundString(raw string, max int, def string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return def
	}
	if len(trimmed) > max {
		trimmed = trimmed[:max]
	}
	return trimmed
}

// parseTags accepts a JSON array or a comma-separated string and always
// yields a canonical set; any parse problem degrades to no tags rather
// than failing the upload.
func parseTags(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []string{}
	}

	var parsed []string
	if strings.HasPrefix(raw, "[") {
		if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
			return []string{}
		}
	} else {
		parsed = strings.Split(raw, ",")
	}

	seen := make(map[string]struct{}, len(parsed))
	tags := []string{}
	for _, tag := range parsed {
		trimmed := strings.TrimSpace(tag)
		if trimmed == "" {
			continue
		}
		if len(trimmed) > maxTagLen {
			trimmed = trimmed[:maxTagLen]
		}
		if _, dup := seen[trimmed]; dup {
			continue
		}
		seen[trimmed] = struct{}{}
		tags = append(tags, trimmed)
	}
	return tags
}

func resolveDate(raw string, now time.Time) time.Time {
	parsed, err := time.Parse(dateLayout, strings.TrimSpace(raw))
	if err != nil {
		return now.Truncate(24 * time.Hour)
	}
	return parsed
}
