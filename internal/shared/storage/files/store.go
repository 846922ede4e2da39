package files

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"pulsechain-backend/internal/shared/util"
)

const tempDir = "tmp"

// Store keeps uploaded files on the local filesystem. Incoming bytes are
// staged under a temp directory, then promoted into the owner's namespace
// with a rename once the upload is accepted. Keys are paths relative to
// baseDir; no two requests ever share a key.
type Store struct {
	baseDir string
}

// New creates a file store rooted at baseDir.
func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

// Stage writes r into the temp area and returns its key and size.
// The partial file is removed when the write fails.
func (s *Store) Stage(ctx context.Context, r io.Reader) (string, int64, error) {
	if err := ctx.Err(); err != nil {
		return "", 0, err
	}

	dir := filepath.Join(s.baseDir, tempDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", 0, fmt.Errorf("mkdir temp: %w", err)
	}

	key := filepath.Join(tempDir, uuid.NewString())
	fullPath := filepath.Join(s.baseDir, key)
	f, err := os.OpenFile(fullPath, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return "", 0, fmt.Errorf("open staged file: %w", err)
	}

	size, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(fullPath)
		return "", 0, fmt.Errorf("write staged file: %w", err)
	}
	return key, size, nil
}

// Finalize renames a staged file into the owner's namespace under a
// generated, collision-free name. The staged key no longer exists after
// a successful return.
func (s *Store) Finalize(stagedKey, ownerID, originalName string) (fileName, finalKey string, err error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	if sanitized, serr := util.SanitizeFileName(ext); serr != nil || sanitized != ext {
		ext = ""
	}

	ownerDir := util.HashKey(ownerID)
	if err := os.MkdirAll(filepath.Join(s.baseDir, ownerDir), 0o755); err != nil {
		return "", "", fmt.Errorf("mkdir owner dir: %w", err)
	}

	fileName = fmt.Sprintf("%d-%s%s", time.Now().UnixNano(), uuid.NewString(), ext)
	finalKey = filepath.Join(ownerDir, fileName)
	if err := os.Rename(filepath.Join(s.baseDir, stagedKey), filepath.Join(s.baseDir, finalKey)); err != nil {
		return "", "", fmt.Errorf("finalize: %w", err)
	}
	return fileName, finalKey, nil
}

// Remove deletes a stored or staged file.
func (s *Store) Remove(key string) error {
	fullPath, err := s.resolve(key)
	if err != nil {
		return err
	}
	return os.Remove(fullPath)
}

// Open opens a stored file for reading.
func (s *Store) Open(key string) (io.ReadCloser, error) {
	fullPath, err := s.resolve(key)
	if err != nil {
		return nil, err
	}
	return os.Open(fullPath)
}

// FullPath resolves a key to an absolute-ish on-disk path. Extraction
// engines operate on real paths rather than readers.
func (s *Store) FullPath(key string) (string, error) {
	return s.resolve(key)
}

func (s *Store) resolve(key string) (string, error) {
	clean := filepath.Clean(key)
	if clean == "" || clean == "." || strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("invalid storage key")
	}
	return filepath.Join(s.baseDir, clean), nil
}
