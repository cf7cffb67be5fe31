package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/UniPortal-2026/submission-service/internal/models"
)

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9_.-]`)

// FileStore persists uploaded assignment PDFs. The single implementation
// writes to local disk; documents are referenced by stored name.
type FileStore interface {
	Save(originalName, contentType string, size int64, src io.Reader) (*models.FileMeta, error)
	Open(storedName string) (io.ReadSeekCloser, error)
	Remove(storedName string) error
}

type LocalStore struct {
	dir string
}

var _ FileStore = (*LocalStore)(nil)

// NewLocalStore creates the upload directory if missing.
func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &LocalStore{dir: dir}, nil
}

// Save streams the upload to disk under a timestamped, sanitized name so
// concurrent uploads of the same file never collide.
func (s *LocalStore) Save(originalName, contentType string, size int64, src io.Reader) (*models.FileMeta, error) {
	safe := unsafeChars.ReplaceAllString(strings.ReplaceAll(originalName, " ", "_"), "")
	if safe == "" {
		safe = "upload.pdf"
	}
	storedName := fmt.Sprintf("%d_%s", time.Now().UnixMilli(), safe)

	path := filepath.Join(s.dir, storedName)
	dst, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}

	written, err := io.Copy(dst, src)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		// A half-written file is useless; clean up before reporting.
		_ = os.Remove(path)
		return nil, fmt.Errorf("failed to write file: %w", err)
	}

	return &models.FileMeta{
		StoredName:   storedName,
		OriginalName: originalName,
		Path:         path,
		Size:         written,
		ContentType:  contentType,
		UploadedAt:   time.Now().UTC(),
	}, nil
}

func (s *LocalStore) Open(storedName string) (io.ReadSeekCloser, error) {
	// Stored names are generated server-side, but re-check anyway so a
	// tampered database row cannot escape the upload dir.
	if storedName != filepath.Base(storedName) {
		return nil, fmt.Errorf("invalid stored name %q", storedName)
	}
	f, err := os.Open(filepath.Join(s.dir, storedName))
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return f, nil
}

func (s *LocalStore) Remove(storedName string) error {
	if storedName != filepath.Base(storedName) {
		return fmt.Errorf("invalid stored name %q", storedName)
	}
	if err := os.Remove(filepath.Join(s.dir, storedName)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove file: %w", err)
	}
	return nil
}
