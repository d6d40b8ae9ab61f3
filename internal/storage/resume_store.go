// Package storage keeps uploaded resumes on the local filesystem.
package storage

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/BradenHooton/leadintake/internal/models"
	"github.com/gabriel-vasile/mimetype"
)

// allowedResumeTypes maps accepted content types to the extension the file
// is stored with. The type is sniffed from the bytes, not taken from the
// client's filename or header.
var allowedResumeTypes = map[string]string{
	"application/pdf":    ".pdf",
	"application/msword": ".doc",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": ".docx",
	"text/plain": ".txt",
}

// DetectResumeType sniffs data and returns its content type and storage
// extension, or ErrInvalidFileType.
func DetectResumeType(data []byte) (string, string, error) {
	mt := mimetype.Detect(data)
	for contentType, ext := range allowedResumeTypes {
		if mt.Is(contentType) {
			return contentType, ext, nil
		}
	}
	return "", "", models.ErrInvalidFileType
}

type ResumeStore struct {
	dir      string
	maxBytes int64
	now      func() time.Time
}

func NewResumeStore(dir string, maxBytes int64) *ResumeStore {
	return &ResumeStore{
		dir:      filepath.Clean(dir),
		maxBytes: maxBytes,
		now:      time.Now,
	}
}

// Init creates the upload directory.
func (s *ResumeStore) Init() error {
	if err := os.MkdirAll(s.dir, 0o750); err != nil {
		return fmt.Errorf("failed to create upload dir: %w", err)
	}
	return nil
}

// Save validates and writes the upload under a fresh unique name and
// returns the stored path.
func (s *ResumeStore) Save(_ context.Context, upload models.ResumeUpload) (string, error) {
	if int64(len(upload.Data)) > s.maxBytes {
		return "", models.ErrFileTooLarge
	}

	_, ext, err := DetectResumeType(upload.Data)
	if err != nil {
		return "", err
	}

	if err := s.Init(); err != nil {
		return "", err
	}

	// resume-<unix-nanos>-<random><ext>; O_EXCL catches the unlikely collision
	name := fmt.Sprintf("resume-%d-%d%s", s.now().UnixNano(), rand.Intn(1_000_000_000), ext)
	path := filepath.Join(s.dir, name)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640)
	if err != nil {
		return "", fmt.Errorf("failed to create resume file: %w", err)
	}

	if _, err := f.Write(upload.Data); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", fmt.Errorf("failed to write resume file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("failed to close resume file: %w", err)
	}

	return path, nil
}

// Delete removes a file previously returned by Save. Paths outside the
// upload directory are refused.
func (s *ResumeStore) Delete(_ context.Context, path string) error {
	if filepath.Dir(filepath.Clean(path)) != s.dir {
		return fmt.Errorf("refusing to delete %q outside upload dir", path)
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete resume file: %w", err)
	}
	return nil
}
