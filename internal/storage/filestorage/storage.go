package filestorage

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"bugdash/internal/storage"
)

// ScreenshotStorage persists uploaded screenshots and hands back the opaque
// reference that ends up in a bug's images list.
type ScreenshotStorage interface {
	Save(ctx context.Context, file *multipart.FileHeader) (ref string, size int64, err error)
	Delete(ctx context.Context, ref string) error
	FullPath(ref string) string
	BaseDir() string
}

var allowedExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
}

type LocalStorage struct {
	baseDir string
	maxSize int64
}

func NewLocalStorage(baseDir string, maxSize int64) (*LocalStorage, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, err
	}

	return &LocalStorage{
		baseDir: baseDir,
		maxSize: maxSize,
	}, nil
}

// Save writes the uploaded file under <baseDir>/<yyyy/mm>/<uuid><ext> and
// returns the relative reference. The copy is abandoned and cleaned up if the
// context is cancelled mid-write.
func (s *LocalStorage) Save(ctx context.Context, file *multipart.FileHeader) (string, int64, error) {
	if err := ctx.Err(); err != nil {
		return "", 0, err
	}

	if s.maxSize > 0 && file.Size > s.maxSize {
		return "", 0, storage.ErrFileTooLarge
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedExtensions[ext] {
		return "", 0, storage.ErrInvalidFileType
	}

	ref := filepath.ToSlash(filepath.Join(time.Now().UTC().Format("2006/01"), uuid.New().String()+ext))
	fullPath := filepath.Join(s.baseDir, filepath.FromSlash(ref))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", 0, fmt.Errorf("failed to create directories: %w", err)
	}

	src, err := file.Open()
	if err != nil {
		return "", 0, fmt.Errorf("failed to open source file: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(fullPath)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	done := make(chan struct{})
	var size int64
	var copyErr error

	go func() {
		size, copyErr = io.Copy(dst, src)
		close(done)
	}()

	select {
	case <-done:
		if copyErr != nil {
			_ = os.Remove(fullPath)
			return "", 0, fmt.Errorf("failed to copy file: %w", copyErr)
		}
	case <-ctx.Done():
		_ = os.Remove(fullPath)
		return "", 0, ctx.Err()
	}

	return ref, size, nil
}

func (s *LocalStorage) Delete(ctx context.Context, ref string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := os.Remove(filepath.Join(s.baseDir, filepath.FromSlash(ref)))
	if os.IsNotExist(err) {
		return storage.ErrFileNotFound
	}
	return err
}

func (s *LocalStorage) FullPath(ref string) string {
	return filepath.Join(s.baseDir, filepath.FromSlash(ref))
}

func (s *LocalStorage) BaseDir() string {
	return s.baseDir
}
