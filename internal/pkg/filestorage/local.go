package filestorage

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/yigit/coursehub/internal/pkg/logger"
)

// ErrNotManaged is returned for URLs that were not produced by this storage.
var ErrNotManaged = errors.New("file is not managed by this storage")

// FileStorage saves uploaded attachments and hands back their public URLs.
type FileStorage interface {
	Save(fileHeader *multipart.FileHeader, subDir string) (string, error)
	Delete(fileURL string) error
	Owns(fileURL string) bool
}

// LocalStorage handles saving files to the local filesystem.
type LocalStorage struct {
	basePath string
	baseURL  string
}

// NewLocalStorage creates the base directory if needed. Files are served by the
// router under baseURL.
func NewLocalStorage(basePath, baseURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		logger.Error().Err(err).Str("path", basePath).Msg("Failed to create storage directory")
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}

	return &LocalStorage{
		basePath: basePath,
		baseURL:  strings.TrimRight(baseURL, "/"),
	}, nil
}

// Save stores the upload under subDir with a random name that keeps the original extension.
func (ls *LocalStorage) Save(fileHeader *multipart.FileHeader, subDir string) (string, error) {
	if fileHeader == nil {
		return "", errors.New("no file provided")
	}
	subDir = cleanSubDir(subDir)

	src, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	dir := filepath.Join(ls.basePath, filepath.FromSlash(subDir))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create subdirectory: %w", err)
	}

	name := uuid.New().String() + strings.ToLower(filepath.Ext(fileHeader.Filename))
	dstPath := filepath.Join(dir, name)

	dst, err := os.Create(dstPath)
	if err != nil {
		return "", fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	if _, err = io.Copy(dst, src); err != nil {
		_ = os.Remove(dstPath)
		return "", fmt.Errorf("failed to save file content: %w", err)
	}

	url := ls.baseURL + "/" + path.Join(subDir, name)
	logger.Info().Str("filename", fileHeader.Filename).Str("url", url).Msg("File saved")
	return url, nil
}

// Owns reports whether the URL points into this storage.
func (ls *LocalStorage) Owns(fileURL string) bool {
	_, ok := ls.relative(fileURL)
	return ok
}

// Delete removes a stored file. Missing files are not an error.
func (ls *LocalStorage) Delete(fileURL string) error {
	rel, ok := ls.relative(fileURL)
	if !ok {
		return ErrNotManaged
	}

	physical := filepath.Join(ls.basePath, filepath.FromSlash(rel))
	if err := os.Remove(physical); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func (ls *LocalStorage) relative(fileURL string) (string, bool) {
	prefix := ls.baseURL + "/"
	if !strings.HasPrefix(fileURL, prefix) {
		return "", false
	}
	rel := path.Clean(strings.TrimPrefix(fileURL, prefix))
	if rel == "." || strings.HasPrefix(rel, "..") || path.IsAbs(rel) {
		return "", false
	}
	return rel, true
}

func cleanSubDir(subDir string) string {
	subDir = path.Clean("/" + filepath.ToSlash(subDir))
	return strings.TrimPrefix(subDir, "/")
}
