package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrInvalidFileFormat = errors.New("invalid file format. only .jpg, .jpeg, .png, .webp are allowed")
	ErrFileSizeExceeded  = errors.New("file size exceeds limit")
	ErrInvalidPath       = errors.New("invalid blob path")
)

const MaxImageSize = 5 * 1024 * 1024 // 5MB

var allowedImageExts = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".webp": true}

// BlobStore stores binary payloads and hands back a URL they can be fetched from
type BlobStore interface {
	Upload(ctx context.Context, objectPath string, r io.Reader) (string, error)
	Delete(ctx context.Context, objectPath string) error
	PathFromURL(url string) (string, bool)
}

// ValidateImage checks the declared size and file name of an image before anything is stored
func ValidateImage(fileName string, size int64) error {
	if size > MaxImageSize {
		return ErrFileSizeExceeded
	}
	if !allowedImageExts[strings.ToLower(filepath.Ext(fileName))] {
		return ErrInvalidFileFormat
	}
	return nil
}

// BookImagePath returns a fresh object path for a book cover, keeping the original extension
func BookImagePath(fileName string) string {
	return path.Join("books", uuid.NewString()+strings.ToLower(filepath.Ext(fileName)))
}

// LocalStore keeps blobs on the local filesystem and serves them under /media
type LocalStore struct {
	root    string
	baseURL string
}

// NewLocalStore creates the root directory if needed
func NewLocalStore(root, publicBaseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(root, os.ModePerm); err != nil {
		return nil, fmt.Errorf("failed to create uploads directory %s: %w", root, err)
	}
	return &LocalStore{root: root, baseURL: strings.TrimRight(publicBaseURL, "/")}, nil
}

// Root is the directory blobs are written to
func (s *LocalStore) Root() string {
	return s.root
}

func (s *LocalStore) resolve(objectPath string) (string, error) {
	clean := path.Clean("/" + objectPath)
	if clean == "/" || strings.Contains(objectPath, "..") {
		return "", ErrInvalidPath
	}
	return filepath.Join(s.root, filepath.FromSlash(strings.TrimPrefix(clean, "/"))), nil
}

// Upload writes the payload and returns its public URL. The URL is only returned once the
// file is fully written and closed.
func (s *LocalStore) Upload(ctx context.Context, objectPath string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	fullPath, err := s.resolve(objectPath)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), os.ModePerm); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	dst, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file on server: %w", err)
	}
	n, err := io.Copy(dst, io.LimitReader(r, MaxImageSize+1))
	if err != nil {
		dst.Close()
		os.Remove(fullPath)
		return "", fmt.Errorf("failed to save file: %w", err)
	}
	if n > MaxImageSize {
		dst.Close()
		os.Remove(fullPath)
		return "", ErrFileSizeExceeded
	}
	if err := dst.Close(); err != nil {
		os.Remove(fullPath)
		return "", fmt.Errorf("failed to save file: %w", err)
	}

	return s.baseURL + "/media/" + path.Clean(objectPath), nil
}

// Delete removes a blob; a missing blob is not an error
func (s *LocalStore) Delete(_ context.Context, objectPath string) error {
	fullPath, err := s.resolve(objectPath)
	if err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete blob: %w", err)
	}
	return nil
}

// PathFromURL recovers the object path from a URL produced by Upload
func (s *LocalStore) PathFromURL(url string) (string, bool) {
	prefix := s.baseURL + "/media/"
	if !strings.HasPrefix(url, prefix) {
		return "", false
	}
	p := strings.TrimPrefix(url, prefix)
	return p, p != ""
}
