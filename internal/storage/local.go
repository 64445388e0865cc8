package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// LocalStore writes uploads below a directory served by the HTTP server.
type LocalStore struct {
	dir     string
	baseURL string
}

func NewLocalStore(dir, baseURL string) *LocalStore {
	return &LocalStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}
}

func (s *LocalStore) Driver() string { return "local" }

func (s *LocalStore) Dir() string { return s.dir }

func (s *LocalStore) BaseURL() string { return s.baseURL }

func (s *LocalStore) Save(_ context.Context, upload Upload) (*StoredMedia, error) {
	folder, err := cleanFolder(upload.Folder)
	if err != nil {
		return nil, err
	}

	ext := strings.ToLower(filepath.Ext(upload.Filename))
	name := uuid.New().String() + ext
	target := filepath.Join(s.dir, filepath.FromSlash(folder))
	if err := os.MkdirAll(target, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}

	f, err := os.Create(filepath.Join(target, name))
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	written, err := io.Copy(f, upload.Body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(f.Name())
		return nil, fmt.Errorf("failed to write file: %w", err)
	}

	rel := folder + "/" + name
	return &StoredMedia{
		Path:        s.baseURL + "/" + rel,
		URL:         s.baseURL + "/" + rel,
		ContentType: contentType(upload.Filename),
		Size:        written,
	}, nil
}

// Delete removes a file previously returned by Save. Missing files are ignored.
func (s *LocalStore) Delete(_ context.Context, path string) error {
	rel := strings.TrimPrefix(path, s.baseURL+"/")
	if rel == path || strings.Contains(rel, "..") {
		return ErrInvalidPath
	}
	err := os.Remove(filepath.Join(s.dir, filepath.FromSlash(rel)))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}
