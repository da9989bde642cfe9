// Package storage provides ImageStore backends for recipe images.
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
	"sync"

	"github.com/oksasatya/go-recipe-api/internal/domain/repository"
)

// LocalStore writes images below a media root on disk.
// References are URL paths under urlPrefix, served by the router.
type LocalStore struct {
	root      string
	urlPrefix string
	mu        sync.Mutex
}

// NewLocalStore creates root if needed.
func NewLocalStore(root, urlPrefix string) (*LocalStore, error) {
	if root == "" {
		return nil, fmt.Errorf("media root cannot be empty")
	}
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create media root: %w", err)
	}
	return &LocalStore{root: root, urlPrefix: "/" + strings.Trim(urlPrefix, "/")}, nil
}

// Root is the directory the store writes into.
func (s *LocalStore) Root() string { return s.root }

func (s *LocalStore) Save(_ context.Context, key, _ string, r io.Reader) (string, error) {
	p, err := s.pathForKey(key)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return "", fmt.Errorf("failed to create image directory: %w", err)
	}
	f, err := os.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to create image file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(p)
		return "", fmt.Errorf("failed to write image file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return path.Join(s.urlPrefix, filepath.ToSlash(key)), nil
}

func (s *LocalStore) Delete(_ context.Context, ref string) error {
	p, err := s.Path(ref)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete image: %w", err)
	}
	return nil
}

// Path maps a reference returned by Save back to its file path.
func (s *LocalStore) Path(ref string) (string, error) {
	key := strings.TrimPrefix(ref, s.urlPrefix)
	return s.pathForKey(strings.TrimPrefix(key, "/"))
}

func (s *LocalStore) pathForKey(key string) (string, error) {
	clean := path.Clean("/" + filepath.ToSlash(key))
	if clean == "/" || strings.Contains(key, "..") {
		return "", fmt.Errorf("invalid image key %q", key)
	}
	return filepath.Join(s.root, filepath.FromSlash(strings.TrimPrefix(clean, "/"))), nil
}

var _ repository.ImageStore = (*LocalStore)(nil)
