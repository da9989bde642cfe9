package storage

import (
	"context"
	"errors"
	"io"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/oksasatya/go-recipe-api/internal/domain/repository"
)

const imageCacheControl = "public, max-age=86400"

// NewGCSClient creates a Google Cloud Storage client. An empty credsPath uses
// Application Default Credentials.
func NewGCSClient(ctx context.Context, credsPath string) (*storage.Client, error) {
	if credsPath == "" {
		return storage.NewClient(ctx)
	}
	return storage.NewClient(ctx, option.WithCredentialsFile(credsPath))
}

// GCSStore keeps images in a Google Cloud Storage bucket and hands out their
// public URLs as references.
type GCSStore struct {
	client  *storage.Client
	bucket  string
	baseURL string
}

func NewGCSStore(client *storage.Client, bucket string) (*GCSStore, error) {
	if client == nil || bucket == "" {
		return nil, errors.New("gcs not configured")
	}
	return &GCSStore{client: client, bucket: bucket, baseURL: "https://storage.googleapis.com/" + bucket + "/"}, nil
}

// Save writes a new object; an existing object under key is never replaced.
func (s *GCSStore) Save(ctx context.Context, key, contentType string, r io.Reader) (string, error) {
	obj := s.client.Bucket(s.bucket).Object(key).If(storage.Conditions{DoesNotExist: true})
	w := obj.NewWriter(ctx)
	w.ContentType = contentType
	w.CacheControl = imageCacheControl
	w.ChunkSize = 0 // images are small; upload in one request
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}
	return s.URL(key), nil
}

// Delete removes the object behind ref. Foreign or missing objects are ignored.
func (s *GCSStore) Delete(ctx context.Context, ref string) error {
	key, ok := s.objectKey(ref)
	if !ok {
		return nil
	}
	err := s.client.Bucket(s.bucket).Object(key).Delete(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil
	}
	return err
}

func (s *GCSStore) URL(key string) string {
	return s.baseURL + key
}

func (s *GCSStore) objectKey(ref string) (string, bool) {
	key, ok := strings.CutPrefix(ref, s.baseURL)
	if !ok || key == "" || strings.Contains(key, "..") {
		return "", false
	}
	return key, true
}

var _ repository.ImageStore = (*GCSStore)(nil)
