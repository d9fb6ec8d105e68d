package supabase

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	storage "github.com/supabase-community/storage-go"
	"tailor-gallery-backend/internal/assets"
)

// StorageClient writes gallery photos to a public Supabase Storage bucket.
type StorageClient struct {
	client  *storage.Client
	bucket  string
	baseURL string
}

var _ assets.ObjectStore = (*StorageClient)(nil)

func NewStorageClient(supabaseURL, apiKey, bucket string) (*StorageClient, error) {
	if bucket == "" {
		return nil, fmt.Errorf("storage bucket is required")
	}
	baseURL := strings.TrimRight(supabaseURL, "/")
	client := storage.NewClient(baseURL+"/storage/v1", apiKey, nil)

	return &StorageClient{
		client:  client,
		bucket:  bucket,
		baseURL: baseURL,
	}, nil
}

// PutObject uploads body under key. Existing objects are never overwritten.
func (s *StorageClient) PutObject(ctx context.Context, key string, body io.Reader, contentType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	upsert := false
	_, err := s.client.UploadFile(s.bucket, assets.EscapeKey(key), body, storage.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return nil
}

// PublicURL is the bucket's public download URL for key, with every path
// segment escaped.
func (s *StorageClient) PublicURL(key string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.baseURL, url.PathEscape(s.bucket), assets.EscapeKey(key))
}
