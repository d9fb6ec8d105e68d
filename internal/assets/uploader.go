// Package assets uploads customer photos to object storage and returns the
// URLs they can be fetched from.
package assets

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
)

// ObjectStore is the object-storage boundary.
type ObjectStore interface {
	PutObject(ctx context.Context, key string, body io.Reader, contentType string) error
	PublicURL(key string) string
}

// File is a locally selected file waiting to be uploaded.
type File struct {
	Name string
	Size int64
	Open func() (io.ReadCloser, error)
}

// UploadError reports the file that stopped an upload batch. Files before
// Index were already stored and are left in place.
type UploadError struct {
	Index    int
	Filename string
	Err      error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload of %q (file %d) failed: %v", e.Filename, e.Index+1, e.Err)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

type Uploader struct {
	store  ObjectStore
	prefix string
	now    func() time.Time
	logger *zap.Logger
}

type Option func(*Uploader)

func WithClock(now func() time.Time) Option {
	return func(u *Uploader) {
		u.now = now
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(u *Uploader) {
		u.logger = l
	}
}

func NewUploader(store ObjectStore, prefix string, opts ...Option) *Uploader {
	u := &Uploader{
		store:  store,
		prefix: strings.Trim(prefix, "/"),
		now:    time.Now,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Upload stores files one at a time in the given order and returns their
// URLs in the same order. The first failure, or a cancelled ctx, stops the
// batch.
func (u *Uploader) Upload(ctx context.Context, files []File) ([]string, error) {
	urls := make([]string, 0, len(files))
	for i, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, &UploadError{Index: i, Filename: f.Name, Err: err}
		}

		key := u.Key(f.Name)
		if err := u.put(ctx, key, f); err != nil {
			return nil, &UploadError{Index: i, Filename: f.Name, Err: err}
		}

		url := u.store.PublicURL(key)
		u.logger.Debug("file uploaded", zap.String("key", key), zap.Int64("size", f.Size))
		urls = append(urls, url)
	}
	return urls, nil
}

// Key names the object for filename: <prefix>/<unix millis>-<base name>.
// Two files with the same name in the same millisecond collide; that is
// accepted.
func (u *Uploader) Key(filename string) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	key := fmt.Sprintf("%d-%s", u.now().UnixMilli(), name)
	if u.prefix == "" {
		return key
	}
	return u.prefix + "/" + key
}

// EscapeKey percent-encodes each "/"-separated segment of key so it can be
// placed in a URL path. The separators themselves are kept.
func EscapeKey(key string) string {
	segments := strings.Split(key, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}

func (u *Uploader) put(ctx context.Context, key string, f File) error {
	if f.Open == nil {
		return fmt.Errorf("file has no content")
	}
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer rc.Close()

	br := bufio.NewReader(rc)
	head, err := br.Peek(3072)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return fmt.Errorf("failed to read file: %w", err)
	}
	contentType := mimetype.Detect(head).String()

	return u.store.PutObject(ctx, key, br, contentType)
}
