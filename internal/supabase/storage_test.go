package supabase_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tailor-gallery-backend/internal/supabase"
)

func TestStorageClient_PublicURL(t *testing.T) {
	client, err := supabase.NewStorageClient("https://abc.supabase.co/", "anon-key", "gallery")
	require.NoError(t, err)

	assert.Equal(t,
		"https://abc.supabase.co/storage/v1/object/public/gallery/clients/1704067200000-gown.jpg",
		client.PublicURL("clients/1704067200000-gown.jpg"))
}

func TestStorageClient_PublicURLEscapesFilename(t *testing.T) {
	client, err := supabase.NewStorageClient("https://abc.supabase.co", "anon-key", "gallery")
	require.NoError(t, err)

	raw := client.PublicURL("clients/1704067200000-ada dress #2.jpg")
	assert.Equal(t,
		"https://abc.supabase.co/storage/v1/object/public/gallery/clients/1704067200000-ada%20dress%20%232.jpg",
		raw)

	parsed, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "/storage/v1/object/public/gallery/clients/1704067200000-ada dress #2.jpg", parsed.Path)
	assert.Empty(t, parsed.Fragment)
}

func TestStorageClient_PutObjectEscapesFilename(t *testing.T) {
	var gotPath, gotContentType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		gotContentType = r.Header.Get("Content-Type")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"Key":"gallery/clients/1704067200000-ada dress #2.jpg"}`))
	}))
	defer server.Close()

	client, err := supabase.NewStorageClient(server.URL, "anon-key", "gallery")
	require.NoError(t, err)

	err = client.PutObject(context.Background(), "clients/1704067200000-ada dress #2.jpg", strings.NewReader("jpeg"), "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "/storage/v1/object/gallery/clients/1704067200000-ada%20dress%20%232.jpg", gotPath)
	assert.Equal(t, "image/jpeg", gotContentType)
}

func TestStorageClient_RequiresBucket(t *testing.T) {
	_, err := supabase.NewStorageClient("https://abc.supabase.co", "anon-key", "")
	assert.Error(t, err)
}
