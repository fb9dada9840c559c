package storage

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUnconfigured(t *testing.T) {
	c, err := New("", "us-east-1", "", "", "bucket", "")
	require.NoError(t, err)
	assert.Nil(t, c)

	_, err = New("http://s3.local", "us-east-1", "ak", "sk", "", "")
	assert.Error(t, err)
}

func TestFileURLAndExtractKey(t *testing.T) {
	c, err := New("http://s3.local/", "us-east-1", "ak", "sk", "folio", "")
	require.NoError(t, err)

	u := c.FileURL("thumbnails/a.png")
	assert.Equal(t, "http://s3.local/folio/thumbnails/a.png", u)

	key, ok := c.ExtractKey(u)
	assert.True(t, ok)
	assert.Equal(t, "thumbnails/a.png", key)

	_, ok = c.ExtractKey("https://elsewhere.example/a.png")
	assert.False(t, ok)

	cdn, err := New("http://s3.local", "us-east-1", "ak", "sk", "folio", "https://cdn.example/")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/x.jpg", cdn.FileURL("x.jpg"))

	key, ok = cdn.ExtractKey("https://cdn.example/x.jpg")
	assert.True(t, ok)
	assert.Equal(t, "x.jpg", key)
}

func TestParseDataURL(t *testing.T) {
	png := []byte{0x89, 'P', 'N', 'G'}
	encoded := base64.StdEncoding.EncodeToString(png)

	tests := []struct {
		name     string
		in       string
		wantOK   bool
		wantErr  bool
		wantType string
		wantData []byte
	}{
		{"plain url", "https://example.com/a.png", false, false, "", nil},
		{"base64", "data:image/png;base64," + encoded, true, false, "image/png", png},
		{"uppercase type", "data:IMAGE/PNG;base64," + encoded, true, false, "image/png", png},
		{"percent encoded", "data:,Hello%20World", true, false, "text/plain", []byte("Hello World")},
		{"missing comma", "data:image/png;base64", true, true, "", nil},
		{"bad base64", "data:image/png;base64,@@@", true, true, "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ct, data, ok, err := ParseDataURL(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, ct)
			assert.Equal(t, tt.wantData, data)
		})
	}
}

func TestOffloadThumbnailNilClient(t *testing.T) {
	var c *Client
	in := "data:image/png;base64,iVBORw0KGgo="

	got, err := c.OffloadThumbnail(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, in, got)

	c.ReleaseThumbnail(context.Background(), "http://anything")
}

// fakeS3 records PUT and DELETE requests against a path-style bucket.
type fakeS3 struct {
	mu      sync.Mutex
	puts    map[string][]byte
	deletes []string
}

func newFakeS3(t *testing.T) (*fakeS3, *httptest.Server) {
	f := &fakeS3{puts: make(map[string][]byte)}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		switch r.Method {
		case http.MethodPut:
			body, _ := io.ReadAll(r.Body)
			f.puts[r.URL.Path] = body
			w.WriteHeader(http.StatusOK)
		case http.MethodDelete:
			f.deletes = append(f.deletes, r.URL.Path)
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}))
	t.Cleanup(srv.Close)
	return f, srv
}

func TestOffloadThumbnailUploads(t *testing.T) {
	fake, srv := newFakeS3(t)
	c, err := New(srv.URL, "us-east-1", "ak", "sk", "folio", "")
	require.NoError(t, err)

	payload := []byte("not really a jpeg")
	in := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(payload)

	got, err := c.OffloadThumbnail(context.Background(), in)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(got, srv.URL+"/folio/thumbnails/"), got)
	assert.True(t, strings.HasSuffix(got, ".jpg"), got)

	fake.mu.Lock()
	assert.Len(t, fake.puts, 1)
	fake.mu.Unlock()

	c.ReleaseThumbnail(context.Background(), got)
	fake.mu.Lock()
	defer fake.mu.Unlock()
	require.Len(t, fake.deletes, 1)
	assert.True(t, strings.HasPrefix(fake.deletes[0], "/folio/thumbnails/"))
}

func TestOffloadThumbnailRejects(t *testing.T) {
	_, srv := newFakeS3(t)
	c, err := New(srv.URL, "us-east-1", "ak", "sk", "folio", "")
	require.NoError(t, err)

	_, err = c.OffloadThumbnail(context.Background(), "data:image/svg+xml,<svg/>")
	assert.True(t, errors.Is(err, ErrUnsupportedImage))

	big := make([]byte, MaxThumbnailBytes+1)
	_, err = c.OffloadThumbnail(context.Background(), "data:image/png;base64,"+base64.StdEncoding.EncodeToString(big))
	assert.True(t, errors.Is(err, ErrImageTooLarge))

	got, err := c.OffloadThumbnail(context.Background(), "https://example.com/a.png")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/a.png", got)
}

func TestReleaseThumbnailIgnoresForeignURLs(t *testing.T) {
	fake, srv := newFakeS3(t)
	c, err := New(srv.URL, "us-east-1", "ak", "sk", "folio", "")
	require.NoError(t, err)

	c.ReleaseThumbnail(context.Background(), "https://example.com/a.png")
	c.ReleaseThumbnail(context.Background(), srv.URL+"/folio/other/a.png")

	fake.mu.Lock()
	defer fake.mu.Unlock()
	assert.Empty(t, fake.deletes)
}
