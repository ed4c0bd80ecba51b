package raw

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	assert_ "github.com/stretchr/testify/assert"

	"github.com/alanbriolat/youtubuddy"
	"github.com/alanbriolat/youtubuddy/generic"
)

func newTestServer() *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/media/My%20Clip.mp4", "/media/My Clip.mp4":
			w.Header().Set("Content-Type", "video/mp4")
			w.Header().Set("Content-Length", "10")
			if r.Method == http.MethodGet {
				_, _ = fmt.Fprint(w, "0123456789")
			}
		case "/media/page.webm":
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
		default:
			http.NotFound(w, r)
		}
	}))
}

func TestMatch(t *testing.T) {
	assert := assert_.New(t)
	c := NewConfig()

	s, err := c.Match("https://example.com/media/clip.MP4")
	assert.Nil(err)
	assert.Equal("https://example.com/media/clip.MP4", s.URL())

	for _, input := range []string{
		"ftp://example.com/clip.mp4",
		"https://example.com/",
		"https://example.com/media/clip",
		"https://example.com/media/notes.txt",
	} {
		_, err := c.Match(input)
		assert.Error(err, input)
	}
}

func TestResolveAndDownload(t *testing.T) {
	assert := assert_.New(t)
	server := newTestServer()
	defer server.Close()
	c := NewConfig()

	s, err := c.Match(server.URL + "/media/My%20Clip.mp4")
	assert.Nil(err)
	resolved, err := s.Resolve(context.Background())
	assert.Nil(err)
	assert.Equal("My Clip", resolved.Metadata().Title)

	dir := t.TempDir()
	d, err := youtubuddy.NewDownloadBuilder().WithTargetDir(dir).Build()
	assert.Nil(err)
	defer d.Cancel()

	path, err := resolved.Download(d, generic.None[string]())
	assert.Nil(err)
	assert.Equal(filepath.Join(dir, "My Clip.mp4"), path)
	content, _ := os.ReadFile(path)
	assert.Equal("0123456789", string(content))

	path, err = resolved.Download(d, generic.Some("renamed"))
	assert.Nil(err)
	assert.Equal(filepath.Join(dir, "renamed.mp4"), path)
}

func TestResolveRejects(t *testing.T) {
	assert := assert_.New(t)
	server := newTestServer()
	defer server.Close()
	c := NewConfig()

	s, err := c.Match(server.URL + "/media/missing.mp4")
	assert.Nil(err)
	_, err = s.Resolve(context.Background())
	assert.ErrorContains(err, "404")

	s, err = c.Match(server.URL + "/media/page.webm")
	assert.Nil(err)
	_, err = s.Resolve(context.Background())
	assert.ErrorContains(err, "not a media link")
}

func TestIsMediaContentType(t *testing.T) {
	assert := assert_.New(t)

	assert.True(isMediaContentType(""))
	assert.True(isMediaContentType("video/webm"))
	assert.True(isMediaContentType("application/octet-stream"))
	assert.False(isMediaContentType("text/html; charset=utf-8"))
	assert.False(isMediaContentType("application/json"))
}
