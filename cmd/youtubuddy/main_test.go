package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/schollz/progressbar/v3"
	assert_ "github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
	"gopkg.in/yaml.v3"

	"github.com/alanbriolat/youtubuddy"
	"github.com/alanbriolat/youtubuddy/generic"
	"github.com/alanbriolat/youtubuddy/workflow"
)

var testMetadata = youtubuddy.Metadata{
	Title:       "Song: Live! (2024)",
	PublishDate: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
	Duration:    3*time.Minute + 5*time.Second,
	ViewCount:   12345,
}

type stubSource struct {
	loaded bool
}

func (s *stubSource) Resolve(ctx context.Context, url string) (youtubuddy.Metadata, error) {
	s.loaded = url == "https://youtu.be/aaaaaaaaaaa"
	if !s.loaded {
		return youtubuddy.Metadata{}, youtubuddy.NewError(youtubuddy.StageResolve, errors.New("no such video"))
	}
	return testMetadata, nil
}

func (s *stubSource) FetchVideo(ctx context.Context, outputFolder string, filename generic.Option[string]) (string, error) {
	path := filepath.Join(outputFolder, filename.UnwrapOr("video")+".mp4")
	return path, os.WriteFile(path, []byte("video"), 0o644)
}

type stubExtractor struct{}

func (stubExtractor) ExtractAudio(ctx context.Context, videoPath string) (string, error) {
	path := strings.TrimSuffix(videoPath, ".mp4") + ".mp3"
	return path, os.WriteFile(path, []byte("audio"), 0o644)
}

func runShell(t *testing.T, input string) string {
	var out bytes.Buffer
	controller := workflow.New(&stubSource{}, stubExtractor{}, zaptest.NewLogger(t))
	s := newShell(controller, &out, newProgressBar(zaptest.NewLogger(t)))
	assert_.Nil(t, s.run(context.Background(), strings.NewReader(input)))
	return out.String()
}

func TestShellDownloadAudio(t *testing.T) {
	assert := assert_.New(t)
	dir := t.TempDir()

	out := runShell(t, strings.Join([]string{
		"load https://youtu.be/aaaaaaaaaaa",
		"folder " + dir,
		"audio on",
		"download",
		"quit",
	}, "\n"))

	assert.Contains(out, "Title:  Song: Live! (2024)")
	assert.Contains(out, "Views:  12,345")
	assert.Contains(out, "Audio: "+filepath.Join(dir, "Song Live 2024_audio.mp3"))
	assert.NotContains(out, "Video: ")
	assert.Contains(out, "Done.")
	assert.FileExists(filepath.Join(dir, "Song Live 2024_audio.mp3"))
	assert.NoFileExists(filepath.Join(dir, "Song Live 2024_audio.mp4"))
}

func TestShellErrors(t *testing.T) {
	assert := assert_.New(t)

	out := runShell(t, strings.Join([]string{
		"download",
		"load https://example.com/nothing",
		"info",
		"load https://youtu.be/aaaaaaaaaaa",
		"download",
		"video maybe",
		"frobnicate",
	}, "\n"))

	assert.Contains(out, "No video loaded. Use: load URL")
	assert.Contains(out, "Error: Invalid URL. Enter a proper URL to a video.")
	assert.Contains(out, "Error: Select at least one option.")
	assert.Contains(out, "Usage: video on|off")
	assert.Contains(out, `Unknown command "frobnicate"`)
	assert.NotContains(out, "no such video")
}

func TestShellState(t *testing.T) {
	assert := assert_.New(t)

	out := runShell(t, "state\nload https://youtu.be/aaaaaaaaaaa\nvideo on\nstate\n")

	assert.Contains(out, "State:  idle")
	assert.Contains(out, "State:  loaded")
	assert.Contains(out, "URL:    https://youtu.be/aaaaaaaaaaa")
	assert.Contains(out, "Video:  on")
	assert.Contains(out, "Audio:  off")
}

func TestPrintSummary(t *testing.T) {
	assert := assert_.New(t)
	summary := testMetadata.Summary()

	var text bytes.Buffer
	assert.Nil(printSummary(&text, summary, "text"))
	assert.Equal(strings.Join(summary.Lines(), "\n")+"\n", text.String())

	var out bytes.Buffer
	assert.Nil(printSummary(&out, summary, "yaml"))
	var decoded youtubuddy.Summary
	assert.Nil(yaml.Unmarshal(out.Bytes(), &decoded))
	assert.Equal(summary, decoded)

	assert.Error(printSummary(&out, summary, "xml"))
}

func TestSaveThumbnail(t *testing.T) {
	assert := assert_.New(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("image"))
	}))
	defer server.Close()

	e := &env{cfg: &youtubuddy.Config{}, log: zaptest.NewLogger(t)}
	dir := t.TempDir()

	metadata := testMetadata
	metadata.ThumbnailURL = server.URL + "/vi/abc/maxresdefault.webp"
	path, err := e.saveThumbnail(context.Background(), metadata, dir)
	if assert.Nil(err) {
		assert.Equal(filepath.Join(dir, "Song Live! (2024).webp"), path)
		content, _ := os.ReadFile(path)
		assert.Equal("image", string(content))
	}

	_, err = e.saveThumbnail(context.Background(), testMetadata, dir)
	assert.ErrorIs(err, errNoThumbnail)
}

func TestProgressBarFailureIsLogged(t *testing.T) {
	assert := assert_.New(t)
	core, logs := observer.New(zapcore.WarnLevel)
	p := newProgressBar(zap.New(core))
	p.newBar = func(size int64) *progressbar.ProgressBar {
		return progressbar.NewOptions64(size, progressbar.OptionSetWriter(io.Discard))
	}

	// More bytes than the server announced
	assert.NotPanics(func() {
		p.update(5, 10)
		p.update(20, 10)
		p.update(30, 10)
	})
	assert.Equal(1, logs.FilterMessageSnippet("current number exceeds max").Len())

	p.finish()
	assert.Nil(p.bar)
	assert.False(p.failed)
}

func TestRegistry(t *testing.T) {
	assert := assert_.New(t)

	e := &env{cfg: &youtubuddy.Config{}, log: zaptest.NewLogger(t)}
	assert.Same(&youtubuddy.DefaultProviderRegistry, e.registry())
	assert.Equal([]string{"youtube", "raw"}, e.registry().List())

	e.cfg.HTTPTimeout = time.Minute
	r := e.registry()
	assert.NotSame(&youtubuddy.DefaultProviderRegistry, r)
	assert.Equal([]string{"youtube", "raw"}, r.List())
}
