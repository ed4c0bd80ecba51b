package youtubuddy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
)

// partSuffix marks a file that is still being written.
const partSuffix = ".part"

var ErrInvalidFilename = errors.New("invalid filename")

// A Download is a single transfer into a target directory, with progress tracking.
type Download interface {
	// AddDownloadedBytes increases how many bytes have been successfully downloaded so far.
	AddDownloadedBytes(n int)

	// AddExpectedBytes increases how many bytes are expected to be downloaded. Non-positive values (unknown sizes)
	// are ignored.
	AddExpectedBytes(n int)

	// Cancel the Download, stopping any in-progress I/O activity.
	Cancel()

	// Context is the cancellable context of this Download.
	Context() context.Context

	// Progress returns the downloaded and expected bytes of the download.
	Progress() (int, int)

	// SaveHTTPRequest will execute the http.Request with Context() and then download the resulting stream like
	// SaveStream.
	SaveHTTPRequest(filename string, req *http.Request) (string, error)

	// SaveStream will download the stream to the named file in the target directory, calling AddDownloadedBytes as
	// necessary. The file only appears under its final name once the stream has been fully written.
	SaveStream(filename string, stream io.Reader) (string, error)

	// SaveURL will make a GET request to the URL and then download the resulting stream like SaveStream.
	SaveURL(filename string, url string) (string, error)

	// TargetDir is the directory files are saved into.
	TargetDir() string

	// Write will ignore the data but will send the byte count to AddDownloadedBytes. Allows progress tracking using
	// io.MultiWriter (but ensure the Download is the last writer to avoid counting failed writes).
	Write(p []byte) (n int, err error)
}

type download struct {
	ctx              context.Context
	cancel           context.CancelFunc
	client           *http.Client
	progressCallback func(int, int)
	targetDir        string
	expectedBytes    int
	downloadedBytes  int
}

func (d *download) AddDownloadedBytes(n int) {
	d.downloadedBytes += n
	if d.progressCallback != nil {
		d.progressCallback(d.Progress())
	}
}

func (d *download) AddExpectedBytes(n int) {
	if n <= 0 {
		return
	}
	d.expectedBytes += n
	if d.progressCallback != nil {
		d.progressCallback(d.Progress())
	}
}

func (d *download) Cancel() {
	d.cancel()
}

func (d *download) Context() context.Context {
	return d.ctx
}

func (d *download) Progress() (int, int) {
	return d.downloadedBytes, d.expectedBytes
}

func (d *download) SaveHTTPRequest(filename string, req *http.Request) (string, error) {
	if req == nil {
		return "", fmt.Errorf("nil request")
	}
	req = req.WithContext(d.Context())
	resp, err := d.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("unexpected response: %v", resp.Status)
	}
	d.AddExpectedBytes(int(resp.ContentLength))
	return d.SaveStream(filename, resp.Body)
}

func (d *download) SaveStream(filename string, stream io.Reader) (_ string, err error) {
	targetPath, err := d.targetPath(filename)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(d.targetDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create target dir: %w", err)
	}

	partPath := targetPath + partSuffix
	f, err := os.Create(partPath)
	if err != nil {
		return "", fmt.Errorf("failed to open target file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(partPath)
		}
	}()

	if _, err = io.Copy(io.MultiWriter(f, d), &readerContext{ctx: d.ctx, r: stream}); err != nil {
		return "", fmt.Errorf("failed to save stream: %w", err)
	}
	if err = f.Close(); err != nil {
		return "", fmt.Errorf("failed to close target file: %w", err)
	}
	if err = os.Rename(partPath, targetPath); err != nil {
		return "", fmt.Errorf("failed to move target file into place: %w", err)
	}
	return targetPath, nil
}

func (d *download) SaveURL(filename string, url string) (string, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	return d.SaveHTTPRequest(filename, req)
}

func (d *download) TargetDir() string {
	return d.targetDir
}

func (d *download) Write(p []byte) (n int, err error) {
	n = len(p)
	d.AddDownloadedBytes(n)
	return n, nil
}

// targetPath only accepts a bare file name, so a download can never escape its target directory.
func (d *download) targetPath(filename string) (string, error) {
	if filename == "" || filename == "." || filename == ".." || filepath.Base(filename) != filename {
		return "", fmt.Errorf("%w: %#v", ErrInvalidFilename, filename)
	}
	return filepath.Join(d.targetDir, filename), nil
}

type DownloadBuilder interface {
	Build() (Download, error)
	WithContext(ctx context.Context) DownloadBuilder
	WithHTTPClient(client *http.Client) DownloadBuilder
	WithProgressCallback(f func(downloaded int, expected int)) DownloadBuilder
	WithTargetDir(dir string) DownloadBuilder
}

type downloadBuilder struct {
	ctx              context.Context
	client           *http.Client
	progressCallback func(int, int)
	targetDir        string
}

func NewDownloadBuilder() DownloadBuilder {
	return &downloadBuilder{
		ctx:       context.Background(),
		client:    http.DefaultClient,
		targetDir: ".",
	}
}

func (b *downloadBuilder) Build() (Download, error) {
	if b.targetDir == "" {
		return nil, fmt.Errorf("empty target dir")
	}
	d := download{}
	d.ctx, d.cancel = context.WithCancel(b.ctx)
	d.client = b.client
	d.progressCallback = b.progressCallback
	d.targetDir = b.targetDir
	return &d, nil
}

func (b *downloadBuilder) WithContext(ctx context.Context) DownloadBuilder {
	b.ctx = ctx
	return b
}

func (b *downloadBuilder) WithHTTPClient(client *http.Client) DownloadBuilder {
	if client != nil {
		b.client = client
	}
	return b
}

func (b *downloadBuilder) WithProgressCallback(f func(int, int)) DownloadBuilder {
	b.progressCallback = f
	return b
}

func (b *downloadBuilder) WithTargetDir(dir string) DownloadBuilder {
	b.targetDir = dir
	return b
}
