package youtubuddy

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/alanbriolat/youtubuddy/generic"
)

// MediaSource resolves URLs to Metadata and fetches the video of the most recently resolved one.
type MediaSource interface {
	// Resolve looks up remote metadata for url without downloading media. Errors are *Error with StageResolve.
	Resolve(ctx context.Context, url string) (Metadata, error)
	// FetchVideo downloads the highest-resolution stream of the last resolved URL into outputFolder, named filename
	// (plus extension) if given. Errors are *Error with StageFetch.
	FetchVideo(ctx context.Context, outputFolder string, filename generic.Option[string]) (string, error)
}

type SourceOption func(*RegistrySource)

// WithProgressCallback reports byte progress of each FetchVideo.
func WithProgressCallback(f func(downloaded int, expected int)) SourceOption {
	return func(s *RegistrySource) {
		s.progressCallback = f
	}
}

// WithHTTPClient sets the client used for plain HTTP downloads.
func WithHTTPClient(client *http.Client) SourceOption {
	return func(s *RegistrySource) {
		s.client = client
	}
}

// RegistrySource is a MediaSource that picks a provider for each URL from a ProviderRegistry. It remembers one
// resolved URL at a time and is not safe for concurrent use.
type RegistrySource struct {
	registry         *ProviderRegistry
	log              *zap.SugaredLogger
	client           *http.Client
	progressCallback func(int, int)

	match    *Match
	resolved ResolvedSource
}

func NewMediaSource(registry *ProviderRegistry, log *zap.Logger, opts ...SourceOption) *RegistrySource {
	s := &RegistrySource{
		registry: registry,
		log:      log.Named("source").Sugar(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RegistrySource) Resolve(ctx context.Context, url string) (Metadata, error) {
	s.match, s.resolved = nil, nil

	match, err := s.registry.Match(url)
	if err != nil {
		return Metadata{}, NewError(StageResolve, err)
	}
	s.log.Debugf("%v matched by provider %v", url, match.ProviderName)

	resolved, err := match.Source.Resolve(ctx)
	if err != nil {
		return Metadata{}, NewError(StageResolve, fmt.Errorf("[%v] %w", match.ProviderName, err))
	}
	s.match, s.resolved = match, resolved
	metadata := resolved.Metadata()
	s.log.Infof("Resolved %v: %#v", match.Source.URL(), metadata.Title)
	return metadata, nil
}

func (s *RegistrySource) FetchVideo(ctx context.Context, outputFolder string, filename generic.Option[string]) (string, error) {
	if s.resolved == nil {
		return "", NewError(StageFetch, ErrNotResolved)
	}
	builder := NewDownloadBuilder().
		WithContext(ctx).
		WithTargetDir(outputFolder).
		WithHTTPClient(s.client).
		WithProgressCallback(s.progressCallback)
	d, err := builder.Build()
	if err != nil {
		return "", NewError(StageFetch, err)
	}
	defer d.Cancel()

	s.log.Infof("Downloading %v into %v", s.match.Source.URL(), outputFolder)
	path, err := s.resolved.Download(d, filename)
	if err != nil {
		return "", NewError(StageFetch, fmt.Errorf("[%v] %w", s.match.ProviderName, err))
	}
	downloaded, _ := d.Progress()
	s.log.Infow("Download finished", "path", path, "bytes", downloaded)
	return path, nil
}

// AudioExtractor writes the audio track of a local video file to a sibling audio file.
type AudioExtractor interface {
	// ExtractAudio returns the path of the new audio file. It never deletes videoPath. Errors are *Error with
	// StageExtract.
	ExtractAudio(ctx context.Context, videoPath string) (string, error)
}
