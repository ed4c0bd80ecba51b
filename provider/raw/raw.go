package raw

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/alanbriolat/youtubuddy"
	"github.com/alanbriolat/youtubuddy/generic"
	"github.com/alanbriolat/youtubuddy/util"
)

const Name = "raw"

type Config struct {
	Protocols  generic.Set[string]
	Extensions generic.Set[string]
	Client     *http.Client
}

func NewConfig() Config {
	return Config{
		Protocols: generic.NewSet(
			"http",
			"https",
		),
		Extensions: generic.NewSet(
			"flv",
			"m4v",
			"mkv",
			"mov",
			"mp4",
			"webm",
		),
		Client: http.DefaultClient,
	}
}

func (c *Config) Match(s string) (youtubuddy.Source, error) {
	// Expect string to be a URL
	parsedURL, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return nil, err
	}
	// Check that scheme/protocol is valid
	if !c.Protocols.Contains(parsedURL.Scheme) {
		return nil, fmt.Errorf("unknown URL scheme %#v", parsedURL.Scheme)
	}
	// Attempt to extract filename and extension
	filename, err := util.FilenameFromURL(parsedURL)
	if err != nil {
		return nil, err
	}
	base, extension := util.SplitExt(filename)
	if extension == "" {
		return nil, fmt.Errorf("no file extension found")
	}
	if !c.Extensions.Contains(extension) {
		return nil, fmt.Errorf("unknown file extension %v", extension)
	}
	res := source{
		client:    c.Client,
		url:       parsedURL.String(),
		title:     base,
		extension: extension,
	}
	return &res, nil
}

func (c Config) Provider() youtubuddy.Provider {
	return youtubuddy.Provider{
		Name:  Name,
		Match: c.Match,
	}
}

type source struct {
	client    *http.Client
	url       string
	title     string
	extension string
}

func (s *source) URL() string {
	return s.url
}

func (s *source) String() string {
	return s.URL()
}

// Resolve checks with a HEAD request that the link exists and serves something that could be a video.
func (s *source) Resolve(ctx context.Context) (youtubuddy.ResolvedSource, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected response: %v", resp.Status)
	}
	if contentType := resp.Header.Get("Content-Type"); !isMediaContentType(contentType) {
		return nil, fmt.Errorf("not a media link: content type %#v", contentType)
	}
	return &resolvedSource{source: *s}, nil
}

type resolvedSource struct {
	source
}

func (s *resolvedSource) Metadata() youtubuddy.Metadata {
	return youtubuddy.Metadata{Title: s.title}
}

func (s *resolvedSource) Download(d youtubuddy.Download, filename generic.Option[string]) (string, error) {
	base := filename.UnwrapOrElse(func() string {
		return util.SafeFilename(s.title, "video")
	})
	req, err := http.NewRequest(http.MethodGet, s.url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	return d.SaveHTTPRequest(base+"."+s.extension, req)
}

// Servers often label media files generically, so only reject types that are clearly something else.
func isMediaContentType(contentType string) bool {
	mediaType := strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	switch {
	case mediaType == "":
		return true
	case strings.HasPrefix(mediaType, "video/"):
		return true
	case mediaType == "application/octet-stream", mediaType == "binary/octet-stream":
		return true
	default:
		return false
	}
}

func init() {
	youtubuddy.DefaultProviderRegistry.MustAdd(
		NewConfig().Provider().WithPriority(youtubuddy.PriorityLowest),
	)
}
