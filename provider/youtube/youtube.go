package youtube

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"

	"github.com/kkdai/youtube/v2"

	"github.com/alanbriolat/youtubuddy"
	"github.com/alanbriolat/youtubuddy/generic"
	"github.com/alanbriolat/youtubuddy/util"
)

const Name = "youtube"

var ErrNoFormat = errors.New("no format with both video and audio")

var videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// Container extensions for the mime types YouTube serves.
var extensions = map[string]string{
	"video/mp4":  "mp4",
	"video/webm": "webm",
	"video/3gpp": "3gp",
}

type provider struct {
	client *youtube.Client
}

// New creates a Provider that uses client for all requests.
func New(client *youtube.Client) youtubuddy.Provider {
	p := &provider{client: client}
	return youtubuddy.Provider{Name: Name, Match: p.Match}
}

func (p *provider) Match(s string) (youtubuddy.Source, error) {
	if parsedURL, err := url.Parse(strings.TrimSpace(s)); err != nil {
		return nil, err
	} else if videoID, err := extractVideoID(parsedURL); err != nil {
		return nil, err
	} else {
		return &source{client: p.client, videoID: videoID}, nil
	}
}

type source struct {
	client  *youtube.Client
	videoID string
}

func (s *source) URL() string {
	return fmt.Sprintf("https://www.youtube.com/watch?v=%s", s.videoID)
}

func (s *source) String() string {
	return s.URL()
}

func (s *source) Resolve(ctx context.Context) (youtubuddy.ResolvedSource, error) {
	videoDetails, err := s.client.GetVideoContext(ctx, s.URL())
	if err != nil {
		return nil, fmt.Errorf("failed to get video info: %w", err)
	}
	videoFormat, err := selectFormat(videoDetails.Formats)
	if err != nil {
		return nil, err
	}
	return &resolvedSource{
		source:       *s,
		videoDetails: videoDetails,
		videoFormat:  videoFormat,
	}, nil
}

type resolvedSource struct {
	source
	videoDetails *youtube.Video
	videoFormat  *youtube.Format
}

func (s *resolvedSource) Metadata() youtubuddy.Metadata {
	return youtubuddy.Metadata{
		Title:        s.videoDetails.Title,
		PublishDate:  s.videoDetails.PublishDate,
		Duration:     s.videoDetails.Duration,
		ViewCount:    s.videoDetails.Views,
		ThumbnailURL: largestThumbnail(s.videoDetails.Thumbnails),
	}
}

func (s *resolvedSource) Download(d youtubuddy.Download, filename generic.Option[string]) (string, error) {
	stream, size, err := s.client.GetStreamContext(d.Context(), s.videoDetails, s.videoFormat)
	if err != nil {
		return "", fmt.Errorf("failed to get stream: %w", err)
	}
	defer stream.Close()
	d.AddExpectedBytes(int(size))
	return d.SaveStream(s.getFilename(filename), stream)
}

func (s *resolvedSource) String() string {
	return fmt.Sprintf("%s [%s]", s.videoDetails.Title, s.videoDetails.ID)
}

func (s *resolvedSource) getFilename(filename generic.Option[string]) string {
	base := filename.UnwrapOrElse(func() string {
		return util.SafeFilename(s.videoDetails.Title, s.videoID)
	})
	return base + "." + formatExtension(s.videoFormat)
}

// selectFormat picks the highest resolution format that has both video and audio. Ties are broken by bitrate and
// then by itag, so the same video always gives the same format.
func selectFormat(formats youtube.FormatList) (*youtube.Format, error) {
	var candidates []youtube.Format
	for _, f := range formats {
		if f.AudioChannels > 0 && strings.HasPrefix(f.MimeType, "video/") {
			candidates = append(candidates, f)
		}
	}
	if len(candidates) == 0 {
		return nil, ErrNoFormat
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.Height != b.Height {
			return a.Height > b.Height
		} else if a.Bitrate != b.Bitrate {
			return a.Bitrate > b.Bitrate
		} else {
			return a.ItagNo < b.ItagNo
		}
	})
	return &candidates[0], nil
}

func formatExtension(f *youtube.Format) string {
	mimeType := strings.TrimSpace(strings.SplitN(f.MimeType, ";", 2)[0])
	if ext, ok := extensions[mimeType]; ok {
		return ext
	} else if parts := strings.SplitN(mimeType, "/", 2); len(parts) == 2 && parts[1] != "" {
		return parts[1]
	}
	return "mp4"
}

func largestThumbnail(thumbnails youtube.Thumbnails) string {
	var best *youtube.Thumbnail
	for i := range thumbnails {
		t := &thumbnails[i]
		if best == nil || t.Width*t.Height > best.Width*best.Height {
			best = t
		}
	}
	if best == nil {
		return ""
	}
	return best.URL
}

// Extract video ID from YouTube URL.
//
// Allowed URL formats:
//		http(s?)://(www|m|music).youtube.com/(watch|details)?v={VIDEO_ID}
//		http(s?)://(www|m|music).youtube.com/(v|embed|shorts|live)/{VIDEO_ID}
//		http(s?)://youtube.com/...
//		http(s?)://youtu.be/{VIDEO_ID}
func extractVideoID(url *url.URL) (string, error) {
	if url.Scheme != "http" && url.Scheme != "https" {
		return "", fmt.Errorf("unknown URL scheme %#v", url.Scheme)
	}
	var id string
	switch strings.ToLower(url.Hostname()) {
	case "youtube.com", "www.youtube.com", "m.youtube.com", "music.youtube.com":
		segments := strings.Split(strings.Trim(url.Path, "/"), "/")
		switch segments[0] {
		case "watch", "details":
			if !url.Query().Has("v") {
				return "", fmt.Errorf("missing ?v= query parameter")
			}
			id = url.Query().Get("v")
		case "v", "embed", "shorts", "live":
			if len(segments) > 1 {
				id = segments[1]
			}
		default:
			return "", fmt.Errorf("unrecognised path %#v", url.Path)
		}
	case "youtu.be":
		id = strings.Trim(url.Path, "/")
	default:
		return "", fmt.Errorf("unrecognised hostname")
	}
	if !videoIDPattern.MatchString(id) {
		return "", fmt.Errorf("could not extract video ID")
	}
	return id, nil
}

func init() {
	youtubuddy.DefaultProviderRegistry.MustAdd(New(&youtube.Client{}))
}
