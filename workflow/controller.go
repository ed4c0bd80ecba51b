// Package workflow coordinates loading a URL, presenting its metadata and downloading the video and/or its audio.
package workflow

import (
	"context"
	"errors"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/r3labs/diff/v3"
	"go.uber.org/zap"

	"github.com/alanbriolat/youtubuddy"
	"github.com/alanbriolat/youtubuddy/generic"
	"github.com/alanbriolat/youtubuddy/internal/sync_"
)

// MaxLoggedErrorLength bounds the error detail logged when a URL fails to load.
const MaxLoggedErrorLength = 400

type State int

const (
	// Idle is the initial state, and the state during and after any failed load.
	Idle State = iota
	// Loaded means the most recent load succeeded and its Metadata is available.
	Loaded
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loaded:
		return "loaded"
	default:
		return "unknown"
	}
}

type session struct {
	State    State
	URL      string
	Metadata youtubuddy.Metadata
	Options  DownloadOptions
}

// Controller is the state machine behind the user interface. Load and Execute each run to completion; calling either
// while one is already running returns youtubuddy.ErrBusy. The accessors are safe to call at any time.
type Controller struct {
	source    youtubuddy.MediaSource
	extractor youtubuddy.AudioExtractor
	log       *zap.SugaredLogger

	gate    sync_.Gate
	session *sync_.RWMutexed[session]
}

func New(source youtubuddy.MediaSource, extractor youtubuddy.AudioExtractor, log *zap.Logger) *Controller {
	return &Controller{
		source:    source,
		extractor: extractor,
		log:       log.Named("workflow").Sugar(),
		session:   sync_.NewRWMutexed(session{}),
	}
}

func (c *Controller) State() State {
	return c.session.Get().State
}

// URL is the loaded URL, or "" when Idle.
func (c *Controller) URL() string {
	return c.session.Get().URL
}

// Describe returns the Metadata of the loaded URL, or ErrNotLoaded.
func (c *Controller) Describe() (youtubuddy.Metadata, error) {
	s := c.session.Get()
	if s.State != Loaded {
		return youtubuddy.Metadata{}, youtubuddy.ErrNotLoaded
	}
	return s.Metadata, nil
}

// Options are the most recently selected DownloadOptions.
func (c *Controller) Options() DownloadOptions {
	return c.session.Get().Options
}

// SetOptions records a selection without executing it.
func (c *Controller) SetOptions(opts DownloadOptions) {
	c.transition(func(s *session) {
		s.Options = opts
	})
}

// Load discards whatever was loaded before, then resolves url. On failure the controller stays Idle and the returned
// error is a *youtubuddy.Error whose Message() is safe to show; the full detail is only logged.
func (c *Controller) Load(ctx context.Context, url string) (youtubuddy.Metadata, error) {
	release, ok := c.gate.TryEnter()
	if !ok {
		return youtubuddy.Metadata{}, youtubuddy.ErrBusy
	}
	defer release()

	c.transition(func(s *session) {
		s.State = Idle
		s.URL = ""
		s.Metadata = youtubuddy.Metadata{}
	})

	url = strings.TrimSpace(url)
	if url == "" {
		return youtubuddy.Metadata{}, youtubuddy.NewError(youtubuddy.StageInput, youtubuddy.ErrEmptyURL)
	}

	c.log.Infof("Loading video data for %v", url)
	metadata, err := c.source.Resolve(ctx, url)
	if err != nil {
		c.log.Errorf("Could not load video: %v", truncate(err.Error(), MaxLoggedErrorLength))
		return youtubuddy.Metadata{}, withStage(youtubuddy.StageResolve, err)
	}

	c.transition(func(s *session) {
		s.State = Loaded
		s.URL = url
		s.Metadata = metadata
	})
	c.log.Info("Video data loaded")
	return metadata, nil
}

// Execute downloads the loaded video according to opts:
//   - video and audio: keep the video and an audio file extracted from it;
//   - video only: keep the video;
//   - audio only: download the video under a name derived from the title, extract the audio, then delete the video.
//
// The returned Outcome lists the files that exist afterwards, even when an error stops the sequence part way. A
// failure never changes the state; only a new Load does that.
func (c *Controller) Execute(ctx context.Context, opts DownloadOptions) (Outcome, error) {
	release, ok := c.gate.TryEnter()
	if !ok {
		return Outcome{}, youtubuddy.ErrBusy
	}
	defer release()

	s := c.session.Get()
	if s.State != Loaded {
		return Outcome{}, youtubuddy.ErrNotLoaded
	}
	c.transition(func(s *session) {
		s.Options = opts
	})
	if err := opts.Validate(); err != nil {
		return Outcome{}, err
	}

	log := c.log.With("execution_id", generic.Unwrap(uuid.NewRandom()).String())
	log.Infow("Starting download", "url", s.URL, "video", opts.WantVideo, "audio", opts.WantAudio, "folder", opts.OutputFolder)

	var outcome Outcome
	var err error
	if opts.WantVideo {
		outcome, err = c.fetchVideo(ctx, log, opts)
	} else {
		outcome, err = c.fetchAudioOnly(ctx, log, s.Metadata, opts)
	}
	if err != nil {
		log.Errorw("Download failed", "error", err, "retained", outcome.Paths())
		return outcome, err
	}
	log.Infow("Download finished", "retained", outcome.Paths())
	return outcome, nil
}

func (c *Controller) fetchVideo(ctx context.Context, log *zap.SugaredLogger, opts DownloadOptions) (Outcome, error) {
	var outcome Outcome
	log.Info("Downloading video...")
	videoPath, err := c.source.FetchVideo(ctx, opts.OutputFolder, generic.None[string]())
	if err != nil {
		return outcome, withStage(youtubuddy.StageFetch, err)
	}
	outcome.VideoPath = generic.Some(videoPath)
	if !opts.WantAudio {
		return outcome, nil
	}

	log.Info("Extracting audio...")
	audioPath, err := c.extractor.ExtractAudio(ctx, videoPath)
	if err != nil {
		return outcome, withStage(youtubuddy.StageExtract, err)
	}
	outcome.AudioPath = generic.Some(audioPath)
	return outcome, nil
}

func (c *Controller) fetchAudioOnly(ctx context.Context, log *zap.SugaredLogger, metadata youtubuddy.Metadata, opts DownloadOptions) (Outcome, error) {
	var outcome Outcome
	filename := AudioFilename(metadata.Title)
	log.Infof("Downloading video as %#v...", filename)
	videoPath, err := c.source.FetchVideo(ctx, opts.OutputFolder, generic.Some(filename))
	if err != nil {
		return outcome, withStage(youtubuddy.StageFetch, err)
	}
	outcome.VideoPath = generic.Some(videoPath)

	log.Info("Extracting audio...")
	audioPath, err := c.extractor.ExtractAudio(ctx, videoPath)
	if err != nil {
		return outcome, withStage(youtubuddy.StageExtract, err)
	}
	outcome.AudioPath = generic.Some(audioPath)

	// Intermediate video
	if err := os.Remove(videoPath); err != nil {
		return outcome, youtubuddy.NewError(youtubuddy.StageCleanup, err)
	}
	log.Debugf("Removed intermediate video %v", videoPath)
	outcome.VideoPath = generic.None[string]()
	return outcome, nil
}

// transition applies f to the session, logging what changed.
func (c *Controller) transition(f func(s *session)) {
	old, updated := c.session.Update(f)
	if old.State != updated.State {
		c.log.Debugf("State %v -> %v", old.State, updated.State)
	}
	changes, err := diff.Diff(old, updated)
	if err != nil {
		c.log.Warnf("failed to diff session state: %v", err)
		return
	}
	for _, change := range changes {
		c.log.Debugf("%v: %#v -> %#v", strings.Join(change.Path, "."), change.From, change.To)
	}
}

// withStage ensures err carries a stage, without replacing one it already has.
func withStage(stage youtubuddy.Stage, err error) error {
	var e *youtubuddy.Error
	if errors.As(err, &e) {
		return err
	}
	return youtubuddy.NewError(stage, err)
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}
