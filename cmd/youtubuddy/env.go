package main

import (
	"context"
	"net/http"

	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/alanbriolat/youtubuddy"
	"github.com/alanbriolat/youtubuddy/ffmpeg"
	"github.com/alanbriolat/youtubuddy/providers"
	"github.com/alanbriolat/youtubuddy/workflow"
)

// env holds what every command needs to build a controller.
type env struct {
	cfg *youtubuddy.Config
	log *zap.Logger
}

func (e *env) httpClient() *http.Client {
	return &http.Client{Timeout: e.cfg.HTTPTimeout}
}

func (e *env) newController(progress *progressBar) *workflow.Controller {
	client := e.httpClient()
	var opts []youtubuddy.SourceOption
	opts = append(opts, youtubuddy.WithHTTPClient(client))
	if progress != nil {
		opts = append(opts, youtubuddy.WithProgressCallback(progress.update))
	}
	source := youtubuddy.NewMediaSource(e.registry(), e.log, opts...)
	return workflow.New(source, e.newExtractor(), e.log)
}

// registry is the default registry, unless requests need a client with a timeout.
func (e *env) registry() *youtubuddy.ProviderRegistry {
	if e.cfg.HTTPTimeout == 0 {
		return &youtubuddy.DefaultProviderRegistry
	}
	return providers.NewRegistry(e.httpClient())
}

func (e *env) newExtractor() youtubuddy.AudioExtractor {
	extractor, err := ffmpeg.New(ffmpeg.Config{
		FFmpegPath:  e.cfg.FFmpegPath,
		FFprobePath: e.cfg.FFprobePath,
		Format:      e.cfg.AudioFormat,
		Bitrate:     e.cfg.AudioBitrate,
	}, e.log)
	if err != nil {
		e.log.Sugar().Warnf("Audio extraction unavailable: %v", err)
		return unavailableExtractor{err}
	}
	return extractor
}

// unavailableExtractor stands in when ffmpeg can't be used, so that video-only downloads still work.
type unavailableExtractor struct {
	err error
}

func (u unavailableExtractor) ExtractAudio(ctx context.Context, videoPath string) (string, error) {
	return "", youtubuddy.NewError(youtubuddy.StageExtract, u.err)
}

// userError turns err into the message shown on the terminal. The detail has already been logged by whatever failed.
func (e *env) userError(err error) error {
	e.log.Sugar().Debugf("Command failed: %v", err)
	return cli.Exit(youtubuddy.Message(err), 1)
}

// progressBar draws a byte bar for each fetch, created when the first progress report arrives. A bar that fails to
// update is logged once and then ignored.
type progressBar struct {
	log    *zap.SugaredLogger
	newBar func(size int64) *progressbar.ProgressBar
	bar    *progressbar.ProgressBar
	failed bool
}

func newProgressBar(log *zap.Logger) *progressBar {
	return &progressBar{
		log: log.Named("progress").Sugar(),
		newBar: func(size int64) *progressbar.ProgressBar {
			return progressbar.DefaultBytes(size, "downloading")
		},
	}
}

func (p *progressBar) update(downloaded int, expected int) {
	if p.bar == nil {
		size := int64(expected)
		if size <= 0 {
			// Unknown size: spinner
			size = -1
		}
		p.bar = p.newBar(size)
	}
	if expected > 0 && p.bar.GetMax() != expected {
		p.bar.ChangeMax(expected)
	}
	if err := p.bar.Set(downloaded); err != nil && !p.failed {
		p.failed = true
		p.log.Warnf("Progress bar stopped updating: %v", err)
	}
}

// finish completes the current bar, if any, so the next fetch starts a new one.
func (p *progressBar) finish() {
	if p.bar != nil {
		_ = p.bar.Finish()
		p.bar = nil
	}
	p.failed = false
}
