// Package ffmpeg extracts audio from video files by running the ffmpeg and ffprobe executables.
package ffmpeg

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/alanbriolat/youtubuddy"
)

var (
	ErrNoAudioTrack      = errors.New("video has no audio track")
	ErrUnsupportedFormat = errors.New("unsupported audio format")
	ErrSameFile          = errors.New("audio output would overwrite the input")
)

// maxStderr bounds how much ffmpeg output is kept in an error.
const maxStderr = 1024

type audioFormat struct {
	codec      string
	muxer      string
	useBitrate bool
}

var formats = map[string]audioFormat{
	"mp3": {codec: "libmp3lame", muxer: "mp3", useBitrate: true},
	"m4a": {codec: "aac", muxer: "ipod", useBitrate: true},
	"ogg": {codec: "libvorbis", muxer: "ogg", useBitrate: true},
	"wav": {codec: "pcm_s16le", muxer: "wav"},
}

type Config struct {
	FFmpegPath  string
	FFprobePath string
	// Format is the output file extension: mp3, m4a, ogg or wav.
	Format  string
	Bitrate string
}

func DefaultConfig() Config {
	return Config{
		FFmpegPath:  "ffmpeg",
		FFprobePath: "ffprobe",
		Format:      "mp3",
		Bitrate:     "192k",
	}
}

// Extractor is a youtubuddy.AudioExtractor.
type Extractor struct {
	ffmpegPath  string
	ffprobePath string
	ext         string
	format      audioFormat
	bitrate     string
	log         *zap.SugaredLogger
}

// New resolves the executables in cfg against PATH and checks the format.
func New(cfg Config, log *zap.Logger) (*Extractor, error) {
	format, ok := formats[cfg.Format]
	if !ok {
		return nil, fmt.Errorf("%w: %#v", ErrUnsupportedFormat, cfg.Format)
	}
	ffmpegPath, err := exec.LookPath(cfg.FFmpegPath)
	if err != nil {
		return nil, fmt.Errorf("ffmpeg not found: %w", err)
	}
	ffprobePath, err := exec.LookPath(cfg.FFprobePath)
	if err != nil {
		return nil, fmt.Errorf("ffprobe not found: %w", err)
	}
	return &Extractor{
		ffmpegPath:  ffmpegPath,
		ffprobePath: ffprobePath,
		ext:         cfg.Format,
		format:      format,
		bitrate:     cfg.Bitrate,
		log:         log.Named("ffmpeg").Sugar(),
	}, nil
}

// Info summarises the streams of a media file.
type Info struct {
	Duration   float64
	HasAudio   bool
	HasVideo   bool
	AudioCodec string
	VideoCodec string
}

// Probe runs ffprobe on path.
func (e *Extractor) Probe(ctx context.Context, path string) (*Info, error) {
	cmd := exec.CommandContext(ctx, e.ffprobePath,
		"-v", "error",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe: %w: %v", err, tail(stderr.String()))
	}
	return parseProbe(output)
}

func parseProbe(output []byte) (*Info, error) {
	var parsed struct {
		Format struct {
			Duration string `json:"duration"`
		} `json:"format"`
		Streams []struct {
			CodecType string `json:"codec_type"`
			CodecName string `json:"codec_name"`
		} `json:"streams"`
	}
	if err := json.Unmarshal(output, &parsed); err != nil {
		return nil, fmt.Errorf("parse ffprobe output: %w", err)
	}
	info := &Info{}
	if parsed.Format.Duration != "" {
		_, _ = fmt.Sscan(parsed.Format.Duration, &info.Duration)
	}
	for _, s := range parsed.Streams {
		switch s.CodecType {
		case "audio":
			if !info.HasAudio {
				info.HasAudio = true
				info.AudioCodec = s.CodecName
			}
		case "video":
			if !info.HasVideo {
				info.HasVideo = true
				info.VideoCodec = s.CodecName
			}
		}
	}
	return info, nil
}

// AudioPath gives the sibling of videoPath with the same base name and extension ext.
func AudioPath(videoPath string, ext string) string {
	return strings.TrimSuffix(videoPath, filepath.Ext(videoPath)) + "." + ext
}

func (e *Extractor) ExtractAudio(ctx context.Context, videoPath string) (string, error) {
	path, err := e.extractAudio(ctx, videoPath)
	if err != nil {
		return "", youtubuddy.NewError(youtubuddy.StageExtract, err)
	}
	return path, nil
}

func (e *Extractor) extractAudio(ctx context.Context, videoPath string) (_ string, err error) {
	if stat, err := os.Stat(videoPath); err != nil {
		return "", fmt.Errorf("stat video: %w", err)
	} else if stat.IsDir() {
		return "", fmt.Errorf("stat video: %v is a directory", videoPath)
	}
	info, err := e.Probe(ctx, videoPath)
	if err != nil {
		return "", fmt.Errorf("get video info: %w", err)
	}
	if !info.HasAudio {
		return "", ErrNoAudioTrack
	}

	outputPath := AudioPath(videoPath, e.ext)
	if filepath.Clean(outputPath) == filepath.Clean(videoPath) {
		return "", fmt.Errorf("%w: %v", ErrSameFile, videoPath)
	}
	partPath := outputPath + ".part"
	defer func() {
		if err != nil {
			_ = os.Remove(partPath)
		}
	}()

	args := []string{
		"-nostdin",
		"-v", "error",
		"-i", videoPath,
		"-vn", // No video
		"-acodec", e.format.codec,
	}
	if e.format.useBitrate && e.bitrate != "" {
		args = append(args, "-b:a", e.bitrate)
	}
	args = append(args, "-f", e.format.muxer, "-y", partPath)

	e.log.Infof("Extracting %v audio from %v", info.AudioCodec, videoPath)
	cmd := exec.CommandContext(ctx, e.ffmpegPath, args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("extract audio: %w: %v", err, tail(string(output)))
	}
	if err = os.Rename(partPath, outputPath); err != nil {
		return "", fmt.Errorf("move audio file into place: %w", err)
	}
	e.log.Infof("Saved audio to %v", outputPath)
	return outputPath, nil
}

func tail(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > maxStderr {
		s = "..." + s[len(s)-maxStderr:]
	}
	return s
}
