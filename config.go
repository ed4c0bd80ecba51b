package youtubuddy

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap/zapcore"
)

// EnvPrefix is prepended to every environment variable read by LoadConfig.
const EnvPrefix = "YOUTUBUDDY"

// Config holds the settings that can come from the environment. Command line flags take precedence.
type Config struct {
	OutputDir    string        `envconfig:"OUTPUT_DIR" default:"."`
	LogLevel     string        `envconfig:"LOG_LEVEL" default:"info"`
	FFmpegPath   string        `envconfig:"FFMPEG_PATH" default:"ffmpeg"`
	FFprobePath  string        `envconfig:"FFPROBE_PATH" default:"ffprobe"`
	AudioFormat  string        `envconfig:"AUDIO_FORMAT" default:"mp3"`
	AudioBitrate string        `envconfig:"AUDIO_BITRATE" default:"192k"`
	HTTPTimeout  time.Duration `envconfig:"HTTP_TIMEOUT" default:"0s"`
}

// LoadConfig reads Config from YOUTUBUDDY_* environment variables.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// Validate checks values that envconfig can't.
func (c *Config) Validate() error {
	if _, err := c.ZapLevel(); err != nil {
		return err
	}
	if c.OutputDir == "" {
		return fmt.Errorf("%v_OUTPUT_DIR must not be empty", EnvPrefix)
	}
	if c.HTTPTimeout < 0 {
		return fmt.Errorf("%v_HTTP_TIMEOUT must not be negative", EnvPrefix)
	}
	return nil
}

func (c *Config) ZapLevel() (zapcore.Level, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return level, fmt.Errorf("invalid log level %#v: %w", c.LogLevel, err)
	}
	return level, nil
}
