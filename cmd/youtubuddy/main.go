package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/alanbriolat/youtubuddy"
)

func main() {
	cfg, err := youtubuddy.LoadConfig()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	level, _ := cfg.ZapLevel()

	logConfig := zap.NewDevelopmentConfig()
	logConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	logConfig.Level = zap.NewAtomicLevelAt(level)
	logger, err := logConfig.Build()
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logger.Sync()
	zap.RedirectStdLog(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	e := &env{cfg: cfg, log: logger}
	app := &cli.App{
		Name:  "youtubuddy",
		Usage: "preview videos and download them or their audio",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-level",
				Value: cfg.LogLevel,
				Usage: "log at `LEVEL` (debug, info, warn, error)",
			},
			&cli.StringFlag{
				Name:  "audio-format",
				Value: cfg.AudioFormat,
				Usage: "extract audio as `FORMAT` (mp3, m4a, ogg, wav)",
			},
		},
		Before: func(c *cli.Context) error {
			cfg.LogLevel = c.String("log-level")
			cfg.AudioFormat = c.String("audio-format")
			level, err := cfg.ZapLevel()
			if err != nil {
				return err
			}
			logConfig.Level.SetLevel(level)
			return nil
		},
		Commands: []*cli.Command{
			e.infoCommand(),
			e.getCommand(),
			e.shellCommand(),
		},
		HideHelpCommand: true,
	}

	if err := app.RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
