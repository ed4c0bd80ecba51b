package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/alanbriolat/youtubuddy"
	"github.com/alanbriolat/youtubuddy/async"
	"github.com/alanbriolat/youtubuddy/util"
	"github.com/alanbriolat/youtubuddy/workflow"
)

var errNoThumbnail = errors.New("video has no thumbnail")

func (e *env) infoCommand() *cli.Command {
	return &cli.Command{
		Name:      "info",
		Usage:     "show the title, date, length and views of a video",
		ArgsUsage: "URL",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "output",
				Value: "text",
				Usage: "print as `FORMAT` (text or yaml)",
			},
			&cli.StringFlag{
				Name:  "thumbnail",
				Usage: "also save the thumbnail image to `DIR`",
			},
		},
		Action: func(c *cli.Context) error {
			ctx := c.Context
			controller := e.newController(nil)
			metadata, err := async.Await(ctx, func() (youtubuddy.Metadata, error) {
				return controller.Load(ctx, c.Args().First())
			})
			if err != nil {
				return e.userError(err)
			}
			if err := printSummary(c.App.Writer, metadata.Summary(), c.String("output")); err != nil {
				return err
			}
			if dir := c.String("thumbnail"); dir != "" {
				path, err := async.Await(ctx, func() (string, error) {
					return e.saveThumbnail(ctx, metadata, dir)
				})
				if err != nil {
					return cli.Exit(fmt.Sprintf("Could not save thumbnail: %v", err), 1)
				}
				fmt.Fprintf(c.App.Writer, "Thumbnail: %v\n", path)
			}
			return nil
		},
	}
}

func printSummary(w io.Writer, summary youtubuddy.Summary, format string) error {
	switch format {
	case "text":
		for _, line := range summary.Lines() {
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
		return nil
	case "yaml":
		encoder := yaml.NewEncoder(w)
		if err := encoder.Encode(summary); err != nil {
			return err
		}
		return encoder.Close()
	default:
		return fmt.Errorf("unknown output format %#v", format)
	}
}

// saveThumbnail downloads the thumbnail of a video into dir, named after the video.
func (e *env) saveThumbnail(ctx context.Context, metadata youtubuddy.Metadata, dir string) (string, error) {
	if metadata.ThumbnailURL == "" {
		return "", errNoThumbnail
	}
	ext := "jpg"
	if name, err := util.FilenameFromURLString(metadata.ThumbnailURL); err == nil {
		if _, urlExt := util.SplitExt(name); urlExt != "" {
			ext = urlExt
		}
	}
	d, err := youtubuddy.NewDownloadBuilder().
		WithContext(ctx).
		WithTargetDir(dir).
		WithHTTPClient(e.httpClient()).
		Build()
	if err != nil {
		return "", err
	}
	defer d.Cancel()
	return d.SaveURL(util.SafeFilename(metadata.Title, "thumbnail")+"."+ext, metadata.ThumbnailURL)
}

func (e *env) getCommand() *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "download a video and/or its audio",
		ArgsUsage: "URL",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "video",
				Usage: "keep the video",
			},
			&cli.BoolFlag{
				Name:  "audio",
				Usage: "extract the audio",
			},
			&cli.StringFlag{
				Name:  "target",
				Value: e.cfg.OutputDir,
				Usage: "save files to `DIR`",
			},
		},
		Action: func(c *cli.Context) error {
			ctx := c.Context
			progress := newProgressBar(e.log)
			controller := e.newController(progress)
			if _, err := async.Await(ctx, func() (youtubuddy.Metadata, error) {
				return controller.Load(ctx, c.Args().First())
			}); err != nil {
				return e.userError(err)
			}
			opts := workflow.DownloadOptions{
				WantVideo:    c.Bool("video"),
				WantAudio:    c.Bool("audio"),
				OutputFolder: c.String("target"),
			}
			outcome, err := async.Await(ctx, func() (workflow.Outcome, error) {
				return controller.Execute(ctx, opts)
			})
			progress.finish()
			printOutcome(c.App.Writer, outcome)
			if err != nil {
				return e.userError(err)
			}
			return nil
		},
	}
}

func printOutcome(w io.Writer, outcome workflow.Outcome) {
	if path, ok := outcome.VideoPath.Get(); ok {
		fmt.Fprintf(w, "Video: %v\n", path)
	}
	if path, ok := outcome.AudioPath.Get(); ok {
		fmt.Fprintf(w, "Audio: %v\n", path)
	}
}
