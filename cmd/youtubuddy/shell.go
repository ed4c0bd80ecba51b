package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/alanbriolat/youtubuddy"
	"github.com/alanbriolat/youtubuddy/async"
	"github.com/alanbriolat/youtubuddy/workflow"
)

const shellHelp = `Commands:
  load URL        load a video and show its details
  info            show the details of the loaded video
  folder DIR      save downloads to DIR
  video on|off    keep the video
  audio on|off    extract the audio
  download        download using the current options
  state           show the loaded URL and current options
  help            show this help
  quit            leave the shell`

func (e *env) shellCommand() *cli.Command {
	return &cli.Command{
		Name:  "shell",
		Usage: "load and download videos interactively",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "target",
				Value: e.cfg.OutputDir,
				Usage: "initial download folder `DIR`",
			},
		},
		Action: func(c *cli.Context) error {
			progress := newProgressBar(e.log)
			s := newShell(e.newController(progress), c.App.Writer, progress)
			s.controller.SetOptions(workflow.DownloadOptions{OutputFolder: c.String("target")})
			return s.run(c.Context, c.App.Reader)
		},
	}
}

// shell keeps one controller session across commands read from a terminal.
type shell struct {
	controller *workflow.Controller
	out        io.Writer
	progress   *progressBar
}

func newShell(controller *workflow.Controller, out io.Writer, progress *progressBar) *shell {
	return &shell{controller: controller, out: out, progress: progress}
}

func (s *shell) run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	fmt.Fprintln(s.out, `Type "help" for a list of commands.`)
	for {
		fmt.Fprint(s.out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(s.out)
			return scanner.Err()
		}
		if !s.handle(ctx, scanner.Text()) {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

// handle runs one command line, returning false when the shell should exit.
func (s *shell) handle(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return true
	}
	command, args := strings.ToLower(fields[0]), fields[1:]

	switch command {
	case "load":
		if len(args) != 1 {
			fmt.Fprintln(s.out, "Usage: load URL")
			return true
		}
		metadata, err := async.Await(ctx, func() (youtubuddy.Metadata, error) {
			return s.controller.Load(ctx, args[0])
		})
		if err != nil {
			s.printError(err)
			return true
		}
		s.printLines(metadata.Summary().Lines())
	case "info":
		metadata, err := s.controller.Describe()
		if err != nil {
			fmt.Fprintln(s.out, "No video loaded. Use: load URL")
			return true
		}
		s.printLines(metadata.Summary().Lines())
	case "folder":
		if len(args) == 0 {
			fmt.Fprintln(s.out, "Usage: folder DIR")
			return true
		}
		opts := s.controller.Options()
		opts.OutputFolder = strings.Join(args, " ")
		s.controller.SetOptions(opts)
	case "video", "audio":
		on, ok := parseSwitch(args)
		if !ok {
			fmt.Fprintf(s.out, "Usage: %v on|off\n", command)
			return true
		}
		opts := s.controller.Options()
		if command == "video" {
			opts.WantVideo = on
		} else {
			opts.WantAudio = on
		}
		s.controller.SetOptions(opts)
	case "download":
		if s.controller.State() != workflow.Loaded {
			fmt.Fprintln(s.out, "No video loaded. Use: load URL")
			return true
		}
		opts := s.controller.Options()
		outcome, err := async.Await(ctx, func() (workflow.Outcome, error) {
			return s.controller.Execute(ctx, opts)
		})
		s.progress.finish()
		printOutcome(s.out, outcome)
		if err != nil {
			s.printError(err)
			return true
		}
		fmt.Fprintln(s.out, "Done.")
	case "state":
		opts := s.controller.Options()
		fmt.Fprintf(s.out, "State:  %v\n", s.controller.State())
		if url := s.controller.URL(); url != "" {
			fmt.Fprintf(s.out, "URL:    %v\n", url)
		}
		fmt.Fprintf(s.out, "Folder: %v\n", opts.OutputFolder)
		fmt.Fprintf(s.out, "Video:  %v\n", onOff(opts.WantVideo))
		fmt.Fprintf(s.out, "Audio:  %v\n", onOff(opts.WantAudio))
	case "help", "?":
		fmt.Fprintln(s.out, shellHelp)
	case "quit", "exit":
		return false
	default:
		fmt.Fprintf(s.out, "Unknown command %#v, try \"help\"\n", command)
	}
	return true
}

func (s *shell) printLines(lines []string) {
	for _, line := range lines {
		fmt.Fprintln(s.out, line)
	}
}

func (s *shell) printError(err error) {
	fmt.Fprintf(s.out, "Error: %v\n", youtubuddy.Message(err))
}

func parseSwitch(args []string) (on bool, ok bool) {
	if len(args) != 1 {
		return false, false
	}
	switch strings.ToLower(args[0]) {
	case "on", "yes", "true":
		return true, true
	case "off", "no", "false":
		return false, true
	default:
		return false, false
	}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
