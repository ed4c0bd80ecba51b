package workflow

import (
	"strings"

	"github.com/alanbriolat/youtubuddy"
	"github.com/alanbriolat/youtubuddy/generic"
)

// AudioSuffix is appended to the name of the intermediate video in an audio-only download.
const AudioSuffix = "_audio"

// DownloadOptions selects what Execute keeps and where.
type DownloadOptions struct {
	WantVideo    bool
	WantAudio    bool
	OutputFolder string
}

// Validate returns an input *youtubuddy.Error if the options can't be executed.
func (o DownloadOptions) Validate() error {
	if !o.WantVideo && !o.WantAudio {
		return youtubuddy.NewError(youtubuddy.StageInput, youtubuddy.ErrNoOptionSelected)
	}
	if strings.TrimSpace(o.OutputFolder) == "" {
		return youtubuddy.NewError(youtubuddy.StageInput, youtubuddy.ErrNoOutputFolder)
	}
	return nil
}

// Outcome is the set of files kept by one Execute.
type Outcome struct {
	VideoPath generic.Option[string]
	AudioPath generic.Option[string]
}

// Paths lists the retained files, video first.
func (o Outcome) Paths() []string {
	var paths []string
	if p, ok := o.VideoPath.Get(); ok {
		paths = append(paths, p)
	}
	if p, ok := o.AudioPath.Get(); ok {
		paths = append(paths, p)
	}
	return paths
}

// AudioFilename derives the base name for an audio-only download from a title: only ASCII letters, digits and spaces
// are kept, everything else is dropped.
func AudioFilename(title string) string {
	var b strings.Builder
	for _, r := range title {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == ' ':
			b.WriteRune(r)
		}
	}
	return b.String() + AudioSuffix
}
