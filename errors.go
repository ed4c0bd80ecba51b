package youtubuddy

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyURL         = errors.New("enter a URL to a video")
	ErrNoOptionSelected = errors.New("select at least one option")
	ErrNoOutputFolder   = errors.New("choose an output folder")
	ErrNotLoaded        = errors.New("no video loaded")
	ErrNotResolved      = errors.New("nothing resolved yet")
	ErrBusy             = errors.New("another operation is in progress")
)

// Stage identifies which step of the workflow an Error came from.
type Stage int

const (
	StageInput Stage = iota + 1
	StageResolve
	StageFetch
	StageExtract
	StageCleanup
)

func (s Stage) String() string {
	switch s {
	case StageInput:
		return "input"
	case StageResolve:
		return "resolve"
	case StageFetch:
		return "fetch"
	case StageExtract:
		return "extract"
	case StageCleanup:
		return "cleanup"
	default:
		return fmt.Sprintf("Stage(%d)", int(s))
	}
}

// Error is a workflow failure tagged with its Stage. Error() includes the full detail for logging, Message() is what
// should be shown to the user.
type Error struct {
	Stage Stage
	Err   error
}

func NewError(stage Stage, err error) *Error {
	return &Error{Stage: stage, Err: err}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%v: %v", e.Stage, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Message gives a user-facing description that doesn't leak internal error text, except for input errors which are
// already phrased for the user.
func (e *Error) Message() string {
	switch e.Stage {
	case StageInput:
		return capitalize(e.Err.Error()) + "."
	case StageResolve:
		return "Invalid URL. Enter a proper URL to a video."
	case StageFetch:
		return "Download failed."
	case StageExtract:
		return "Audio extraction failed."
	case StageCleanup:
		return "Audio saved, but the intermediate video could not be removed."
	default:
		return "Something went wrong."
	}
}

// StageOf returns the Stage of the first Error in err's chain.
func StageOf(err error) (Stage, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Stage, true
	}
	return 0, false
}

// Message returns the user-facing text for any error, using Error.Message() where possible.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message()
	}
	return "Something went wrong."
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	if c := s[0]; c >= 'a' && c <= 'z' {
		return string(c-'a'+'A') + s[1:]
	}
	return s
}
