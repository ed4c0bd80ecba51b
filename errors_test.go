package youtubuddy

import (
	"errors"
	"fmt"
	"testing"

	assert_ "github.com/stretchr/testify/assert"
)

func TestError(t *testing.T) {
	assert := assert_.New(t)

	cause := errors.New("HTTP 404: video unavailable")
	err := fmt.Errorf("loading: %w", NewError(StageResolve, cause))

	assert.ErrorIs(err, cause)
	stage, ok := StageOf(err)
	assert.True(ok)
	assert.Equal(StageResolve, stage)
	assert.Contains(err.Error(), "resolve: HTTP 404")
	assert.NotContains(Message(err), "404")
	assert.Equal("Invalid URL. Enter a proper URL to a video.", Message(err))
}

func TestErrorMessage(t *testing.T) {
	assert := assert_.New(t)

	assert.Equal("Select at least one option.", NewError(StageInput, ErrNoOptionSelected).Message())
	assert.Equal("Download failed.", NewError(StageFetch, errors.New("disk full")).Message())
	assert.Equal("Audio extraction failed.", NewError(StageExtract, errors.New("exit status 1")).Message())
	assert.Equal("Something went wrong.", Message(errors.New("plain")))

	_, ok := StageOf(errors.New("plain"))
	assert.False(ok)
	assert.Equal("cleanup", StageCleanup.String())
	assert.Equal("Stage(42)", Stage(42).String())
}
