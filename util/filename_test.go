package util

import (
	"strings"
	"testing"
	"unicode/utf8"

	assert_ "github.com/stretchr/testify/assert"
)

func TestSafeFilename(t *testing.T) {
	assert := assert_.New(t)

	assert.Equal("Song Live! (2024)", SafeFilename("Song: Live! (2024)", "video"))
	assert.Equal("ACDC - Back in Black", SafeFilename("AC/DC - Back in Black", "video"))
	assert.Equal("a b c", SafeFilename("  a \t b\n\nc  ", "video"))
	assert.Equal("Café Ünïcode", SafeFilename("Café Ünïcode", "video"))
	assert.Equal("video", SafeFilename("???", "video"))
	assert.Equal("video", SafeFilename("", "video"))
}

func TestSafeFilenameTruncates(t *testing.T) {
	assert := assert_.New(t)

	long := SafeFilename(strings.Repeat("é", MaxFilenameLength), "video")
	assert.LessOrEqual(len(long), MaxFilenameLength)
	assert.True(utf8.ValidString(long))
}
