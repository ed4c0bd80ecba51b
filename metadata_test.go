package youtubuddy

import (
	"strings"
	"testing"
	"time"

	assert_ "github.com/stretchr/testify/assert"
)

func TestFormatDuration(t *testing.T) {
	assert := assert_.New(t)

	assert.Equal("0:00:00", FormatDuration(0))
	assert.Equal("0:03:25", FormatDuration(205*time.Second))
	assert.Equal("1:01:01", FormatDuration(3661*time.Second+500*time.Millisecond))
	assert.Equal("26:00:00", FormatDuration(26*time.Hour))
	assert.Equal("0:00:00", FormatDuration(-time.Second))
}

func TestTruncateTitle(t *testing.T) {
	assert := assert_.New(t)

	assert.Equal("short", TruncateTitle("short", 50))
	assert.Equal(strings.Repeat("ä", 50), TruncateTitle(strings.Repeat("ä", 60), 50))
}

func TestMetadataSummary(t *testing.T) {
	assert := assert_.New(t)

	m := Metadata{
		Title:        strings.Repeat("x", 80),
		PublishDate:  time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC),
		Duration:     4*time.Minute + 2*time.Second,
		ViewCount:    1234567,
		ThumbnailURL: "https://i.ytimg.com/vi/abc/maxresdefault.jpg",
	}
	assert.Equal(242, m.DurationSeconds())

	s := m.Summary()
	assert.Equal(strings.Repeat("x", 50), s.Title)
	assert.Equal("2024-03-09", s.Added)
	assert.Equal("0:04:02", s.Length)
	assert.Equal("1,234,567", s.Views)
	assert.Equal([]string{
		"Title:  " + strings.Repeat("x", 50),
		"Added:  2024-03-09",
		"Length: 0:04:02",
		"Views:  1,234,567",
	}, s.Lines())

	assert.Equal("unknown", Metadata{}.Summary().Added)
}
