package youtubuddy

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
)

// DisplayTitleLength is how many characters of the title are shown in a Summary.
const DisplayTitleLength = 50

// Metadata is a snapshot of what a provider knows about a resolved video.
type Metadata struct {
	Title        string
	PublishDate  time.Time
	Duration     time.Duration
	ViewCount    int
	ThumbnailURL string
}

func (m Metadata) DurationSeconds() int {
	return int(m.Duration / time.Second)
}

// Summary is the Metadata formatted for display.
type Summary struct {
	Title     string `yaml:"title"`
	Added     string `yaml:"added"`
	Length    string `yaml:"length"`
	Views     string `yaml:"views"`
	Thumbnail string `yaml:"thumbnail,omitempty"`
}

func (m Metadata) Summary() Summary {
	return Summary{
		Title:     TruncateTitle(m.Title, DisplayTitleLength),
		Added:     FormatDate(m.PublishDate),
		Length:    FormatDuration(m.Duration),
		Views:     humanize.Comma(int64(m.ViewCount)),
		Thumbnail: m.ThumbnailURL,
	}
}

// Lines gives the summary as "Label:  value" lines, in display order.
func (s Summary) Lines() []string {
	return []string{
		"Title:  " + s.Title,
		"Added:  " + s.Added,
		"Length: " + s.Length,
		"Views:  " + s.Views,
	}
}

// TruncateTitle keeps at most n characters of title.
func TruncateTitle(title string, n int) string {
	if utf8.RuneCountInString(title) <= n {
		return title
	}
	return string([]rune(title)[:n])
}

// FormatDate formats a publish date, or gives "unknown" for the zero time.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	return t.Format("2006-01-02")
}

// FormatDuration formats a duration as H:MM:SS, rounding down to whole seconds.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	seconds := int64(d / time.Second)
	return fmt.Sprintf("%d:%02d:%02d", seconds/3600, seconds/60%60, seconds%60)
}
