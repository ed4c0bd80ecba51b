package util

import (
	"strings"
	"unicode"
)

// MaxFilenameLength is a conservative limit for a single path component on common filesystems.
const MaxFilenameLength = 200

const unsafeFilenameChars = "\"#$%'*,./:;<>?\\^|~`"

// SafeFilename turns an arbitrary title into something usable as a file name: characters that are special to common
// filesystems or shells are dropped, control characters and runs of whitespace become a single space, and the result
// is trimmed to MaxFilenameLength bytes without splitting a character. An empty result becomes fallback.
func SafeFilename(title string, fallback string) string {
	var b strings.Builder
	space := false
	for _, r := range title {
		switch {
		case strings.ContainsRune(unsafeFilenameChars, r):
			continue
		case unicode.IsSpace(r) || unicode.IsControl(r):
			space = true
			continue
		}
		if space && b.Len() > 0 {
			b.WriteByte(' ')
		}
		space = false
		b.WriteRune(r)
	}
	name := truncateBytes(b.String(), MaxFilenameLength)
	name = strings.TrimSpace(name)
	if name == "" {
		return fallback
	}
	return name
}

func truncateBytes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	// Step back to the start of a rune
	for n > 0 && !isRuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
