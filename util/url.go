package util

import (
	"errors"
	"net/url"
	"path"
	"strings"
)

var (
	ErrNoFilename = errors.New("cannot extract valid filename")
)

func FilenameFromURL(url *url.URL) (string, error) {
	if url == nil {
		return "", ErrNoFilename
	}
	p := strings.Trim(url.Path, "/")
	if p == "" {
		return "", ErrNoFilename
	}
	filename := path.Base(p)
	// Don't allow "filenames" that are just ".", "..", etc.
	if strings.ReplaceAll(filename, ".", "") == "" {
		return "", ErrNoFilename
	}
	return filename, nil
}

func FilenameFromURLString(s string) (string, error) {
	if parsedURL, err := url.Parse(s); err != nil {
		return "", err
	} else {
		return FilenameFromURL(parsedURL)
	}
}

// SplitExt splits a filename into its base and lower-cased extension (without the dot).
func SplitExt(filename string) (base string, ext string) {
	dot := path.Ext(filename)
	return strings.TrimSuffix(filename, dot), strings.ToLower(strings.TrimPrefix(dot, "."))
}
