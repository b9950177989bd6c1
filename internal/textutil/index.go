package textutil

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// ErrUnparseablePrefix reports a file name without a "<digits>-" prefix.
var ErrUnparseablePrefix = errors.New("unparseable numeric prefix")

// ParseIndex returns the playlist position encoded as the leading
// "<digits>-" of a downloaded file name, e.g. 12 for "012-Artist - Title.ogg".
func ParseIndex(name string) (int, error) {
	digits, _, ok := splitIndex(name)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnparseablePrefix, name)
	}
	index, err := strconv.Atoi(digits)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrUnparseablePrefix, name, err)
	}
	return index, nil
}

// StripIndex returns name without its numeric prefix. Names without a prefix
// are returned unchanged with ok false.
func StripIndex(name string) (string, bool) {
	_, rest, ok := splitIndex(name)
	if !ok {
		return name, false
	}
	return rest, true
}

// ParseFilenameTags derives artist and title from a downloaded file name of
// the form "<digits>-<artist> - <title>.<ext>". The numeric prefix is
// optional. Both values are normalized; ok is false when either is empty.
func ParseFilenameTags(name string) (artist, title string, ok bool) {
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	stem, _ = StripIndex(stem)
	artist, title, found := strings.Cut(stem, " - ")
	if !found {
		return "", "", false
	}
	artist, title = NormalizeTag(artist), NormalizeTag(title)
	if artist == "" || title == "" {
		return "", "", false
	}
	return artist, title, true
}

func splitIndex(name string) (digits, rest string, ok bool) {
	end := 0
	for end < len(name) && name[end] >= '0' && name[end] <= '9' {
		end++
	}
	if end == 0 || end >= len(name) || name[end] != '-' {
		return "", name, false
	}
	return name[:end], name[end+1:], true
}
