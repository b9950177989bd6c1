// Package tags reads and writes the title and artist of audio files through
// TagLib.
package tags

import (
	"fmt"
	"strings"

	"go.senan.xyz/taglib"
)

// Tags is the subset of embedded metadata Syphon manages.
type Tags struct {
	Title  string
	Artist string
}

// Complete reports whether both fields are set.
func (t Tags) Complete() bool {
	return t.Title != "" && t.Artist != ""
}

// Tagger reads and writes embedded tags. Implementations must be safe for
// concurrent use on distinct paths.
type Tagger interface {
	Read(path string) (Tags, error)
	Write(path string, tags Tags) error
}

// TaglibTagger implements Tagger with go.senan.xyz/taglib.
type TaglibTagger struct{}

// NewTaglib returns the TagLib-backed tagger.
func NewTaglib() TaglibTagger {
	return TaglibTagger{}
}

// Read returns the first TITLE and ARTIST values of path. Missing tags are
// returned as empty strings.
func (TaglibTagger) Read(path string) (Tags, error) {
	raw, err := taglib.ReadTags(path)
	if err != nil {
		return Tags{}, fmt.Errorf("read tags %s: %w", path, err)
	}
	return Tags{
		Title:  first(raw, taglib.Title),
		Artist: first(raw, taglib.Artist),
	}, nil
}

// Write replaces TITLE and ARTIST on path and leaves other tags untouched.
func (TaglibTagger) Write(path string, tags Tags) error {
	values := map[string][]string{
		taglib.Title:  {tags.Title},
		taglib.Artist: {tags.Artist},
	}
	if err := taglib.WriteTags(path, values, 0); err != nil {
		return fmt.Errorf("write tags %s: %w", path, err)
	}
	return nil
}

func first(raw map[string][]string, key string) string {
	for _, value := range raw[key] {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
