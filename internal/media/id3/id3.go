// Package id3 verifies the ID3v2 title and artist frames of encoded output
// files.
package id3

import (
	"fmt"

	"github.com/bogem/id3v2"
)

// Frames is the title and artist pair carried by an output file.
type Frames struct {
	Title  string
	Artist string
}

// Read returns the title and artist frames of path.
func Read(path string) (Frames, error) {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true, ParseFrames: []string{"Title", "Artist"}})
	if err != nil {
		return Frames{}, fmt.Errorf("open id3 tag %s: %w", path, err)
	}
	defer tag.Close()
	return Frames{Title: tag.Title(), Artist: tag.Artist()}, nil
}

// Ensure writes want into path when its title or artist frame differs. It
// reports whether the file was modified.
func Ensure(path string, want Frames) (bool, error) {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return false, fmt.Errorf("open id3 tag %s: %w", path, err)
	}
	defer tag.Close()

	if tag.Title() == want.Title && tag.Artist() == want.Artist {
		return false, nil
	}
	tag.SetVersion(4)
	tag.SetDefaultEncoding(id3v2.EncodingUTF8)
	tag.SetTitle(want.Title)
	tag.SetArtist(want.Artist)
	if err := tag.Save(); err != nil {
		return false, fmt.Errorf("save id3 tag %s: %w", path, err)
	}
	return true, nil
}
