package playlist

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path"
	"strings"
)

// Extension is the file extension of rendered playlists.
const Extension = ".m3u"

// EntryPrefix is prepended to every rendered entry so playlists resolve
// against the output directory next to them.
const EntryPrefix = "output/"

// FileName returns the playlist file name for a playlist name.
func FileName(name string) string {
	return name + Extension
}

// Render returns the m3u body for songs, one entry per line.
func Render(songs []string) []byte {
	var buf bytes.Buffer
	for _, song := range songs {
		buf.WriteString(EntryPrefix)
		buf.WriteString(song)
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// ParseLines returns the base name of every entry in data. Lines are trimmed;
// empty lines and "#" comments are skipped.
func ParseLines(data []byte) []string {
	var entries []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		base := path.Base(strings.ReplaceAll(line, "\\", "/"))
		if base == "." || base == "/" {
			continue
		}
		entries = append(entries, base)
	}
	return entries
}

// ReadEntries parses the playlist file at p.
func ReadEntries(p string) ([]string, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("read playlist %s: %w", p, err)
	}
	return ParseLines(data), nil
}
