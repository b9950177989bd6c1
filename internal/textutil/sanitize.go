package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// segmentReplacer replaces path separators so a value can be used as a
// single path segment.
var segmentReplacer = strings.NewReplacer(
	"/", "-",
	"\\", "-",
	"\x00", "",
)

// SanitizeSegment makes value safe to embed in one file name and on one
// playlist line. Path separators become dashes and other control characters
// become spaces. A leading dot is prefixed with an underscore so the result
// is never hidden or mistaken for an in-progress artifact.
func SanitizeSegment(value string) string {
	value = segmentReplacer.Replace(value)
	value = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, value)
	if strings.HasPrefix(value, ".") {
		value = "_" + value
	}
	return value
}

// NormalizeTag trims value and converts it to Unicode NFC so equal tags
// written with different compositions compare equal.
func NormalizeTag(value string) string {
	return strings.TrimSpace(norm.NFC.String(value))
}
