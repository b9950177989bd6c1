// Package textutil holds the small text rules shared by several stages:
// numeric-prefix parsing of downloaded file names, filename fallback tag
// parsing, tag value normalization and path-segment sanitization.
package textutil
