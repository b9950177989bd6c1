// Package playlist builds the ordered playlists of the library.
//
// Auto playlists follow a source's download order and list only songs that
// are resolved and encoded, so a song joins its playlist on the first run
// after its output exists. Custom playlists are read from user files and
// mapped by name without checking the output area. Each playlist is rendered
// as an m3u file referencing output/<file>; the catalog row is written only
// when the entry list changes.
package playlist
