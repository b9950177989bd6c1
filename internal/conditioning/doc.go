// Package conditioning produces the normalized area: each raw download is
// copied under a temporary name, brought to the target loudness, stripped of
// leading and trailing silence, and published under its original name.
//
// A file is visible under its final name only once every step succeeded, so
// the presence of a name in the normalized area is the completion marker
// the next run relies on.
package conditioning
