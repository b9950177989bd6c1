// Package toolexec runs the external collaborators (fetcher, loudness tool,
// metadata reader, sox, fpcalc, ffmpeg) as plain argument lists and returns
// their stdout, stderr and exit status.
//
// Adapters under internal/media wrap a Runner with a narrow parse contract so
// stage code never inspects raw tool output.
package toolexec
