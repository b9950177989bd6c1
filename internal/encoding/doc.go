// Package encoding runs the encode stage, which renders every pool file into
// the distribution format under the output area.
//
// Output files are never re-encoded: an output that exists is final. Encodes
// are written to a ".part-" temporary and renamed into place, so an
// interrupted run leaves nothing a later stage could mistake for a finished
// file.
package encoding
