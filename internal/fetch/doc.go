// Package fetch runs the retrieval collaborator for each active source,
// appending new raw files to downloads/<source>.
package fetch
