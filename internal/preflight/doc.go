// Package preflight provides readiness checks for the filesystem paths and
// external collaborators Syphon depends on.
//
// These checks run in two contexts:
//   - The workflow runs RunAll and CheckSystemDeps before the first stage so
//     a run halts before touching the library when a tool is missing.
//   - The CLI "syphon check" command prints every result.
package preflight
