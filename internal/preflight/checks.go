package preflight

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"syphon/internal/config"
	"syphon/internal/deps"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckSystemDeps evaluates the external collaborators named in the config.
// The fetch tool is optional when fetching is disabled.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	tools := cfg.Tools
	requirements := []deps.Requirement{
		{Name: "Fetcher", Command: tools.Fetch, Description: "Retrieves new source material", Optional: !cfg.Workflow.Fetch},
		{Name: "Loudness", Command: tools.Loudness, Description: "Measures and adjusts loudness"},
		{Name: "Metadata", Command: tools.Metadata, Description: "Reads nominal bit rates"},
		{Name: "SoX", Command: tools.Sox, Description: "Trims silence and reverses audio"},
		{Name: "Fingerprint", Command: tools.Fingerprint, Description: "Computes acoustic fingerprints"},
		{Name: "Encoder", Command: tools.Encoder, Description: "Encodes the distribution format"},
	}
	return deps.CheckBinaries(requirements)
}

// MissingRequired returns the unavailable, non-optional collaborators.
func MissingRequired(statuses []deps.Status) []deps.Status {
	var missing []deps.Status
	for _, status := range statuses {
		if !status.Available && !status.Optional {
			missing = append(missing, status)
		}
	}
	return missing
}
