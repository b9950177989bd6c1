// Package deps resolves the external tools syphon shells out to.
package deps

import (
	"fmt"
	"os/exec"
	"strings"
)

// Requirement names an external tool a stage shells out to.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status is the lookup outcome for one Requirement. Path holds the resolved
// executable when Available is set; Detail explains a miss.
type Status struct {
	Requirement
	Available bool
	Path      string
	Detail    string
}

// lookPath is replaced in tests.
var lookPath = exec.LookPath

// CheckBinaries resolves every requirement against PATH.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		req.Command = strings.TrimSpace(req.Command)
		req.Description = strings.TrimSpace(req.Description)
		results = append(results, check(req))
	}
	return results
}

func check(req Requirement) Status {
	status := Status{Requirement: req}
	if req.Command == "" {
		status.Detail = "command not configured"
		return status
	}
	path, err := lookPath(req.Command)
	if err != nil {
		status.Detail = fmt.Sprintf("binary %q not found", req.Command)
		return status
	}
	status.Available = true
	status.Path = path
	return status
}
