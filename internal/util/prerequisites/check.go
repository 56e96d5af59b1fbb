// Package prerequisites checks that the local inputs of a deployment exist
// before any remote system is touched.
package prerequisites

import (
	"fmt"
	"os"
	"strings"

	"github.com/imamik/tzchain/internal/config"
)

// Kind is the expected type of a path.
type Kind int

const (
	File Kind = iota
	Dir
)

func (k Kind) String() string {
	if k == Dir {
		return "directory"
	}
	return "file"
}

// Requirement is a local path a deployment reads.
type Requirement struct {
	// Name describes the input, e.g. "kubeconfig".
	Name string

	Path string
	Kind Kind

	// Required indicates if the deployment cannot proceed without it.
	Required bool

	// Hint tells the user which setting points at the path.
	Hint string
}

// CheckResult contains the result of checking a single requirement.
type CheckResult struct {
	Requirement Requirement
	Found       bool
	Problem     string
}

// CheckResults contains the results of checking multiple requirements.
type CheckResults struct {
	Results []CheckResult
	Missing []CheckResult
}

// HasErrors returns true if any required input is missing.
func (r *CheckResults) HasErrors() bool {
	for _, res := range r.Missing {
		if res.Requirement.Required {
			return true
		}
	}
	return false
}

// Error returns an error listing the missing required inputs.
func (r *CheckResults) Error() error {
	var missing []string
	for _, res := range r.Missing {
		if res.Requirement.Required {
			missing = append(missing, fmt.Sprintf("%s %s (%s; set %s)",
				res.Requirement.Name, res.Requirement.Path, res.Problem, res.Requirement.Hint))
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return fmt.Errorf("missing deployment inputs: %s", strings.Join(missing, ", "))
}

// Check verifies that every requirement exists with the expected kind.
func Check(reqs []Requirement) *CheckResults {
	results := &CheckResults{}

	for _, req := range reqs {
		result := CheckResult{Requirement: req}

		info, err := os.Stat(req.Path)
		switch {
		case req.Path == "":
			result.Problem = "not configured"
		case err != nil:
			result.Problem = "not found"
		case req.Kind == Dir && !info.IsDir():
			result.Problem = "not a directory"
		case req.Kind == File && info.IsDir():
			result.Problem = "is a directory"
		default:
			result.Found = true
		}

		if !result.Found {
			results.Missing = append(results.Missing, result)
		}
		results.Results = append(results.Results, result)
	}

	return results
}

// DeployRequirements returns the local inputs of a deploy run.
func DeployRequirements(cfg *config.File) []Requirement {
	return []Requirement{
		{Name: "kubeconfig", Path: cfg.Cluster.Kubeconfig, Kind: File, Required: true, Hint: "cluster.kubeconfig"},
		{Name: "chart", Path: cfg.Cluster.ChartPath, Kind: Dir, Required: true, Hint: "cluster.chart_path"},
		{Name: "chart sources", Path: cfg.Cluster.ChartSourceRoot, Kind: Dir, Required: true, Hint: "cluster.chart_source_root"},
		{Name: "values", Path: cfg.Chain.ValuesPath, Kind: File, Required: true, Hint: "chain.values_path"},
		{Name: "chart values", Path: cfg.Chain.ChartValuesPath, Kind: File, Required: true, Hint: "chain.chart_values_path"},
	}
}

// CheckDeploy checks the local inputs of a deploy run.
func CheckDeploy(cfg *config.File) *CheckResults {
	return Check(DeployRequirements(cfg))
}
