package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"

	"github.com/TechInSite/aws-cdk/internal/engine"
	"github.com/TechInSite/aws-cdk/internal/state"
	"github.com/TechInSite/aws-cdk/providers/aws"
)

// noColor disables ANSI escapes in rendered plans.
var noColor bool

func colorize(code string) string {
	if noColor {
		return ""
	}
	return code
}

// resolveEntry turns an optional path argument into the project directory
// and the definition module to evaluate. The default entry point is
// main.pkl in the working directory.
func resolveEntry(args []string) (dir, entryPoint string, err error) {
	dir, err = os.Getwd()
	if err != nil {
		return "", "", fmt.Errorf("failed to get working directory: %w", err)
	}
	entryPoint = "main.pkl"

	if len(args) > 0 {
		absPath, err := filepath.Abs(args[0])
		if err != nil {
			return "", "", fmt.Errorf("failed to resolve path %s: %w", args[0], err)
		}

		info, err := os.Stat(absPath)
		if err != nil {
			return "", "", fmt.Errorf("failed to stat path %s: %w", args[0], err)
		}

		if info.IsDir() {
			dir = absPath
		} else {
			dir = filepath.Dir(absPath)
			entryPoint = filepath.Base(absPath)
		}
	}
	return dir, entryPoint, nil
}

// statePath resolves the backend location: the --state value when given,
// the default state file under the project directory otherwise.
func statePath(dir, flag string) string {
	if flag != "" {
		return flag
	}
	return filepath.Join(dir, ".awscdk", "state.json")
}

// openBackend opens and locks the state backend at the given location.
func openBackend(location string) (state.Backend, error) {
	backend, err := state.NewBackend(location)
	if err != nil {
		return nil, err
	}
	if err := backend.Lock(); err != nil {
		return nil, err
	}
	return backend, nil
}

// awsDeps builds the execution runtime and the role provisioner over one
// shared AWS config.
func awsDeps(ctx context.Context, region string) (*aws.Runtime, *aws.RoleProvisioner, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return aws.NewRuntime(cfg), aws.NewRoleProvisioner(cfg), nil
}

// renderPlan prints the change list and the summary counts.
func renderPlan(plan *engine.Plan) {
	reset := colorize("\033[0m")

	for _, change := range plan.Changes {
		var symbol, color, verb string
		switch change.Action {
		case engine.ActionCreate:
			symbol, color, verb = "+", colorize("\033[32m"), "created"
		case engine.ActionUpdate:
			symbol, color, verb = "~", colorize("\033[33m"), "updated"
		case engine.ActionDelete:
			symbol, color, verb = "-", colorize("\033[31m"), "destroyed"
		default:
			continue
		}

		fmt.Printf("\n%s  # %s will be %s%s\n", color, change.LogicalID, verb, reset)
		if change.Action == engine.ActionDelete {
			fmt.Printf("%s  %s resource %q%s\n", color, symbol, change.LogicalID, reset)
			continue
		}

		fmt.Printf("%s  %s resource %q (%s) {%s\n", color, symbol, change.LogicalID, change.Resource.Type, reset)
		for _, k := range sortedKeys(change.Resource.Properties) {
			fmt.Printf("%s      %s %s = %s%s\n", color, symbol, k, formatValue(change.Resource.Properties[k]), reset)
		}
		fmt.Printf("%s    }%s\n", color, reset)
	}

	fmt.Println("\nPlan Summary:")
	fmt.Printf("  Create: %d\n", plan.Summary.Create)
	fmt.Printf("  Update: %d\n", plan.Summary.Update)
	fmt.Printf("  Delete: %d\n", plan.Summary.Delete)
	fmt.Printf("  NoOp:   %d\n", plan.Summary.Noop)
}

// printProgress renders lifecycle dispatches as they happen.
func printProgress(p engine.Progress) {
	switch p.Status {
	case "started":
		fmt.Printf("%s %s... ", progressVerb(p.Action), p.LogicalID)
	case "completed":
		fmt.Printf("done (%s)\n", p.Duration.Round(time.Millisecond))
	case "failed":
		fmt.Printf("FAILED: %v\n", p.Err)
	}
}

func progressVerb(a engine.Action) string {
	switch a {
	case engine.ActionCreate:
		return "Creating"
	case engine.ActionUpdate:
		return "Updating"
	case engine.ActionDelete:
		return "Deleting"
	default:
		return string(a)
	}
}

// confirm prompts for interactive approval.
func confirm(prompt string) bool {
	fmt.Print(prompt)
	var response string
	fmt.Scanln(&response)
	response = strings.ToLower(strings.TrimSpace(response))
	return response == "y" || response == "yes"
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// formatValue returns a human-readable representation of a value.
func formatValue(v any) string {
	if v == nil {
		return "null"
	}
	switch val := v.(type) {
	case string:
		return fmt.Sprintf("%q", val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
