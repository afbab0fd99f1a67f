// Package eval turns Pkl stack definitions into deployable stacks. The Pkl
// module evaluates to a raw definition document; BuildStack decodes the raw
// call maps into typed props and registers everything on a cdk.Stack, so
// every declaration error surfaces before anything reaches AWS.
package eval

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/apple/pkl-go/pkl"

	"github.com/TechInSite/aws-cdk/cdk"
)

// Evaluator evaluates Pkl definition modules.
type Evaluator struct {
	projectDir string
}

func NewEvaluator(projectDir string) *Evaluator {
	return &Evaluator{
		projectDir: projectDir,
	}
}

// LoadDefinition evaluates the definition module into the raw document.
// Entries of properties are exposed to the module as external properties.
func (e *Evaluator) LoadDefinition(ctx context.Context, entryPoint string, properties map[string]string) (*Definition, error) {
	opts := []func(*pkl.EvaluatorOptions){pkl.PreconfiguredOptions}
	if len(properties) > 0 {
		opts = append(opts, func(o *pkl.EvaluatorOptions) {
			if o.Properties == nil {
				o.Properties = make(map[string]string)
			}
			for k, v := range properties {
				o.Properties[k] = v
			}
		})
	}

	evaluator, err := e.newEvaluator(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create Pkl evaluator: %w", err)
	}
	defer evaluator.Close()

	var def Definition
	if err := evaluator.EvaluateModule(ctx, pkl.FileSource(entryPoint), &def); err != nil {
		return nil, fmt.Errorf("failed to evaluate definition: %w", err)
	}

	return &def, nil
}

// LoadStack evaluates the definition module and builds the stack from it.
func (e *Evaluator) LoadStack(ctx context.Context, entryPoint string, properties map[string]string) (*cdk.Stack, error) {
	def, err := e.LoadDefinition(ctx, entryPoint, properties)
	if err != nil {
		return nil, err
	}
	return BuildStack(def)
}

// newEvaluator picks the project evaluator when the project directory
// carries a PklProject file, so package dependencies resolve; a bare module
// gets a plain evaluator.
func (e *Evaluator) newEvaluator(ctx context.Context, opts []func(*pkl.EvaluatorOptions)) (pkl.Evaluator, error) {
	if e.projectDir != "" {
		if _, err := os.Stat(filepath.Join(e.projectDir, "PklProject")); err == nil {
			u, err := url.Parse("file://" + e.projectDir + "/")
			if err != nil {
				return nil, fmt.Errorf("failed to parse project directory URL: %w", err)
			}
			return pkl.NewProjectEvaluator(ctx, u, opts...)
		}
	}
	return pkl.NewEvaluator(ctx, opts...)
}
