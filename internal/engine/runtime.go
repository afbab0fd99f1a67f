// Package engine turns a synthesized template and the recorded state into
// lifecycle events: it plans per-resource actions, orders them along
// reference edges, resolves deferred references against recorded data, and
// dispatches the events to an execution runtime.
package engine

import (
	"context"

	"github.com/TechInSite/aws-cdk/cdk"
)

// Action is a lifecycle action for one resource. The string value doubles
// as the key of the matching call payload in the resource properties.
type Action string

const (
	ActionCreate Action = "Create"
	ActionUpdate Action = "Update"
	ActionDelete Action = "Delete"
	ActionNoop   Action = "Noop"
)

// Event asks the execution runtime to perform one lifecycle action.
type Event struct {
	Action    Action
	LogicalID string

	// Properties is the resource's emitted document with every reference
	// already resolved. The runtime dispatches the payload stored under the
	// key matching Action; a Delete event without a delete payload is a
	// no-op success.
	Properties map[string]any

	// PriorPhysicalID is the physical id recorded by the previous
	// deployment, empty on first create. Delete without a payload and
	// responses without an id strategy fall back to it.
	PriorPhysicalID string
}

// Result is the runtime's account of a performed action.
type Result struct {
	// PhysicalID identifies the external resource after the action.
	PhysicalID string

	// Data is the retained, flattened call response keyed by dotted path.
	// Later resources resolve their references against it.
	Data map[string]any
}

// Runtime executes lifecycle events against the outside world.
type Runtime interface {
	Handle(ctx context.Context, ev Event) (*Result, error)
}

// RoleProvisioner materializes the template's execution roles before
// resource events run and removes them when they leave the template.
type RoleProvisioner interface {
	Ensure(ctx context.Context, name string, role cdk.TemplateRole) (arn string, err error)
	Delete(ctx context.Context, name string) error
}
