package awscall

import (
	"time"

	"github.com/TechInSite/aws-cdk/cdk"
)

const (
	// DefaultResourceType tags emitted resources when the declaration does
	// not choose its own tag.
	DefaultResourceType = "Custom::AWS"

	// DefaultTimeout bounds a single call's execution when the declaration
	// does not set one.
	DefaultTimeout = 2 * time.Minute
)

// Lifecycle event keys in the emitted resource properties. The execution
// runtime selects the payload matching the event it is handling.
const (
	CreateKey = "Create"
	UpdateKey = "Update"
	DeleteKey = "Delete"
)

// Wire names of the remaining emitted properties.
const (
	installSDKKey = "installLatestAwsSdk"
	timeoutKey    = "timeoutSeconds"
)

// ResourceProps configures a call-backed resource.
type ResourceProps struct {
	// ResourceType tags the emitted resource, defaulting to
	// DefaultResourceType. The tag is opaque to this package.
	ResourceType string

	// OnCreate, OnUpdate and OnDelete bind a call to each lifecycle event.
	// At least one must be set. When OnCreate is omitted but OnUpdate is
	// present, creation runs an independent copy of the update call.
	OnCreate *Call
	OnUpdate *Call
	OnDelete *Call

	// Policy is required: PolicyFromCalls for inferred grants,
	// PolicyFromStatements for explicit ones.
	Policy Policy

	// Role is the execution identity the calls run under. Nil means a
	// dedicated service role is created for this resource. A shared role
	// accumulates grants from every resource using it as a union.
	Role *cdk.Role

	// Timeout bounds each call's execution, emitted as whole seconds. Zero
	// means DefaultTimeout.
	Timeout time.Duration

	// InstallLatestSDK asks the execution runtime to fetch the newest AWS
	// SDK before dispatching instead of using its bundled one. The flag
	// travels in the emitted properties and has no in-process effect.
	InstallLatestSDK bool
}

// Resource is a declared set of lifecycle calls registered on a stack. All
// validation and encoding happened during construction: a Resource that
// exists will not fail encoding or grant resolution at deploy time.
type Resource struct {
	resource *cdk.Resource
	role     *cdk.Role
}

// NewResource validates props, encodes the call payloads, resolves the
// policy into role grants, and registers one declarative resource on the
// stack. Every configuration failure surfaces here, naming the offending
// fields.
func NewResource(stack *cdk.Stack, id string, props ResourceProps) (*Resource, error) {
	if stack == nil {
		return nil, configErrorf([]string{"stack"}, "stack must not be nil")
	}

	calls, err := buildLifecycleCalls(props.OnCreate, props.OnUpdate, props.OnDelete)
	if err != nil {
		return nil, err
	}

	if props.Policy.IsZero() {
		return nil, configErrorf([]string{"policy"},
			"a policy is required: PolicyFromCalls infers grants from the calls, PolicyFromStatements sets them explicitly")
	}
	stmts, err := props.Policy.statementsFor(calls)
	if err != nil {
		return nil, err
	}

	if props.Timeout < 0 {
		return nil, configErrorf([]string{"timeout"}, "timeout must not be negative")
	}
	timeout := props.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	role := props.Role
	if role == nil {
		role, err = cdk.NewServiceRole(stack, id+"Role", "lambda.amazonaws.com")
		if err != nil {
			return nil, err
		}
	}
	for _, stmt := range stmts {
		role.AddStatement(stmt)
	}

	resourceType := props.ResourceType
	if resourceType == "" {
		resourceType = DefaultResourceType
	}

	properties := map[string]any{
		installSDKKey: props.InstallLatestSDK,
		timeoutKey:    int64(timeout / time.Second),
	}
	if c := calls.Create; c != nil {
		properties[CreateKey] = c.properties()
	}
	if c := calls.Update; c != nil {
		properties[UpdateKey] = c.properties()
	}
	if c := calls.Delete; c != nil {
		properties[DeleteKey] = c.properties()
	}

	res, err := stack.AddResource(id, resourceType, properties, role)
	if err != nil {
		return nil, err
	}
	return &Resource{resource: res, role: role}, nil
}

// LogicalID returns the resource's logical id on the stack.
func (r *Resource) LogicalID() string {
	return r.resource.LogicalID()
}

// Role returns the execution role the resource's calls run under. Pass it
// to further resources to share one identity.
func (r *Resource) Role() *cdk.Role {
	return r.role
}

// GetData returns a deferred reference to a field of the retained call
// response, addressed by its flattened dotted path. The deploy step resolves
// it once the producing call has run; this package never does.
func (r *Resource) GetData(field string) cdk.Reference {
	return cdk.Reference{LogicalID: r.resource.LogicalID(), Field: field}
}

// GetDataString is GetData rendered as the string token form, for use in
// string-typed parameter positions.
func (r *Resource) GetDataString(field string) string {
	return r.GetData(field).String()
}
