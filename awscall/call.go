package awscall

import (
	"fmt"
	"regexp"
)

// Call describes one API interaction bound to a lifecycle event.
type Call struct {
	// Service is the target API's namespace, e.g. "CloudWatchLogs". Matching
	// against the permission catalog is case-insensitive; the declared casing
	// is preserved on the wire.
	Service string

	// Action is the operation within the service, e.g. "putRetentionPolicy".
	Action string

	// Parameters is the call's input document. Values may be strings,
	// numbers, booleans, nested maps and sequences, or cdk.Reference tokens
	// standing in for data produced by other resources.
	Parameters map[string]any

	// PhysicalResourceID is required for create and update calls.
	PhysicalResourceID PhysicalResourceID

	// IgnoreErrorCodesMatching makes the execution runtime treat a failure
	// whose error code matches this regular expression as success.
	IgnoreErrorCodesMatching string

	// APIVersion pins a specific API revision, when the runtime supports it.
	APIVersion string

	// OutputPath retains a single response subtree for later retrieval.
	// OutputPaths retains the listed paths. Without either, the whole
	// flattened response is retained subject to the runtime's size cap.
	OutputPath  string
	OutputPaths []string
}

// clone returns an independent deep copy: mutating the copy's parameters
// never affects the original.
func (c *Call) clone() *Call {
	if c == nil {
		return nil
	}
	out := *c
	out.Parameters = deepCopyMap(c.Parameters)
	out.OutputPaths = append([]string(nil), c.OutputPaths...)
	return &out
}

// properties renders the call's wire form for the emitted resource.
func (c *Call) properties() map[string]any {
	if c == nil {
		return nil
	}
	out := map[string]any{
		"service": c.Service,
		"action":  c.Action,
	}
	if len(c.Parameters) > 0 {
		out["parameters"] = c.Parameters
	}
	if pid := c.PhysicalResourceID.property(); pid != nil {
		out["physicalResourceId"] = pid
	}
	if c.IgnoreErrorCodesMatching != "" {
		out["ignoreErrorCodesMatching"] = c.IgnoreErrorCodesMatching
	}
	if c.APIVersion != "" {
		out["apiVersion"] = c.APIVersion
	}
	if c.OutputPath != "" {
		out["outputPath"] = c.OutputPath
	}
	if len(c.OutputPaths) > 0 {
		out["outputPaths"] = append([]string(nil), c.OutputPaths...)
	}
	return out
}

// lifecycleCalls holds the validated, encoded call set for one resource.
type lifecycleCalls struct {
	Create *Call
	Update *Call
	Delete *Call
}

// list returns the present calls in Create, Update, Delete order. The order
// fixes grant insertion, keeping inferred policies deterministic.
func (l *lifecycleCalls) list() []*Call {
	var out []*Call
	for _, c := range []*Call{l.Create, l.Update, l.Delete} {
		if c != nil {
			out = append(out, c)
		}
	}
	return out
}

// buildLifecycleCalls validates and materializes the call set. All failures
// are construction-time and name the offending fields. When onCreate is
// omitted but onUpdate is present, the create call becomes an independent
// copy of the update call, made exactly once here.
func buildLifecycleCalls(onCreate, onUpdate, onDelete *Call) (*lifecycleCalls, error) {
	if onCreate == nil && onUpdate == nil && onDelete == nil {
		return nil, configErrorf(
			[]string{"onCreate", "onUpdate", "onDelete"},
			"at least one call must be configured",
		)
	}

	set := &lifecycleCalls{
		Create: onCreate.clone(),
		Update: onUpdate.clone(),
		Delete: onDelete.clone(),
	}
	if set.Create == nil && set.Update != nil {
		set.Create = set.Update.clone()
	}

	for _, ev := range []struct {
		name string
		call *Call
	}{
		{"onCreate", set.Create},
		{"onUpdate", set.Update},
		{"onDelete", set.Delete},
	} {
		if ev.call == nil {
			continue
		}
		if err := validateCall(ev.name, ev.call); err != nil {
			return nil, err
		}
	}

	// The effective create and update calls must carry an identity: without
	// one the deployment cannot track the external resource across updates.
	if set.Create != nil && set.Create.PhysicalResourceID.IsZero() {
		return nil, configErrorf([]string{"onCreate.physicalResourceId"},
			"a physical resource id is required for create and update calls")
	}
	if set.Update != nil && set.Update.PhysicalResourceID.IsZero() {
		return nil, configErrorf([]string{"onUpdate.physicalResourceId"},
			"a physical resource id is required for create and update calls")
	}

	// Parameters are encoded exactly once, at construction.
	for _, ev := range []struct {
		name string
		call *Call
	}{
		{"onCreate", set.Create},
		{"onUpdate", set.Update},
		{"onDelete", set.Delete},
	} {
		if ev.call == nil {
			continue
		}
		encoded, err := encodeParameters(ev.name+".parameters", ev.call.Parameters)
		if err != nil {
			return nil, err
		}
		ev.call.Parameters = encoded
	}

	return set, nil
}

func validateCall(event string, c *Call) error {
	if c.Service == "" {
		return configErrorf([]string{event + ".service"}, "service must not be empty")
	}
	if c.Action == "" {
		return configErrorf([]string{event + ".action"}, "action must not be empty")
	}
	if c.PhysicalResourceID.FromResponse() && c.IgnoreErrorCodesMatching != "" {
		// Under suppression the response the id would be read from may not
		// exist, leaving the resource without a resolvable identity.
		return configErrorf(
			[]string{event + ".physicalResourceId", event + ".ignoreErrorCodesMatching"},
			"a response-derived physical resource id cannot be combined with an error-suppression pattern",
		)
	}
	if c.IgnoreErrorCodesMatching != "" {
		if _, err := regexp.Compile(c.IgnoreErrorCodesMatching); err != nil {
			return configErrorf([]string{event + ".ignoreErrorCodesMatching"},
				fmt.Sprintf("invalid pattern: %v", err))
		}
	}
	return nil
}
