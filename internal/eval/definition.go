package eval

import (
	"fmt"
	"sort"
	"time"

	"github.com/go-viper/mapstructure/v2"

	"github.com/TechInSite/aws-cdk/awscall"
	"github.com/TechInSite/aws-cdk/cdk"
)

// Definition is the raw document a stack definition evaluates to. Call
// payloads stay untyped maps until BuildStack decodes them, so the Pkl
// schema and the Go types cannot drift apart silently.
type Definition struct {
	Stack     string                   `pkl:"stack"`
	Resources map[string]*CallResource `pkl:"resources"`
}

// CallResource declares one call-backed resource.
type CallResource struct {
	ResourceType string `pkl:"resourceType"`

	OnCreate map[string]any `pkl:"onCreate"`
	OnUpdate map[string]any `pkl:"onUpdate"`
	OnDelete map[string]any `pkl:"onDelete"`

	// PolicyResources scopes inferred grants to the listed patterns.
	// Statements sets explicit grants instead and takes precedence.
	PolicyResources []string          `pkl:"policyResources"`
	Statements      []PolicyStatement `pkl:"statements"`

	// Role shares the execution role of the named resource instead of
	// provisioning a dedicated one.
	Role string `pkl:"role"`

	TimeoutSeconds      int64 `pkl:"timeoutSeconds"`
	InstallLatestAwsSdk bool  `pkl:"installLatestAwsSdk"`
}

// PolicyStatement is the definition-schema form of one explicit grant.
type PolicyStatement struct {
	Effect    string   `pkl:"effect"`
	Actions   []string `pkl:"actions"`
	Resources []string `pkl:"resources"`
}

// rawCall mirrors one lifecycle call in the definition document. The keys
// match the emitted wire form.
type rawCall struct {
	Service    string         `json:"service"`
	Action     string         `json:"action"`
	Parameters map[string]any `json:"parameters"`

	PhysicalResourceID *rawPhysicalID `json:"physicalResourceId"`

	IgnoreErrorCodesMatching string `json:"ignoreErrorCodesMatching"`
	APIVersion               string `json:"apiVersion"`

	OutputPath  string   `json:"outputPath"`
	OutputPaths []string `json:"outputPaths"`
}

type rawPhysicalID struct {
	ID           string `json:"id"`
	ResponsePath string `json:"responsePath"`
}

// callFromMap decodes one raw call map into typed props. field names the
// call's position in the definition for error messages.
func callFromMap(field string, raw map[string]any) (*awscall.Call, error) {
	if raw == nil {
		return nil, nil
	}

	var rc rawCall
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &rc,
		TagName:     "json",
		ErrorUnused: true,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("%s: %w", field, err)
	}

	call := &awscall.Call{
		Service:                  rc.Service,
		Action:                   rc.Action,
		Parameters:               rc.Parameters,
		IgnoreErrorCodesMatching: rc.IgnoreErrorCodesMatching,
		APIVersion:               rc.APIVersion,
		OutputPath:               rc.OutputPath,
		OutputPaths:              rc.OutputPaths,
	}
	if pid := rc.PhysicalResourceID; pid != nil {
		switch {
		case pid.ID != "" && pid.ResponsePath != "":
			return nil, fmt.Errorf("%s.physicalResourceId: id and responsePath are mutually exclusive", field)
		case pid.ID != "":
			call.PhysicalResourceID = awscall.PhysicalIDOf(pid.ID)
		case pid.ResponsePath != "":
			call.PhysicalResourceID = awscall.PhysicalIDFromResponse(pid.ResponsePath)
		}
	}
	return call, nil
}

// BuildStack turns an evaluated definition into a synthesizable stack.
// Resources register in sorted logical id order, with role-sharing ones
// after their targets, so synthesis is deterministic for a given document.
func BuildStack(def *Definition) (*cdk.Stack, error) {
	if def == nil {
		return nil, fmt.Errorf("definition is empty")
	}
	if def.Stack == "" {
		return nil, fmt.Errorf("definition: stack name is required")
	}

	stack := cdk.NewStack(def.Stack)

	ids := make([]string, 0, len(def.Resources))
	for id := range def.Resources {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	built := make(map[string]*awscall.Resource, len(ids))

	pass := func(shared bool) error {
		for _, id := range ids {
			decl := def.Resources[id]
			if (decl.Role != "") != shared {
				continue
			}

			props, err := resourceProps(id, decl)
			if err != nil {
				return err
			}
			if decl.Role != "" {
				target, ok := built[decl.Role]
				if !ok {
					return fmt.Errorf("resource %s: shared role %q does not name a resource with its own role", id, decl.Role)
				}
				props.Role = target.Role()
			}

			res, err := awscall.NewResource(stack, id, *props)
			if err != nil {
				return fmt.Errorf("resource %s: %w", id, err)
			}
			built[id] = res
		}
		return nil
	}

	if err := pass(false); err != nil {
		return nil, err
	}
	if err := pass(true); err != nil {
		return nil, err
	}
	return stack, nil
}

// resourceProps decodes one declaration into constructor props.
func resourceProps(id string, decl *CallResource) (*awscall.ResourceProps, error) {
	onCreate, err := callFromMap(id+".onCreate", decl.OnCreate)
	if err != nil {
		return nil, err
	}
	onUpdate, err := callFromMap(id+".onUpdate", decl.OnUpdate)
	if err != nil {
		return nil, err
	}
	onDelete, err := callFromMap(id+".onDelete", decl.OnDelete)
	if err != nil {
		return nil, err
	}

	policy := awscall.PolicyFromCalls(decl.PolicyResources...)
	if len(decl.Statements) > 0 {
		stmts := make([]cdk.PolicyStatement, len(decl.Statements))
		for i, s := range decl.Statements {
			effect := s.Effect
			if effect == "" {
				effect = "Allow"
			}
			stmts[i] = cdk.PolicyStatement{
				Effect:    effect,
				Actions:   s.Actions,
				Resources: s.Resources,
			}
		}
		policy = awscall.PolicyFromStatements(stmts...)
	}

	return &awscall.ResourceProps{
		ResourceType:     decl.ResourceType,
		OnCreate:         onCreate,
		OnUpdate:         onUpdate,
		OnDelete:         onDelete,
		Policy:           policy,
		Timeout:          time.Duration(decl.TimeoutSeconds) * time.Second,
		InstallLatestSDK: decl.InstallLatestAwsSdk,
	}, nil
}
