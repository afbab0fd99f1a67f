package engine

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/TechInSite/aws-cdk/cdk"
	"github.com/TechInSite/aws-cdk/internal/logging"
	"github.com/TechInSite/aws-cdk/internal/state"
)

// Engine plans and applies deployments through an execution runtime. The
// role provisioner is optional; without one declared roles are skipped.
type Engine struct {
	runtime Runtime
	roles   RoleProvisioner
}

func New(runtime Runtime, roles RoleProvisioner) *Engine {
	return &Engine{runtime: runtime, roles: roles}
}

// Change is one planned action on one resource.
type Change struct {
	LogicalID string
	Action    Action

	// Resource is the desired form from the template; the zero value for
	// deletes, whose payload comes from state.
	Resource cdk.TemplateResource

	// Hash is the properties hash of the desired form, recorded into state
	// after a successful create or update.
	Hash string
}

// Summary counts planned actions.
type Summary struct {
	Create int
	Update int
	Delete int
	Noop   int
}

// Plan is an ordered list of changes: creates and updates in dependency
// order, then deletes in reverse creation order.
type Plan struct {
	Stack   string
	Changes []*Change
	Summary Summary
}

// Empty reports whether the plan contains no work.
func (p *Plan) Empty() bool {
	return len(p.Changes) == 0
}

// Plan compares the template against the recorded state and produces the
// ordered change list. A resource is updated when its properties hash or
// type differs from the record; resources missing from the template are
// deleted.
func (e *Engine) Plan(tmpl *cdk.Template, st *state.State) (*Plan, error) {
	logging.Debug("planning", "stack", tmpl.Stack,
		"resources", len(tmpl.Resources), "state_resources", len(st.Resources))

	graph, err := BuildGraph(tmpl)
	if err != nil {
		return nil, fmt.Errorf("failed to build dependency graph: %w", err)
	}

	plan := &Plan{Stack: tmpl.Stack}

	for _, id := range graph.CreationOrder() {
		res := tmpl.Resources[id]
		hash, err := HashProperties(res.Properties)
		if err != nil {
			return nil, fmt.Errorf("failed to hash properties of %s: %w", id, err)
		}

		prior := st.Resource(id)
		switch {
		case prior == nil:
			plan.Changes = append(plan.Changes, &Change{
				LogicalID: id, Action: ActionCreate, Resource: res, Hash: hash,
			})
			plan.Summary.Create++
		case prior.PropertiesHash != hash || prior.Type != res.Type:
			plan.Changes = append(plan.Changes, &Change{
				LogicalID: id, Action: ActionUpdate, Resource: res, Hash: hash,
			})
			plan.Summary.Update++
		default:
			plan.Summary.Noop++
		}
	}

	// Resources that left the template are deleted newest-first, undoing
	// the recorded creation order.
	for i := len(st.Resources) - 1; i >= 0; i-- {
		rs := st.Resources[i]
		if _, ok := tmpl.Resources[rs.LogicalID]; !ok {
			plan.Changes = append(plan.Changes, &Change{
				LogicalID: rs.LogicalID, Action: ActionDelete,
			})
			plan.Summary.Delete++
		}
	}

	return plan, nil
}

// HashProperties returns a stable digest of a property document. Map keys
// marshal sorted, so equal documents hash equal regardless of insertion
// order.
func HashProperties(props map[string]any) (string, error) {
	raw, err := json.Marshal(props)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}
