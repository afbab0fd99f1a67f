package engine

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/TechInSite/aws-cdk/cdk"
	"github.com/TechInSite/aws-cdk/internal/logging"
	"github.com/TechInSite/aws-cdk/internal/state"
)

// physicalIDField is the reserved reference field resolving to a resource's
// recorded physical id rather than a key of its retained data.
const physicalIDField = "PhysicalResourceId"

// Progress reports one lifecycle dispatch as it happens.
type Progress struct {
	LogicalID string
	Action    Action
	Status    string // "started", "completed", "failed"
	Duration  time.Duration
	Err       error
}

// ProgressFunc receives progress events during Apply and Destroy.
type ProgressFunc func(Progress)

// Apply executes a plan in order, recording results into the state as it
// goes. The state reflects every completed change even when a later one
// fails, so callers should persist it regardless of the returned error.
// Changes run sequentially: the plan order already respects reference
// edges, and each resource's retained data must be recorded before a
// dependent resolves against it.
func (e *Engine) Apply(ctx context.Context, tmpl *cdk.Template, plan *Plan, st *state.State, progress ProgressFunc) error {
	if e.runtime == nil {
		return fmt.Errorf("no execution runtime configured")
	}
	st.Stack = tmpl.Stack

	if err := e.ensureRoles(ctx, tmpl, st); err != nil {
		return err
	}

	for _, change := range plan.Changes {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("deploy cancelled: %w", err)
		}

		start := time.Now()
		emit(progress, Progress{LogicalID: change.LogicalID, Action: change.Action, Status: "started"})

		if err := e.applyChange(ctx, change, st); err != nil {
			emit(progress, Progress{LogicalID: change.LogicalID, Action: change.Action,
				Status: "failed", Duration: time.Since(start), Err: err})
			return err
		}

		emit(progress, Progress{LogicalID: change.LogicalID, Action: change.Action,
			Status: "completed", Duration: time.Since(start)})
	}

	if err := e.removeOrphanRoles(ctx, tmpl, st); err != nil {
		return err
	}

	st.Serial++
	return nil
}

// Destroy dispatches a delete for every recorded resource in reverse
// creation order, then removes the provisioned roles.
func (e *Engine) Destroy(ctx context.Context, st *state.State, progress ProgressFunc) error {
	if e.runtime == nil {
		return fmt.Errorf("no execution runtime configured")
	}

	for i := len(st.Resources) - 1; i >= 0; i-- {
		rs := st.Resources[i]
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("destroy cancelled: %w", err)
		}

		start := time.Now()
		emit(progress, Progress{LogicalID: rs.LogicalID, Action: ActionDelete, Status: "started"})

		if err := e.deleteResource(ctx, rs, st); err != nil {
			emit(progress, Progress{LogicalID: rs.LogicalID, Action: ActionDelete,
				Status: "failed", Duration: time.Since(start), Err: err})
			return err
		}

		emit(progress, Progress{LogicalID: rs.LogicalID, Action: ActionDelete,
			Status: "completed", Duration: time.Since(start)})
	}

	if e.roles != nil {
		for i := len(st.Roles) - 1; i >= 0; i-- {
			rs := st.Roles[i]
			if err := e.roles.Delete(ctx, rs.Name); err != nil {
				return fmt.Errorf("failed to remove role %s: %w", rs.LogicalID, err)
			}
			st.RemoveRole(rs.LogicalID)
		}
	}

	st.Serial++
	return nil
}

func (e *Engine) applyChange(ctx context.Context, change *Change, st *state.State) error {
	logging.Debug("applying change", "resource", change.LogicalID, "action", change.Action)

	switch change.Action {
	case ActionCreate, ActionUpdate:
		resolved, err := e.resolveProperties(change.Resource.Properties, st)
		if err != nil {
			return fmt.Errorf("%s: %w", change.LogicalID, err)
		}

		tctx, cancel := WithTimeout(ctx, resourceTimeout(resolved))
		defer cancel()

		ev := Event{
			Action:     change.Action,
			LogicalID:  change.LogicalID,
			Properties: resolved,
		}
		if prior := st.Resource(change.LogicalID); prior != nil {
			ev.PriorPhysicalID = prior.PhysicalID
		}

		result, err := e.runtime.Handle(tctx, ev)
		if err != nil {
			return fmt.Errorf("%s failed for %s: %w",
				strings.ToLower(string(change.Action)), change.LogicalID, err)
		}

		st.SetResource(&state.ResourceState{
			LogicalID:      change.LogicalID,
			Type:           change.Resource.Type,
			Properties:     resolved,
			PropertiesHash: change.Hash,
			PhysicalID:     result.PhysicalID,
			Data:           result.Data,
			Role:           change.Resource.Role,
		})
		return nil

	case ActionDelete:
		prior := st.Resource(change.LogicalID)
		if prior == nil {
			return nil
		}
		return e.deleteResource(ctx, prior, st)

	default:
		return fmt.Errorf("unknown action %q for %s", change.Action, change.LogicalID)
	}
}

func (e *Engine) deleteResource(ctx context.Context, rs *state.ResourceState, st *state.State) error {
	tctx, cancel := WithTimeout(ctx, resourceTimeout(rs.Properties))
	defer cancel()

	// The delete payload comes from the recorded properties: references in
	// it were resolved when the resource was applied, so nothing here
	// depends on resources that may already be gone.
	_, err := e.runtime.Handle(tctx, Event{
		Action:          ActionDelete,
		LogicalID:       rs.LogicalID,
		Properties:      rs.Properties,
		PriorPhysicalID: rs.PhysicalID,
	})
	if err != nil {
		return fmt.Errorf("delete failed for %s: %w", rs.LogicalID, err)
	}

	st.RemoveResource(rs.LogicalID)
	return nil
}

// resolveProperties substitutes every reference token with recorded data.
// A reference to a resource's physical id uses the reserved field name; any
// other field reads the retained response data.
func (e *Engine) resolveProperties(props map[string]any, st *state.State) (map[string]any, error) {
	resolved, err := cdk.ReplaceTokens(props, func(ref cdk.Reference) (any, bool) {
		rs := st.Resource(ref.LogicalID)
		if rs == nil {
			return nil, false
		}
		if v, ok := rs.Data[ref.Field]; ok {
			return v, true
		}
		if ref.Field == physicalIDField {
			return rs.PhysicalID, true
		}
		return nil, false
	})
	if err != nil {
		return nil, err
	}
	out, ok := resolved.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("resolved properties are not a document")
	}
	return out, nil
}

func (e *Engine) ensureRoles(ctx context.Context, tmpl *cdk.Template, st *state.State) error {
	if len(tmpl.Roles) == 0 {
		return nil
	}
	if e.roles == nil {
		logging.Debug("no role provisioner configured, skipping roles", "roles", len(tmpl.Roles))
		return nil
	}

	ids := make([]string, 0, len(tmpl.Roles))
	for id := range tmpl.Roles {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		name := roleName(tmpl.Stack, id)
		arn, err := e.roles.Ensure(ctx, name, tmpl.Roles[id])
		if err != nil {
			return fmt.Errorf("failed to provision role %s: %w", id, err)
		}
		st.SetRole(&state.RoleState{LogicalID: id, Name: name, Arn: arn})
	}
	return nil
}

func (e *Engine) removeOrphanRoles(ctx context.Context, tmpl *cdk.Template, st *state.State) error {
	if e.roles == nil {
		return nil
	}
	for i := len(st.Roles) - 1; i >= 0; i-- {
		rs := st.Roles[i]
		if _, ok := tmpl.Roles[rs.LogicalID]; ok {
			continue
		}
		if err := e.roles.Delete(ctx, rs.Name); err != nil {
			return fmt.Errorf("failed to remove role %s: %w", rs.LogicalID, err)
		}
		st.RemoveRole(rs.LogicalID)
	}
	return nil
}

// roleName derives the physical role name. IAM caps names at 64 characters.
func roleName(stack, logicalID string) string {
	name := stack + "-" + logicalID
	if len(name) > 64 {
		name = name[:64]
	}
	return name
}

func emit(progress ProgressFunc, p Progress) {
	if progress != nil {
		progress(p)
	}
}
