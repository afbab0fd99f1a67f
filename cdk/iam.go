package cdk

import (
	"fmt"
	"strings"
)

// PolicyStatement is one access-control grant in the IAM document format.
type PolicyStatement struct {
	Effect    string   `json:"Effect"`
	Actions   []string `json:"Action"`
	Resources []string `json:"Resource"`
}

// NewPolicyStatement returns an Allow statement for the given actions and
// resource patterns.
func NewPolicyStatement(actions, resources []string) PolicyStatement {
	return PolicyStatement{
		Effect:    "Allow",
		Actions:   actions,
		Resources: resources,
	}
}

func statementKey(s PolicyStatement) string {
	return s.Effect + "|" + strings.Join(s.Actions, ",") + "|" + strings.Join(s.Resources, ",")
}

// Role is an execution identity declared on a stack. Statements attached to
// it accumulate as a union: duplicates are dropped and first-seen order is
// preserved so synthesized documents stay deterministic.
type Role struct {
	logicalID        string
	assumeRolePolicy map[string]any
	statements       []PolicyStatement
	seen             map[string]bool
}

// NewRole declares a role with an explicit assume-role policy document.
func NewRole(stack *Stack, logicalID string, assumeRolePolicy map[string]any) (*Role, error) {
	role := &Role{
		logicalID:        logicalID,
		assumeRolePolicy: assumeRolePolicy,
		seen:             make(map[string]bool),
	}
	if err := stack.addRole(role); err != nil {
		return nil, err
	}
	return role, nil
}

// NewServiceRole declares a role assumable by the given service principal,
// e.g. "lambda.amazonaws.com".
func NewServiceRole(stack *Stack, logicalID, service string) (*Role, error) {
	if service == "" {
		return nil, fmt.Errorf("role %s: service principal must not be empty", logicalID)
	}
	return NewRole(stack, logicalID, map[string]any{
		"Version": "2012-10-17",
		"Statement": []any{
			map[string]any{
				"Effect":    "Allow",
				"Principal": map[string]any{"Service": service},
				"Action":    "sts:AssumeRole",
			},
		},
	})
}

// LogicalID returns the role's logical id within its stack.
func (r *Role) LogicalID() string {
	return r.logicalID
}

// AddStatement attaches a grant to the role. Statements identical to one
// already attached are ignored.
func (r *Role) AddStatement(stmt PolicyStatement) {
	key := statementKey(stmt)
	if r.seen[key] {
		return
	}
	r.seen[key] = true
	r.statements = append(r.statements, stmt)
}

// Statements returns the attached grants in attachment order.
func (r *Role) Statements() []PolicyStatement {
	out := make([]PolicyStatement, len(r.statements))
	copy(out, r.statements)
	return out
}
