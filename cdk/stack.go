// Package cdk is a small deployment/template engine: stacks accumulate
// declarative resources and execution roles, mint deferred references to
// resource data, and synthesize a deterministic template for the deploy
// step to consume.
package cdk

import (
	"fmt"
	"regexp"
)

// Logical ids double as token segments, so dots and brackets are excluded.
var logicalIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Resource is one declarative resource registered on a stack.
type Resource struct {
	logicalID  string
	typ        string
	properties map[string]any
	role       *Role
}

// LogicalID returns the resource's logical id within its stack.
func (r *Resource) LogicalID() string { return r.logicalID }

// Type returns the resource-type tag.
func (r *Resource) Type() string { return r.typ }

// Properties returns the declared properties.
func (r *Resource) Properties() map[string]any { return r.properties }

// Role returns the execution role referenced by the resource, or nil.
func (r *Resource) Role() *Role { return r.role }

// Stack accumulates resources and roles in declaration order.
type Stack struct {
	name          string
	resources     []*Resource
	resourceIndex map[string]*Resource
	roles         []*Role
	roleIndex     map[string]*Role
}

// NewStack returns an empty stack with the given name.
func NewStack(name string) *Stack {
	return &Stack{
		name:          name,
		resourceIndex: make(map[string]*Resource),
		roleIndex:     make(map[string]*Role),
	}
}

// Name returns the stack name.
func (s *Stack) Name() string { return s.name }

// AddResource registers a declarative resource. Logical ids are unique per
// stack across resources and roles.
func (s *Stack) AddResource(logicalID, typ string, properties map[string]any, role *Role) (*Resource, error) {
	if err := s.checkLogicalID(logicalID); err != nil {
		return nil, err
	}
	if typ == "" {
		return nil, fmt.Errorf("resource %s: type must not be empty", logicalID)
	}
	res := &Resource{
		logicalID:  logicalID,
		typ:        typ,
		properties: properties,
		role:       role,
	}
	s.resources = append(s.resources, res)
	s.resourceIndex[logicalID] = res
	return res, nil
}

func (s *Stack) addRole(role *Role) error {
	if err := s.checkLogicalID(role.logicalID); err != nil {
		return err
	}
	s.roles = append(s.roles, role)
	s.roleIndex[role.logicalID] = role
	return nil
}

func (s *Stack) checkLogicalID(logicalID string) error {
	if !logicalIDPattern.MatchString(logicalID) {
		return fmt.Errorf("invalid logical id %q: must match %s", logicalID, logicalIDPattern)
	}
	if _, ok := s.resourceIndex[logicalID]; ok {
		return fmt.Errorf("duplicate logical id %q in stack %s", logicalID, s.name)
	}
	if _, ok := s.roleIndex[logicalID]; ok {
		return fmt.Errorf("duplicate logical id %q in stack %s", logicalID, s.name)
	}
	return nil
}

// Resources returns the registered resources in declaration order.
func (s *Stack) Resources() []*Resource {
	out := make([]*Resource, len(s.resources))
	copy(out, s.resources)
	return out
}

// Roles returns the declared roles in declaration order.
func (s *Stack) Roles() []*Role {
	out := make([]*Role, len(s.roles))
	copy(out, s.roles)
	return out
}

// Resource returns the resource with the given logical id, or nil.
func (s *Stack) Resource(logicalID string) *Resource {
	return s.resourceIndex[logicalID]
}

// Template synthesizes the stack into its declarative template form.
func (s *Stack) Template() *Template {
	tmpl := &Template{
		Stack:     s.name,
		Resources: make(map[string]TemplateResource, len(s.resources)),
	}
	for _, res := range s.resources {
		tr := TemplateResource{
			Type:       res.typ,
			Properties: res.properties,
		}
		if res.role != nil {
			tr.Role = res.role.logicalID
		}
		tmpl.Resources[res.logicalID] = tr
	}
	if len(s.roles) > 0 {
		tmpl.Roles = make(map[string]TemplateRole, len(s.roles))
		for _, role := range s.roles {
			tmpl.Roles[role.logicalID] = TemplateRole{
				AssumeRolePolicyDocument: role.assumeRolePolicy,
				Statements:               role.Statements(),
			}
		}
	}
	return tmpl
}
