package cdk

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStack_AddResource(t *testing.T) {
	stack := NewStack("demo")

	res, err := stack.AddResource("Bucket", "Custom::AWS", map[string]any{"k": "v"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Bucket", res.LogicalID())
	assert.Equal(t, "Custom::AWS", res.Type())
	assert.Same(t, res, stack.Resource("Bucket"))

	// Duplicate logical ids are rejected.
	_, err = stack.AddResource("Bucket", "Custom::AWS", nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate logical id")

	// Ids that would break token parsing are rejected.
	_, err = stack.AddResource("has.dot", "Custom::AWS", nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid logical id")
}

func TestRole_StatementUnion(t *testing.T) {
	stack := NewStack("demo")
	role, err := NewServiceRole(stack, "ExecRole", "lambda.amazonaws.com")
	require.NoError(t, err)

	role.AddStatement(NewPolicyStatement([]string{"s3:PutObject"}, []string{"*"}))
	role.AddStatement(NewPolicyStatement([]string{"s3:GetObject"}, []string{"*"}))
	// Exact duplicate is dropped, first-seen order preserved.
	role.AddStatement(NewPolicyStatement([]string{"s3:PutObject"}, []string{"*"}))

	stmts := role.Statements()
	require.Len(t, stmts, 2)
	assert.Equal(t, []string{"s3:PutObject"}, stmts[0].Actions)
	assert.Equal(t, []string{"s3:GetObject"}, stmts[1].Actions)

	// Same action on a different resource pattern is a distinct grant.
	role.AddStatement(NewPolicyStatement([]string{"s3:PutObject"}, []string{"arn:aws:s3:::b/*"}))
	assert.Len(t, role.Statements(), 3)

	// Roles share the logical id namespace with resources.
	_, err = NewServiceRole(stack, "ExecRole", "lambda.amazonaws.com")
	require.Error(t, err)
}

func TestStack_TemplateSynthesis(t *testing.T) {
	build := func() *Stack {
		stack := NewStack("demo")
		role, err := NewServiceRole(stack, "ExecRole", "lambda.amazonaws.com")
		require.NoError(t, err)
		role.AddStatement(NewPolicyStatement([]string{"logs:PutRetentionPolicy"}, []string{"*"}))

		_, err = stack.AddResource("Retention", "Custom::AWS", map[string]any{
			"Create": map[string]any{"service": "CloudWatchLogs", "action": "putRetentionPolicy"},
		}, role)
		require.NoError(t, err)
		return stack
	}

	tmpl := build().Template()
	assert.Equal(t, "demo", tmpl.Stack)
	require.Contains(t, tmpl.Resources, "Retention")
	assert.Equal(t, "ExecRole", tmpl.Resources["Retention"].Role)
	require.Contains(t, tmpl.Roles, "ExecRole")
	assert.Len(t, tmpl.Roles["ExecRole"].Statements, 1)

	// Synthesis is byte-deterministic across independent builds.
	first, err := build().Template().JSON()
	require.NoError(t, err)
	second, err := build().Template().JSON()
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))

	// The JSON form round-trips through ParseTemplate.
	parsed, err := ParseTemplate(first)
	require.NoError(t, err)
	if diff := cmp.Diff(tmpl.Resources["Retention"].Type, parsed.Resources["Retention"].Type); diff != "" {
		t.Fatalf("template mismatch (-want +got):\n%s", diff)
	}

	// YAML output carries the same sections.
	y, err := build().Template().YAML()
	require.NoError(t, err)
	assert.Contains(t, string(y), "Resources:")
	assert.Contains(t, string(y), "Roles:")

	yParsed, err := ParseTemplate(y)
	require.NoError(t, err)
	assert.Equal(t, "Custom::AWS", yParsed.Resources["Retention"].Type)
}
