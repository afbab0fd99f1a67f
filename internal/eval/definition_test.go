package eval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TechInSite/aws-cdk/cdk"
)

func retentionDeclaration() *CallResource {
	return &CallResource{
		OnUpdate: map[string]any{
			"service": "CloudWatchLogs",
			"action":  "putRetentionPolicy",
			"parameters": map[string]any{
				"logGroupName":    "/aws/lambda/demo",
				"retentionInDays": 90,
			},
			"physicalResourceId": map[string]any{"id": "/aws/lambda/demo"},
		},
		OnDelete: map[string]any{
			"service": "CloudWatchLogs",
			"action":  "deleteRetentionPolicy",
			"parameters": map[string]any{
				"logGroupName": "/aws/lambda/demo",
			},
		},
	}
}

func TestBuildStack(t *testing.T) {
	stack, err := BuildStack(&Definition{
		Stack:     "demo",
		Resources: map[string]*CallResource{"Retention": retentionDeclaration()},
	})
	require.NoError(t, err)

	tmpl := stack.Template()
	require.Contains(t, tmpl.Resources, "Retention")
	res := tmpl.Resources["Retention"]

	// 1. The declaration comes out as a call-backed resource with the
	// defaulted type, timeout and role.
	assert.Equal(t, "Custom::AWS", res.Type)
	assert.Equal(t, int64(120), res.Properties["timeoutSeconds"])
	assert.Equal(t, "RetentionRole", res.Role)

	// 2. Creation runs a copy of the update call.
	update := res.Properties["Update"].(map[string]any)
	create := res.Properties["Create"].(map[string]any)
	assert.Equal(t, update, create)
	assert.Equal(t, "putRetentionPolicy", update["action"])

	// 3. Grants were inferred from the calls onto "*".
	role := tmpl.Roles["RetentionRole"]
	require.Len(t, role.Statements, 2)
	assert.Equal(t, []string{"logs:PutRetentionPolicy"}, role.Statements[0].Actions)
	assert.Equal(t, []string{"logs:DeleteRetentionPolicy"}, role.Statements[1].Actions)
	assert.Equal(t, []string{"*"}, role.Statements[0].Resources)
}

func TestBuildStack_SentinelBooleans(t *testing.T) {
	decl := retentionDeclaration()
	decl.OnUpdate["parameters"] = map[string]any{
		"logGroupName": "/aws/lambda/demo",
		"overwrite":    true,
		"note":         "true",
	}

	stack, err := BuildStack(&Definition{
		Stack:     "demo",
		Resources: map[string]*CallResource{"Retention": decl},
	})
	require.NoError(t, err)

	params := stack.Template().Resources["Retention"].
		Properties["Update"].(map[string]any)["parameters"].(map[string]any)

	// Typed booleans are sentinel-encoded; boolean-looking strings pass
	// through untouched.
	assert.Equal(t, "TRUE:BOOLEAN", params["overwrite"])
	assert.Equal(t, "true", params["note"])
}

func TestBuildStack_SharedRole(t *testing.T) {
	reader := &CallResource{
		OnCreate: map[string]any{
			"service":            "CloudWatchLogs",
			"action":             "describeLogGroups",
			"physicalResourceId": map[string]any{"id": "reader"},
		},
		Role: "Retention",
	}

	stack, err := BuildStack(&Definition{
		Stack: "demo",
		Resources: map[string]*CallResource{
			"Retention": retentionDeclaration(),
			"Reader":    reader,
		},
	})
	require.NoError(t, err)

	tmpl := stack.Template()

	// 1. Only the target's role exists; both resources run under it.
	require.Len(t, tmpl.Roles, 1)
	assert.Equal(t, "RetentionRole", tmpl.Resources["Retention"].Role)
	assert.Equal(t, "RetentionRole", tmpl.Resources["Reader"].Role)

	// 2. The shared role accumulates grants from both resources.
	var actions []string
	for _, stmt := range tmpl.Roles["RetentionRole"].Statements {
		actions = append(actions, stmt.Actions...)
	}
	assert.Contains(t, actions, "logs:PutRetentionPolicy")
	assert.Contains(t, actions, "logs:DescribeLogGroups")
}

func TestBuildStack_SharedRoleUnknownTarget(t *testing.T) {
	decl := retentionDeclaration()
	decl.Role = "Ghost"

	_, err := BuildStack(&Definition{
		Stack:     "demo",
		Resources: map[string]*CallResource{"Retention": decl},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `shared role "Ghost"`)
}

func TestBuildStack_ExplicitStatements(t *testing.T) {
	decl := retentionDeclaration()
	decl.Statements = []PolicyStatement{{
		Actions:   []string{"logs:*"},
		Resources: []string{"arn:aws:logs:*:*:log-group:/aws/lambda/*"},
	}}

	stack, err := BuildStack(&Definition{
		Stack:     "demo",
		Resources: map[string]*CallResource{"Retention": decl},
	})
	require.NoError(t, err)

	// Explicit statements replace inference; the effect defaults to Allow.
	role := stack.Template().Roles["RetentionRole"]
	require.Len(t, role.Statements, 1)
	assert.Equal(t, cdk.PolicyStatement{
		Effect:    "Allow",
		Actions:   []string{"logs:*"},
		Resources: []string{"arn:aws:logs:*:*:log-group:/aws/lambda/*"},
	}, role.Statements[0])
}

func TestBuildStack_InvalidDeclaration(t *testing.T) {
	// 1. A misspelled call key is rejected rather than silently dropped.
	decl := retentionDeclaration()
	decl.OnUpdate["servcie"] = "CloudWatchLogs"

	_, err := BuildStack(&Definition{
		Stack:     "demo",
		Resources: map[string]*CallResource{"Retention": decl},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "servcie")

	// 2. Construction failures carry the resource id and the offending
	// field.
	_, err = BuildStack(&Definition{
		Stack: "demo",
		Resources: map[string]*CallResource{
			"Retention": {OnCreate: map[string]any{
				"service": "CloudWatchLogs",
				"action":  "putRetentionPolicy",
			}},
		},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "resource Retention")
	assert.Contains(t, err.Error(), "onCreate.physicalResourceId")

	// 3. Both physical id forms at once are ambiguous.
	decl = retentionDeclaration()
	decl.OnUpdate["physicalResourceId"] = map[string]any{
		"id":           "/aws/lambda/demo",
		"responsePath": "LogGroup.Arn",
	}
	_, err = BuildStack(&Definition{
		Stack:     "demo",
		Resources: map[string]*CallResource{"Retention": decl},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mutually exclusive")
}

func TestBuildStack_RequiresStackName(t *testing.T) {
	_, err := BuildStack(&Definition{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stack name is required")
}

func TestBuildStack_TimeoutSeconds(t *testing.T) {
	decl := retentionDeclaration()
	decl.TimeoutSeconds = 900

	stack, err := BuildStack(&Definition{
		Stack:     "demo",
		Resources: map[string]*CallResource{"Retention": decl},
	})
	require.NoError(t, err)

	props := stack.Template().Resources["Retention"].Properties
	assert.Equal(t, int64(900), props["timeoutSeconds"])
}
