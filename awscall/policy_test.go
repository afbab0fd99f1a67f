package awscall

import (
	"testing"

	"github.com/TechInSite/aws-cdk/cdk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustCalls(t *testing.T, onCreate, onUpdate, onDelete *Call) *lifecycleCalls {
	t.Helper()
	calls, err := buildLifecycleCalls(onCreate, onUpdate, onDelete)
	require.NoError(t, err)
	return calls
}

func TestPolicyFromCalls_InfersGrants(t *testing.T) {
	calls := mustCalls(t,
		nil,
		&Call{
			Service:            "CloudWatchLogs",
			Action:             "putRetentionPolicy",
			PhysicalResourceID: PhysicalIDOf("/demo"),
		},
		&Call{
			Service: "CloudWatchLogs",
			Action:  "deleteRetentionPolicy",
		},
	)

	stmts, err := PolicyFromCalls().statementsFor(calls)
	require.NoError(t, err)

	// One grant per distinct permission, in Create, Update, Delete order.
	// The defaulted create call shares the update call's permission, so the
	// pair collapses to a single grant.
	require.Len(t, stmts, 2)
	assert.Equal(t, []string{"logs:PutRetentionPolicy"}, stmts[0].Actions)
	assert.Equal(t, []string{"logs:DeleteRetentionPolicy"}, stmts[1].Actions)
	for _, s := range stmts {
		assert.Equal(t, "Allow", s.Effect)
		assert.Equal(t, []string{"*"}, s.Resources)
	}
}

func TestPolicyFromCalls_NarrowedResources(t *testing.T) {
	calls := mustCalls(t, &Call{
		Service:            "S3",
		Action:             "putObject",
		PhysicalResourceID: PhysicalIDOf("obj"),
	}, nil, nil)

	arn := "arn:aws:s3:::demo-bucket/*"
	stmts, err := PolicyFromCalls(arn).statementsFor(calls)
	require.NoError(t, err)
	require.Len(t, stmts, 1)
	assert.Equal(t, []string{"s3:PutObject"}, stmts[0].Actions)
	assert.Equal(t, []string{arn}, stmts[0].Resources)
}

func TestPolicyFromCalls_UnknownActionFails(t *testing.T) {
	calls := mustCalls(t, &Call{
		Service:            "CloudWatchLogs",
		Action:             "putMysteryPolicy",
		PhysicalResourceID: PhysicalIDOf("/demo"),
	}, nil, nil)

	_, err := PolicyFromCalls().statementsFor(calls)
	require.Error(t, err)

	var cfg *ConfigError
	require.ErrorAs(t, err, &cfg)
	assert.Equal(t, []string{"onCreate.service", "onCreate.action"}, cfg.Fields)
	assert.Contains(t, cfg.Reason, "PolicyFromStatements")
}

func TestPolicyFromCalls_UnknownServiceFails(t *testing.T) {
	calls := mustCalls(t, nil, nil, &Call{
		Service: "TimeMachine",
		Action:  "rewind",
	})

	_, err := PolicyFromCalls().statementsFor(calls)
	require.Error(t, err)

	var cfg *ConfigError
	require.ErrorAs(t, err, &cfg)
	assert.Equal(t, []string{"onDelete.service"}, cfg.Fields)
	assert.Contains(t, cfg.Reason, `unknown service "TimeMachine"`)
}

func TestPolicyFromStatements_SuppressesInference(t *testing.T) {
	// The service is unknown to the catalog, which would fail inference.
	// Explicit statements bypass the catalog entirely.
	calls := mustCalls(t, nil, nil, &Call{
		Service: "TimeMachine",
		Action:  "rewind",
	})

	explicit := cdk.NewPolicyStatement([]string{"timemachine:Rewind"}, []string{"*"})
	stmts, err := PolicyFromStatements(explicit).statementsFor(calls)
	require.NoError(t, err)
	require.Len(t, stmts, 1)
	assert.Equal(t, explicit, stmts[0])
}

func TestPolicy_ZeroValueIsUnconfigured(t *testing.T) {
	assert.True(t, Policy{}.IsZero())
	assert.True(t, PolicyFromStatements().IsZero())
	assert.False(t, PolicyFromCalls().IsZero())
	assert.False(t, PolicyFromStatements(cdk.NewPolicyStatement(
		[]string{"s3:GetObject"}, []string{"*"})).IsZero())
}

func TestLookupPermission(t *testing.T) {
	tests := []struct {
		service string
		action  string
		want    string
	}{
		// The IAM prefix does not always match the service name.
		{"CloudWatchLogs", "putRetentionPolicy", "logs:PutRetentionPolicy"},
		{"cloudwatchlogs", "deleteRetentionPolicy", "logs:DeleteRetentionPolicy"},
		// Overrides cover actions whose IAM name differs from the API name.
		{"Lambda", "invoke", "lambda:InvokeFunction"},
		// Aliases resolve SDK client spellings to catalog entries.
		{"StepFunctions", "startExecution", "states:StartExecution"},
		{"events", "putRule", "events:PutRule"},
		{"SES", "sendEmail", "ses:SendEmail"},
		{"S3", "putObject", "s3:PutObject"},
	}

	for _, tt := range tests {
		t.Run(tt.service+"."+tt.action, func(t *testing.T) {
			got, err := lookupPermission(tt.service, tt.action)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCanonicalService(t *testing.T) {
	assert.Equal(t, "cloudwatchlogs", CanonicalService("CloudWatchLogs"))
	assert.Equal(t, "eventbridge", CanonicalService("events"))
	assert.Equal(t, "eventbridge", CanonicalService("CloudWatchEvents"))
	assert.Equal(t, "sfn", CanonicalService("StepFunctions"))
	assert.Equal(t, "sesv2", CanonicalService("SES"))
	assert.Equal(t, "opensearch", CanonicalService("ES"))
	assert.Equal(t, "kafka", CanonicalService("MSK"))
	assert.Equal(t, "elasticloadbalancingv2", CanonicalService("ELBv2"))
	assert.Equal(t, "cognitoidentityprovider", CanonicalService("CognitoIdentityServiceProvider"))
	// Unknown names pass through lower-cased; the catalog decides later.
	assert.Equal(t, "timemachine", CanonicalService("TimeMachine"))
}
