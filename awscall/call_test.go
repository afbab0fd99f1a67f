package awscall

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildLifecycleCalls_RequiresAtLeastOneCall(t *testing.T) {
	_, err := buildLifecycleCalls(nil, nil, nil)
	require.Error(t, err)

	var cfg *ConfigError
	require.ErrorAs(t, err, &cfg)
	assert.Equal(t, []string{"onCreate", "onUpdate", "onDelete"}, cfg.Fields)
}

func TestBuildLifecycleCalls_CreateDefaultsFromUpdate(t *testing.T) {
	update := &Call{
		Service: "SSM",
		Action:  "putParameter",
		Parameters: map[string]any{
			"Name":      "config",
			"Overwrite": true,
		},
		PhysicalResourceID: PhysicalIDOf("config"),
	}

	calls, err := buildLifecycleCalls(nil, update, nil)
	require.NoError(t, err)

	// 1. The create call is materialized from the update call.
	require.NotNil(t, calls.Create)
	assert.Equal(t, "SSM", calls.Create.Service)
	assert.Equal(t, "putParameter", calls.Create.Action)

	// 2. The copy is independent: mutating one side never leaks across.
	calls.Create.Parameters["Name"] = "changed"
	assert.Equal(t, "config", calls.Update.Parameters["Name"])

	// 3. The caller's call is untouched, parameters still unencoded.
	assert.Equal(t, true, update.Parameters["Overwrite"])
	// 4. The built calls carry the encoded form.
	assert.Equal(t, "TRUE:BOOLEAN", calls.Update.Parameters["Overwrite"])
}

func TestBuildLifecycleCalls_DeleteOnly(t *testing.T) {
	calls, err := buildLifecycleCalls(nil, nil, &Call{
		Service: "S3",
		Action:  "deleteObject",
	})
	require.NoError(t, err)

	// Delete-only is valid and no create call is synthesized; a physical
	// resource id is only demanded for create and update calls.
	assert.Nil(t, calls.Create)
	assert.Nil(t, calls.Update)
	require.NotNil(t, calls.Delete)
	assert.Len(t, calls.list(), 1)
}

func TestBuildLifecycleCalls_PhysicalIDRequired(t *testing.T) {
	tests := []struct {
		name  string
		build func() (*lifecycleCalls, error)
		field string
	}{
		{
			name: "create without id",
			build: func() (*lifecycleCalls, error) {
				return buildLifecycleCalls(&Call{Service: "S3", Action: "putObject"}, nil, nil)
			},
			field: "onCreate.physicalResourceId",
		},
		{
			name: "update without id",
			build: func() (*lifecycleCalls, error) {
				return buildLifecycleCalls(
					&Call{Service: "S3", Action: "putObject", PhysicalResourceID: PhysicalIDOf("obj")},
					&Call{Service: "S3", Action: "putObject"},
					nil,
				)
			},
			field: "onUpdate.physicalResourceId",
		},
		{
			name: "create defaulted from update without id",
			build: func() (*lifecycleCalls, error) {
				return buildLifecycleCalls(nil, &Call{Service: "S3", Action: "putObject"}, nil)
			},
			field: "onCreate.physicalResourceId",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.build()
			require.Error(t, err)
			var cfg *ConfigError
			require.ErrorAs(t, err, &cfg)
			assert.Contains(t, cfg.Fields, tt.field)
		})
	}
}

func TestBuildLifecycleCalls_ResponseDerivedIDWithSuppression(t *testing.T) {
	_, err := buildLifecycleCalls(&Call{
		Service:                  "ACM",
		Action:                   "requestCertificate",
		PhysicalResourceID:       PhysicalIDFromResponse("CertificateArn"),
		IgnoreErrorCodesMatching: "RequestInProgressException",
	}, nil, nil)
	require.Error(t, err)

	// The error names both fields of the conflicting combination.
	var cfg *ConfigError
	require.ErrorAs(t, err, &cfg)
	assert.Equal(t,
		[]string{"onCreate.physicalResourceId", "onCreate.ignoreErrorCodesMatching"},
		cfg.Fields)
}

func TestBuildLifecycleCalls_InvalidSuppressionPattern(t *testing.T) {
	_, err := buildLifecycleCalls(nil, nil, &Call{
		Service:                  "S3",
		Action:                   "deleteObject",
		IgnoreErrorCodesMatching: "NoSuchKey(",
	})
	require.Error(t, err)

	var cfg *ConfigError
	require.ErrorAs(t, err, &cfg)
	assert.Equal(t, []string{"onDelete.ignoreErrorCodesMatching"}, cfg.Fields)
	assert.Contains(t, cfg.Reason, "invalid pattern")
}

func TestBuildLifecycleCalls_EmptyServiceOrAction(t *testing.T) {
	_, err := buildLifecycleCalls(nil, nil, &Call{Action: "deleteObject"})
	var cfg *ConfigError
	require.ErrorAs(t, err, &cfg)
	assert.Equal(t, []string{"onDelete.service"}, cfg.Fields)

	_, err = buildLifecycleCalls(nil, nil, &Call{Service: "S3"})
	require.ErrorAs(t, err, &cfg)
	assert.Equal(t, []string{"onDelete.action"}, cfg.Fields)
}

func TestCall_PropertiesWireForm(t *testing.T) {
	call := &Call{
		Service:                  "CloudWatchLogs",
		Action:                   "putRetentionPolicy",
		Parameters:               map[string]any{"logGroupName": "/demo"},
		PhysicalResourceID:       PhysicalIDOf("/demo"),
		IgnoreErrorCodesMatching: "ResourceNotFoundException",
		APIVersion:               "2014-03-28",
		OutputPaths:              []string{"retentionInDays"},
	}

	props := call.properties()
	assert.Equal(t, "CloudWatchLogs", props["service"])
	assert.Equal(t, "putRetentionPolicy", props["action"])
	assert.Equal(t, map[string]any{"id": "/demo"}, props["physicalResourceId"])
	assert.Equal(t, "ResourceNotFoundException", props["ignoreErrorCodesMatching"])
	assert.Equal(t, "2014-03-28", props["apiVersion"])
	assert.Equal(t, []string{"retentionInDays"}, props["outputPaths"])

	// Optional fields are omitted, not emitted empty.
	bare := (&Call{Service: "S3", Action: "deleteObject"}).properties()
	assert.Equal(t, map[string]any{"service": "S3", "action": "deleteObject"}, bare)

	// A response-derived id renders as its tagged form.
	derived := &Call{
		Service:            "ACM",
		Action:             "requestCertificate",
		PhysicalResourceID: PhysicalIDFromResponse("CertificateArn"),
	}
	assert.Equal(t,
		map[string]any{"responsePath": "CertificateArn"},
		derived.properties()["physicalResourceId"])
}

func TestConfigError_NamesFields(t *testing.T) {
	err := configErrorf([]string{"onCreate", "onUpdate"}, "broken")
	assert.Equal(t, "onCreate, onUpdate: broken", err.Error())

	bare := configErrorf(nil, "broken")
	assert.Equal(t, "broken", bare.Error())
}
