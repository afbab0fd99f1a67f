package cdk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReference_RoundTrip(t *testing.T) {
	ref := Reference{LogicalID: "Cert", Field: "Certificate.Arn"}
	token := ref.String()
	assert.Equal(t, "${Token[Cert.Certificate.Arn]}", token)

	parsed, ok := ParseToken(token)
	require.True(t, ok)
	assert.Equal(t, ref, parsed)
}

func TestParseToken_Rejects(t *testing.T) {
	for _, s := range []string{
		"",
		"plain string",
		"${Token[NoField]}",
		"${Token[.field]}",
		"${Token[Logical.]}",
		"prefix ${Token[A.b]}",
		"${Token[A.b]} suffix",
	} {
		_, ok := ParseToken(s)
		assert.False(t, ok, "expected %q to be rejected", s)
	}
}

func TestFindTokens_Nested(t *testing.T) {
	props := map[string]any{
		"topic":  "${Token[Topic.TopicArn]}",
		"plain":  "no tokens here",
		"number": 42,
		"nested": map[string]any{
			"list": []any{"${Token[Queue.QueueUrl]}", "literal"},
		},
		"embedded": "arn is ${Token[Topic.TopicArn]} ok",
	}

	refs := FindTokens(props)
	assert.Len(t, refs, 3)
	assert.Contains(t, refs, Reference{LogicalID: "Topic", Field: "TopicArn"})
	assert.Contains(t, refs, Reference{LogicalID: "Queue", Field: "QueueUrl"})
}

func TestReplaceTokens(t *testing.T) {
	resolve := func(ref Reference) (any, bool) {
		if ref.LogicalID == "Table" && ref.Field == "Table.ItemCount" {
			return 7, true
		}
		if ref.LogicalID == "Topic" && ref.Field == "TopicArn" {
			return "arn:aws:sns:us-east-1:111122223333:t", true
		}
		return nil, false
	}

	// 1. A string that is exactly one token keeps the resolved value's type.
	out, err := ReplaceTokens("${Token[Table.Table.ItemCount]}", resolve)
	require.NoError(t, err)
	assert.Equal(t, 7, out)

	// 2. Embedded tokens render into the surrounding string.
	out, err = ReplaceTokens("topic=${Token[Topic.TopicArn]}", resolve)
	require.NoError(t, err)
	assert.Equal(t, "topic=arn:aws:sns:us-east-1:111122223333:t", out)

	// 3. Containers are rewritten recursively without mutating the input.
	in := map[string]any{
		"a": []any{"${Token[Table.Table.ItemCount]}"},
		"b": "untouched",
	}
	out, err = ReplaceTokens(in, resolve)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": []any{7}, "b": "untouched"}, out)
	assert.Equal(t, "${Token[Table.Table.ItemCount]}", in["a"].([]any)[0])

	// 4. Unresolvable references fail rather than passing through silently.
	_, err = ReplaceTokens("${Token[Missing.field]}", resolve)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Missing.field")
}
