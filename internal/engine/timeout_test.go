package engine

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWithTimeout(t *testing.T) {
	ctx := context.Background()

	// Zero falls back to the default timeout.
	ctx2, cancel := WithTimeout(ctx, 0)
	defer cancel()
	deadline, ok := ctx2.Deadline()
	assert.True(t, ok)
	assert.True(t, deadline.After(time.Now()))

	// A custom timeout bounds the deadline.
	ctx3, cancel2 := WithTimeout(ctx, 5*time.Second)
	defer cancel2()
	deadline2, ok := ctx3.Deadline()
	assert.True(t, ok)
	assert.True(t, deadline2.Before(time.Now().Add(10*time.Second)))
}

func TestResourceTimeout(t *testing.T) {
	tests := []struct {
		name  string
		props map[string]any
		want  time.Duration
	}{
		{"int64 from construction", map[string]any{"timeoutSeconds": int64(900)}, 15 * time.Minute},
		{"int", map[string]any{"timeoutSeconds": 30}, 30 * time.Second},
		{"float64 after a json round trip", map[string]any{"timeoutSeconds": float64(120)}, 2 * time.Minute},
		{"json number", map[string]any{"timeoutSeconds": json.Number("45")}, 45 * time.Second},
		{"absent", map[string]any{}, 0},
		{"unparseable", map[string]any{"timeoutSeconds": "soon"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, resourceTimeout(tt.props))
		})
	}
}
