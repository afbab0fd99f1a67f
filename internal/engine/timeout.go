package engine

import (
	"context"
	"encoding/json"
	"time"
)

// DefaultTimeout bounds a dispatch when the resource document carries no
// usable timeout. It matches the default the orchestrator emits.
const DefaultTimeout = 2 * time.Minute

// WithTimeout wraps a context with a per-resource timeout.
func WithTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return context.WithTimeout(ctx, timeout)
}

// resourceTimeout reads the emitted "timeoutSeconds" property. The value
// arrives as an integer from construction but as float64 after a template
// or state round trip through JSON.
func resourceTimeout(props map[string]any) time.Duration {
	raw, ok := props["timeoutSeconds"]
	if !ok {
		return 0
	}
	switch v := raw.(type) {
	case int:
		return time.Duration(v) * time.Second
	case int64:
		return time.Duration(v) * time.Second
	case float64:
		return time.Duration(v * float64(time.Second))
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return time.Duration(f * float64(time.Second))
		}
	}
	return 0
}
