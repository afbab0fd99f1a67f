// Package awscall declares AWS API calls as resource lifecycle actions:
// it validates call specifications, encodes their parameters for the wire,
// infers the IAM grants the calls require, and registers the result as a
// declarative resource whose create/update/delete is performed by the
// execution runtime at deploy time.
package awscall

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/TechInSite/aws-cdk/cdk"
)

// The wire carries strings and numbers unambiguously but not booleans, so
// booleans travel as sentinel strings. The execution runtime decodes them by
// literal match; both sides must use these exact values.
const (
	trueSentinel  = "TRUE:BOOLEAN"
	falseSentinel = "FALSE:BOOLEAN"
)

// ErrNotFound reports a response path whose segment is absent.
var ErrNotFound = errors.New("not found in response")

// encodeParameters returns a deep, wire-encoded copy of params. The input is
// never mutated. Values the wire cannot carry surface as a ConfigError
// naming the offending parameter path.
func encodeParameters(field string, params map[string]any) (map[string]any, error) {
	if params == nil {
		return nil, nil
	}
	out := make(map[string]any, len(params))
	for k, v := range params {
		enc, err := encodeValue(field+"."+k, v)
		if err != nil {
			return nil, err
		}
		out[k] = enc
	}
	return out, nil
}

func encodeValue(path string, v any) (any, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case bool:
		if val {
			return trueSentinel, nil
		}
		return falseSentinel, nil
	case string:
		return val, nil
	case cdk.Reference:
		// Deferred values stay opaque; the deploy step resolves them.
		return val.String(), nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64, json.Number:
		return val, nil
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, v := range val {
			enc, err := encodeValue(path+"."+k, v)
			if err != nil {
				return nil, err
			}
			out[k] = enc
		}
		return out, nil
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, v := range val {
			key := fmt.Sprintf("%v", k)
			enc, err := encodeValue(path+"."+key, v)
			if err != nil {
				return nil, err
			}
			out[key] = enc
		}
		return out, nil
	case []any:
		out := make([]any, len(val))
		for i, v := range val {
			enc, err := encodeValue(path+"."+strconv.Itoa(i), v)
			if err != nil {
				return nil, err
			}
			out[i] = enc
		}
		return out, nil
	default:
		return encodeReflect(path, v)
	}
}

// encodeReflect covers typed slices, maps and structs by normalizing them
// through JSON before encoding. Kinds JSON cannot express are configuration
// errors, surfaced now rather than at deploy time.
func encodeReflect(path string, v any) (any, error) {
	switch reflect.ValueOf(v).Kind() {
	case reflect.Func, reflect.Chan, reflect.Complex64, reflect.Complex128, reflect.UnsafePointer:
		return nil, configErrorf([]string{path},
			fmt.Sprintf("unsupported parameter value of kind %s", reflect.ValueOf(v).Kind()))
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, configErrorf([]string{path},
			fmt.Sprintf("unsupported parameter value of type %T", v))
	}
	var normalized any
	if err := json.Unmarshal(raw, &normalized); err != nil {
		return nil, configErrorf([]string{path},
			fmt.Sprintf("unsupported parameter value of type %T", v))
	}
	return encodeValue(path, normalized)
}

// DecodeParameters reverses the sentinel encoding on a wire parameter map,
// returning a deep copy with booleans restored. Plain "true"/"false" strings
// are left alone: only the sentinel literals decode to booleans.
func DecodeParameters(params map[string]any) map[string]any {
	if params == nil {
		return nil
	}
	out := make(map[string]any, len(params))
	for k, v := range params {
		out[k] = decodeValue(v)
	}
	return out
}

func decodeValue(v any) any {
	switch val := v.(type) {
	case string:
		switch val {
		case trueSentinel:
			return true
		case falseSentinel:
			return false
		}
		return val
	case map[string]any:
		return DecodeParameters(val)
	case []any:
		out := make([]any, len(val))
		for i, v := range val {
			out[i] = decodeValue(v)
		}
		return out
	default:
		return v
	}
}

// DecodeResponsePath extracts the value at a dotted path from a nested
// response document. Numeric segments index into sequences. A missing
// segment wraps ErrNotFound.
func DecodeResponsePath(path string, response map[string]any) (any, error) {
	var cur any = response
	for _, seg := range strings.Split(path, ".") {
		switch node := cur.(type) {
		case map[string]any:
			next, ok := node[seg]
			if !ok {
				return nil, fmt.Errorf("response path %q: segment %q %w", path, seg, ErrNotFound)
			}
			cur = next
		case []any:
			idx, err := strconv.Atoi(seg)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, fmt.Errorf("response path %q: segment %q %w", path, seg, ErrNotFound)
			}
			cur = node[idx]
		default:
			return nil, fmt.Errorf("response path %q: segment %q %w", path, seg, ErrNotFound)
		}
	}
	return cur, nil
}

func deepCopyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = deepCopyValue(v)
	}
	return out
}

func deepCopyValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return deepCopyMap(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = deepCopyValue(item)
		}
		return out
	default:
		return v
	}
}
