package aws

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"

	"github.com/TechInSite/aws-cdk/awscall"
)

// dispatch invokes one SDK operation by name. Every service client exposes
// its operations as methods of the form
//
//	func (c *Client) Op(ctx context.Context, params *OpInput, optFns ...func(*Options)) (*OpOutput, error)
//
// so the operation is found by reflection and its typed input built from
// the parameter document through a JSON round trip, which matches struct
// fields case-insensitively.
func dispatch(ctx context.Context, client any, action string, params map[string]any) (map[string]any, error) {
	name := awscall.ActionName(action)
	method := reflect.ValueOf(client).MethodByName(name)
	if !method.IsValid() {
		return nil, fmt.Errorf("the client has no operation %s", name)
	}
	mt := method.Type()
	if mt.NumIn() < 2 || mt.NumOut() != 2 || mt.In(1).Kind() != reflect.Ptr {
		return nil, fmt.Errorf("operation %s has an unexpected signature", name)
	}

	input := reflect.New(mt.In(1).Elem())
	if len(params) > 0 {
		raw, err := json.Marshal(params)
		if err != nil {
			return nil, fmt.Errorf("failed to encode parameters: %w", err)
		}
		if err := json.Unmarshal(raw, input.Interface()); err != nil {
			return nil, fmt.Errorf("parameters do not fit %s: %w", mt.In(1).Elem().Name(), err)
		}
	}

	out := method.Call([]reflect.Value{reflect.ValueOf(ctx), input})
	if errv := out[1].Interface(); errv != nil {
		return nil, errv.(error)
	}
	return responseDocument(out[0].Interface())
}

// responseDocument converts a typed SDK output into a generic document.
// ResultMetadata carries middleware internals, not response data.
func responseDocument(output any) (map[string]any, error) {
	raw, err := json.Marshal(output)
	if err != nil {
		return nil, fmt.Errorf("failed to encode response: %w", err)
	}
	doc := make(map[string]any)
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	delete(doc, "ResultMetadata")
	return doc, nil
}

// flattenResponse renders a response document as dotted-path keys, the form
// references and output paths address. Sequence elements use their index as
// a path segment.
func flattenResponse(doc map[string]any) map[string]any {
	flat := make(map[string]any)
	flattenInto(flat, "", doc)
	return flat
}

func flattenInto(flat map[string]any, prefix string, v any) {
	switch val := v.(type) {
	case map[string]any:
		for k, child := range val {
			flattenInto(flat, joinPath(prefix, k), child)
		}
	case []any:
		for i, child := range val {
			flattenInto(flat, joinPath(prefix, strconv.Itoa(i)), child)
		}
	default:
		if prefix != "" {
			flat[prefix] = val
		}
	}
}

func joinPath(prefix, seg string) string {
	if prefix == "" {
		return seg
	}
	return prefix + "." + seg
}
