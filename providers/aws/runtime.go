// Package aws is the execution runtime: it receives lifecycle events from
// the deploy engine and performs the declared API calls against live AWS
// services, resolving physical resource ids and retaining response data for
// reference resolution.
package aws

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/smithy-go"
	"github.com/go-viper/mapstructure/v2"

	"github.com/TechInSite/aws-cdk/awscall"
	"github.com/TechInSite/aws-cdk/internal/engine"
	"github.com/TechInSite/aws-cdk/internal/logging"
)

// maxResponseBytes bounds the retained data of one call. State carries the
// retained data verbatim, so oversized responses are cut off key by key.
const maxResponseBytes = 4096

// Runtime executes lifecycle events against AWS APIs. One client per
// catalog service is built up front from the shared config; dispatch picks
// the client by canonical service name and the operation by method name.
type Runtime struct {
	clients map[string]any
	retry   *RetryPolicy
}

var _ engine.Runtime = (*Runtime)(nil)

// NewRuntime builds a runtime covering every service in the permission
// catalog.
func NewRuntime(cfg awsv2.Config) *Runtime {
	return &Runtime{clients: newClients(cfg), retry: DefaultRetryPolicy()}
}

// wireCall mirrors the call document the orchestrator emits under each
// lifecycle key.
type wireCall struct {
	Service    string         `json:"service"`
	Action     string         `json:"action"`
	Parameters map[string]any `json:"parameters"`

	PhysicalResourceID *wirePhysicalID `json:"physicalResourceId"`

	IgnoreErrorCodesMatching string `json:"ignoreErrorCodesMatching"`

	// APIVersion travels in the document for wire parity. The Go SDK pins
	// one API revision per module, so it is not consulted here.
	APIVersion string `json:"apiVersion"`

	OutputPath  string   `json:"outputPath"`
	OutputPaths []string `json:"outputPaths"`
}

type wirePhysicalID struct {
	ID           string `json:"id"`
	ResponsePath string `json:"responsePath"`
}

func decodeWireCall(payload map[string]any) (*wireCall, error) {
	var call wireCall
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  &call,
		TagName: "json",
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(payload); err != nil {
		return nil, fmt.Errorf("malformed call document: %w", err)
	}
	if call.Service == "" || call.Action == "" {
		return nil, fmt.Errorf("malformed call document: service and action are required")
	}
	return &call, nil
}

// Handle performs the call bound to the event's lifecycle action. An event
// whose action has no call attached succeeds without dispatching anything
// and keeps the identity stable.
func (r *Runtime) Handle(ctx context.Context, ev engine.Event) (*engine.Result, error) {
	payload, ok := ev.Properties[string(ev.Action)].(map[string]any)
	if !ok {
		return &engine.Result{PhysicalID: fallbackID(ev)}, nil
	}

	call, err := decodeWireCall(payload)
	if err != nil {
		return nil, fmt.Errorf("%s call of %s: %w", strings.ToLower(string(ev.Action)), ev.LogicalID, err)
	}

	response, err := r.execute(ctx, call)
	if err != nil {
		return nil, fmt.Errorf("%s.%s: %w", call.Service, call.Action, err)
	}

	flat := flattenResponse(response)

	physicalID, err := resolvePhysicalID(call, flat, ev)
	if err != nil {
		return nil, err
	}

	return &engine.Result{PhysicalID: physicalID, Data: retainData(call, flat)}, nil
}

// execute dispatches one call with retry on transient failures, then
// applies the declared error suppression. A suppressed failure yields an
// empty response.
func (r *Runtime) execute(ctx context.Context, call *wireCall) (map[string]any, error) {
	client, ok := r.clients[awscall.CanonicalService(call.Service)]
	if !ok {
		return nil, fmt.Errorf("no client for service %q", call.Service)
	}

	params := awscall.DecodeParameters(call.Parameters)

	logging.Debug("dispatching call", "service", call.Service, "action", call.Action)

	var response map[string]any
	err := RetryWithBackoff(ctx, r.retry, func() error {
		var err error
		response, err = dispatch(ctx, client, call.Action, params)
		return err
	}, IsTransientError)
	if err != nil {
		if suppressed(call.IgnoreErrorCodesMatching, err) {
			logging.Debug("error suppressed",
				"service", call.Service, "action", call.Action, "error", err)
			return map[string]any{}, nil
		}
		return nil, err
	}
	return response, nil
}

// suppressed reports whether the declared pattern matches the API error
// code. Transport errors carry no code and are never suppressed. The
// pattern was validated at construction time.
func suppressed(pattern string, err error) bool {
	if pattern == "" {
		return false
	}
	var ae smithy.APIError
	if !errors.As(err, &ae) {
		return false
	}
	re, reErr := regexp.Compile(pattern)
	if reErr != nil {
		return false
	}
	return re.MatchString(ae.ErrorCode())
}

// resolvePhysicalID applies the call's identity strategy. A response-derived
// id reads the flattened response; when the path is absent (for example
// because suppression replaced the response with an empty one) the resource
// has no resolvable identity and the event fails.
func resolvePhysicalID(call *wireCall, flat map[string]any, ev engine.Event) (string, error) {
	pid := call.PhysicalResourceID
	switch {
	case pid == nil:
		return fallbackID(ev), nil
	case pid.ID != "":
		return pid.ID, nil
	case pid.ResponsePath != "":
		v, ok := flat[pid.ResponsePath]
		if !ok {
			return "", fmt.Errorf("physical resource id of %s: path %q: %w",
				ev.LogicalID, pid.ResponsePath, awscall.ErrNotFound)
		}
		return fmt.Sprintf("%v", v), nil
	default:
		return fallbackID(ev), nil
	}
}

// fallbackID keeps the identity stable when no strategy applies: the prior
// id when one exists, the logical id on first create.
func fallbackID(ev engine.Event) string {
	if ev.PriorPhysicalID != "" {
		return ev.PriorPhysicalID
	}
	return ev.LogicalID
}

// retainData filters the flattened response by the declared output paths
// and bounds the total size. Keys are taken in sorted order so truncation
// always drops the same trailing keys.
func retainData(call *wireCall, flat map[string]any) map[string]any {
	selected := flat
	if call.OutputPath != "" {
		selected = filterPaths(flat, []string{call.OutputPath})
	} else if len(call.OutputPaths) > 0 {
		selected = filterPaths(flat, call.OutputPaths)
	}

	keys := make([]string, 0, len(selected))
	for k := range selected {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	data := make(map[string]any, len(selected))
	size := 0
	for _, k := range keys {
		size += len(k) + len(fmt.Sprintf("%v", selected[k]))
		if size > maxResponseBytes {
			logging.Warn("retained response data truncated",
				"service", call.Service, "action", call.Action, "dropped_from", k)
			break
		}
		data[k] = selected[k]
	}
	return data
}

// filterPaths keeps flattened keys equal to a declared path or nested under
// it: the path "Certificate" keeps "Certificate.Arn".
func filterPaths(flat map[string]any, paths []string) map[string]any {
	out := make(map[string]any)
	for k, v := range flat {
		for _, p := range paths {
			if k == p || strings.HasPrefix(k, p+".") {
				out[k] = v
				break
			}
		}
	}
	return out
}
