package awscall

import (
	"errors"

	"github.com/TechInSite/aws-cdk/cdk"
)

// Policy decides which IAM grants back a resource's calls. Build one with
// PolicyFromCalls or PolicyFromStatements; the zero value is rejected at
// construction so a resource can never deploy without an authorization
// decision.
type Policy struct {
	infer      bool
	resources  []string
	statements []cdk.PolicyStatement
}

// PolicyFromCalls returns a policy whose grants are inferred from every
// configured call through the permission catalog. The grants apply to the
// given resource patterns; with none given they apply to "*".
func PolicyFromCalls(resources ...string) Policy {
	if len(resources) == 0 {
		resources = []string{"*"}
	}
	return Policy{infer: true, resources: append([]string(nil), resources...)}
}

// PolicyFromStatements returns a policy made of the given statements,
// attached exactly as written. Inference is suppressed entirely, including
// for calls the catalog does not know.
func PolicyFromStatements(stmts ...cdk.PolicyStatement) Policy {
	return Policy{statements: append([]cdk.PolicyStatement(nil), stmts...)}
}

// IsZero reports whether the policy carries neither inference nor explicit
// statements.
func (p Policy) IsZero() bool {
	return !p.infer && len(p.statements) == 0
}

// statementsFor resolves the policy against a validated call set. Inferred
// grants come out in Create, Update, Delete order with duplicates dropped,
// so the synthesized role document is identical across runs.
func (p Policy) statementsFor(calls *lifecycleCalls) ([]cdk.PolicyStatement, error) {
	if !p.infer {
		return append([]cdk.PolicyStatement(nil), p.statements...), nil
	}

	events := []struct {
		name string
		call *Call
	}{
		{"onCreate", calls.Create},
		{"onUpdate", calls.Update},
		{"onDelete", calls.Delete},
	}

	var stmts []cdk.PolicyStatement
	seen := make(map[string]bool)
	for _, ev := range events {
		if ev.call == nil {
			continue
		}
		perm, err := lookupPermission(ev.call.Service, ev.call.Action)
		if err != nil {
			return nil, scopeConfigError(err, ev.name)
		}
		if seen[perm] {
			continue
		}
		seen[perm] = true
		stmts = append(stmts, cdk.NewPolicyStatement([]string{perm}, p.resources))
	}
	return stmts, nil
}

// scopeConfigError prefixes a ConfigError's field names with the lifecycle
// event they belong to, e.g. "service" becomes "onCreate.service".
func scopeConfigError(err error, event string) error {
	var cfg *ConfigError
	if !errors.As(err, &cfg) {
		return err
	}
	fields := make([]string, len(cfg.Fields))
	for i, f := range cfg.Fields {
		fields[i] = event + "." + f
	}
	return configErrorf(fields, cfg.Reason)
}
