package awscall

// PhysicalResourceID is the strategy for determining the stable external
// identifier of the resource a call manipulates: either a literal value or
// a path into the call's response. Exactly one form is active, and values
// are immutable once constructed. The cross-field rule that a
// response-derived id cannot be combined with error suppression belongs to
// the call validator, which sees both fields.
type PhysicalResourceID struct {
	id           string
	responsePath string
}

// PhysicalIDOf returns a physical resource id fixed to the given literal.
func PhysicalIDOf(id string) PhysicalResourceID {
	return PhysicalResourceID{id: id}
}

// PhysicalIDFromResponse returns a physical resource id read from the given
// path of the call's response at deploy time.
func PhysicalIDFromResponse(path string) PhysicalResourceID {
	return PhysicalResourceID{responsePath: path}
}

// IsZero reports whether no identity strategy was configured.
func (p PhysicalResourceID) IsZero() bool {
	return p.id == "" && p.responsePath == ""
}

// FromResponse reports whether the id is derived from the call's response.
func (p PhysicalResourceID) FromResponse() bool {
	return p.responsePath != ""
}

// property renders the wire form: {"id": ...} or {"responsePath": ...}.
func (p PhysicalResourceID) property() map[string]any {
	if p.responsePath != "" {
		return map[string]any{"responsePath": p.responsePath}
	}
	if p.id != "" {
		return map[string]any{"id": p.id}
	}
	return nil
}
