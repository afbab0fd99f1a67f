package cdk

import (
	"encoding/json"

	"sigs.k8s.io/yaml"
)

// Template is the synthesized, serializable form of a stack. Marshaling is
// deterministic: map keys sort alphabetically, so the same stack always
// renders to the same bytes.
type Template struct {
	Stack     string                      `json:"Stack"`
	Resources map[string]TemplateResource `json:"Resources"`
	Roles     map[string]TemplateRole     `json:"Roles,omitempty"`
}

// TemplateResource is one declarative resource in a template.
type TemplateResource struct {
	Type       string         `json:"Type"`
	Properties map[string]any `json:"Properties,omitempty"`
	Role       string         `json:"Role,omitempty"`
}

// TemplateRole is one execution role in a template.
type TemplateRole struct {
	AssumeRolePolicyDocument map[string]any    `json:"AssumeRolePolicyDocument"`
	Statements               []PolicyStatement `json:"Statements,omitempty"`
}

// JSON renders the template as indented JSON.
func (t *Template) JSON() ([]byte, error) {
	out, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}

// YAML renders the template as YAML.
func (t *Template) YAML() ([]byte, error) {
	return yaml.Marshal(t)
}

// ParseTemplate decodes a template previously rendered with JSON or YAML.
func ParseTemplate(data []byte) (*Template, error) {
	var tmpl Template
	if err := yaml.Unmarshal(data, &tmpl); err != nil {
		return nil, err
	}
	return &tmpl, nil
}
