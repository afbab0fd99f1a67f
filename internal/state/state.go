// Package state persists what a deployment created: one record per
// resource with its properties hash, physical id and retained response
// data. The file format is plain JSON, optionally encrypted at rest.
package state

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// State is the persisted deployment record. Serial increments on every
// successful deploy or destroy; Lineage is fixed at first write and ties
// a state file to its stack across serials.
type State struct {
	Version   int              `json:"version"`
	Serial    int              `json:"serial"`
	Lineage   string           `json:"lineage"`
	Stack     string           `json:"stack,omitempty"`
	Roles     []*RoleState     `json:"roles,omitempty"`
	Resources []*ResourceState `json:"resources"`
}

// ResourceState records one deployed resource. Properties holds the
// resolved document the resource was last applied with, so a later delete
// can dispatch its payload after the resource left the template.
// PropertiesHash is taken over the unresolved template form; the planner
// compares it against the template to detect drift.
type ResourceState struct {
	LogicalID      string         `json:"logicalId"`
	Type           string         `json:"type"`
	Properties     map[string]any `json:"properties,omitempty"`
	PropertiesHash string         `json:"propertiesHash"`
	PhysicalID     string         `json:"physicalId"`
	Data           map[string]any `json:"data,omitempty"`
	Role           string         `json:"role,omitempty"`
}

// RoleState records one provisioned execution role.
type RoleState struct {
	LogicalID string `json:"logicalId"`
	Name      string `json:"name"`
	Arn       string `json:"arn,omitempty"`
}

// NewState returns an empty state for a stack.
func NewState(stack string) *State {
	return &State{Version: 1, Stack: stack}
}

// Resource returns the record for a logical id, or nil.
func (s *State) Resource(logicalID string) *ResourceState {
	for _, r := range s.Resources {
		if r.LogicalID == logicalID {
			return r
		}
	}
	return nil
}

// SetResource replaces the record with the same logical id or appends a new
// one, preserving creation order for existing records.
func (s *State) SetResource(rs *ResourceState) {
	for i, r := range s.Resources {
		if r.LogicalID == rs.LogicalID {
			s.Resources[i] = rs
			return
		}
	}
	s.Resources = append(s.Resources, rs)
}

// RemoveResource drops the record for a logical id.
func (s *State) RemoveResource(logicalID string) {
	for i, r := range s.Resources {
		if r.LogicalID == logicalID {
			s.Resources = append(s.Resources[:i], s.Resources[i+1:]...)
			return
		}
	}
}

// Role returns the role record for a logical id, or nil.
func (s *State) Role(logicalID string) *RoleState {
	for _, r := range s.Roles {
		if r.LogicalID == logicalID {
			return r
		}
	}
	return nil
}

// SetRole replaces the role record with the same logical id or appends one.
func (s *State) SetRole(rs *RoleState) {
	for i, r := range s.Roles {
		if r.LogicalID == rs.LogicalID {
			s.Roles[i] = rs
			return
		}
	}
	s.Roles = append(s.Roles, rs)
}

// RemoveRole drops the role record for a logical id.
func (s *State) RemoveRole(logicalID string) {
	for i, r := range s.Roles {
		if r.LogicalID == logicalID {
			s.Roles = append(s.Roles[:i], s.Roles[i+1:]...)
			return
		}
	}
}

// Manager reads and writes state at a local path.
type Manager struct {
	path string
}

func NewManager(path string) *Manager {
	return &Manager{path: path}
}

// Read loads the state. A missing file yields an empty state, so the first
// deploy needs no initialization step. Encrypted content is transparently
// decrypted.
func (m *Manager) Read(ctx context.Context) (*State, error) {
	raw, err := os.ReadFile(m.path)
	if os.IsNotExist(err) {
		return &State{Version: 1}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read state file %s: %w", m.path, err)
	}
	return ParseState(raw)
}

// Write saves the state. A fresh lineage is minted on first write. If
// AWSCDK_STATE_ENCRYPTION_KEY is set, the file is transparently encrypted.
func (m *Manager) Write(ctx context.Context, st *State) error {
	if err := os.MkdirAll(filepath.Dir(m.path), 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	content, err := SerializeState(st)
	if err != nil {
		return err
	}

	encrypted, err := EncryptState(content)
	if err != nil {
		return fmt.Errorf("failed to encrypt state: %w", err)
	}

	if err := os.WriteFile(m.path, encrypted, 0600); err != nil {
		return fmt.Errorf("failed to write state file %s: %w", m.path, err)
	}
	return nil
}

// ParseState decodes serialized state, decrypting it first when needed.
func ParseState(raw []byte) (*State, error) {
	if IsEncrypted(raw) {
		decrypted, err := DecryptState(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt state: %w", err)
		}
		raw = decrypted
	}

	var st State
	if err := json.Unmarshal(raw, &st); err != nil {
		return nil, fmt.Errorf("failed to parse state: %w", err)
	}
	if st.Version == 0 {
		st.Version = 1
	}
	return &st, nil
}

// SerializeState renders the state as indented JSON, minting a lineage if
// the state has none yet.
func SerializeState(st *State) ([]byte, error) {
	if st.Lineage == "" {
		st.Lineage = newLineage()
	}
	out, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to serialize state: %w", err)
	}
	return append(out, '\n'), nil
}

func newLineage() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing means the platform is broken; a constant id
		// is better than aborting a deploy over it.
		return "00000000000000000000000000000000"
	}
	return hex.EncodeToString(buf)
}
