package state

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// Backend is a state storage location.
type Backend interface {
	// Read loads the state from the backend.
	Read(ctx context.Context) (*State, error)

	// Write saves the state to the backend.
	Write(ctx context.Context, st *State) error

	// Lock acquires an exclusive lock on the state.
	Lock() error

	// Unlock releases the lock on the state.
	Unlock() error
}

// Manager is the local backend.
var _ Backend = (*Manager)(nil)

// NewBackend opens the backend a --state flag names: a plain path is the
// local file backend, an s3:// URL the remote one. The URL form is
// s3://bucket/key?region=eu-west-1&dynamodb_table=locks&profile=ci, with
// every query parameter optional.
func NewBackend(location string) (Backend, error) {
	if !strings.Contains(location, "://") {
		return NewManager(location), nil
	}

	u, err := url.Parse(location)
	if err != nil {
		return nil, fmt.Errorf("invalid state location %q: %w", location, err)
	}

	switch u.Scheme {
	case "s3":
		config := map[string]string{
			"bucket": u.Host,
			"key":    strings.TrimPrefix(u.Path, "/"),
		}
		for _, param := range []string{"region", "dynamodb_table", "encrypt", "profile"} {
			if v := u.Query().Get(param); v != "" {
				config[param] = v
			}
		}
		return newS3Backend(config)
	default:
		return nil, fmt.Errorf("unknown state backend scheme %q (supported: s3)", u.Scheme)
	}
}
