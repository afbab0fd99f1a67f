package awscall

import "strings"

// ConfigError reports an invalid call configuration. It is raised
// synchronously while the resource is being constructed, never at deploy
// time, and Fields names every offending field so the declaration can be
// fixed without a deploy cycle.
type ConfigError struct {
	Fields []string
	Reason string
}

func (e *ConfigError) Error() string {
	if len(e.Fields) == 0 {
		return e.Reason
	}
	return strings.Join(e.Fields, ", ") + ": " + e.Reason
}

func configErrorf(fields []string, reason string) error {
	return &ConfigError{Fields: fields, Reason: reason}
}
