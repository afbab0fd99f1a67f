package state

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// staleLockAge is how old a lock file may get before it is treated as
// abandoned by a crashed process and reclaimed.
const staleLockAge = 10 * time.Minute

// Lock takes a file lock next to the state file so two deploys cannot
// interleave writes.
func (m *Manager) Lock() error {
	lockPath := m.lockPath()
	if err := os.MkdirAll(filepath.Dir(lockPath), 0755); err != nil {
		return fmt.Errorf("failed to create lock directory: %w", err)
	}

	if info, err := os.Stat(lockPath); err == nil {
		if time.Since(info.ModTime()) > staleLockAge {
			os.Remove(lockPath)
		} else {
			return fmt.Errorf("state is locked by another process (lock file: %s); "+
				"remove the lock file manually if that process is gone", lockPath)
		}
	}

	content := fmt.Sprintf("pid=%d\ntime=%s\n", os.Getpid(), time.Now().UTC().Format(time.RFC3339))
	if err := os.WriteFile(lockPath, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to create lock file: %w", err)
	}
	return nil
}

// Unlock releases the state lock. A missing lock file is not an error.
func (m *Manager) Unlock() error {
	if err := os.Remove(m.lockPath()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove lock file: %w", err)
	}
	return nil
}

func (m *Manager) lockPath() string {
	return m.path + ".lock"
}
