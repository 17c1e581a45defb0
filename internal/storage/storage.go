// Package storage persists application state as JSON-serialized key-value
// pairs. The engine never touches it; load and save are explicit calls made
// by the CLI and web layers.
package storage

import (
	"os"
	"path/filepath"
)

// Store is a small key-value persistence interface. Values are JSON
// round-tripped through the caller's types.
type Store interface {
	// Get unmarshals the value for key into v. The bool is false when the
	// key does not exist.
	Get(key string, v any) (bool, error)

	// Put marshals v and stores it under key, replacing any prior value.
	Put(key string, v any) error

	// Delete removes a key. Deleting a missing key is a no-op.
	Delete(key string) error

	// Close releases the underlying resources.
	Close() error
}

// DefaultDBPath returns the default database path.
func DefaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "synthetica.db"
	}
	return filepath.Join(home, ".synthetica", "synthetica.db")
}
