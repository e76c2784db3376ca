// Package localstate locates and initialises the on-disk state of the CLI and
// of a local planner service.
package localstate

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	EnvHome          = "STARSTRIP_HOME" // override for tests
	dirName          = ".starstrip"     // default under $HOME
	sessionFilename  = "session.db"
	serverDBFilename = "planner.db"
)

// DataDir returns the directory where local state is stored (~/.starstrip).
// It creates the directory with 0700 permissions if it does not exist.
func DataDir() (string, error) {
	if custom := os.Getenv(EnvHome); custom != "" {
		if err := os.MkdirAll(custom, 0o700); err != nil {
			return "", err
		}
		return custom, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine user home: %w", err)
	}
	dir := filepath.Join(home, dirName)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return dir, nil
}

// SessionDBPath returns the path of the CLI session database.
func SessionDBPath() (string, error) {
	return inDataDir(sessionFilename)
}

// ServerDBPath returns the default sqlite store path for a local service.
func ServerDBPath() (string, error) {
	return inDataDir(serverDBFilename)
}

func inDataDir(name string) (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}
