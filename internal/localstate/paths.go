package localstate

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	envHome          = "TRACKNFRESH_STATE_HOME" // override for tests
	dirName          = ".tracknfresh"           // default under $HOME
	accountsFilename = "accounts.db"
)

// DataDir returns the directory where local development state is kept
// (~/.tracknfresh), creating it with 0700 permissions if needed.
func DataDir() (string, error) {
	if custom := os.Getenv(envHome); custom != "" {
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

// AccountsDBPath returns configured if set, otherwise the default location
// of the local accounts database inside DataDir.
func AccountsDBPath(configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, accountsFilename), nil
}
