package localstate

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	envHome      = "TRACKD_HOME" // override for tests
	dirName      = ".nurturefox" // default under $HOME
	dbFilename   = "ledger.db"
	keyFilename  = "install.key"
	prefFilename = "settings.json"
)

// DataDir returns the directory where per-install state is stored
// (~/.nurturefox). It creates the directory with 0700 permissions if it
// does not exist.
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

// DBPath returns the absolute path to the SQLite ledger file.
func DBPath() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, dbFilename), nil
}

// KeyPath returns the absolute path to the per-install key file.
func KeyPath() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, keyFilename), nil
}

// SettingsPath returns the absolute path to the caregiver settings file.
func SettingsPath() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, prefFilename), nil
}
