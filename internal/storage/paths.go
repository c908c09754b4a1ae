// Package storage persists user preferences and the search book in BadgerDB.
package storage

import (
	"os"
	"path/filepath"
	"runtime"
)

const appName = "latrones"

// GetDataDir returns the platform-specific data directory for the application.
// - macOS: ~/Library/Application Support/latrones/
// - Linux: ~/.local/share/latrones/
// - Windows: %APPDATA%/latrones/
func GetDataDir() (string, error) {
	var baseDir string

	switch runtime.GOOS {
	case "darwin":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		baseDir = filepath.Join(homeDir, "Library", "Application Support")

	case "windows":
		baseDir = os.Getenv("APPDATA")
		if baseDir == "" {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			baseDir = filepath.Join(homeDir, "AppData", "Roaming")
		}

	default:
		// Check XDG_DATA_HOME first
		baseDir = os.Getenv("XDG_DATA_HOME")
		if baseDir == "" {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			baseDir = filepath.Join(homeDir, ".local", "share")
		}
	}

	dataDir := filepath.Join(baseDir, appName)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", err
	}
	return dataDir, nil
}

// GetDatabaseDir returns the directory for the BadgerDB database. An empty
// root selects the platform data directory.
func GetDatabaseDir(root string) (string, error) {
	if root == "" {
		dataDir, err := GetDataDir()
		if err != nil {
			return "", err
		}
		root = dataDir
	}

	dbDir := filepath.Join(root, "db")
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return "", err
	}
	return dbDir, nil
}
