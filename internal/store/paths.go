package store

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultDBPath resolves the database file path in priority order:
// 1. CYBERSAGE_DB environment variable
// 2. $XDG_DATA_HOME/cybersage/cybersage.db
// 3. ~/.local/share/cybersage/cybersage.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("CYBERSAGE_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "cybersage", "cybersage.db")
	return p, EnsureDir(p)
}

// LogPathFor returns the log file that sits next to the database at dbPath.
func LogPathFor(dbPath string) string {
	return filepath.Join(filepath.Dir(dbPath), "cybersage.log")
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}
