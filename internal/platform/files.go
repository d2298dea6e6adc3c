package platform

import (
	"fmt"
	"os"
	"path/filepath"
)

// File permissions
const (
	DefaultDirPermissions = 0755
)

// CreateDirectoryIfNotExists ensures a directory exists, creating parents as
// needed.
func CreateDirectoryIfNotExists(dir string) error {
	if dir == "" {
		return fmt.Errorf("directory path is empty")
	}
	if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}
	return nil
}

// GetHomeDownloadsDir returns the user's Downloads directory.
func GetHomeDownloadsDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, "Downloads"), nil
}
