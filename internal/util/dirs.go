package util

import (
	"os"
	"path/filepath"
)

// GetStateDir returns the directory for backups and run manifests
// based on user privileges
func GetStateDir() string {
	if os.Geteuid() == 0 {
		return "/var/lib/hardhound"
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".hardhound"
	}
	return filepath.Join(home, ".hardhound")
}
