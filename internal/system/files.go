package system

import "os"

// FileExists reports whether path exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// ReadHostFile reads a file, applying the /host prefix when containerized
func ReadHostFile(path string) ([]byte, error) {
	return os.ReadFile(HostPath(path))
}
