// Package backup snapshots files before the remediator rewrites them
// and records every copy in a per-run YAML manifest, so each applied
// change can be undone by hand.
package backup

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/girste/hardhound/internal/errors"
)

// timestampLayout is embedded in backup file names
const timestampLayout = "20060102-150405"

// Entry records one snapshot taken during a run
type Entry struct {
	Source     string `yaml:"source"`
	BackupPath string `yaml:"backup_path"`
	Mode       string `yaml:"mode"`
	Checksum   string `yaml:"checksum"`
	CreatedAt  string `yaml:"created_at"`
}

// Manifest is the YAML index of all snapshots taken during one run
type Manifest struct {
	RunID     string  `yaml:"run_id"`
	Hostname  string  `yaml:"hostname"`
	CreatedAt string  `yaml:"created_at"`
	Entries   []Entry `yaml:"entries"`
}

// Manager creates at most one snapshot per source file per run.
// A nil destination directory keeps backups next to their source.
type Manager struct {
	runID   string
	dir     string
	done    map[string]string
	entries []Entry
}

// NewManager builds a manager for one run. dir may be empty to place
// each backup alongside its source file.
func NewManager(runID, dir string) *Manager {
	return &Manager{
		runID: runID,
		dir:   dir,
		done:  make(map[string]string),
	}
}

// Snapshot copies path before its first mutation in this run. Later
// calls for the same path return the existing copy. A source that does
// not exist yet needs no backup and returns an empty path.
func (m *Manager) Snapshot(path string) (string, error) {
	if dest, seen := m.done[path]; seen {
		return dest, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		m.done[path] = ""
		return "", nil
	}
	if err != nil {
		return "", errors.Wrap(errors.ErrFileOperation, "cannot read %s for backup: %v", path, err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return "", errors.Wrap(errors.ErrFileOperation, "cannot stat %s: %v", path, err)
	}

	destDir := m.dir
	if destDir == "" {
		destDir = filepath.Dir(path)
	} else if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", errors.Wrap(errors.ErrFileOperation, "cannot create backup dir %s: %v", destDir, err)
	}

	now := time.Now()
	dest, err := freeBackupPath(destDir, filepath.Base(path), now)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(dest, data, 0600); err != nil {
		return "", errors.Wrap(errors.ErrFileOperation, "cannot write backup %s: %v", dest, err)
	}

	m.done[path] = dest
	m.entries = append(m.entries, Entry{
		Source:     path,
		BackupPath: dest,
		Mode:       fmt.Sprintf("%04o", info.Mode().Perm()),
		Checksum:   checksum(data),
		CreatedAt:  now.UTC().Format(time.RFC3339),
	})
	return dest, nil
}

// Entries returns the snapshots taken so far, in creation order
func (m *Manager) Entries() []Entry {
	out := make([]Entry, len(m.entries))
	copy(out, m.entries)
	return out
}

// WriteManifest saves the run's manifest under dir. Runs that took no
// snapshots write nothing and return an empty path.
func (m *Manager) WriteManifest(dir string) (string, error) {
	if len(m.entries) == 0 {
		return "", nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", errors.Wrap(errors.ErrFileOperation, "cannot create manifest dir %s: %v", dir, err)
	}

	hostname, _ := os.Hostname()
	manifest := Manifest{
		RunID:     m.runID,
		Hostname:  hostname,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Entries:   m.entries,
	}
	data, err := yaml.Marshal(&manifest)
	if err != nil {
		return "", errors.Wrap(errors.ErrFileOperation, "cannot marshal manifest: %v", err)
	}

	path := filepath.Join(dir, "manifest-"+m.runID+".yaml")
	if err := os.WriteFile(path, data, 0600); err != nil {
		return "", errors.Wrap(errors.ErrFileOperation, "cannot write manifest %s: %v", path, err)
	}
	return path, nil
}

// LoadManifest reads one run manifest back
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrFileOperation, "cannot read manifest %s: %v", path, err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrap(errors.ErrParseFailure, "cannot parse manifest %s: %v", path, err)
	}
	return &m, nil
}

// ListManifests returns manifest paths under dir, newest name last
func ListManifests(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "manifest-*.yaml"))
	if err != nil {
		return nil, errors.Wrap(errors.ErrFileOperation, "cannot list manifests: %v", err)
	}
	sort.Strings(matches)
	return matches, nil
}

// backupName renders "<base>.bak-<timestamp>" with an optional
// disambiguating counter for collisions inside one second.
func backupName(base string, ts time.Time, n int) string {
	name := base + ".bak-" + ts.Format(timestampLayout)
	if n > 0 {
		name += "." + strconv.Itoa(n)
	}
	return name
}

func freeBackupPath(dir, base string, ts time.Time) (string, error) {
	for n := 0; n < 100; n++ {
		candidate := filepath.Join(dir, backupName(base, ts, n))
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate, nil
		}
	}
	return "", errors.Wrap(errors.ErrFileOperation, "no free backup name for %s in %s", base, dir)
}

func checksum(data []byte) string {
	hash := sha256.Sum256(data)
	return "sha256:" + hex.EncodeToString(hash[:])
}
