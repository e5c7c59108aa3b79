package backup

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestSnapshotCreatesCopy(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "sshd_config")
	writeFile(t, source, "PermitRootLogin yes\n")
	if err := os.Chmod(source, 0644); err != nil {
		t.Fatalf("chmod: %v", err)
	}

	m := NewManager("run-1", "")
	dest, err := m.Snapshot(source)
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if dest == "" {
		t.Fatal("Snapshot() returned empty path for existing file")
	}
	if !strings.Contains(filepath.Base(dest), ".bak-") {
		t.Errorf("backup name %q missing .bak- marker", dest)
	}
	if filepath.Dir(dest) != dir {
		t.Errorf("backup placed in %s, want alongside source in %s", filepath.Dir(dest), dir)
	}

	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("read backup: %v", err)
	}
	if string(data) != "PermitRootLogin yes\n" {
		t.Errorf("backup content = %q", data)
	}

	info, err := os.Stat(dest)
	if err != nil {
		t.Fatalf("stat backup: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("backup mode = %o, want 0600", info.Mode().Perm())
	}
}

func TestSnapshotOncePerRun(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "config")
	writeFile(t, source, "v1\n")

	m := NewManager("run-1", "")
	first, err := m.Snapshot(source)
	if err != nil {
		t.Fatalf("first Snapshot() error = %v", err)
	}

	// mutate and snapshot again within the same run
	writeFile(t, source, "v2\n")
	second, err := m.Snapshot(source)
	if err != nil {
		t.Fatalf("second Snapshot() error = %v", err)
	}

	if first != second {
		t.Errorf("second Snapshot() = %s, want the original %s", second, first)
	}
	if got := len(m.Entries()); got != 1 {
		t.Errorf("entries = %d, want 1", got)
	}
	data, _ := os.ReadFile(first)
	if string(data) != "v1\n" {
		t.Errorf("backup content = %q, want the pre-mutation state", data)
	}
}

func TestSnapshotMissingSource(t *testing.T) {
	m := NewManager("run-1", "")
	dest, err := m.Snapshot(filepath.Join(t.TempDir(), "absent"))
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if dest != "" {
		t.Errorf("Snapshot(absent) = %q, want empty", dest)
	}
	if len(m.Entries()) != 0 {
		t.Errorf("entries = %v, want none", m.Entries())
	}
}

func TestSnapshotDedicatedDir(t *testing.T) {
	sourceDir := t.TempDir()
	backupDir := filepath.Join(t.TempDir(), "backups", "nested")
	source := filepath.Join(sourceDir, "shadow")
	writeFile(t, source, "root:x\n")

	m := NewManager("run-1", backupDir)
	dest, err := m.Snapshot(source)
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if filepath.Dir(dest) != backupDir {
		t.Errorf("backup in %s, want %s", filepath.Dir(dest), backupDir)
	}
}

func TestBackupName(t *testing.T) {
	ts := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	if got := backupName("sshd_config", ts, 0); got != "sshd_config.bak-20260314-092653" {
		t.Errorf("backupName() = %q", got)
	}
	if got := backupName("sshd_config", ts, 2); got != "sshd_config.bak-20260314-092653.2" {
		t.Errorf("backupName(n=2) = %q", got)
	}
}

func TestFreeBackupPathAvoidsCollision(t *testing.T) {
	dir := t.TempDir()
	ts := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	taken := filepath.Join(dir, backupName("config", ts, 0))
	writeFile(t, taken, "occupied\n")

	got, err := freeBackupPath(dir, "config", ts)
	if err != nil {
		t.Fatalf("freeBackupPath() error = %v", err)
	}
	want := filepath.Join(dir, backupName("config", ts, 1))
	if got != want {
		t.Errorf("freeBackupPath() = %s, want %s", got, want)
	}
}

func TestManifestRoundTrip(t *testing.T) {
	sourceDir := t.TempDir()
	source := filepath.Join(sourceDir, "sysctl.conf")
	writeFile(t, source, "net.ipv4.tcp_syncookies = 0\n")

	m := NewManager("5f6e7a10-aaaa-bbbb-cccc-000000000001", "")
	if _, err := m.Snapshot(source); err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}

	manifestDir := filepath.Join(t.TempDir(), "state")
	path, err := m.WriteManifest(manifestDir)
	if err != nil {
		t.Fatalf("WriteManifest() error = %v", err)
	}
	if path == "" {
		t.Fatal("WriteManifest() returned empty path with entries present")
	}

	loaded, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest() error = %v", err)
	}
	if loaded.RunID != "5f6e7a10-aaaa-bbbb-cccc-000000000001" {
		t.Errorf("RunID = %s", loaded.RunID)
	}
	if len(loaded.Entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(loaded.Entries))
	}
	entry := loaded.Entries[0]
	if entry.Source != source {
		t.Errorf("entry source = %s, want %s", entry.Source, source)
	}
	if !strings.HasPrefix(entry.Checksum, "sha256:") {
		t.Errorf("checksum = %q, want sha256: prefix", entry.Checksum)
	}
	if entry.Mode != "0600" {
		t.Errorf("entry mode = %s, want 0600", entry.Mode)
	}

	manifests, err := ListManifests(manifestDir)
	if err != nil {
		t.Fatalf("ListManifests() error = %v", err)
	}
	if len(manifests) != 1 || manifests[0] != path {
		t.Errorf("ListManifests() = %v, want [%s]", manifests, path)
	}
}

func TestWriteManifestEmptyRun(t *testing.T) {
	m := NewManager("run-1", "")
	path, err := m.WriteManifest(t.TempDir())
	if err != nil {
		t.Fatalf("WriteManifest() error = %v", err)
	}
	if path != "" {
		t.Errorf("WriteManifest() = %q for empty run, want empty", path)
	}
}
