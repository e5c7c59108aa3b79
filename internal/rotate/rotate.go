// Package rotate implements config-driven log rotation: numbered
// copies are shifted up, the live file is truncated in place so
// writers keep their file descriptor, older copies are gzipped and
// rotations past the retention window are pruned.
package rotate

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"time"

	"github.com/girste/hardhound/internal/config"
	"github.com/girste/hardhound/internal/log"
)

const defaultKeep = 5

var rotationSuffix = regexp.MustCompile(`\.(\d+)(\.gz)?$`)

// Stats accumulates what one rotation run did
type Stats struct {
	Rotated    int   `json:"rotated"`
	Compressed int   `json:"compressed"`
	Removed    int   `json:"removed"`
	BytesFreed int64 `json:"bytes_freed"`
	Errors     int   `json:"errors"`
}

// ExitCode is 0 when every group completed cleanly, 1 otherwise
func (s Stats) ExitCode() int {
	if s.Errors > 0 {
		return 1
	}
	return 0
}

// Summary renders the one-line run summary
func (s Stats) Summary() string {
	return fmt.Sprintf("rotated %d | compressed %d | removed %d | freed %s | errors %d",
		s.Rotated, s.Compressed, s.Removed, formatBytes(s.BytesFreed), s.Errors)
}

// Rotator processes the configured rotation groups. With dryRun set it
// only reports what it would do and leaves the filesystem untouched.
type Rotator struct {
	groups []config.RotateGroup
	dryRun bool
	now    time.Time
	stats  Stats
}

func New(groups []config.RotateGroup, dryRun bool) *Rotator {
	return &Rotator{groups: groups, dryRun: dryRun, now: time.Now()}
}

// Run rotates every configured group and returns the accumulated
// stats. A failing file or group is logged and counted, never fatal.
func (r *Rotator) Run() Stats {
	if len(r.groups) == 0 {
		log.Warn("no rotation groups configured")
		return r.stats
	}

	for _, group := range r.groups {
		r.processGroup(group)
	}

	log.Infof("rotation done: %s", r.stats.Summary())
	return r.stats
}

func (r *Rotator) processGroup(group config.RotateGroup) {
	keep := group.Keep
	if keep <= 0 {
		keep = defaultKeep
	}

	files, err := matchFiles(group.Patterns)
	if err != nil {
		log.Errorf("group %s: %v", group.Name, err)
		r.stats.Errors++
		return
	}
	if len(files) == 0 {
		log.Debugf("group %s: no files match", group.Name)
		return
	}

	log.Infof("group %s: %d file(s)", group.Name, len(files))
	for _, file := range files {
		r.processFile(file, keep, group)
	}
}

// matchFiles expands every glob pattern, drops rotated copies that a
// loose pattern like "syslog*" would sweep in, and dedupes.
func matchFiles(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", pattern, err)
		}
		for _, m := range matches {
			if seen[m] || rotationSuffix.MatchString(m) {
				continue
			}
			info, err := os.Stat(m)
			if err != nil || !info.Mode().IsRegular() {
				continue
			}
			seen[m] = true
			files = append(files, m)
		}
	}
	sort.Strings(files)
	return files, nil
}

func (r *Rotator) processFile(path string, keep int, group config.RotateGroup) {
	info, err := os.Stat(path)
	if err != nil {
		log.Errorf("stat %s: %v", path, err)
		r.stats.Errors++
		return
	}
	if group.MinSizeKB > 0 && info.Size() < group.MinSizeKB*1024 {
		log.Debugf("skipping %s: %d bytes below %d KB threshold", path, info.Size(), group.MinSizeKB)
		return
	}

	r.shiftRotations(path, keep)

	if r.dryRun {
		log.Infof("[dry-run] would rotate %s -> %s.1", path, path)
		r.stats.Rotated++
	} else {
		if err := r.rotateLive(path, info.Mode()); err != nil {
			log.Errorf("rotate %s: %v", path, err)
			r.stats.Errors++
			return
		}
		log.Infof("rotated %s", path)
		r.stats.Rotated++
	}

	if group.Compress {
		r.compressRotations(path, keep)
	}
	r.prune(path, keep, group.MinAgeDays)
}

// shiftRotations bumps file.N to file.N+1 (and file.N.gz alongside),
// highest index first so nothing is overwritten mid-shift.
func (r *Rotator) shiftRotations(path string, keep int) {
	for i := keep - 1; i >= 1; i-- {
		plain := fmt.Sprintf("%s.%d", path, i)
		gz := plain + ".gz"

		switch {
		case fileExists(gz):
			r.renameRotation(gz, fmt.Sprintf("%s.%d.gz", path, i+1))
		case fileExists(plain):
			r.renameRotation(plain, fmt.Sprintf("%s.%d", path, i+1))
		}
	}
}

func (r *Rotator) renameRotation(from, to string) {
	if r.dryRun {
		log.Debugf("[dry-run] would rename %s -> %s", from, to)
		return
	}
	if err := os.Rename(from, to); err != nil {
		log.Errorf("rename %s: %v", from, err)
		r.stats.Errors++
	}
}

// rotateLive copies the live file to .1 and truncates the original in
// place so the writing process keeps its inode.
func (r *Rotator) rotateLive(path string, mode os.FileMode) error {
	if err := copyFile(path, path+".1", mode); err != nil {
		return err
	}
	return os.Truncate(path, 0)
}

// compressRotations gzips rotated copies beyond the first. The newest
// copy stays plain so it can still be read without tooling.
func (r *Rotator) compressRotations(path string, keep int) {
	for i := 2; i <= keep; i++ {
		plain := fmt.Sprintf("%s.%d", path, i)
		gz := plain + ".gz"
		if !fileExists(plain) || fileExists(gz) {
			continue
		}

		if r.dryRun {
			log.Infof("[dry-run] would compress %s", plain)
			r.stats.Compressed++
			continue
		}

		saved, err := gzipFile(plain, gz)
		if err != nil {
			log.Errorf("compress %s: %v", plain, err)
			r.stats.Errors++
			continue
		}
		log.Debugf("compressed %s (saved %s)", plain, formatBytes(saved))
		r.stats.Compressed++
		r.stats.BytesFreed += saved
	}
}

// prune removes numbered rotations past the keep count and, when
// minAgeDays is set, rotations older than that many days.
func (r *Rotator) prune(path string, keep int, minAgeDays int) {
	dir := filepath.Dir(path)
	base := filepath.Base(path)
	entries, err := os.ReadDir(dir)
	if err != nil {
		log.Errorf("read %s: %v", dir, err)
		r.stats.Errors++
		return
	}

	cutoff := time.Time{}
	if minAgeDays > 0 {
		cutoff = r.now.AddDate(0, 0, -minAgeDays)
	}

	for _, entry := range entries {
		name := entry.Name()
		if name == base || !rotationSuffix.MatchString(name) {
			continue
		}
		idx, ok := rotationIndex(name, base)
		if !ok {
			continue
		}

		full := filepath.Join(dir, name)
		info, err := entry.Info()
		if err != nil {
			continue
		}

		tooMany := idx > keep
		tooOld := !cutoff.IsZero() && info.ModTime().Before(cutoff)
		if !tooMany && !tooOld {
			continue
		}

		if r.dryRun {
			log.Infof("[dry-run] would remove %s", full)
			r.stats.Removed++
			continue
		}
		if err := os.Remove(full); err != nil {
			log.Errorf("remove %s: %v", full, err)
			r.stats.Errors++
			continue
		}
		log.Debugf("removed %s", full)
		r.stats.Removed++
		r.stats.BytesFreed += info.Size()
	}
}

// rotationIndex returns the rotation number of name when it is a
// numbered copy of base ("base.3" or "base.3.gz").
func rotationIndex(name, base string) (int, bool) {
	if len(name) <= len(base) || name[:len(base)] != base || name[len(base)] != '.' {
		return 0, false
	}
	m := rotationSuffix.FindStringSubmatch(name)
	if m == nil || base+m[0] != name {
		return 0, false
	}
	var idx int
	for _, c := range m[1] {
		idx = idx*10 + int(c-'0')
	}
	return idx, true
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func copyFile(src, dst string, mode os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode.Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// gzipFile compresses src into dst, removes src and returns the bytes
// saved.
func gzipFile(src, dst string) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return 0, err
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return 0, err
	}
	gw := gzip.NewWriter(out)
	if _, err := io.Copy(gw, in); err != nil {
		gw.Close()
		out.Close()
		return 0, err
	}
	if err := gw.Close(); err != nil {
		out.Close()
		return 0, err
	}
	if err := out.Close(); err != nil {
		return 0, err
	}

	compressed, err := os.Stat(dst)
	if err != nil {
		return 0, err
	}
	if err := os.Remove(src); err != nil {
		return 0, err
	}
	return info.Size() - compressed.Size(), nil
}

func formatBytes(n int64) string {
	size := float64(n)
	for _, unit := range []string{"B", "KB", "MB", "GB"} {
		if size < 1024 {
			return fmt.Sprintf("%.1f%s", size, unit)
		}
		size /= 1024
	}
	return fmt.Sprintf("%.1fTB", size)
}
