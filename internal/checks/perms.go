package checks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/girste/hardhound/internal/config"
	"github.com/girste/hardhound/internal/errors"
	"github.com/girste/hardhound/internal/system"
)

// permViolation is a file whose mode carries bits beyond the allowed
// maximum.
type permViolation struct {
	path string
	mode os.FileMode
	want os.FileMode
}

func (v permViolation) String() string {
	return fmt.Sprintf("%s is %04o, want %04o", v.path, v.mode, v.want)
}

// filePermissionsCheck verifies the configured mode ceiling for
// sensitive files, plus SSH host private keys which must stay
// owner-only.
type filePermissionsCheck struct{}

// NewFilePermissionsCheck builds the sensitive-file mode check.
// Tightening a mode never widens access, so no confirmation is asked.
func NewFilePermissionsCheck() Check { return &filePermissionsCheck{} }

func (c *filePermissionsCheck) ID() string                 { return "file-permissions" }
func (c *filePermissionsCheck) Title() string              { return "Sensitive file permissions" }
func (c *filePermissionsCheck) Category() Category         { return CategoryFilePermissions }
func (c *filePermissionsCheck) Mutates() bool              { return true }
func (c *filePermissionsCheck) RequiresConfirmation() bool { return false }

func (c *filePermissionsCheck) Evaluate(ctx context.Context, env *Env) (*Finding, error) {
	violations, checked, err := c.violations(env)
	if err != nil {
		return nil, err
	}
	if len(violations) == 0 {
		return Pass("%d files within required modes", checked), nil
	}
	parts := make([]string, len(violations))
	for i, v := range violations {
		parts[i] = v.String()
	}
	return Fail("%s", strings.Join(parts, "; ")), nil
}

// violations stats every configured rule and the SSH host keys.
// Files that do not exist on this host are skipped, not flagged.
func (c *filePermissionsCheck) violations(env *Env) ([]permViolation, int, error) {
	found, checked, err := ruleViolations(env.Config.FileModes)
	if err != nil {
		return nil, 0, err
	}
	keyViolations, keysChecked := hostKeyViolations("/etc/ssh")
	return append(found, keyViolations...), checked + keysChecked, nil
}

func ruleViolations(rules []config.FileModeRule) ([]permViolation, int, error) {
	var found []permViolation
	checked := 0
	for _, rule := range rules {
		want, err := rule.ModeBits()
		if err != nil {
			return nil, 0, errors.Wrap(errors.ErrParseFailure, "file mode rule for %s: %v", rule.Path, err)
		}
		info, err := os.Stat(system.HostPath(rule.Path))
		if err != nil {
			continue
		}
		checked++
		if perm := info.Mode().Perm(); perm&^want != 0 {
			found = append(found, permViolation{path: rule.Path, mode: perm, want: want})
		}
	}
	return found, checked, nil
}

// hostKeyViolations sweeps sshDir for private host keys readable by
// group or world. The machine identity leaks with the key material.
// Reported paths stay in host notation so remediation can re-resolve
// them.
func hostKeyViolations(sshDir string) ([]permViolation, int) {
	entries, err := os.ReadDir(system.HostPath(sshDir))
	if err != nil {
		return nil, 0
	}
	var found []permViolation
	checked := 0
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, "ssh_host_") || strings.HasSuffix(name, ".pub") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		checked++
		if perm := info.Mode().Perm(); perm&0077 != 0 {
			found = append(found, permViolation{path: filepath.Join(sshDir, name), mode: perm, want: 0600})
		}
	}
	return found, checked
}

func (c *filePermissionsCheck) Remediate(ctx context.Context, env *Env) error {
	violations, _, err := c.violations(env)
	if err != nil {
		return errors.Wrap(errors.ErrRemediationFailed, "cannot re-check file modes: %v", err)
	}

	var failed []string
	for _, v := range violations {
		if err := os.Chmod(system.HostPath(v.path), v.want); err != nil {
			failed = append(failed, v.path)
		}
	}
	if len(failed) > 0 {
		return errors.Wrap(errors.ErrRemediationFailed, "chmod failed for: %s", strings.Join(failed, ", "))
	}
	return nil
}

func (c *filePermissionsCheck) Targets(env *Env) []string {
	violations, _, err := c.violations(env)
	if err != nil {
		return nil
	}
	paths := make([]string, len(violations))
	for i, v := range violations {
		paths[i] = system.HostPath(v.path)
	}
	return paths
}
