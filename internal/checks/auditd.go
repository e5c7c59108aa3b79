package checks

import (
	"context"
	"strings"

	"github.com/girste/hardhound/internal/errors"
	"github.com/girste/hardhound/internal/system"
)

// auditdCheck verifies the kernel audit daemon is installed, running
// and enabled at boot.
type auditdCheck struct{}

// NewAuditdCheck builds the audit subsystem check
func NewAuditdCheck() Check { return &auditdCheck{} }

func (c *auditdCheck) ID() string                 { return "auditd-enabled" }
func (c *auditdCheck) Title() string              { return "Audit daemon running and enabled" }
func (c *auditdCheck) Category() Category         { return CategoryAuditSubsystem }
func (c *auditdCheck) Mutates() bool              { return true }
func (c *auditdCheck) RequiresConfirmation() bool { return false }

func (c *auditdCheck) Evaluate(ctx context.Context, env *Env) (*Finding, error) {
	if !system.CommandExists("systemctl") {
		return nil, errors.Wrap(errors.ErrToolMissing, "systemctl not found")
	}
	if !auditdInstalled(ctx) {
		return nil, errors.Wrap(errors.ErrToolMissing, "auditd is not installed")
	}

	active := system.IsServiceActive(ctx, "auditd")
	enabled := system.IsServiceEnabled(ctx, "auditd")
	switch {
	case active && enabled:
		return Pass("auditd is active and enabled"), nil
	case active:
		return Fail("auditd is running but not enabled at boot"), nil
	case enabled:
		return Fail("auditd is enabled at boot but not running"), nil
	default:
		return Fail("auditd is installed but neither running nor enabled"), nil
	}
}

// auditdInstalled checks for the unit file rather than the binary so a
// masked or unpackaged daemon is not mistaken for a present one.
func auditdInstalled(ctx context.Context) bool {
	res, err := system.RunCommand(ctx, system.TimeoutShort, "systemctl", "cat", "auditd.service")
	return err == nil && res.Success
}

func (c *auditdCheck) Remediate(ctx context.Context, env *Env) error {
	res, err := system.RunCommandSudo(ctx, system.TimeoutMedium, "systemctl", "enable", "--now", "auditd")
	if err != nil {
		return errors.Wrap(errors.ErrRemediationFailed, "enable auditd: %v", err)
	}
	if !res.Success {
		return errors.Wrap(errors.ErrRemediationFailed, "enable auditd: %s", strings.TrimSpace(res.Stderr))
	}
	return nil
}

func (c *auditdCheck) Targets(env *Env) []string { return nil }
