package checks

import (
	"context"
	"strings"

	"github.com/girste/hardhound/internal/errors"
	"github.com/girste/hardhound/internal/system"
)

// dnf check-update signals pending updates through its exit code
const dnfUpdatesAvailable = 100

// updatesCheck queries the distribution package manager for pending
// upgrades. Pending security updates fail the check, other pending
// upgrades only warn.
type updatesCheck struct{}

// NewUpdatesCheck builds the patching check. Upgrading packages can
// restart services, so remediation asks for confirmation.
func NewUpdatesCheck() Check { return &updatesCheck{} }

func (c *updatesCheck) ID() string                 { return "updates-pending" }
func (c *updatesCheck) Title() string              { return "Security updates applied" }
func (c *updatesCheck) Category() Category         { return CategoryPatching }
func (c *updatesCheck) Mutates() bool              { return true }
func (c *updatesCheck) RequiresConfirmation() bool { return true }

func (c *updatesCheck) Evaluate(ctx context.Context, env *Env) (*Finding, error) {
	switch system.PackageManager(env.Distro) {
	case "apt":
		return c.evaluateApt(ctx)
	case "dnf":
		return c.evaluateDnf(ctx)
	default:
		return nil, errors.Wrap(errors.ErrToolMissing, "no supported package manager for distro %q", env.Distro)
	}
}

func (c *updatesCheck) evaluateApt(ctx context.Context) (*Finding, error) {
	if !system.CommandExists("apt") {
		return nil, errors.Wrap(errors.ErrToolMissing, "apt not found")
	}
	res, err := system.RunCommand(ctx, system.TimeoutVeryLong, "apt", "list", "--upgradable")
	if err != nil {
		return Warn("could not query pending updates: %v", err), nil
	}
	if !res.Success {
		return Warn("apt list --upgradable failed: %s", strings.TrimSpace(res.Stderr)), nil
	}
	total, security := countAptUpgradable(res.Stdout)
	return updatesFinding(total, security), nil
}

func (c *updatesCheck) evaluateDnf(ctx context.Context) (*Finding, error) {
	if !system.CommandExists("dnf") {
		return nil, errors.Wrap(errors.ErrToolMissing, "dnf not found")
	}
	res, err := system.RunCommand(ctx, system.TimeoutVeryLong, "dnf", "check-update", "-q")
	if err != nil {
		return Warn("could not query pending updates: %v", err), nil
	}
	total := 0
	switch res.ExitCode {
	case 0:
	case dnfUpdatesAvailable:
		total = countDnfPending(res.Stdout)
	default:
		return Warn("dnf check-update failed: %s", strings.TrimSpace(res.Stderr)), nil
	}

	security := 0
	if secRes, err := system.RunCommand(ctx, system.TimeoutVeryLong, "dnf", "check-update", "--security", "-q"); err == nil && secRes.ExitCode == dnfUpdatesAvailable {
		security = countDnfPending(secRes.Stdout)
	}
	return updatesFinding(total, security), nil
}

func updatesFinding(total, security int) *Finding {
	switch {
	case security > 0:
		return Fail("%d updates pending, %d security", total, security)
	case total > 0:
		return Warn("%d updates pending", total)
	default:
		return Pass("system is up to date")
	}
}

// countAptUpgradable counts upgradable packages in apt list output and
// how many of them come from a -security pocket.
func countAptUpgradable(out string) (total, security int) {
	for _, line := range strings.Split(out, "\n") {
		if !strings.Contains(line, "[upgradable") {
			continue
		}
		total++
		if strings.Contains(line, "-security") {
			security++
		}
	}
	return total, security
}

// countDnfPending counts package lines in dnf check-update output,
// skipping section headers and blank lines.
func countDnfPending(out string) int {
	n := 0
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "Last") || strings.HasPrefix(line, "Obsoleting") {
			continue
		}
		if strings.Contains(line, ".") {
			n++
		}
	}
	return n
}

func (c *updatesCheck) Remediate(ctx context.Context, env *Env) error {
	switch system.PackageManager(env.Distro) {
	case "apt":
		if res, err := system.RunCommandSudo(ctx, system.TimeoutVeryLong, "apt-get", "update"); err != nil || !res.Success {
			return errors.Wrap(errors.ErrRemediationFailed, "apt-get update failed")
		}
		res, err := system.RunCommandSudo(ctx, system.TimeoutVeryLong, "apt-get", "upgrade", "-y")
		if err != nil {
			return errors.Wrap(errors.ErrRemediationFailed, "apt-get upgrade: %v", err)
		}
		if !res.Success {
			return errors.Wrap(errors.ErrRemediationFailed, "apt-get upgrade: %s", strings.TrimSpace(res.Stderr))
		}
		return nil
	case "dnf":
		res, err := system.RunCommandSudo(ctx, system.TimeoutVeryLong, "dnf", "upgrade", "-y")
		if err != nil {
			return errors.Wrap(errors.ErrRemediationFailed, "dnf upgrade: %v", err)
		}
		if !res.Success {
			return errors.Wrap(errors.ErrRemediationFailed, "dnf upgrade: %s", strings.TrimSpace(res.Stderr))
		}
		return nil
	default:
		return errors.Wrap(errors.ErrRemediationFailed, "no supported package manager for distro %q", env.Distro)
	}
}

func (c *updatesCheck) Targets(env *Env) []string { return nil }
