package checks

import (
	"context"
	"strings"

	"github.com/girste/hardhound/internal/errors"
	"github.com/girste/hardhound/internal/system"
)

// firewallCheck verifies that a host firewall is enforcing rules,
// probing ufw, firewalld and raw iptables in that order.
type firewallCheck struct{}

// NewFirewallCheck builds the perimeter firewall check. Enabling a
// firewall can cut active connections, so remediation asks first.
func NewFirewallCheck() Check { return &firewallCheck{} }

func (c *firewallCheck) ID() string                 { return "firewall-active" }
func (c *firewallCheck) Title() string              { return "Host firewall active" }
func (c *firewallCheck) Category() Category         { return CategoryPerimeter }
func (c *firewallCheck) Mutates() bool              { return true }
func (c *firewallCheck) RequiresConfirmation() bool { return true }

func (c *firewallCheck) Evaluate(ctx context.Context, env *Env) (*Finding, error) {
	tool, active, err := c.detect(ctx)
	if err != nil {
		return nil, err
	}
	if tool == "" {
		return nil, errors.Wrap(errors.ErrToolMissing, "no firewall tool found (ufw, firewalld, iptables)")
	}
	if active {
		return Pass("%s is active", tool), nil
	}
	return Fail("%s is installed but not active", tool), nil
}

// detect walks the known firewall frontends and reports the first one
// installed plus whether it is enforcing.
func (c *firewallCheck) detect(ctx context.Context) (tool string, active bool, err error) {
	if system.CommandExists("ufw") {
		res, runErr := system.RunCommandSudo(ctx, system.TimeoutShort, "ufw", "status")
		if runErr != nil {
			return "ufw", false, nil
		}
		if !res.Success {
			if system.PermissionDenied(res) {
				return "", false, errors.Wrap(errors.ErrPermissionDenied, "ufw status requires root")
			}
			return "ufw", false, nil
		}
		return "ufw", strings.Contains(strings.ToLower(res.Stdout), "status: active"), nil
	}

	if system.CommandExists("firewall-cmd") {
		res, runErr := system.RunCommandSudo(ctx, system.TimeoutShort, "firewall-cmd", "--state")
		if runErr != nil {
			return "firewalld", false, nil
		}
		return "firewalld", res.Success && strings.TrimSpace(res.Stdout) == "running", nil
	}

	if system.CommandExists("iptables") {
		res, runErr := system.RunCommandSudo(ctx, system.TimeoutShort, "iptables", "-S")
		if runErr != nil || !res.Success {
			if res != nil && system.PermissionDenied(res) {
				return "", false, errors.Wrap(errors.ErrPermissionDenied, "iptables -S requires root")
			}
			return "iptables", false, nil
		}
		return "iptables", iptablesEnforcing(res.Stdout), nil
	}

	return "", false, nil
}

// iptablesEnforcing treats a ruleset as active when it carries at least
// one rule or a default-deny input policy.
func iptablesEnforcing(ruleset string) bool {
	for _, line := range strings.Split(ruleset, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "-A ") {
			return true
		}
		if strings.HasPrefix(line, "-P INPUT DROP") || strings.HasPrefix(line, "-P INPUT REJECT") {
			return true
		}
	}
	return false
}

func (c *firewallCheck) Remediate(ctx context.Context, env *Env) error {
	if system.CommandExists("ufw") {
		// Keep SSH reachable before flipping the default policy.
		_, _ = system.RunCommandSudo(ctx, system.TimeoutShort, "ufw", "allow", "OpenSSH")
		res, err := system.RunCommandSudo(ctx, system.TimeoutMedium, "ufw", "--force", "enable")
		if err != nil {
			return errors.Wrap(errors.ErrRemediationFailed, "ufw enable: %v", err)
		}
		if !res.Success {
			return errors.Wrap(errors.ErrRemediationFailed, "ufw enable: %s", strings.TrimSpace(res.Stderr))
		}
		return nil
	}

	if system.CommandExists("firewall-cmd") {
		res, err := system.RunCommandSudo(ctx, system.TimeoutMedium, "systemctl", "enable", "--now", "firewalld")
		if err != nil {
			return errors.Wrap(errors.ErrRemediationFailed, "enable firewalld: %v", err)
		}
		if !res.Success {
			return errors.Wrap(errors.ErrRemediationFailed, "enable firewalld: %s", strings.TrimSpace(res.Stderr))
		}
		return nil
	}

	return errors.Wrap(errors.ErrRemediationFailed, "only raw iptables found; install ufw or firewalld to manage the ruleset")
}

func (c *firewallCheck) Targets(env *Env) []string { return nil }
