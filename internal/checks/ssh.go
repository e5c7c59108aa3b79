package checks

import (
	"context"
	"os"
	"strings"

	"github.com/girste/hardhound/internal/confedit"
	"github.com/girste/hardhound/internal/errors"
	"github.com/girste/hardhound/internal/system"
)

// sshDirectiveCheck verifies one sshd_config directive against a
// required value and can rewrite it in place.
type sshDirectiveCheck struct {
	id        string
	title     string
	directive string
	want      string
	confirm   bool
}

// NewSSHRootLoginCheck requires PermitRootLogin to be disabled outright.
// The OpenSSH default of prohibit-password still allows key-based root
// sessions, so only an explicit "no" passes.
func NewSSHRootLoginCheck() Check {
	return &sshDirectiveCheck{
		id:        "ssh-root-login",
		title:     "SSH root login disabled",
		directive: "PermitRootLogin",
		want:      "no",
	}
}

// NewSSHPasswordAuthCheck requires key-only authentication. Remediation
// asks for confirmation because it can lock out password-only users.
func NewSSHPasswordAuthCheck() Check {
	return &sshDirectiveCheck{
		id:        "ssh-password-auth",
		title:     "SSH password authentication disabled",
		directive: "PasswordAuthentication",
		want:      "no",
		confirm:   true,
	}
}

// NewSSHEmptyPasswordsCheck requires PermitEmptyPasswords to be set to
// no explicitly rather than relying on the compiled-in default.
func NewSSHEmptyPasswordsCheck() Check {
	return &sshDirectiveCheck{
		id:        "ssh-empty-passwords",
		title:     "SSH empty passwords rejected",
		directive: "PermitEmptyPasswords",
		want:      "no",
	}
}

func (c *sshDirectiveCheck) ID() string                 { return c.id }
func (c *sshDirectiveCheck) Title() string              { return c.title }
func (c *sshDirectiveCheck) Category() Category         { return CategoryRemoteAccess }
func (c *sshDirectiveCheck) Mutates() bool              { return true }
func (c *sshDirectiveCheck) RequiresConfirmation() bool { return c.confirm }

func (c *sshDirectiveCheck) Evaluate(ctx context.Context, env *Env) (*Finding, error) {
	f, err := c.load(ctx, env)
	if err != nil {
		return nil, err
	}

	value, ok := f.Get(c.directive)
	if !ok {
		return Fail("%s is not set in %s (server default applies)", c.directive, f.Path()), nil
	}
	if !strings.EqualFold(value, c.want) {
		return Fail("%s is '%s', want '%s'", c.directive, value, c.want), nil
	}
	return Pass("%s is '%s'", c.directive, value), nil
}

func (c *sshDirectiveCheck) Remediate(ctx context.Context, env *Env) error {
	path := env.Config.SSH.ConfigPath
	f, err := confedit.Load(path, confedit.SpaceSeparated)
	if err != nil {
		return errors.Wrap(errors.ErrFileOperation, "cannot open %s: %v", path, err)
	}
	f.Set(c.directive, c.want)
	if err := f.Save(); err != nil {
		return errors.Wrap(errors.ErrFileOperation, "cannot write %s: %v", path, err)
	}

	// Ask sshd to validate the result before reloading; a rejected
	// config is reported rather than rolled back.
	if system.CommandExists("sshd") {
		if res, err := system.RunCommandSudo(ctx, system.TimeoutShort, "sshd", "-t"); err == nil && !res.Success {
			return errors.Wrap(errors.ErrRemediationFailed, "sshd rejected updated configuration: %s", res.Stderr)
		}
	}
	reloadSSHD(ctx)
	return nil
}

func (c *sshDirectiveCheck) Targets(env *Env) []string {
	return []string{env.Config.SSH.ConfigPath}
}

// load reads sshd_config directly, falling back to sudo when the
// current user cannot open it.
func (c *sshDirectiveCheck) load(ctx context.Context, env *Env) (*confedit.File, error) {
	path := env.Config.SSH.ConfigPath
	f, err := confedit.Load(path, confedit.SpaceSeparated)
	if err == nil {
		return f, nil
	}
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrToolMissing, "sshd configuration not found at %s", path)
	}
	if os.IsPermission(err) {
		res, sudoErr := system.RunCommandSudo(ctx, system.TimeoutShort, "cat", path)
		if sudoErr == nil && res.Success {
			return confedit.Parse(path, confedit.SpaceSeparated, []byte(res.Stdout)), nil
		}
		return nil, errors.Wrap(errors.ErrPermissionDenied, "cannot read %s", path)
	}
	return nil, errors.Wrap(errors.ErrFileOperation, "cannot read %s: %v", path, err)
}

// reloadSSHD applies the new configuration to the running daemon.
// Debian ships the unit as ssh, RHEL as sshd; failures are tolerated
// since the file change survives until the next restart.
func reloadSSHD(ctx context.Context) {
	for _, unit := range []string{"sshd", "ssh"} {
		if res, err := system.RunCommandSudo(ctx, system.TimeoutShort, "systemctl", "reload", unit); err == nil && res.Success {
			return
		}
	}
}
