package checks

import (
	"context"
	"strings"

	"github.com/girste/hardhound/internal/errors"
	"github.com/girste/hardhound/internal/system"
)

// emptyPasswordCheck scans the shadow database for accounts whose
// password hash field is empty, meaning login needs no password at all.
// Locked accounts ("!", "*", "!!") are not flagged.
type emptyPasswordCheck struct{}

// NewEmptyPasswordCheck builds the empty-credentials check. Remediation
// locks the offending accounts, so it asks for confirmation.
func NewEmptyPasswordCheck() Check { return &emptyPasswordCheck{} }

func (c *emptyPasswordCheck) ID() string                 { return "accounts-empty-password" }
func (c *emptyPasswordCheck) Title() string              { return "No accounts with empty passwords" }
func (c *emptyPasswordCheck) Category() Category         { return CategoryAccountPolicy }
func (c *emptyPasswordCheck) Mutates() bool              { return true }
func (c *emptyPasswordCheck) RequiresConfirmation() bool { return true }

func (c *emptyPasswordCheck) Evaluate(ctx context.Context, env *Env) (*Finding, error) {
	offenders, err := emptyPasswordAccounts(ctx)
	if err != nil {
		return nil, err
	}
	if len(offenders) == 0 {
		return Pass("no accounts with an empty password hash"), nil
	}
	return Fail("accounts with an empty password: %s", strings.Join(offenders, ", ")), nil
}

func (c *emptyPasswordCheck) Remediate(ctx context.Context, env *Env) error {
	offenders, err := emptyPasswordAccounts(ctx)
	if err != nil {
		return errors.Wrap(errors.ErrRemediationFailed, "cannot re-read shadow database: %v", err)
	}

	var failed []string
	for _, name := range offenders {
		res, err := system.RunCommandSudo(ctx, system.TimeoutShort, "passwd", "-l", name)
		if err != nil || !res.Success {
			failed = append(failed, name)
		}
	}
	if len(failed) > 0 {
		return errors.Wrap(errors.ErrRemediationFailed, "could not lock: %s", strings.Join(failed, ", "))
	}
	return nil
}

func (c *emptyPasswordCheck) Targets(env *Env) []string {
	return []string{"/etc/shadow"}
}

// emptyPasswordAccounts reads the shadow database through getent so NSS
// sources beyond /etc/shadow are covered. getent exits nonzero without
// any diagnostics when the caller lacks privilege.
func emptyPasswordAccounts(ctx context.Context) ([]string, error) {
	res, err := system.RunCommandSudo(ctx, system.TimeoutShort, "getent", "shadow")
	if err != nil {
		return nil, errors.Wrap(errors.ErrToolMissing, "getent: %v", err)
	}
	if !res.Success {
		return nil, errors.Wrap(errors.ErrPermissionDenied, "cannot read shadow database (run as root for account checks)")
	}
	return parseShadowEmpty(res.Stdout), nil
}

// parseShadowEmpty returns the usernames whose hash field is empty
func parseShadowEmpty(out string) []string {
	var names []string
	for _, line := range strings.Split(out, "\n") {
		parts := strings.Split(line, ":")
		if len(parts) < 2 || parts[0] == "" {
			continue
		}
		if parts[1] == "" {
			names = append(names, parts[0])
		}
	}
	return names
}

// uidZeroCheck reports any account besides root holding UID 0. There is
// no automated fix: deleting or renumbering such an account is an
// operator decision.
type uidZeroCheck struct{}

// NewUIDZeroCheck builds the duplicate-superuser probe
func NewUIDZeroCheck() Check { return &uidZeroCheck{} }

func (c *uidZeroCheck) ID() string                 { return "accounts-uid-zero" }
func (c *uidZeroCheck) Title() string              { return "Only root has UID 0" }
func (c *uidZeroCheck) Category() Category         { return CategoryAccountPolicy }
func (c *uidZeroCheck) Mutates() bool              { return false }
func (c *uidZeroCheck) RequiresConfirmation() bool { return false }

func (c *uidZeroCheck) Evaluate(ctx context.Context, env *Env) (*Finding, error) {
	out, err := readPasswdDatabase(ctx)
	if err != nil {
		return nil, err
	}
	offenders := parsePasswdUIDZero(out)
	if len(offenders) == 0 {
		return Pass("root is the only UID 0 account"), nil
	}
	return Fail("non-root UID 0 accounts: %s", strings.Join(offenders, ", ")), nil
}

func readPasswdDatabase(ctx context.Context) (string, error) {
	if res, err := system.RunCommand(ctx, system.TimeoutShort, "getent", "passwd"); err == nil && res.Success {
		return res.Stdout, nil
	}
	data, err := system.ReadHostFile("/etc/passwd")
	if err != nil {
		return "", errors.Wrap(errors.ErrFileOperation, "cannot read passwd database: %v", err)
	}
	return string(data), nil
}

// parsePasswdUIDZero returns non-root usernames with UID 0
func parsePasswdUIDZero(out string) []string {
	var names []string
	for _, line := range strings.Split(out, "\n") {
		parts := strings.Split(line, ":")
		if len(parts) < 7 {
			continue
		}
		if parts[2] == "0" && parts[0] != "root" {
			names = append(names, parts[0])
		}
	}
	return names
}
