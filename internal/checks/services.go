package checks

import (
	"context"
	"strings"

	"github.com/girste/hardhound/internal/errors"
	"github.com/girste/hardhound/internal/system"
)

// unnecessaryServicesCheck flags configured legacy or high-exposure
// units that are running or set to start at boot.
type unnecessaryServicesCheck struct{}

// NewUnnecessaryServicesCheck builds the service exposure check.
// Stopping a unit interrupts whatever it serves, so remediation asks
// for confirmation.
func NewUnnecessaryServicesCheck() Check { return &unnecessaryServicesCheck{} }

func (c *unnecessaryServicesCheck) ID() string                 { return "unnecessary-services" }
func (c *unnecessaryServicesCheck) Title() string              { return "Unnecessary services disabled" }
func (c *unnecessaryServicesCheck) Category() Category         { return CategoryServices }
func (c *unnecessaryServicesCheck) Mutates() bool              { return true }
func (c *unnecessaryServicesCheck) RequiresConfirmation() bool { return true }

func (c *unnecessaryServicesCheck) Evaluate(ctx context.Context, env *Env) (*Finding, error) {
	if !system.CommandExists("systemctl") {
		return nil, errors.Wrap(errors.ErrToolMissing, "systemctl not found")
	}
	units := env.Config.Services.Unnecessary
	if len(units) == 0 {
		return Pass("no services configured for this check"), nil
	}

	exposed := c.exposedUnits(ctx, units)
	if len(exposed) == 0 {
		return Pass("none of the %d flagged services are active or enabled", len(units)), nil
	}
	return Fail("services active or enabled: %s", strings.Join(exposed, ", ")), nil
}

// exposedUnits returns the configured units that are active now or
// enabled for the next boot, preserving configuration order.
func (c *unnecessaryServicesCheck) exposedUnits(ctx context.Context, units []string) []string {
	var exposed []string
	for _, unit := range units {
		if system.IsServiceActive(ctx, unit) || system.IsServiceEnabled(ctx, unit) {
			exposed = append(exposed, unit)
		}
	}
	return exposed
}

func (c *unnecessaryServicesCheck) Remediate(ctx context.Context, env *Env) error {
	var failed []string
	for _, unit := range c.exposedUnits(ctx, env.Config.Services.Unnecessary) {
		res, err := system.RunCommandSudo(ctx, system.TimeoutMedium, "systemctl", "disable", "--now", unit)
		if err != nil || !res.Success {
			failed = append(failed, unit)
		}
	}
	if len(failed) > 0 {
		return errors.Wrap(errors.ErrRemediationFailed, "could not disable: %s", strings.Join(failed, ", "))
	}
	return nil
}

func (c *unnecessaryServicesCheck) Targets(env *Env) []string { return nil }
