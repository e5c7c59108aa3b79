package checks

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/girste/hardhound/internal/confedit"
	"github.com/girste/hardhound/internal/errors"
	"github.com/girste/hardhound/internal/system"
)

// paramDrift is a sysctl whose runtime value differs from the
// configured target.
type paramDrift struct {
	name    string
	current string
	want    string
}

func (d paramDrift) String() string {
	return fmt.Sprintf("%s is %s, want %s", d.name, d.current, d.want)
}

// kernelParamsCheck compares configured sysctl hardening values against
// the running kernel, reading /proc/sys directly rather than shelling
// out to sysctl.
type kernelParamsCheck struct{}

// NewKernelParamsCheck builds the sysctl hardening check
func NewKernelParamsCheck() Check { return &kernelParamsCheck{} }

func (c *kernelParamsCheck) ID() string                 { return "kernel-params" }
func (c *kernelParamsCheck) Title() string              { return "Kernel hardening parameters" }
func (c *kernelParamsCheck) Category() Category         { return CategoryKernel }
func (c *kernelParamsCheck) Mutates() bool              { return true }
func (c *kernelParamsCheck) RequiresConfirmation() bool { return false }

func (c *kernelParamsCheck) Evaluate(ctx context.Context, env *Env) (*Finding, error) {
	if len(env.Config.Kernel.Params) == 0 {
		return Pass("no kernel parameters configured"), nil
	}

	drift, missing, ok := kernelDrift(env)
	if len(drift) > 0 {
		parts := make([]string, len(drift))
		for i, d := range drift {
			parts[i] = d.String()
		}
		msg := strings.Join(parts, "; ")
		if len(missing) > 0 {
			msg += fmt.Sprintf(" (%d not present on this kernel)", len(missing))
		}
		return Fail("%s", msg), nil
	}
	if len(missing) > 0 {
		return Warn("parameters not present on this kernel: %s", strings.Join(missing, ", ")), nil
	}
	return Pass("%d parameters at required values", ok), nil
}

// kernelDrift reads every configured parameter from /proc/sys in sorted
// order. Parameters the running kernel does not expose are reported
// separately rather than counted as drift.
func kernelDrift(env *Env) (drift []paramDrift, missing []string, ok int) {
	names := make([]string, 0, len(env.Config.Kernel.Params))
	for name := range env.Config.Kernel.Params {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		want := env.Config.Kernel.Params[name]
		data, err := os.ReadFile(system.HostPath(sysctlPath(name)))
		if err != nil {
			missing = append(missing, name)
			continue
		}
		current := strings.TrimSpace(string(data))
		if current == want {
			ok++
		} else {
			drift = append(drift, paramDrift{name: name, current: current, want: want})
		}
	}
	return drift, missing, ok
}

// sysctlPath converts dot notation to the /proc/sys file path
func sysctlPath(param string) string {
	return "/proc/sys/" + strings.ReplaceAll(param, ".", "/")
}

// Remediate applies drifted values to the running kernel and persists
// the full configured set to a sysctl.d drop-in so they survive reboot.
func (c *kernelParamsCheck) Remediate(ctx context.Context, env *Env) error {
	drift, _, _ := kernelDrift(env)

	var failed []string
	for _, d := range drift {
		res, err := system.RunCommandSudo(ctx, system.TimeoutShort, "sysctl", "-w", d.name+"="+d.want)
		if err != nil || !res.Success {
			failed = append(failed, d.name)
		}
	}

	if err := c.persist(env); err != nil {
		return err
	}
	if len(failed) > 0 {
		return errors.Wrap(errors.ErrRemediationFailed, "sysctl -w failed for: %s", strings.Join(failed, ", "))
	}
	return nil
}

func (c *kernelParamsCheck) persist(env *Env) error {
	path := system.HostPath(env.Config.Kernel.PersistPath)
	f, err := confedit.LoadOrCreate(path, confedit.EqualsSeparated, 0644)
	if err != nil {
		return errors.Wrap(errors.ErrFileOperation, "cannot open %s: %v", path, err)
	}

	names := make([]string, 0, len(env.Config.Kernel.Params))
	for name := range env.Config.Kernel.Params {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		f.Set(name, env.Config.Kernel.Params[name])
	}

	if err := f.Save(); err != nil {
		return errors.Wrap(errors.ErrFileOperation, "cannot write %s: %v", path, err)
	}
	return nil
}

func (c *kernelParamsCheck) Targets(env *Env) []string {
	return []string{system.HostPath(env.Config.Kernel.PersistPath)}
}
