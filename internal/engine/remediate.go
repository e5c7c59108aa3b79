package engine

import (
	"context"

	"go.uber.org/zap"

	"github.com/girste/hardhound/internal/backup"
	"github.com/girste/hardhound/internal/checks"
	"github.com/girste/hardhound/internal/util"
)

// Remediator applies fixes for failed checks. Each target file is
// backed up before its first mutation; a failed backup blocks that
// check's fix but never the rest of the run. Nothing is rolled back.
type Remediator struct {
	registry *checks.Registry
	backups  *backup.Manager
	confirm  Confirmer
	logger   *zap.Logger
}

// NewRemediator wires the registry, the run's backup manager and the
// confirmation policy.
func NewRemediator(registry *checks.Registry, backups *backup.Manager, confirm Confirmer) *Remediator {
	return &Remediator{
		registry: registry,
		backups:  backups,
		confirm:  confirm,
		logger:   util.GetLogger(),
	}
}

// Run walks the evaluation results in order and attempts a fix for
// every non-passing check that supports one. Statuses are left as
// evaluated; only outcomes change.
func (r *Remediator) Run(ctx context.Context, env *checks.Env, results []checks.Result) []checks.Result {
	out := make([]checks.Result, len(results))
	copy(out, results)

	for i := range out {
		r.remediateOne(ctx, env, &out[i])
	}
	return out
}

func (r *Remediator) remediateOne(ctx context.Context, env *checks.Env, res *checks.Result) {
	if res.Status == checks.StatusPass {
		return
	}
	c, ok := r.registry.Get(res.CheckID)
	if !ok {
		return
	}
	fixer, ok := c.(checks.Remediable)
	if !ok {
		return
	}

	if c.RequiresConfirmation() && !r.confirm.Confirm(c) {
		res.Outcome = checks.OutcomeDeclined
		r.logger.Info("Remediation declined", zap.String("check", c.ID()))
		return
	}

	if c.Mutates() {
		if err := r.backupTargets(fixer.Targets(env)); err != nil {
			res.Outcome = checks.OutcomeFailed
			res.Message += "; backup failed: " + err.Error()
			r.logger.Warn("Backup failed, skipping remediation",
				zap.String("check", c.ID()),
				zap.Error(err))
			return
		}
	}

	if err := fixer.Remediate(ctx, env); err != nil {
		res.Outcome = checks.OutcomeFailed
		res.Message += "; remediation failed: " + err.Error()
		r.logger.Warn("Remediation failed",
			zap.String("check", c.ID()),
			zap.Error(err))
		return
	}

	res.Outcome = checks.OutcomeApplied
	r.logger.Info("Remediation applied", zap.String("check", c.ID()))
}

func (r *Remediator) backupTargets(paths []string) error {
	for _, path := range paths {
		if _, err := r.backups.Snapshot(path); err != nil {
			return err
		}
	}
	return nil
}
