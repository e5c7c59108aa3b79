// Package engine evaluates the check catalog and drives remediation.
// Checks run strictly in registry order, one at a time, so a fix
// applied by one check is visible to the next.
package engine

import (
	"context"

	"go.uber.org/zap"

	"github.com/girste/hardhound/internal/checks"
	"github.com/girste/hardhound/internal/errors"
	"github.com/girste/hardhound/internal/util"
)

// Mode selects whether a run only reports or also repairs
type Mode string

const (
	ModeAudit Mode = "audit"
	ModeApply Mode = "apply"
)

// Evaluator runs probes and never touches system state
type Evaluator struct {
	registry *checks.Registry
	selected map[string]bool
	logger   *zap.Logger
}

// NewEvaluator builds an evaluator over the registry. A non-empty
// selection restricts the run to those check ids; configuration
// toggles apply either way.
func NewEvaluator(registry *checks.Registry, selection []string) *Evaluator {
	var selected map[string]bool
	if len(selection) > 0 {
		selected = make(map[string]bool, len(selection))
		for _, id := range selection {
			selected[id] = true
		}
	}
	return &Evaluator{
		registry: registry,
		selected: selected,
		logger:   util.GetLogger(),
	}
}

// Run evaluates every enabled check in registry order. A probe error
// becomes a result instead of aborting the run.
func (e *Evaluator) Run(ctx context.Context, env *checks.Env) []checks.Result {
	var results []checks.Result
	for _, c := range e.registry.All() {
		if !e.enabled(c.ID(), env) {
			continue
		}
		results = append(results, e.evaluateOne(ctx, env, c))
	}
	return results
}

func (e *Evaluator) enabled(id string, env *checks.Env) bool {
	if !env.Config.IsCheckEnabled(id) {
		return false
	}
	return e.selected == nil || e.selected[id]
}

func (e *Evaluator) evaluateOne(ctx context.Context, env *checks.Env, c checks.Check) checks.Result {
	result := checks.Result{
		CheckID:  c.ID(),
		Title:    c.Title(),
		Category: c.Category(),
		Outcome:  checks.OutcomeNotAttempted,
	}

	finding, err := c.Evaluate(ctx, env)
	switch {
	case err != nil:
		result.Status, result.Message = classifyProbeError(err)
		e.logger.Warn("Check probe did not complete",
			zap.String("check", c.ID()),
			zap.Error(err))
	case finding == nil:
		result.Status = checks.StatusWarn
		result.Message = "check returned no finding"
		e.logger.Warn("Check returned no finding", zap.String("check", c.ID()))
	default:
		result.Status = finding.Status
		result.Message = finding.Message
	}
	return result
}

// classifyProbeError maps probe errors onto statuses: a missing tool or
// insufficient privilege degrades to WARN, an unparseable configuration
// source is itself a failed check.
func classifyProbeError(err error) (checks.Status, string) {
	switch {
	case errors.Is(err, errors.ErrParseFailure):
		return checks.StatusFail, err.Error()
	case errors.Is(err, errors.ErrToolMissing), errors.Is(err, errors.ErrPermissionDenied):
		return checks.StatusWarn, err.Error()
	default:
		return checks.StatusWarn, err.Error()
	}
}
