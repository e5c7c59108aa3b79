package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/girste/hardhound/internal/backup"
	"github.com/girste/hardhound/internal/checks"
	"github.com/girste/hardhound/internal/config"
	"github.com/girste/hardhound/internal/errors"
)

type fakeCheck struct {
	id      string
	finding *checks.Finding
	err     error
	mutates bool
	confirm bool
}

func (f *fakeCheck) ID() string                 { return f.id }
func (f *fakeCheck) Title() string              { return "fake " + f.id }
func (f *fakeCheck) Category() checks.Category  { return checks.CategoryKernel }
func (f *fakeCheck) Mutates() bool              { return f.mutates }
func (f *fakeCheck) RequiresConfirmation() bool { return f.confirm }
func (f *fakeCheck) Evaluate(ctx context.Context, env *checks.Env) (*checks.Finding, error) {
	return f.finding, f.err
}

type fakeFixer struct {
	fakeCheck
	targets      []string
	remediateErr error
	applyContent string
	calls        *[]string
}

func (f *fakeFixer) Remediate(ctx context.Context, env *checks.Env) error {
	if f.calls != nil {
		*f.calls = append(*f.calls, f.id)
	}
	if f.applyContent != "" {
		for _, target := range f.targets {
			if err := os.WriteFile(target, []byte(f.applyContent), 0600); err != nil {
				return err
			}
		}
	}
	return f.remediateErr
}

func (f *fakeFixer) Targets(env *checks.Env) []string { return f.targets }

func testEnv() *checks.Env {
	return &checks.Env{Config: config.Default()}
}

func registryOf(t *testing.T, cs ...checks.Check) *checks.Registry {
	t.Helper()
	r := checks.NewRegistry()
	for _, c := range cs {
		if err := r.Register(c); err != nil {
			t.Fatalf("Register(%s) error = %v", c.ID(), err)
		}
	}
	return r
}

func resultIDs(results []checks.Result) []string {
	ids := make([]string, len(results))
	for i, r := range results {
		ids[i] = r.CheckID
	}
	return ids
}

func TestEvaluatorRunsInRegistryOrder(t *testing.T) {
	reg := registryOf(t,
		&fakeCheck{id: "charlie", finding: checks.Pass("ok")},
		&fakeCheck{id: "alpha", finding: checks.Pass("ok")},
		&fakeCheck{id: "bravo", finding: checks.Pass("ok")},
	)

	results := NewEvaluator(reg, nil).Run(context.Background(), testEnv())

	want := []string{"charlie", "alpha", "bravo"}
	got := resultIDs(results)
	if len(got) != len(want) {
		t.Fatalf("results = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("results[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestEvaluatorFaultIsolation(t *testing.T) {
	reg := registryOf(t,
		&fakeCheck{id: "alpha", finding: checks.Pass("ok")},
		&fakeCheck{id: "bravo", err: errors.New("probe exploded")},
		&fakeCheck{id: "charlie", finding: checks.Fail("bad")},
	)

	results := NewEvaluator(reg, nil).Run(context.Background(), testEnv())
	if len(results) != 3 {
		t.Fatalf("results = %v, faulty check aborted the run", resultIDs(results))
	}
	if results[1].Status != checks.StatusWarn {
		t.Errorf("faulty check status = %s, want WARN", results[1].Status)
	}
	if results[2].Status != checks.StatusFail {
		t.Errorf("check after fault = %s, want FAIL", results[2].Status)
	}
}

func TestEvaluatorProbeErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want checks.Status
	}{
		{"missing tool warns", errors.Wrap(errors.ErrToolMissing, "no ufw"), checks.StatusWarn},
		{"permission denied warns", errors.Wrap(errors.ErrPermissionDenied, "shadow"), checks.StatusWarn},
		{"parse anomaly fails", errors.Wrap(errors.ErrParseFailure, "garbled"), checks.StatusFail},
		{"unknown error warns", errors.New("boom"), checks.StatusWarn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := registryOf(t, &fakeCheck{id: "alpha", err: tt.err})
			results := NewEvaluator(reg, nil).Run(context.Background(), testEnv())
			if len(results) != 1 {
				t.Fatalf("results = %v", results)
			}
			if results[0].Status != tt.want {
				t.Errorf("status = %s, want %s", results[0].Status, tt.want)
			}
			if results[0].Message == "" {
				t.Error("error result has empty message")
			}
		})
	}
}

func TestEvaluatorSkipsDisabledChecks(t *testing.T) {
	reg := registryOf(t,
		&fakeCheck{id: "alpha", finding: checks.Pass("ok")},
		&fakeCheck{id: "bravo", finding: checks.Pass("ok")},
	)
	env := testEnv()
	env.Config.Checks["bravo"] = false

	results := NewEvaluator(reg, nil).Run(context.Background(), env)
	if got := resultIDs(results); len(got) != 1 || got[0] != "alpha" {
		t.Errorf("results = %v, want [alpha]", got)
	}
}

func TestEvaluatorSelection(t *testing.T) {
	reg := registryOf(t,
		&fakeCheck{id: "alpha", finding: checks.Pass("ok")},
		&fakeCheck{id: "bravo", finding: checks.Pass("ok")},
		&fakeCheck{id: "charlie", finding: checks.Pass("ok")},
	)

	results := NewEvaluator(reg, []string{"charlie", "alpha"}).Run(context.Background(), testEnv())
	if got := resultIDs(results); len(got) != 2 || got[0] != "alpha" || got[1] != "charlie" {
		t.Errorf("results = %v, want [alpha charlie] in registry order", got)
	}
}

func TestEvaluatorNilFinding(t *testing.T) {
	reg := registryOf(t, &fakeCheck{id: "alpha"})
	results := NewEvaluator(reg, nil).Run(context.Background(), testEnv())
	if results[0].Status != checks.StatusWarn {
		t.Errorf("nil finding status = %s, want WARN", results[0].Status)
	}
}

func TestEvaluatorLeavesOutcomeNotAttempted(t *testing.T) {
	reg := registryOf(t, &fakeCheck{id: "alpha", finding: checks.Fail("bad")})
	results := NewEvaluator(reg, nil).Run(context.Background(), testEnv())
	if results[0].Outcome != checks.OutcomeNotAttempted {
		t.Errorf("outcome = %s, want %s", results[0].Outcome, checks.OutcomeNotAttempted)
	}
}

func failResult(id string) checks.Result {
	return checks.Result{
		CheckID: id,
		Status:  checks.StatusFail,
		Message: "bad",
		Outcome: checks.OutcomeNotAttempted,
	}
}

func TestRemediatorAppliesFix(t *testing.T) {
	var calls []string
	fixer := &fakeFixer{fakeCheck: fakeCheck{id: "alpha", mutates: true}, calls: &calls}
	reg := registryOf(t, fixer)
	rem := NewRemediator(reg, backup.NewManager("run", ""), StaticConfirmer{Decision: true})

	out := rem.Run(context.Background(), testEnv(), []checks.Result{failResult("alpha")})

	if out[0].Outcome != checks.OutcomeApplied {
		t.Errorf("outcome = %s, want applied", out[0].Outcome)
	}
	if out[0].Status != checks.StatusFail {
		t.Errorf("status = %s, remediation must not rewrite evaluation status", out[0].Status)
	}
	if len(calls) != 1 {
		t.Errorf("remediate calls = %v, want one", calls)
	}
}

func TestRemediatorSkipsPassingResults(t *testing.T) {
	var calls []string
	fixer := &fakeFixer{fakeCheck: fakeCheck{id: "alpha", mutates: true}, calls: &calls}
	reg := registryOf(t, fixer)
	rem := NewRemediator(reg, backup.NewManager("run", ""), StaticConfirmer{Decision: true})

	results := []checks.Result{
		{CheckID: "alpha", Status: checks.StatusPass, Outcome: checks.OutcomeNotAttempted},
	}
	out := rem.Run(context.Background(), testEnv(), results)

	if out[0].Outcome != checks.OutcomeNotAttempted {
		t.Errorf("outcome = %s, want not_attempted", out[0].Outcome)
	}
	if len(calls) != 0 {
		t.Errorf("remediate was called for a passing result: %v", calls)
	}
}

func TestRemediatorFixesWarnResults(t *testing.T) {
	var calls []string
	fixer := &fakeFixer{fakeCheck: fakeCheck{id: "alpha", mutates: true}, calls: &calls}
	reg := registryOf(t, fixer)
	rem := NewRemediator(reg, backup.NewManager("run", ""), StaticConfirmer{Decision: true})

	results := []checks.Result{
		{CheckID: "alpha", Status: checks.StatusWarn, Outcome: checks.OutcomeNotAttempted},
	}
	out := rem.Run(context.Background(), testEnv(), results)

	if out[0].Outcome != checks.OutcomeApplied {
		t.Errorf("outcome = %s, warn results must be fixed too", out[0].Outcome)
	}
	if out[0].Status != checks.StatusWarn {
		t.Errorf("status = %s, remediation must not rewrite evaluation status", out[0].Status)
	}
	if len(calls) != 1 {
		t.Errorf("remediate calls = %v, want one", calls)
	}
}

func TestRemediatorSkipsNonRemediable(t *testing.T) {
	reg := registryOf(t, &fakeCheck{id: "alpha", mutates: false})
	rem := NewRemediator(reg, backup.NewManager("run", ""), StaticConfirmer{Decision: true})

	out := rem.Run(context.Background(), testEnv(), []checks.Result{failResult("alpha")})
	if out[0].Outcome != checks.OutcomeNotAttempted {
		t.Errorf("outcome = %s, want not_attempted", out[0].Outcome)
	}
}

func TestRemediatorHonorsDecline(t *testing.T) {
	var calls []string
	fixer := &fakeFixer{fakeCheck: fakeCheck{id: "alpha", mutates: true, confirm: true}, calls: &calls}
	reg := registryOf(t, fixer)
	rem := NewRemediator(reg, backup.NewManager("run", ""), StaticConfirmer{Decision: false})

	out := rem.Run(context.Background(), testEnv(), []checks.Result{failResult("alpha")})

	if out[0].Outcome != checks.OutcomeDeclined {
		t.Errorf("outcome = %s, want declined", out[0].Outcome)
	}
	if len(calls) != 0 {
		t.Errorf("declined fix still ran: %v", calls)
	}
}

func TestRemediatorConfirmationOnlyWhenRequired(t *testing.T) {
	var calls []string
	// confirm=false must apply even with a denying confirmer
	fixer := &fakeFixer{fakeCheck: fakeCheck{id: "alpha", mutates: true, confirm: false}, calls: &calls}
	reg := registryOf(t, fixer)
	rem := NewRemediator(reg, backup.NewManager("run", ""), StaticConfirmer{Decision: false})

	out := rem.Run(context.Background(), testEnv(), []checks.Result{failResult("alpha")})
	if out[0].Outcome != checks.OutcomeApplied {
		t.Errorf("outcome = %s, want applied without prompting", out[0].Outcome)
	}
}

func TestRemediatorBacksUpBeforeMutating(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "sshd_config")
	if err := os.WriteFile(target, []byte("pre\n"), 0600); err != nil {
		t.Fatalf("write target: %v", err)
	}

	fixer := &fakeFixer{
		fakeCheck:    fakeCheck{id: "alpha", mutates: true},
		targets:      []string{target},
		applyContent: "post\n",
	}
	reg := registryOf(t, fixer)
	mgr := backup.NewManager("run", "")
	rem := NewRemediator(reg, mgr, StaticConfirmer{Decision: true})

	out := rem.Run(context.Background(), testEnv(), []checks.Result{failResult("alpha")})
	if out[0].Outcome != checks.OutcomeApplied {
		t.Fatalf("outcome = %s, want applied", out[0].Outcome)
	}

	entries := mgr.Entries()
	if len(entries) != 1 {
		t.Fatalf("backup entries = %d, want 1", len(entries))
	}
	saved, err := os.ReadFile(entries[0].BackupPath)
	if err != nil {
		t.Fatalf("read backup: %v", err)
	}
	if string(saved) != "pre\n" {
		t.Errorf("backup content = %q, want the pre-mutation state", saved)
	}
	current, _ := os.ReadFile(target)
	if string(current) != "post\n" {
		t.Errorf("target content = %q, want the remediated state", current)
	}
}

func TestRemediatorBackupFailureBlocksFix(t *testing.T) {
	var calls []string
	// a directory target makes the snapshot read fail
	fixer := &fakeFixer{
		fakeCheck: fakeCheck{id: "alpha", mutates: true},
		targets:   []string{t.TempDir()},
		calls:     &calls,
	}
	reg := registryOf(t, fixer)
	rem := NewRemediator(reg, backup.NewManager("run", ""), StaticConfirmer{Decision: true})

	out := rem.Run(context.Background(), testEnv(), []checks.Result{failResult("alpha")})

	if out[0].Outcome != checks.OutcomeFailed {
		t.Errorf("outcome = %s, want failed", out[0].Outcome)
	}
	if len(calls) != 0 {
		t.Errorf("remediation ran despite backup failure: %v", calls)
	}
}

func TestRemediatorContinuesAfterFailure(t *testing.T) {
	var calls []string
	broken := &fakeFixer{
		fakeCheck:    fakeCheck{id: "alpha", mutates: true},
		remediateErr: errors.New("no such unit"),
		calls:        &calls,
	}
	working := &fakeFixer{fakeCheck: fakeCheck{id: "bravo", mutates: true}, calls: &calls}
	reg := registryOf(t, broken, working)
	rem := NewRemediator(reg, backup.NewManager("run", ""), StaticConfirmer{Decision: true})

	out := rem.Run(context.Background(), testEnv(), []checks.Result{failResult("alpha"), failResult("bravo")})

	if out[0].Outcome != checks.OutcomeFailed {
		t.Errorf("first outcome = %s, want failed", out[0].Outcome)
	}
	if out[1].Outcome != checks.OutcomeApplied {
		t.Errorf("second outcome = %s, want applied after earlier failure", out[1].Outcome)
	}
	if len(calls) != 2 {
		t.Errorf("remediate calls = %v, want both", calls)
	}
}
