// Package commands implements the hardhound CLI commands. Flag parsing
// is by hand: every command accepts --flag=value and --flag value.
package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/girste/hardhound/internal/backup"
	"github.com/girste/hardhound/internal/checks"
	"github.com/girste/hardhound/internal/config"
	"github.com/girste/hardhound/internal/engine"
	"github.com/girste/hardhound/internal/log"
	"github.com/girste/hardhound/internal/notify"
	"github.com/girste/hardhound/internal/report"
	"github.com/girste/hardhound/internal/system"
	"github.com/girste/hardhound/internal/util"
)

// executeRun evaluates the catalog and, in apply mode, remediates
// non-passing checks. It returns the run report and, for apply runs
// that took snapshots, the backup manifest path.
func executeRun(ctx context.Context, mode engine.Mode, cfg *config.Config, selection []string, confirm engine.Confirmer) (*report.RunReport, string) {
	runID := uuid.NewString()
	started := time.Now()

	env := checks.NewEnv(ctx, cfg)
	osInfo := system.GetOSInfo(ctx)
	registry := checks.DefaultRegistry()
	log.Debugf("run %s starting in %s mode (distro %s, kernel %s, root %v)", runID, mode, env.Distro, osInfo.Kernel, env.Root)
	if system.IsInContainer() {
		log.Debugf("containerized run, reading the host filesystem under /host")
	}

	results := engine.NewEvaluator(registry, selection).Run(ctx, env)

	manifestPath := ""
	if mode == engine.ModeApply {
		manager := backup.NewManager(runID, cfg.Backup.Dir)
		results = engine.NewRemediator(registry, manager, confirm).Run(ctx, env, results)

		path, err := manager.WriteManifest(manifestDir(cfg))
		if err != nil {
			log.Errorf("could not write backup manifest: %v", err)
		}
		manifestPath = path
	}

	return report.New(runID, string(mode), osInfo.Hostname, env.Distro, started, time.Since(started), results), manifestPath
}

// manifestDir resolves where run manifests live. Snapshot copies sit
// beside their source files unless backup.dir centralizes them; the
// manifest always lands here so 'hardhound backups' can find it.
func manifestDir(cfg *config.Config) string {
	if cfg.Backup.Dir != "" {
		return cfg.Backup.Dir
	}
	return filepath.Join(util.GetStateDir(), "backups")
}

// emitReport renders the report to stdout or --output. The returned
// code is the run's exit code, or 1 when rendering or writing failed.
func emitReport(rep *report.RunReport, format, outputFile string, quiet bool) int {
	out, err := rep.Render(format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}

	if outputFile != "" {
		if err := os.WriteFile(outputFile, []byte(out), 0600); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write output file: %v\n", err)
			return 1
		}
		if !quiet {
			fmt.Fprintf(os.Stderr, "Report written to: %s\n", outputFile)
		}
	} else if !quiet {
		fmt.Println(out)
	}

	return rep.ExitCode()
}

// sendNotifications posts the run summary to the configured webhooks.
// force bypasses the enabled/threshold gates (--webhook). Failures are
// logged and never change the run's exit code.
func sendNotifications(ctx context.Context, cfg *config.Config, rep *report.RunReport, force bool) {
	if !cfg.Notifications.Enabled && !force {
		return
	}

	notifier := notify.NewNotifier(&cfg.Notifications)
	hasIssues := rep.Counts.Warn+rep.Counts.Fail > 0
	if !force && !notifier.ShouldNotify(string(rep.Status), hasIssues) {
		return
	}

	result := notifier.Send(ctx, alertFromReport(rep))
	if len(result.Sent) > 0 {
		log.Infof("notifications sent to: %s", strings.Join(result.Sent, ", "))
	}
	for _, f := range result.Failed {
		log.Errorf("notification to %s failed: %s", f.Provider, f.Error)
	}
}

// alertFromReport flattens the run into a webhook alert, listing only
// non-passing results.
func alertFromReport(rep *report.RunReport) *notify.Alert {
	var findings []notify.Finding
	for _, res := range rep.Results {
		if res.Status == checks.StatusPass {
			continue
		}
		findings = append(findings, notify.Finding{
			CheckID: res.CheckID,
			Status:  string(res.Status),
			Message: res.Message,
			Outcome: outcomeLabel(res.Outcome),
		})
	}

	return &notify.Alert{
		Timestamp: rep.StartedAt,
		Hostname:  rep.Hostname,
		RunID:     rep.RunID,
		Mode:      rep.Mode,
		Status:    string(rep.Status),
		Summary:   rep.ToSummary(),
		Pass:      rep.Counts.Pass,
		Warn:      rep.Counts.Warn,
		Fail:      rep.Counts.Fail,
		Applied:   rep.Counts.Applied,
		Findings:  findings,
	}
}

func outcomeLabel(o checks.Outcome) string {
	if o == checks.OutcomeNotAttempted {
		return ""
	}
	return string(o)
}

// splitChecks parses the --checks=a,b,c selection
func splitChecks(raw string) []string {
	var ids []string
	for _, part := range strings.Split(raw, ",") {
		if id := strings.TrimSpace(part); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}
