// Package report folds check results into a run report and renders it
// as text, JSON or a one-line summary.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/girste/hardhound/internal/checks"
)

// Output formats
const (
	FormatJSON    = "json"
	FormatText    = "text"
	FormatSummary = "summary"
)

const separatorHeavy = "═══════════════════════════════════════════════════════════════"
const separatorLight = "───────────────────────────────────────────────────────────────"

// Counts tallies results per status, plus the fixes that went through
type Counts struct {
	Pass    int `json:"pass"`
	Warn    int `json:"warn"`
	Fail    int `json:"fail"`
	Applied int `json:"applied"`
}

// Total returns the number of evaluated checks
func (c Counts) Total() int {
	return c.Pass + c.Warn + c.Fail
}

// RunReport is the complete outcome of one audit or apply run
type RunReport struct {
	RunID     string          `json:"run_id"`
	Hostname  string          `json:"hostname"`
	Mode      string          `json:"mode"`
	Distro    string          `json:"distro"`
	StartedAt string          `json:"started_at"`
	Duration  string          `json:"duration"`
	Results   []checks.Result `json:"results"`
	Counts    Counts          `json:"counts"`
	Status    checks.Status   `json:"status"`
}

// New assembles a report, folding counts and the overall status from
// the results. A run with no results is a PASS.
func New(runID, mode, hostname, distro string, startedAt time.Time, duration time.Duration, results []checks.Result) *RunReport {
	counts, status := fold(results)
	return &RunReport{
		RunID:     runID,
		Hostname:  hostname,
		Mode:      mode,
		Distro:    distro,
		StartedAt: startedAt.UTC().Format(time.RFC3339),
		Duration:  duration.Round(time.Millisecond).String(),
		Results:   results,
		Counts:    counts,
		Status:    status,
	}
}

// fold walks the results once, accumulating counters and keeping the
// worst status seen.
func fold(results []checks.Result) (Counts, checks.Status) {
	counts := Counts{}
	status := checks.StatusPass
	for _, res := range results {
		switch res.Status {
		case checks.StatusPass:
			counts.Pass++
		case checks.StatusWarn:
			counts.Warn++
		case checks.StatusFail:
			counts.Fail++
		}
		if res.Outcome == checks.OutcomeApplied {
			counts.Applied++
		}
		status = checks.Worse(status, res.Status)
	}
	return counts, status
}

// ExitCode maps the run status to the process exit code: only FAIL is
// nonzero.
func (r *RunReport) ExitCode() int {
	if r.Status == checks.StatusFail {
		return 1
	}
	return 0
}

// Render returns the report in the requested format
func (r *RunReport) Render(format string) (string, error) {
	switch format {
	case FormatJSON:
		return r.ToJSON()
	case FormatText:
		return r.ToText(), nil
	case FormatSummary:
		return r.ToSummary(), nil
	default:
		return "", fmt.Errorf("unknown format %q (expected text, json or summary)", format)
	}
}

// ToJSON renders the full report as indented JSON
func (r *RunReport) ToJSON() (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ToText renders the human report, grouping checks by category in
// evaluation order.
func (r *RunReport) ToText() string {
	var sb strings.Builder

	sb.WriteString("\n")
	sb.WriteString(separatorHeavy + "\n")
	sb.WriteString(fmt.Sprintf("  %s  HARDENING REPORT  -  %s\n", statusIcon(r.Status), r.Hostname))
	sb.WriteString(separatorHeavy + "\n\n")

	sb.WriteString(fmt.Sprintf("  Mode:    %s\n", r.Mode))
	sb.WriteString(fmt.Sprintf("  Status:  %s\n", r.Status))
	checksLine := fmt.Sprintf("  Checks:  %d total | %d pass | %d warn | %d fail",
		r.Counts.Total(), r.Counts.Pass, r.Counts.Warn, r.Counts.Fail)
	if r.Counts.Applied > 0 {
		checksLine += fmt.Sprintf(" | %d fixed", r.Counts.Applied)
	}
	sb.WriteString(checksLine + "\n")
	sb.WriteString(fmt.Sprintf("  Time:    %s (%s)\n", r.StartedAt, r.Duration))
	sb.WriteString(fmt.Sprintf("  Run ID:  %s\n\n", r.RunID))

	for _, group := range groupByCategory(r.Results) {
		sb.WriteString(separatorLight + "\n")
		sb.WriteString(fmt.Sprintf("  %s\n", categoryLabel(group.category)))
		sb.WriteString(separatorLight + "\n")
		for _, res := range group.results {
			sb.WriteString(fmt.Sprintf("  %s [%s] %s: %s%s\n",
				statusIcon(res.Status), res.Status, res.Title, res.Message, outcomeNote(res.Outcome)))
		}
		sb.WriteString("\n")
	}

	sb.WriteString(separatorHeavy + "\n")
	return sb.String()
}

// ToSummary renders a single status line
func (r *RunReport) ToSummary() string {
	line := fmt.Sprintf("%s %s | %s | %d checks: %d pass, %d warn, %d fail",
		statusIcon(r.Status),
		r.Hostname,
		r.Status,
		r.Counts.Total(),
		r.Counts.Pass,
		r.Counts.Warn,
		r.Counts.Fail,
	)
	if r.Counts.Applied > 0 {
		line += fmt.Sprintf(", %d fixed", r.Counts.Applied)
	}
	return line + " | mode " + r.Mode
}

// Load reads a previously saved JSON report
func Load(path string) (*RunReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read report %s: %w", path, err)
	}
	var r RunReport
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("cannot parse report %s: %w", path, err)
	}
	return &r, nil
}

type categoryGroup struct {
	category checks.Category
	results  []checks.Result
}

// groupByCategory keeps categories in first-seen order and results in
// evaluation order within each.
func groupByCategory(results []checks.Result) []categoryGroup {
	var groups []categoryGroup
	index := make(map[checks.Category]int)
	for _, res := range results {
		i, ok := index[res.Category]
		if !ok {
			i = len(groups)
			index[res.Category] = i
			groups = append(groups, categoryGroup{category: res.Category})
		}
		groups[i].results = append(groups[i].results, res)
	}
	return groups
}

func categoryLabel(c checks.Category) string {
	return strings.ToUpper(strings.ReplaceAll(string(c), "_", " "))
}

func statusIcon(s checks.Status) string {
	switch s {
	case checks.StatusFail:
		return "❌"
	case checks.StatusWarn:
		return "⚠️"
	default:
		return "✅"
	}
}

func outcomeNote(o checks.Outcome) string {
	switch o {
	case checks.OutcomeApplied:
		return " (fix applied)"
	case checks.OutcomeDeclined:
		return " (fix declined)"
	case checks.OutcomeFailed:
		return " (fix failed)"
	default:
		return ""
	}
}
