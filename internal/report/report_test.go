package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/girste/hardhound/internal/checks"
)

func sampleResults() []checks.Result {
	return []checks.Result{
		{
			CheckID:  "ssh-root-login",
			Title:    "SSH root login disabled",
			Category: checks.CategoryRemoteAccess,
			Status:   checks.StatusPass,
			Message:  "PermitRootLogin is 'no'",
			Outcome:  checks.OutcomeNotAttempted,
		},
		{
			CheckID:  "ssh-password-auth",
			Title:    "SSH password authentication disabled",
			Category: checks.CategoryRemoteAccess,
			Status:   checks.StatusFail,
			Message:  "PasswordAuthentication is 'yes', want 'no'",
			Outcome:  checks.OutcomeApplied,
		},
		{
			CheckID:  "firewall-active",
			Title:    "Host firewall active",
			Category: checks.CategoryPerimeter,
			Status:   checks.StatusWarn,
			Message:  "no firewall tool found (ufw, firewalld, iptables)",
			Outcome:  checks.OutcomeNotAttempted,
		},
	}
}

func sampleReport() *RunReport {
	started := time.Date(2026, 2, 3, 10, 30, 0, 0, time.UTC)
	return New("1f3b9c7e-0000-1111-2222-333344445555", "apply", "web-01", "ubuntu",
		started, 1234*time.Millisecond, sampleResults())
}

func TestFold(t *testing.T) {
	tests := []struct {
		name     string
		statuses []checks.Status
		want     checks.Status
		counts   Counts
	}{
		{"empty run passes", nil, checks.StatusPass, Counts{}},
		{"all pass", []checks.Status{checks.StatusPass, checks.StatusPass}, checks.StatusPass, Counts{Pass: 2}},
		{"warn dominates pass", []checks.Status{checks.StatusPass, checks.StatusWarn}, checks.StatusWarn, Counts{Pass: 1, Warn: 1}},
		{"fail dominates all", []checks.Status{checks.StatusWarn, checks.StatusFail, checks.StatusPass}, checks.StatusFail, Counts{Pass: 1, Warn: 1, Fail: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := make([]checks.Result, len(tt.statuses))
			for i, s := range tt.statuses {
				results[i] = checks.Result{CheckID: "c", Status: s}
			}
			counts, status := fold(results)
			if status != tt.want {
				t.Errorf("status = %s, want %s", status, tt.want)
			}
			if counts != tt.counts {
				t.Errorf("counts = %+v, want %+v", counts, tt.counts)
			}
		})
	}
}

func TestFoldCountsAppliedOutcomes(t *testing.T) {
	results := []checks.Result{
		{CheckID: "a", Status: checks.StatusFail, Outcome: checks.OutcomeApplied},
		{CheckID: "b", Status: checks.StatusFail, Outcome: checks.OutcomeDeclined},
		{CheckID: "c", Status: checks.StatusWarn, Outcome: checks.OutcomeApplied},
		{CheckID: "d", Status: checks.StatusPass, Outcome: checks.OutcomeNotAttempted},
	}
	counts, _ := fold(results)
	if counts.Applied != 2 {
		t.Errorf("Applied = %d, want 2", counts.Applied)
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		status checks.Status
		want   int
	}{
		{checks.StatusPass, 0},
		{checks.StatusWarn, 0},
		{checks.StatusFail, 1},
	}

	for _, tt := range tests {
		r := &RunReport{Status: tt.status}
		if got := r.ExitCode(); got != tt.want {
			t.Errorf("ExitCode(%s) = %d, want %d", tt.status, got, tt.want)
		}
	}
}

func TestToTextContent(t *testing.T) {
	text := sampleReport().ToText()

	for _, want := range []string{
		"web-01",
		"Mode:    apply",
		"Status:  FAIL",
		"3 total | 1 pass | 1 warn | 1 fail | 1 fixed",
		"REMOTE ACCESS",
		"PERIMETER",
		"SSH root login disabled",
		"PasswordAuthentication is 'yes', want 'no'",
		"(fix applied)",
		"1f3b9c7e-0000-1111-2222-333344445555",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("text report missing %q", want)
		}
	}
}

func TestToTextCategoryOrder(t *testing.T) {
	text := sampleReport().ToText()
	remote := strings.Index(text, "REMOTE ACCESS")
	perimeter := strings.Index(text, "PERIMETER")
	if remote == -1 || perimeter == -1 || remote > perimeter {
		t.Errorf("categories out of evaluation order: remote=%d perimeter=%d", remote, perimeter)
	}
}

func TestRenderIsPure(t *testing.T) {
	r := sampleReport()
	first := r.ToText()
	second := r.ToText()
	if first != second {
		t.Error("ToText() differs between calls on the same report")
	}
	if r.Counts.Total() != 3 || len(r.Results) != 3 {
		t.Error("rendering mutated the report")
	}
}

func TestToSummarySingleLine(t *testing.T) {
	summary := sampleReport().ToSummary()
	if strings.Contains(summary, "\n") {
		t.Errorf("summary is not a single line: %q", summary)
	}
	for _, want := range []string{"web-01", "FAIL", "1 pass, 1 warn, 1 fail, 1 fixed", "mode apply"} {
		if !strings.Contains(summary, want) {
			t.Errorf("summary %q missing %q", summary, want)
		}
	}
}

func TestJSONRoundTrip(t *testing.T) {
	r := sampleReport()
	out, err := r.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	path := filepath.Join(t.TempDir(), "report.json")
	if err := os.WriteFile(path, []byte(out), 0600); err != nil {
		t.Fatalf("write report: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.RunID != r.RunID {
		t.Errorf("RunID = %s, want %s", loaded.RunID, r.RunID)
	}
	if loaded.Status != checks.StatusFail {
		t.Errorf("Status = %s, want FAIL", loaded.Status)
	}
	if len(loaded.Results) != 3 {
		t.Errorf("results = %d, want 3", len(loaded.Results))
	}
	if loaded.Counts != r.Counts {
		t.Errorf("counts = %+v, want %+v", loaded.Counts, r.Counts)
	}
	if loaded.Results[1].Outcome != checks.OutcomeApplied {
		t.Errorf("outcome = %s, want applied", loaded.Results[1].Outcome)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Error("Load(absent) did not return an error")
	}
}

func TestLoadInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load(invalid) did not return an error")
	}
}

func TestRenderFormats(t *testing.T) {
	r := sampleReport()

	for _, format := range []string{FormatText, FormatJSON, FormatSummary} {
		out, err := r.Render(format)
		if err != nil {
			t.Errorf("Render(%s) error = %v", format, err)
		}
		if out == "" {
			t.Errorf("Render(%s) returned empty output", format)
		}
	}

	if _, err := r.Render("xml"); err == nil {
		t.Error("Render(xml) did not return an error")
	}
}
