package checks

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/girste/hardhound/internal/config"
	"github.com/girste/hardhound/internal/errors"
)

func sshTestEnv(t *testing.T, content string) *Env {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sshd_config")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("write sshd_config: %v", err)
	}
	cfg := config.Default()
	cfg.SSH.ConfigPath = path
	return &Env{Config: cfg}
}

func TestSSHRootLoginEvaluate(t *testing.T) {
	ctx := context.Background()
	check := NewSSHRootLoginCheck()

	tests := []struct {
		name    string
		content string
		status  Status
		part    string
	}{
		{
			name:    "disabled passes",
			content: "Port 22\nPermitRootLogin no\n",
			status:  StatusPass,
			part:    "'no'",
		},
		{
			name:    "enabled fails",
			content: "PermitRootLogin yes\n",
			status:  StatusFail,
			part:    "'yes'",
		},
		{
			name:    "prohibit-password still fails",
			content: "PermitRootLogin prohibit-password\n",
			status:  StatusFail,
			part:    "'prohibit-password'",
		},
		{
			name:    "commented directive counts as unset",
			content: "#PermitRootLogin no\n",
			status:  StatusFail,
			part:    "not set",
		},
		{
			name:    "missing directive fails",
			content: "Port 22\n",
			status:  StatusFail,
			part:    "not set",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := sshTestEnv(t, tt.content)
			finding, err := check.Evaluate(ctx, env)
			if err != nil {
				t.Fatalf("Evaluate() error = %v", err)
			}
			if finding.Status != tt.status {
				t.Errorf("status = %s, want %s", finding.Status, tt.status)
			}
			if !strings.Contains(finding.Message, tt.part) {
				t.Errorf("message %q does not contain %q", finding.Message, tt.part)
			}
		})
	}
}

func TestSSHEvaluateMissingConfig(t *testing.T) {
	cfg := config.Default()
	cfg.SSH.ConfigPath = filepath.Join(t.TempDir(), "absent")
	env := &Env{Config: cfg}

	_, err := NewSSHRootLoginCheck().Evaluate(context.Background(), env)
	if !errors.Is(err, errors.ErrToolMissing) {
		t.Errorf("Evaluate() error = %v, want ErrToolMissing", err)
	}
}

func TestSSHPasswordAuthEvaluate(t *testing.T) {
	ctx := context.Background()
	check := NewSSHPasswordAuthCheck()

	env := sshTestEnv(t, "PasswordAuthentication no\nPermitRootLogin yes\n")
	finding, err := check.Evaluate(ctx, env)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if finding.Status != StatusPass {
		t.Errorf("status = %s, want PASS", finding.Status)
	}
}

func TestSSHDirectiveValueCaseInsensitive(t *testing.T) {
	env := sshTestEnv(t, "permitemptypasswords NO\n")
	finding, err := NewSSHEmptyPasswordsCheck().Evaluate(context.Background(), env)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if finding.Status != StatusPass {
		t.Errorf("status = %s, want PASS", finding.Status)
	}
}

func TestSSHCheckMetadata(t *testing.T) {
	tests := []struct {
		check   Check
		id      string
		confirm bool
	}{
		{NewSSHRootLoginCheck(), "ssh-root-login", false},
		{NewSSHPasswordAuthCheck(), "ssh-password-auth", true},
		{NewSSHEmptyPasswordsCheck(), "ssh-empty-passwords", false},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			if got := tt.check.ID(); got != tt.id {
				t.Errorf("ID() = %s, want %s", got, tt.id)
			}
			if got := tt.check.Category(); got != CategoryRemoteAccess {
				t.Errorf("Category() = %s, want %s", got, CategoryRemoteAccess)
			}
			if got := tt.check.RequiresConfirmation(); got != tt.confirm {
				t.Errorf("RequiresConfirmation() = %v, want %v", got, tt.confirm)
			}
			if !tt.check.Mutates() {
				t.Error("Mutates() = false, want true")
			}
		})
	}
}
