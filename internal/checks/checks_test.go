package checks

import (
	"context"
	"testing"
)

type stubCheck struct {
	id      string
	finding *Finding
	err     error
}

func (s *stubCheck) ID() string                 { return s.id }
func (s *stubCheck) Title() string              { return "stub " + s.id }
func (s *stubCheck) Category() Category         { return CategoryKernel }
func (s *stubCheck) Mutates() bool              { return false }
func (s *stubCheck) RequiresConfirmation() bool { return false }
func (s *stubCheck) Evaluate(ctx context.Context, env *Env) (*Finding, error) {
	return s.finding, s.err
}

func TestStatusRank(t *testing.T) {
	if StatusPass.Rank() >= StatusWarn.Rank() {
		t.Error("PASS should rank below WARN")
	}
	if StatusWarn.Rank() >= StatusFail.Rank() {
		t.Error("WARN should rank below FAIL")
	}
}

func TestWorse(t *testing.T) {
	tests := []struct {
		a, b, want Status
	}{
		{StatusPass, StatusPass, StatusPass},
		{StatusPass, StatusWarn, StatusWarn},
		{StatusWarn, StatusPass, StatusWarn},
		{StatusPass, StatusFail, StatusFail},
		{StatusFail, StatusWarn, StatusFail},
		{StatusFail, StatusFail, StatusFail},
	}

	for _, tt := range tests {
		if got := Worse(tt.a, tt.b); got != tt.want {
			t.Errorf("Worse(%s, %s) = %s, want %s", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestFindingConstructors(t *testing.T) {
	if f := Pass("all %d good", 3); f.Status != StatusPass || f.Message != "all 3 good" {
		t.Errorf("Pass() = %+v", f)
	}
	if f := Warn("careful"); f.Status != StatusWarn || f.Message != "careful" {
		t.Errorf("Warn() = %+v", f)
	}
	if f := Fail("broken: %s", "x"); f.Status != StatusFail || f.Message != "broken: x" {
		t.Errorf("Fail() = %+v", f)
	}
}

func TestRegistryPreservesOrder(t *testing.T) {
	r := NewRegistry()
	ids := []string{"charlie", "alpha", "bravo"}
	for _, id := range ids {
		if err := r.Register(&stubCheck{id: id}); err != nil {
			t.Fatalf("Register(%s) error = %v", id, err)
		}
	}

	all := r.All()
	if len(all) != len(ids) {
		t.Fatalf("All() returned %d checks, want %d", len(all), len(ids))
	}
	for i, c := range all {
		if c.ID() != ids[i] {
			t.Errorf("All()[%d] = %s, want %s", i, c.ID(), ids[i])
		}
	}
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(&stubCheck{id: "dup"}); err != nil {
		t.Fatalf("first Register error = %v", err)
	}
	if err := r.Register(&stubCheck{id: "dup"}); err == nil {
		t.Error("duplicate Register did not return an error")
	}
	if r.Len() != 1 {
		t.Errorf("Len() = %d after duplicate, want 1", r.Len())
	}
}

func TestRegistryGet(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(&stubCheck{id: "present"}); err != nil {
		t.Fatalf("Register error = %v", err)
	}
	if _, ok := r.Get("present"); !ok {
		t.Error("Get(present) not found")
	}
	if _, ok := r.Get("absent"); ok {
		t.Error("Get(absent) unexpectedly found")
	}
}

func TestCatalogOrder(t *testing.T) {
	want := []string{
		"ssh-root-login",
		"ssh-password-auth",
		"ssh-empty-passwords",
		"firewall-active",
		"updates-pending",
		"accounts-empty-password",
		"accounts-uid-zero",
		"file-permissions",
		"kernel-params",
		"unnecessary-services",
		"auditd-enabled",
	}

	catalog := Catalog()
	if len(catalog) != len(want) {
		t.Fatalf("Catalog() has %d checks, want %d", len(catalog), len(want))
	}
	for i, c := range catalog {
		if c.ID() != want[i] {
			t.Errorf("Catalog()[%d] = %s, want %s", i, c.ID(), want[i])
		}
	}

	reg := DefaultRegistry()
	all := reg.All()
	for i, c := range all {
		if c.ID() != want[i] {
			t.Errorf("DefaultRegistry()[%d] = %s, want %s", i, c.ID(), want[i])
		}
	}
}

func TestCatalogMetadata(t *testing.T) {
	for _, c := range Catalog() {
		t.Run(c.ID(), func(t *testing.T) {
			if c.ID() == "" || c.Title() == "" {
				t.Error("check has empty id or title")
			}
			if c.Category() == "" {
				t.Error("check has empty category")
			}
			if c.RequiresConfirmation() && !c.Mutates() {
				t.Error("check asks confirmation but never mutates")
			}
			if _, ok := c.(Remediable); ok && !c.Mutates() {
				t.Error("remediable check does not declare Mutates")
			}
		})
	}
}

func TestCatalogRemediableSet(t *testing.T) {
	// accounts-uid-zero is probe-only; everything else can remediate
	for _, c := range Catalog() {
		_, remediable := c.(Remediable)
		if c.ID() == "accounts-uid-zero" {
			if remediable {
				t.Error("accounts-uid-zero should not be remediable")
			}
			continue
		}
		if !remediable {
			t.Errorf("%s should be remediable", c.ID())
		}
	}
}
