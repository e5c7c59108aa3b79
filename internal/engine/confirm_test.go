package engine

import (
	"strings"
	"testing"

	"github.com/girste/hardhound/internal/checks"
)

func TestTerminalConfirmerAnswers(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"lowercase y", "y\n", true},
		{"uppercase y", "Y\n", true},
		{"yes", "yes\n", true},
		{"n", "n\n", false},
		{"empty line defaults to no", "\n", false},
		{"eof defaults to no", "", false},
		{"anything else is no", "sure\n", false},
	}

	check := &fakeCheck{id: "firewall-active"}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out strings.Builder
			c := NewTerminalConfirmer(strings.NewReader(tt.input), &out)
			if got := c.Confirm(check); got != tt.want {
				t.Errorf("Confirm() = %v, want %v", got, tt.want)
			}
			if !strings.Contains(out.String(), "firewall-active") {
				t.Errorf("prompt %q does not name the check", out.String())
			}
			if !strings.Contains(out.String(), "[y/N]") {
				t.Errorf("prompt %q missing the default hint", out.String())
			}
		})
	}
}

func TestTerminalConfirmerSequentialPrompts(t *testing.T) {
	var out strings.Builder
	c := NewTerminalConfirmer(strings.NewReader("y\nn\n"), &out)

	first := c.Confirm(&fakeCheck{id: "one"})
	second := c.Confirm(&fakeCheck{id: "two"})

	if !first || second {
		t.Errorf("answers = %v, %v; want true, false", first, second)
	}
}

func TestStaticConfirmer(t *testing.T) {
	check := &fakeCheck{id: "any"}
	if !(StaticConfirmer{Decision: true}).Confirm(check) {
		t.Error("StaticConfirmer(true) declined")
	}
	if (StaticConfirmer{Decision: false}).Confirm(check) {
		t.Error("StaticConfirmer(false) approved")
	}
}

var _ Confirmer = (*TerminalConfirmer)(nil)
var _ Confirmer = StaticConfirmer{}
var _ checks.Check = (*fakeCheck)(nil)
var _ checks.Remediable = (*fakeFixer)(nil)
