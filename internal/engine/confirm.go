package engine

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/girste/hardhound/internal/checks"
)

// Confirmer decides whether a remediation may proceed. Implementations
// must be side-effect free on system state.
type Confirmer interface {
	Confirm(c checks.Check) bool
}

// TerminalConfirmer prompts on out and reads one answer line per
// question. Anything but an explicit yes declines.
type TerminalConfirmer struct {
	in  *bufio.Reader
	out io.Writer
}

// NewTerminalConfirmer wraps the input once so consecutive prompts
// share the same read buffer.
func NewTerminalConfirmer(in io.Reader, out io.Writer) *TerminalConfirmer {
	return &TerminalConfirmer{in: bufio.NewReader(in), out: out}
}

func (t *TerminalConfirmer) Confirm(c checks.Check) bool {
	fmt.Fprintf(t.out, "Apply fix for %s (%s)? [y/N]: ", c.Title(), c.ID())
	line, err := t.in.ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

// StaticConfirmer answers every prompt the same way, backing the
// --yes and --no flags.
type StaticConfirmer struct {
	Decision bool
}

func (s StaticConfirmer) Confirm(checks.Check) bool { return s.Decision }
