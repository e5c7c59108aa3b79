package commands

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/girste/hardhound/internal/config"
	"github.com/girste/hardhound/internal/engine"
	"github.com/girste/hardhound/internal/log"
)

// RunApply evaluates the catalog and remediates what it can. Apply
// refuses to start without root: a partial run that can read but not
// repair would report misleading outcomes.
func RunApply() int {
	formatType := "text"
	outputFile := ""
	quiet := false
	webhook := false
	yes := false
	no := false
	var selection []string

	for i := 2; i < len(os.Args); i++ {
		arg := os.Args[i]
		switch {
		case strings.HasPrefix(arg, "--format="):
			formatType = strings.TrimPrefix(arg, "--format=")
		case arg == "--format" && i+1 < len(os.Args):
			formatType = os.Args[i+1]
			i++
		case strings.HasPrefix(arg, "--output="):
			outputFile = strings.TrimPrefix(arg, "--output=")
		case arg == "--output" && i+1 < len(os.Args):
			outputFile = os.Args[i+1]
			i++
		case strings.HasPrefix(arg, "--checks="):
			selection = splitChecks(strings.TrimPrefix(arg, "--checks="))
		case arg == "--checks" && i+1 < len(os.Args):
			selection = splitChecks(os.Args[i+1])
			i++
		case arg == "--quiet" || arg == "-q":
			quiet = true
		case arg == "--webhook":
			webhook = true
		case arg == "--yes" || arg == "-y":
			yes = true
		case arg == "--no":
			no = true
		case arg == "--help" || arg == "-h":
			PrintApplyHelp()
			return 0
		default:
			fmt.Fprintf(os.Stderr, "Unknown apply option: %s\n", arg)
			PrintApplyHelp()
			return 1
		}
	}

	if yes && no {
		fmt.Fprintln(os.Stderr, "--yes and --no are mutually exclusive")
		PrintApplyHelp()
		return 1
	}

	if os.Geteuid() != 0 {
		fmt.Fprintln(os.Stderr, "apply must run as root: remediation changes system files and services")
		return 1
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	var confirm engine.Confirmer
	switch {
	case yes:
		confirm = engine.StaticConfirmer{Decision: true}
	case no:
		confirm = engine.StaticConfirmer{Decision: false}
	default:
		confirm = engine.NewTerminalConfirmer(os.Stdin, os.Stderr)
	}

	ctx := context.Background()
	rep, manifestPath := executeRun(ctx, engine.ModeApply, cfg, selection, confirm)
	if manifestPath != "" {
		log.Infof("backups recorded in %s", manifestPath)
	}

	sendNotifications(ctx, cfg, rep, webhook)
	return emitReport(rep, formatType, outputFile, quiet)
}

// PrintApplyHelp displays help for the apply command
func PrintApplyHelp() {
	help := `hardhound apply - Evaluate the hardening checks and fix what failed

USAGE:
    sudo hardhound apply [OPTIONS]

DESCRIPTION:
    Runs the same evaluation as audit, then remediates every non-passing
    check that supports it. Files are backed up before the first change
    and each run writes a YAML manifest (see 'hardhound backups').
    Checks flagged as risky ask for confirmation per check.

OPTIONS:
    --yes, -y         Pre-accept every confirmation prompt
    --no              Pre-decline every confirmation prompt
    --format=FORMAT   Output format: text, json, summary (default: text)
    --output=FILE     Write the report to a file instead of stdout
    --checks=a,b      Run only the listed check ids
    --quiet, -q       Suppress output (return exit code only)
    --webhook         Send webhook notification even if thresholds say no
    --help, -h        Show this help message

EXIT CODES:
    0  No check failed during evaluation
    1  At least one check failed, or the run could not start

    Statuses keep what evaluation found; fixes show up as outcomes.
    Re-run audit to confirm the repaired state.

EXAMPLES:
    sudo hardhound apply
    sudo hardhound apply --yes --format=json --output=apply.json
    sudo hardhound apply --checks=kernel-params --no
`
	fmt.Print(help)
}
