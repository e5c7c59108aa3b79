package commands

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/girste/hardhound/internal/config"
	"github.com/girste/hardhound/internal/engine"
)

// RunAudit executes the read-only evaluation of the check catalog
func RunAudit() int {
	formatType := "text"
	outputFile := ""
	quiet := false
	webhook := false
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
		case arg == "--help" || arg == "-h":
			PrintAuditHelp()
			return 0
		default:
			fmt.Fprintf(os.Stderr, "Unknown audit option: %s\n", arg)
			PrintAuditHelp()
			return 1
		}
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	ctx := context.Background()
	rep, _ := executeRun(ctx, engine.ModeAudit, cfg, selection, nil)

	sendNotifications(ctx, cfg, rep, webhook)
	return emitReport(rep, formatType, outputFile, quiet)
}

// PrintAuditHelp displays help for the audit command
func PrintAuditHelp() {
	help := `hardhound audit - Evaluate the hardening checks without changing anything

USAGE:
    hardhound audit [OPTIONS]

OPTIONS:
    --format=FORMAT   Output format: text, json, summary (default: text)
    --output=FILE     Write the report to a file instead of stdout
    --checks=a,b      Run only the listed check ids
    --quiet, -q       Suppress output (return exit code only)
    --webhook         Send webhook notification even if thresholds say no
    --help, -h        Show this help message

EXIT CODES:
    0  No check failed (PASS or WARN only)
    1  At least one check failed, or the run could not start

EXAMPLES:
    hardhound audit
    hardhound audit --format=json --output=report.json
    hardhound audit --checks=ssh-root-login,firewall-active
    hardhound audit --quiet && echo "hardened" || echo "issues found"
`
	fmt.Print(help)
}
