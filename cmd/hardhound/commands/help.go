package commands

import "fmt"

// PrintHelp displays the main help message
func PrintHelp() {
	help := `hardhound - Linux security hardening checks and remediation

USAGE:
    hardhound [COMMAND]

COMMANDS:
    (none)      Run the audit (default)
    audit       Evaluate the check catalog, change nothing
    apply       Evaluate, then fix non-passing checks (requires root)
    health      Read-only system health snapshot
    rotate      Rotate the log groups defined in the config
    backups     List backup manifests from previous apply runs
    serve       Serve a saved report over MCP (no root)
    init-config Write the default config to ./.hardhound.yaml
    version     Show version
    help        This help

AUDIT/APPLY OPTIONS:
    --format=FORMAT   Output format: text, json, summary
    --output=FILE     Write the report to a file instead of stdout
    --checks=a,b      Run only the listed check ids
    --quiet, -q       Suppress output (return exit code only)
    --webhook         Send webhook notification regardless of thresholds

APPLY OPTIONS:
    --yes, -y         Pre-accept every confirmation prompt
    --no              Pre-decline every confirmation prompt

    Exit codes (audit/apply): 0 = nothing failed, 1 = at least one FAIL

OTHER OPTIONS:
    health: --format=text|json     Exit codes: 0 OK, 1 WARNING, 2 CRITICAL
    rotate: --dry-run              Print the plan, touch nothing
    serve:  --input=FILE|-         Report source (default: stdin)

EXAMPLES:
    # Evaluate without changing anything
    hardhound audit

    # Fix everything fixable, answering prompts interactively
    sudo hardhound apply

    # Unattended hardening for provisioning scripts
    sudo hardhound apply --yes --quiet

    # PRIVILEGE SEPARATION: audit as root, serve without
    sudo hardhound audit --format=json --output=/tmp/report.json
    hardhound serve --input=/tmp/report.json

    # Cron: one summary line, webhook on failures
    hardhound audit --format=summary --webhook

    # Health gate for monitoring
    hardhound health --format=json

CONFIGURATION:
    Config file locations (in order of priority):
    - $HARDHOUND_CONFIG_DIR/.hardhound.yaml
    - .hardhound.yaml (current directory)
    - ~/.hardhound.yaml (home directory)
    - /etc/hardhound/config.yaml (system-wide)

    Run 'hardhound init-config' to generate a starting point.
`
	fmt.Print(help)
}
