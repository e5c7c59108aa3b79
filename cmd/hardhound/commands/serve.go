package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/girste/hardhound/internal/mcpserver"
	"github.com/girste/hardhound/internal/report"
)

// RunServe starts the MCP server over a saved report. It never touches
// the host: the process that evaluated needed privileges, this one
// only answers questions about the JSON it was given.
func RunServe(version string) int {
	inputFile := ""

	for i := 2; i < len(os.Args); i++ {
		arg := os.Args[i]
		switch {
		case strings.HasPrefix(arg, "--input="):
			inputFile = strings.TrimPrefix(arg, "--input=")
		case arg == "--input" && i+1 < len(os.Args):
			inputFile = os.Args[i+1]
			i++
		case arg == "--help" || arg == "-h":
			PrintServeHelp()
			return 0
		default:
			fmt.Fprintf(os.Stderr, "Unknown serve option: %s\n", arg)
			PrintServeHelp()
			return 1
		}
	}

	rep, err := loadReport(inputFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load report: %v\n", err)
		return 1
	}

	if err := mcpserver.New(rep, version).Serve(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		return 1
	}
	return 0
}

// loadReport reads the JSON report from a file or, for "-" or no
// input, from stdin.
func loadReport(inputFile string) (*report.RunReport, error) {
	if inputFile != "" && inputFile != "-" {
		return report.Load(inputFile)
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return nil, fmt.Errorf("cannot read stdin: %w", err)
	}
	var rep report.RunReport
	if err := json.Unmarshal(data, &rep); err != nil {
		return nil, fmt.Errorf("cannot parse report from stdin: %w", err)
	}
	return &rep, nil
}

// PrintServeHelp displays help for the serve command
func PrintServeHelp() {
	help := `hardhound serve - Serve a saved report over MCP (no root)

USAGE:
    hardhound serve [OPTIONS]

DESCRIPTION:
    Loads a JSON report produced by 'hardhound audit --format=json
    --output FILE' and serves it over MCP on stdio with three tools:
    get_report, get_check and get_summary.

    This gives privilege separation: the process that evaluated the
    host may have run as root and exited; the serving process never has
    system access and only reads the report it was handed.

OPTIONS:
    --input=FILE     Read the report from a file (use '-' for stdin)
    --help, -h       Show this help message

EXAMPLES:
    # Privilege separation
    sudo hardhound audit --format=json --output=/tmp/report.json
    hardhound serve --input=/tmp/report.json

    # Pipe mode
    hardhound audit --format=json | hardhound serve
`
	fmt.Print(help)
}
