package commands

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/girste/hardhound/internal/config"
	"github.com/girste/hardhound/internal/health"
)

// RunHealth takes a read-only system health snapshot
func RunHealth() int {
	formatType := "text"

	for i := 2; i < len(os.Args); i++ {
		arg := os.Args[i]
		switch {
		case strings.HasPrefix(arg, "--format="):
			formatType = strings.TrimPrefix(arg, "--format=")
		case arg == "--format" && i+1 < len(os.Args):
			formatType = os.Args[i+1]
			i++
		case arg == "--help" || arg == "-h":
			PrintHealthHelp()
			return 0
		default:
			fmt.Fprintf(os.Stderr, "Unknown health option: %s\n", arg)
			PrintHealthHelp()
			return 1
		}
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 2
	}

	snapshot := health.Collect(context.Background(), &cfg.Health)

	out, err := snapshot.Render(formatType)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 2
	}
	fmt.Print(out)

	return snapshot.ExitCode()
}

// PrintHealthHelp displays help for the health command
func PrintHealthHelp() {
	help := `hardhound health - System health snapshot

USAGE:
    hardhound health [OPTIONS]

DESCRIPTION:
    Collects load, memory, swap, disk usage, failed systemd units,
    down critical services and recent OOM kills, then grades the host
    against the thresholds in the config. Never changes anything.

OPTIONS:
    --format=FORMAT   Output format: text, json (default: text)
    --help, -h        Show this help message

EXIT CODES:
    0  OK
    1  WARNING - at least one probe crossed a warn threshold
    2  CRITICAL - at least one probe crossed a critical threshold

EXAMPLES:
    hardhound health
    hardhound health --format=json
    hardhound health && echo "all good"
`
	fmt.Print(help)
}
