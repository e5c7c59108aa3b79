package commands

import (
	"fmt"
	"os"

	"github.com/girste/hardhound/internal/config"
	"github.com/girste/hardhound/internal/rotate"
)

// RunRotate rotates the configured log groups
func RunRotate() int {
	dryRun := false

	for i := 2; i < len(os.Args); i++ {
		arg := os.Args[i]
		switch arg {
		case "--dry-run", "-n":
			dryRun = true
		case "--help", "-h":
			PrintRotateHelp()
			return 0
		default:
			fmt.Fprintf(os.Stderr, "Unknown rotate option: %s\n", arg)
			PrintRotateHelp()
			return 1
		}
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	stats := rotate.New(cfg.Rotate, dryRun).Run()
	fmt.Println(stats.Summary())
	return stats.ExitCode()
}

// PrintRotateHelp displays help for the rotate command
func PrintRotateHelp() {
	help := `hardhound rotate - Rotate the log groups defined in the config

USAGE:
    hardhound rotate [OPTIONS]

DESCRIPTION:
    Shifts numbered copies up (file.1 -> file.2 ...), copies the live
    file to .1 and truncates it in place so writers keep their file
    descriptor. Copies beyond .1 are gzipped when the group enables
    compression. Rotations past the keep count or older than the
    group's age limit are pruned.

OPTIONS:
    --dry-run, -n     Print the plan without touching any file
    --help, -h        Show this help message

EXIT CODES:
    0  All groups rotated cleanly
    1  At least one group had an error

EXAMPLES:
    sudo hardhound rotate
    hardhound rotate --dry-run
`
	fmt.Print(help)
}
