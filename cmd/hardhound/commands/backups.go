package commands

import (
	"fmt"
	"os"

	"github.com/girste/hardhound/internal/backup"
	"github.com/girste/hardhound/internal/config"
)

// RunBackups lists the backup manifests written by previous apply runs
func RunBackups() int {
	for i := 2; i < len(os.Args); i++ {
		arg := os.Args[i]
		switch arg {
		case "--help", "-h":
			PrintBackupsHelp()
			return 0
		default:
			fmt.Fprintf(os.Stderr, "Unknown backups option: %s\n", arg)
			PrintBackupsHelp()
			return 1
		}
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	dir := manifestDir(cfg)
	manifests, err := backup.ListManifests(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to list manifests: %v\n", err)
		return 1
	}

	if len(manifests) == 0 {
		fmt.Printf("No backup manifests in %s\n", dir)
		return 0
	}

	fmt.Printf("Backup manifests in %s:\n\n", dir)
	for _, path := range manifests {
		m, err := backup.LoadManifest(path)
		if err != nil {
			fmt.Printf("  %s (unreadable: %v)\n\n", path, err)
			continue
		}

		fmt.Printf("  run %s\n", m.RunID)
		fmt.Printf("    host:    %s\n", m.Hostname)
		fmt.Printf("    created: %s\n", m.CreatedAt)
		fmt.Printf("    file:    %s\n", path)
		for _, e := range m.Entries {
			fmt.Printf("    %s -> %s\n", e.Source, e.BackupPath)
		}
		fmt.Println()
	}

	return 0
}

// PrintBackupsHelp displays help for the backups command
func PrintBackupsHelp() {
	help := `hardhound backups - List backup manifests from previous apply runs

USAGE:
    hardhound backups

DESCRIPTION:
    Every apply run snapshots each file before its first change and
    records the copies in a YAML manifest. This command lists those
    manifests with the original path and the backup location of every
    file, so changes can be undone by hand.

EXAMPLES:
    hardhound backups
    sudo hardhound backups    # manifests of runs made as root
`
	fmt.Print(help)
}
