package commands

import (
	"fmt"
	"os"

	"github.com/girste/hardhound/internal/config"
)

const defaultConfigName = ".hardhound.yaml"

// RunInitConfig writes the default configuration to the current
// directory. It refuses to overwrite an existing file.
func RunInitConfig() int {
	for i := 2; i < len(os.Args); i++ {
		arg := os.Args[i]
		switch arg {
		case "--help", "-h":
			PrintInitConfigHelp()
			return 0
		default:
			fmt.Fprintf(os.Stderr, "Unknown init-config option: %s\n", arg)
			PrintInitConfigHelp()
			return 1
		}
	}

	if _, err := os.Stat(defaultConfigName); err == nil {
		fmt.Fprintf(os.Stderr, "%s already exists, not overwriting\n", defaultConfigName)
		return 1
	}

	if err := config.WriteDefault(defaultConfigName); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write config: %v\n", err)
		return 1
	}

	fmt.Printf("Default configuration written to %s\n", defaultConfigName)
	return 0
}

// PrintInitConfigHelp displays help for the init-config command
func PrintInitConfigHelp() {
	help := `hardhound init-config - Write the default configuration

USAGE:
    hardhound init-config

DESCRIPTION:
    Writes the built-in defaults to ./.hardhound.yaml as a starting
    point: check toggles, SSH and kernel expectations, file mode rules,
    notification settings, health thresholds and log rotation groups.
    Existing files are never overwritten.

CONFIG SEARCH ORDER:
    $HARDHOUND_CONFIG_DIR/.hardhound.yaml
    ./.hardhound.yaml
    ~/.hardhound.yaml
    /etc/hardhound/config.yaml
`
	fmt.Print(help)
}
