package main

import (
	"fmt"
	"os"

	"github.com/girste/hardhound/cmd/hardhound/commands"
)

var version = "1.0.0"

func main() {
	command := ""
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	switch command {
	case "", "audit":
		os.Exit(commands.RunAudit())

	case "apply":
		os.Exit(commands.RunApply())

	case "health":
		os.Exit(commands.RunHealth())

	case "rotate":
		os.Exit(commands.RunRotate())

	case "backups":
		os.Exit(commands.RunBackups())

	case "serve":
		os.Exit(commands.RunServe(version))

	case "init-config":
		os.Exit(commands.RunInitConfig())

	case "version", "--version", "-v":
		fmt.Printf("hardhound version %s\n", version)
		os.Exit(0)

	case "help", "--help", "-h":
		commands.PrintHelp()
		os.Exit(0)

	default:
		fmt.Printf("Unknown command: %s\n", command)
		commands.PrintHelp()
		os.Exit(1)
	}
}
