package main

import (
	"fmt"
	"os"

	_ "go.uber.org/automaxprocs"

	"github.com/harrison/launcher/internal/cmd"
)

// Version is the current version of the launcher application
const Version = "1.0.0"

func main() {
	cmd.Version = Version
	rootCmd := cmd.NewRootCommand()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
