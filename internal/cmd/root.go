package cmd

import (
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for launcher
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "launcher",
		Short: "Find and catalog launchable programs",
		Long: `Launcher scans the configured folders for executable files and keeps
a small catalog of applications in a JSON store (data.json).

Folders, ban-words and the blacklist live in the store and can be edited
with 'launcher set'. Runtime options live in settings.yaml next to it.`,
		Version: Version,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
	}

	cmd.PersistentFlags().String("home", "", "Launcher home directory (default: $LAUNCHER_HOME or the working directory)")
	cmd.PersistentFlags().String("store", "", "Path to the store document (default: data.json in the home directory)")
	cmd.PersistentFlags().String("log-level", "", "Log level: trace, debug, info, warn, error")
	cmd.PersistentFlags().Int("workers", 0, "Folders walked concurrently (0 = number of CPUs)")

	cmd.AddCommand(NewInitCommand())
	cmd.AddCommand(NewScanCommand())
	cmd.AddCommand(NewCountCommand())
	cmd.AddCommand(NewListCommand())
	cmd.AddCommand(NewSetCommand())
	cmd.AddCommand(NewHistoryCommand())

	return cmd
}
