package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/harrison/launcher/internal/extension"
	"github.com/harrison/launcher/internal/history"
	"github.com/harrison/launcher/internal/scan"
)

// NewCountCommand creates the 'launcher count' command
func NewCountCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "count",
		Short: "Count every entry under the configured folders",
		Long: `Count every file and directory under the configured folders, the
folders themselves included. No filtering or ban-words apply; the total
is meant for progress estimates before a scan.`,
		Args: cobra.NoArgs,
		RunE: runCount,
	}
}

func runCount(cmd *cobra.Command, args []string) error {
	env, err := openEnvironment(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	scanner := scan.New(env.store, extension.Default(), env.log, scan.WithWorkers(env.settings.Workers))

	started := time.Now()
	result, err := scanner.CountAll(cmd.Context())
	if err != nil {
		return fmt.Errorf("count: %w", err)
	}

	env.recordRun(cmd, &history.Run{
		StartedAt:     started,
		Duration:      result.Duration,
		Mode:          history.ModeCount,
		Folders:       len(result.Folders),
		Matched:       result.Total,
		Errors:        len(result.Errors),
		FailedFolders: failedFolders(result.Errors),
	})

	fmt.Fprintln(cmd.OutOrStdout(), result.Total)
	warnSkipped(cmd.ErrOrStderr(), result.Errors)
	return nil
}
