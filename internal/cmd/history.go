package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harrison/launcher/internal/history"
)

// NewHistoryCommand creates the 'launcher history' command
func NewHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent scan and count runs",
		Args:  cobra.NoArgs,
		RunE:  runHistory,
	}
	cmd.Flags().IntP("limit", "n", 10, "Number of runs to show (0 = all)")
	cmd.Flags().Int("keep", -1, "Delete all but the newest N runs")
	return cmd
}

func runHistory(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	keep, _ := cmd.Flags().GetInt("keep")

	env, err := openEnvironmentUnloaded(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	output := cmd.OutOrStdout()
	if !env.settings.HistoryEnabled {
		fmt.Fprintln(output, "Scan history is disabled (history_enabled: false)")
		return nil
	}

	h, err := history.NewStore(env.settings.HistoryDB)
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer h.Close()

	if cmd.Flags().Changed("keep") {
		removed, err := h.Prune(cmd.Context(), keep)
		if err != nil {
			return err
		}
		fmt.Fprintf(output, "Removed %d runs\n", removed)
	}

	runs, err := h.Recent(cmd.Context(), limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(output, "No runs recorded")
		return nil
	}
	printRuns(output, runs)
	return nil
}

func printRuns(w io.Writer, runs []*history.Run) {
	red := color.New(color.FgRed)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STARTED\tMODE\tFOLDERS\tRESULT\tERRORS\tDURATION\tFILTER")
	for _, r := range runs {
		errs := fmt.Sprint(r.Errors)
		if r.Errors > 0 {
			errs = red.Sprint(r.Errors)
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\t%s\t%s\n",
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			r.Mode, r.Folders, r.Matched, errs,
			r.Duration.Round(time.Millisecond), r.Filter)
	}
	tw.Flush()
}
