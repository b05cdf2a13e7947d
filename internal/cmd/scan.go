package cmd

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harrison/launcher/internal/catalog"
	"github.com/harrison/launcher/internal/display"
	"github.com/harrison/launcher/internal/extension"
	"github.com/harrison/launcher/internal/history"
	"github.com/harrison/launcher/internal/scan"
	"github.com/harrison/launcher/internal/store"
)

// NewScanCommand creates the 'launcher scan' command
func NewScanCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan the configured folders for executables",
		Long: `Walk every configured folder and print the executable files found.

Folders whose path contains a folder ban-word are skipped with everything
below them, and files whose name contains an executable ban-word are
dropped. --ext and --name narrow the result further.

With --save the results are stored as the executables list, merged into
the application catalog (skipping blacklisted paths, up to maxEntries)
and written to the store.`,
		Args: cobra.NoArgs,
		RunE: runScan,
	}

	cmd.Flags().StringSlice("ext", nil, "Only keep files with these extensions (e.g. --ext .sh,.run)")
	cmd.Flags().String("name", "", "Only keep files whose name contains this text (case-insensitive)")
	cmd.Flags().Bool("save", false, "Save the results to the store and catalog")

	return cmd
}

func runScan(cmd *cobra.Command, args []string) error {
	exts, _ := cmd.Flags().GetStringSlice("ext")
	name, _ := cmd.Flags().GetString("name")
	save, _ := cmd.Flags().GetBool("save")

	env, err := openEnvironment(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	pred, filter := buildPredicate(exts, name)
	scanner := scan.New(env.store, extension.Default(), env.log, scan.WithWorkers(env.settings.Workers))

	started := time.Now()
	result, err := scanner.Scan(cmd.Context(), pred)
	if err != nil {
		return fmt.Errorf("scan: %w", err)
	}

	env.recordRun(cmd, &history.Run{
		StartedAt:     started,
		Duration:      result.Duration,
		Mode:          history.ModeScan,
		Filter:        filter,
		Folders:       len(result.Folders),
		Matched:       int64(len(result.Files)),
		Errors:        len(result.Errors),
		FailedFolders: failedFolders(result.Errors),
	})

	output := cmd.OutOrStdout()
	for _, f := range result.Files {
		fmt.Fprintln(output, f)
	}
	printScanSummary(output, result)
	warnSkipped(cmd.ErrOrStderr(), result.Errors)

	if !save {
		return nil
	}
	added, err := saveScan(env.store, result.Files)
	if err != nil {
		return err
	}
	color.New(color.FgGreen).Fprintf(output, "Saved %d executables, %d new catalog entries\n", len(result.Files), added)
	return nil
}

// buildPredicate combines the --ext and --name filters and describes them
// for the history log.
func buildPredicate(exts []string, name string) (scan.Predicate, string) {
	var preds []scan.Predicate
	var parts []string

	if len(exts) > 0 {
		policy := extension.New(exts...)
		preds = append(preds, policy.IsExtensionAllowed)
		parts = append(parts, "ext="+strings.Join(policy.Extensions(), ","))
	}
	if name != "" {
		needle := strings.ToLower(name)
		preds = append(preds, func(path string) bool {
			return strings.Contains(strings.ToLower(filepath.Base(path)), needle)
		})
		parts = append(parts, "name="+name)
	}

	if len(preds) == 0 {
		return scan.AcceptAll, ""
	}
	return func(path string) bool {
		for _, p := range preds {
			if !p(path) {
				return false
			}
		}
		return true
	}, strings.Join(parts, " ")
}

// saveScan records files as the executables list, merges them into the
// catalog and persists the store. It returns the number of new catalog entries.
func saveScan(st *store.Store, files []string) (int, error) {
	records, err := st.Applications()
	if err != nil {
		return 0, fmt.Errorf("read catalog: %w", err)
	}
	library := catalog.FromRecords(records, st.MaxEntries())
	added := library.Merge(files, st.Blacklist())

	st.SetExecutables(files)
	if err := store.Persist(st, library); err != nil {
		return 0, fmt.Errorf("save store: %w", err)
	}
	return added, nil
}

func failedFolders(errs []*scan.FolderError) []string {
	folders := make([]string, 0, len(errs))
	for _, e := range errs {
		folders = append(folders, e.Folder)
	}
	return folders
}

func printScanSummary(w io.Writer, result *scan.Result) {
	color.New(color.FgCyan, color.Bold).Fprintf(w, "\n%d executables in %d folders (%s)\n",
		len(result.Files), len(result.Folders), result.Duration.Round(time.Millisecond))
}

func warnSkipped(w io.Writer, errs []*scan.FolderError) {
	if len(errs) == 0 {
		return
	}
	causes := make([]error, len(errs))
	for i, e := range errs {
		causes[i] = e.Err
	}
	display.WarnSkippedFolders(failedFolders(errs), causes).Display(w)
}
