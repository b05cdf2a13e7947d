package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harrison/launcher/internal/catalog"
	"github.com/harrison/launcher/internal/store"
)

// applicationsName selects the catalog in 'launcher list'.
const applicationsName = "applications"

// NewListCommand creates the 'launcher list' command
func NewListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list <name>",
		Short: "Print a list from the store",
		Long: fmt.Sprintf(`Print one list from the store, one entry per line.

Lists: %s, %s`, listNames(), applicationsName),
		Args: cobra.ExactArgs(1),
		RunE: runList,
	}
}

func runList(cmd *cobra.Command, args []string) error {
	env, err := openEnvironment(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	output := cmd.OutOrStdout()
	if args[0] == applicationsName {
		records, err := env.store.Applications()
		if err != nil {
			return err
		}
		printApplications(output, catalog.FromRecords(records, 0))
		return nil
	}

	name, err := store.ParseListName(args[0])
	if err != nil {
		return fmt.Errorf("%w (lists: %s, %s)", err, listNames(), applicationsName)
	}
	for _, v := range env.store.List(name) {
		fmt.Fprintln(output, v)
	}
	return nil
}

func printApplications(w io.Writer, library *catalog.Library) {
	bold := color.New(color.Bold)
	gray := color.New(color.FgHiBlack)
	for _, app := range library.Applications() {
		bold.Fprintf(w, "%s", app.Name)
		fmt.Fprintf(w, "\t%s", app.Path)
		gray.Fprintf(w, "\t%s\n", app.ID)
	}
}

func listNames() string {
	names := make([]string, len(store.Lists))
	for i, n := range store.Lists {
		names[i] = string(n)
	}
	return strings.Join(names, ", ")
}
