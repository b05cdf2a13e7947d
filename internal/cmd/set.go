package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harrison/launcher/internal/store"
)

// NewSetCommand creates the 'launcher set' command
func NewSetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <name> [values...]",
		Short: "Replace a list in the store",
		Long: fmt.Sprintf(`Replace one list in the store with the given values and save the store.
With no values the list is emptied. --add appends instead of replacing.

Lists: %s`, listNames()),
		Args: cobra.MinimumNArgs(1),
		RunE: runSet,
	}
	cmd.Flags().Bool("add", false, "Append the values instead of replacing the list")
	return cmd
}

func runSet(cmd *cobra.Command, args []string) error {
	name, err := store.ParseListName(args[0])
	if err != nil {
		return fmt.Errorf("%w (lists: %s)", err, listNames())
	}
	add, _ := cmd.Flags().GetBool("add")

	env, err := openEnvironment(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	values := args[1:]
	if add {
		values = appendMissing(env.store.List(name), values)
	}

	records, err := env.store.Applications()
	if err != nil {
		return err
	}
	env.store.SetList(name, values)
	if err := env.store.Save(records); err != nil {
		return err
	}

	color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "%s: %d entries\n", name, len(values))
	return nil
}

// appendMissing returns current followed by every value not already in it.
func appendMissing(current, values []string) []string {
	seen := make(map[string]bool, len(current))
	out := make([]string, 0, len(current)+len(values))
	for _, v := range current {
		seen[v] = true
		out = append(out, v)
	}
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
