package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harrison/launcher/internal/config"
	"github.com/harrison/launcher/internal/store"
)

// NewInitCommand creates the 'launcher init' command
func NewInitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the store and settings in the launcher home",
		Long: `Create data.json from the bundled preset and settings.yaml with default
values. Existing files are left untouched.`,
		Args: cobra.NoArgs,
		RunE: runInit,
	}
}

func runInit(cmd *cobra.Command, args []string) error {
	env, err := openEnvironmentUnloaded(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	output := cmd.OutOrStdout()
	green := color.New(color.FgGreen)
	gray := color.New(color.FgHiBlack)

	seeded, err := store.Bootstrap(env.store.Path(), store.DefaultPreset())
	if err != nil {
		return fmt.Errorf("create store: %w", err)
	}
	if seeded {
		green.Fprintf(output, "Created %s\n", env.store.Path())
	} else {
		gray.Fprintf(output, "Store already exists: %s\n", env.store.Path())
	}

	// Validate what is on disk now, seeded or not.
	if err := env.store.Load(); err != nil {
		return fmt.Errorf("load store: %w", err)
	}

	settingsPath := filepath.Join(env.home, config.SettingsFileName)
	if _, err := os.Stat(settingsPath); errors.Is(err, fs.ErrNotExist) {
		if err := config.DefaultSettings().Save(settingsPath); err != nil {
			return err
		}
		green.Fprintf(output, "Created %s\n", settingsPath)
	} else if err != nil {
		return fmt.Errorf("stat settings: %w", err)
	} else {
		gray.Fprintf(output, "Settings already exist: %s\n", settingsPath)
	}
	return nil
}
