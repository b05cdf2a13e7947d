package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harrison/launcher/internal/config"
	"github.com/harrison/launcher/internal/history"
	"github.com/harrison/launcher/internal/logger"
	"github.com/harrison/launcher/internal/store"
)

// environment is everything a subcommand needs: resolved settings, the
// logger pair and the loaded store.
type environment struct {
	home     string
	settings *config.Settings
	log      logger.Logger
	store    *store.Store
}

// openEnvironment resolves the home directory and settings from the
// persistent flags, sets up logging and loads the store.
func openEnvironment(cmd *cobra.Command) (*environment, error) {
	env, err := openEnvironmentUnloaded(cmd)
	if err != nil {
		return nil, err
	}
	if err := env.store.Load(); err != nil {
		env.Close()
		return nil, fmt.Errorf("load store: %w", err)
	}
	return env, nil
}

func openEnvironmentUnloaded(cmd *cobra.Command) (*environment, error) {
	homeFlag, _ := cmd.Flags().GetString("home")
	home, err := config.GetLauncherHome(homeFlag)
	if err != nil {
		return nil, err
	}

	settings, err := config.LoadSettingsFromHome(home)
	if err != nil {
		return nil, err
	}

	var logLevelPtr, storePtr *string
	var workersPtr *int
	if cmd.Flags().Changed("log-level") {
		v, _ := cmd.Flags().GetString("log-level")
		logLevelPtr = &v
	}
	if cmd.Flags().Changed("store") {
		v, _ := cmd.Flags().GetString("store")
		storePtr = &v
	}
	if cmd.Flags().Changed("workers") {
		v, _ := cmd.Flags().GetInt("workers")
		workersPtr = &v
	}
	settings.MergeWithFlags(logLevelPtr, workersPtr, storePtr)
	settings.Resolve(home)

	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}

	consoleLog := logger.NewConsoleLogger(cmd.ErrOrStderr(), settings.LogLevel)
	log := logger.Logger(consoleLog)
	if settings.LogDir != "" {
		fileLog, err := logger.NewFileLogger(settings.LogDir, settings.LogLevel)
		if err != nil {
			consoleLog.LogWarn(fmt.Sprintf("File logging disabled: %v", err))
		} else {
			log = logger.Multi(consoleLog, fileLog)
		}
	}
	log.LogDebug(fmt.Sprintf("Launcher home: %s", home))

	return &environment{
		home:     home,
		settings: settings,
		log:      log,
		store:    store.New(settings.StorePath, log),
	}, nil
}

// openHistory opens the history database, or returns nil when history is
// disabled or cannot be opened. History is never fatal to a command.
func (e *environment) openHistory() *history.Store {
	if !e.settings.HistoryEnabled {
		return nil
	}
	h, err := history.NewStore(e.settings.HistoryDB)
	if err != nil {
		e.log.LogWarn(fmt.Sprintf("Scan history unavailable: %v", err))
		return nil
	}
	return h
}

// recordRun stores run in the history database when history is enabled.
func (e *environment) recordRun(cmd *cobra.Command, run *history.Run) {
	h := e.openHistory()
	if h == nil {
		return
	}
	defer h.Close()

	if err := h.Record(cmd.Context(), run); err != nil {
		e.log.LogWarn(fmt.Sprintf("Failed to record %s run: %v", run.Mode, err))
	}
}

// Close releases the loggers.
func (e *environment) Close() error {
	return e.log.Close()
}
