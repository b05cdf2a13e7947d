package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/harrison/launcher/internal/logger"
)

// SettingsFileName is the settings file looked up in the launcher home.
const SettingsFileName = "settings.yaml"

// Settings are the runtime options of the launcher. They live next to the
// store in settings.yaml and are separate from the store document itself.
type Settings struct {
	// StorePath is the JSON store document (relative paths resolve against home)
	StorePath string `yaml:"store_path"`

	// LogLevel sets the logging verbosity (trace, debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	// LogDir is the directory for the rotating log file
	LogDir string `yaml:"log_dir"`

	// Workers bounds how many folders are walked concurrently (0 = GOMAXPROCS)
	Workers int `yaml:"workers"`

	// HistoryEnabled records every scan and count run in the history database
	HistoryEnabled bool `yaml:"history_enabled"`

	// HistoryDB is the SQLite scan history database
	HistoryDB string `yaml:"history_db"`
}

// DefaultSettings returns Settings with default values.
func DefaultSettings() *Settings {
	return &Settings{
		StorePath:      "data.json",
		LogLevel:       "info",
		LogDir:         "logs",
		Workers:        0,
		HistoryEnabled: true,
		HistoryDB:      "history.db",
	}
}

// LoadSettings loads settings from path on top of the defaults.
// A missing file yields the defaults; a malformed file is an error.
func LoadSettings(path string) (*Settings, error) {
	s := DefaultSettings()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}

	// Pointers distinguish "absent" from an explicit zero value.
	var raw struct {
		StorePath      *string `yaml:"store_path"`
		LogLevel       *string `yaml:"log_level"`
		LogDir         *string `yaml:"log_dir"`
		Workers        *int    `yaml:"workers"`
		HistoryEnabled *bool   `yaml:"history_enabled"`
		HistoryDB      *string `yaml:"history_db"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse settings file: %w", err)
	}

	if raw.StorePath != nil && *raw.StorePath != "" {
		s.StorePath = *raw.StorePath
	}
	if raw.LogLevel != nil && *raw.LogLevel != "" {
		s.LogLevel = normalizeLevel(*raw.LogLevel)
	}
	if raw.LogDir != nil && *raw.LogDir != "" {
		s.LogDir = *raw.LogDir
	}
	if raw.Workers != nil {
		s.Workers = *raw.Workers
	}
	if raw.HistoryEnabled != nil {
		s.HistoryEnabled = *raw.HistoryEnabled
	}
	if raw.HistoryDB != nil && *raw.HistoryDB != "" {
		s.HistoryDB = *raw.HistoryDB
	}

	return s, nil
}

// LoadSettingsFromHome loads settings.yaml from the given home directory.
func LoadSettingsFromHome(home string) (*Settings, error) {
	return LoadSettings(filepath.Join(home, SettingsFileName))
}

// MergeWithFlags applies CLI overrides. Nil values leave the setting unchanged.
func (s *Settings) MergeWithFlags(logLevel *string, workers *int, storePath *string) {
	if logLevel != nil {
		s.LogLevel = normalizeLevel(*logLevel)
	}
	if workers != nil {
		s.Workers = *workers
	}
	if storePath != nil {
		s.StorePath = *storePath
	}
}

// normalizeLevel lowercases a log level so "INFO" and "info" are the same level.
func normalizeLevel(level string) string {
	return strings.ToLower(strings.TrimSpace(level))
}

// Resolve makes every relative path absolute against home.
func (s *Settings) Resolve(home string) {
	s.StorePath = resolvePath(home, s.StorePath)
	s.LogDir = resolvePath(home, s.LogDir)
	s.HistoryDB = resolvePath(home, s.HistoryDB)
}

func resolvePath(home, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(home, p)
}

// Validate returns an error if any value is invalid.
func (s *Settings) Validate() error {
	if s.StorePath == "" {
		return fmt.Errorf("store_path cannot be empty")
	}
	if s.Workers < 0 {
		return fmt.Errorf("workers must be >= 0, got %d", s.Workers)
	}

	if !logger.ValidLevel(s.LogLevel) {
		return fmt.Errorf("invalid log_level %q, must be one of: trace, debug, info, warn, error", s.LogLevel)
	}

	if s.HistoryEnabled && s.HistoryDB == "" {
		return fmt.Errorf("history_db cannot be empty when history is enabled")
	}
	return nil
}

// Save writes the settings as YAML to path.
func (s *Settings) Save(path string) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}
	return nil
}
