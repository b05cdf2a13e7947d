// Package logger provides the level-filtered loggers used across the launcher.
//
// Every implementation writes lines of the form "[HH:MM:SS] [LEVEL] message",
// is safe for concurrent use, and drops messages below its configured level.
package logger

import (
	"strings"
	"time"
)

// Log level constants for filtering
const (
	levelTrace int = 0
	levelDebug int = 1
	levelInfo  int = 2
	levelWarn  int = 3
	levelError int = 4
)

// Logger is the logging contract shared by the store, the scanner and the CLI.
type Logger interface {
	LogTrace(message string)
	LogDebug(message string)
	LogInfo(message string)
	LogWarn(message string)
	LogError(message string)
	Close() error
}

// normalizeLogLevel lowercases and validates a level, defaulting to "info".
func normalizeLogLevel(level string) string {
	normalized := strings.ToLower(strings.TrimSpace(level))

	switch normalized {
	case "trace", "debug", "info", "warn", "error":
		return normalized
	}
	return "info"
}

// ValidLevel reports whether level names a known log level.
func ValidLevel(level string) bool {
	normalized := strings.ToLower(strings.TrimSpace(level))
	return normalizeLogLevel(normalized) == normalized
}

// logLevelToInt converts a log level string to its numeric value.
func logLevelToInt(level string) int {
	switch level {
	case "trace":
		return levelTrace
	case "debug":
		return levelDebug
	case "info":
		return levelInfo
	case "warn":
		return levelWarn
	case "error":
		return levelError
	default:
		return levelInfo
	}
}

func timestamp() string {
	return time.Now().Format("15:04:05")
}

// multi fans every message out to several loggers.
type multi []Logger

// Multi returns a Logger writing to all of the given loggers. Nil entries are skipped.
func Multi(loggers ...Logger) Logger {
	var m multi
	for _, l := range loggers {
		if l != nil {
			m = append(m, l)
		}
	}
	return m
}

func (m multi) LogTrace(message string) {
	for _, l := range m {
		l.LogTrace(message)
	}
}

func (m multi) LogDebug(message string) {
	for _, l := range m {
		l.LogDebug(message)
	}
}

func (m multi) LogInfo(message string) {
	for _, l := range m {
		l.LogInfo(message)
	}
}

func (m multi) LogWarn(message string) {
	for _, l := range m {
		l.LogWarn(message)
	}
}

func (m multi) LogError(message string) {
	for _, l := range m {
		l.LogError(message)
	}
}

// Close closes every logger and returns the first error.
func (m multi) Close() error {
	var first error
	for _, l := range m {
		if err := l.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

type nop struct{}

// Nop returns a Logger that discards everything.
func Nop() Logger { return nop{} }

func (nop) LogTrace(string) {}
func (nop) LogDebug(string) {}
func (nop) LogInfo(string)  {}
func (nop) LogWarn(string)  {}
func (nop) LogError(string) {}
func (nop) Close() error    { return nil }
