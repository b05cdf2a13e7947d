package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/require"
)

func init() {
	color.NoColor = true
}

// executeCommand runs the root command against home and returns stdout and stderr.
func executeCommand(t *testing.T, home string, args ...string) (string, string, error) {
	t.Helper()
	root := NewRootCommand()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append([]string{"--home=" + home}, args...))

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

// outputLines returns the non-empty lines of out.
func outputLines(out string) []string {
	var lines []string
	for _, l := range strings.Split(out, "\n") {
		if strings.TrimSpace(l) != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

type launcherHome struct {
	dir string
	bin string
}

// newLauncherHome creates a home directory and a bin folder holding
//
//	tool         executable
//	run.sh       executable
//	readme.txt   executable, extension not allowed
//	uninstaller  executable, banned by name
func newLauncherHome(t *testing.T) launcherHome {
	t.Helper()
	h := launcherHome{dir: t.TempDir(), bin: filepath.Join(t.TempDir(), "bin")}
	require.NoError(t, os.MkdirAll(h.bin, 0755))
	for _, name := range []string{"tool", "run.sh", "readme.txt", "uninstaller"} {
		p := filepath.Join(h.bin, name)
		require.NoError(t, os.WriteFile(p, []byte("#!/bin/sh\n"), 0755))
		require.NoError(t, os.Chmod(p, 0755))
	}
	h.writeStore(t, map[string]any{
		"maxEntries":         10,
		"folders":            []string{h.bin},
		"executables":        []string{},
		"blacklist":          []string{},
		"banWordFolders":     []string{},
		"banWordExecutables": []string{"uninstall"},
		"applications":       []any{},
	})
	return h
}

func (h launcherHome) storePath() string {
	return filepath.Join(h.dir, "data.json")
}

func (h launcherHome) writeStore(t *testing.T, doc map[string]any) {
	t.Helper()
	data, err := json.Marshal(doc)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(h.storePath(), data, 0644))
}

func (h launcherHome) readStore(t *testing.T) map[string]any {
	t.Helper()
	data, err := os.ReadFile(h.storePath())
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	return doc
}

func (h launcherHome) path(name string) string {
	return filepath.Join(h.bin, name)
}
