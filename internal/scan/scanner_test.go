package scan

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/launcher/internal/extension"
	"github.com/harrison/launcher/internal/logger"
	"github.com/harrison/launcher/internal/store"
)

type fakeSource struct {
	loaded             bool
	folders            []string
	banWordFolders     []string
	banWordExecutables []string
}

func (f *fakeSource) Loaded() bool                 { return f.loaded }
func (f *fakeSource) Folders() []string            { return f.folders }
func (f *fakeSource) BanWordFolders() []string     { return f.banWordFolders }
func (f *fakeSource) BanWordExecutables() []string { return f.banWordExecutables }

type testFile struct {
	path string
	mode os.FileMode
}

// buildTree creates files (and their parent directories) under root.
func buildTree(t *testing.T, root string, files []testFile) {
	t.Helper()
	for _, f := range files {
		p := filepath.Join(root, f.path)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte("#!/bin/sh\n"), f.mode))
		require.NoError(t, os.Chmod(p, f.mode))
	}
}

// fixture lays out two scan roots:
//
//	apps/
//	  tool, script.sh, sub/deep/run      executables that match
//	  notes.txt                          executable, extension not allowed
//	  data                               not executable
//	  uninstall-tool                     executable ban-word
//	  node_modules/pkg/bin               inside a banned folder
//	  link-to-tool -> tool               symlink to an executable
//	  dangling -> missing                dangling symlink
//	extra/
//	  other
type fixture struct {
	apps  string
	extra string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	base, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	fx := fixture{
		apps:  filepath.Join(base, "apps"),
		extra: filepath.Join(base, "extra"),
	}

	buildTree(t, fx.apps, []testFile{
		{"tool", 0755},
		{"script.sh", 0755},
		{"notes.txt", 0755},
		{"data", 0644},
		{"uninstall-tool", 0755},
		{"node_modules/pkg/bin", 0755},
		{"sub/deep/run", 0755},
	})
	require.NoError(t, os.Symlink(filepath.Join(fx.apps, "tool"), filepath.Join(fx.apps, "link-to-tool")))
	require.NoError(t, os.Symlink(filepath.Join(fx.apps, "missing"), filepath.Join(fx.apps, "dangling")))

	buildTree(t, fx.extra, []testFile{{"other", 0755}})
	return fx
}

func (fx fixture) source() *fakeSource {
	return &fakeSource{
		loaded:             true,
		folders:            []string{fx.apps, fx.extra},
		banWordFolders:     []string{"node_modules"},
		banWordExecutables: []string{"uninstall"},
	}
}

func newTestScanner(src ListSource, opts ...Option) *Scanner {
	return New(src, extension.ForOS("linux"), logger.Nop(), opts...)
}

func TestScanAll(t *testing.T) {
	fx := newFixture(t)
	s := newTestScanner(fx.source())

	result, err := s.ScanAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(fx.apps, "link-to-tool"),
		filepath.Join(fx.apps, "script.sh"),
		filepath.Join(fx.apps, "sub", "deep", "run"),
		filepath.Join(fx.apps, "tool"),
		filepath.Join(fx.extra, "other"),
	}, result.Files)
	assert.Empty(t, result.Errors)
	assert.Equal(t, []string{fx.apps, fx.extra}, result.Folders)
}

func TestScanFollowsFolderOrder(t *testing.T) {
	fx := newFixture(t)
	src := fx.source()
	src.folders = []string{fx.extra, fx.apps}

	result, err := newTestScanner(src).ScanAll(context.Background())
	require.NoError(t, err)

	require.NotEmpty(t, result.Files)
	assert.Equal(t, filepath.Join(fx.extra, "other"), result.Files[0])
}

func TestScanSkipsMissingAndNonDirectoryFolders(t *testing.T) {
	fx := newFixture(t)
	src := fx.source()
	src.folders = []string{
		filepath.Join(fx.apps, "does-not-exist"),
		filepath.Join(fx.apps, "tool"),
		fx.extra,
	}

	result, err := newTestScanner(src).ScanAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{filepath.Join(fx.extra, "other")}, result.Files)
	assert.Empty(t, result.Errors, "skipped folders are not errors")
	assert.Equal(t, []string{fx.extra}, result.Folders)
}

func TestScanFollowsSymlinkedFolder(t *testing.T) {
	fx := newFixture(t)
	link := filepath.Join(filepath.Dir(fx.apps), "apps-link")
	require.NoError(t, os.Symlink(fx.apps, link))

	src := fx.source()
	src.folders = []string{link}
	s := newTestScanner(src)

	result, err := s.ScanAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(link, "link-to-tool"),
		filepath.Join(link, "script.sh"),
		filepath.Join(link, "sub", "deep", "run"),
		filepath.Join(link, "tool"),
	}, result.Files, "results keep the configured folder path")
	assert.Equal(t, []string{link}, result.Folders)

	count, err := s.CountAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(14), count.Total)
}

func TestScanPredicateResultIsSubset(t *testing.T) {
	fx := newFixture(t)
	s := newTestScanner(fx.source())
	pred := func(path string) bool { return strings.HasSuffix(path, "tool") }

	all, err := s.ScanAll(context.Background())
	require.NoError(t, err)
	filtered, err := s.Scan(context.Background(), pred)
	require.NoError(t, err)

	assert.Subset(t, all.Files, filtered.Files)
	assert.NotEmpty(t, filtered.Files)
	for _, f := range filtered.Files {
		assert.True(t, pred(f), "%s does not satisfy the predicate", f)
	}
}

func TestScanNeverReturnsBannedExecutablesOrDirectories(t *testing.T) {
	fx := newFixture(t)
	s := newTestScanner(fx.source())

	predicates := map[string]Predicate{
		"accept all": AcceptAll,
		"nil":        nil,
		"names with tool": func(path string) bool {
			return strings.Contains(filepath.Base(path), "tool")
		},
	}

	for name, pred := range predicates {
		t.Run(name, func(t *testing.T) {
			result, err := s.Scan(context.Background(), pred)
			require.NoError(t, err)

			for _, f := range result.Files {
				assert.False(t, ExecutableBanned(f, []string{"uninstall"}), "banned executable %s returned", f)

				info, err := os.Stat(f)
				require.NoError(t, err)
				assert.False(t, info.IsDir(), "directory %s returned", f)
			}
		})
	}
}

func TestScanPrunesBannedFolders(t *testing.T) {
	fx := newFixture(t)
	src := fx.source()
	src.banWordFolders = []string{"sub", "node_modules"}

	result, err := newTestScanner(src).ScanAll(context.Background())
	require.NoError(t, err)

	for _, f := range result.Files {
		assert.NotContains(t, f, string(filepath.Separator)+"sub"+string(filepath.Separator))
		assert.NotContains(t, f, "node_modules")
	}
	assert.Contains(t, result.Files, filepath.Join(fx.apps, "tool"))
}

func TestScanNeverPrunesConfiguredRoot(t *testing.T) {
	fx := newFixture(t)
	src := fx.source()
	src.folders = []string{fx.apps}
	// Matches the root path itself, and so every path below it.
	src.banWordFolders = []string{filepath.Base(fx.apps)}

	result, err := newTestScanner(src).ScanAll(context.Background())
	require.NoError(t, err)

	assert.Contains(t, result.Files, filepath.Join(fx.apps, "tool"), "root-level files are still scanned")
	assert.NotContains(t, result.Files, filepath.Join(fx.apps, "sub", "deep", "run"), "subfolders are pruned")
}

func TestScanIsolatesTraversalErrors(t *testing.T) {
	fx := newFixture(t)
	walkErr := errors.New("input/output error")
	buf := &strings.Builder{}

	s := New(fx.source(), extension.ForOS("linux"), logger.NewConsoleLogger(buf, "info"))
	s.walk = func(root string, fn fs.WalkDirFunc) error {
		if root == fx.apps {
			return walkErr
		}
		return filepath.WalkDir(root, fn)
	}

	result, err := s.ScanAll(context.Background())
	require.NoError(t, err, "a failing folder must not fail the scan")

	assert.Equal(t, []string{filepath.Join(fx.extra, "other")}, result.Files)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, fx.apps, result.Errors[0].Folder)
	assert.ErrorIs(t, result.Errors[0], ErrTraversal)
	assert.ErrorIs(t, result.Errors[0], walkErr)
	assert.Contains(t, buf.String(), "[WARN] Skipping folder "+fx.apps)
}

func TestScanUnreadableFolder(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced for root")
	}
	fx := newFixture(t)
	locked := filepath.Join(fx.apps, "sub")
	require.NoError(t, os.Chmod(locked, 0000))
	t.Cleanup(func() { os.Chmod(locked, 0755) })

	src := fx.source()
	src.folders = []string{locked, fx.extra}

	result, err := newTestScanner(src).ScanAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{filepath.Join(fx.extra, "other")}, result.Files)
	require.Len(t, result.Errors, 1)
	assert.ErrorIs(t, result.Errors[0], fs.ErrPermission)
}

func TestScanRequiresLoadedSource(t *testing.T) {
	s := newTestScanner(&fakeSource{loaded: false})

	_, err := s.ScanAll(context.Background())
	assert.ErrorIs(t, err, store.ErrNotLoaded)

	_, err = s.CountAll(context.Background())
	assert.ErrorIs(t, err, store.ErrNotLoaded)
}

func TestScanCancelled(t *testing.T) {
	fx := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestScanner(fx.source()).ScanAll(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	_, err = newTestScanner(fx.source()).CountAll(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestScanWorkerCountDoesNotChangeResult(t *testing.T) {
	fx := newFixture(t)

	serial, err := newTestScanner(fx.source(), WithWorkers(1)).ScanAll(context.Background())
	require.NoError(t, err)
	parallel, err := newTestScanner(fx.source(), WithWorkers(8)).ScanAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, serial.Files, parallel.Files)
}

func TestCountAll(t *testing.T) {
	fx := newFixture(t)

	result, err := newTestScanner(fx.source()).CountAll(context.Background())
	require.NoError(t, err)

	// apps: root + 7 files + 4 directories + 2 symlinks; extra: root + 1 file.
	// Ban-words do not apply when counting.
	assert.Equal(t, int64(16), result.Total)
	assert.Empty(t, result.Errors)
}

func TestCountAllIsolatesErrors(t *testing.T) {
	fx := newFixture(t)
	s := newTestScanner(fx.source())
	s.walk = func(root string, fn fs.WalkDirFunc) error {
		if root == fx.extra {
			return errors.New("device not ready")
		}
		return filepath.WalkDir(root, fn)
	}

	result, err := s.CountAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(14), result.Total)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, fx.extra, result.Errors[0].Folder)
}

func TestScanWithStore(t *testing.T) {
	fx := newFixture(t)
	path := filepath.Join(t.TempDir(), store.DefaultFileName)
	st := store.New(path, logger.Nop(), store.WithPreset([]byte(`{}`)))
	require.NoError(t, st.Load())
	st.SetFolders([]string{fx.extra})

	result, err := newTestScanner(st).ScanAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(fx.extra, "other")}, result.Files)

	// Configuration changes apply to the next scan without a reload.
	st.SetFolders([]string{fx.apps})
	st.SetBanWordExecutables([]string{"tool"})

	result, err = newTestScanner(st).ScanAll(context.Background())
	require.NoError(t, err)
	for _, f := range result.Files {
		assert.NotContains(t, filepath.Base(f), "tool")
	}
	assert.Contains(t, result.Files, filepath.Join(fx.apps, "script.sh"))
}
