// Package scan walks the configured folders and collects the files that pass
// the launcher's filter chain.
package scan

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/harrison/launcher/internal/logger"
	"github.com/harrison/launcher/internal/store"
)

// ErrTraversal marks a folder that could not be walked.
var ErrTraversal = errors.New("traversal error")

// FolderError is a traversal failure confined to one configured folder.
type FolderError struct {
	Folder string
	Err    error
}

// Error implements the error interface.
func (e *FolderError) Error() string {
	return fmt.Sprintf("traverse %s: %v", e.Folder, e.Err)
}

// Unwrap exposes both ErrTraversal and the underlying cause.
func (e *FolderError) Unwrap() []error {
	return []error{ErrTraversal, e.Err}
}

// ListSource provides the configuration a scan reads. *store.Store implements it.
type ListSource interface {
	Loaded() bool
	Folders() []string
	BanWordFolders() []string
	BanWordExecutables() []string
}

// Result contains the outcome of a scan
type Result struct {
	// Files holds matched paths, grouped by configured folder in folder order
	// and sorted within each folder
	Files []string
	// Folders lists the configured folders that existed and were walked
	Folders []string
	// Errors holds one entry per folder that failed; those folders contributed no files
	Errors []*FolderError
	// Duration is the wall time of the scan
	Duration time.Duration
}

// CountResult contains the outcome of CountAll.
type CountResult struct {
	Total    int64
	Folders  []string
	Errors   []*FolderError
	Duration time.Duration
}

type walkFunc func(root string, fn fs.WalkDirFunc) error

// Scanner walks every configured folder on a bounded worker pool.
type Scanner struct {
	src     ListSource
	policy  ExtensionPolicy
	log     logger.Logger
	workers int
	walk    walkFunc
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithWorkers bounds how many folders are walked at once. n < 1 means GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(s *Scanner) {
		if n > 0 {
			s.workers = n
		}
	}
}

// New creates a Scanner reading its folders and ban-words from src.
func New(src ListSource, policy ExtensionPolicy, log logger.Logger, opts ...Option) *Scanner {
	if log == nil {
		log = logger.Nop()
	}
	s := &Scanner{
		src:     src,
		policy:  policy,
		log:     log,
		workers: runtime.GOMAXPROCS(0),
		walk:    filepath.WalkDir,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ScanAll is Scan with a predicate that accepts everything.
func (s *Scanner) ScanAll(ctx context.Context) (*Result, error) {
	return s.Scan(ctx, AcceptAll)
}

// Scan walks every configured folder that exists and returns the files
// accepted by the filter chain built from the current configuration and pred.
// Configured entries that are not directories are skipped. A folder that
// fails to walk is logged, reported in Result.Errors and contributes nothing;
// the other folders are unaffected. Only an unloaded store or a cancelled
// context fails the whole scan.
func (s *Scanner) Scan(ctx context.Context, pred Predicate) (*Result, error) {
	if !s.src.Loaded() {
		return nil, store.ErrNotLoaded
	}
	start := time.Now()

	folders := s.existingFolders()
	banFolders := s.src.BanWordFolders()
	chain := NewFilterChain(s.policy, banFolders, s.src.BanWordExecutables(), pred)
	s.log.LogInfo(fmt.Sprintf("Scanning %d folders with %d workers", len(folders), s.workers))

	perFolder := make([][]string, len(folders))
	errs := make([]*FolderError, len(folders))

	err := s.forEachFolder(ctx, folders, func(ctx context.Context, i int, folder string) error {
		files, err := s.scanFolder(ctx, folder, chain, banFolders)
		if err != nil {
			return err
		}
		perFolder[i] = files
		s.log.LogDebug(fmt.Sprintf("Folder %s: %d matches", folder, len(files)))
		return nil
	}, errs)
	if err != nil {
		return nil, err
	}

	result := &Result{Folders: folders}
	for i := range folders {
		result.Files = append(result.Files, perFolder[i]...)
		if errs[i] != nil {
			result.Errors = append(result.Errors, errs[i])
		}
	}
	result.Duration = time.Since(start)

	s.log.LogInfo(fmt.Sprintf("Scan complete: %d matches, %d failed folders (%.1fs)",
		len(result.Files), len(result.Errors), result.Duration.Seconds()))
	return result, nil
}

// CountAll counts every entry under every configured folder, the folder
// itself included, without filtering or pruning. Failing folders count zero.
func (s *Scanner) CountAll(ctx context.Context) (*CountResult, error) {
	if !s.src.Loaded() {
		return nil, store.ErrNotLoaded
	}
	start := time.Now()

	folders := s.existingFolders()
	counts := make([]int64, len(folders))
	errs := make([]*FolderError, len(folders))

	err := s.forEachFolder(ctx, folders, func(ctx context.Context, i int, folder string) error {
		n, err := s.countFolder(ctx, folder)
		if err != nil {
			return err
		}
		counts[i] = n
		return nil
	}, errs)
	if err != nil {
		return nil, err
	}

	result := &CountResult{Folders: folders}
	for i := range folders {
		result.Total += counts[i]
		if errs[i] != nil {
			result.Errors = append(result.Errors, errs[i])
		}
	}
	result.Duration = time.Since(start)
	return result, nil
}

// forEachFolder runs fn for every folder on the worker pool. A folder error
// is recorded in errs[i] and logged; cancellation aborts the whole run.
func (s *Scanner) forEachFolder(ctx context.Context, folders []string,
	fn func(ctx context.Context, i int, folder string) error, errs []*FolderError) error {

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for i, folder := range folders {
		if gctx.Err() != nil {
			break
		}
		i, folder := i, folder
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			err := fn(gctx, i, folder)
			if err == nil {
				return nil
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			errs[i] = &FolderError{Folder: folder, Err: err}
			s.log.LogWarn(fmt.Sprintf("Skipping folder %s: %v", folder, err))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// existingFolders returns the configured folders that are directories,
// cleaned, in configured order.
func (s *Scanner) existingFolders() []string {
	var folders []string
	for _, f := range s.src.Folders() {
		info, err := os.Stat(f)
		if err != nil || !info.IsDir() {
			s.log.LogDebug(fmt.Sprintf("Ignoring configured folder %s: not a directory", f))
			continue
		}
		folders = append(folders, filepath.Clean(f))
	}
	return folders
}

func (s *Scanner) scanFolder(ctx context.Context, root string, chain *FilterChain, banFolders []string) ([]string, error) {
	walkRoot, err := s.resolveRoot(root)
	if err != nil {
		return nil, err
	}
	files := make([]string, 0)

	err = s.walk(walkRoot, func(walked string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			return err
		}
		path := underRoot(root, walkRoot, walked)

		if d.IsDir() {
			if path != root && FolderBanned(path, banFolders) {
				s.log.LogTrace(fmt.Sprintf("Pruning banned folder %s", path))
				return filepath.SkipDir
			}
			return nil
		}

		info, err := entryInfo(walked, d)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				// Vanished file or dangling symlink.
				return nil
			}
			return err
		}

		if chain.Accept(path, info) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

func (s *Scanner) countFolder(ctx context.Context, root string) (int64, error) {
	walkRoot, err := s.resolveRoot(root)
	if err != nil {
		return 0, err
	}
	var n int64
	err = s.walk(walkRoot, func(_ string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			return err
		}
		n++
		return nil
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

// resolveRoot follows symlinks in a configured folder so the walk descends
// into the directory it points to.
func (s *Scanner) resolveRoot(root string) (string, error) {
	resolved, err := filepath.EvalSymlinks(root)
	if err != nil {
		return "", err
	}
	if resolved != root {
		s.log.LogDebug(fmt.Sprintf("Folder %s resolves to %s", root, resolved))
	}
	return resolved, nil
}

// underRoot maps a path walked under walkRoot back under the configured root,
// so results keep the path the user configured.
func underRoot(root, walkRoot, walked string) string {
	if root == walkRoot {
		return walked
	}
	rel, err := filepath.Rel(walkRoot, walked)
	if err != nil {
		return walked
	}
	return filepath.Join(root, rel)
}

// entryInfo returns file info for a walked entry, following symlinks so a
// link to an executable is judged by its target. Links to directories are
// not descended into.
func entryInfo(path string, d fs.DirEntry) (fs.FileInfo, error) {
	if d.Type()&fs.ModeSymlink != 0 {
		return os.Stat(path)
	}
	return d.Info()
}
