package scan

import (
	"io/fs"
	"runtime"
)

// executeBitsEnforced is false where file modes carry no execute bits
// (Windows). There every regular file passes stage 1 and the extension
// whitelist alone decides.
var executeBitsEnforced = runtime.GOOS != "windows"

// Predicate is a caller-supplied filter over candidate paths.
type Predicate func(path string) bool

// AcceptAll is the default Predicate.
func AcceptAll(string) bool { return true }

// ExtensionPolicy decides which file extensions are launchable.
type ExtensionPolicy interface {
	IsExtensionAllowed(path string) bool
}

type stage struct {
	name  string
	check func(path string, info fs.FileInfo) bool
}

// FilterChain is the ordered, short-circuiting set of checks applied to every
// candidate path. A path is accepted only if every stage passes; stages after
// the first failing one are not evaluated.
type FilterChain struct {
	stages []stage
}

// NewFilterChain builds the chain:
//  1. regular file with an execute bit set (any regular file on Windows)
//  2. extension allowed by policy
//  3. not a directory whose path contains a folder ban-word
//  4. not a regular file whose name contains an executable ban-word
//  5. the custom predicate (nil accepts everything)
//
// Stage 3 can never reject anything that passed stage 1. Banned folders are
// pruned by the walker before their contents are visited; the stage is kept
// so the chain stays usable on its own, e.g. over directory entries.
func NewFilterChain(policy ExtensionPolicy, banFolders, banExecutables []string, custom Predicate) *FilterChain {
	if custom == nil {
		custom = AcceptAll
	}
	folders := append([]string(nil), banFolders...)
	executables := append([]string(nil), banExecutables...)

	return &FilterChain{stages: []stage{
		{name: "executable-file", check: func(_ string, info fs.FileInfo) bool {
			return IsExecutableFile(info)
		}},
		{name: "extension-allowed", check: func(path string, _ fs.FileInfo) bool {
			return policy == nil || policy.IsExtensionAllowed(path)
		}},
		{name: "folder-not-banned", check: func(path string, info fs.FileInfo) bool {
			return !(info.IsDir() && FolderBanned(path, folders))
		}},
		{name: "executable-not-banned", check: func(path string, info fs.FileInfo) bool {
			return !(info.Mode().IsRegular() && ExecutableBanned(path, executables))
		}},
		{name: "custom", check: func(path string, _ fs.FileInfo) bool {
			return custom(path)
		}},
	}}
}

// Accept evaluates the chain for one path.
func (c *FilterChain) Accept(path string, info fs.FileInfo) bool {
	for _, st := range c.stages {
		if !st.check(path, info) {
			return false
		}
	}
	return true
}

// Stages returns the stage names in evaluation order.
func (c *FilterChain) Stages() []string {
	names := make([]string, len(c.stages))
	for i, st := range c.stages {
		names[i] = st.name
	}
	return names
}

// IsExecutableFile reports whether info describes a regular file with any
// execute permission bit set. On Windows any regular file qualifies.
func IsExecutableFile(info fs.FileInfo) bool {
	if info == nil {
		return false
	}
	mode := info.Mode()
	if !mode.IsRegular() {
		return false
	}
	return !executeBitsEnforced || mode.Perm()&0o111 != 0
}
