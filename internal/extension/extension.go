// Package extension decides which file extensions count as launchable.
package extension

import (
	"path/filepath"
	"runtime"
	"sort"
	"strings"
)

// Policy is a case-insensitive whitelist of file extensions.
// The empty extension "" admits files without one.
type Policy struct {
	allowed map[string]bool
}

// New builds a Policy from extensions such as ".sh" or "exe".
// A leading dot is added when missing.
func New(exts ...string) *Policy {
	p := &Policy{allowed: make(map[string]bool, len(exts))}
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext != "" && !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		p.allowed[ext] = true
	}
	return p
}

// Default returns the policy for the running platform.
func Default() *Policy {
	return ForOS(runtime.GOOS)
}

// ForOS returns the default policy for goos.
func ForOS(goos string) *Policy {
	if goos == "windows" {
		return New(".exe", ".bat", ".cmd", ".com", ".lnk")
	}
	return New("", ".sh", ".appimage", ".run", ".bin")
}

// IsExtensionAllowed reports whether the extension of path is whitelisted.
func (p *Policy) IsExtensionAllowed(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return p.allowed[ext]
}

// Extensions returns the whitelisted extensions in sorted order.
func (p *Policy) Extensions() []string {
	out := make([]string, 0, len(p.allowed))
	for ext := range p.allowed {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}
