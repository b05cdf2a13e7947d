// Package catalog holds the launcher's application entries and converts them
// to and from the records persisted in the store.
package catalog

import (
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/harrison/launcher/internal/store"
)

// Application is one launchable entry.
type Application struct {
	ID   string
	Name string
	Path string
}

// NewApplication creates an entry for path with a fresh ID.
// The name is the file name without its extension.
func NewApplication(path string) Application {
	base := filepath.Base(path)
	return Application{
		ID:   uuid.New().String(),
		Name: strings.TrimSuffix(base, filepath.Ext(base)),
		Path: path,
	}
}

// Library is an ordered, capped set of applications keyed by path.
type Library struct {
	mu     sync.RWMutex
	max    int
	apps   []Application
	byPath map[string]int
}

// NewLibrary creates an empty library holding at most max entries (max < 1 means no cap).
func NewLibrary(max int) *Library {
	return &Library{
		max:    max,
		byPath: make(map[string]int),
	}
}

// FromRecords rebuilds a library from persisted records. Records without a
// path are skipped; records with a missing or invalid id get a new one.
func FromRecords(records []store.Record, max int) *Library {
	lib := NewLibrary(max)
	for _, r := range records {
		path, _ := r["path"].(string)
		if path == "" {
			continue
		}
		app := NewApplication(path)
		if name, ok := r["name"].(string); ok && name != "" {
			app.Name = name
		}
		if id, ok := r["id"].(string); ok {
			if _, err := uuid.Parse(id); err == nil {
				app.ID = id
			}
		}
		lib.add(app)
	}
	return lib
}

// Add inserts an entry for path. It reports false when the path is already
// present or the library is full.
func (l *Library) Add(path string) bool {
	return l.add(NewApplication(path))
}

func (l *Library) add(app Application) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.byPath[app.Path]; ok {
		return false
	}
	if l.max > 0 && len(l.apps) >= l.max {
		return false
	}
	l.byPath[app.Path] = len(l.apps)
	l.apps = append(l.apps, app)
	return true
}

// Merge adds every path not on the blacklist and returns how many were added.
func (l *Library) Merge(paths []string, blacklist []string) int {
	banned := make(map[string]bool, len(blacklist))
	for _, b := range blacklist {
		banned[b] = true
	}

	added := 0
	for _, p := range paths {
		if banned[p] {
			continue
		}
		if l.Add(p) {
			added++
		}
	}
	return added
}

// Len returns the number of entries.
func (l *Library) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.apps)
}

// Applications returns a copy of the entries in insertion order.
func (l *Library) Applications() []Application {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Application, len(l.apps))
	copy(out, l.apps)
	return out
}

// Paths returns the entry paths in insertion order.
func (l *Library) Paths() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]string, len(l.apps))
	for i, app := range l.apps {
		out[i] = app.Path
	}
	return out
}

// ToPersistableRecords converts the entries to store records.
func (l *Library) ToPersistableRecords() []store.Record {
	l.mu.RLock()
	defer l.mu.RUnlock()

	records := make([]store.Record, len(l.apps))
	for i, app := range l.apps {
		records[i] = store.Record{
			"id":   app.ID,
			"name": app.Name,
			"path": app.Path,
		}
	}
	return records
}
