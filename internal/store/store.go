// Package store owns the launcher's persisted JSON document: the scan
// configuration lists, the catalog size cap and the application catalog.
//
// The document is read once by Load. Each list is decoded lazily on first
// access and then cached; the cached slice is the authoritative copy until the
// next Load. Replacing a list swaps the slice reference atomically, so
// concurrent readers observe either the old or the new contents. Slices
// returned by the store are shared and must not be modified by callers.
package store

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
	"sync/atomic"

	jsoniter "github.com/json-iterator/go"

	"github.com/harrison/launcher/internal/filelock"
	"github.com/harrison/launcher/internal/logger"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// DefaultMaxEntries applies when the document has no usable maxEntries.
const DefaultMaxEntries = 10

// ListName identifies one of the string lists in the document.
type ListName string

// Document keys of the string lists.
const (
	Folders            ListName = "folders"
	Executables        ListName = "executables"
	Blacklist          ListName = "blacklist"
	BanWordFolders     ListName = "banWordFolders"
	BanWordExecutables ListName = "banWordExecutables"
)

// Lists holds every list name in document order.
var Lists = []ListName{Folders, Executables, Blacklist, BanWordFolders, BanWordExecutables}

// ParseListName maps a document key to its ListName.
func ParseListName(s string) (ListName, error) {
	for _, name := range Lists {
		if string(name) == s {
			return name, nil
		}
	}
	return "", fmt.Errorf("unknown list %q", s)
}

// Record is one opaque application entry of the catalog.
type Record = map[string]any

// document is the on-disk layout written by Save, in field order.
type document struct {
	MaxEntries         int      `json:"maxEntries"`
	Folders            []string `json:"folders"`
	Executables        []string `json:"executables"`
	Blacklist          []string `json:"blacklist"`
	BanWordFolders     []string `json:"banWordFolders"`
	BanWordExecutables []string `json:"banWordExecutables"`
	Applications       []Record `json:"applications"`
}

// Store is the in-memory view of the store document.
type Store struct {
	path   string
	preset []byte
	log    logger.Logger

	mu         sync.Mutex
	raw        map[string]jsoniter.RawMessage
	maxEntries int
	loaded     bool
	lists      map[ListName]*atomic.Pointer[[]string]
	decodes    int
}

// Option configures a Store.
type Option func(*Store)

// WithPreset replaces the bundled preset used to seed a missing store.
// A nil or empty preset disables seeding.
func WithPreset(preset []byte) Option {
	return func(s *Store) {
		s.preset = preset
	}
}

// New creates a Store for the document at path. No I/O happens until Load.
func New(path string, log logger.Logger, opts ...Option) *Store {
	if log == nil {
		log = logger.Nop()
	}
	s := &Store{
		path:       path,
		preset:     presetJSON,
		log:        log,
		maxEntries: DefaultMaxEntries,
		lists:      make(map[ListName]*atomic.Pointer[[]string]),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the store document path.
func (s *Store) Path() string {
	return s.path
}

// Load seeds the store from the preset if needed, then reads and parses it.
// On failure the error is logged and returned and the store is left unloaded:
// no part of a broken document is exposed, and scans refuse to run until a
// later Load succeeds.
func (s *Store) Load() error {
	seeded, err := Bootstrap(s.path, s.preset)
	if err != nil {
		s.log.LogError(fmt.Sprintf("Store bootstrap failed: %v", err))
		s.unload()
		return err
	}
	if seeded {
		s.log.LogInfo(fmt.Sprintf("First launch: seeded %s from preset", s.path))
	}

	s.log.LogDebug(fmt.Sprintf("Parsing store %s", s.path))
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			err = fmt.Errorf("%w: %s", ErrConfigNotFound, s.path)
		} else {
			err = fmt.Errorf("read store %s: %w", s.path, err)
		}
		s.log.LogError(err.Error())
		s.unload()
		return err
	}

	raw, maxEntries, err := parseDocument(data)
	if err != nil {
		err = fmt.Errorf("%s: %w", s.path, err)
		s.log.LogError(fmt.Sprintf("Store parse failed: %v", err))
		s.unload()
		return err
	}

	s.mu.Lock()
	s.raw = raw
	s.maxEntries = maxEntries
	s.lists = make(map[ListName]*atomic.Pointer[[]string])
	s.loaded = true
	s.mu.Unlock()

	return nil
}

func (s *Store) unload() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.raw = nil
	s.maxEntries = DefaultMaxEntries
	s.lists = make(map[ListName]*atomic.Pointer[[]string])
	s.loaded = false
}

// parseDocument splits the document into its top-level keys and resolves
// maxEntries. The applications key, when present, must be an array of objects.
func parseDocument(data []byte) (map[string]jsoniter.RawMessage, int, error) {
	var raw map[string]jsoniter.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}
	if raw == nil {
		return nil, 0, fmt.Errorf("%w: document is not a JSON object", ErrConfigParse)
	}

	maxEntries := DefaultMaxEntries
	if v, ok := raw["maxEntries"]; ok && !isNull(v) {
		var n int
		if err := json.Unmarshal(v, &n); err != nil {
			return nil, 0, fmt.Errorf("%w: maxEntries: %v", ErrConfigParse, err)
		}
		if n > 0 {
			maxEntries = n
		}
	}

	if v, ok := raw["applications"]; ok && !isNull(v) {
		var records []Record
		if err := json.Unmarshal(v, &records); err != nil {
			return nil, 0, fmt.Errorf("%w: applications must be an array of records: %v", ErrConfigParse, err)
		}
	}

	return raw, maxEntries, nil
}

// isNull reports whether v is a JSON null. The decoder hands back an empty
// RawMessage for null values.
func isNull(v jsoniter.RawMessage) bool {
	trimmed := bytes.TrimSpace(v)
	return len(trimmed) == 0 || string(trimmed) == "null"
}

// Loaded reports whether a Load has succeeded.
func (s *Store) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

// MaxEntries returns the catalog cap resolved by the last successful Load.
func (s *Store) MaxEntries() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.maxEntries
}

// List returns the named list, decoding it from the document on first access.
// A missing or malformed key yields an empty list. An unloaded store returns
// an empty list without caching it.
func (s *Store) List(name ListName) []string {
	slot := s.slot(name)
	if slot == nil {
		return []string{}
	}
	return *slot.Load()
}

// SetList replaces the named list with a copy of values. Nothing is written to disk.
func (s *Store) SetList(name ListName, values []string) {
	replacement := make([]string, len(values))
	copy(replacement, values)

	s.mu.Lock()
	defer s.mu.Unlock()

	slot, ok := s.lists[name]
	if !ok {
		slot = new(atomic.Pointer[[]string])
		s.lists[name] = slot
	}
	slot.Store(&replacement)
}

func (s *Store) slot(name ListName) *atomic.Pointer[[]string] {
	s.mu.Lock()
	defer s.mu.Unlock()

	if slot, ok := s.lists[name]; ok {
		return slot
	}
	if !s.loaded {
		return nil
	}

	values := s.decodeList(name)
	slot := new(atomic.Pointer[[]string])
	slot.Store(&values)
	s.lists[name] = slot
	return slot
}

// decodeList must be called with s.mu held.
func (s *Store) decodeList(name ListName) []string {
	s.decodes++

	v, ok := s.raw[string(name)]
	if !ok || isNull(v) {
		return []string{}
	}

	var values []string
	if err := json.Unmarshal(v, &values); err != nil {
		s.log.LogWarn(fmt.Sprintf("Store key %q is not a list of strings, using an empty list: %v", name, err))
		return []string{}
	}
	if values == nil {
		values = []string{}
	}
	return values
}

// Folders returns the directories to scan.
func (s *Store) Folders() []string { return s.List(Folders) }

// SetFolders replaces the directories to scan.
func (s *Store) SetFolders(values []string) { s.SetList(Folders, values) }

// Executables returns previously confirmed executable paths.
func (s *Store) Executables() []string { return s.List(Executables) }

// SetExecutables replaces the confirmed executable paths.
func (s *Store) SetExecutables(values []string) { s.SetList(Executables, values) }

// Blacklist returns paths excluded from the catalog.
func (s *Store) Blacklist() []string { return s.List(Blacklist) }

// SetBlacklist replaces the excluded paths.
func (s *Store) SetBlacklist(values []string) { s.SetList(Blacklist, values) }

// BanWordFolders returns the folder ban-words.
func (s *Store) BanWordFolders() []string { return s.List(BanWordFolders) }

// SetBanWordFolders replaces the folder ban-words.
func (s *Store) SetBanWordFolders(values []string) { s.SetList(BanWordFolders, values) }

// BanWordExecutables returns the executable ban-words.
func (s *Store) BanWordExecutables() []string { return s.List(BanWordExecutables) }

// SetBanWordExecutables replaces the executable ban-words.
func (s *Store) SetBanWordExecutables(values []string) { s.SetList(BanWordExecutables, values) }

// Applications decodes the catalog records of the loaded document.
func (s *Store) Applications() ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		return nil, ErrNotLoaded
	}
	v, ok := s.raw["applications"]
	if !ok || isNull(v) {
		return []Record{}, nil
	}
	var records []Record
	if err := json.Unmarshal(v, &records); err != nil {
		return nil, fmt.Errorf("%w: applications: %v", ErrConfigParse, err)
	}
	return records, nil
}

// Save writes maxEntries, every list and the given records as one document,
// replacing the store file atomically under its lock file. A failed write
// leaves the previous file and the in-memory state unchanged.
func (s *Store) Save(records []Record) error {
	if !s.Loaded() {
		return ErrNotLoaded
	}
	if records == nil {
		records = []Record{}
	}

	s.log.LogInfo(fmt.Sprintf("Saving store %s", s.path))
	doc := document{
		MaxEntries:         s.MaxEntries(),
		Folders:            s.Folders(),
		Executables:        s.Executables(),
		Blacklist:          s.Blacklist(),
		BanWordFolders:     s.BanWordFolders(),
		BanWordExecutables: s.BanWordExecutables(),
		Applications:       records,
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		err = fmt.Errorf("%w: encode store: %v", ErrPersistence, err)
		s.log.LogError(err.Error())
		return err
	}

	err = filelock.LockAndWriteNotify(s.path, data, func(lockPath string) {
		s.log.LogWarn(fmt.Sprintf("Store is locked by another process, waiting for %s", lockPath))
	})
	if err != nil {
		err = fmt.Errorf("%w: %v", ErrPersistence, err)
		s.log.LogError(fmt.Sprintf("Store save failed: %v", err))
		return err
	}

	// Keep Applications() in step with what is now on disk.
	if raw, _, err := parseDocument(data); err == nil {
		s.mu.Lock()
		s.raw = raw
		s.mu.Unlock()
	}
	return nil
}

func fileExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("stat %s: %w", path, err)
}
