package store

import (
	_ "embed"
	"fmt"

	"github.com/harrison/launcher/internal/filelock"
)

// DefaultFileName is the store document name inside the launcher home.
const DefaultFileName = "data.json"

//go:embed preset.json
var presetJSON []byte

// DefaultPreset returns a copy of the bundled first-run document.
func DefaultPreset() []byte {
	out := make([]byte, len(presetJSON))
	copy(out, presetJSON)
	return out
}

// Bootstrap seeds path with preset, byte for byte, when path does not exist.
// It reports whether the file was seeded. An empty preset with no store file
// is ErrConfigNotFound. An existing store is never touched.
func Bootstrap(path string, preset []byte) (bool, error) {
	if len(preset) == 0 {
		if exists, err := fileExists(path); err != nil {
			return false, err
		} else if exists {
			return false, nil
		}
		return false, fmt.Errorf("%w: no store at %s and no preset document", ErrConfigNotFound, path)
	}

	seeded, err := filelock.SeedFile(path, preset)
	if err != nil {
		return false, fmt.Errorf("seed store %s: %w", path, err)
	}
	return seeded, nil
}
