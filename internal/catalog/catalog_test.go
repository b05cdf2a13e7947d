package catalog

import (
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/launcher/internal/logger"
	"github.com/harrison/launcher/internal/store"
)

func TestNewApplication(t *testing.T) {
	app := NewApplication("/opt/tools/deploy.sh")

	assert.Equal(t, "deploy", app.Name)
	assert.Equal(t, "/opt/tools/deploy.sh", app.Path)
	_, err := uuid.Parse(app.ID)
	assert.NoError(t, err)
}

func TestAddDeduplicatesAndCaps(t *testing.T) {
	lib := NewLibrary(2)

	assert.True(t, lib.Add("/usr/bin/vim"))
	assert.False(t, lib.Add("/usr/bin/vim"), "duplicate path")
	assert.True(t, lib.Add("/usr/bin/git"))
	assert.False(t, lib.Add("/usr/bin/make"), "library is full")

	assert.Equal(t, []string{"/usr/bin/vim", "/usr/bin/git"}, lib.Paths())
}

func TestUncappedLibrary(t *testing.T) {
	lib := NewLibrary(0)
	for i := 0; i < 50; i++ {
		lib.Add(filepath.Join("/bin", string(rune('a'+i%26)), "x"))
	}
	assert.Equal(t, 26, lib.Len())
}

func TestMergeHonorsBlacklist(t *testing.T) {
	lib := NewLibrary(10)

	added := lib.Merge(
		[]string{"/usr/bin/vim", "/usr/bin/ed", "/usr/bin/git", "/usr/bin/vim"},
		[]string{"/usr/bin/ed"},
	)

	assert.Equal(t, 2, added)
	assert.Equal(t, []string{"/usr/bin/vim", "/usr/bin/git"}, lib.Paths())
}

func TestRecordsRoundTrip(t *testing.T) {
	lib := NewLibrary(5)
	lib.Add("/usr/bin/vim")
	lib.Add("/opt/code/code")

	records := lib.ToPersistableRecords()
	require.Len(t, records, 2)

	rebuilt := FromRecords(records, 5)
	assert.Equal(t, lib.Applications(), rebuilt.Applications())
}

func TestFromRecordsSkipsAndRepairs(t *testing.T) {
	records := []store.Record{
		{"name": "no path"},
		{"path": "/usr/bin/htop", "id": "not-a-uuid"},
		{"path": "/usr/bin/top", "name": "Top", "id": "6f1c1c5e-8c1e-4a0e-9d0b-2f3c7d1e2a4b"},
		{"path": 42},
	}

	lib := FromRecords(records, 10)
	apps := lib.Applications()

	require.Len(t, apps, 2)
	assert.Equal(t, "htop", apps[0].Name)
	assert.NotEqual(t, "not-a-uuid", apps[0].ID)
	assert.Equal(t, "Top", apps[1].Name)
	assert.Equal(t, "6f1c1c5e-8c1e-4a0e-9d0b-2f3c7d1e2a4b", apps[1].ID)
}

func TestLibraryPersistsThroughStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), store.DefaultFileName)
	s := store.New(path, logger.Nop(), store.WithPreset([]byte(`{"maxEntries":3}`)))
	require.NoError(t, s.Load())

	lib := NewLibrary(s.MaxEntries())
	lib.Merge([]string{"/usr/bin/a", "/usr/bin/b"}, nil)
	require.NoError(t, store.Persist(s, lib))

	reloaded := store.New(path, logger.Nop())
	require.NoError(t, reloaded.Load())
	records, err := reloaded.Applications()
	require.NoError(t, err)

	restored := FromRecords(records, reloaded.MaxEntries())
	assert.Equal(t, lib.Applications(), restored.Applications())
}
