package preset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeJSON(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	dataDir := t.TempDir()
	writeJSON(t, filepath.Join(dataDir, "presets", "mapping.template.json"), `{"columns":{}}`)
	writeJSON(t, filepath.Join(dataDir, "presets", "uni.mapping.json"), `{"columns":{"summary":"Unit"}}`)
	writeJSON(t, filepath.Join(dataDir, "presets", "team", "uni.filters.json"), `{"filters":{}}`)
	writeJSON(t, filepath.Join(dataDir, "proprietary", "presets", "client.mapping.json"), `{"columns":{"summary":"Course"}}`)
	return NewStore(dataDir), dataDir
}

func TestList(t *testing.T) {
	store, _ := newTestStore(t)

	mappings, filters, err := store.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"client", "mapping.template", "uni"}, mappings)
	assert.Equal(t, []string{"team/uni"}, filters)
}

func TestList_SkipsProprietarySubtreeInPublicRoot(t *testing.T) {
	store, dataDir := newTestStore(t)
	writeJSON(t, filepath.Join(dataDir, "presets", "Proprietary", "hidden.mapping.json"), `{}`)

	mappings, _, err := store.List()
	require.NoError(t, err)
	assert.NotContains(t, mappings, "Proprietary/hidden")
}

func TestLoad_ByRelativePath(t *testing.T) {
	store, _ := newTestStore(t)

	got, err := store.Load("team/uni.filters.json")
	require.NoError(t, err)
	assert.Contains(t, got, "filters")
}

func TestLoad_ByBasename(t *testing.T) {
	store, _ := newTestStore(t)

	got, err := store.Load("client.mapping.json")
	require.NoError(t, err)
	columns, ok := got["columns"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Course", columns["summary"])
}

func TestLoad_Ambiguous(t *testing.T) {
	store, dataDir := newTestStore(t)
	writeJSON(t, filepath.Join(dataDir, "presets", "other", "uni.mapping.json"), `{}`)

	_, err := store.Load("uni.mapping.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ambiguous")
	assert.Contains(t, err.Error(), "other/uni.mapping.json")
}

func TestLoad_NotFound(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Load("nope.mapping.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestLoadFile_BadJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o644))

	_, err := LoadFile(path)
	require.Error(t, err)
}

func TestStore_MissingRootsAreIgnored(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "missing"))

	mappings, filters, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, mappings)
	assert.Empty(t, filters)

	_, err = store.Load("anything.mapping.json")
	require.Error(t, err)
}
