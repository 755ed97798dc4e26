package install

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wavescribe/wavescribe/internal/recommend"
)

func TestDefaultCatalogCoversAllSizes(t *testing.T) {
	c := DefaultCatalog()
	sizes := []recommend.ModelSize{
		recommend.ModelTiny, recommend.ModelBase, recommend.ModelSmall,
		recommend.ModelMedium, recommend.ModelLarge,
	}
	for _, size := range sizes {
		preset, ok := c.PresetFor(size)
		require.True(t, ok, "size %s", size)
		assert.NotEmpty(t, preset.URL, "size %s", size)
		assert.NotEmpty(t, preset.FileName, "size %s", size)
		assert.Positive(t, preset.SizeBytes, "size %s", size)
	}
}

func TestPresetForLargeResolvesRevision(t *testing.T) {
	preset, ok := DefaultCatalog().PresetFor(recommend.ModelLarge)
	require.True(t, ok)
	assert.Contains(t, preset.Name, "large")
}

func TestLoadCatalogOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "models.yaml")
	override := `models:
  - name: base
    file: ggml-base.bin
    url: https://models.internal.example/ggml-base.bin
    size_bytes: 147900000
`
	require.NoError(t, os.WriteFile(path, []byte(override), 0644))

	c, err := LoadCatalog(path)
	require.NoError(t, err)
	require.Len(t, c.Models, 1)

	preset, ok := c.PresetFor(recommend.ModelBase)
	require.True(t, ok)
	assert.Equal(t, "https://models.internal.example/ggml-base.bin", preset.URL)

	// Single-entry catalogs answer for every size
	preset, ok = c.PresetFor(recommend.ModelLarge)
	require.True(t, ok)
	assert.Equal(t, "base", preset.Name)
}

func TestLoadCatalogEmptyPathUsesBuiltin(t *testing.T) {
	c, err := LoadCatalog("")
	require.NoError(t, err)
	assert.Equal(t, DefaultCatalog(), c)
}

func TestLoadCatalogErrors(t *testing.T) {
	_, err := LoadCatalog(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("models: {not: a list}"), 0644))
	_, err = LoadCatalog(bad)
	assert.Error(t, err)

	empty := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("models: []"), 0644))
	_, err = LoadCatalog(empty)
	assert.Error(t, err)
}

func TestTargetInstalledPredicate(t *testing.T) {
	dirs := testDirs(t)
	target, ok := TargetByID(dirs, AudioDownloader)
	require.True(t, ok)

	assert.False(t, target.Installed(), "missing file")

	require.NoError(t, os.MkdirAll(filepath.Dir(target.BinaryPath), 0750))
	require.NoError(t, os.WriteFile(target.BinaryPath, nil, 0755))
	assert.False(t, target.Installed(), "zero-byte file is a failed install")

	require.NoError(t, os.WriteFile(target.BinaryPath, []byte("bin"), 0755))
	assert.True(t, target.Installed())
}
