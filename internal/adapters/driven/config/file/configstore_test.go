package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigStore_SetAndGet(t *testing.T) {
	dir := t.TempDir()
	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Set("ai.provider", "openai"))
	require.NoError(t, store.Set("scan.max_chunks", 64))
	require.NoError(t, store.Set("ask.score_threshold", 0.25))
	require.NoError(t, store.Set("scan.ignore_dirs", []string{".git", "node_modules"}))

	assert.Equal(t, "openai", store.GetString("ai.provider"))
	assert.Equal(t, 64, store.GetInt("scan.max_chunks"))
	assert.InDelta(t, 0.25, store.GetFloat("ask.score_threshold"), 1e-9)
	assert.Equal(t, []string{".git", "node_modules"}, store.GetStringSlice("scan.ignore_dirs"))
}

func TestConfigStore_MissingKeysReturnZeroValues(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "", store.GetString("nope"))
	assert.Equal(t, 0, store.GetInt("nope"))
	assert.Equal(t, 0.0, store.GetFloat("nope"))
	assert.Nil(t, store.GetStringSlice("nope"))

	_, ok := store.Get("nope")
	assert.False(t, ok)
}

func TestConfigStore_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Set("ai.model", "gpt-4o-mini"))

	reopened, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", reopened.GetString("ai.model"))
}

func TestConfigStore_FlattensNestedTables(t *testing.T) {
	dir := t.TempDir()
	content := "[ai]\nprovider = \"ollama\"\nmodel = \"llama3.2\"\n\n[scan]\nchunk_size = 1000\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0600))

	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	assert.Equal(t, "ollama", store.GetString("ai.provider"))
	assert.Equal(t, "llama3.2", store.GetString("ai.model"))
	assert.Equal(t, 1000, store.GetInt("scan.chunk_size"))
}

func TestConfigStore_Keys(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	assert.Empty(t, store.Keys())

	require.NoError(t, store.Set("ai.provider", "openai"))
	require.NoError(t, store.Set("ai.model", "gpt-4o-mini"))

	assert.ElementsMatch(t, []string{"ai.provider", "ai.model"}, store.Keys())
}

func TestConfigStore_GetFloatFromInteger(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("ask.score_threshold", 1))
	assert.InDelta(t, 1.0, store.GetFloat("ask.score_threshold"), 1e-9)
}
