package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arkive-labs/arkive-cli/internal/core/ports/driven"
)

func TestPromptStore_LoadsEmbeddedDefault(t *testing.T) {
	store, err := NewPromptStore(t.TempDir())
	require.NoError(t, err)

	prompt, err := store.Load(driven.PromptDescribeConcise)
	require.NoError(t, err)
	assert.Contains(t, prompt, "1-3 sentences")
}

func TestPromptStore_CreatesDefaultFilesLazily(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "prompts")
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	// No I/O before the first Load.
	_, statErr := os.Stat(dir)
	assert.True(t, os.IsNotExist(statErr))

	_, err = store.Load(driven.PromptAnswer)
	require.NoError(t, err)

	_, statErr = os.Stat(filepath.Join(dir, "answer.txt"))
	assert.NoError(t, statErr)
}

func TestPromptStore_UserFileOverridesDefault(t *testing.T) {
	dir := t.TempDir()
	custom := "Describe the file briefly."
	require.NoError(t, os.WriteFile(filepath.Join(dir, "describe_concise.txt"), []byte(custom+"\n"), 0600))

	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	prompt, err := store.Load(driven.PromptDescribeConcise)
	require.NoError(t, err)
	assert.Equal(t, custom, prompt)
}

func TestPromptStore_UnknownPromptFails(t *testing.T) {
	store, err := NewPromptStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Load("no_such_prompt")
	assert.Error(t, err)
}

func TestPromptStore_ReloadPicksUpEdits(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	first, err := store.Load(driven.PromptVisionConcise)
	require.NoError(t, err)

	edited := "Describe the picture."
	require.NoError(t, os.WriteFile(filepath.Join(dir, "vision_concise.txt"), []byte(edited), 0600))

	// Cached value until reload.
	cached, err := store.Load(driven.PromptVisionConcise)
	require.NoError(t, err)
	assert.Equal(t, first, cached)

	store.Reload()
	fresh, err := store.Load(driven.PromptVisionConcise)
	require.NoError(t, err)
	assert.Equal(t, edited, fresh)
}
