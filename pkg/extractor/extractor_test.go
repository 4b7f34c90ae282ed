package extractor

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestExtractPlainText(t *testing.T) {
	path := writeTempFile(t, "notes.txt", "The dragon sleeps under the mountain.")

	text, err := Extract(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "The dragon sleeps under the mountain.", text)
}

func TestExtractMarkdown(t *testing.T) {
	path := writeTempFile(t, "lore.md", "# Lore\n\nThe old kingdom fell.")

	text, err := Extract(context.Background(), path)
	require.NoError(t, err)
	// Markdown is ingested raw; markers carry retrieval signal.
	assert.Contains(t, text, "# Lore")
	assert.Contains(t, text, "The old kingdom fell.")
}

func TestExtractCSV(t *testing.T) {
	path := writeTempFile(t, "monsters.csv", "name,cr\nGoblin,1\nOgre,2\n")

	text, err := Extract(context.Background(), path)
	require.NoError(t, err)
	assert.Contains(t, text, "name, cr")
	assert.Contains(t, text, "Goblin, 1")
	assert.Contains(t, text, "Ogre, 2")
}

func TestExtractCaseInsensitiveExtension(t *testing.T) {
	path := writeTempFile(t, "UPPER.TXT", "shouting")

	text, err := Extract(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "shouting", text)
}

func TestExtractUnsupportedType(t *testing.T) {
	path := writeTempFile(t, "sheet.xlsx", "binary-ish")

	_, err := Extract(context.Background(), path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestExtractMissingFile(t *testing.T) {
	_, err := Extract(context.Background(), filepath.Join(t.TempDir(), "nope.txt"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
