package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitShortTextSingleChunk(t *testing.T) {
	s := NewSplitter(1000, 200)

	chunks, err := s.Split("a short note about goblins")
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "a short note about goblins", chunks[0])
}

func TestSplitEmptyText(t *testing.T) {
	s := NewSplitter(1000, 200)

	chunks, err := s.Split("   \n\t  ")
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestSplitLongTextProducesOverlap(t *testing.T) {
	s := NewSplitter(100, 20)

	// One long paragraph with no natural breaks except spaces.
	text := strings.Repeat("the quick brown fox jumps over the lazy dog ", 20)

	chunks, err := s.Split(text)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)

	for _, c := range chunks {
		assert.LessOrEqual(t, len(c), 100)
	}

	// Consecutive chunks share overlapping content.
	tail := chunks[0][len(chunks[0])-10:]
	assert.Contains(t, chunks[1], strings.TrimSpace(tail))
}

func TestSplitPrefersParagraphBoundaries(t *testing.T) {
	s := NewSplitter(80, 0)

	text := "First paragraph about the northern wastes.\n\nSecond paragraph about the southern seas."

	chunks, err := s.Split(text)
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Contains(t, chunks[0], "northern wastes")
	assert.Contains(t, chunks[1], "southern seas")
}

func TestNewSplitterSanitizesBadConfig(t *testing.T) {
	// Overlap >= size would never advance; constructor clamps it.
	s := NewSplitter(100, 150)

	chunks, err := s.Split(strings.Repeat("word ", 100))
	require.NoError(t, err)
	assert.NotEmpty(t, chunks)
}
