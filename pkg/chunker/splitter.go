package chunker

import (
	"strings"

	"github.com/tmc/langchaingo/textsplitter"
)

// Splitter splits raw text into overlapping segments, preferring paragraph
// and sentence boundaries over hard character cuts.
type Splitter struct {
	chunkSize    int
	chunkOverlap int
}

func NewSplitter(chunkSize, chunkOverlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = 1000
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		chunkOverlap = chunkSize / 5
	}
	return &Splitter{
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
	}
}

// Split returns the overlapping chunks of text. Empty or whitespace-only
// input yields no chunks.
func (s *Splitter) Split(text string) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	sp := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(s.chunkSize),
		textsplitter.WithChunkOverlap(s.chunkOverlap),
		// Paragraphs first, then lines, then words as a last resort.
		textsplitter.WithSeparators([]string{"\n\n", "\n", " ", ""}),
	)

	chunks, err := sp.SplitText(text)
	if err != nil {
		return nil, err
	}

	// The splitter can emit whitespace-only fragments around collapsed
	// separators; those carry no retrieval value.
	out := chunks[:0]
	for _, c := range chunks {
		if strings.TrimSpace(c) != "" {
			out = append(out, c)
		}
	}
	return out, nil
}
