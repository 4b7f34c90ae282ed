package entity

import (
	"time"

	"github.com/google/uuid"
)

type ChunkEmbedding struct {
	Id             uuid.UUID
	ChunkKey       string
	Document       string
	EmbeddingValue []float32
	SourcePath     string
	ChunkIndex     int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ScoredChunk is a chunk annotated with a cosine similarity score
// against a query vector.
type ScoredChunk struct {
	Chunk ChunkEmbedding
	Score float64
}
