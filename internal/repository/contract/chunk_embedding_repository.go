package contract

import (
	"context"

	"gm-shield-be/internal/entity"
	"gm-shield-be/internal/repository/specification"

	"github.com/google/uuid"
)

// ScoredChunkEmbedding wraps a chunk with its cosine similarity score
type ScoredChunkEmbedding struct {
	Chunk      *entity.ChunkEmbedding
	Similarity float64 // 0.0 to 1.0 (1.0 = identical)
}

type ChunkEmbeddingRepository interface {
	Create(ctx context.Context, chunk *entity.ChunkEmbedding) error
	CreateBulk(ctx context.Context, chunks []*entity.ChunkEmbedding) error
	DeleteByIDs(ctx context.Context, ids []uuid.UUID) (int64, error)
	DeleteBySourcePath(ctx context.Context, sourcePath string) (int64, error)
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChunkEmbedding, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChunkEmbedding, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// FindIDsBySourcePath collects the ids of all chunks currently stored
	// for a source, used to replace them atomically from the caller's view.
	FindIDsBySourcePath(ctx context.Context, sourcePath string) ([]uuid.UUID, error)
	DistinctSourcePaths(ctx context.Context) ([]string, error)
	// SearchSimilarWithScore returns the nearest chunks by cosine
	// similarity. A missing table yields an empty result, not an error.
	SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int) ([]*ScoredChunkEmbedding, error)
	// SearchByKeywords returns chunks whose document matches any of the
	// given keywords case-insensitively.
	SearchByKeywords(ctx context.Context, keywords []string, limit int) ([]*entity.ChunkEmbedding, error)
}
