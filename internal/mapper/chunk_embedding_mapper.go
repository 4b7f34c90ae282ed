package mapper

import (
	"gm-shield-be/internal/entity"
	"gm-shield-be/internal/model"

	"github.com/pgvector/pgvector-go"
)

type ChunkEmbeddingMapper struct{}

func NewChunkEmbeddingMapper() *ChunkEmbeddingMapper {
	return &ChunkEmbeddingMapper{}
}

func (m *ChunkEmbeddingMapper) ToEntity(c *model.ChunkEmbedding) *entity.ChunkEmbedding {
	if c == nil {
		return nil
	}

	return &entity.ChunkEmbedding{
		Id:             c.Id,
		ChunkKey:       c.ChunkKey,
		Document:       c.Document,
		EmbeddingValue: c.EmbeddingValue.Slice(),
		SourcePath:     c.SourcePath,
		ChunkIndex:     c.ChunkIndex,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

func (m *ChunkEmbeddingMapper) ToModel(c *entity.ChunkEmbedding) *model.ChunkEmbedding {
	if c == nil {
		return nil
	}

	return &model.ChunkEmbedding{
		Id:             c.Id,
		ChunkKey:       c.ChunkKey,
		Document:       c.Document,
		EmbeddingValue: pgvector.NewVector(c.EmbeddingValue),
		SourcePath:     c.SourcePath,
		ChunkIndex:     c.ChunkIndex,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

func (m *ChunkEmbeddingMapper) ToEntities(chunks []*model.ChunkEmbedding) []*entity.ChunkEmbedding {
	entities := make([]*entity.ChunkEmbedding, len(chunks))
	for i, c := range chunks {
		entities[i] = m.ToEntity(c)
	}
	return entities
}

func (m *ChunkEmbeddingMapper) ToModels(chunks []*entity.ChunkEmbedding) []*model.ChunkEmbedding {
	models := make([]*model.ChunkEmbedding, len(chunks))
	for i, c := range chunks {
		models[i] = m.ToModel(c)
	}
	return models
}
