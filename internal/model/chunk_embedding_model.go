package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

type ChunkEmbedding struct {
	Id             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ChunkKey       string          `gorm:"type:text;not null;uniqueIndex"`
	Document       string          `gorm:"type:text;not null"`
	EmbeddingValue pgvector.Vector `gorm:"type:vector(768)"`
	SourcePath     string          `gorm:"type:text;not null;index"`
	ChunkIndex     int             `gorm:"not null;default:0"`
	CreatedAt      time.Time       `gorm:"autoCreateTime"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime"`
}

func (ChunkEmbedding) TableName() string {
	return "chunk_embeddings"
}
