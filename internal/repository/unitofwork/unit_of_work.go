package unitofwork

import (
	"context"

	"gm-shield-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	KnowledgeSourceRepository() contract.KnowledgeSourceRepository
	ChunkEmbeddingRepository() contract.ChunkEmbeddingRepository
}
