package contract

import (
	"context"

	"gm-shield-be/internal/entity"
	"gm-shield-be/internal/repository/specification"

	"github.com/google/uuid"
)

type KnowledgeSourceRepository interface {
	Create(ctx context.Context, source *entity.KnowledgeSource) error
	Update(ctx context.Context, source *entity.KnowledgeSource) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.KnowledgeSource, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.KnowledgeSource, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)

	// UpdateRunState applies partial progress fields to a source, but only
	// when the stored run_generation still matches generation. Returns the
	// number of rows touched so callers can detect a superseded run.
	UpdateRunState(ctx context.Context, id uuid.UUID, generation int, fields map[string]interface{}) (int64, error)
}
