package mapper

import (
	"gm-shield-be/internal/entity"
	"gm-shield-be/internal/model"

	"gorm.io/datatypes"
)

type KnowledgeSourceMapper struct{}

func NewKnowledgeSourceMapper() *KnowledgeSourceMapper {
	return &KnowledgeSourceMapper{}
}

func (m *KnowledgeSourceMapper) ToEntity(s *model.KnowledgeSource) *entity.KnowledgeSource {
	if s == nil {
		return nil
	}

	return &entity.KnowledgeSource{
		Id:            s.Id,
		FilePath:      s.FilePath,
		Description:   s.Description,
		Status:        entity.SourceStatus(s.Status),
		Progress:      s.Progress,
		CurrentStep:   s.CurrentStep,
		ChunkCount:    s.ChunkCount,
		ErrorMessage:  s.ErrorMessage,
		StartedAt:     s.StartedAt,
		LastIndexedAt: s.LastIndexedAt,
		Features:      s.Features,
		RunGeneration: s.RunGeneration,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
}

func (m *KnowledgeSourceMapper) ToModel(s *entity.KnowledgeSource) *model.KnowledgeSource {
	if s == nil {
		return nil
	}

	return &model.KnowledgeSource{
		Id:            s.Id,
		FilePath:      s.FilePath,
		Description:   s.Description,
		Status:        string(s.Status),
		Progress:      s.Progress,
		CurrentStep:   s.CurrentStep,
		ChunkCount:    s.ChunkCount,
		ErrorMessage:  s.ErrorMessage,
		StartedAt:     s.StartedAt,
		LastIndexedAt: s.LastIndexedAt,
		Features:      datatypes.JSONSlice[string](s.Features),
		RunGeneration: s.RunGeneration,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
}

func (m *KnowledgeSourceMapper) ToEntities(sources []*model.KnowledgeSource) []*entity.KnowledgeSource {
	entities := make([]*entity.KnowledgeSource, len(sources))
	for i, s := range sources {
		entities[i] = m.ToEntity(s)
	}
	return entities
}

func (m *KnowledgeSourceMapper) ToModels(sources []*entity.KnowledgeSource) []*model.KnowledgeSource {
	models := make([]*model.KnowledgeSource, len(sources))
	for i, s := range sources {
		models[i] = m.ToModel(s)
	}
	return models
}
