package service

import (
	"context"
	"fmt"
	"time"

	"gm-shield-be/internal/dto"
	"gm-shield-be/internal/entity"
	"gm-shield-be/internal/repository/specification"
	"gm-shield-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

var ErrSourceNotFound = fmt.Errorf("source not found")

type IKnowledgeService interface {
	CreateOrRefresh(ctx context.Context, filePath, description string) (*entity.KnowledgeSource, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.SourceStatusResponse, error)
	List(ctx context.Context) (*dto.ListSourcesResponse, error)
	Stats(ctx context.Context) (*dto.KnowledgeStatsResponse, error)
	Delete(ctx context.Context, id uuid.UUID) (*dto.DeleteSourceResponse, error)
}

type knowledgeService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewKnowledgeService(uowFactory unitofwork.RepositoryFactory) IKnowledgeService {
	return &knowledgeService{
		uowFactory: uowFactory,
	}
}

// CreateOrRefresh registers a file for ingestion. An existing record is
// reset to pending with a bumped run generation; chunk history stays
// untouched until the next successful store step replaces it.
func (s *knowledgeService) CreateOrRefresh(ctx context.Context, filePath, description string) (*entity.KnowledgeSource, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.KnowledgeSourceRepository()

	existing, err := repo.FindOne(ctx, specification.ByFilePath{FilePath: filePath})
	if err != nil {
		return nil, err
	}

	if existing != nil {
		existing.Refresh(description)
		if err := repo.Update(ctx, existing); err != nil {
			return nil, err
		}
		return existing, nil
	}

	source := entity.KnowledgeSource{
		Id:          uuid.New(),
		FilePath:    filePath,
		Description: description,
		Status:      entity.SourceStatusPending,
		CreatedAt:   time.Now(),
	}
	if err := repo.Create(ctx, &source); err != nil {
		return nil, err
	}
	return &source, nil
}

func (s *knowledgeService) Get(ctx context.Context, id uuid.UUID) (*dto.SourceStatusResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	source, err := uow.KnowledgeSourceRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if source == nil {
		return nil, ErrSourceNotFound
	}
	resp := toSourceStatusResponse(source)
	return &resp, nil
}

func (s *knowledgeService) List(ctx context.Context) (*dto.ListSourcesResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	sources, err := uow.KnowledgeSourceRepository().FindAll(ctx, specification.OrderBy{Field: "created_at", Desc: true})
	if err != nil {
		return nil, err
	}

	resp := dto.ListSourcesResponse{Sources: make([]dto.SourceStatusResponse, len(sources))}
	for i, src := range sources {
		resp.Sources[i] = toSourceStatusResponse(src)
	}
	return &resp, nil
}

func (s *knowledgeService) Stats(ctx context.Context) (*dto.KnowledgeStatsResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	sourceCount, err := uow.KnowledgeSourceRepository().Count(ctx)
	if err != nil {
		return nil, err
	}
	chunkCount, err := uow.ChunkEmbeddingRepository().Count(ctx)
	if err != nil {
		return nil, err
	}

	return &dto.KnowledgeStatsResponse{
		SourceCount: sourceCount,
		ChunkCount:  chunkCount,
	}, nil
}

// Delete removes the vector chunks for the source's path first, then the
// registry record itself.
func (s *knowledgeService) Delete(ctx context.Context, id uuid.UUID) (*dto.DeleteSourceResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.KnowledgeSourceRepository()

	source, err := repo.FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if source == nil {
		return nil, ErrSourceNotFound
	}

	removed, err := uow.ChunkEmbeddingRepository().DeleteBySourcePath(ctx, source.FilePath)
	if err != nil {
		return nil, err
	}
	if err := repo.Delete(ctx, id); err != nil {
		return nil, err
	}

	return &dto.DeleteSourceResponse{
		Id:            id,
		ChunksRemoved: removed,
	}, nil
}

func toSourceStatusResponse(src *entity.KnowledgeSource) dto.SourceStatusResponse {
	return dto.SourceStatusResponse{
		Id:            src.Id,
		FilePath:      src.FilePath,
		Description:   src.Description,
		Status:        string(src.Status),
		Progress:      src.Progress,
		CurrentStep:   src.CurrentStep,
		ChunkCount:    src.ChunkCount,
		ErrorMessage:  src.ErrorMessage,
		StartedAt:     src.StartedAt,
		LastIndexedAt: src.LastIndexedAt,
		Features:      src.Features,
		CreatedAt:     src.CreatedAt,
	}
}
