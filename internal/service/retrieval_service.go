package service

import (
	"context"
	"sort"

	"gm-shield-be/internal/dto"
	"gm-shield-be/internal/repository/contract"
	"gm-shield-be/internal/repository/unitofwork"
	"gm-shield-be/pkg/embedding"
	"gm-shield-be/pkg/keyword"
)

const defaultTopK = 5

type IRetrievalService interface {
	Search(ctx context.Context, query string, topK int) (*dto.SearchResponse, error)
	// SearchRelated merges semantic candidates with keyword-overlap
	// candidates and ranks by (similarity, overlap) descending.
	SearchRelated(ctx context.Context, req *dto.RelatedSearchRequest) (*dto.RelatedSearchResponse, error)
}

type retrievalService struct {
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.EmbeddingProvider
}

func NewRetrievalService(
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.EmbeddingProvider,
) IRetrievalService {
	return &retrievalService{
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
	}
}

func (s *retrievalService) Search(ctx context.Context, query string, topK int) (*dto.SearchResponse, error) {
	if topK <= 0 {
		topK = defaultTopK
	}

	// Query vectors must come from the same model as document vectors.
	queryEmbedding, err := s.embeddingProvider.Generate(query, embedding.TaskTypeQuery)
	if err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	scored, err := uow.ChunkEmbeddingRepository().SearchSimilarWithScore(ctx, queryEmbedding.Embedding.Values, topK)
	if err != nil {
		return nil, err
	}

	resp := dto.SearchResponse{
		Query:   query,
		Results: make([]dto.SearchResult, len(scored)),
	}
	for i, sc := range scored {
		resp.Results[i] = dto.SearchResult{
			ChunkKey:   sc.Chunk.ChunkKey,
			Document:   sc.Chunk.Document,
			SourcePath: sc.Chunk.SourcePath,
			ChunkIndex: sc.Chunk.ChunkIndex,
			Score:      sc.Similarity,
		}
	}
	return &resp, nil
}

func (s *retrievalService) SearchRelated(ctx context.Context, req *dto.RelatedSearchRequest) (*dto.RelatedSearchResponse, error) {
	topK := req.TopK
	if topK <= 0 {
		topK = defaultTopK
	}

	queryEmbedding, err := s.embeddingProvider.Generate(req.Content, embedding.TaskTypeQuery)
	if err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.ChunkEmbeddingRepository()

	// Semantic candidates, over-fetched so the merge has room to rerank.
	scored, err := repo.SearchSimilarWithScore(ctx, queryEmbedding.Embedding.Values, topK*2)
	if err != nil {
		return nil, err
	}

	keywords := keyword.Extract(req.Content)

	type candidate struct {
		chunk   *contract.ScoredChunkEmbedding
		overlap int
	}
	merged := make(map[string]*candidate)
	for _, sc := range scored {
		merged[sc.Chunk.ChunkKey] = &candidate{
			chunk:   sc,
			overlap: keyword.Overlap(req.Content, sc.Chunk.Document),
		}
	}

	// Keyword candidates the vector search missed enter with zero
	// similarity and compete on overlap alone.
	lexical, err := repo.SearchByKeywords(ctx, keywords, topK*2)
	if err != nil {
		return nil, err
	}
	for _, chunk := range lexical {
		if _, ok := merged[chunk.ChunkKey]; ok {
			continue
		}
		merged[chunk.ChunkKey] = &candidate{
			chunk:   &contract.ScoredChunkEmbedding{Chunk: chunk, Similarity: 0},
			overlap: keyword.Overlap(req.Content, chunk.Document),
		}
	}

	candidates := make([]*candidate, 0, len(merged))
	for _, c := range merged {
		candidates = append(candidates, c)
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].chunk.Similarity != candidates[j].chunk.Similarity {
			return candidates[i].chunk.Similarity > candidates[j].chunk.Similarity
		}
		return candidates[i].overlap > candidates[j].overlap
	})
	if len(candidates) > topK {
		candidates = candidates[:topK]
	}

	resp := dto.RelatedSearchResponse{
		Query:   req.Content,
		Results: make([]dto.RelatedSearchResult, len(candidates)),
	}
	for i, c := range candidates {
		resp.Results[i] = dto.RelatedSearchResult{
			ChunkKey:       c.chunk.Chunk.ChunkKey,
			Document:       c.chunk.Chunk.Document,
			SourcePath:     c.chunk.Chunk.SourcePath,
			Score:          c.chunk.Similarity,
			KeywordOverlap: c.overlap,
		}
	}
	return &resp, nil
}
