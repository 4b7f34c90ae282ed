package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"gm-shield-be/internal/entity"
	"gm-shield-be/internal/progress"
	"gm-shield-be/internal/repository/contract"
	"gm-shield-be/internal/repository/specification"
	"gm-shield-be/internal/repository/unitofwork"
	"gm-shield-be/pkg/embedding"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// In-memory doubles for the persistence layer. They interpret the
// specification structs the real gorm implementations translate to SQL.

type fakeSourceRepo struct {
	mu      sync.Mutex
	records map[uuid.UUID]*entity.KnowledgeSource

	// bumpAfterFirstWrite simulates a refresh racing the run: after the
	// first guarded write the stored generation moves ahead.
	bumpAfterFirstWrite bool
	writes              int
}

func newFakeSourceRepo() *fakeSourceRepo {
	return &fakeSourceRepo{records: map[uuid.UUID]*entity.KnowledgeSource{}}
}

func (f *fakeSourceRepo) Create(ctx context.Context, source *entity.KnowledgeSource) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *source
	f.records[source.Id] = &cp
	return nil
}

func (f *fakeSourceRepo) Update(ctx context.Context, source *entity.KnowledgeSource) error {
	return f.Create(ctx, source)
}

func (f *fakeSourceRepo) Delete(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.records, id)
	return nil
}

func (f *fakeSourceRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.KnowledgeSource, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, rec := range f.records {
		if matchesSource(rec, specs) {
			cp := *rec
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeSourceRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.KnowledgeSource, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entity.KnowledgeSource
	for _, rec := range f.records {
		if matchesSource(rec, specs) {
			cp := *rec
			out = append(out, &cp)
		}
	}
	for _, spec := range specs {
		if order, ok := spec.(specification.OrderBy); ok && order.Field == "created_at" && order.Desc {
			sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
		}
	}
	return out, nil
}

func (f *fakeSourceRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, _ := f.FindAll(ctx, specs...)
	return int64(len(all)), nil
}

func (f *fakeSourceRepo) UpdateRunState(ctx context.Context, id uuid.UUID, generation int, fields map[string]interface{}) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.records[id]
	if !ok || rec.RunGeneration != generation {
		return 0, nil
	}
	applySourceFields(rec, fields)
	f.writes++
	if f.bumpAfterFirstWrite && f.writes == 1 {
		rec.RunGeneration++
	}
	return 1, nil
}

func matchesSource(rec *entity.KnowledgeSource, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByID:
			if rec.Id != s.ID {
				return false
			}
		case specification.ByFilePath:
			if rec.FilePath != s.FilePath {
				return false
			}
		case specification.ByStatus:
			if string(rec.Status) != s.Status {
				return false
			}
		}
	}
	return true
}

func applySourceFields(rec *entity.KnowledgeSource, fields map[string]interface{}) {
	for k, v := range fields {
		switch k {
		case "status":
			rec.Status = entity.SourceStatus(v.(string))
		case "progress":
			rec.Progress = v.(float64)
		case "current_step":
			step := v.(string)
			rec.CurrentStep = &step
		case "chunk_count":
			rec.ChunkCount = v.(int)
		case "started_at":
			t := v.(time.Time)
			rec.StartedAt = &t
		case "last_indexed_at":
			t := v.(time.Time)
			rec.LastIndexedAt = &t
		case "error_message":
			if v == nil {
				rec.ErrorMessage = nil
			} else {
				msg := v.(string)
				rec.ErrorMessage = &msg
			}
		case "features":
			rec.Features = v.(datatypes.JSONSlice[string])
		}
	}
}

type fakeChunkRepo struct {
	mu     sync.Mutex
	chunks map[uuid.UUID]*entity.ChunkEmbedding

	failCreate   bool
	failDelete   bool
	searchResult []*contract.ScoredChunkEmbedding
}

func newFakeChunkRepo() *fakeChunkRepo {
	return &fakeChunkRepo{chunks: map[uuid.UUID]*entity.ChunkEmbedding{}}
}

func (f *fakeChunkRepo) Create(ctx context.Context, chunk *entity.ChunkEmbedding) error {
	return f.CreateBulk(ctx, []*entity.ChunkEmbedding{chunk})
}

func (f *fakeChunkRepo) CreateBulk(ctx context.Context, chunks []*entity.ChunkEmbedding) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCreate {
		return fmt.Errorf("vector store write refused")
	}
	for _, c := range chunks {
		cp := *c
		f.chunks[c.Id] = &cp
	}
	return nil
}

func (f *fakeChunkRepo) DeleteByIDs(ctx context.Context, ids []uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failDelete {
		return 0, fmt.Errorf("delete refused")
	}
	var n int64
	for _, id := range ids {
		if _, ok := f.chunks[id]; ok {
			delete(f.chunks, id)
			n++
		}
	}
	return n, nil
}

func (f *fakeChunkRepo) DeleteBySourcePath(ctx context.Context, sourcePath string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for id, c := range f.chunks {
		if c.SourcePath == sourcePath {
			delete(f.chunks, id)
			n++
		}
	}
	return n, nil
}

func (f *fakeChunkRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChunkEmbedding, error) {
	all, _ := f.FindAll(ctx, specs...)
	if len(all) == 0 {
		return nil, nil
	}
	return all[0], nil
}

func (f *fakeChunkRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChunkEmbedding, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entity.ChunkEmbedding
	for _, c := range f.chunks {
		if matchesChunk(c, specs) {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func matchesChunk(c *entity.ChunkEmbedding, specs []specification.Specification) bool {
	for _, spec := range specs {
		if s, ok := spec.(specification.BySourcePath); ok && c.SourcePath != s.SourcePath {
			return false
		}
	}
	return true
}

func (f *fakeChunkRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, _ := f.FindAll(ctx, specs...)
	return int64(len(all)), nil
}

func (f *fakeChunkRepo) FindIDsBySourcePath(ctx context.Context, sourcePath string) ([]uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []uuid.UUID
	for id, c := range f.chunks {
		if c.SourcePath == sourcePath {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (f *fakeChunkRepo) DistinctSourcePaths(ctx context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	seen := map[string]bool{}
	var paths []string
	for _, c := range f.chunks {
		if !seen[c.SourcePath] {
			seen[c.SourcePath] = true
			paths = append(paths, c.SourcePath)
		}
	}
	return paths, nil
}

func (f *fakeChunkRepo) SearchSimilarWithScore(ctx context.Context, vec []float32, limit int) ([]*contract.ScoredChunkEmbedding, error) {
	if limit > 0 && len(f.searchResult) > limit {
		return f.searchResult[:limit], nil
	}
	return f.searchResult, nil
}

func (f *fakeChunkRepo) SearchByKeywords(ctx context.Context, keywords []string, limit int) ([]*entity.ChunkEmbedding, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entity.ChunkEmbedding
	for _, c := range f.chunks {
		lower := strings.ToLower(c.Document)
		for _, kw := range keywords {
			if strings.Contains(lower, strings.ToLower(kw)) {
				cp := *c
				out = append(out, &cp)
				break
			}
		}
	}
	return out, nil
}

type fakeUow struct {
	sources *fakeSourceRepo
	chunks  *fakeChunkRepo
}

func (f *fakeUow) Begin(ctx context.Context) error { return nil }
func (f *fakeUow) Commit() error                   { return nil }
func (f *fakeUow) Rollback() error                 { return nil }
func (f *fakeUow) KnowledgeSourceRepository() contract.KnowledgeSourceRepository {
	return f.sources
}
func (f *fakeUow) ChunkEmbeddingRepository() contract.ChunkEmbeddingRepository {
	return f.chunks
}

type fakeUowFactory struct {
	uow *fakeUow
}

func newFakeUowFactory() *fakeUowFactory {
	return &fakeUowFactory{uow: &fakeUow{sources: newFakeSourceRepo(), chunks: newFakeChunkRepo()}}
}

func (f *fakeUowFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return f.uow
}

// fakeEmbeddingProvider yields small deterministic vectors.
type fakeEmbeddingProvider struct {
	failBatch bool
	calls     int
}

func (f *fakeEmbeddingProvider) Generate(text string, taskType string) (*embedding.EmbeddingResponse, error) {
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: []float32{0.1, 0.2, 0.3}},
	}, nil
}

func (f *fakeEmbeddingProvider) GenerateBatch(texts []string, taskType string) ([][]float32, error) {
	f.calls++
	if f.failBatch {
		return nil, fmt.Errorf("embedding backend unavailable")
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{float32(i), 0.5, 0.5}
	}
	return out, nil
}

// capturePublisher records every progress event in order.
type capturePublisher struct {
	mu     sync.Mutex
	events []progress.Event
}

func (c *capturePublisher) Publish(ctx context.Context, event progress.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
	return nil
}

func (c *capturePublisher) all() []progress.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]progress.Event, len(c.events))
	copy(out, c.events)
	return out
}

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }
