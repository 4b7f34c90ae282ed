package integration

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gm-shield-be/internal/entity"
	"gm-shield-be/internal/model"
	"gm-shield-be/internal/progress"
	"gm-shield-be/internal/repository/specification"
	"gm-shield-be/internal/repository/unitofwork"
	"gm-shield-be/internal/service"
	"gm-shield-be/pkg/chunker"
	"gm-shield-be/pkg/database"
	"gm-shield-be/pkg/embedding"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// deterministicProvider avoids needing a live embedding backend: it
// hashes each input into a fixed 768-dim vector.
type deterministicProvider struct{}

func hashVector(text string) []float32 {
	vec := make([]float32, 768)
	var h uint32 = 2166136261
	for _, b := range []byte(text) {
		h ^= uint32(b)
		h *= 16777619
	}
	for i := range vec {
		h = h*1664525 + 1013904223
		vec[i] = float32(h%1000)/1000.0 - 0.5
	}
	return vec
}

func (deterministicProvider) Generate(text string, taskType string) (*embedding.EmbeddingResponse, error) {
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: hashVector(text)},
	}, nil
}

func (deterministicProvider) GenerateBatch(texts []string, taskType string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = hashVector(t)
	}
	return out, nil
}

type recordingPublisher struct {
	events []progress.Event
}

func (r *recordingPublisher) Publish(ctx context.Context, event progress.Event) error {
	r.events = append(r.events, event)
	return nil
}

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	if err := godotenv.Load("../../.env"); err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	require.NoError(t, err)

	require.NoError(t, gormDB.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto;`).Error)
	require.NoError(t, gormDB.Exec(`CREATE EXTENSION IF NOT EXISTS vector;`).Error)
	require.NoError(t, gormDB.AutoMigrate(&model.KnowledgeSource{}, &model.ChunkEmbedding{}))
	return gormDB
}

func TestIngestionPipelineEndToEnd(t *testing.T) {
	gormDB := setupDB(t)
	ctx := context.Background()

	content := strings.Repeat("The Ember Mountains hide dwarven mining camps and dragon lairs. ", 40)
	path := filepath.Join(t.TempDir(), fmt.Sprintf("integration-%d.txt", os.Getpid()))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	uowFactory := unitofwork.NewRepositoryFactory(gormDB)
	pub := &recordingPublisher{}
	knowledgeSvc := service.NewKnowledgeService(uowFactory)
	ingestionSvc := service.NewIngestionService(
		uowFactory,
		chunker.NewSplitter(1000, 200),
		deterministicProvider{},
		pub,
		nil,
		nopLogger{},
		16,
	)
	retrievalSvc := service.NewRetrievalService(uowFactory, deterministicProvider{})

	source, err := knowledgeSvc.CreateOrRefresh(ctx, path, "integration run")
	require.NoError(t, err)
	defer func() {
		uow := uowFactory.NewUnitOfWork(ctx)
		uow.ChunkEmbeddingRepository().DeleteBySourcePath(ctx, path)
		uow.KnowledgeSourceRepository().Delete(ctx, source.Id)
	}()

	summary := ingestionSvc.Run(ctx, source.Id)
	assert.True(t, strings.HasPrefix(summary, "Successfully indexed"), summary)

	uow := uowFactory.NewUnitOfWork(ctx)
	stored, err := uow.KnowledgeSourceRepository().FindOne(ctx, specification.ByID{ID: source.Id})
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, entity.SourceStatusCompleted, stored.Status)
	assert.Equal(t, 100.0, stored.Progress)
	assert.Greater(t, stored.ChunkCount, 0)
	assert.Contains(t, stored.Features, "indexation")

	chunks, err := uow.ChunkEmbeddingRepository().FindAll(ctx, specification.BySourcePath{SourcePath: path})
	require.NoError(t, err)
	assert.Len(t, chunks, stored.ChunkCount)

	// Progress events are monotonic and end at 100.
	last := 0.0
	for _, e := range pub.events {
		assert.GreaterOrEqual(t, e.Progress, last)
		last = e.Progress
	}
	assert.Equal(t, 100.0, last)

	// The retrieval path finds the ingested content.
	resp, err := retrievalSvc.Search(ctx, "dwarven mining camps", 3)
	require.NoError(t, err)
	require.NotEmpty(t, resp.Results)
	found := false
	for _, r := range resp.Results {
		if r.SourcePath == path {
			found = true
		}
	}
	assert.True(t, found, "expected a result from the ingested file")

	// Re-ingest replaces the chunk set instead of accumulating.
	_, err = knowledgeSvc.CreateOrRefresh(ctx, path, "second run")
	require.NoError(t, err)
	summary = ingestionSvc.Run(ctx, source.Id)
	assert.True(t, strings.HasPrefix(summary, "Successfully indexed"), summary)

	again, err := uow.ChunkEmbeddingRepository().FindAll(ctx, specification.BySourcePath{SourcePath: path})
	require.NoError(t, err)
	assert.Len(t, again, stored.ChunkCount)
}
