package service

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gm-shield-be/internal/entity"
	"gm-shield-be/pkg/chunker"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newTestIngestion(t *testing.T, factory *fakeUowFactory, provider *fakeEmbeddingProvider, pub *capturePublisher) IIngestionService {
	t.Helper()
	return NewIngestionService(factory, chunker.NewSplitter(100, 20), provider, pub, nil, nopLogger{}, 2)
}

func registerSource(t *testing.T, factory *fakeUowFactory, filePath string) uuid.UUID {
	t.Helper()
	src := &entity.KnowledgeSource{
		Id:        uuid.New(),
		FilePath:  filePath,
		Status:    entity.SourceStatusPending,
		CreatedAt: time.Now(),
	}
	require.NoError(t, factory.uow.sources.Create(context.Background(), src))
	return src.Id
}

func TestIngestionRunSuccess(t *testing.T) {
	longText := strings.Repeat("The ancient fortress guards the mountain pass. ", 20)
	path := writeTempFile(t, "lore.txt", longText)

	factory := newFakeUowFactory()
	provider := &fakeEmbeddingProvider{}
	pub := &capturePublisher{}
	svc := newTestIngestion(t, factory, provider, pub)
	id := registerSource(t, factory, path)

	summary := svc.Run(context.Background(), id)

	assert.True(t, strings.HasPrefix(summary, "Successfully indexed"), summary)

	rec := factory.uow.sources.records[id]
	assert.Equal(t, entity.SourceStatusCompleted, rec.Status)
	assert.Equal(t, 100.0, rec.Progress)
	assert.Greater(t, rec.ChunkCount, 0)
	assert.Nil(t, rec.ErrorMessage)
	assert.NotNil(t, rec.StartedAt)
	assert.NotNil(t, rec.LastIndexedAt)
	assert.Contains(t, rec.Features, "indexation")

	stored, err := factory.uow.chunks.FindAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, stored, rec.ChunkCount)
	for _, c := range stored {
		assert.Equal(t, path, c.SourcePath)
		assert.Contains(t, c.ChunkKey, "lore.txt_")
	}
}

func TestIngestionProgressMonotonic(t *testing.T) {
	path := writeTempFile(t, "notes.md", strings.Repeat("# Heading\n\nSome paragraph content here.\n\n", 15))

	factory := newFakeUowFactory()
	pub := &capturePublisher{}
	svc := newTestIngestion(t, factory, &fakeEmbeddingProvider{}, pub)
	id := registerSource(t, factory, path)

	svc.Run(context.Background(), id)

	events := pub.all()
	require.NotEmpty(t, events)
	last := 0.0
	for _, e := range events {
		assert.GreaterOrEqual(t, e.Progress, last, "progress went backwards at step %q", e.Step)
		last = e.Progress
	}
	assert.Equal(t, 100.0, events[len(events)-1].Progress)
	assert.Equal(t, string(entity.SourceStatusCompleted), events[len(events)-1].Status)
}

func TestIngestionEmptyFileSoftFailure(t *testing.T) {
	path := writeTempFile(t, "empty.txt", "   \n\t  ")

	factory := newFakeUowFactory()
	svc := newTestIngestion(t, factory, &fakeEmbeddingProvider{}, &capturePublisher{})
	id := registerSource(t, factory, path)

	summary := svc.Run(context.Background(), id)

	assert.Equal(t, "Failed: no text content found", summary)
	rec := factory.uow.sources.records[id]
	assert.Equal(t, entity.SourceStatusFailed, rec.Status)
	require.NotNil(t, rec.ErrorMessage)
	assert.Equal(t, "no text content found", *rec.ErrorMessage)

	stored, _ := factory.uow.chunks.FindAll(context.Background())
	assert.Empty(t, stored, "soft failure must not touch the vector store")
}

func TestIngestionSourceNotFound(t *testing.T) {
	factory := newFakeUowFactory()
	svc := newTestIngestion(t, factory, &fakeEmbeddingProvider{}, &capturePublisher{})

	summary := svc.Run(context.Background(), uuid.New())
	assert.Equal(t, "Failed: source not found", summary)
}

func TestIngestionAddFailurePreservesOldChunks(t *testing.T) {
	path := writeTempFile(t, "guide.txt", strings.Repeat("Useful guidance for travelers. ", 20))

	factory := newFakeUowFactory()
	id := registerSource(t, factory, path)

	old := &entity.ChunkEmbedding{
		Id:         uuid.New(),
		ChunkKey:   "guide.txt_deadbeef_0",
		Document:   "previous run content",
		SourcePath: path,
	}
	require.NoError(t, factory.uow.chunks.CreateBulk(context.Background(), []*entity.ChunkEmbedding{old}))
	factory.uow.chunks.failCreate = true

	svc := newTestIngestion(t, factory, &fakeEmbeddingProvider{}, &capturePublisher{})
	summary := svc.Run(context.Background(), id)

	assert.True(t, strings.HasPrefix(summary, "Failed:"), summary)
	assert.Equal(t, entity.SourceStatusFailed, factory.uow.sources.records[id].Status)

	remaining, _ := factory.uow.chunks.FindAll(context.Background())
	require.Len(t, remaining, 1)
	assert.Equal(t, old.ChunkKey, remaining[0].ChunkKey)
}

func TestIngestionReingestReplacesChunks(t *testing.T) {
	path := writeTempFile(t, "world.txt", strings.Repeat("Regions, factions and their histories. ", 20))

	factory := newFakeUowFactory()
	svc := newTestIngestion(t, factory, &fakeEmbeddingProvider{}, &capturePublisher{})
	id := registerSource(t, factory, path)

	svc.Run(context.Background(), id)
	first, _ := factory.uow.chunks.FindAll(context.Background())
	require.NotEmpty(t, first)
	firstKeys := map[string]bool{}
	for _, c := range first {
		firstKeys[c.ChunkKey] = true
	}

	svc.Run(context.Background(), id)
	second, _ := factory.uow.chunks.FindAll(context.Background())
	assert.Len(t, second, len(first), "re-ingest must replace, not accumulate")
	for _, c := range second {
		assert.False(t, firstKeys[c.ChunkKey], "old key %s survived re-ingest", c.ChunkKey)
	}
}

func TestIngestionEmbedFailureRecorded(t *testing.T) {
	path := writeTempFile(t, "fail.txt", strings.Repeat("content that will not embed ", 20))

	factory := newFakeUowFactory()
	svc := newTestIngestion(t, factory, &fakeEmbeddingProvider{failBatch: true}, &capturePublisher{})
	id := registerSource(t, factory, path)

	summary := svc.Run(context.Background(), id)

	assert.Equal(t, "Failed: embedding backend unavailable", summary)
	rec := factory.uow.sources.records[id]
	assert.Equal(t, entity.SourceStatusFailed, rec.Status)
	require.NotNil(t, rec.ErrorMessage)
	assert.Equal(t, "embedding backend unavailable", *rec.ErrorMessage)
}

func TestIngestionSupersededRunDiscarded(t *testing.T) {
	path := writeTempFile(t, "race.txt", strings.Repeat("racing refresh against a live run ", 20))

	factory := newFakeUowFactory()
	factory.uow.sources.bumpAfterFirstWrite = true
	svc := newTestIngestion(t, factory, &fakeEmbeddingProvider{}, &capturePublisher{})
	id := registerSource(t, factory, path)

	summary := svc.Run(context.Background(), id)

	assert.Equal(t, "Failed: superseded by a newer run", summary)
	rec := factory.uow.sources.records[id]
	assert.NotEqual(t, entity.SourceStatusCompleted, rec.Status)
}
