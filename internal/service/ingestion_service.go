package service

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"gm-shield-be/internal/entity"
	"gm-shield-be/internal/pkg/logger"
	"gm-shield-be/internal/progress"
	"gm-shield-be/internal/repository/specification"
	"gm-shield-be/internal/repository/unitofwork"
	"gm-shield-be/pkg/chunker"
	"gm-shield-be/pkg/embedding"
	"gm-shield-be/pkg/events"
	"gm-shield-be/pkg/extractor"
	pkgNats "gm-shield-be/pkg/nats"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Progress checkpoints for the four pipeline stages. Embedding is the
// slow stage, so it reports incrementally between embedStart and
// embedEnd instead of once per phase.
const (
	chunkProgress = 20.0
	embedStart    = 30.0
	embedEnd      = 90.0
	storeProgress = 90.0
	doneProgress  = 100.0
)

const defaultFeatureTag = "indexation"

const supersededSummary = "Failed: superseded by a newer run"

type IIngestionService interface {
	// Run executes the full pipeline for one source and returns a
	// human-readable summary. It never returns an error: failures are
	// recorded on the source record.
	Run(ctx context.Context, sourceId uuid.UUID) string
}

type ingestionService struct {
	uowFactory        unitofwork.RepositoryFactory
	splitter          *chunker.Splitter
	embeddingProvider embedding.EmbeddingProvider
	progressPublisher progress.IPublisher
	eventPublisher    *pkgNats.Publisher
	logger            logger.ILogger
	embedBatchSize    int
}

func NewIngestionService(
	uowFactory unitofwork.RepositoryFactory,
	splitter *chunker.Splitter,
	embeddingProvider embedding.EmbeddingProvider,
	progressPublisher progress.IPublisher,
	eventPublisher *pkgNats.Publisher,
	log logger.ILogger,
	embedBatchSize int,
) IIngestionService {
	if embedBatchSize <= 0 {
		embedBatchSize = 16
	}
	return &ingestionService{
		uowFactory:        uowFactory,
		splitter:          splitter,
		embeddingProvider: embeddingProvider,
		progressPublisher: progressPublisher,
		eventPublisher:    eventPublisher,
		logger:            log,
		embedBatchSize:    embedBatchSize,
	}
}

// run holds the per-execution state of one pipeline pass. All registry
// writes are guarded by the generation captured at startup, so a
// refresh that supersedes this run makes them no-ops.
type run struct {
	svc        *ingestionService
	uow        unitofwork.UnitOfWork
	source     *entity.KnowledgeSource
	generation int
	superseded bool
	lastPct    float64
}

func (s *ingestionService) Run(ctx context.Context, sourceId uuid.UUID) string {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	source, err := uow.KnowledgeSourceRepository().FindOne(ctx, specification.ByID{ID: sourceId})
	if err != nil {
		s.logger.Error("Ingestion", "Source lookup failed", map[string]interface{}{
			"source_id": sourceId, "error": err.Error(),
		})
		return fmt.Sprintf("Failed: %s", err.Error())
	}
	if source == nil {
		// The one failure with no record to write to.
		s.logger.Warn("Ingestion", "Source not found", map[string]interface{}{"source_id": sourceId})
		return "Failed: source not found"
	}

	r := &run{
		svc:        s,
		uow:        uow,
		source:     source,
		generation: source.RunGeneration,
	}

	summary := r.execute(ctx)
	s.logger.Info("Ingestion", "Run finished", map[string]interface{}{
		"source_id": sourceId, "file_path": source.FilePath, "summary": summary,
	})
	return summary
}

func (r *run) execute(ctx context.Context) string {
	now := time.Now()
	r.writeState(ctx, string(entity.SourceStatusRunning), 0, "starting", map[string]interface{}{
		"started_at":    now,
		"error_message": nil,
	})
	if r.superseded {
		return supersededSummary
	}

	// Extract. Step label only, the checkpoint budget starts at chunking.
	r.writeState(ctx, string(entity.SourceStatusRunning), 0, "extracting text", nil)
	text, err := extractor.Extract(ctx, r.source.FilePath)
	if err != nil {
		return r.fail(ctx, err.Error())
	}
	if strings.TrimSpace(text) == "" {
		return r.fail(ctx, "no text content found")
	}
	if r.superseded {
		return supersededSummary
	}

	// Chunk.
	r.writeState(ctx, string(entity.SourceStatusRunning), chunkProgress, "chunking document", nil)
	chunks, err := r.svc.splitter.Split(text)
	if err != nil {
		return r.fail(ctx, err.Error())
	}
	if len(chunks) == 0 {
		return r.fail(ctx, "no text content found")
	}

	// Embed in fixed-size batches so the UI sees live percentages.
	vectors, failMsg := r.embedChunks(ctx, chunks)
	if failMsg != "" {
		return r.fail(ctx, failMsg)
	}
	if r.superseded {
		return supersededSummary
	}

	// Store: add the new set before deleting the old one, so a write
	// failure leaves the previous index intact.
	r.writeState(ctx, string(entity.SourceStatusRunning), storeProgress, "storing chunks", nil)
	if r.superseded {
		return supersededSummary
	}
	if msg := r.replaceChunks(ctx, chunks, vectors); msg != "" {
		return r.fail(ctx, msg)
	}

	return r.complete(ctx, len(chunks))
}

func (r *run) embedChunks(ctx context.Context, chunks []string) ([][]float32, string) {
	batchSize := r.svc.embedBatchSize
	totalBatches := (len(chunks) + batchSize - 1) / batchSize
	vectors := make([][]float32, 0, len(chunks))

	for batch := 0; batch < totalBatches; batch++ {
		start := batch * batchSize
		end := start + batchSize
		if end > len(chunks) {
			end = len(chunks)
		}

		batchVectors, err := r.svc.embeddingProvider.GenerateBatch(chunks[start:end], embedding.TaskTypeDocument)
		if err != nil {
			return nil, err.Error()
		}
		if len(batchVectors) != end-start {
			return nil, fmt.Sprintf("embedding count mismatch: got %d vectors for %d chunks", len(batchVectors), end-start)
		}
		vectors = append(vectors, batchVectors...)

		pct := embedStart + (embedEnd-embedStart)*float64(batch+1)/float64(totalBatches)
		r.writeState(ctx, string(entity.SourceStatusRunning), pct,
			fmt.Sprintf("embedding batch %d/%d", batch+1, totalBatches), nil)
	}
	return vectors, ""
}

// replaceChunks swaps the stored chunk set for this source. New chunks
// get a fresh salted key namespace so two runs of the same file never
// collide; old ids are collected before the add and deleted only after
// it succeeds.
func (r *run) replaceChunks(ctx context.Context, chunks []string, vectors [][]float32) string {
	repo := r.uow.ChunkEmbeddingRepository()

	oldIds, err := repo.FindIDsBySourcePath(ctx, r.source.FilePath)
	if err != nil {
		return err.Error()
	}

	salt := strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
	baseName := filepath.Base(r.source.FilePath)

	entities := make([]*entity.ChunkEmbedding, len(chunks))
	for i, doc := range chunks {
		entities[i] = &entity.ChunkEmbedding{
			Id:             uuid.New(),
			ChunkKey:       fmt.Sprintf("%s_%s_%d", baseName, salt, i),
			Document:       doc,
			EmbeddingValue: vectors[i],
			SourcePath:     r.source.FilePath,
			ChunkIndex:     i,
			CreatedAt:      time.Now(),
		}
	}

	if err := repo.CreateBulk(ctx, entities); err != nil {
		return err.Error()
	}
	if _, err := repo.DeleteByIDs(ctx, oldIds); err != nil {
		// The new set is already live; the run still fails so the
		// duplicate window is visible and a manual refresh cleans it up.
		return err.Error()
	}
	return ""
}

func (r *run) complete(ctx context.Context, chunkCount int) string {
	fields := map[string]interface{}{
		"chunk_count":     chunkCount,
		"last_indexed_at": time.Now(),
		"error_message":   nil,
	}
	if len(r.source.Features) == 0 {
		fields["features"] = datatypes.JSONSlice[string]{defaultFeatureTag}
	}
	r.writeState(ctx, string(entity.SourceStatusCompleted), doneProgress, "completed", fields)
	if r.superseded {
		return supersededSummary
	}

	r.publishEvent(ctx, events.NewSourceIndexed(r.source.Id.String(), r.source.FilePath, chunkCount))
	return fmt.Sprintf("Successfully indexed %s (%d chunks)", r.source.FilePath, chunkCount)
}

func (r *run) fail(ctx context.Context, message string) string {
	r.writeState(ctx, string(entity.SourceStatusFailed), -1, "", map[string]interface{}{
		"error_message": message,
	})
	r.publishEvent(ctx, events.NewSourceIndexFailed(r.source.Id.String(), r.source.FilePath, message))
	return fmt.Sprintf("Failed: %s", message)
}

// writeState persists a guarded partial update and mirrors it on the
// progress bus. progress < 0 or an empty step keep the current value.
func (r *run) writeState(ctx context.Context, status string, pct float64, step string, extra map[string]interface{}) {
	if r.superseded {
		return
	}

	fields := map[string]interface{}{"status": status}
	if pct >= 0 {
		fields["progress"] = pct
	}
	if step != "" {
		fields["current_step"] = step
	}
	for k, v := range extra {
		fields[k] = v
	}

	rows, err := r.uow.KnowledgeSourceRepository().UpdateRunState(ctx, r.source.Id, r.generation, fields)
	if err != nil {
		r.svc.logger.Error("Ingestion", "Progress write failed", map[string]interface{}{
			"source_id": r.source.Id, "error": err.Error(),
		})
		return
	}
	if rows == 0 {
		// A refresh raced us; this run's remaining writes are discarded.
		r.superseded = true
		r.svc.logger.Warn("Ingestion", "Run superseded by refresh", map[string]interface{}{
			"source_id": r.source.Id, "generation": r.generation,
		})
		return
	}

	if pct >= 0 {
		r.lastPct = pct
	}
	event := progress.Event{
		SourceId: r.source.Id,
		FilePath: r.source.FilePath,
		Status:   status,
		Progress: r.lastPct,
		Step:     step,
	}
	if msg, ok := fields["error_message"].(string); ok {
		event.Error = msg
	}
	if err := r.svc.progressPublisher.Publish(ctx, event); err != nil {
		r.svc.logger.Warn("Ingestion", "Progress publish failed", map[string]interface{}{
			"source_id": r.source.Id, "error": err.Error(),
		})
	}
}

func (r *run) publishEvent(ctx context.Context, evt events.Event) {
	if r.svc.eventPublisher == nil {
		return
	}
	// Events feed notifications only, a publish failure never fails the run.
	if err := r.svc.eventPublisher.Publish(ctx, evt); err != nil {
		r.svc.logger.Warn("Ingestion", "Event publish failed", map[string]interface{}{
			"source_id": r.source.Id, "type": evt.EventType(), "error": err.Error(),
		})
	}
}
