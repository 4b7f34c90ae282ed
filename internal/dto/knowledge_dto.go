package dto

import (
	"time"

	"github.com/google/uuid"
)

type IndexSourceRequest struct {
	FilePath    string `json:"file_path" validate:"required"`
	Description string `json:"description"`
}

type IndexSourceResponse struct {
	SourceId uuid.UUID `json:"source_id"`
	TaskId   string    `json:"task_id"`
	Status   string    `json:"status"`
}

type SourceStatusResponse struct {
	Id            uuid.UUID  `json:"id"`
	FilePath      string     `json:"file_path"`
	Description   string     `json:"description"`
	Status        string     `json:"status"`
	Progress      float64    `json:"progress"`
	CurrentStep   *string    `json:"current_step"`
	ChunkCount    int        `json:"chunk_count"`
	ErrorMessage  *string    `json:"error_message"`
	StartedAt     *time.Time `json:"started_at"`
	LastIndexedAt *time.Time `json:"last_indexed_at"`
	Features      []string   `json:"features"`
	CreatedAt     time.Time  `json:"created_at"`
}

type ListSourcesResponse struct {
	Sources []SourceStatusResponse `json:"sources"`
}

type KnowledgeStatsResponse struct {
	SourceCount int64 `json:"source_count"`
	ChunkCount  int64 `json:"chunk_count"`
}

type DeleteSourceResponse struct {
	Id            uuid.UUID `json:"id"`
	ChunksRemoved int64     `json:"chunks_removed"`
}
