package entity

import (
	"time"

	"github.com/google/uuid"
)

// SourceStatus is the lifecycle state of a knowledge source.
type SourceStatus string

const (
	SourceStatusPending   SourceStatus = "pending"
	SourceStatusRunning   SourceStatus = "running"
	SourceStatusCompleted SourceStatus = "completed"
	SourceStatusFailed    SourceStatus = "failed"
)

// validTransitions holds the forward edges of the source lifecycle.
// Terminal states only leave via Refresh, which resets to pending.
var validTransitions = map[SourceStatus][]SourceStatus{
	SourceStatusPending: {SourceStatusRunning, SourceStatusFailed},
	SourceStatusRunning: {SourceStatusCompleted, SourceStatusFailed},
}

func (s SourceStatus) CanTransitionTo(next SourceStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s SourceStatus) IsTerminal() bool {
	return s == SourceStatusCompleted || s == SourceStatusFailed
}

type KnowledgeSource struct {
	Id            uuid.UUID
	FilePath      string
	Description   string
	Status        SourceStatus
	Progress      float64
	CurrentStep   *string
	ChunkCount    int
	ErrorMessage  *string
	StartedAt     *time.Time
	LastIndexedAt *time.Time
	Features      []string
	RunGeneration int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Refresh resets the source for a new ingestion run. Bumping the
// generation invalidates any in-flight run for the same source.
func (k *KnowledgeSource) Refresh(description string) {
	k.Description = description
	k.Status = SourceStatusPending
	k.Progress = 0
	k.CurrentStep = nil
	k.ErrorMessage = nil
	k.StartedAt = nil
	k.RunGeneration++
}
