package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "SOURCE_INDEXED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is the generic Event implementation used across the system.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// NewSourceIndexed reports a successfully completed ingestion run.
func NewSourceIndexed(sourceId string, filePath string, chunkCount int) Event {
	return BaseEvent{
		Type: "SOURCE_INDEXED",
		Data: map[string]interface{}{
			"source_id":   sourceId,
			"file_path":   filePath,
			"chunk_count": chunkCount,
		},
		OccurredAt: time.Now(),
	}
}

// NewSourceIndexFailed reports a terminally failed ingestion run.
func NewSourceIndexFailed(sourceId string, filePath string, reason string) Event {
	return BaseEvent{
		Type: "SOURCE_INDEX_FAILED",
		Data: map[string]interface{}{
			"source_id": sourceId,
			"file_path": filePath,
			"reason":    reason,
		},
		OccurredAt: time.Now(),
	}
}
