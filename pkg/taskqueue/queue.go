package taskqueue

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"github.com/patrickmn/go-cache"
)

type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusRunning   TaskStatus = "running"
	TaskStatusCompleted TaskStatus = "completed"
	TaskStatusFailed    TaskStatus = "failed"
)

// Work is one schedulable unit of background work. The returned string is
// stored as the task result; a returned error (or a panic) marks the task
// failed. The context is the cancellation handle threaded through the
// unit; nothing in this process currently cancels it.
type Work func(ctx context.Context) (string, error)

// TaskRecord tracks one enqueued unit of work through its lifecycle:
//
//	pending → running → completed
//	                  ↘ failed
type TaskRecord struct {
	ID          string
	Status      TaskStatus
	EnqueuedAt  time.Time
	StartedAt   *time.Time
	CompletedAt *time.Time
	Result      string
	Error       string
}

// Queue is an in-process background task queue. Execution happens on a
// bounded worker pool; task state lives in memory only and is lost on
// restart. Terminal records are evicted after the retention window so the
// table cannot grow without bound.
//
// There is no retry, no priority, no cancellation API and no multi-process
// coordination. Callers needing per-resource mutual exclusion must build it
// into the work itself.
type Queue struct {
	records   *cache.Cache
	pool      *ants.Pool
	mu        sync.Mutex
	retention time.Duration
}

// New creates a queue backed by a worker pool of poolSize goroutines.
// Terminal task records are kept for the retention window, then evicted.
func New(poolSize int, retention time.Duration) (*Queue, error) {
	if poolSize <= 0 {
		poolSize = 4
	}
	if retention <= 0 {
		retention = 24 * time.Hour
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create worker pool: %w", err)
	}

	return &Queue{
		records:   cache.New(cache.NoExpiration, 10*time.Minute),
		pool:      pool,
		retention: retention,
	}, nil
}

// Enqueue schedules work for background execution and returns its task ID
// immediately, without waiting for the work to start or finish. When the
// pool is saturated the task simply waits in pending.
func (q *Queue) Enqueue(work Work) (string, error) {
	if work == nil {
		return "", fmt.Errorf("nil work submitted")
	}

	taskId := uuid.New().String()

	q.mu.Lock()
	q.records.Set(taskId, &TaskRecord{
		ID:         taskId,
		Status:     TaskStatusPending,
		EnqueuedAt: time.Now(),
	}, cache.NoExpiration)
	q.mu.Unlock()

	// Submit from a separate goroutine so a saturated (blocking) pool
	// never delays the caller.
	go func() {
		if err := q.pool.Submit(func() {
			q.run(taskId, work)
		}); err != nil {
			log.Printf("[ERROR] Failed to submit task %s to pool: %v", taskId, err)
			q.finish(taskId, "", err)
		}
	}()

	return taskId, nil
}

// GetStatus returns a snapshot of the task record, or false for unknown
// (or already evicted) IDs. Never blocks on running work.
func (q *Queue) GetStatus(taskId string) (*TaskRecord, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	raw, found := q.records.Get(taskId)
	if !found {
		return nil, false
	}

	snapshot := *raw.(*TaskRecord)
	return &snapshot, true
}

// Close releases the worker pool. In-flight tasks finish; pending ones are
// abandoned.
func (q *Queue) Close() {
	q.pool.Release()
}

func (q *Queue) run(taskId string, work Work) {
	q.mu.Lock()
	if raw, found := q.records.Get(taskId); found {
		record := raw.(*TaskRecord)
		now := time.Now()
		record.Status = TaskStatusRunning
		record.StartedAt = &now
	}
	q.mu.Unlock()

	// A panic inside work must never reach the pool.
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[ERROR] Task %s panicked: %v", taskId, r)
			q.finish(taskId, "", fmt.Errorf("internal panic: %v", r))
		}
	}()

	result, err := work(context.Background())
	q.finish(taskId, result, err)
}

func (q *Queue) finish(taskId, result string, err error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	raw, found := q.records.Get(taskId)
	if !found {
		return
	}
	record := raw.(*TaskRecord)

	now := time.Now()
	record.CompletedAt = &now
	if err != nil {
		record.Status = TaskStatusFailed
		record.Error = err.Error()
	} else {
		record.Status = TaskStatusCompleted
		record.Result = result
	}

	// Re-set with the retention TTL so terminal entries age out.
	q.records.Set(taskId, record, q.retention)
}
