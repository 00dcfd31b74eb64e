package model

import "time"

// TaskState tracks an enrichment task through the worker's state machine.
type TaskState string

// Task state constants.
const (
	TaskStateQueued     TaskState = "QUEUED"
	TaskStateProcessing TaskState = "PROCESSING"
	TaskStateDone       TaskState = "DONE"
	TaskStateRequeued   TaskState = "REQUEUED"
	TaskStateDropped    TaskState = "DROPPED"
)

// EnrichmentTask asks the background worker to resolve a barcode into a
// product name. Tasks live only in the in-memory queue; a process restart
// loses anything in flight.
type EnrichmentTask struct {
	EnqueuedAt time.Time
	Barcode    string
	ItemID     *int64
	ListID     *int64
	Retries    int
	MaxRetries int
}

// Exhausted reports whether the task has used up its retry budget.
func (t *EnrichmentTask) Exhausted() bool {
	return t.Retries >= t.MaxRetries
}
