// Package enrich runs the background barcode-enrichment worker: a single
// goroutine consuming a FIFO queue of lookup tasks and back-filling product
// names onto shopping list items.
package enrich

import (
	"context"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gbarzaghi/scontrino/internal/common"
	"github.com/gbarzaghi/scontrino/internal/model"
	"github.com/gbarzaghi/scontrino/internal/service"
)

// NameFiller is the slice of the storage layer the worker needs: back-fill
// a product name onto every list item sharing a barcode and missing one.
type NameFiller interface {
	FillProductNameByBarcode(ctx context.Context, barcode, productName string) (int, error)
}

// Config holds configuration options for the enrichment service.
type Config struct {
	// Backoff returns how long a task waits before its next attempt.
	// Defaults to 2^retries seconds.
	Backoff func(retries int) time.Duration
	// QueueSize bounds the in-memory task queue.
	QueueSize int
	// MaxRetries caps requeues for transient failures.
	MaxRetries int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		QueueSize:  64,
		MaxRetries: 3,
		Backoff: func(retries int) time.Duration {
			return time.Duration(math.Pow(2, float64(retries))) * time.Second
		},
	}
}

// Service owns the enrichment queue and its single worker goroutine. The
// worker starts lazily on the first Enqueue and lives until Stop. Tasks are
// in-memory only: a process restart loses anything in flight.
type Service struct {
	storage   NameFiller
	lookup    service.BarcodeLookup
	queue     chan model.EnrichmentTask
	stopCh    chan struct{}
	cfg       Config
	startOnce sync.Once
	stopOnce  sync.Once
	wg        sync.WaitGroup
	running   atomic.Bool
}

// New creates an enrichment service with the default configuration.
func New(storage NameFiller, lookup service.BarcodeLookup) *Service {
	return NewWithConfig(storage, lookup, DefaultConfig())
}

// NewWithConfig creates an enrichment service with custom configuration.
func NewWithConfig(storage NameFiller, lookup service.BarcodeLookup, cfg Config) *Service {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 64
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.Backoff == nil {
		cfg.Backoff = DefaultConfig().Backoff
	}

	return &Service{
		storage: storage,
		lookup:  lookup,
		cfg:     cfg,
		queue:   make(chan model.EnrichmentTask, cfg.QueueSize),
		stopCh:  make(chan struct{}),
	}
}

// Enqueue pushes a barcode lookup task onto the queue, starting the worker
// on first use. Fire-and-forget: a full queue drops the task with a log
// line, never an error, because enrichment is best-effort.
func (s *Service) Enqueue(barcode string, itemID, listID *int64) {
	s.startOnce.Do(s.start)

	task := model.EnrichmentTask{
		Barcode:    barcode,
		ItemID:     itemID,
		ListID:     listID,
		MaxRetries: s.cfg.MaxRetries,
		EnqueuedAt: time.Now(),
	}

	s.push(task)
}

// Status reports the queue size and whether the worker goroutine is alive.
func (s *Service) Status() service.QueueStatus {
	return service.QueueStatus{
		QueueSize:     len(s.queue),
		WorkerRunning: s.running.Load(),
	}
}

// Stop shuts the worker down and waits for the in-flight task to finish.
// Queued tasks are abandoned; cancellation mid-task is not supported.
func (s *Service) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
	})
	s.wg.Wait()
}

// start launches the single worker goroutine.
func (s *Service) start() {
	s.running.Store(true)
	s.wg.Add(1)

	go func() {
		defer s.wg.Done()
		defer s.running.Store(false)

		slog.Info("Enrichment worker started", "queue_size", s.cfg.QueueSize)
		s.run()
	}()
}

// run is the worker loop: pull, process, repeat until shutdown.
func (s *Service) run() {
	for {
		select {
		case <-s.stopCh:
			slog.Info("Enrichment worker stopping", "queued", len(s.queue))
			return
		case task := <-s.queue:
			s.process(task)
		}
	}
}

// process performs one lookup attempt and drives the task state machine:
// queued -> processing -> done, requeued or dropped.
func (s *Service) process(task model.EnrichmentTask) {
	ctx := context.Background()

	product, err := s.lookup.Lookup(ctx, task.Barcode)
	if err != nil {
		if common.IsRetryable(err) {
			s.requeue(task, err)
		} else {
			slog.Warn("Dropping enrichment task, permanent failure",
				"barcode", task.Barcode,
				"error", err)
		}
		return
	}

	if !product.Found {
		slog.Debug("Barcode unknown, nothing to enrich", "barcode", task.Barcode)
		return
	}

	updated, err := s.storage.FillProductNameByBarcode(ctx, task.Barcode, product.Name)
	if err != nil {
		slog.Warn("Failed to back-fill product name",
			"barcode", task.Barcode,
			"error", err)
		return
	}

	slog.Info("Enriched list items from barcode",
		"barcode", task.Barcode,
		"product", product.Name,
		"items_updated", updated)
}

// requeue retries a transiently failed task after its backoff, up to the
// retry budget. Exhausted tasks are dropped with a log line, never raised:
// enrichment is a convenience, not a correctness requirement.
func (s *Service) requeue(task model.EnrichmentTask, cause error) {
	if task.Exhausted() {
		slog.Warn("Dropping enrichment task, retries exhausted",
			"barcode", task.Barcode,
			"retries", task.Retries,
			"error", cause)
		return
	}

	task.Retries++
	delay := s.cfg.Backoff(task.Retries)

	slog.Debug("Requeueing enrichment task",
		"barcode", task.Barcode,
		"retry", task.Retries,
		"delay", delay)

	select {
	case <-s.stopCh:
	case <-time.After(delay):
		s.push(task)
	}
}

// push adds a task to the queue without ever blocking the caller.
func (s *Service) push(task model.EnrichmentTask) {
	select {
	case s.queue <- task:
	default:
		slog.Warn("Enrichment queue full, dropping task", "barcode", task.Barcode)
	}
}
