// Package worker runs the filter over queued events and records the verdicts.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/fsrfilter/internal/domain/model"
	"github.com/okian/fsrfilter/pkg/logger"
	"github.com/okian/fsrfilter/pkg/metrics"
)

const (
	defaultWorkerMultiplier = 4 // multiplier for runtime.NumCPU()
	poolShutdownTimeout     = 30 * time.Second
)

// Event is the unit of work read off the queue.
type Event = model.Event

// Decider turns one event into a verdict.
type Decider interface {
	Decide(ctx context.Context, e Event) model.Verdict
}

// Recorder stores verdicts.
type Recorder interface {
	Record(ctx context.Context, v model.Verdict) error
}

// Source is the receive side of the event queue.
type Source interface {
	Dequeue() <-chan Event
	Len() int
}

// InMemoryWorker drains a Source, one event at a time.
type InMemoryWorker struct {
	source   Source
	decider  Decider
	recorder Recorder
	name     string
	active   *atomic.Int64
	logger   logger.Logger
}

// NewInMemoryWorker creates a worker reading from source.
func NewInMemoryWorker(source Source, decider Decider, recorder Recorder, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		source:   source,
		decider:  decider,
		recorder: recorder,
		name:     "worker",
		active:   new(atomic.Int64),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Get().Named(w.name)
	}
	return w
}

// Run processes events until the source is closed and drained, or ctx is done.
func (w *InMemoryWorker) Run(ctx context.Context) {
	events := w.source.Dequeue()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			metrics.RecordQueueDequeue()
			metrics.UpdateQueueSize(w.source.Len())
			if err := w.process(ctx, event); err != nil {
				w.logger.Error(ctx, "error processing event", logger.Error(err))
			}
		}
	}
}

func (w *InMemoryWorker) process(ctx context.Context, event Event) error { //nolint:gocritic // events travel by value
	metrics.UpdateWorkerActiveCount(int(w.active.Add(1)))
	start := time.Now()
	defer func() {
		metrics.UpdateWorkerActiveCount(int(w.active.Add(-1)))
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	verdict := w.decider.Decide(ctx, event)
	if err := w.recorder.Record(ctx, verdict); err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "record_failed")
		return fmt.Errorf("record verdict for %s: %w", event.ID, err)
	}
	return nil
}

// Pool manages a fixed set of workers sharing one Source.
type Pool struct {
	workers []*InMemoryWorker
	source  Source
	wg      sync.WaitGroup
	logger  logger.Logger
}

// NewPool creates workerCount workers. A count below one selects a multiple of the CPU count.
func NewPool(workerCount int, source Source, decider Decider, recorder Recorder) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}

	p := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		source:  source,
		logger:  logger.Get().Named("worker-pool"),
	}
	active := new(atomic.Int64)
	for i := range p.workers {
		p.workers[i] = NewInMemoryWorker(source, decider, recorder,
			WithName("worker-"+strconv.Itoa(i)),
			withActiveCounter(active),
		)
	}

	metrics.UpdateWorkerCount(workerCount)
	metrics.UpdateWorkerActiveCount(0)
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Start launches every worker.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		p.wg.Add(1)
		go func(w *InMemoryWorker) {
			defer p.wg.Done()
			w.Run(ctx)
		}(w)
	}
}

// Shutdown closes the source, lets the workers drain it and waits for them.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.source.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	select {
	case <-done:
		return nil
	case <-shutdownCtx.Done():
		p.logger.Warn(ctx, "worker pool shutdown timed out", logger.Int("workers", len(p.workers)))
		return fmt.Errorf("worker pool shutdown: %w", shutdownCtx.Err())
	}
}
