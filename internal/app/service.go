// Package service wires the filter, queue, workers and verdict store into the
// operations served by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	eventqueue "github.com/okian/fsrfilter/internal/adapters/mq/queue"
	workerpool "github.com/okian/fsrfilter/internal/adapters/mq/worker"
	repository "github.com/okian/fsrfilter/internal/adapters/repository"
	"github.com/okian/fsrfilter/internal/domain/dedupe"
	"github.com/okian/fsrfilter/internal/domain/types"
	"github.com/okian/fsrfilter/internal/domain/veto"
	"github.com/okian/fsrfilter/pkg/logger"
	"github.com/okian/fsrfilter/pkg/metrics"
)

// Receipt acknowledges an asynchronous submission.
type Receipt struct {
	EventID   string
	Duplicate bool
}

// Service implements the API dependencies for the filter service.
type Service struct {
	mu sync.RWMutex

	store   *repository.ShardedStore
	deduper dedupe.Deduper
	queue   *eventqueue.InMemoryQueue
	filter  *filterAdapter
	pool    *workerpool.Pool

	workerCount int
	queueSize   int
	dedupeSize  int
	shardCount  int
	genTag      string
	policy      veto.Policy

	started bool
	cancel  context.CancelFunc

	logger logger.Logger
}

// New constructs a Service. Components are created by Start.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount: runtime.NumCPU() * 2,
		queueSize:   100000,
		dedupeSize:  50000,
		shardCount:  16,
		genTag:      types.DefaultGenTag,
		policy:      veto.PolicyRadiated,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	s.filter = &filterAdapter{
		filter: veto.New(veto.WithPolicy(s.policy), veto.WithLogger(s.logger.Named("veto"))),
		genTag: s.genTag,
	}
	return s
}

// Start creates the store, deduper and queue and launches the worker pool.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	s.logger.Info(ctx, "starting filter service...")

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel

	s.store = repository.NewShardedStore(runCtx, repository.WithShardCount(s.shardCount))
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.queue = eventqueue.NewInMemoryQueue(eventqueue.WithCapacity(s.queueSize))
	s.pool = workerpool.NewPool(s.workerCount, s.queue, s.filter, s.store)
	s.pool.Start(runCtx)

	s.started = true
	s.logger.Info(ctx, "filter service started",
		logger.Int("workers", s.pool.Size()),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.Int("shards", s.shardCount),
		logger.String("genTag", s.genTag),
		logger.String("policy", s.policy.String()),
	)
	return nil
}

// Stop drains the queue, waits for the workers and releases the store.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping filter service...")

	if err := s.pool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "worker pool did not drain", logger.Error(err))
	}
	s.cancel()
	_ = s.store.Close()

	s.started = false
	s.logger.Info(ctx, "filter service stopped")
}

// Submit validates ev and queues it for asynchronous filtering. A previously
// seen event id is acknowledged as a duplicate without being queued again.
func (s *Service) Submit(ctx context.Context, ev types.Event) (Receipt, error) { //nolint:gocritic // request payload
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return Receipt{}, ErrNotStarted
	}

	if err := ev.Validate(); err != nil {
		metrics.RecordEventInvalid()
		return Receipt{}, fmt.Errorf("submit: %w", err)
	}

	id := ev.ID()
	if s.deduper.SeenAndRecord(ctx, id) {
		metrics.RecordEventDuplicate()
		s.logger.Debug(ctx, "duplicate event detected, skipping", logger.String("eventID", id))
		return Receipt{EventID: id, Duplicate: true}, nil
	}

	if err := s.queue.Enqueue(ctx, ev.ToModel(id)); err != nil {
		s.deduper.Unrecord(ctx, id)
		if errors.Is(err, eventqueue.ErrQueueFull) || errors.Is(err, eventqueue.ErrQueueClosed) {
			return Receipt{}, fmt.Errorf("submit %s: %w", id, ErrBackpressure)
		}
		return Receipt{}, fmt.Errorf("submit %s: %w", id, err)
	}
	return Receipt{EventID: id}, nil
}

// Filter decides ev synchronously. The verdict is not stored.
func (s *Service) Filter(ctx context.Context, ev types.Event) (types.Decision, error) { //nolint:gocritic // request payload
	if err := ev.Validate(); err != nil {
		metrics.RecordEventInvalid()
		return types.Decision{}, fmt.Errorf("filter: %w", err)
	}
	id := ev.ID()
	return types.NewDecision(s.filter.Decide(ctx, ev.ToModel(id))), nil
}

// Decision returns the stored verdict for an event id.
func (s *Service) Decision(ctx context.Context, id string) (types.Decision, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return types.Decision{}, ErrNotStarted
	}

	v, err := s.store.Get(ctx, id)
	if err != nil {
		return types.Decision{}, err
	}
	return types.NewDecision(v), nil
}

// Vetoes returns up to n vetoed events, hardest photon first.
func (s *Service) Vetoes(ctx context.Context, n int) ([]types.Decision, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}

	verdicts, err := s.store.Vetoes(ctx, n)
	if err != nil {
		return nil, err
	}
	out := make([]types.Decision, len(verdicts))
	for i, v := range verdicts {
		out[i] = types.NewDecision(v)
	}
	return out, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]any{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
		"shardCount":  s.shardCount,
		"genTag":      s.genTag,
		"policy":      s.policy.String(),
	}

	if s.started {
		ctx := context.Background()
		queueLen := s.queue.Len()
		stats["queueLength"] = queueLen
		stats["seenEvents"] = s.deduper.Size()
		stats["verdicts"] = s.store.Summary(ctx)

		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateStoreRecordsTotal(s.store.Count(ctx))
	}
	return stats
}
