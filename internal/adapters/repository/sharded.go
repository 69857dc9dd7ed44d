package repository

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/okian/fsrfilter/internal/domain/model"
	"github.com/okian/fsrfilter/internal/domain/veto"
	"github.com/okian/fsrfilter/pkg/metrics"
)

const (
	defaultShardCount            = 16
	defaultMetricsUpdateInterval = 5 * time.Second
)

type shard struct {
	mu       sync.RWMutex
	verdicts map[string]model.Verdict
}

// ShardedStore is an in-memory Store. Verdicts live in xxhash-selected map shards;
// vetoed verdicts are also held in an ordered index for Vetoes.
//
// Lock order: shard before index.
type ShardedStore struct {
	shards                []*shard
	shardCount            int
	metricsUpdateInterval time.Duration

	mu      sync.RWMutex // guards index and summary
	index   vetoIndex
	summary Summary

	wg       sync.WaitGroup
	stopChan chan struct{}
	stopOnce sync.Once
}

// NewShardedStore builds a store and starts its background metrics updater,
// which stops on Close or when ctx is done.
func NewShardedStore(ctx context.Context, opts ...Option) *ShardedStore {
	s := &ShardedStore{
		shardCount:            defaultShardCount,
		metricsUpdateInterval: defaultMetricsUpdateInterval,
		stopChan:              make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.shards = make([]*shard, s.shardCount)
	for i := range s.shards {
		s.shards[i] = &shard{verdicts: make(map[string]model.Verdict)}
	}

	metrics.UpdateStoreShardCount(s.shardCount)
	s.startMetricsUpdater(ctx)
	return s
}

func (s *ShardedStore) shardFor(id string) *shard {
	return s.shards[xxhash.Sum64String(id)%uint64(len(s.shards))]
}

// Record implements Store.Record.
func (s *ShardedStore) Record(_ context.Context, v model.Verdict) error { //nolint:gocritic // verdicts are stored by value
	start := time.Now()
	defer func() {
		metrics.RecordStoreUpdateLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	if v.EventID == "" {
		metrics.RecordErrorByComponent("repository", "invalid_event_id")
		return fmt.Errorf("record: %w", ErrInvalidEventID)
	}

	sh := s.shardFor(v.EventID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	old, existed := sh.verdicts[v.EventID]
	sh.verdicts[v.EventID] = v

	s.mu.Lock()
	if existed {
		s.unaccount(old)
	}
	s.account(v)
	s.mu.Unlock()
	return nil
}

// account adds v to the summary and index. Caller holds s.mu.
func (s *ShardedStore) account(v model.Verdict) { //nolint:gocritic // by value
	s.summary.Total++
	if v.Keep {
		s.summary.Kept++
		return
	}
	s.summary.Vetoed++
	switch v.VetoOrigin {
	case veto.OriginFSR.String():
		s.summary.VetoedFSR++
	case veto.OriginISR.String():
		s.summary.VetoedISR++
	}
	s.index.add(v)
}

// unaccount reverses account. Caller holds s.mu.
func (s *ShardedStore) unaccount(v model.Verdict) { //nolint:gocritic // by value
	s.summary.Total--
	if v.Keep {
		s.summary.Kept--
		return
	}
	s.summary.Vetoed--
	switch v.VetoOrigin {
	case veto.OriginFSR.String():
		s.summary.VetoedFSR--
	case veto.OriginISR.String():
		s.summary.VetoedISR--
	}
	s.index.delete(v.EventID, v.VetoPt)
}

// Get implements Store.Get.
func (s *ShardedStore) Get(_ context.Context, eventID string) (model.Verdict, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreQueryLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	sh := s.shardFor(eventID)
	sh.mu.RLock()
	v, ok := sh.verdicts[eventID]
	sh.mu.RUnlock()
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return model.Verdict{}, fmt.Errorf("get %q: %w", eventID, ErrNotFound)
	}
	return v, nil
}

// Vetoes implements Store.Vetoes: vetoed verdicts ordered by photon pt desc, then event id asc.
func (s *ShardedStore) Vetoes(_ context.Context, limit int) ([]model.Verdict, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreQueryLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	if limit < 1 {
		metrics.RecordErrorByComponent("repository", "invalid_limit")
		return nil, ErrInvalidLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.top(limit), nil
}

// Count returns the number of stored verdicts.
func (s *ShardedStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.summary.Total
}

// Summary returns aggregate counts over every stored verdict.
func (s *ShardedStore) Summary(_ context.Context) Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.summary
}

// Close stops the background metrics updater.
func (s *ShardedStore) Close() error {
	s.stopOnce.Do(func() { close(s.stopChan) })
	s.wg.Wait()
	return nil
}

func (s *ShardedStore) startMetricsUpdater(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.metricsUpdateInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				s.updateMetrics()
			}
		}
	}()
}

func (s *ShardedStore) updateMetrics() {
	total := 0
	for i, sh := range s.shards {
		sh.mu.RLock()
		n := len(sh.verdicts)
		sh.mu.RUnlock()
		total += n
		metrics.UpdateStoreRecordsPerShard(strconv.Itoa(i), n)
	}
	metrics.UpdateStoreRecordsTotal(total)
}
