package service

import (
	"strings"

	"github.com/okian/fsrfilter/internal/domain/veto"
	"github.com/okian/fsrfilter/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the event queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets how many event ids are remembered for duplicate detection.
// Zero or a negative value remembers every id.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		s.dedupeSize = size
	}
}

// WithShardCount sets the number of verdict store shards.
func WithShardCount(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.shardCount = n
		}
	}
}

// WithGenTag names the particle collection the filter reads.
func WithGenTag(tag string) Option {
	return func(s *Service) {
		if tag = strings.TrimSpace(tag); tag != "" {
			s.genTag = tag
		}
	}
}

// WithPolicy selects the veto rule generation.
func WithPolicy(p veto.Policy) Option {
	return func(s *Service) {
		s.policy = p
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
