// Package config defines service configuration and its loading.
//
// Precedence (low -> high): defaults from New, the YAML file named by
// FSRFILTER_CONFIG, then FSRFILTER_* environment variables. Unknown keys are ignored.
package config

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/okian/fsrfilter/internal/domain/types"
	"github.com/okian/fsrfilter/internal/domain/veto"
	"github.com/okian/fsrfilter/pkg/logger"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json log lines.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// GenTag names the generator-level particle collection read from each event.
	GenTag string `koanf:"gen_tag"`

	// Policy selects the veto rule generation: v1, v2, v3 or their names.
	Policy string `koanf:"policy"`

	// EventQueueSize bounds the in-memory event queue.
	EventQueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of filter workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets how many event ids are remembered. Zero keeps all.
	DedupeSize int `koanf:"dedupe_size"`

	// ShardCount configures the number of verdict store shards.
	ShardCount int `koanf:"shard_count"`

	// MaxVetoLimit caps GET /vetoes?limit.
	MaxVetoLimit int `koanf:"max_veto_limit"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:       "info",
		LogFormat:      logger.FormatText,
		Addr:           ":9080",
		GenTag:         types.DefaultGenTag,
		Policy:         veto.PolicyRadiated.String(),
		EventQueueSize: 100_000,
		WorkerCount:    runtime.NumCPU() * 2,
		DedupeSize:     500_000,
		ShardCount:     16,
		MaxVetoLimit:   100,
	}
}

// Validate checks the values the service cannot start without.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if strings.TrimSpace(c.GenTag) == "" {
		return fmt.Errorf("%w: gen_tag must not be empty", ErrInvalidConfig)
	}
	if _, err := veto.ParsePolicy(c.Policy); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// VetoPolicy returns the parsed policy. Call Validate first.
func (c *Config) VetoPolicy() veto.Policy {
	p, _ := veto.ParsePolicy(c.Policy)
	return p
}
