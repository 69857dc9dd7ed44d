package veto

import "github.com/okian/fsrfilter/pkg/logger"

// Option applies a configuration option to the Filter.
type Option func(*Filter)

// WithPolicy selects the rule generation. Defaults to PolicyRadiated.
func WithPolicy(p Policy) Option {
	return func(f *Filter) {
		f.policy = p
	}
}

// WithLogger enables diagnostic output for vetoed events.
func WithLogger(l logger.Logger) Option {
	return func(f *Filter) {
		if l != nil {
			f.logger = l
		}
	}
}
