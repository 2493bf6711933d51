package evaluator

import (
	"github.com/sig-0/go-abse/log"
)

type Config struct {
	BaselineFn BaselineFn
	Logger     log.Logger
	Metrics    *Metrics
}

func NewConfig(opts ...Option) Config {
	cfg := Config{
		BaselineFn: QuorumBaseline,
		Logger:     log.NewNopLogger(),
		Metrics:    NopMetrics(),
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}

type Option func(*Config)

// WithBaselineFn overrides the rule used to recompute the baseline on every update
func WithBaselineFn(fn BaselineFn) Option {
	return func(cfg *Config) {
		if fn != nil {
			cfg.BaselineFn = fn
		}
	}
}

func WithLogger(l log.Logger) Option {
	return func(cfg *Config) {
		if l != nil {
			cfg.Logger = l
		}
	}
}

func WithMetrics(m *Metrics) Option {
	return func(cfg *Config) {
		if m != nil {
			cfg.Metrics = m
		}
	}
}
