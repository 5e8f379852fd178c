package worker

import (
	"github.com/okian/codex/pkg/logger"
)

// Option applies a configuration option to a worker or pool.
type Option func(*config)

type config struct {
	name   string
	logger logger.Logger
}

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(c *config) {
		if name != "" {
			c.name = name
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

func buildConfig(name string, opts []Option) config {
	c := config{name: name, logger: logger.Nop()}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}
