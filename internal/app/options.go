package service

import (
	"github.com/okian/codex/internal/adapters/repository"
	"github.com/okian/codex/internal/adapters/tiersource"
	"github.com/okian/codex/pkg/logger"
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

// WithQueueSize sets the maximum size of the level-up queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the event id cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithFeedBuffer sets the per-subscriber notification backlog.
func WithFeedBuffer(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.feedBuffer = size
		}
	}
}

// WithMaxItemLevel caps inventory item levels.
func WithMaxItemLevel(level int) Option {
	return func(s *Service) {
		if level > 0 {
			s.maxItemLevel = level
		}
	}
}

// WithDataPath sets the YAML file tiers and the starting inventory are read
// from at Start.
func WithDataPath(path string) Option {
	return func(s *Service) {
		s.dataPath = path
	}
}

// WithData supplies tiers and items directly; the data path is then ignored.
func WithData(data tiersource.Data) Option {
	return func(s *Service) {
		d := data
		s.data = &d
	}
}

// WithStorePath keeps collection progress in a SQLite file.
func WithStorePath(path string) Option {
	return func(s *Service) {
		s.storePath = path
	}
}

// WithStore supplies the progress store; the store path is then ignored.
// The caller owns it and closes it after the last Stop.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		s.store = store
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
