package service

import (
	"time"

	repository "github.com/okian/crosscount/internal/adapters/repository"
	"github.com/okian/crosscount/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStore injects an already constructed store. The caller keeps ownership
// and Stop does not close it.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
			s.ownsStore = false
		}
	}
}

// WithBackend selects the store backend opened by Start.
func WithBackend(backend string) Option {
	return func(s *Service) {
		if backend != "" {
			s.backend = backend
		}
	}
}

// WithDatabasePath sets the SQLite database file.
func WithDatabasePath(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.databasePath = path
		}
	}
}

// WithResultsFile sets the JSON results file. For the file backend it is the
// store itself; for the others it is imported once at Start.
func WithResultsFile(path string) Option {
	return func(s *Service) {
		s.resultsFile = path
	}
}

// WithMaxRankings sets the default and maximum rankings limit.
func WithMaxRankings(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxRankings = n
		}
	}
}

// WithPrecision sets the number of decimals rates are rounded to in
// responses. Negative disables rounding.
func WithPrecision(p int) Option {
	return func(s *Service) {
		s.precision = p
	}
}

// WithClock overrides the time source used for default submission timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}
