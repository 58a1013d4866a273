// Package service provides the ranking service that backs the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	repository "github.com/okian/crosscount/internal/adapters/repository"
	"github.com/okian/crosscount/internal/domain/model"
	"github.com/okian/crosscount/internal/domain/ranking"
	"github.com/okian/crosscount/internal/domain/types"
	"github.com/okian/crosscount/pkg/logger"
	"github.com/okian/crosscount/pkg/metrics"
)

// Default service configuration.
const (
	defaultMaxRankings = 50
	defaultPrecision   = 1
)

// Health is the body of the health endpoint.
type Health struct {
	Status    string          `json:"status"`
	Timestamp model.Timestamp `json:"timestamp"`
}

// Service owns the session store and answers ranking queries. Aggregates are
// recomputed from the store on every call.
type Service struct {
	mu sync.RWMutex

	store     repository.Store
	ownsStore bool

	// Configuration
	backend      string
	databasePath string
	resultsFile  string
	maxRankings  int
	precision    int
	now          func() time.Time

	started bool
	logger  logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		ownsStore:   true,
		backend:     repository.BackendMemory,
		maxRankings: defaultMaxRankings,
		precision:   defaultPrecision,
		now:         time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start opens the store (unless one was injected) and imports the results
// file when one is configured.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting ranking service...")

	if s.store == nil {
		store, err := repository.Open(ctx, s.backend,
			repository.WithDatabasePath(s.databasePath),
			repository.WithResultsFile(s.resultsFile),
		)
		if err != nil {
			return fmt.Errorf("open %s store: %w", s.backend, err)
		}
		s.store = store
		s.ownsStore = true
	}

	if s.resultsFile != "" && s.backend != repository.BackendFile {
		if err := s.importResults(ctx); err != nil {
			if s.ownsStore {
				_ = s.store.Close()
				s.store = nil
			}
			return err
		}
	}

	s.started = true
	s.logger.Info(ctx, "ranking service started",
		logger.String("backend", s.backend),
		logger.Int("maxRankings", s.maxRankings),
		logger.Int("precision", s.precision),
	)

	return nil
}

// importResults loads the results file into the store. Importers get a full
// replace; other stores get each session appended.
func (s *Service) importResults(ctx context.Context) error {
	sessions, skipped, err := repository.LoadResultsFile(s.resultsFile)
	if err != nil {
		return err
	}
	if skipped > 0 {
		for range skipped {
			metrics.RecordSessionRejected("results_file")
		}
		s.logger.Warn(ctx, "skipped invalid sessions in results file",
			logger.String("path", s.resultsFile),
			logger.Int("skipped", skipped),
		)
	}

	if imp, ok := s.store.(repository.Importer); ok {
		if err := imp.Replace(ctx, sessions); err != nil {
			return fmt.Errorf("import results: %w", err)
		}
	} else {
		for _, sess := range sessions {
			if _, err := s.store.Append(ctx, sess); err != nil {
				return fmt.Errorf("import results: %w", err)
			}
		}
	}

	s.logger.Info(ctx, "imported results file",
		logger.String("path", s.resultsFile),
		logger.Int("sessions", len(sessions)),
	)
	return nil
}

// Stop releases the store if the service opened it.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping ranking service...")

	if s.ownsStore && s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.Warn(context.Background(), "failed to close store", logger.Error(err))
		}
		s.store = nil
	}

	s.started = false
	s.logger.Info(context.Background(), "ranking service stopped")
}

// MaxRankings returns the default and maximum rankings limit.
func (s *Service) MaxRankings() int {
	return s.maxRankings
}

func (s *Service) startedStore() (repository.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return nil, ErrNotStarted
	}
	return s.store, nil
}

func (s *Service) sessions(ctx context.Context) ([]model.Session, error) {
	store, err := s.startedStore()
	if err != nil {
		return nil, err
	}
	return store.All(ctx)
}

func (s *Service) aggregate(ctx context.Context) ([]types.Entry, types.GlobalStats, error) {
	start := time.Now()
	all, err := s.sessions(ctx)
	if err != nil {
		return nil, types.GlobalStats{}, err
	}
	entries, global := ranking.Aggregate(all)
	metrics.RecordAggregationLatency(time.Since(start))
	metrics.UpdateTracked(global.TotalSessions, global.TotalUsers)
	return entries, global, nil
}

// Rankings returns the top limit entries. A zero limit means the configured
// maximum. TotalUsers counts every user, not just the returned ones.
func (s *Service) Rankings(ctx context.Context, limit int) (types.Rankings, error) {
	switch {
	case limit == 0:
		limit = s.maxRankings
	case limit < 0:
		return types.Rankings{}, fmt.Errorf("%w: %d", ErrInvalidLimit, limit)
	case limit > s.maxRankings:
		return types.Rankings{}, fmt.Errorf("%w: %d > %d", ErrLimitExceeded, limit, s.maxRankings)
	}

	entries, _, err := s.aggregate(ctx)
	if err != nil {
		return types.Rankings{}, err
	}

	total := len(entries)
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return types.Rankings{
		Rankings:   ranking.RoundEntries(entries, s.precision),
		TotalUsers: total,
	}, nil
}

// GlobalStats returns the aggregate over all sessions.
func (s *Service) GlobalStats(ctx context.Context) (types.GlobalStats, error) {
	_, global, err := s.aggregate(ctx)
	if err != nil {
		return types.GlobalStats{}, err
	}
	return ranking.RoundGlobal(global, s.precision), nil
}

// UserStats returns one user's summary and sessions, or ranking.ErrUserNotFound.
// The history comes from the store's per-user lookup; the rank needs the
// full set.
func (s *Service) UserStats(ctx context.Context, username string) (types.UserStats, error) {
	store, err := s.startedStore()
	if err != nil {
		return types.UserStats{}, err
	}
	own, err := store.ByUser(ctx, username)
	if err != nil {
		return types.UserStats{}, fmt.Errorf("load user sessions: %w", err)
	}
	if len(own) == 0 {
		return types.UserStats{}, ranking.ErrUserNotFound
	}

	entries, _, err := s.aggregate(ctx)
	if err != nil {
		return types.UserStats{}, err
	}
	u, err := ranking.ForUser(entries, own, username)
	if err != nil {
		return types.UserStats{}, err
	}
	return ranking.RoundUser(u, s.precision), nil
}

// Submit validates and stores a session. A zero timestamp is set to now.
func (s *Service) Submit(ctx context.Context, sess model.Session) (model.Session, error) {
	if sess.Timestamp.IsZero() {
		sess.Timestamp = model.NewTimestamp(s.now())
	}
	sess.ID = ""
	if err := sess.Validate(); err != nil {
		metrics.RecordSessionRejected("validation")
		return model.Session{}, err
	}

	s.mu.RLock()
	store, started := s.store, s.started
	s.mu.RUnlock()
	if !started {
		return model.Session{}, ErrNotStarted
	}

	stored, err := store.Append(ctx, sess)
	if err != nil {
		metrics.RecordErrorByComponent("service", "store_append")
		return model.Session{}, fmt.Errorf("append session: %w", err)
	}
	metrics.RecordSessionSubmitted()

	s.logger.Debug(ctx, "session stored",
		logger.String("id", stored.ID),
		logger.String("username", stored.Username),
		logger.Float64("rate", stored.RatePerMinute),
		logger.Int("crossings", stored.TotalCrossings),
	)
	return stored, nil
}

// Health reports whether the store answers.
func (s *Service) Health(ctx context.Context) (Health, error) {
	s.mu.RLock()
	store, started := s.store, s.started
	s.mu.RUnlock()

	h := Health{Status: "healthy", Timestamp: model.NewTimestamp(s.now())}
	if !started {
		h.Status = "unhealthy"
		return h, ErrNotStarted
	}
	if _, err := store.Count(ctx); err != nil {
		h.Status = "unhealthy"
		return h, errors.Join(errors.New("store unavailable"), err)
	}
	return h, nil
}
