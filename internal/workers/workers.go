// Package workers runs the console's periodic maintenance: re-fetching
// mounted reads that went stale, sweeping unused cache entries, pruning
// expired sessions and trimming the audit log.
package workers

import (
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog"

	"adminconsole/internal/engine/query"
	"adminconsole/internal/pkg/logger"
	"adminconsole/internal/platform/audit"
	"adminconsole/internal/platform/auth"
	"adminconsole/internal/platform/config"
)

// RefetchStale triggers a re-fetch for every mounted read that is stale.
func RefetchStale(e *query.Engine, log zerolog.Logger) int {
	n := e.RefetchStale()
	if n > 0 {
		log.Debug().Int("subscriptions", n).Msg("refetching stale subscriptions")
	}
	return n
}

// SweepCache drops cache entries nobody used for longer than keepFor.
func SweepCache(e *query.Engine, keepFor time.Duration, log zerolog.Logger) int {
	n := e.Store().Sweep(keepFor)
	if n > 0 {
		log.Debug().Int("entries", n).Msg("swept unused cache entries")
	}
	return n
}

// PruneSessions deletes expired console sessions.
func PruneSessions(s *auth.Sessions, log zerolog.Logger) int64 {
	n, err := s.Prune()
	if err != nil {
		log.Error().Err(err).Msg("failed to prune sessions")
		return 0
	}
	if n > 0 {
		log.Info().Int64("sessions", n).Msg("pruned expired sessions")
	}
	return n
}

// PruneAudit deletes audit entries older than retention.
func PruneAudit(l *audit.Logger, retention time.Duration, log zerolog.Logger) int64 {
	n, err := l.Prune(time.Now().Add(-retention))
	if err != nil {
		log.Error().Err(err).Msg("failed to prune audit log")
		return 0
	}
	if n > 0 {
		log.Info().Int64("entries", n).Msg("pruned audit log")
	}
	return n
}

type Scheduler struct {
	scheduler gocron.Scheduler
	log       zerolog.Logger
}

func NewScheduler() (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}
	return &Scheduler{scheduler: s, log: logger.Component("workers")}, nil
}

// Every runs fn every interval. A run still in progress when the next is due
// pushes the next run back.
func (s *Scheduler) Every(name string, interval time.Duration, fn func()) error {
	_, err := s.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(fn),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	return err
}

// AddCacheJobs schedules the stale-refetch and sweep jobs for e.
func (s *Scheduler) AddCacheJobs(e *query.Engine, cfg config.CacheConfig) error {
	if err := s.Every("cache-refetch", cfg.RefetchInterval, func() { RefetchStale(e, s.log) }); err != nil {
		return err
	}
	return s.Every("cache-sweep", cfg.SweepInterval, func() { SweepCache(e, cfg.KeepUnusedFor, s.log) })
}

func (s *Scheduler) AddSessionJobs(sessions *auth.Sessions, interval time.Duration) error {
	return s.Every("session-prune", interval, func() { PruneSessions(sessions, s.log) })
}

func (s *Scheduler) AddAuditJobs(l *audit.Logger, cfg config.AuditConfig) error {
	return s.Every("audit-prune", cfg.PruneInterval, func() { PruneAudit(l, cfg.Retention, s.log) })
}

func (s *Scheduler) Start() {
	s.log.Info().Int("jobs", len(s.scheduler.Jobs())).Msg("starting scheduler")
	s.scheduler.Start()
}

func (s *Scheduler) Shutdown() error {
	return s.scheduler.Shutdown()
}
