package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"adminconsole/internal/pkg/logger"
	"adminconsole/internal/platform/audit"
	"adminconsole/internal/platform/auth"
	"adminconsole/internal/platform/config"
	"adminconsole/internal/platform/database"
	"adminconsole/internal/platform/repositories"
	"adminconsole/internal/workers"
)

// The worker keeps a shared session database tidy when several console
// replicas use it: expired sessions and old audit entries are removed on a
// schedule. -once runs both jobs a single time and exits.
func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to config file")
	once := flag.Bool("once", false, "Run every job once and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Init(cfg.Logging)
	workerLog := logger.Component("worker")

	db, err := database.Open(cfg.Session)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open session database")
	}
	defer db.Close()
	if _, err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate session database")
	}

	sealer, err := auth.NewSealer(cfg.Session.Secret)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to derive session key")
	}
	sessions := auth.NewSessions(repositories.NewSessionRepository(db), sealer)
	auditLog := audit.NewLogger(db)

	if *once {
		workers.PruneSessions(sessions, workerLog)
		workers.PruneAudit(auditLog, cfg.Audit.Retention, workerLog)
		return
	}

	scheduler, err := workers.NewScheduler()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create scheduler")
	}
	if err := scheduler.AddSessionJobs(sessions, cfg.Session.PruneInterval); err != nil {
		log.Fatal().Err(err).Msg("failed to schedule session pruning")
	}
	if err := scheduler.AddAuditJobs(auditLog, cfg.Audit); err != nil {
		log.Fatal().Err(err).Msg("failed to schedule audit pruning")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	workerLog.Info().Msg("starting console maintenance worker")
	scheduler.Start()
	<-ctx.Done()

	if err := scheduler.Shutdown(); err != nil {
		log.Error().Err(err).Msg("scheduler shutdown failed")
	}
}
