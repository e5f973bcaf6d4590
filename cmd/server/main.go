package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"adminconsole/internal/api"
	"adminconsole/internal/api/handlers"
	"adminconsole/internal/api/middleware"
	"adminconsole/internal/engine/cache"
	"adminconsole/internal/engine/query"
	"adminconsole/internal/engine/resources"
	"adminconsole/internal/pkg/logger"
	"adminconsole/internal/platform/audit"
	"adminconsole/internal/platform/auth"
	"adminconsole/internal/platform/broadcast"
	"adminconsole/internal/platform/config"
	"adminconsole/internal/platform/database"
	"adminconsole/internal/platform/repositories"
	"adminconsole/internal/transport"
	"adminconsole/internal/workers"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Logging)

	// Session store
	db, err := database.Open(cfg.Session)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open session database")
	}
	defer db.Close()

	if ran, err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate session database")
	} else if len(ran) > 0 {
		log.Info().Strs("migrations", ran).Msg("applied migrations")
	}

	sealer, err := auth.NewSealer(cfg.Session.Secret)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to derive session key")
	}
	sessions := auth.NewSessions(repositories.NewSessionRepository(db), sealer)
	auditLog := audit.NewLogger(db)

	// Backend transport
	monitor := transport.NewMonitor()
	unsubscribe := monitor.Subscribe(func(ev transport.Degraded) {
		log.Warn().Str("method", ev.Method).Str("path", ev.Path).Int("status", ev.Status).Msg("backend degraded")
	})
	defer unsubscribe()

	client, err := transport.New(transport.Options{
		BaseURL:           cfg.Backend.BaseURL,
		Timeout:           cfg.Backend.Timeout,
		IntegrationPrefix: cfg.Backend.IntegrationPrefix,
		Tokens:            sessions.AccessTokens(),
		IntegrationTokens: sessions.IntegrationTokens(),
		Reporter:          monitor,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create backend client")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Query engine, optionally sharing invalidations with other replicas
	opts := []query.Option{query.WithScope(auth.SessionFrom)}
	var redis handlers.Pinger
	var bc *broadcast.Broadcaster
	if cfg.Broadcast.Enabled {
		bc, err = broadcast.New(cfg.Broadcast)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to broadcast redis")
		}
		defer bc.Close()
		opts = append(opts, query.WithPublisher(bc))
		redis = bc
	}
	engine := query.New(client, cache.NewStore(), opts...)

	if bc != nil {
		go func() {
			if err := bc.Run(ctx, engine); err != nil {
				log.Error().Err(err).Msg("broadcast listener stopped")
			}
		}()
	}

	// Maintenance jobs
	limiter := middleware.NewRateLimiter(cfg.RateLimit)
	scheduler, err := workers.NewScheduler()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create scheduler")
	}
	if err := scheduler.AddCacheJobs(engine, cfg.Cache); err != nil {
		log.Fatal().Err(err).Msg("failed to schedule cache jobs")
	}
	if err := scheduler.AddSessionJobs(sessions, cfg.Session.PruneInterval); err != nil {
		log.Fatal().Err(err).Msg("failed to schedule session pruning")
	}
	if err := scheduler.AddAuditJobs(auditLog, cfg.Audit); err != nil {
		log.Fatal().Err(err).Msg("failed to schedule audit jobs")
	}
	if err := scheduler.Every("rate-limit-sweep", cfg.RateLimit.SweepInterval, func() {
		limiter.Sweep(cfg.RateLimit.SweepInterval)
	}); err != nil {
		log.Fatal().Err(err).Msg("failed to schedule rate limit sweep")
	}
	scheduler.Start()

	// Router
	deps := api.NewDependencies(api.Services{
		Engine:   engine,
		Catalog:  resources.NewCatalog(cfg.Backend.IntegrationPrefix),
		Sessions: sessions,
		Audit:    auditLog,
		Monitor:  monitor,
		DB:       db,
		Redis:    redis,
		Limiter:  limiter,
		Currency: cfg.Backend.Currency,
	})
	router := api.NewRouter(deps)
	httpLog := logger.Component("http")

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      middleware.Logger(httpLog, middleware.Recovery(httpLog, router)),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info().Str("addr", addr).Str("backend", cfg.Backend.BaseURL).Msg("console server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	if err := scheduler.Shutdown(); err != nil {
		log.Error().Err(err).Msg("scheduler shutdown failed")
	}
	auditLog.Wait()
}
