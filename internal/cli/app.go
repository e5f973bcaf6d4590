package cli

import (
	"context"
	"database/sql"
	"fmt"

	"adminconsole/internal/engine/cache"
	"adminconsole/internal/engine/query"
	"adminconsole/internal/engine/resources"
	"adminconsole/internal/platform/auth"
	"adminconsole/internal/platform/config"
	"adminconsole/internal/platform/database"
	"adminconsole/internal/platform/repositories"
	"adminconsole/internal/transport"
)

// CLISession is the session id the CLI keeps its login under.
const CLISession = "cli"

// App is the console core wired for one CLI invocation.
type App struct {
	Config   *config.Config
	Sessions *auth.Sessions
	Engine   *query.Engine
	Catalog  *resources.Catalog
	Monitor  *transport.Monitor

	db *sql.DB
}

func NewApp(cfg *config.Config) (*App, error) {
	db, err := database.Open(cfg.Session)
	if err != nil {
		return nil, fmt.Errorf("open session database: %w", err)
	}
	if _, err := database.Migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate session database: %w", err)
	}

	sealer, err := auth.NewSealer(cfg.Session.Secret)
	if err != nil {
		db.Close()
		return nil, err
	}
	sessions := auth.NewSessions(repositories.NewSessionRepository(db), sealer)

	monitor := transport.NewMonitor()
	client, err := transport.New(transport.Options{
		BaseURL:           cfg.Backend.BaseURL,
		Timeout:           cfg.Backend.Timeout,
		IntegrationPrefix: cfg.Backend.IntegrationPrefix,
		Tokens:            sessions.AccessTokens(),
		IntegrationTokens: sessions.IntegrationTokens(),
		Reporter:          monitor,
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &App{
		Config:   cfg,
		Sessions: sessions,
		Engine:   query.New(client, cache.NewStore(), query.WithScope(auth.SessionFrom)),
		Catalog:  resources.NewCatalog(cfg.Backend.IntegrationPrefix),
		Monitor:  monitor,
		db:       db,
	}, nil
}

// SignedIn scopes ctx to the CLI's stored session.
func (a *App) SignedIn(ctx context.Context) context.Context {
	return auth.WithSession(ctx, CLISession)
}

func (a *App) Close() error {
	return a.db.Close()
}
