package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	roomengine "quorum/contexts/group-decision/room-engine"
	postgresadapter "quorum/contexts/group-decision/room-engine/adapters/postgres"
	"quorum/internal/platform/config"
	"quorum/internal/platform/db"
	"quorum/internal/platform/httpserver"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server   *httpserver.Server
	database *db.Database
	logger   *slog.Logger
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")

	dsn, err := resolveDSN(cfg)
	if err != nil {
		return nil, err
	}

	database, err := db.Connect(cfg.DBDriver, dsn)
	if err != nil {
		return nil, err
	}

	if err := postgresadapter.Migrate(database.DB); err != nil {
		_ = database.Close()
		return nil, err
	}

	repo := postgresadapter.NewRepository(database.DB, logger)
	module := roomengine.NewModule(roomengine.Dependencies{
		Rooms:        repo,
		Options:      repo,
		Votes:        repo,
		Clock:        postgresadapter.SystemClock{},
		IDGen:        postgresadapter.UUIDGenerator{},
		Random:       postgresadapter.SystemRandom{},
		CodeAttempts: cfg.RoomCodeAttempts,
		Logger:       logger,
	})

	server := httpserver.New(module, logger, normalizeAddr(cfg.HTTPPort))
	return &APIApp{
		server:   server,
		database: database,
		logger:   logger,
	}, nil
}

func (a *APIApp) Run(_ context.Context) error {
	if a.logger != nil {
		a.logger.Info("api app started",
			"event", "bootstrap_api_started",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}
	return a.server.Start()
}

func (a *APIApp) Close() error {
	if a.database != nil {
		return a.database.Close()
	}
	return nil
}

func resolveDSN(cfg config.Config) (string, error) {
	switch cfg.DBDriver {
	case "postgres":
		if strings.TrimSpace(cfg.PostgresDSN) == "" {
			return "", errors.New("POSTGRES_DSN is required when DB_DRIVER=postgres")
		}
		return cfg.PostgresDSN, nil
	case "sqlite":
		return cfg.SQLitePath, nil
	default:
		return "", errors.New("DB_DRIVER must be postgres or sqlite")
	}
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
