package app

import (
	"context"

	"github.com/riskibarqy/league-rating/internal/config"
	"github.com/riskibarqy/league-rating/internal/domain/player"
	"github.com/riskibarqy/league-rating/internal/domain/rating"
	"github.com/riskibarqy/league-rating/internal/domain/store"
	"github.com/riskibarqy/league-rating/internal/infrastructure/matchfile"
	"github.com/riskibarqy/league-rating/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/league-rating/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/league-rating/internal/interfaces/cli"
	"github.com/riskibarqy/league-rating/internal/platform/logging"
	"github.com/riskibarqy/league-rating/internal/platform/metrics"
	"github.com/riskibarqy/league-rating/internal/usecase"
)

// Backend is the storage a command runs against.
type Backend struct {
	Transactor store.Transactor
	Players    player.Repository
	Close      func() error
}

// BackendOpener opens the backend named by a database URL.
type BackendOpener func(ctx context.Context, dbURL string) (Backend, error)

// PostgresOpener opens Postgres and, when DB_AUTO_MIGRATE is on, brings the
// schema up to date before any command touches it.
func PostgresOpener(cfg config.Config, logger *logging.Logger) BackendOpener {
	return func(ctx context.Context, dbURL string) (Backend, error) {
		db, err := OpenDB(ctx, dbURL, cfg.ServiceName)
		if err != nil {
			return Backend{}, err
		}
		if cfg.DBAutoMigrate {
			version, err := postgres.Migrate(ctx, db)
			if err != nil {
				_ = db.Close()
				return Backend{}, err
			}
			logger.DebugContext(ctx, "schema migrated", "database", dbNameFromURL(dbURL), "version", version)
		}

		repos := postgres.NewRepositories(db)
		return Backend{
			Transactor: postgres.NewTransactor(db),
			Players:    repos.Players,
			Close:      db.Close,
		}, nil
	}
}

// MemoryOpener serves every command from one in-process store and ignores the
// URL.
func MemoryOpener(s *memory.Store) BackendOpener {
	return func(context.Context, string) (Backend, error) {
		return Backend{
			Transactor: s,
			Players:    s.Players(),
			Close:      func() error { return nil },
		}, nil
	}
}

// Migrate applies pending migrations at dbURL.
func Migrate(ctx context.Context, cfg config.Config, dbURL string) (uint, error) {
	db, err := OpenDB(ctx, dbURL, cfg.ServiceName)
	if err != nil {
		return 0, err
	}
	defer db.Close()

	return postgres.Migrate(ctx, db)
}

// NewCLI wires configuration, storage and use cases into the command line.
func NewCLI(cfg config.Config, logger *logging.Logger, recorder *metrics.Manager, open BackendOpener) *cli.App {
	engine := rating.NewEngine(cfg.EngineOptions()...)

	services := func(ctx context.Context, settings cli.Settings) (*cli.Services, error) {
		backend, err := open(ctx, settings.DatabaseURL)
		if err != nil {
			return nil, err
		}
		parser := matchfile.NewFactory(matchfile.Options{HasHeader: settings.HasHeader})
		return &cli.Services{
			Ingestion: usecase.NewIngestionService(parser, backend.Transactor, recorder, logger),
			Periods:   usecase.NewRatingPeriodService(backend.Transactor, engine, recorder, logger),
			Ranking:   usecase.NewRankingService(backend.Players),
			Close:     backend.Close,
		}, nil
	}

	return cli.New(cli.Options{
		Name:            cfg.ServiceName,
		Version:         cfg.ServiceVersion,
		DefaultDatabase: cfg.DBURL,
		DefaultScope:    cfg.RatingPeriodScope,
		DefaultHeader:   cfg.ImportHasHeader,
		Logger:          logger,
		Services:        services,
		Migrate: func(ctx context.Context, dbURL string) (uint, error) {
			return Migrate(ctx, cfg, dbURL)
		},
		OnSuccess: func(ctx context.Context, command string) {
			recorder.CommandSucceeded(command)
			if err := recorder.Push(ctx, cfg.PushgatewayURL, cfg.PushgatewayJob); err != nil {
				logger.WarnContext(ctx, "metrics push failed", "error", err)
			}
		},
	})
}
