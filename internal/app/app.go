package app

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"

	"github.com/febriansr/prediction-league/internal/config"
	"github.com/febriansr/prediction-league/internal/domain/fixture"
	"github.com/febriansr/prediction-league/internal/domain/group"
	"github.com/febriansr/prediction-league/internal/domain/nudge"
	"github.com/febriansr/prediction-league/internal/domain/prediction"
	"github.com/febriansr/prediction-league/internal/domain/user"
	"github.com/febriansr/prediction-league/internal/infrastructure/account/gatekeeper"
	cacherepo "github.com/febriansr/prediction-league/internal/infrastructure/repository/cache"
	"github.com/febriansr/prediction-league/internal/infrastructure/repository/memory"
	"github.com/febriansr/prediction-league/internal/infrastructure/repository/postgres"
	"github.com/febriansr/prediction-league/internal/interfaces/httpapi"
	basecache "github.com/febriansr/prediction-league/internal/platform/cache"
	idgen "github.com/febriansr/prediction-league/internal/platform/id"
	"github.com/febriansr/prediction-league/internal/platform/logging"
	"github.com/febriansr/prediction-league/internal/platform/resilience"
	"github.com/febriansr/prediction-league/internal/usecase"
)

const dbPingTimeout = 5 * time.Second

type repositories struct {
	users       user.Repository
	groups      group.Repository
	fixtures    fixture.Repository
	predictions prediction.Repository
	nudges      nudge.Repository
}

// NewHTTPServer wires repositories, services and the HTTP router into a
// ready-to-listen server. The returned cleanup releases the invalidator
// worker pool and the database handle; call it after Shutdown.
func NewHTTPServer(cfg config.Config, logger *logging.Logger) (*http.Server, func(), error) {
	if logger == nil {
		logger = logging.Default()
	}

	repos, db, err := buildRepositories(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	var snapshots usecase.RankingSnapshotStore
	var snapshotStore *basecache.Store
	if cfg.CacheEnabled {
		snapshotStore = basecache.NewStore(cfg.CacheTTL)
		snapshots = snapshotStore
		repos.fixtures = cacherepo.NewFixtureRepository(repos.fixtures, snapshotStore)
	}

	invalidator, err := cacherepo.NewRankingInvalidator(snapshotStore, cfg.InvalidatorWorkers, logger)
	if err != nil {
		if db != nil {
			db.Close()
		}
		return nil, nil, fmt.Errorf("build ranking invalidator: %w", err)
	}

	ids := idgen.NewRandomGenerator()
	groupSvc := usecase.NewGroupService(repos.groups, repos.fixtures, repos.predictions, invalidator, ids)
	predictionSvc := usecase.NewPredictionService(repos.groups, repos.fixtures, repos.predictions, invalidator, ids)
	rankingSvc := usecase.NewRankingService(repos.groups, repos.fixtures, repos.predictions, repos.nudges, snapshots, cfg.NudgeDefaultWindow)
	nudgeSvc := usecase.NewNudgeService(repos.groups, repos.fixtures, repos.predictions, repos.nudges, ids, cfg.NudgeDefaultWindow)

	verifier := gatekeeper.NewClient(gatekeeper.ClientConfig{
		BaseURL:        cfg.GatekeeperBaseURL,
		IntrospectPath: cfg.GatekeeperIntrospectURL,
		AdminKey:       cfg.GatekeeperAdminKey,
		Timeout:        cfg.GatekeeperTimeout,
		Logger:         logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.GatekeeperCircuitEnabled,
			FailureThreshold: cfg.GatekeeperCircuitFailureCount,
			OpenTimeout:      cfg.GatekeeperCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.GatekeeperCircuitHalfOpenMaxReq,
		},
	})

	handler := httpapi.NewHandler(groupSvc, predictionSvc, rankingSvc, nudgeSvc, logger)
	router := httpapi.NewRouter(handler, verifier, repos.users, logger, cfg.CORSAllowedOrigins)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if server.Addr == "" {
		invalidator.Close()
		if db != nil {
			db.Close()
		}
		return nil, nil, fmt.Errorf("http server addr cannot be empty")
	}

	cleanup := func() {
		invalidator.Close()
		if db != nil {
			if err := db.Close(); err != nil {
				logger.Warn("close database", "error", err)
			}
		}
	}

	return server, cleanup, nil
}

func buildRepositories(cfg config.Config, logger *logging.Logger) (repositories, *sqlx.DB, error) {
	if strings.TrimSpace(cfg.DBURL) == "" {
		logger.Info("no DB_URL configured, using in-memory repositories")
		users := memory.NewUserRepository(memory.SeedUsers())
		return repositories{
			users:       users,
			groups:      memory.NewGroupRepository(users),
			fixtures:    memory.NewFixtureRepository(memory.SeedFixtures(time.Now().UTC())),
			predictions: memory.NewPredictionRepository(),
			nudges:      memory.NewNudgeRepository(),
		}, nil, nil
	}

	db, err := openDB(cfg)
	if err != nil {
		return repositories{}, nil, err
	}

	logger.Info("connected to postgres", "db", dbNameFromURL(cfg.DBURL))

	return repositories{
		users:       postgres.NewUserRepository(db),
		groups:      postgres.NewGroupRepository(db),
		fixtures:    postgres.NewFixtureRepository(db),
		predictions: postgres.NewPredictionRepository(db),
		nudges:      postgres.NewNudgeRepository(db),
	}, db, nil
}

func openDB(cfg config.Config) (*sqlx.DB, error) {
	dsn := normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary)

	db, err := otelsqlx.Open("postgres", dsn,
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithDBName(dbNameFromURL(cfg.DBURL)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), dbPingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return db, nil
}
