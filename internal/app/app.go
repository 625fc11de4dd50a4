// Package app assembles repositories, services and the HTTP stack from config.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"

	"github.com/fieldside/matchlog/external/syncfeed"
	"github.com/fieldside/matchlog/internal/config"
	"github.com/fieldside/matchlog/internal/domain/lineup"
	"github.com/fieldside/matchlog/internal/domain/match"
	"github.com/fieldside/matchlog/internal/domain/period"
	"github.com/fieldside/matchlog/internal/domain/reference"
	"github.com/fieldside/matchlog/internal/domain/timeline"
	"github.com/fieldside/matchlog/internal/infrastructure/account/authsvc"
	"github.com/fieldside/matchlog/internal/infrastructure/repository/memory"
	"github.com/fieldside/matchlog/internal/infrastructure/repository/postgres"
	"github.com/fieldside/matchlog/internal/interfaces/httpapi"
	"github.com/fieldside/matchlog/internal/platform/cache"
	idgen "github.com/fieldside/matchlog/internal/platform/id"
	"github.com/fieldside/matchlog/internal/platform/resilience"
	"github.com/fieldside/matchlog/internal/usecase"
)

type repositories struct {
	matches   match.Repository
	positions reference.PositionRepository
	intervals lineup.Repository
	periods   period.Repository
	events    timeline.Repository
}

// NewHTTPServer wires the whole service. The returned cleanup releases the
// database handle when one was opened; callers must run it on shutdown.
func NewHTTPServer(cfg config.Config, logger *slog.Logger) (*http.Server, func(), error) {
	cleanup := func() {}

	repos, dbCleanup, err := buildRepositories(cfg, logger)
	if err != nil {
		return nil, cleanup, err
	}
	cleanup = dbCleanup

	idGen := idgen.NewRandomGenerator()

	var cacheStore *cache.Store
	if cfg.CacheEnabled {
		cacheStore = cache.NewStore(cfg.CacheTTL)
	}

	lineupSvc := usecase.NewLineupService(repos.matches, repos.positions, repos.intervals, idGen, logger)
	subSvc := usecase.NewSubstitutionService(repos.matches, repos.positions, repos.intervals, idGen, logger)
	periodSvc := usecase.NewPeriodService(repos.matches, repos.periods, idGen, logger)
	liveSvc := usecase.NewLiveStateService(repos.matches, repos.intervals, repos.periods, repos.events, cacheStore)
	importSvc := usecase.NewLineupImportService(repos.matches, lineupSvc)

	if cfg.SyncFeedEnabled {
		notifier := syncfeed.NewPublisher(syncfeed.PublisherConfig{
			BaseURL: cfg.SyncFeedBaseURL,
			Token:   cfg.SyncFeedToken,
			Timeout: cfg.SyncFeedTimeout,
			Breaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.SyncFeedCircuitEnabled,
				FailureThreshold: cfg.SyncFeedCircuitFailureCount,
				OpenTimeout:      cfg.SyncFeedCircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.SyncFeedCircuitHalfOpenMax,
			},
		}, logger)
		lineupSvc.SetChangeNotifier(notifier)
		subSvc.SetChangeNotifier(notifier)
		periodSvc.SetChangeNotifier(notifier)
	}

	authClient := authsvc.NewClient(
		&http.Client{Timeout: cfg.AuthTimeout},
		cfg.AuthBaseURL,
		cfg.AuthIntrospectPath,
		resilience.CircuitBreakerConfig{
			Enabled:          cfg.AuthCircuitEnabled,
			FailureThreshold: cfg.AuthCircuitFailureCount,
			OpenTimeout:      cfg.AuthCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.AuthCircuitHalfOpenMaxReq,
		},
		logger,
	)

	handler := httpapi.NewHandler(lineupSvc, subSvc, periodSvc, liveSvc, importSvc, logger)
	router := httpapi.NewRouter(handler, authClient, logger, cfg.CORSAllowedOrigins)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if server.Addr == "" {
		return nil, cleanup, fmt.Errorf("http server addr cannot be empty")
	}

	return server, cleanup, nil
}

func buildRepositories(cfg config.Config, logger *slog.Logger) (repositories, func(), error) {
	noop := func() {}

	if cfg.DBURL == "" {
		logger.Info("using in-memory repositories")

		matchRepo := memory.NewMatchRepository()
		for _, item := range memory.SeedMatches() {
			matchRepo.Put(item)
		}
		timelineRepo := memory.NewTimelineRepository()

		return repositories{
			matches:   matchRepo,
			positions: memory.NewPositionRepository(memory.SeedPositionCodes()),
			intervals: memory.NewIntervalRepository(timelineRepo),
			periods:   memory.NewPeriodRepository(),
			events:    timelineRepo,
		}, noop, nil
	}

	dsn := normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary)
	db, err := otelsqlx.Connect("postgres", dsn,
		otelsql.WithDBName(dbNameFromURL(dsn)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return repositories{}, noop, fmt.Errorf("connect postgres: %w", err)
	}

	if err := postgres.BootstrapSeed(context.Background(), db); err != nil {
		_ = db.Close()
		return repositories{}, noop, fmt.Errorf("bootstrap seed: %w", err)
	}

	logger.Info("using postgres repositories", "db", dbNameFromURL(dsn))

	cleanup := func() {
		_ = db.Close()
	}

	return repositories{
		matches:   postgres.NewMatchRepository(db),
		positions: postgres.NewPositionRepository(db),
		intervals: postgres.NewIntervalRepository(db),
		periods:   postgres.NewPeriodRepository(db),
		events:    postgres.NewTimelineRepository(db),
	}, cleanup, nil
}
