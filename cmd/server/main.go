// Command server runs the event pool HTTP service.
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

	"github.com/kirkpatrick8/eventpool/internal/api"
	crawlapi "github.com/kirkpatrick8/eventpool/internal/api/crawl"
	poolapi "github.com/kirkpatrick8/eventpool/internal/api/pool"
	"github.com/kirkpatrick8/eventpool/internal/cache"
	"github.com/kirkpatrick8/eventpool/internal/config"
	"github.com/kirkpatrick8/eventpool/internal/notify"
	crawlsvc "github.com/kirkpatrick8/eventpool/internal/service/crawl"
	"github.com/kirkpatrick8/eventpool/internal/service/leaderboard"
	poolsvc "github.com/kirkpatrick8/eventpool/internal/service/pool"
	"github.com/kirkpatrick8/eventpool/internal/service/scheduler"
	"github.com/kirkpatrick8/eventpool/internal/storage/dbstore"
	"github.com/kirkpatrick8/eventpool/internal/storage/githubstore"
	"github.com/kirkpatrick8/eventpool/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("Server exited with error")
	}
}

func run(cfg *config.Config, log *logger.Logger) error {
	rdb, err := cache.NewRedisClient(&cfg.Database.Redis, log)
	if err != nil {
		return err
	}
	defer rdb.Close()

	notifier := notify.NewClient(&cfg.Notify, log)

	// Record store backend.
	var recordStore poolsvc.RecordStore
	var db *dbstore.DB
	switch cfg.Store.Backend {
	case config.BackendPostgres:
		db, err = dbstore.NewDB(&cfg.Database.Postgres, log)
		if err != nil {
			return err
		}
		defer db.Close()
		recordStore = dbstore.NewPredictionRepository(db, cfg.Database.Postgres.Database, log)
	default:
		files := githubstore.NewFileStore(&cfg.GitHub, log)
		recordStore = githubstore.NewRecordStore(files, cfg.GitHub.PredictionsPath, log)
	}

	predictionCache := cache.NewPredictionCache(rdb, recordStore.Identity(), cfg.Cache.TTL(), log)
	poolService := poolsvc.NewService(recordStore, predictionCache, notifier, log)
	poolHandler := poolapi.NewHandler(poolService, log)

	// Crawl state always lives in the GitHub document store.
	var crawlHandler *crawlapi.Handler
	var sched *scheduler.Service
	if cfg.GitHub.Owner != "" && cfg.GitHub.Repo != "" {
		catalog, err := crawlsvc.LoadCatalog(cfg.Crawl.CatalogPath)
		if err != nil {
			return err
		}

		files := githubstore.NewFileStore(&cfg.GitHub, log)
		stateStore := githubstore.NewStateStore(files, cfg.GitHub.CrawlPath, log)

		crawlService := crawlsvc.NewService(stateStore, catalog, notifier, log)
		leaderboardService := leaderboard.NewService(stateStore, catalog.TotalStages(), log)
		crawlHandler = crawlapi.NewHandler(crawlService, leaderboardService, log)

		sched, err = scheduler.NewService(&cfg.Scheduler, leaderboardService, notifier, log)
		if err != nil {
			return err
		}
		if err := sched.Start(); err != nil {
			return err
		}
		defer sched.Stop()
	} else {
		log.Warn().Msg("GitHub store not configured, crawl endpoints disabled")
	}

	router := api.NewRouter(cfg, poolHandler, crawlHandler, log)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("Shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}
