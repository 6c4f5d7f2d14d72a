package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/damniamgood/backstabbr-bot/internal/api"
	"github.com/damniamgood/backstabbr-bot/internal/config"
	"github.com/damniamgood/backstabbr-bot/internal/database"
	"github.com/damniamgood/backstabbr-bot/internal/obslog"
	"github.com/damniamgood/backstabbr-bot/internal/powers"
	"github.com/damniamgood/backstabbr-bot/internal/relay"
	"github.com/damniamgood/backstabbr-bot/internal/spark"
	"github.com/damniamgood/backstabbr-bot/internal/stats"
	"github.com/damniamgood/backstabbr-bot/internal/topology"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		// no logger yet
		zap.NewExample().Fatal("config", zap.Error(err))
	}

	logger, err := obslog.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		zap.NewExample().Fatal("logger", zap.Error(err))
	}
	defer logger.Sync()

	if cfg.DefaultSigningKey {
		logger.Warn("JWT_KEY not set, signing sessions with the built-in placeholder key")
	}

	startCtx, cancelStart := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStart()

	bot := spark.NewClient(cfg.SparkAPIURL, cfg.SparkAccessToken, spark.WithTimeout(cfg.RemoteTimeout))
	self, err := bot.Me(startCtx)
	if err != nil {
		logger.Fatal("resolve bot identity", zap.Error(err))
	}
	logger.Info("bot identity resolved", zap.String("person_id", self.Id), zap.String("display_name", self.DisplayName))

	var registry relay.Registry = relay.NewMemoryRegistry()
	if cfg.RedisURL != "" {
		rr, err := relay.NewRedisRegistryFromURL(startCtx, cfg.RedisURL)
		if err != nil {
			logger.Fatal("redis registry", zap.Error(err))
		}
		defer rr.Close()
		registry = rr
	} else {
		logger.Info("REDIS_URL not set, relay registrations are kept in memory")
	}

	var repo database.GameRepository
	if cfg.DatabaseDSN != "" {
		pg, err := database.NewPgGameRepository(cfg.DatabaseDSN)
		if err != nil {
			logger.Fatal("db open", zap.Error(err))
		}
		defer func() {
			if err := pg.Close(); err != nil {
				logger.Error("db close", zap.Error(err))
			}
		}()
		if err := pg.Migrate(startCtx); err != nil {
			logger.Fatal("db migrate", zap.Error(err))
		}
		repo = pg
	} else {
		logger.Info("DATABASE_URL not set, game and player endpoints are disabled")
	}

	mux := http.NewServeMux()

	statsUpdater := stats.NewStatsUpdater(mux)

	engine := topology.NewEngine(logger.Named("topology"), powers.Default(), registry, statsUpdater, cfg.ServiceURL, cfg.SparkWebhookSecret)
	dispatcher := relay.NewDispatcher(logger.Named("relay"), bot, registry, statsUpdater, self.Id)
	platform := func(accessToken string) api.Platform { return bot.WithToken(accessToken) }

	srv := api.NewApp(mux, logger.Named("api"), repo, platform, bot, engine, dispatcher, cfg)

	statsUpdater.Run()
	defer statsUpdater.Stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigs:
		logger.Info("received signal", zap.String("signal", sig.String()))
	case err := <-errCh:
		logger.Error("server", zap.Error(err))
	}

	shutDownCtx, cancel := context.WithTimeout(
		context.Background(),
		10*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutDownCtx); err != nil {
		logger.Error("HTTP server shutdown", zap.Error(err))
	}

	logger.Info("shutdown complete")
}
