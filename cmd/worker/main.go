package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/opdqueue/config"
	"github.com/Domenick1991/opdqueue/internal/bootstrap"
	"github.com/Domenick1991/opdqueue/internal/cache"
	"github.com/Domenick1991/opdqueue/internal/kafka"
	"github.com/Domenick1991/opdqueue/internal/logger"
	"github.com/Domenick1991/opdqueue/internal/notify"
	"github.com/Domenick1991/opdqueue/internal/repository"
	"github.com/Domenick1991/opdqueue/internal/service/directory"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		boot := logger.New("info", false)
		boot.Fatal().Err(err).Msg("load config")
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty).With().Str("process", "worker").Logger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := bootstrap.OpenDatabase(ctx, cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("connect postgres")
	}
	defer pool.Close()

	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Queue.DoctorsCacheTTLSeconds)*time.Second)
	defer redisCache.Close()

	directorySvc := directory.NewDirectoryService(repository.NewDoctorRepository(pool), redisCache, log)
	notifier := notify.NewNotifier(log)

	if len(cfg.Kafka.Brokers) > 0 {
		consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic, log)
		defer consumer.Close()

		go func() {
			if err := consumer.ConsumeEvents(ctx, notifier.Send); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("notification consumer stopped")
				stop()
			}
		}()
	} else {
		log.Warn().Msg("no kafka brokers configured, notifications are disabled")
	}

	refresh := time.Duration(cfg.Worker.DirectoryRefreshMinutes) * time.Minute
	if refresh <= 0 {
		refresh = 5 * time.Minute
	}
	ticker := time.NewTicker(refresh)
	defer ticker.Stop()

	log.Info().Dur("directory_refresh", refresh).Msg("worker started")
	for {
		select {
		case <-ticker.C:
			if err := directorySvc.Refresh(ctx); err != nil {
				log.Error().Err(err).Msg("directory refresh failed")
				continue
			}
			log.Debug().Msg("directory cache refreshed")
		case <-ctx.Done():
			log.Info().Msg("shutting down worker")
			return
		}
	}
}
