package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"medbulletin/internal/application"
	"medbulletin/internal/domain/entity"
	"medbulletin/internal/domain/repository"
	"medbulletin/internal/infrastructure/logging"
	"medbulletin/internal/infrastructure/mastodon"
	"medbulletin/internal/infrastructure/misskey"
	"medbulletin/internal/infrastructure/notify"
	"medbulletin/internal/infrastructure/rss"
	"medbulletin/internal/infrastructure/storage"
	"medbulletin/internal/interfaces/config"
	"medbulletin/internal/interfaces/httpapi"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		level.Error(logging.New(os.Stderr, "info")).Log("msg", "failed to load configuration", "err", err)
		os.Exit(1)
	}

	logger := logging.New(os.Stderr, cfg.LogLevel)
	if err := run(cfg, logger); err != nil {
		level.Error(logger).Log("msg", "medical bulletin stopped with error", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger log.Logger) error {
	level.Info(logger).Log("msg", "starting medical bulletin", "storage", cfg.Storage, "listen", cfg.ListenAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := storage.Open(cfg.Storage, cfg.DatabasePath, log.With(logger, "component", "storage"))
	if err != nil {
		return err
	}
	defer store.Close()

	feedRepo := rss.NewFeedRepository(log.With(logger, "component", "rss"), cfg.GetFetchTimeout())

	registry := application.NewSourceRegistry(store, feedRepo, logger)
	if _, err := registry.Seed(ctx, seedSources(cfg.Sources)); err != nil {
		level.Warn(logger).Log("msg", "failed to seed sources", "err", err)
	}

	settings := application.NewSettings(store, application.RuntimeSettings{
		RefreshIntervalMinutes: cfg.RefreshInterval,
		RetentionDays:          cfg.RetentionDays,
		NotificationsEnabled:   cfg.Notifications,
	}, logger)

	ingestion := application.NewIngestionService(store, feedRepo, store, settings, log.With(logger, "component", "ingestion"))

	schedCfg := application.DefaultSchedulerConfig()
	schedCfg.GracePeriod = cfg.GetStartupDelay()
	scheduler := application.NewScheduler(ingestion, settings, notifiers(cfg, logger), schedCfg, log.With(logger, "component", "scheduler"))

	if err := scheduler.Start(ctx); err != nil {
		return err
	}
	defer scheduler.Stop()

	server := &http.Server{
		Addr: cfg.ListenAddr,
		Handler: httpapi.NewHandler(httpapi.Services{
			Bulletin:  application.NewBulletinService(store, store, application.StaticProfile(cfg.UserSpecialty), logger),
			State:     application.NewStateManager(store, logger),
			Sources:   registry,
			Keywords:  application.NewKeywordService(store, logger),
			Settings:  settings,
			Scheduler: scheduler,
		}, log.With(logger, "component", "http")),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		level.Info(logger).Log("msg", "http api listening", "addr", cfg.ListenAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		level.Info(logger).Log("msg", "shutdown signal received")
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		level.Warn(logger).Log("msg", "http shutdown incomplete", "err", err)
	}

	level.Info(logger).Log("msg", "shutting down")
	return nil
}

func seedSources(sources []config.FeedSource) []*entity.FeedSource {
	out := make([]*entity.FeedSource, 0, len(sources))
	for _, s := range sources {
		out = append(out, entity.NewFeedSource(s.Name, s.URL))
	}
	return out
}

func notifiers(cfg *config.Config, logger log.Logger) repository.NotificationRepository {
	targets := []repository.NotificationRepository{notify.NewLogNotifier(logger)}
	visibility := entity.NoteVisibility(cfg.NoteVisibility)

	if cfg.MisskeyEnabled() {
		notes := misskey.NewNoteRepository(misskey.Config{
			Host:           cfg.MisskeyHost,
			AuthToken:      cfg.AuthToken,
			MaxPermits:     cfg.MaxPermits,
			RefillInterval: cfg.GetRefillInterval(),
			LocalOnly:      cfg.LocalOnly,
		}, log.With(logger, "component", "misskey"))
		targets = append(targets, notify.NewNoteNotifier(notes, visibility))
		level.Info(logger).Log("msg", "misskey notifier enabled", "host", cfg.MisskeyHost)
	}

	if cfg.MastodonEnabled() {
		notes := mastodon.NewNoteRepository(mastodon.Config{
			Server:       cfg.MastodonServer,
			ClientID:     cfg.MastodonClientKey,
			ClientSecret: cfg.MastodonClientSecret,
			AccessToken:  cfg.MastodonAccessToken,
		}, log.With(logger, "component", "mastodon"))
		targets = append(targets, notify.NewNoteNotifier(notes, visibility))
		level.Info(logger).Log("msg", "mastodon notifier enabled", "server", cfg.MastodonServer)
	}

	return notify.NewFanout(logger, targets...)
}
