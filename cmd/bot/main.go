package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/aliskhannn/lingo-spark-bot/internal/config"
	httpdelivery "github.com/aliskhannn/lingo-spark-bot/internal/delivery/http"
	"github.com/aliskhannn/lingo-spark-bot/internal/delivery/telegram"
	"github.com/aliskhannn/lingo-spark-bot/internal/export"
	"github.com/aliskhannn/lingo-spark-bot/internal/infra/gemini"
	"github.com/aliskhannn/lingo-spark-bot/internal/infra/postgres"
	"github.com/aliskhannn/lingo-spark-bot/internal/infra/postgres/migrations"
	"github.com/aliskhannn/lingo-spark-bot/internal/infra/postgres/repository"
	"github.com/aliskhannn/lingo-spark-bot/internal/infra/tts"
	"github.com/aliskhannn/lingo-spark-bot/internal/logger"
	"github.com/aliskhannn/lingo-spark-bot/internal/observability"
	"github.com/aliskhannn/lingo-spark-bot/internal/service"
	"github.com/aliskhannn/lingo-spark-bot/internal/storage"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if err := cfg.RequireBot(); err != nil {
		log.Fatal(err)
	}

	lg, err := logger.New(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = lg.Sync() }()

	if err := run(cfg, lg); err != nil {
		lg.Fatal("bot stopped with error", zap.Error(err))
	}
}

func run(cfg *config.Config, lg *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bot, err := tgbotapi.NewBotAPI(cfg.TelegramAPIToken)
	if err != nil {
		return err
	}
	bot.Debug = cfg.Env == "local"
	lg.Info("authorized on telegram", zap.String("username", bot.Self.UserName))

	if _, err := bot.Request(tgbotapi.NewSetMyCommands(telegram.Commands()...)); err != nil {
		lg.Warn("failed to set bot commands", zap.Error(err))
	}

	dsn, err := cfg.DB.DSN()
	if err != nil {
		return err
	}
	pool, err := postgres.NewPool(ctx, dsn, postgres.PoolConfig{
		MaxConns:        int32(cfg.DB.MaxConnections),
		MaxConnLifetime: cfg.DB.MaxConnLifetime,
	})
	if err != nil {
		return err
	}
	defer pool.Close()

	tr := postgres.NewTransactor(pool)
	applied, err := migrations.Migrate(ctx, tr)
	if err != nil {
		return err
	}
	if len(applied) > 0 {
		lg.Info("migrations applied", zap.Strings("names", applied))
	}

	metrics := observability.NewMetrics()

	gateway, err := gemini.New(ctx, gemini.Config{
		APIKey:  cfg.Gemini.APIKey,
		Model:   cfg.Gemini.Model,
		Timeout: cfg.Gemini.Timeout,
	}, metrics, lg)
	if err != nil {
		return err
	}

	var speaker service.Speaker
	if cfg.TTS.Enabled {
		s, err := tts.New(ctx, tts.Config{LanguageCode: cfg.TTS.LanguageCode, Voice: cfg.TTS.Voice})
		if err != nil {
			lg.Warn("speech disabled", zap.Error(err))
		} else {
			defer func() { _ = s.Close() }()
			speaker = s
		}
	}

	userRepo := repository.NewUserRepository(pool)
	progressStore := storage.NewPostgresProgressStore(pool, tr, cfg.Lesson.HistoryLimit, lg.Named("storage"))
	sessions := storage.NewSessionStorage()

	userService := service.NewUserService(userRepo)
	progressService := service.NewProgressService(progressStore)
	settingsService := service.NewSettingsService(userRepo, progressStore)
	resetService := service.NewResetService(tr, sessions)
	exportService := service.NewExportService(progressStore, export.NewRenderer(export.DefaultOptions()))
	lessonService := service.NewLessonService(gateway, progressStore, metrics, service.LessonConfig{
		XPAward:      cfg.Lesson.XPAward,
		HistoryLimit: cfg.Lesson.HistoryLimit,
	}, lg)
	controller := service.NewController(sessions, lessonService, progressService, gateway, speaker, metrics, lg)
	reminderService := service.NewReminderService(userRepo, progressStore, metrics, cfg.Reminders.Schedule, lg)

	handler := telegram.NewHandler(
		bot,
		lg,
		userService,
		controller,
		progressService,
		settingsService,
		resetService,
		exportService,
		storage.NewNudgeStorage(),
	)
	controller.SetView(handler)
	reminderService.SetNotifier(handler)

	server := httpdelivery.NewServer(cfg.HTTP.Addr, httpdelivery.NewRouter(metrics.Handler(), pool), lg)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer stop()
		if err := handler.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	g.Go(server.Start)

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if cfg.Reminders.Enabled {
		g.Go(func() error { return reminderService.Start(gctx) })
	}

	err = g.Wait()

	lg.Info("waiting for background work")
	controller.Wait()
	return err
}
