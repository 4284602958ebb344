package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/Freeeeeet/tutor_scheduler/internal/app"
	"github.com/Freeeeeet/tutor_scheduler/internal/config"
	"github.com/Freeeeeet/tutor_scheduler/internal/controller"
	"github.com/Freeeeeet/tutor_scheduler/internal/events"
	"github.com/Freeeeeet/tutor_scheduler/internal/metrics"
	"github.com/Freeeeeet/tutor_scheduler/internal/repository"
	"github.com/Freeeeeet/tutor_scheduler/internal/repository/base"
	"github.com/Freeeeeet/tutor_scheduler/internal/service"
	"github.com/go-telegram/bot"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := app.NewLogger(cfg.Environment)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("Starting tutor scheduler bot",
		zap.String("environment", cfg.Environment),
		zap.String("timezone", cfg.Location.String()),
	)

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("Bot stopped with error", zap.Error(err))
	}

	logger.Info("Bot stopped")
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	// База данных
	pool, err := pgxpool.New(ctx, cfg.DBDSN)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return err
	}

	migrator, err := app.NewMigrator(pool, logger)
	if err != nil {
		return err
	}
	if err := migrator.Run(ctx); err != nil {
		return err
	}
	if err := migrator.Close(); err != nil {
		logger.Warn("Failed to close migrator", zap.Error(err))
	}

	// Репозитории
	ruleRepo := repository.NewAvailabilityRepository(pool, logger)
	lessonRepo := repository.NewLessonRepository(pool)
	requestRepo := repository.NewLessonRequestRepository(pool)
	tx := base.NewRepository(pool)

	// Метрики
	m := metrics.New()
	if cfg.MetricsEnabled() {
		srv := app.NewOpsServer(cfg.MetricsAddr, app.NewOpsRouter(pool, m, logger))
		go func() {
			logger.Info("Starting ops server", zap.String("addr", cfg.MetricsAddr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("Ops server failed", zap.Error(err))
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("Ops server shutdown failed", zap.Error(err))
			}
		}()
	}

	// События
	var publisher events.Publisher = events.NopPublisher{}
	if cfg.NATSURL != "" {
		natsPublisher, err := events.NewNatsPublisher(cfg.NATSURL, logger)
		if err != nil {
			return err
		}
		defer natsPublisher.Close()
		publisher = natsPublisher
	} else {
		logger.Info("NATS_URL is not set, domain events are not published")
	}

	// Сервисы
	availabilityService := service.NewAvailabilityService(ruleRepo, m, logger)
	slotGenerator := service.NewSlotGenerator(ruleRepo, lessonRepo, m, logger)
	lessonService := service.NewLessonService(lessonRepo, slotGenerator, publisher, m, logger)
	bookingService := service.NewBookingService(tx, requestRepo, lessonRepo, slotGenerator, publisher, m, logger)

	// Telegram
	b, err := bot.New(cfg.TelegramToken)
	if err != nil {
		return err
	}

	botController := controller.NewBotController(
		b,
		availabilityService,
		slotGenerator,
		lessonService,
		bookingService,
		cfg.Location,
		logger,
	)

	if err := botController.RegisterHandlers(ctx); err != nil {
		return err
	}

	return botController.Start(ctx)
}
