package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"simple-push-service/internal/api"
	"simple-push-service/internal/authtoken"
	"simple-push-service/internal/botpoller"
	"simple-push-service/internal/config"
	"simple-push-service/internal/dispatcher"
	"simple-push-service/internal/logging"
	"simple-push-service/internal/observability"
	"simple-push-service/internal/queue"
	"simple-push-service/internal/store"
	"simple-push-service/internal/transport"
	"simple-push-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := logging.FromEnv(cfg.LogLevel)
	defer logger.Sync()
	logger.Info("starting simple push service", zap.String("version", "1.0.0"))

	ctx := context.Background()

	if _, err := observability.NewTracerProvider(ctx, "simple-push-service"); err != nil {
		logger.Warn("tracer provider setup failed, continuing without tracing", zap.Error(err))
	}

	metrics := observability.NewMetrics()
	metrics.MustRegister(prometheus.DefaultRegisterer.(*prometheus.Registry))

	db, err := store.Open(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer db.Close()

	if err := db.RunMigrations("migrations"); err != nil {
		logger.Warn("failed to run migrations", zap.Error(err))
	}

	redisClient, err := queue.Connect(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()
	delayQueue := queue.New(redisClient, cfg.QueueName)

	users := store.NewUserRepo(db)
	transports := store.NewTransportRepo(db)
	messages := store.NewMessageRepo(db)
	tasks := store.NewTaskRepo(db)
	tokens := store.NewTokenRepo(db)
	enqueuer := store.NewEnqueuer(db)

	telegramDriver := transport.NewTelegramDriver(cfg.TelegramURL, cfg.TelegramToken)
	factory := transport.NewFactory()
	factory.Register(store.TransportTelegram, telegramDriver)

	tokenCodec := authtoken.NewCodec(cfg.AccessSecret, cfg.AccessExpire)

	pool := worker.NewPool(cfg.WorkerPoolSize, tasks, messages, factory, delayQueue, logger, metrics)
	pool.Run(ctx)

	disp := dispatcher.New(delayQueue, pool.Channels(), logger, metrics)
	go disp.Run(ctx)

	poller := botpoller.New(telegramDriver, users, transports, logger)
	go poller.Run(ctx)

	handlers := api.NewHandlers(logger, users, transports, messages, tokens, enqueuer, delayQueue, tokenCodec, metrics)

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			logger.Error("fiber error", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"ok": false, "error_code": fiber.StatusInternalServerError, "description": "internal server error"})
		},
	})
	api.SetupRoutes(app, logger, metrics, handlers, tokenCodec, db, delayQueue)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()
	logger.Info("simple push service started", zap.String("port", cfg.Port))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	disp.Stop()
	poller.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("failed to shutdown http server gracefully", zap.Error(err))
	}

	logger.Info("simple push service stopped")
}
