package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/julienschmidt/httprouter"

	"deca/internal/submissions/handler"
	"deca/internal/submissions/mapper"
	"deca/internal/submissions/setup"
	"deca/internal/submissions/worker"
	"deca/pkg/config"
	"deca/pkg/kafka"
	kafka_middleware "deca/pkg/kafka/middleware"
	"deca/pkg/middleware"
)

const ServiceName = "deca-intake-worker"

func main() {
	cfg := config.Load(ServiceName)
	if !cfg.Kafka.Enabled {
		cfg.Log.Fatal("Kafka is disabled, the intake worker has nothing to consume")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg.SetMongo(ctx)

	components, err := setup.Build(cfg, ServiceName)
	if err != nil {
		cfg.Log.Fatal("Failed to initialize submission service", "error", err)
	}

	h := worker.NewHandler(components.Service, mapper.New(), cfg.Log)
	consumer, err := kafka.NewConsumer(
		cfg.Kafka,
		cfg.Kafka.IntakeTopic,
		cfg.Kafka.ConsumerGroup,
		cfg.Kafka.DLQTopic,
		h.Handle,
		cfg.Log,
	)
	if err != nil {
		cfg.Log.Fatal("Failed to create consumer", "error", err)
	}
	if cfg.Kafka.EnableMiddleware {
		consumer.Use(kafka_middleware.LoggingConsumerMiddleware(cfg.Log))
		consumer.Use(kafka_middleware.MetricsConsumerMiddleware())
	}

	server := healthServer(cfg, components.Repository)
	go func() {
		cfg.Log.Info("Starting health server", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			cfg.Log.Error("Health server failed", "error", err)
		}
	}()

	cfg.Log.Info("Consuming submissions",
		"topic", cfg.Kafka.IntakeTopic,
		"group", cfg.Kafka.ConsumerGroup,
	)
	if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		cfg.Log.Error("Consumer stopped with error", "error", err)
	}

	shutdown(cfg, server, consumer, components)
}

func healthServer(cfg *config.Config, store handler.Pinger) *http.Server {
	router := httprouter.New()
	handler.NewHealthHandler(store, cfg.Log).RegisterRoutes(router)

	var h http.Handler = router
	h = middleware.RequestLogging(cfg.Log)(h)
	h = middleware.Recovery(cfg.Log)(h)

	return &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
}

func shutdown(cfg *config.Config, server *http.Server, consumer *kafka.Consumer, components *setup.Components) {
	cfg.Log.Info("Starting graceful shutdown...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := consumer.Close(); err != nil {
		cfg.Log.Error("Failed to close consumer", "error", err)
	}
	if err := components.Close(); err != nil {
		cfg.Log.Error("Failed to close producers", "error", err)
	}
	if err := server.Shutdown(ctx); err != nil {
		cfg.Log.Error("Health server shutdown failed", "error", err)
	}

	cfg.GracefulShutdown(ctx)
	cfg.Log.Info("Shutdown complete")
}
