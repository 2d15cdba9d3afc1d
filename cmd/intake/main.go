package main

import (
	"context"

	"deca/internal/submissions/handler"
	"deca/internal/submissions/mapper"
	"deca/internal/submissions/setup"
	"deca/pkg/app"
	"deca/pkg/config"
)

const ServiceName = "deca-intake"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo(context.Background())

	cfg.Log.Info("Starting DECA intake service")
	components, err := setup.Build(cfg, ServiceName)
	if err != nil {
		cfg.Log.Fatal("Failed to initialize submission service", "error", err)
	}

	serverApp := app.NewApplication(cfg)
	serverApp.OnShutdown("kafka producers", components.Close)

	err = serverApp.SetApp(
		handler.NewHealthHandler(components.Repository, cfg.Log),
		handler.NewSubmissionHandler(components.Service, mapper.New(), cfg.Log),
	)
	if err != nil {
		cfg.Log.Fatal("Failed to configure HTTP server", "error", err)
	}

	cfg.Log.Info("Submission service initialized",
		"database", cfg.MongoDatabaseName,
		"collection", cfg.MongoCollection,
	)
	serverApp.Run()
}
