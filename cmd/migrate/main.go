package main

import (
	"context"
	"os"
	"time"

	mongoMigration "deca/internal/migrations/mongo"
	"deca/pkg/config"
)

const JobName = "deca-mongo-migration"

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	cfg := config.Load(JobName)
	cfg.SetMongo(ctx)

	cfg.Log.Info("Starting Mongo migration job", "collection", cfg.MongoCollection)
	err := migrateMongo(ctx, cfg)
	cfg.GracefulShutdown(ctx)
	if err != nil {
		cfg.Log.Error("Migration failed", "error", err)
		os.Exit(1)
	}
	cfg.Log.Info("Migration completed successfully")
}

func migrateMongo(ctx context.Context, cfg *config.Config) error {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return mongoMigration.RunMigration(ctx, db, cfg.MongoCollection, cfg.Log)
}
