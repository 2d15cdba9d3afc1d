package config

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"deca/pkg/client"
	"deca/pkg/env"
	kafkaconfig "deca/pkg/kafka/config"
	"deca/pkg/logger"
	"deca/pkg/pipeline"
)

var (
	mongoURIRegex   = regexp.MustCompile(`^mongodb(\+srv)?://`)
	credentialRegex = regexp.MustCompile(`(mongodb(\+srv)?://)[^:]+:[^@]+@`)
	regionRegex     = regexp.MustCompile(`^[A-Z]{2}$`)
)

type Config struct {
	MongoURI          string
	MongoDatabaseName string
	MongoCollection   string
	MongoConnTimeout  time.Duration

	Port     string
	LogLevel string

	APIKey string

	PipelineIncludeStatus  bool
	PipelineIdempotencyKey bool
	PipelineStrictFormats  bool
	PhoneDefaultRegion     string

	RateLimitRequests int
	RateLimitWindow   time.Duration

	RequestTimeout time.Duration
	IdempotencyTTL time.Duration
	MaxRequestSize int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	Kafka *kafkaconfig.Config

	Log    *logger.Logger
	Client *client.Client
}

// Load reads .env (if present) and the environment, validates the result and
// exits the process when the configuration is unusable.
func Load(serviceName string) *Config {
	dotenvErr := env.LoadDotEnv()

	cfg, err := FromEnv(serviceName)
	if cfg == nil {
		logger.New(logger.Config{Service: serviceName}).Fatal(err.Error())
	}
	if dotenvErr != nil {
		cfg.Log.Warn("Failed to load .env file", "error", dotenvErr)
	}
	if err != nil {
		cfg.Log.Fatal(err.Error())
	}

	cfg.LogConfiguration()
	return cfg
}

// FromEnv builds and validates a Config without exiting. The returned Config
// is non-nil whenever the Kafka section could be read, even if err != nil.
func FromEnv(serviceName string) (*Config, error) {
	kafkaCfg, err := kafkaconfig.Load()
	if err != nil {
		return nil, err
	}

	logLevel := env.Str(EnvLogLevel, DefaultLogLevel)
	cfg := &Config{
		MongoURI:          env.Str(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName: env.Str(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoCollection:   env.Str(EnvMongoCollection, DefaultMongoCollection),
		MongoConnTimeout:  env.Duration(EnvMongoConnTimeout, DefaultMongoConnTimeout),

		Port:     env.Str(EnvPort, DefaultPort),
		LogLevel: logLevel,

		APIKey: env.Str(EnvAPIKey, ""),

		PipelineIncludeStatus:  env.Bool(EnvPipelineIncludeStatus, DefaultPipelineIncludeStatus),
		PipelineIdempotencyKey: env.Bool(EnvPipelineIdempotencyKey, DefaultPipelineIdempotencyKey),
		PipelineStrictFormats:  env.Bool(EnvPipelineStrictFormats, DefaultPipelineStrictFormats),
		PhoneDefaultRegion:     strings.ToUpper(env.Str(EnvPhoneDefaultRegion, DefaultPhoneRegion)),

		RateLimitRequests: env.Int(EnvRateLimitRequests, DefaultRateLimitRequests),
		RateLimitWindow:   env.Duration(EnvRateLimitWindow, DefaultRateLimitWindow),

		RequestTimeout: env.Duration(EnvRequestTimeout, DefaultRequestTimeout),
		IdempotencyTTL: env.Duration(EnvIdempotencyTTL, DefaultIdempotencyTTL),
		MaxRequestSize: env.Int(EnvMaxRequestSize, DefaultMaxRequestSize),

		ReadTimeout:     env.Duration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    env.Duration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     env.Duration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: env.Duration(EnvShutdownTimeout, DefaultShutdownTimeout),

		Kafka: kafkaCfg,

		Log: logger.New(logger.Config{
			Level:     logLevel,
			Format:    logger.JSON,
			AddSource: true,
			Service:   serviceName,
		}),
		Client: client.NewClient(),
	}

	return cfg, cfg.Validate()
}

// PipelineOptions returns the configured variant. Strict format checks are
// attached by the caller because they live outside this package.
func (cfg *Config) PipelineOptions() pipeline.Options {
	return pipeline.Options{
		IncludeStatusField:    cfg.PipelineIncludeStatus,
		ComputeIdempotencyKey: cfg.PipelineIdempotencyKey,
	}
}

// SetMongo connects the shared Mongo client or exits.
func (cfg *Config) SetMongo(ctx context.Context) {
	if err := cfg.Client.ConnectMongo(ctx, cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout); err != nil {
		cfg.Log.Fatal("Failed to connect to MongoDB",
			"error", err,
			"uri", redactMongoURI(cfg.MongoURI),
		)
	}
}

func (cfg *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	if cfg.MongoURI == "" {
		errors = append(errors, "MongoURI cannot be empty")
	} else if len(cfg.MongoURI) < 10 || !mongoURIRegex.MatchString(cfg.MongoURI) {
		errors = append(errors, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", redactMongoURI(cfg.MongoURI)))
	}
	if cfg.MongoDatabaseName == "" {
		errors = append(errors, "MongoDatabaseName cannot be empty")
	}
	if cfg.MongoCollection == "" {
		errors = append(errors, "MongoCollection cannot be empty")
	}

	if !regionRegex.MatchString(cfg.PhoneDefaultRegion) {
		errors = append(errors, fmt.Sprintf("PhoneDefaultRegion must be a two-letter region code, got: %s", cfg.PhoneDefaultRegion))
	}

	durations := []struct {
		name  string
		value time.Duration
	}{
		{"MongoConnTimeout", cfg.MongoConnTimeout},
		{"RateLimitWindow", cfg.RateLimitWindow},
		{"RequestTimeout", cfg.RequestTimeout},
		{"IdempotencyTTL", cfg.IdempotencyTTL},
		{"ReadTimeout", cfg.ReadTimeout},
		{"WriteTimeout", cfg.WriteTimeout},
		{"IdleTimeout", cfg.IdleTimeout},
		{"ShutdownTimeout", cfg.ShutdownTimeout},
	}
	for _, d := range durations {
		if d.value <= 0 {
			errors = append(errors, fmt.Sprintf("%s must be positive, got: %s", d.name, d.value))
		}
	}

	if cfg.RateLimitRequests <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitRequests must be positive, got: %d", cfg.RateLimitRequests))
	}
	if cfg.MaxRequestSize <= 0 {
		errors = append(errors, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}

	if len(errors) > 0 {
		errMsg := "Configuration validation failed:\n"
		for i, err := range errors {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, err)
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"mongo_uri", redactMongoURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"mongo_collection", cfg.MongoCollection,
		"mongo_conn_timeout", cfg.MongoConnTimeout,
		"port", cfg.Port,
		"log_level", cfg.LogLevel,
		"api_key_set", cfg.APIKey != "",
		"pipeline_include_status", cfg.PipelineIncludeStatus,
		"pipeline_idempotency_key", cfg.PipelineIdempotencyKey,
		"pipeline_strict_formats", cfg.PipelineStrictFormats,
		"phone_default_region", cfg.PhoneDefaultRegion,
		"rate_limit_requests", cfg.RateLimitRequests,
		"rate_limit_window", cfg.RateLimitWindow,
		"request_timeout", cfg.RequestTimeout,
		"idempotency_ttl", cfg.IdempotencyTTL,
		"max_request_size", cfg.MaxRequestSize,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
	)
	cfg.Kafka.LogConfiguration(cfg.Log.Info)
}

func (cfg *Config) GracefulShutdown(ctx context.Context) {
	cfg.Client.GracefulShutdown(ctx, cfg.Log)
}

func redactMongoURI(uri string) string {
	return credentialRegex.ReplaceAllString(uri, "${1}***:***@")
}
