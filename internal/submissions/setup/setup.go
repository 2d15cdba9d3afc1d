// Package setup assembles the submission service shared by the HTTP intake
// and the Kafka worker.
package setup

import (
	"errors"
	"fmt"

	"deca/internal/submissions/publisher"
	"deca/internal/submissions/repository"
	"deca/internal/submissions/service"
	"deca/internal/submissions/validator"
	"deca/pkg/config"
	"deca/pkg/kafka"
	kafka_middleware "deca/pkg/kafka/middleware"
	"deca/pkg/pipeline"
)

type Components struct {
	Repository repository.SubmissionRepository
	Service    service.SubmissionService
	producers  []*kafka.Producer
}

// PipelineOptions returns the configured variant, with strict format checks
// attached when enabled.
func PipelineOptions(cfg *config.Config) pipeline.Options {
	opts := cfg.PipelineOptions()
	if cfg.PipelineStrictFormats {
		opts.Formats = validator.NewFormatValidator(cfg.PhoneDefaultRegion)
	}
	return opts
}

// Build expects cfg.Client.Mongo to be connected.
func Build(cfg *config.Config, source string) (*Components, error) {
	c := &Components{
		Repository: repository.NewMongoSubmissionRepository(cfg),
	}

	var decisions service.DecisionPublisher
	if cfg.Kafka.Enabled {
		accepted, err := c.producer(cfg, cfg.Kafka.AcceptedTopic)
		if err != nil {
			return nil, err
		}
		review, err := c.producer(cfg, cfg.Kafka.ReviewTopic)
		if err != nil {
			_ = c.Close()
			return nil, err
		}
		decisions = publisher.NewKafkaPublisher(accepted, review, source)
		cfg.Log.Info("Decision publishing enabled",
			"accepted_topic", cfg.Kafka.AcceptedTopic,
			"review_topic", cfg.Kafka.ReviewTopic,
		)
	} else {
		cfg.Log.Info("Kafka disabled, decisions are stored and logged only")
	}

	c.Service = service.NewSubmissionService(
		pipeline.New(PipelineOptions(cfg)),
		c.Repository,
		decisions,
		cfg,
	)
	return c, nil
}

func (c *Components) producer(cfg *config.Config, topic string) (*kafka.Producer, error) {
	p, err := kafka.NewProducer(cfg.Kafka, topic, cfg.Kafka.DLQTopic, cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("create producer for %s: %w", topic, err)
	}
	if cfg.Kafka.EnableMiddleware {
		p.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
		p.Use(kafka_middleware.MetricsProducerMiddleware())
	}
	c.producers = append(c.producers, p)
	return p, nil
}

// Close flushes and closes the decision producers.
func (c *Components) Close() error {
	var errs []error
	for _, p := range c.producers {
		errs = append(errs, p.Close())
	}
	return errors.Join(errs...)
}
