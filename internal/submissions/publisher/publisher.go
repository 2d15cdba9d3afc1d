// Package publisher forwards decided submissions to Kafka.
package publisher

import (
	"context"
	"fmt"

	"deca/pkg/kafka"
	"deca/pkg/model"
	"deca/pkg/pipeline"
)

// MessagePublisher is satisfied by *kafka.Producer.
type MessagePublisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

type KafkaPublisher struct {
	accepted MessagePublisher
	review   MessagePublisher
	source   string
}

func NewKafkaPublisher(accepted, review MessagePublisher, source string) *KafkaPublisher {
	return &KafkaPublisher{accepted: accepted, review: review, source: source}
}

func (p *KafkaPublisher) PublishAccepted(ctx context.Context, env *model.Envelope) error {
	return p.publish(ctx, p.accepted, kafka.EventSubmissionAccepted, env)
}

func (p *KafkaPublisher) PublishReview(ctx context.Context, env *model.Envelope) error {
	return p.publish(ctx, p.review, kafka.EventSubmissionReview, env)
}

func (p *KafkaPublisher) publish(ctx context.Context, to MessagePublisher, eventType string, env *model.Envelope) error {
	msg, err := BuildMessage(eventType, p.source, env)
	if err != nil {
		return err
	}
	if err := to.Publish(ctx, msg); err != nil {
		return fmt.Errorf("publish %s: %w", eventType, err)
	}
	return nil
}

// BuildMessage keys the envelope by idempotency key so replays of the same
// submission land on one partition. Keyless envelopes fall back to the run id.
func BuildMessage(eventType, source string, env *model.Envelope) (kafka.Message, error) {
	key := env.Meta.IdempotencyKey
	if key == "" {
		key = env.Meta.RunID
	}

	return kafka.NewMessage().
		WithKey(key).
		WithValue(env).
		WithEventType(eventType).
		WithCorrelationID(env.Meta.SubmissionID).
		WithRunID(env.Meta.RunID).
		WithAction(string(env.Decision.Action)).
		WithSchemaVersion(pipeline.MappingVersion).
		WithSource(source).
		Build()
}
