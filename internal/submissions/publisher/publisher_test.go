package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"deca/pkg/kafka"
	"deca/pkg/model"
	"deca/pkg/pipeline"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	messages []kafka.Message
	err      error
}

func (r *recorder) Publish(_ context.Context, msg kafka.Message) error {
	if r.err != nil {
		return r.err
	}
	r.messages = append(r.messages, msg)
	return nil
}

func envelope(action model.Action, key string) *model.Envelope {
	return &model.Envelope{
		Meta: model.Meta{
			RunID:          "0b6f7d4e-run",
			SubmissionID:   "sub-42",
			IdempotencyKey: key,
			MappingVersion: pipeline.MappingVersion,
		},
		Decision: model.Decision{Action: action, Errors: []string{}},
	}
}

func TestPublishAccepted(t *testing.T) {
	accepted, review := &recorder{}, &recorder{}
	p := NewKafkaPublisher(accepted, review, "deca-intake")

	env := envelope(model.ActionUpsert, "ana@example.com:2024-03-12T09:05:00Z")
	require.NoError(t, p.PublishAccepted(context.Background(), env))

	require.Len(t, accepted.messages, 1)
	assert.Empty(t, review.messages)

	msg := accepted.messages[0]
	assert.Equal(t, "ana@example.com:2024-03-12T09:05:00Z", msg.Key)
	assert.Equal(t, kafka.EventSubmissionAccepted, msg.GetEventType())
	assert.Equal(t, "sub-42", msg.GetCorrelationID())
	assert.Equal(t, "0b6f7d4e-run", msg.GetRunID())
	assert.Equal(t, "UPSERT", msg.Headers[kafka.HeaderAction])
	assert.Equal(t, "deca-intake", msg.Headers[kafka.HeaderSource])

	var decoded model.Envelope
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, env.Meta.IdempotencyKey, decoded.Meta.IdempotencyKey)
}

func TestPublishReviewFallsBackToRunID(t *testing.T) {
	accepted, review := &recorder{}, &recorder{}
	p := NewKafkaPublisher(accepted, review, "deca-intake")

	require.NoError(t, p.PublishReview(context.Background(), envelope(model.ActionError, "")))

	require.Len(t, review.messages, 1)
	assert.Equal(t, "0b6f7d4e-run", review.messages[0].Key)
	assert.Equal(t, kafka.EventSubmissionReview, review.messages[0].GetEventType())
}

func TestPublishWrapsError(t *testing.T) {
	cause := errors.New("leader not available")
	p := NewKafkaPublisher(&recorder{err: cause}, &recorder{}, "deca-intake")

	err := p.PublishAccepted(context.Background(), envelope(model.ActionUpsert, "k"))
	assert.ErrorIs(t, err, cause)
}
