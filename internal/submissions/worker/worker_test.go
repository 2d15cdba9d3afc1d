package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deca/internal/submissions/mapper"
	"deca/internal/submissions/service"
	apperrors "deca/pkg/errors"
	"deca/pkg/kafka"
	"deca/pkg/logger"
	"deca/pkg/model"
	"deca/pkg/pipeline"
)

type fakeService struct {
	received []service.Intake
	err      error
}

func (s *fakeService) Preview(_ context.Context, in service.Intake) *model.Envelope {
	return &model.Envelope{Decision: pipeline.New(pipeline.DefaultOptions()).Process(in.Raw)}
}

func (s *fakeService) Process(ctx context.Context, in service.Intake) (*model.Envelope, error) {
	s.received = append(s.received, in)
	if s.err != nil {
		return nil, s.err
	}
	return s.Preview(ctx, in), nil
}

func newHandler(svc service.SubmissionService) *Handler {
	return NewHandler(svc, mapper.New(), logger.Discard())
}

func queued(t *testing.T, value string) kafka.Message {
	t.Helper()
	msg, err := kafka.NewMessage().
		WithKey("k").
		WithRawValue([]byte(value)).
		WithSource("pabbly").
		Build()
	require.NoError(t, err)
	msg.Topic = "deca.submissions.intake"
	msg.Timestamp = time.UnixMilli(1710234300000)
	return msg
}

func TestHandle_Processes(t *testing.T) {
	svc := &fakeService{}
	h := newHandler(svc)

	err := h.Handle(context.Background(), queued(t, `{"submissionId":"pb-7","payload":{"email":"ana@example.com","nombre":"Ana"}}`))
	require.NoError(t, err)

	require.Len(t, svc.received, 1)
	in := svc.received[0]
	assert.Equal(t, "pb-7", in.SubmissionID)
	assert.Equal(t, "pabbly", in.Source)
	assert.Equal(t, "ana@example.com", in.Raw["email"])
}

func TestHandle_FallbackIDFromTimestamp(t *testing.T) {
	svc := &fakeService{}
	h := newHandler(svc)

	require.NoError(t, h.Handle(context.Background(), queued(t, `{"email":"ana@example.com"}`)))
	require.NoError(t, h.Handle(context.Background(), queued(t, `{"email":"ana@example.com"}`)))

	require.Len(t, svc.received, 2)
	assert.Equal(t, "sub-1710234300000", svc.received[0].SubmissionID)
	assert.Equal(t, svc.received[0].SubmissionID, svc.received[1].SubmissionID, "redelivery keeps the same id")
}

func TestHandle_MalformedIsPermanent(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"not json", `{"email":`},
		{"payload string not json", `{"payload":"nope"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeService{}
			err := newHandler(svc).Handle(context.Background(), queued(t, tt.value))

			require.Error(t, err)
			assert.Equal(t, kafka.ErrorTypePermanent, kafka.ClassifyError(err))
			assert.Empty(t, svc.received)
		})
	}
}

func TestHandle_ServiceErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want kafka.ErrorType
	}{
		{"store down", apperrors.Unavailable("submission store", errors.New("no primary")), kafka.ErrorTypeTransient},
		{"timeout", apperrors.Timeout("store timed out"), kafka.ErrorTypeTransient},
		{"internal", apperrors.Internal("bad document", errors.New("boom")), kafka.ErrorTypePermanent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeService{err: tt.err}
			err := newHandler(svc).Handle(context.Background(), queued(t, `{"email":"ana@example.com"}`))

			require.Error(t, err)
			assert.Equal(t, tt.want, kafka.ClassifyError(err))
			assert.ErrorIs(t, err, tt.err)
		})
	}
}
