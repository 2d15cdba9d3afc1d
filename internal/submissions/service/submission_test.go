package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	submissionserrors "deca/internal/submissions/errors"
	"deca/internal/submissions/repository"
	"deca/pkg/config"
	apperrors "deca/pkg/errors"
	"deca/pkg/logger"
	"deca/pkg/model"
	"deca/pkg/pipeline"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type upsertCall struct {
	key    string
	record model.CanonicalRecord
	runID  string
}

type fakeRepository struct {
	mu      sync.Mutex
	calls   []upsertCall
	seen    map[string]bool
	err     error
	pingErr error
}

func (r *fakeRepository) Upsert(_ context.Context, key string, record model.CanonicalRecord, runID string) (*repository.UpsertResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	if r.seen == nil {
		r.seen = map[string]bool{}
	}
	created := !r.seen[key]
	r.seen[key] = true
	r.calls = append(r.calls, upsertCall{key: key, record: record, runID: runID})
	return &repository.UpsertResult{Created: created}, nil
}

func (r *fakeRepository) FindByKey(context.Context, string) (*model.StoredSubmission, error) {
	return nil, submissionserrors.ErrNotFound
}

func (r *fakeRepository) Ping(context.Context) error { return r.pingErr }

type fakePublisher struct {
	accepted []*model.Envelope
	review   []*model.Envelope
	err      error
}

func (p *fakePublisher) PublishAccepted(_ context.Context, env *model.Envelope) error {
	if p.err != nil {
		return p.err
	}
	p.accepted = append(p.accepted, env)
	return nil
}

func (p *fakePublisher) PublishReview(_ context.Context, env *model.Envelope) error {
	if p.err != nil {
		return p.err
	}
	p.review = append(p.review, env)
	return nil
}

func testConfig() *config.Config {
	return &config.Config{Log: logger.Discard()}
}

func validRaw() model.RawSubmission {
	return model.RawSubmission{
		model.FieldSubmittedOn: "Date: 12 Mar, 2024 9:05",
		model.FieldEmail:       "Ana.Garcia@Example.com",
		model.FieldNombre:      "Ana",
		model.FieldApellidos:   "García López",
		model.FieldDNI:         "12345678z",
	}
}

func newService(repo repository.SubmissionRepository, pub DecisionPublisher, opts pipeline.Options) *submissionService {
	svc := NewSubmissionService(pipeline.New(opts), repo, pub, testConfig()).(*submissionService)
	svc.now = func() time.Time { return time.Date(2024, 3, 12, 10, 0, 0, 0, time.UTC) }
	return svc
}

func TestProcess_UpsertStoresAndPublishes(t *testing.T) {
	repo := &fakeRepository{}
	pub := &fakePublisher{}
	svc := newService(repo, pub, pipeline.DefaultOptions())

	env, err := svc.Process(context.Background(), Intake{Raw: validRaw(), SubmissionID: "sub-1"})
	require.NoError(t, err)

	assert.Equal(t, model.ActionUpsert, env.Decision.Action)
	assert.Equal(t, "ana.garcia@example.com:2024-03-12T09:05:00Z", env.Meta.IdempotencyKey)
	assert.Equal(t, DefaultSource, env.Meta.SourceSystem)
	assert.Equal(t, Workflow, env.Meta.Workflow)
	assert.Equal(t, pipeline.MappingVersion, env.Meta.MappingVersion)
	assert.Equal(t, "sub-1", env.Meta.SubmissionID)
	assert.NotEmpty(t, env.Meta.RunID)
	assert.True(t, env.Meta.Stored)
	assert.True(t, env.Meta.Created)

	require.Len(t, repo.calls, 1)
	assert.Equal(t, env.Meta.IdempotencyKey, repo.calls[0].key)
	assert.Equal(t, env.Meta.RunID, repo.calls[0].runID)
	require.Len(t, pub.accepted, 1)
	assert.Empty(t, pub.review)
}

func TestProcess_ReplayUpdates(t *testing.T) {
	repo := &fakeRepository{}
	svc := newService(repo, nil, pipeline.DefaultOptions())

	first, err := svc.Process(context.Background(), Intake{Raw: validRaw()})
	require.NoError(t, err)
	second, err := svc.Process(context.Background(), Intake{Raw: validRaw()})
	require.NoError(t, err)

	assert.True(t, first.Meta.Created)
	assert.False(t, second.Meta.Created)
	assert.NotEqual(t, first.Meta.RunID, second.Meta.RunID)
	assert.Equal(t, first.Meta.IdempotencyKey, second.Meta.IdempotencyKey)
}

func TestProcess_ErrorGoesToReview(t *testing.T) {
	repo := &fakeRepository{}
	pub := &fakePublisher{}
	svc := newService(repo, pub, pipeline.DefaultOptions())

	raw := validRaw()
	delete(raw, model.FieldDNI)
	env, err := svc.Process(context.Background(), Intake{Raw: raw, Source: "sheets"})
	require.NoError(t, err)

	assert.Equal(t, model.ActionError, env.Decision.Action)
	assert.Equal(t, []string{pipeline.ErrDocumentMissing}, env.Decision.Errors)
	assert.Equal(t, "sheets", env.Meta.SourceSystem)
	assert.False(t, env.Meta.Stored)
	assert.Empty(t, repo.calls, "ERROR decisions are never stored")
	require.Len(t, pub.review, 1)
	assert.Empty(t, pub.accepted)
}

func TestProcess_SkipHasNoSideEffects(t *testing.T) {
	repo := &fakeRepository{}
	pub := &fakePublisher{}
	svc := newService(repo, pub, pipeline.DefaultOptions())

	env, err := svc.Process(context.Background(), Intake{Raw: model.RawSubmission{}})
	require.NoError(t, err)

	assert.Equal(t, model.ActionSkip, env.Decision.Action)
	assert.Equal(t, pipeline.ReasonEmptyRow, env.Decision.Reason)
	assert.Empty(t, repo.calls)
	assert.Empty(t, pub.accepted)
	assert.Empty(t, pub.review)
}

func TestProcess_DerivesKeyWhenOptionDisabled(t *testing.T) {
	repo := &fakeRepository{}
	svc := newService(repo, nil, pipeline.Options{})

	env, err := svc.Process(context.Background(), Intake{Raw: validRaw()})
	require.NoError(t, err)

	assert.Empty(t, env.Decision.IdempotencyKey)
	require.Len(t, repo.calls, 1)
	assert.Equal(t, "ana.garcia@example.com:2024-03-12T09:05:00Z", repo.calls[0].key)
	assert.Equal(t, repo.calls[0].key, env.Meta.IdempotencyKey)
}

func TestProcess_StoreFailures(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{
			name:     "store unavailable",
			err:      fmt.Errorf("%w: server selection timeout", submissionserrors.ErrStoreUnavailable),
			wantCode: apperrors.CodeUnavailable,
		},
		{
			name:     "deadline",
			err:      fmt.Errorf("upsert: %w", context.DeadlineExceeded),
			wantCode: apperrors.CodeTimeout,
		},
		{
			name:     "other",
			err:      errors.New("write conflict"),
			wantCode: apperrors.CodeInternal,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pub := &fakePublisher{}
			svc := newService(&fakeRepository{err: tt.err}, pub, pipeline.DefaultOptions())

			env, err := svc.Process(context.Background(), Intake{Raw: validRaw()})
			require.Error(t, err)
			assert.Nil(t, env)
			assert.True(t, apperrors.IsCode(err, tt.wantCode), "got %v", err)
			assert.Empty(t, pub.accepted, "nothing is published when the store fails")
		})
	}
}

func TestProcess_PublishFailureIsUnavailable(t *testing.T) {
	repo := &fakeRepository{}
	svc := newService(repo, &fakePublisher{err: errors.New("broker down")}, pipeline.DefaultOptions())

	_, err := svc.Process(context.Background(), Intake{Raw: validRaw()})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeUnavailable))
	assert.Len(t, repo.calls, 1, "the row is stored before publishing")
}

func TestPreview_NoSideEffects(t *testing.T) {
	repo := &fakeRepository{}
	pub := &fakePublisher{}
	svc := newService(repo, pub, pipeline.DefaultOptions())

	env := svc.Preview(context.Background(), Intake{Raw: validRaw()})

	assert.Equal(t, model.ActionUpsert, env.Decision.Action)
	assert.False(t, env.Meta.Stored)
	assert.Empty(t, repo.calls)
	assert.Empty(t, pub.accepted)
	assert.Equal(t, time.Date(2024, 3, 12, 10, 0, 0, 0, time.UTC), env.Meta.IngestedAt)
}
