package service

import (
	"context"
	"errors"
	"time"

	submissionserrors "deca/internal/submissions/errors"
	"deca/internal/submissions/repository"
	"deca/pkg/config"
	apperrors "deca/pkg/errors"
	"deca/pkg/logger"
	"deca/pkg/metrics"
	"deca/pkg/model"
	"deca/pkg/pipeline"

	"github.com/google/uuid"
)

const (
	Workflow      = "WF_001_DECA_INSCRIPCION"
	DefaultSource = "pabbly"
)

// Intake is one submission as received by a transport.
type Intake struct {
	Raw          model.RawSubmission
	SubmissionID string
	Source       string
}

// DecisionPublisher forwards decided envelopes downstream. Accepted carries
// stored UPSERTs, Review carries ERRORs that need a human.
type DecisionPublisher interface {
	PublishAccepted(ctx context.Context, env *model.Envelope) error
	PublishReview(ctx context.Context, env *model.Envelope) error
}

type SubmissionService interface {
	Preview(ctx context.Context, in Intake) *model.Envelope
	Process(ctx context.Context, in Intake) (*model.Envelope, error)
}

type submissionService struct {
	pipeline  *pipeline.Pipeline
	repo      repository.SubmissionRepository
	publisher DecisionPublisher
	cfg       *config.Config
	now       func() time.Time
}

// NewSubmissionService wires the pipeline to its collaborators. publisher may
// be nil, in which case decisions are only stored and logged.
func NewSubmissionService(
	p *pipeline.Pipeline,
	repo repository.SubmissionRepository,
	publisher DecisionPublisher,
	cfg *config.Config,
) SubmissionService {
	return &submissionService{
		pipeline:  p,
		repo:      repo,
		publisher: publisher,
		cfg:       cfg,
		now:       time.Now,
	}
}

func (s *submissionService) Preview(ctx context.Context, in Intake) *model.Envelope {
	env := s.decide(in)
	s.log(env).Debug("Submission previewed",
		logger.ACTION, env.Decision.Action,
		"reason", env.Decision.Reason,
	)
	return env
}

func (s *submissionService) Process(ctx context.Context, in Intake) (*model.Envelope, error) {
	start := s.now()
	env := s.decide(in)
	log := s.log(env)

	var err error
	switch env.Decision.Action {
	case model.ActionSkip:
		log.Info("Submission skipped", "reason", env.Decision.Reason)
	case model.ActionError:
		err = s.review(ctx, env, log)
	case model.ActionUpsert:
		err = s.accept(ctx, env, log)
	}

	metrics.RecordDecision(string(env.Decision.Action), s.now().Sub(start))
	if err != nil {
		return nil, err
	}
	return env, nil
}

func (s *submissionService) decide(in Intake) *model.Envelope {
	decision := s.pipeline.Process(in.Raw)

	source := in.Source
	if source == "" {
		source = DefaultSource
	}

	return &model.Envelope{
		Meta: model.Meta{
			SourceSystem:   source,
			Workflow:       Workflow,
			RunID:          uuid.NewString(),
			SubmissionID:   in.SubmissionID,
			IdempotencyKey: decision.IdempotencyKey,
			MappingVersion: pipeline.MappingVersion,
			IngestedAt:     s.now().UTC(),
		},
		Raw:      in.Raw,
		Decision: decision,
	}
}

func (s *submissionService) log(env *model.Envelope) *logger.Logger {
	return s.cfg.Log.WithSubmission(env.Meta.RunID, env.Meta.IdempotencyKey)
}

func (s *submissionService) review(ctx context.Context, env *model.Envelope, log *logger.Logger) error {
	log.Warn("Submission needs manual review",
		"errors", env.Decision.Errors,
		"submission_id", env.Meta.SubmissionID,
	)
	if s.publisher == nil {
		return nil
	}
	if err := s.publisher.PublishReview(ctx, env); err != nil {
		log.Error("Failed to publish submission for review", "error", err)
		return apperrors.Unavailable("review queue", err)
	}
	return nil
}

func (s *submissionService) accept(ctx context.Context, env *model.Envelope, log *logger.Logger) error {
	key := env.Meta.IdempotencyKey
	if key == "" {
		// The key option may be off; the store still needs one.
		key = pipeline.IdempotencyKey(env.Decision.Targets)
		env.Meta.IdempotencyKey = key
		log = s.log(env)
	}

	start := s.now()
	result, err := s.repo.Upsert(ctx, key, env.Decision.Targets, env.Meta.RunID)
	metrics.RecordStore("upsert", err, s.now().Sub(start))
	if err != nil {
		log.Error("Failed to store submission", "error", err)
		switch {
		case errors.Is(err, submissionserrors.ErrStoreUnavailable):
			return apperrors.Unavailable("submission store", err)
		case errors.Is(err, context.DeadlineExceeded):
			return apperrors.Timeout("Storing the submission timed out")
		default:
			return apperrors.Internal("Failed to store submission", err)
		}
	}
	env.Meta.Stored = true
	env.Meta.Created = result.Created

	log.Info("Submission stored",
		"created", result.Created,
		"submission_id", env.Meta.SubmissionID,
	)

	if s.publisher == nil {
		return nil
	}
	if err := s.publisher.PublishAccepted(ctx, env); err != nil {
		// Stored already; a replay upserts the same key.
		log.Error("Failed to publish accepted submission", "error", err)
		return apperrors.Unavailable("accepted queue", err)
	}
	return nil
}
