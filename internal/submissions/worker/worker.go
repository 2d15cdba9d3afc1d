// Package worker processes webhook payloads queued on the intake topic.
package worker

import (
	"context"
	"errors"
	"strconv"
	"time"

	"deca/internal/submissions/mapper"
	"deca/internal/submissions/service"
	apperrors "deca/pkg/errors"
	"deca/pkg/kafka"
	"deca/pkg/logger"
)

type Handler struct {
	service service.SubmissionService
	mapper  *mapper.Mapper
	log     *logger.Logger
}

func NewHandler(svc service.SubmissionService, m *mapper.Mapper, log *logger.Logger) *Handler {
	return &Handler{service: svc, mapper: m, log: log}
}

// Handle is a kafka.MessageHandler. Undecodable payloads are permanent so
// they go straight to the dead letter topic; store and queue outages are
// transient and retried.
func (h *Handler) Handle(ctx context.Context, msg kafka.Message) error {
	var payload map[string]any
	if err := msg.DecodeValue(&payload); err != nil {
		return kafka.NewPermanentError("decode submission payload", err).
			WithDetail("offset", msg.Offset)
	}

	result, err := h.mapper.Map(payload)
	if err != nil {
		return kafka.NewPermanentError("map submission payload", err).
			WithDetail("offset", msg.Offset)
	}
	if len(result.Unmapped) > 0 {
		h.log.Debug("Ignored unknown payload keys",
			"topic", msg.Topic,
			"offset", msg.Offset,
			"keys", result.Unmapped,
		)
	}

	env, err := h.service.Process(ctx, intake(msg, result))
	if err != nil {
		return classify(err)
	}

	h.log.Info("Queued submission processed",
		"topic", msg.Topic,
		"partition", msg.Partition,
		"offset", msg.Offset,
		logger.ACTION, env.Decision.Action,
		"submission_id", env.Meta.SubmissionID,
	)
	return nil
}

// intake keeps the fallback submission id stable across redeliveries by
// deriving it from the message timestamp.
func intake(msg kafka.Message, result *mapper.Result) service.Intake {
	submissionID := result.SubmissionID
	if submissionID == "" {
		ts := msg.Timestamp
		if ts.IsZero() {
			ts = time.Now()
		}
		submissionID = "sub-" + strconv.FormatInt(ts.UnixMilli(), 10)
	}

	source, _ := msg.GetHeader(kafka.HeaderSource)
	return service.Intake{
		Raw:          result.Raw,
		SubmissionID: submissionID,
		Source:       source,
	}
}

func classify(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	switch {
	case apperrors.IsCode(err, apperrors.CodeUnavailable),
		apperrors.IsCode(err, apperrors.CodeTimeout):
		return kafka.NewTransientError("process submission", err)
	default:
		return kafka.NewPermanentError("process submission", err)
	}
}
