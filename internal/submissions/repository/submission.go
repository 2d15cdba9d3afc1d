package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	submissionserrors "deca/internal/submissions/errors"
	"deca/pkg/config"
	"deca/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	fieldTargets    = "targets"
	fieldAceptadoEn = "aceptado_en"
	fieldRunID      = "run_id"
	fieldCreatedAt  = "created_at"
	fieldUpdatedAt  = "updated_at"
)

type UpsertResult struct {
	Created bool
}

type SubmissionRepository interface {
	Upsert(ctx context.Context, key string, record model.CanonicalRecord, runID string) (*UpsertResult, error)
	FindByKey(ctx context.Context, key string) (*model.StoredSubmission, error)
	Ping(ctx context.Context) error
}

type mongoSubmissionRepository struct {
	cfg        *config.Config
	client     *mongo.Client
	collection *mongo.Collection
}

func NewMongoSubmissionRepository(cfg *config.Config) SubmissionRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoSubmissionRepository{
		cfg:        cfg,
		client:     cfg.Client.Mongo,
		collection: db.Collection(cfg.MongoCollection),
	}
}

type document struct {
	ID         string    `bson:"_id"`
	Targets    bson.D    `bson:"targets"`
	AceptadoEn string    `bson:"aceptado_en"`
	RunID      string    `bson:"run_id"`
	CreatedAt  time.Time `bson:"created_at"`
	UpdatedAt  time.Time `bson:"updated_at"`
}

// withTimeout bounds ctx by timeout, keeping an earlier caller deadline.
func (r *mongoSubmissionRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < timeout {
		return context.WithDeadline(ctx, deadline)
	}
	return context.WithTimeout(ctx, timeout)
}

// Upsert writes record under key. A new document gets "ACEPTADO EN" =
// PENDIENTE; an existing non-empty status is never overwritten.
func (r *mongoSubmissionRepository) Upsert(ctx context.Context, key string, record model.CanonicalRecord, runID string) (*UpsertResult, error) {
	if key == "" {
		return nil, submissionserrors.ErrMissingKey
	}

	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": key},
		buildUpsertPipeline(record, runID, now),
		options.Update().SetUpsert(true),
	)
	if err != nil {
		if isUnavailable(err) {
			return nil, fmt.Errorf("%w: %v", submissionserrors.ErrStoreUnavailable, err)
		}
		return nil, fmt.Errorf("failed to upsert submission: %w", err)
	}

	return &UpsertResult{Created: result.UpsertedCount > 0}, nil
}

func (r *mongoSubmissionRepository) FindByKey(ctx context.Context, key string) (*model.StoredSubmission, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var doc document
	err := r.collection.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", submissionserrors.ErrNotFound, key)
		}
		return nil, fmt.Errorf("failed to find submission: %w", err)
	}
	return doc.toModel(), nil
}

func (r *mongoSubmissionRepository) Ping(ctx context.Context) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	if err := r.client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("%w: %v", submissionserrors.ErrStoreUnavailable, err)
	}
	return nil
}

// buildUpsertPipeline renders the update as an aggregation pipeline so that
// created_at and the status can depend on the stored document.
func buildUpsertPipeline(record model.CanonicalRecord, runID string, now time.Time) mongo.Pipeline {
	keepOrPending := bson.D{{Key: "$cond", Value: bson.A{
		bson.D{{Key: "$gt", Value: bson.A{
			bson.D{{Key: "$ifNull", Value: bson.A{"$" + fieldAceptadoEn, ""}}},
			"",
		}}},
		"$" + fieldAceptadoEn,
		model.StatusPending,
	}}}

	return mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			// $literal keeps user text starting with "$" from being read as a field path.
			{Key: fieldTargets, Value: bson.D{{Key: "$literal", Value: RecordToBSON(record.Without(model.KeyAceptadoEn))}}},
			{Key: fieldRunID, Value: bson.D{{Key: "$literal", Value: runID}}},
			{Key: fieldUpdatedAt, Value: now},
			{Key: fieldCreatedAt, Value: bson.D{{Key: "$ifNull", Value: bson.A{"$" + fieldCreatedAt, now}}}},
			{Key: fieldAceptadoEn, Value: keepOrPending},
		}}},
	}
}

// RecordToBSON keeps the canonical field order.
func RecordToBSON(record model.CanonicalRecord) bson.D {
	doc := make(bson.D, 0, len(record))
	for _, f := range record {
		doc = append(doc, bson.E{Key: f.Key, Value: f.Value})
	}
	return doc
}

// RecordFromBSON is the inverse of RecordToBSON. Arrays become []string;
// anything that is neither a string nor an array becomes nil.
func RecordFromBSON(doc bson.D) model.CanonicalRecord {
	record := make(model.CanonicalRecord, 0, len(doc))
	for _, e := range doc {
		record = append(record, model.Field{Key: e.Key, Value: fromBSONValue(e.Value)})
	}
	return record
}

func fromBSONValue(v any) any {
	switch t := v.(type) {
	case string:
		return t
	case primitive.A:
		return stringSlice(t)
	case []any:
		return stringSlice(t)
	case []string:
		return t
	default:
		return nil
	}
}

func stringSlice(items []any) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func (d document) toModel() *model.StoredSubmission {
	targets := RecordFromBSON(d.Targets)
	if d.AceptadoEn != "" {
		targets = append(targets, model.Field{Key: model.KeyAceptadoEn, Value: d.AceptadoEn})
	}
	return &model.StoredSubmission{
		IdempotencyKey: d.ID,
		Targets:        targets,
		AceptadoEn:     d.AceptadoEn,
		RunID:          d.RunID,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}

func isUnavailable(err error) bool {
	return mongo.IsTimeout(err) || mongo.IsNetworkError(err) ||
		errors.Is(err, context.DeadlineExceeded) || errors.Is(err, mongo.ErrClientDisconnected)
}
