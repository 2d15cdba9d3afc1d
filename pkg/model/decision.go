package model

import "time"

type Action string

const (
	ActionSkip   Action = "SKIP"
	ActionError  Action = "ERROR"
	ActionUpsert Action = "UPSERT"
)

// Decision is the only output of the normalization pipeline.
type Decision struct {
	Action         Action          `json:"action"`
	Reason         string          `json:"reason"`
	Errors         []string        `json:"errors"`
	Targets        CanonicalRecord `json:"targets"`
	IdempotencyKey string          `json:"idempotency_key,omitempty"`
}

// Envelope wraps a decision with ingestion metadata for transport and audit.
type Envelope struct {
	Meta     Meta          `json:"meta"`
	Raw      RawSubmission `json:"raw,omitempty"`
	Decision Decision      `json:"decision"`
}

type Meta struct {
	SourceSystem   string    `json:"source_system"`
	Workflow       string    `json:"workflow"`
	RunID          string    `json:"run_id"`
	SubmissionID   string    `json:"submission_id,omitempty"`
	IdempotencyKey string    `json:"idempotency_key,omitempty"`
	MappingVersion string    `json:"mapping_version"`
	IngestedAt     time.Time `json:"ts_ingested"`
	// Stored is set once an UPSERT reached the store; Created tells insert from update.
	Stored  bool `json:"stored"`
	Created bool `json:"created"`
}

// StoredSubmission is the persisted form of an accepted submission.
type StoredSubmission struct {
	IdempotencyKey string          `bson:"_id" json:"idempotency_key"`
	Targets        CanonicalRecord `bson:"-" json:"targets"`
	AceptadoEn     string          `bson:"aceptado_en" json:"aceptado_en"`
	RunID          string          `bson:"run_id" json:"run_id"`
	CreatedAt      time.Time       `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time       `bson:"updated_at" json:"updated_at"`
}
