package setup

import (
	"testing"

	"deca/internal/submissions/validator"
	"deca/pkg/config"
)

func TestPipelineOptions(t *testing.T) {
	cfg := &config.Config{
		PipelineIncludeStatus:  true,
		PipelineIdempotencyKey: false,
		PhoneDefaultRegion:     "ES",
	}

	opts := PipelineOptions(cfg)
	if !opts.IncludeStatusField || opts.ComputeIdempotencyKey {
		t.Errorf("options = %+v, want status on and key off", opts)
	}
	if opts.Formats != nil {
		t.Error("format checks must be off unless strict formats are enabled")
	}

	cfg.PipelineStrictFormats = true
	opts = PipelineOptions(cfg)
	if _, ok := opts.Formats.(*validator.FormatValidator); !ok {
		t.Errorf("Formats = %T, want *validator.FormatValidator", opts.Formats)
	}
}
