// Package cli implements the deca command line tool.
package cli

import (
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"deca/internal/submissions/mapper"
	"deca/internal/submissions/validator"
	"deca/pkg/logger"
	"deca/pkg/pipeline"
)

const defaultRegion = "ES"

func NewRootCmd() *cobra.Command {
	var logLevel string

	cmd := &cobra.Command{
		Use:           "deca",
		Short:         "DECA enrollment submission tools",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", logger.WARN, "Log level for diagnostics on stderr")

	newLog := func(cmd *cobra.Command) *logger.Logger {
		return logger.New(logger.Config{
			Level:  logLevel,
			Format: logger.TEXT,
			Output: cmd.ErrOrStderr(),
		})
	}

	cmd.AddCommand(
		newNormalizeCmd(newLog),
		newBatchCmd(newLog),
		newSendCmd(newLog),
	)
	return cmd
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	cmd := NewRootCmd()
	if err := cmd.Execute(); err != nil {
		cmd.PrintErrln("Error:", err)
		return 1
	}
	return 0
}

type logFactory func(*cobra.Command) *logger.Logger

// pipelineFlags selects the pipeline variant for local processing.
type pipelineFlags struct {
	noStatus bool
	noKey    bool
	strict   bool
	region   string
}

func (f *pipelineFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.noStatus, "no-status", false, "Omit the \"ACEPTADO EN\" status field")
	cmd.Flags().BoolVar(&f.noKey, "no-key", false, "Do not derive the idempotency key")
	cmd.Flags().BoolVar(&f.strict, "strict", false, "Also reject malformed email, document and phone values")
	cmd.Flags().StringVar(&f.region, "region", defaultRegion, "Default phone region for --strict")
}

func (f *pipelineFlags) pipeline() *pipeline.Pipeline {
	opts := pipeline.Options{
		IncludeStatusField:    !f.noStatus,
		ComputeIdempotencyKey: !f.noKey,
	}
	if f.strict {
		opts.Formats = validator.NewFormatValidator(strings.ToUpper(f.region))
	}
	return pipeline.New(opts)
}

func mapPayload(m *mapper.Mapper, log *logger.Logger, payload map[string]any) (*mapper.Result, error) {
	result, err := m.Map(payload)
	if err != nil {
		return nil, err
	}
	if len(result.Unmapped) > 0 {
		log.Debug("Ignored unknown payload keys", "keys", result.Unmapped)
	}
	return result, nil
}

// openInput returns the named file, or stdin for no argument or "-".
func openInput(cmd *cobra.Command, args []string) (io.ReadCloser, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.NopCloser(cmd.InOrStdin()), nil
	}
	return os.Open(args[0])
}
