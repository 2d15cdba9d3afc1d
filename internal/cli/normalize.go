package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"deca/internal/submissions/mapper"
	httputil "deca/pkg/http"
)

func newNormalizeCmd(newLog logFactory) *cobra.Command {
	var flags pipelineFlags

	cmd := &cobra.Command{
		Use:   "normalize [file]",
		Short: "Normalize one submission and print its decision",
		Long: `Normalize reads one JSON object (a raw submission, a Pabbly webhook body or
a sheet row keyed by column labels) from a file or stdin and prints the
pipeline decision as indented JSON.

Examples:
  deca normalize submission.json
  cat submission.json | deca normalize --strict --region ES`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := openInput(cmd, args)
			if err != nil {
				return err
			}
			defer in.Close()

			data, err := io.ReadAll(in)
			if err != nil {
				return fmt.Errorf("read input: %w", err)
			}
			payload, err := httputil.DecodeJSONObject(data)
			if err != nil {
				return err
			}

			result, err := mapPayload(mapper.New(), newLog(cmd), payload)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			enc.SetEscapeHTML(false)
			return enc.Encode(flags.pipeline().Process(result.Raw))
		},
	}
	flags.register(cmd)
	return cmd
}
