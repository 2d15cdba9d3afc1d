package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"deca/internal/export"
	"deca/internal/submissions/mapper"
	httputil "deca/pkg/http"
	"deca/pkg/model"
)

const maxLineSize = 1 << 20

func newBatchCmd(newLog logFactory) *cobra.Command {
	var (
		flags    pipelineFlags
		xlsxPath string
	)

	cmd := &cobra.Command{
		Use:   "batch [file]",
		Short: "Normalize a JSON Lines file of submissions",
		Long: `Batch reads one JSON object per line and prints one decision per line.
Blank lines are ignored. With --xlsx the UPSERT and ERROR decisions are
also written to a workbook; SKIP rows are only counted.

Examples:
  deca batch export.jsonl
  deca batch export.jsonl --xlsx solicitudes.xlsx > decisions.jsonl`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := openInput(cmd, args)
			if err != nil {
				return err
			}
			defer in.Close()

			log := newLog(cmd)
			p := flags.pipeline()
			m := mapper.New()

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetEscapeHTML(false)

			var decisions []model.Decision
			scanner := bufio.NewScanner(in)
			scanner.Buffer(make([]byte, 64*1024), maxLineSize)
			line := 0
			for scanner.Scan() {
				line++
				text := strings.TrimSpace(scanner.Text())
				if text == "" {
					continue
				}

				payload, err := httputil.DecodeJSONObject([]byte(text))
				if err != nil {
					return fmt.Errorf("line %d: %w", line, err)
				}
				result, err := mapPayload(m, log, payload)
				if err != nil {
					return fmt.Errorf("line %d: %w", line, err)
				}

				d := p.Process(result.Raw)
				if err := enc.Encode(d); err != nil {
					return err
				}
				decisions = append(decisions, d)
			}
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("read input: %w", err)
			}

			sum := summarize(decisions)
			if xlsxPath != "" {
				if sum, err = writeWorkbook(xlsxPath, decisions); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "upsert=%d error=%d skip=%d\n", sum.Upserts, sum.Errors, sum.Skipped)
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "Also write UPSERT and ERROR rows to this XLSX file")
	return cmd
}

func summarize(decisions []model.Decision) export.Summary {
	var sum export.Summary
	for _, d := range decisions {
		switch d.Action {
		case model.ActionUpsert:
			sum.Upserts++
		case model.ActionError:
			sum.Errors++
		default:
			sum.Skipped++
		}
	}
	return sum
}

func writeWorkbook(path string, decisions []model.Decision) (export.Summary, error) {
	f, err := os.Create(path)
	if err != nil {
		return export.Summary{}, err
	}
	sum, err := export.WriteXLSX(f, decisions)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return sum, fmt.Errorf("write %s: %w", path, err)
	}
	return sum, nil
}
