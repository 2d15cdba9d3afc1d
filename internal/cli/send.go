package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"deca/pkg/client"
	httputil "deca/pkg/http"
	"deca/pkg/model"
)

const (
	envIntakeURL = "DECA_INTAKE_URL"
	envAPIKey    = "API_KEY"
)

func newSendCmd(newLog logFactory) *cobra.Command {
	var (
		baseURL        string
		apiKey         string
		idempotencyKey string
		preview        bool
		timeout        time.Duration
	)

	cmd := &cobra.Command{
		Use:   "send [file]",
		Short: "Post one submission to a running intake service",
		Long: `Send posts one JSON object to the intake service and prints the returned
envelope. With --preview nothing is stored or published.

Examples:
  deca send submission.json --url http://localhost:8080
  deca send submission.json --preview`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if apiKey == "" {
				apiKey = os.Getenv(envAPIKey)
			}

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

			c := client.NewIntakeClient(baseURL, apiKey)
			c.HTTPClient.Timeout = timeout

			log := newLog(cmd)
			log.Debug("Sending submission", "url", c.BaseURL, "preview", preview)

			var env *model.Envelope
			if preview {
				env, err = c.Preview(cmd.Context(), payload)
			} else {
				env, err = c.Submit(cmd.Context(), payload, idempotencyKey)
			}
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			enc.SetEscapeHTML(false)
			return enc.Encode(env)
		},
	}

	defaultURL := os.Getenv(envIntakeURL)
	if defaultURL == "" {
		defaultURL = "http://localhost:8080"
	}
	cmd.Flags().StringVar(&baseURL, "url", defaultURL, "Intake service base URL")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "API key (defaults to $API_KEY)")
	cmd.Flags().StringVar(&idempotencyKey, "idempotency-key", "", "Idempotency-Key header value")
	cmd.Flags().BoolVar(&preview, "preview", false, "Only preview the decision")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")
	return cmd
}
