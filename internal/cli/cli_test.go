package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"deca/internal/export"
	"deca/internal/submissions/validator"
	"deca/pkg/model"
)

const validPayload = `{"submitted_on":"Date: 12 Mar, 2024 9:05","email":" Ana@Example.com ","nombre":"Ana","apellidos":"García","dni":"12345678-z"}`

func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func decode(t *testing.T, s string) model.Decision {
	t.Helper()
	var d model.Decision
	require.NoError(t, json.Unmarshal([]byte(s), &d))
	return d
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name       string
		payload    string
		args       []string
		wantAction model.Action
		wantKey    string
		wantStatus bool
	}{
		{
			name:       "defaults",
			payload:    validPayload,
			wantAction: model.ActionUpsert,
			wantKey:    "ana@example.com:2024-03-12T09:05:00Z",
			wantStatus: true,
		},
		{
			name:       "no status no key",
			payload:    validPayload,
			args:       []string{"--no-status", "--no-key"},
			wantAction: model.ActionUpsert,
		},
		{
			name:       "pabbly labels",
			payload:    `{"payload":{"3. Submitted On":"Date: 12 Mar, 2024 9:05","3. Correo Electrónico":"ana@example.com","3. Nombre":"Ana","3. Apellidos":"García","3. DNI / Pasaporte / NIE":"12345678Z"}}`,
			wantAction: model.ActionUpsert,
			wantKey:    "ana@example.com:2024-03-12T09:05:00Z",
			wantStatus: true,
		},
		{
			name:       "empty row",
			payload:    `{"email":"","nombre":null}`,
			wantAction: model.ActionSkip,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := run(t, tt.payload, append([]string{"normalize"}, tt.args...)...)
			require.NoError(t, err)

			d := decode(t, out)
			assert.Equal(t, tt.wantAction, d.Action)
			assert.Equal(t, tt.wantKey, d.IdempotencyKey)
			_, hasStatus := d.Targets.Get(model.KeyAceptadoEn)
			assert.Equal(t, tt.wantStatus, hasStatus)
		})
	}
}

func TestNormalize_Strict(t *testing.T) {
	payload := strings.Replace(validPayload, `"12345678-z"`, `"ABC"`, 1)

	out, _, err := run(t, payload, "normalize")
	require.NoError(t, err)
	assert.Equal(t, model.ActionUpsert, decode(t, out).Action)

	out, _, err = run(t, payload, "normalize", "--strict")
	require.NoError(t, err)
	d := decode(t, out)
	assert.Equal(t, model.ActionError, d.Action)
	assert.Equal(t, []string{validator.TokenDocumentInvalid + ": ABC"}, d.Errors)
}

func TestNormalize_BadInput(t *testing.T) {
	for _, in := range []string{"", "[]", `{"email":`} {
		_, _, err := run(t, in, "normalize")
		assert.Error(t, err, "input %q", in)
	}
}

func TestBatch(t *testing.T) {
	lines := strings.Join([]string{
		validPayload,
		"",
		`{"email":"luis@example.com","nombre":"Luis"}`,
		`{}`,
	}, "\n")

	dir := t.TempDir()
	in := filepath.Join(dir, "rows.jsonl")
	require.NoError(t, os.WriteFile(in, []byte(lines), 0o600))
	xlsx := filepath.Join(dir, "out.xlsx")

	out, stderr, err := run(t, "", "batch", in, "--xlsx", xlsx)
	require.NoError(t, err)

	outLines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, outLines, 3)
	assert.Equal(t, model.ActionUpsert, decode(t, outLines[0]).Action)
	assert.Equal(t, model.ActionError, decode(t, outLines[1]).Action)
	assert.Equal(t, model.ActionSkip, decode(t, outLines[2]).Action)
	assert.Equal(t, "upsert=1 error=1 skip=1\n", stderr)

	f, err := excelize.OpenFile(xlsx)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(export.SheetUpsert)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
	rows, err = f.GetRows(export.SheetError)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestBatch_ReportsLine(t *testing.T) {
	_, _, err := run(t, validPayload+"\nnot json\n", "batch")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestSend(t *testing.T) {
	var gotKey, gotIdem, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-api-key")
		gotIdem = r.Header.Get("Idempotency-Key")
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"meta":{"run_id":"r-1","source_system":"pabbly"},"decision":{"action":"SKIP","reason":"empty row","errors":[],"targets":{}}}}`))
	}))
	defer srv.Close()

	out, _, err := run(t, validPayload, "send", "--url", srv.URL, "--api-key", "secret", "--idempotency-key", "k-1")
	require.NoError(t, err)

	assert.Equal(t, "secret", gotKey)
	assert.Equal(t, "k-1", gotIdem)
	assert.Equal(t, "/api/v1/submissions", gotPath)

	var env model.Envelope
	require.NoError(t, json.Unmarshal([]byte(out), &env))
	assert.Equal(t, "r-1", env.Meta.RunID)
	assert.Equal(t, model.ActionSkip, env.Decision.Action)

	_, _, err = run(t, validPayload, "send", "--url", srv.URL, "--preview")
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/submissions/preview", gotPath)
}

func TestSend_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"invalid API key","code":"UNAUTHORIZED"}`))
	}))
	defer srv.Close()

	_, _, err := run(t, validPayload, "send", "--url", srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}
