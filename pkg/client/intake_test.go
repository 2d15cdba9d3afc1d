package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"deca/pkg/model"
)

func TestIntakeClient_Submit(t *testing.T) {
	var gotKey, gotIdem string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != SubmissionsPath {
			t.Errorf("path = %q, want %q", r.URL.Path, SubmissionsPath)
		}
		gotKey = r.Header.Get(APIKeyHeader)
		gotIdem = r.Header.Get("Idempotency-Key")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"meta":{"run_id":"r1","mapping_version":"3.1.0"},"decision":{"action":"UPSERT","reason":"OK","errors":[],"targets":{"Nombre":"Ana"}}}}`))
	}))
	defer srv.Close()

	c := NewIntakeClient(srv.URL+"/", "secret")
	env, err := c.Submit(context.Background(), map[string]any{"email": "a@b.es"}, "idem-1")
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	if gotKey != "secret" {
		t.Errorf("api key header = %q, want %q", gotKey, "secret")
	}
	if gotIdem != "idem-1" {
		t.Errorf("Idempotency-Key = %q, want %q", gotIdem, "idem-1")
	}
	if gotBody["email"] != "a@b.es" {
		t.Errorf("body = %v", gotBody)
	}
	if env.Decision.Action != model.ActionUpsert || env.Meta.RunID != "r1" {
		t.Errorf("envelope = %+v", env)
	}
	if name, _ := env.Decision.Targets.String(model.KeyNombre); name != "Ana" {
		t.Errorf("Nombre = %q, want Ana", name)
	}
}

func TestIntakeClient_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"invalid api key","code":"UNAUTHORIZED"}`))
	}))
	defer srv.Close()

	_, err := NewIntakeClient(srv.URL, "").Preview(context.Background(), map[string]any{})

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("Preview() error = %v, want *StatusError", err)
	}
	if statusErr.StatusCode != http.StatusUnauthorized || statusErr.Code != "UNAUTHORIZED" {
		t.Errorf("StatusError = %+v", statusErr)
	}
}

func TestIntakeClient_WaitForHealthy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	if err := NewIntakeClient(srv.URL, "").WaitForHealthy(context.Background(), time.Second); err != nil {
		t.Errorf("WaitForHealthy() error = %v", err)
	}
}
