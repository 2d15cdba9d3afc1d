package kafka_middleware

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"deca/pkg/kafka"
	"deca/pkg/logger"
)

func TestLoggingProducerMiddleware(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Level: logger.DEBUG, Output: &buf})
	mw := LoggingProducerMiddleware(log)

	msg := kafka.Message{Topic: "deca.submissions.accepted", Key: "ana@example.com:2024-03-12T09:05:00Z", Headers: map[string]string{}}
	wantErr := errors.New("broker down")

	err := mw(context.Background(), msg, func(context.Context, kafka.Message) error { return wantErr })
	if !errors.Is(err, wantErr) {
		t.Fatalf("middleware error = %v, want %v", err, wantErr)
	}
	out := buf.String()
	if !strings.Contains(out, "Failed to publish Kafka message") || !strings.Contains(out, "broker down") {
		t.Errorf("log output missing failure record: %s", out)
	}
}

func TestLoggingConsumerMiddlewarePassesThrough(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Level: logger.DEBUG, Output: &buf})
	mw := LoggingConsumerMiddleware(log)

	called := false
	err := mw(context.Background(), kafka.Message{Topic: "deca.submissions.intake", Headers: map[string]string{}}, func(context.Context, kafka.Message) error {
		called = true
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Error("next handler was not called")
	}
	if !strings.Contains(buf.String(), "Processed Kafka message") {
		t.Errorf("log output missing success record: %s", buf.String())
	}
}

func TestMetricsMiddlewareReturnsHandlerError(t *testing.T) {
	wantErr := errors.New("store unavailable")
	msg := kafka.Message{Topic: "deca.submissions.intake", Headers: map[string]string{}}

	err := MetricsConsumerMiddleware()(context.Background(), msg, func(context.Context, kafka.Message) error { return wantErr })
	if !errors.Is(err, wantErr) {
		t.Errorf("consumer middleware error = %v, want %v", err, wantErr)
	}

	err = MetricsProducerMiddleware()(context.Background(), msg, func(context.Context, kafka.Message) error { return nil })
	if err != nil {
		t.Errorf("producer middleware error = %v, want nil", err)
	}
}
