package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"helios-hq/sluice/pkg/config"
)

func TestContextAccessors(t *testing.T) {
	ctx := context.Background()

	if got := RequestID(ctx); got != "" {
		t.Errorf("Expected empty request ID on bare context, got %q", got)
	}
	if got := Provider(ctx); got != "" {
		t.Errorf("Expected empty provider on bare context, got %q", got)
	}

	ctx = WithRequestID(ctx, "req-123")
	ctx = WithProvider(ctx, "helius")

	if got := RequestID(ctx); got != "req-123" {
		t.Errorf("Expected request ID req-123, got %q", got)
	}
	if got := Provider(ctx); got != "helius" {
		t.Errorf("Expected provider helius, got %q", got)
	}
}

func TestContextHandler_LiftsFields(t *testing.T) {
	buf := &bytes.Buffer{}
	logger, err := New(config.LoggingConfig{Level: "info", Format: "json"}, buf)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	ctx := WithRequestID(context.Background(), "req-456")
	ctx = WithProvider(ctx, "quicknode")
	logger.InfoContext(ctx, "request dispatched")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("Expected valid JSON output, got %v: %s", err, buf.String())
	}
	if record["request_id"] != "req-456" {
		t.Errorf("Expected request_id lifted from context, got %v", record["request_id"])
	}
	if record["provider"] != "quicknode" {
		t.Errorf("Expected provider lifted from context, got %v", record["provider"])
	}
}

func TestContextHandler_SurvivesWith(t *testing.T) {
	buf := &bytes.Buffer{}
	logger, err := New(config.LoggingConfig{Level: "info", Format: "json"}, buf)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	// Deriving a logger must keep the context lifting in place.
	derived := logger.With("component", "rpc")
	ctx := WithRequestID(context.Background(), "req-789")
	derived.InfoContext(ctx, "request dispatched")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("Expected valid JSON output, got %v: %s", err, buf.String())
	}
	if record["request_id"] != "req-789" {
		t.Errorf("Expected request_id lifted after With, got %v", record["request_id"])
	}
	if record["component"] != "rpc" {
		t.Errorf("Expected component attr to survive, got %v", record["component"])
	}
}

func TestContextHandler_BareContext(t *testing.T) {
	buf := &bytes.Buffer{}
	logger, err := New(config.LoggingConfig{Level: "info", Format: "json"}, buf)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	logger.InfoContext(context.Background(), "request dispatched")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("Expected valid JSON output, got %v: %s", err, buf.String())
	}
	if _, ok := record["request_id"]; ok {
		t.Error("Expected no request_id without context value")
	}
}
