package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"go.opentelemetry.io/otel/trace"

	"github.com/polkiloo/storefront/internal/config"
)

func TestNewProvidesJSONLogger(t *testing.T) {
	l := New(&config.Config{LogLevel: "info"})
	if l == nil {
		t.Fatal("expected logger, got nil")
	}

	if !l.Enabled(context.Background(), slog.LevelInfo) {
		t.Errorf("expected info level to be enabled")
	}
	if l.Enabled(context.Background(), slog.LevelDebug) {
		t.Errorf("did not expect debug level to be enabled")
	}

	if _, ok := l.Handler().(*traceHandler); !ok {
		t.Fatalf("expected trace handler, got %T", l.Handler())
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestTraceHandlerAddsSpanIDs(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(&buf, slog.LevelInfo).With(slog.String("component", "test"))

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: traceID,
		SpanID:  spanID,
	}))

	l.InfoContext(ctx, "order advanced")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("decode log record: %v", err)
	}
	if record["trace_id"] != traceID.String() {
		t.Errorf("expected trace id %s, got %v", traceID, record["trace_id"])
	}
	if record["span_id"] != spanID.String() {
		t.Errorf("expected span id %s, got %v", spanID, record["span_id"])
	}
	if record["component"] != "test" {
		t.Errorf("expected component attribute to survive, got %v", record["component"])
	}
}

func TestTraceHandlerWithoutSpan(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, slog.LevelInfo).Info("plain")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("decode log record: %v", err)
	}
	if _, ok := record["trace_id"]; ok {
		t.Error("did not expect trace id without span")
	}
}
