package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"go.opentelemetry.io/otel/trace"
)

func jsonLogger(buf *bytes.Buffer, level string) *Logger {
	return NewWithWriter(&Config{Level: level, Format: "json"}, "test-svc", buf)
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	line := strings.TrimSpace(buf.String())
	if err := json.Unmarshal([]byte(line), &m); err != nil {
		t.Fatalf("invalid log line %q: %v", line, err)
	}
	return m
}

func TestNewDefault(t *testing.T) {
	l := NewDefault("test-svc")
	if l == nil {
		t.Fatal("expected non-nil logger")
	}
	if l.Service() != "test-svc" {
		t.Errorf("expected service 'test-svc', got %q", l.Service())
	}
}

func TestNew_InvalidLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	l := jsonLogger(&buf, "invalid-level")

	l.Debug("hidden")
	if buf.Len() != 0 {
		t.Errorf("debug should be filtered at info level, got %q", buf.String())
	}
	l.Info("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("expected info line, got %q", buf.String())
	}
}

func TestLogger_Fields(t *testing.T) {
	var buf bytes.Buffer
	l := jsonLogger(&buf, "debug").WithComponent("server")

	l.Info("call completed", Fields(FieldAPIID, "abc", FieldAttempt, 2))
	m := decodeLine(t, &buf)

	if m["message"] != "call completed" {
		t.Errorf("unexpected message %v", m["message"])
	}
	if m[FieldComponent] != "server" {
		t.Errorf("expected component server, got %v", m[FieldComponent])
	}
	if m[FieldAPIID] != "abc" {
		t.Errorf("expected api_id abc, got %v", m[FieldAPIID])
	}
	if m[FieldAttempt] != float64(2) {
		t.Errorf("expected attempt 2, got %v", m[FieldAttempt])
	}
	if m["service"] != "test-svc" {
		t.Errorf("expected service field, got %v", m["service"])
	}
}

func TestLogger_WithError(t *testing.T) {
	var buf bytes.Buffer
	jsonLogger(&buf, "info").WithError(errors.New("boom")).Warn("failed")
	m := decodeLine(t, &buf)
	if m[FieldError] != "boom" {
		t.Errorf("expected error boom, got %v", m[FieldError])
	}
	if m["level"] != "warn" {
		t.Errorf("expected warn level, got %v", m["level"])
	}
}

func TestLogger_WithContext(t *testing.T) {
	var buf bytes.Buffer
	l := jsonLogger(&buf, "info")

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	sc := trace.NewSpanContext(trace.SpanContextConfig{TraceID: traceID, SpanID: spanID})

	ctx := ContextWithCorrelationID(context.Background(), "call-1")
	ctx = trace.ContextWithSpanContext(ctx, sc)

	l.WithContext(ctx).Info("hello")
	m := decodeLine(t, &buf)
	if m[FieldCorrelationID] != "call-1" {
		t.Errorf("expected correlation id, got %v", m[FieldCorrelationID])
	}
	if m[FieldTraceID] != traceID.String() {
		t.Errorf("expected trace id, got %v", m[FieldTraceID])
	}
	if m[FieldSpanID] != spanID.String() {
		t.Errorf("expected span id, got %v", m[FieldSpanID])
	}
}

func TestCorrelationID_Empty(t *testing.T) {
	if id := CorrelationID(context.Background()); id != "" {
		t.Errorf("expected empty id, got %q", id)
	}
}

func TestNop(t *testing.T) {
	l := Nop()
	l.Info("ignored", Fields("k", "v"))
	l.WithComponent("x").Error("ignored")
}

func TestConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&Config{Level: "info", Format: "console", NoColor: true}, "orders", &buf)
	l.Info("ready")
	out := buf.String()
	if !strings.Contains(out, "[ORD][INF]") {
		t.Errorf("expected service and level tags, got %q", out)
	}
	if !strings.Contains(out, "ready") {
		t.Errorf("expected message, got %q", out)
	}
}

func TestFieldsHelpers(t *testing.T) {
	f := Fields("a", 1, "b")
	if len(f) != 1 || f["a"] != 1 {
		t.Errorf("unexpected fields %v", f)
	}

	ef := ErrorFields("send", errors.New("x"))
	if ef[FieldOperation] != "send" || ef[FieldError] != "x" {
		t.Errorf("unexpected error fields %v", ef)
	}

	df := DurationFields("send", 1500*time.Millisecond)
	if df[FieldDuration] != int64(1500) {
		t.Errorf("unexpected duration fields %v", df)
	}
}

func TestConfig(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	cfg.Level = "loud"
	if err := cfg.Validate(); err == nil {
		t.Error("expected invalid level error")
	}
}

func TestWithComponentIsIdempotent(t *testing.T) {
	var buf bytes.Buffer
	l := jsonLogger(&buf, "info").WithComponent("server")
	if l.Component() != "server" {
		t.Fatalf("expected component server, got %q", l.Component())
	}
	if l.WithComponent("server") != l {
		t.Error("expected the same logger for the same component")
	}

	l.WithFields(Fields("k", "v")).WithComponent("server").Info("x")
	line := strings.TrimSpace(buf.String())
	if n := strings.Count(line, `"component"`); n != 1 {
		t.Errorf("expected one component field, got %d in %s", n, line)
	}
}

func TestRegistry(t *testing.T) {
	var buf bytes.Buffer
	r := NewRegistry(jsonLogger(&buf, "info"))

	a := r.Get("cache")
	if r.Get("cache") != a {
		t.Error("expected cached component logger")
	}
	a.Info("x")
	m := decodeLine(t, &buf)
	if m[FieldComponent] != "cache" {
		t.Errorf("expected component cache, got %v", m[FieldComponent])
	}

	if a.WithComponent("cache") != a {
		t.Error("registry loggers must pass through WithComponent unchanged")
	}

	custom := Nop()
	r.Register("custom", custom)
	if r.Get("custom") != custom {
		t.Error("expected registered logger")
	}
}
