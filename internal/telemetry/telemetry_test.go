package telemetry

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/shaiso/Enricher/internal/domain"
	"github.com/shaiso/Enricher/internal/engine"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"DEBUG": slog.LevelDebug,
		"debug": slog.LevelDebug,
		"WARN":  slog.LevelWarn,
		"ERROR": slog.LevelError,
		"":      slog.LevelInfo,
		"bogus": slog.LevelInfo,
	}

	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewLogger_Format(t *testing.T) {
	var buf bytes.Buffer

	logger := NewLogger(LogConfig{Format: "text", Output: &buf})
	WithPipeline(WithRecordID(logger, "j1"), "job").Info("run started")

	out := buf.String()
	if !strings.Contains(out, "record_id=j1") || !strings.Contains(out, "pipeline=job") {
		t.Errorf("unexpected text output: %s", out)
	}

	buf.Reset()
	logger = NewLogger(LogConfig{Output: &buf})
	WithOperation(logger, "skills").Debug("hidden")
	WithOperation(logger, "skills").Info("visible")

	out = buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("debug message must be filtered at INFO level")
	}
	if !strings.Contains(out, `"operation":"skills"`) {
		t.Errorf("unexpected json output: %s", out)
	}
}

func TestContextLogger(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	ctx := WithLogger(context.Background(), logger)

	if FromContext(ctx) != logger {
		t.Error("expected logger from context")
	}
	if FromContext(context.Background()) != slog.Default() {
		t.Error("expected default logger")
	}
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.OperationStarted("job", "skills")
	m.OperationFinished("job", "skills", time.Second, nil)
	m.OperationStarted("job", "responsibilities")
	m.OperationFinished("job", "responsibilities", time.Second, errors.New("boom"))
	m.OperationStarted("job", "education")
	m.OperationFinished("job", "education", time.Second, fmt.Errorf("%w: x", engine.ErrUnparsableResult))

	m.RunFinished("job", domain.RunStatusPartial)
	m.RecordWritten("job", "seed")
	m.HTTPRequest("POST", 200)

	if got := testutil.ToFloat64(m.opTotal.WithLabelValues("job", "skills", "SUCCEEDED")); got != 1 {
		t.Errorf("succeeded = %v", got)
	}
	if got := testutil.ToFloat64(m.opTotal.WithLabelValues("job", "responsibilities", "FAILED")); got != 1 {
		t.Errorf("failed = %v", got)
	}
	if got := testutil.ToFloat64(m.opTotal.WithLabelValues("job", "education", "UNPARSABLE")); got != 1 {
		t.Errorf("unparsable = %v", got)
	}
	if got := testutil.ToFloat64(m.opInFlight.WithLabelValues("job")); got != 0 {
		t.Errorf("in flight = %v", got)
	}
	if got := testutil.ToFloat64(m.runsTotal.WithLabelValues("job", "PARTIAL")); got != 1 {
		t.Errorf("runs = %v", got)
	}
	if got := testutil.ToFloat64(m.writesTotal.WithLabelValues("job", "seed")); got != 1 {
		t.Errorf("writes = %v", got)
	}
	if got := testutil.ToFloat64(m.httpRequests.WithLabelValues("POST", "200")); got != 1 {
		t.Errorf("http requests = %v", got)
	}
}
