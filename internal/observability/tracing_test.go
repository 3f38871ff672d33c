package observability

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestStartSpan_Nesting(t *testing.T) {
	ctx, root := StartSpan(context.Background(), "load")
	_, child := StartSpan(ctx, "build")

	if child.TraceID != root.TraceID {
		t.Errorf("child trace id = %s, want %s", child.TraceID, root.TraceID)
	}
	if child.ParentID != root.SpanID {
		t.Errorf("child parent id = %s, want %s", child.ParentID, root.SpanID)
	}
	if GetSpan(ctx) != root {
		t.Error("GetSpan should return the root span")
	}
	if GetSpan(context.Background()) != nil {
		t.Error("GetSpan on empty context should be nil")
	}
}

func TestSpan_End(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	_, span := StartSpan(context.Background(), "forecast")
	span.SetTag("dataset", "abc")
	span.SetError(errors.New("boom"))
	span.End(logger)

	out := buf.String()
	for _, want := range []string{"span.operation=forecast", "span.status=ERROR", "span.error=boom", "span.dataset=abc"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q: %s", want, out)
		}
	}
}

func TestRequestID(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-1")
	if got := GetRequestID(ctx); got != "req-1" {
		t.Errorf("GetRequestID() = %q", got)
	}
	if got := GetRequestID(context.Background()); got != "" {
		t.Errorf("GetRequestID() on empty context = %q", got)
	}
}
