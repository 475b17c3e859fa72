package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestOr(t *testing.T) {
	attached := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	fallback := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	if got := Or(ContextWithLogger(context.Background(), attached), fallback); got != attached {
		t.Fatalf("expected attached logger")
	}
	if got := Or(context.Background(), fallback); got != fallback {
		t.Fatalf("expected fallback logger")
	}
	if got := Or(context.Background(), nil); got != slog.Default() {
		t.Fatalf("expected slog.Default")
	}
	if FromContext(ContextWithLogger(context.Background(), nil)) != nil {
		t.Fatalf("nil logger must not be attached")
	}
}

func TestWithAttrs(t *testing.T) {
	var buf bytes.Buffer
	ctx := ContextWithLogger(context.Background(), slog.New(slog.NewTextHandler(&buf, nil)))

	ctx = WithAttrs(ctx, "viewer_id", "7", "role", "teacher")
	FromContext(ctx).Info("list schedules")

	if out := buf.String(); !strings.Contains(out, "viewer_id=7") || !strings.Contains(out, "role=teacher") {
		t.Fatalf("expected viewer attributes, got %q", out)
	}

	bare := context.Background()
	if WithAttrs(bare, "viewer_id", "7") != bare {
		t.Fatalf("context without logger must be returned unchanged")
	}
}
