package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, ParseLevel(tt.in)); diff != "" {
				t.Errorf("ParseLevel() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNewJSONIncludesContextAttrs(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "info", "json")

	ctx := Ctx(context.Background(), slog.String("attempt_id", "abc"))
	ctx = Ctx(ctx, slog.String("tags", "cats"))
	log.With("component", "test").InfoContext(ctx, "hello")

	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}
	for key, want := range map[string]string{
		"msg":        "hello",
		"attempt_id": "abc",
		"tags":       "cats",
		"component":  "test",
	} {
		if diff := cmp.Diff(want, got[key]); diff != "" {
			t.Errorf("%s mismatch (-want +got):\n%s", key, diff)
		}
	}
}

func TestNewTextRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "warn", "text")

	log.Info("hidden")
	log.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info record logged at warn level: %q", out)
	}
	if !strings.Contains(out, "msg=shown") {
		t.Errorf("expected warn record, got %q", out)
	}
}

func TestCtxDoesNotShareSlices(t *testing.T) {
	base := Ctx(context.Background(), slog.String("a", "1"))
	left := Ctx(base, slog.String("b", "2"))
	right := Ctx(base, slog.String("c", "3"))

	leftAttrs, _ := left.Value(attrKey).([]slog.Attr)
	rightAttrs, _ := right.Value(attrKey).([]slog.Attr)

	if diff := cmp.Diff("b", leftAttrs[1].Key); diff != "" {
		t.Errorf("left attrs mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff("c", rightAttrs[1].Key); diff != "" {
		t.Errorf("right attrs mismatch (-want +got):\n%s", diff)
	}
}
