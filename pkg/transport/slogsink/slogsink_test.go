package slogsink

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
	"time"

	"fanlog/pkg/fanlog"
)

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", buf.String(), err)
	}
	return out
}

func TestForwardsRecord(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: fanlog.LevelTrace})
	tr, err := New(Options{Handler: handler})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	rec := fanlog.Record{
		App:       "svc",
		Level:     fanlog.Warn,
		Message:   "cache miss",
		Data:      fanlog.Fields{"key": "user:1", "meta": fanlog.Fields{"shard": 3}},
		Context:   fanlog.Fields{"request_id": "r-9"},
		Timestamp: ts.UnixMilli(),
	}
	if err := tr.Write(rec); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got := decode(t, &buf)
	if got["msg"] != "cache miss" || got["level"] != "WARN" || got["app"] != "svc" {
		t.Fatalf("unexpected output %v", got)
	}
	if got["key"] != "user:1" {
		t.Fatalf("expected data attr, got %v", got)
	}
	meta, _ := got["meta"].(map[string]any)
	if meta["shard"] != float64(3) {
		t.Fatalf("expected nested group, got %v", got["meta"])
	}
	ctx, _ := got["context"].(map[string]any)
	if ctx["request_id"] != "r-9" {
		t.Fatalf("expected context group, got %v", got["context"])
	}
	stamp, _ := got["time"].(string)
	if parsed, err := time.Parse(time.RFC3339Nano, stamp); err != nil || !parsed.Equal(ts) {
		t.Fatalf("unexpected time %q", stamp)
	}
}

func TestRespectsHandlerLevel(t *testing.T) {
	var buf bytes.Buffer
	tr, err := New(Options{ID: "std", Handler: slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger := fanlog.New(fanlog.Options{Transports: []fanlog.Transport{tr}})

	logger.Trace("hidden", nil, nil)
	logger.Debug("hidden", nil, nil)
	if buf.Len() != 0 {
		t.Fatalf("expected filtered output, got %q", buf.String())
	}
	logger.Fatal("shown", nil, nil)
	if !bytes.Contains(buf.Bytes(), []byte("msg=shown")) {
		t.Fatalf("expected fatal record, got %q", buf.String())
	}
	if tr.ID() != "std" {
		t.Fatalf("unexpected id %q", tr.ID())
	}
}

func TestNewRequiresHandler(t *testing.T) {
	if _, err := New(Options{}); err == nil {
		t.Fatal("expected error without handler")
	}
}

func TestCyclicDataRendersPlaceholder(t *testing.T) {
	for _, tc := range []struct {
		name    string
		handler func(*bytes.Buffer) slog.Handler
		want    string
	}{
		{"json", func(b *bytes.Buffer) slog.Handler { return slog.NewJSONHandler(b, nil) }, `"self":"<cycle>"`},
		{"text", func(b *bytes.Buffer) slog.Handler { return slog.NewTextHandler(b, nil) }, `loop.self=<cycle>`},
	} {
		t.Run(tc.name, func(t *testing.T) {
			var buf, diag bytes.Buffer
			tr, err := New(Options{Handler: tc.handler(&buf)})
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			logger := fanlog.New(fanlog.Options{Transports: []fanlog.Transport{tr}, Diagnostics: &diag})

			cyclic := fanlog.Fields{"depth": 1}
			cyclic["self"] = cyclic
			list := []any{"head"}
			list = append(list, nil)
			list[1] = list
			logger.Info("cyclic", fanlog.Fields{"loop": cyclic, "list": list}, fanlog.Fields{"loop": cyclic})

			if !strings.Contains(buf.String(), tc.want) {
				t.Fatalf("expected %s in %q", tc.want, buf.String())
			}
			if diag.Len() != 0 {
				t.Fatalf("unexpected diagnostics %q", diag.String())
			}
		})
	}
}
