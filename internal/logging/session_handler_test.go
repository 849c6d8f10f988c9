package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestSessionIDHandler(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newSessionIDHandler(slog.NewJSONHandler(&buf, nil), "test-session-123"))
	logger.Info("test message")

	if !strings.Contains(buf.String(), `"session_id":"test-session-123"`) {
		t.Errorf("expected session_id in output, got: %s", buf.String())
	}
}

func TestWithSessionIDKeepsAttrs(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, nil)).With("extra", "value")
	WithSessionID(base, "session-abc").Info("test message")

	output := buf.String()
	if !strings.Contains(output, `"session_id":"session-abc"`) {
		t.Errorf("expected session_id in output, got: %s", output)
	}
	if !strings.Contains(output, `"extra":"value"`) {
		t.Errorf("expected extra attr in output, got: %s", output)
	}
}

func TestSessionIDHandlerNilBase(t *testing.T) {
	if handler := newSessionIDHandler(nil, "session-123"); handler != (NoopHandler{}) {
		t.Errorf("expected NoopHandler when base is nil, got: %T", handler)
	}
}
