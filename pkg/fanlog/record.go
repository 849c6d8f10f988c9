package fanlog

import (
	"maps"
	"time"
)

// Fields maps keys to arbitrary values. Values need not be serializable;
// transports that encode records decide how to handle them.
type Fields map[string]any

// Record is one log event. A record is built once per log call and the same
// value is handed to every transport, so transports must treat Data and
// Context as read-only.
type Record struct {
	// App is the Logger's label; empty means none was configured.
	App     string   `json:"app,omitempty"`
	Level   Severity `json:"level"`
	Message string   `json:"message"`
	// Data carries the caller's payload and Context the ambient values.
	// Both are always non-nil.
	Data    Fields `json:"data"`
	Context Fields `json:"context"`
	// Timestamp is milliseconds since the Unix epoch, taken when the record
	// was built.
	Timestamp int64 `json:"timestamp"`
}

// Time returns the record timestamp as a time.Time.
func (r Record) Time() time.Time {
	return time.UnixMilli(r.Timestamp)
}

func newRecord(app string, level Severity, message string, data, ctx Fields, now time.Time) Record {
	return Record{
		App:       app,
		Level:     level,
		Message:   message,
		Data:      cloneFields(data),
		Context:   cloneFields(ctx),
		Timestamp: now.UnixMilli(),
	}
}

func cloneFields(fields Fields) Fields {
	if fields == nil {
		return Fields{}
	}
	return maps.Clone(fields)
}

// monotonicClock anchors a wall-clock reading and advances it with the
// monotonic clock so successive readings never go backwards.
func monotonicClock() func() time.Time {
	anchor := time.Now()
	wall := anchor.Round(0)
	return func() time.Time {
		return wall.Add(time.Since(anchor))
	}
}
