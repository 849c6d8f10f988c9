// Package slogsink forwards fanlog records to a log/slog handler.
//
// Record data becomes top-level attributes, context goes under a "context"
// group and the app label is attached as "app". Severities map onto slog
// levels with fanlog's SlogLevel, so Trace and Fatal land below Debug and
// above Error respectively.
package slogsink

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"fanlog/pkg/fanlog"
)

// DefaultID names the transport when Options.ID is empty.
const DefaultID = "slog"

// Options configures the transport.
type Options struct {
	ID      string
	Handler slog.Handler
}

// Transport hands each record to a slog.Handler.
type Transport struct {
	id      string
	handler slog.Handler
}

// New builds a transport around opts.Handler.
func New(opts Options) (*Transport, error) {
	if opts.Handler == nil {
		return nil, errors.New("slogsink: handler is required")
	}
	id := strings.TrimSpace(opts.ID)
	if id == "" {
		id = DefaultID
	}
	return &Transport{id: id, handler: opts.Handler}, nil
}

func (t *Transport) ID() string { return t.id }

// Write drops records the handler is not enabled for.
func (t *Transport) Write(rec fanlog.Record) error {
	ctx := context.Background()
	level := rec.Level.SlogLevel()
	if !t.handler.Enabled(ctx, level) {
		return nil
	}

	out := slog.NewRecord(rec.Time(), level, rec.Message, 0)
	if rec.App != "" {
		out.AddAttrs(slog.String("app", rec.App))
	}
	out.AddAttrs(fieldAttrs(acyclic(rec.Data))...)
	if len(rec.Context) > 0 {
		out.AddAttrs(slog.Attr{Key: "context", Value: slog.GroupValue(fieldAttrs(acyclic(rec.Context))...)})
	}
	return errors.Wrap(t.handler.Handle(ctx, out), "handle record")
}

// acyclic breaks reference cycles so fieldAttrs and the handler terminate.
func acyclic(fields fanlog.Fields) map[string]any {
	if len(fields) == 0 {
		return nil
	}
	safe, _ := fanlog.Acyclic(map[string]any(fields)).(map[string]any)
	return safe
}

// fieldAttrs converts fields to attributes in key order. Nested Fields
// become groups.
func fieldAttrs(fields map[string]any) []slog.Attr {
	if len(fields) == 0 {
		return nil
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	attrs := make([]slog.Attr, 0, len(keys))
	for _, k := range keys {
		switch v := fields[k].(type) {
		case fanlog.Fields:
			attrs = append(attrs, slog.Attr{Key: k, Value: slog.GroupValue(fieldAttrs(v)...)})
		case map[string]any:
			attrs = append(attrs, slog.Attr{Key: k, Value: slog.GroupValue(fieldAttrs(v)...)})
		default:
			attrs = append(attrs, slog.Any(k, v))
		}
	}
	return attrs
}
