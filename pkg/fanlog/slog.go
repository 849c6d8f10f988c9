package fanlog

import (
	"context"
	"log/slog"
	"reflect"
)

// HandlerOptions tunes the slog bridge.
type HandlerOptions struct {
	// Level is the minimum slog level passed on. Nil passes everything.
	Level slog.Leveler
	// ContextFields extracts the record context from the call's
	// context.Context. Nil leaves Context empty.
	ContextFields func(context.Context) Fields
}

// slogHandler feeds slog records into a Logger. Attributes become Data,
// with groups as nested Fields.
type slogHandler struct {
	logger *Logger
	opts   HandlerOptions
	data   Fields
	groups []string
}

// NewHandler returns a slog.Handler that forwards every record to l, so
// existing slog call sites fan out through the same transports.
func NewHandler(l *Logger, opts *HandlerOptions) slog.Handler {
	h := &slogHandler{logger: l, data: Fields{}}
	if opts != nil {
		h.opts = *opts
	}
	return h
}

func (h *slogHandler) Enabled(_ context.Context, level slog.Level) bool {
	if h.opts.Level == nil {
		return true
	}
	return level >= h.opts.Level.Level()
}

func (h *slogHandler) Handle(ctx context.Context, record slog.Record) error {
	attrs := Fields{}
	record.Attrs(func(attr slog.Attr) bool {
		putAttr(attrs, attr)
		return true
	})

	data := cloneTree(h.data)
	if len(attrs) > 0 {
		target := descend(data, h.groups)
		for k, v := range attrs {
			target[k] = v
		}
	}

	var extra Fields
	if h.opts.ContextFields != nil && ctx != nil {
		extra = h.opts.ContextFields(ctx)
	}
	h.logger.Log(SeverityFromSlog(record.Level), record.Message, data, extra)
	return nil
}

func (h *slogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	clone := h.clone()
	target := descend(clone.data, clone.groups)
	for _, attr := range attrs {
		putAttr(target, attr)
	}
	return clone
}

func (h *slogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := h.clone()
	clone.groups = append(clone.groups, name)
	return clone
}

func (h *slogHandler) clone() *slogHandler {
	groups := make([]string, len(h.groups))
	copy(groups, h.groups)
	return &slogHandler{
		logger: h.logger,
		opts:   h.opts,
		data:   cloneTree(h.data),
		groups: groups,
	}
}

func putAttr(dst Fields, attr slog.Attr) {
	attr.Value = attr.Value.Resolve()
	if attr.Equal(slog.Attr{}) {
		return
	}
	if attr.Value.Kind() != slog.KindGroup {
		dst[attr.Key] = attr.Value.Any()
		return
	}
	members := attr.Value.Group()
	if len(members) == 0 {
		return
	}
	target := dst
	if attr.Key != "" {
		target = descend(dst, []string{attr.Key})
	}
	for _, member := range members {
		putAttr(target, member)
	}
}

// descend walks (and creates) nested Fields along path.
func descend(root Fields, path []string) Fields {
	current := root
	for _, key := range path {
		child, ok := current[key].(Fields)
		if !ok {
			child = Fields{}
			current[key] = child
		}
		current = child
	}
	return current
}

// cloneTree copies src and every nested Fields inside it. A Fields value
// that contains itself is replaced by CyclePlaceholder.
func cloneTree(src Fields) Fields {
	return cloneTreePath(src, map[uintptr]struct{}{})
}

func cloneTreePath(src Fields, path map[uintptr]struct{}) Fields {
	out := make(Fields, len(src))
	if src == nil {
		return out
	}
	ptr := reflect.ValueOf(src).Pointer()
	path[ptr] = struct{}{}
	defer delete(path, ptr)
	for k, v := range src {
		nested, ok := v.(Fields)
		if !ok {
			out[k] = v
			continue
		}
		if _, seen := path[reflect.ValueOf(nested).Pointer()]; seen {
			out[k] = CyclePlaceholder
			continue
		}
		out[k] = cloneTreePath(nested, path)
	}
	return out
}
