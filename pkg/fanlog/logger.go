package fanlog

import (
	"context"
	"io"
	"os"
	"runtime/debug"
	"sync"
	"time"
)

// Options configures a Logger. Everything is fixed at construction.
type Options struct {
	// App labels every record; leave empty for none.
	App string
	// Transports receive records in this order.
	Transports []Transport
	// Diagnostics receives one line per failed write. Defaults to os.Stderr.
	Diagnostics io.Writer
	// Clock overrides the timestamp source.
	Clock func() time.Time
}

// Logger builds records and dispatches them to its transports. It is safe
// for concurrent use; each call is independent.
type Logger struct {
	app        string
	transports []Transport
	clock      func() time.Time
	diag       *diagnostics

	mu       sync.Mutex
	inflight int
	// idle is closed when inflight drops back to zero; nil while idle.
	idle chan struct{}
}

// New constructs a Logger. Nil transports are dropped.
func New(opts Options) *Logger {
	transports := make([]Transport, 0, len(opts.Transports))
	for _, t := range opts.Transports {
		if t != nil {
			transports = append(transports, t)
		}
	}

	clock := opts.Clock
	if clock == nil {
		clock = monotonicClock()
	}

	diag := opts.Diagnostics
	if diag == nil {
		diag = os.Stderr
	}

	return &Logger{
		app:        opts.App,
		transports: transports,
		clock:      clock,
		diag:       &diagnostics{w: diag},
	}
}

// App returns the configured app label.
func (l *Logger) App() string {
	return l.app
}

// Transports returns the transport ids in dispatch order.
func (l *Logger) Transports() []string {
	ids := make([]string, len(l.transports))
	for i, t := range l.transports {
		ids[i] = t.ID()
	}
	return ids
}

func (l *Logger) Trace(message string, data, ctx Fields) { l.Log(Trace, message, data, ctx) }

func (l *Logger) Debug(message string, data, ctx Fields) { l.Log(Debug, message, data, ctx) }

func (l *Logger) Info(message string, data, ctx Fields) { l.Log(Info, message, data, ctx) }

func (l *Logger) Warn(message string, data, ctx Fields) { l.Log(Warn, message, data, ctx) }

func (l *Logger) Error(message string, data, ctx Fields) { l.Log(Error, message, data, ctx) }

// Fatal emits a Fatal record. It does not exit the process.
func (l *Logger) Fatal(message string, data, ctx Fields) { l.Log(Fatal, message, data, ctx) }

// Log builds a record at level and hands it to every transport in order.
// Nil data or ctx become empty maps. Transport failures are reported on the
// diagnostic writer and never returned.
func (l *Logger) Log(level Severity, message string, data, ctx Fields) {
	if l == nil || len(l.transports) == 0 {
		return
	}
	rec := newRecord(l.app, level, message, data, ctx, l.clock())
	for _, t := range l.transports {
		l.dispatch(t, rec)
	}
}

// Wait blocks until no asynchronous write is pending or ctx is done. Writes
// issued by other goroutines while Wait is blocked extend the wait; call it
// once logging has quiesced. Wait starts no goroutines, so giving up on a
// transport that never settles leaves nothing behind.
func (l *Logger) Wait(ctx context.Context) error {
	l.mu.Lock()
	idle := l.idle
	l.mu.Unlock()
	if idle == nil {
		return nil
	}
	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *Logger) begin() {
	l.mu.Lock()
	if l.inflight == 0 {
		l.idle = make(chan struct{})
	}
	l.inflight++
	l.mu.Unlock()
}

func (l *Logger) end() {
	l.mu.Lock()
	l.inflight--
	if l.inflight == 0 {
		close(l.idle)
		l.idle = nil
	}
	l.mu.Unlock()
}

func (l *Logger) dispatch(t Transport, rec Record) {
	id := safeID(t)
	defer func() {
		if value := recover(); value != nil {
			l.diag.report(id, value, debug.Stack())
		}
	}()

	async, ok := t.(AsyncTransport)
	if !ok {
		if err := t.Write(rec); err != nil {
			l.diag.report(id, err, nil)
		}
		return
	}

	outcome := async.WriteAsync(rec)
	if outcome == nil {
		return
	}
	l.begin()
	go l.await(id, outcome)
}

func (l *Logger) await(id string, outcome <-chan error) {
	defer l.end()
	defer func() {
		if value := recover(); value != nil {
			l.diag.report(id, value, debug.Stack())
		}
	}()
	if err, ok := <-outcome; ok && err != nil {
		l.diag.report(id, err, nil)
	}
}

func safeID(t Transport) (id string) {
	defer func() {
		if recover() != nil {
			id = "<unknown>"
		}
	}()
	return t.ID()
}
