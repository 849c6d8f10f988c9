// Package terminal writes fanlog records to the process's standard streams.
package terminal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"fanlog/pkg/fanlog"
)

// ID names the terminal transport in diagnostics unless Options.ID is set.
const ID = "terminal"

const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

var levelColors = map[fanlog.Severity]text.Colors{
	fanlog.Trace: {text.FgHiBlack},
	fanlog.Debug: {text.FgCyan},
	fanlog.Info:  {text.FgGreen},
	fanlog.Warn:  {text.FgYellow},
	fanlog.Error: {text.FgRed},
	fanlog.Fatal: {text.BgRed, text.FgHiWhite},
}

// Options configures a terminal transport.
type Options struct {
	ID string
	// Levels restricts output to these severities. Empty writes everything.
	Levels []fanlog.Severity
	// Stdout and Stderr default to the process streams.
	Stdout io.Writer
	Stderr io.Writer
	// Color forces colored output on or off. Nil colors a stream only when
	// it is a terminal.
	Color *bool
}

// Transport writes one line per record. Error and Fatal go to Stderr,
// everything else to Stdout.
type Transport struct {
	id     string
	levels map[fanlog.Severity]struct{}
	stdout stream
	stderr stream
}

type stream struct {
	mu       *sync.Mutex
	w        io.Writer
	colorize bool
}

// New builds a terminal transport.
func New(opts Options) *Transport {
	stdout := opts.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	stderr := opts.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	var levels map[fanlog.Severity]struct{}
	if len(opts.Levels) > 0 {
		levels = make(map[fanlog.Severity]struct{}, len(opts.Levels))
		for _, level := range opts.Levels {
			levels[level] = struct{}{}
		}
	}

	id := strings.TrimSpace(opts.ID)
	if id == "" {
		id = ID
	}

	mu := &sync.Mutex{}
	return &Transport{
		id:     id,
		levels: levels,
		stdout: stream{mu: mu, w: stdout, colorize: colorFor(stdout, opts.Color)},
		stderr: stream{mu: mu, w: stderr, colorize: colorFor(stderr, opts.Color)},
	}
}

func (t *Transport) ID() string { return t.id }

// Accepts reports whether records at level are written.
func (t *Transport) Accepts(level fanlog.Severity) bool {
	if t.levels == nil {
		return true
	}
	_, ok := t.levels[level]
	return ok
}

func (t *Transport) Write(rec fanlog.Record) error {
	if !t.Accepts(rec.Level) {
		return nil
	}
	out := t.stdout
	if rec.Level >= fanlog.Error {
		out = t.stderr
	}
	line := formatLine(rec, out.colorize)

	out.mu.Lock()
	defer out.mu.Unlock()
	if _, err := out.w.Write(line); err != nil {
		return fmt.Errorf("write terminal line: %w", err)
	}
	return nil
}

func formatLine(rec fanlog.Record, colorize bool) []byte {
	var buf bytes.Buffer
	buf.Grow(96 + len(rec.Message))

	buf.WriteString(time.UnixMilli(rec.Timestamp).UTC().Format(timestampLayout))
	buf.WriteByte(' ')

	header := "[" + rec.Level.String() + "]"
	if rec.App != "" {
		header += " [" + rec.App + "]"
	}
	header += " " + rec.Message
	if colorize {
		header = levelColors[rec.Level].Sprint(header)
	}
	buf.WriteString(header)

	if len(rec.Data) > 0 {
		buf.WriteByte(' ')
		buf.WriteString(formatFields(rec.Data))
	}
	if len(rec.Context) > 0 {
		buf.WriteByte(' ')
		buf.WriteString(formatFields(rec.Context))
	}
	buf.WriteByte('\n')
	return buf.Bytes()
}

// formatFields renders fields as JSON. Cycles are replaced by a placeholder
// and values JSON cannot encode fall back to %v.
func formatFields(fields fanlog.Fields) string {
	if encoded, err := encodeJSON(fields); err == nil {
		return encoded
	}
	safe := fanlog.Acyclic(map[string]any(fields))
	if encoded, err := encodeJSON(safe); err == nil {
		return encoded
	}
	return fmt.Sprintf("%v", safe)
}

func encodeJSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

func colorFor(w io.Writer, force *bool) bool {
	if force != nil {
		return *force
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
